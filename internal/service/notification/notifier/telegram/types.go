package telegram

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/notification/notifier"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// component Notification 서비스의 텔레그램 Notifier 로깅용 컴포넌트 이름
const component = "notification.notifier.telegram"

const (
	// messageMaxLength 텔레그램 메시지 전송 시 허용되는 최대 문자 길이입니다.
	//
	// 텔레그램 Bot API 공식 제한은 4096자이지만, HTML 태그 및 메타데이터 오버헤드를 고려하여
	// 안전 마진을 두고 3900자로 설정했습니다. 이를 초과하는 메시지는 자동으로 분할 전송됩니다.
	messageMaxLength = 3900

	// bufferSize 발송 대기열(Queue)의 버퍼 크기입니다.
	// 여러 검색 작업이 동시에 알림을 발생시켜도 발송 속도 제한에 막혀 유실되지 않도록 여유있게 설정합니다.
	bufferSize = 100

	// enqueueTimeout 발송 대기열이 가득 찼을 때 빈 공간이 생기기를 기다려줄 최대 시간입니다.
	enqueueTimeout = 5 * time.Second

	// httpClientTimeout 텔레그램 봇 API 호출에 적용하는 HTTP 타임아웃입니다.
	httpClientTimeout = 30 * time.Second

	// defaultRetryDelay API 호출 실패 시 재시도 전에 대기하는 기본 시간입니다.
	defaultRetryDelay = 5 * time.Second

	// rateLimitPerSecond 초당 허용하는 텔레그램 API 호출 수입니다.
	// 텔레그램 API 정책(채팅방당 초당 1회)을 준수하여 봇이 차단되는 것을 방지합니다.
	rateLimitPerSecond = 1

	// rateLimitBurst 순간 최대 허용 요청 수입니다.
	rateLimitBurst = 1

	// shutdownTimeout 텔레그램 Notifier 종료 시 큐에 남은 메시지를 처리하기 위해 대기하는 최대 시간입니다.
	//
	// 이 시간 동안 Drain 로직이 실행되어 버퍼에 쌓인 미전송 메시지를 최대한 처리합니다.
	// 타임아웃이 경과하면 남은 메시지는 손실될 수 있습니다.
	shutdownTimeout = 60 * time.Second
)

// client 텔레그램 봇 API와의 통신을 추상화한 인터페이스입니다.
type client interface {
	// GetSelf 봇 정보를 반환합니다.
	GetSelf() tgbotapi.User

	// Send 메시지를 전송합니다.
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// tgClient tgbotapi.BotAPI를 래핑하여 client 인터페이스를 구현하는 구조체입니다.
type tgClient struct {
	*tgbotapi.BotAPI
}

// GetSelf 현재 봇의 사용자 정보를 반환합니다.
func (c *tgClient) GetSelf() tgbotapi.User {
	return c.Self
}

// commandTitle 알림 메시지 제목 조회용 인덱스의 항목입니다.
// 설정 파일의 Task/Command 제목("작업명 > 커맨드명")을 보관합니다.
type commandTitle struct {
	title string
}

// telegramNotifier 텔레그램을 통한 알림 발송을 담당하는 Notifier 구현체입니다.
type telegramNotifier struct {
	*notifier.Base

	// chatID 메시지를 전송할 텔레그램 채팅방의 고유 식별자입니다.
	chatID int64

	// client 텔레그램 봇 API와의 통신을 담당하는 클라이언트입니다.
	client client

	// retryDelay API 호출 실패 시 재시도 전에 대기하는 시간입니다.
	// 일시적인 네트워크 장애나 서버 부하 상황에서 즉시 재시도하지 않고 백오프(Backoff)를 적용합니다.
	retryDelay time.Duration

	// limiter 텔레그램 API 호출 속도를 제어하는 Rate Limiter입니다.
	limiter *rate.Limiter

	// titlesByTask 알림에 제목이 비어있을 때 설정 파일의 작업 제목으로 대체하기 위한
	// TaskID → CommandID → 제목의 2단계 인덱스입니다.
	titlesByTask map[string]map[string]commandTitle
}

// 인터페이스 준수 확인
var _ notifier.Notifier = (*telegramNotifier)(nil)
