package telegram

import (
	"fmt"
	"net/http"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/notification/notifier"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
	"github.com/jjangmi46/thirtymall-monitor/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// NewCreator 설정 파일에 정의된 텔레그램 Notifier들을 생성하는 팩토리 함수를 반환합니다.
//
// 자격 증명(bot_token, chat_id)이 비어있는 항목은 에러로 처리하지 않고 발송 생략용
// Notifier로 대체하여 등록합니다. 감시 작업 자체는 정상적으로 계속 수행되어야 하기 때문입니다.
func NewCreator() notifier.CreatorFunc {
	return func(appConfig *config.AppConfig) ([]notifier.Notifier, error) {
		var notifiers []notifier.Notifier

		for _, telegram := range appConfig.Notifiers.Telegrams {
			id := contract.NotifierID(telegram.ID)

			if !telegram.HasCredentials() {
				applog.WithComponentAndFields(component, applog.Fields{
					"notifier_id": telegram.ID,
				}).Warn("텔레그램 자격 증명(bot_token, chat_id)이 설정되지 않아 해당 채널의 알림 발송을 생략합니다")

				notifiers = append(notifiers, notifier.NewNoop(id))
				continue
			}

			n, err := newNotifier(id, telegram, appConfig)
			if err != nil {
				return nil, err
			}
			notifiers = append(notifiers, n)
		}

		return notifiers, nil
	}
}

// newNotifier 텔레그램 봇 API 클라이언트를 초기화하여 Notifier 인스턴스를 생성합니다.
func newNotifier(id contract.NotifierID, telegram config.TelegramConfig, appConfig *config.AppConfig) (notifier.Notifier, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": id,
		"bot_token":   strutil.MaskSensitiveData(telegram.BotToken),
		"chat_id":     telegram.ChatID,
	}).Debug("텔레그램 봇 API 클라이언트 초기화 시작")

	// Go의 기본 http.DefaultClient는 타임아웃이 설정되어 있지 않아, 네트워크 장애 발생 시
	// 요청이 무한히 대기하는(Hang) 리소스 누수가 발생할 수 있습니다.
	// 이를 방지하기 위해 명시적인 타임아웃을 설정한 클라이언트를 사용합니다.
	httpClient := &http.Client{
		Timeout: httpClientTimeout,
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(telegram.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요.")
	}

	botAPI.Debug = appConfig.Debug

	return newNotifierWithClient(id, telegram.ChatID, &tgClient{BotAPI: botAPI}, appConfig), nil
}

// newNotifierWithClient 외부에서 주입된 텔레그램 봇 API 클라이언트를 사용하여 Notifier 인스턴스를 생성합니다.
// 테스트에서 가짜 클라이언트를 주입할 수 있도록 분리되어 있습니다.
func newNotifierWithClient(id contract.NotifierID, chatID int64, c client, appConfig *config.AppConfig) *telegramNotifier {
	n := &telegramNotifier{
		Base: notifier.NewBase(id, true, bufferSize, enqueueTimeout),

		chatID: chatID,

		client: c,

		// 재시도 정책(Retry Policy): API 호출 실패 시 즉시 재시도하지 않고 일정 시간 대기합니다.
		retryDelay: defaultRetryDelay,

		// 속도 제한(Rate Limiting): 텔레그램 API 정책을 준수하기 위해 발송 속도를 제어합니다.
		limiter: rate.NewLimiter(rate.Limit(rateLimitPerSecond), rateLimitBurst),

		titlesByTask: make(map[string]map[string]commandTitle),
	}

	// 알림에 제목이 비어있을 때 설정 파일의 작업 제목으로 대체할 수 있도록 인덱스를 구축합니다.
	for _, t := range appConfig.Tasks {
		for _, c := range t.Commands {
			if !c.Notifier.Usable {
				continue
			}

			if _, exists := n.titlesByTask[t.ID]; !exists {
				n.titlesByTask[t.ID] = make(map[string]commandTitle)
			}
			n.titlesByTask[t.ID][c.ID] = commandTitle{
				title: fmt.Sprintf("%s > %s", t.Title, c.Title),
			}
		}
	}

	return n
}
