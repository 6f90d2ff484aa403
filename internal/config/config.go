package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "thirtymall-monitor"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"

	// envPrefix 환경 변수 오버라이드에 사용하는 접두사입니다.
	// 예: TMON_WATCHDOG__RUN_TIMEOUT -> watchdog.run_timeout
	envPrefix = "TMON_"

	// 텔레그램 자격 증명 전용 환경 변수입니다.
	// 설정 파일에 토큰을 직접 기록하지 않고 .env 또는 런타임 환경으로 주입할 수 있습니다.
	envTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	envTelegramChatID   = "TELEGRAM_CHAT_ID"
)

// 설정 파일에서 생략 가능한 항목들의 기본값입니다.
const (
	// DefaultMaxRetries HTTP 요청 실패 시 최대 재시도 횟수 기본값
	DefaultMaxRetries = 3

	// DefaultRetryDelay 재시도 사이의 대기 시간 기본값
	DefaultRetryDelay = "2s"

	// DefaultRunTimeout 감시 작업 1회 실행(전체 검색 대상 순회)의 최대 허용 시간 기본값
	DefaultRunTimeout = "300s"

	// DefaultStorageDir 스냅샷 파일이 저장되는 디렉토리 기본값
	DefaultStorageDir = "watchdata"

	// DefaultSettleWait 브라우저 렌더링 모드에서 페이지 이동 직후 대기하는 시간 기본값
	DefaultSettleWait = "3s"

	// DefaultContentWait 키워드 또는 최소 본문 길이가 확인될 때까지 폴링하는 최대 시간 기본값
	DefaultContentWait = "15s"

	// DefaultListenPort 운영 API 서버의 기본 포트
	DefaultListenPort = 8080
)

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
//
// 로드 우선순위는 "기본값 < 설정 파일 < 환경 변수" 순이며,
// 텔레그램 자격 증명은 별도의 전용 환경 변수(TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID)로도 주입할 수 있습니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	// .env 파일이 존재하면 환경 변수로 끌어올립니다. (없는 것은 정상)
	_ = godotenv.Load()

	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	err := k.Load(confmap.Provider(map[string]interface{}{
		"http_retry.max_retries": DefaultMaxRetries,
		"http_retry.retry_delay": DefaultRetryDelay,
		"browser.enabled":        true,
		"browser.headless":       true,
		"browser.settle_wait":    DefaultSettleWait,
		"browser.content_wait":   DefaultContentWait,
		"storage.dir":            DefaultStorageDir,
		"watchdog.run_timeout":   DefaultRunTimeout,
		"api.listen_port":        DefaultListenPort,
	}, "."), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: TMON_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: TMON_WATCHDOG__RUN_TIMEOUT -> watchdog.run_timeout
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 텔레그램 자격 증명 환경 변수 적용
	// 설정 파일에 비워둔 항목만 채우므로, 파일에 명시된 값이 항상 우선합니다.
	appConfig.Notifiers.applyCredentialEnv(os.Getenv(envTelegramBotToken), os.Getenv(envTelegramChatID))

	// 6. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(newValidator()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}

// applyCredentialEnv 전용 환경 변수로 주입된 텔레그램 자격 증명을 기본 Notifier에 채워 넣습니다.
//
// 토큰과 채팅 ID가 모두 비어있는 Notifier는 "자격 증명 없음" 상태로 남으며,
// 이 경우 알림 발송은 조용히 생략됩니다. (실행 자체는 실패하지 않음)
func (c *NotifierConfig) applyCredentialEnv(botToken, chatID string) {
	for i := range c.Telegrams {
		t := &c.Telegrams[i]
		if t.ID != c.DefaultNotifierID {
			continue
		}

		if t.BotToken == "" && botToken != "" {
			t.BotToken = botToken
		}
		if t.ChatID == 0 && chatID != "" {
			if id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64); err == nil {
				t.ChatID = id
			}
		}
	}
}
