package fetcher

import (
	"time"
)

// Config Fetcher 체인을 구성하기 위한 설정값입니다.
//
// 모든 필드는 생성 시점에 안전한 범위로 보정되므로 영(0) 값 그대로 사용해도 동작합니다.
type Config struct {
	// MaxRetries 최대 재시도 횟수입니다. (0: 재시도 안 함, 최대 10회)
	MaxRetries int

	// MinRetryDelay 재시도 대기 시간의 최소값입니다. (1초 미만은 1초로 보정)
	MinRetryDelay time.Duration

	// MaxRetryDelay 재시도 대기 시간의 상한입니다. (0: 기본값 30초)
	MaxRetryDelay time.Duration

	// MaxBytes 응답 본문의 최대 허용 크기입니다. (0: 기본값 10MB, NoLimit: 제한 없음)
	MaxBytes int64

	// UserAgents User-Agent 무작위 선택에 사용할 목록입니다.
	// 비어 있으면 내장된 데스크탑 브라우저 User-Agent 풀에서 선택합니다.
	UserAgents []string

	// AllowedStatusCodes 성공으로 간주할 상태 코드 목록입니다. (비어 있으면 200 OK만 허용)
	AllowedStatusCodes []int

	// DisableLogging 요청/응답 로깅 미들웨어를 생략할지 여부입니다.
	DisableLogging bool
}

// New Config와 추가 옵션을 기반으로 Fetcher 실행 체인을 생성합니다.
//
// 미들웨어는 다음 순서로 구성됩니다. (바깥쪽 -> 안쪽)
//
//	LoggingFetcher    재시도를 포함한 전체 요청 생애주기 기록
//	UserAgentFetcher  요청당 하나의 User-Agent 부여 (재시도 간 유지)
//	RetryFetcher      실패 시 지수 백오프 재시도 총괄
//	StatusCodeFetcher 시도마다 응답 상태 코드 검증
//	MaxBytesFetcher   응답 본문 크기 감시
//	HTTPFetcher       실제 네트워크 I/O
//
// 검증 미들웨어는 각 시도마다 수행되어야 하므로 RetryFetcher 안쪽에 배치합니다.
func New(cfg Config, opts ...Option) Fetcher {
	var f Fetcher = NewHTTPFetcher(opts...)

	f = NewMaxBytesFetcher(f, cfg.MaxBytes)
	f = NewStatusCodeFetcher(f, cfg.AllowedStatusCodes...)
	f = NewRetryFetcher(f, cfg.MaxRetries, cfg.MinRetryDelay, cfg.MaxRetryDelay)
	f = NewUserAgentFetcher(f, cfg.UserAgents)

	if !cfg.DisableLogging {
		f = NewLoggingFetcher(f)
	}

	return f
}
