package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

const (
	// maxAllowedRetries 허용 가능한 최대 재시도 횟수입니다.
	maxAllowedRetries = 10

	// minRetryDelayFloor 서버 부하 방지를 위한 재시도 대기 시간의 하한입니다.
	minRetryDelayFloor = 1 * time.Second

	// defaultMaxRetryDelay 재시도 대기 시간 상한의 기본값입니다.
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher HTTP 요청 실패 시 자동으로 재시도를 수행하는 미들웨어입니다.
//
// 재시도 전략:
//   - 지수 백오프: 대기 시간을 2배씩 증가시켜 서버 부하를 분산합니다.
//   - Full Jitter: 0 ~ 계산된 대기 시간 범위에서 무작위 값을 선택하여
//     동시 다발적인 재시도가 한 시점에 몰리지 않도록 합니다.
//   - Retry-After 우선: 서버가 명시한 대기 시간이 있으면 이를 준수하되,
//     허용 상한을 초과하는 요구는 재시도를 포기합니다.
//   - 비멱등 메서드(POST, PATCH)는 재시도하지 않습니다.
//   - 대기 중 컨텍스트가 취소되면 즉시 중단합니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
//
// 설정값은 안전한 범위로 보정됩니다. (재시도 횟수: 0~10회, 최소 대기: 1초 이상)
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	maxRetries = normalizeMaxRetries(maxRetries)
	minRetryDelay, maxRetryDelay = normalizeRetryDelays(minRetryDelay, maxRetryDelay)

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Do HTTP 요청을 수행하며, 일시적인 실패 시 설정된 정책에 따라 재시도합니다.
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드는 데이터 중복 생성/수정 위험이 있으므로 재시도하지 않습니다.
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	// 재시도 시 요청 본문을 다시 읽어야 하므로, GetBody가 없으면 재시도를 비활성화합니다.
	if req.Body != nil && req.GetBody == nil && effectiveMaxRetries > 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":    redactURL(req.URL),
			"method": req.Method,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		effectiveMaxRetries = 0
	}

	var lastErr error

	for attempt := 0; attempt <= effectiveMaxRetries; attempt++ {
		if attempt > 0 {
			delay, giveUpErr := f.nextDelay(attempt, lastErr)
			if giveUpErr != nil {
				return nil, giveUpErr
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         redactURL(req.URL),
				"retry":       attempt,
				"max_retries": effectiveMaxRetries,
				"delay":       delay.String(),
				"error":       lastErr.Error(),
			}).Warn("재시도 대기 중: 일시적 오류로 인해 요청을 재시도합니다")

			if err := sleepContext(req.Context(), delay); err != nil {
				return nil, err
			}

			// 이전 시도에서 소진된 요청 본문을 복구합니다.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, newErrGetBodyFailed(err)
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err == nil {
			return resp, nil
		}

		// 전체 제한 시간이 초과되었거나 요청이 취소된 경우 재시도해도 성공할 수 없습니다.
		if req.Context().Err() != nil {
			return nil, err
		}

		if !isRetriable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, newErrMaxRetriesExceeded(lastErr)
}

func (f *RetryFetcher) Close() error {
	return f.delegate.Close()
}

// nextDelay 다음 재시도까지의 대기 시간을 계산합니다.
//
// 서버가 Retry-After를 명시한 경우 이를 우선 적용하며,
// 요구된 대기 시간이 상한을 초과하면 재시도 포기 에러를 반환합니다.
func (f *RetryFetcher) nextDelay(attempt int, lastErr error) (time.Duration, error) {
	// 이전 실패 응답에 Retry-After 헤더가 보존되어 있는지 확인합니다.
	var statusErr *HTTPStatusError
	if errors.As(lastErr, &statusErr) {
		if retryAfter := statusErr.Header.Get("Retry-After"); retryAfter != "" {
			if delay, ok := parseRetryAfter(retryAfter); ok {
				if delay > f.maxRetryDelay {
					return 0, newErrRetryAfterExceeded(delay.String(), f.maxRetryDelay.String())
				}
				return delay, nil
			}
		}
	}

	// 지수 백오프: minRetryDelay * 2^(attempt-1), 상한 maxRetryDelay
	delay := f.minRetryDelay * time.Duration(1<<(attempt-1))
	if delay > f.maxRetryDelay || delay <= 0 {
		delay = f.maxRetryDelay
	}

	// Full Jitter: 0 ~ delay 범위에서 무작위 선택하되, 너무 짧으면 최소값으로 보정합니다.
	delay = time.Duration(rand.Int64N(int64(delay) + 1))
	if delay < f.minRetryDelay {
		delay = f.minRetryDelay
	}

	return delay, nil
}

// sleepContext 지정된 시간만큼 대기하되, 컨텍스트가 취소되면 즉시 중단합니다.
func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isIdempotentMethod 재시도가 안전한 HTTP 메서드인지 판단합니다.
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// isRetriable 발생한 에러가 재시도로 해결될 가능성이 있는 일시적 오류인지 판단합니다.
//
// 재시도 대상:
//   - 네트워크 타임아웃, 연결 실패 등의 일시적 오류
//   - 429 (Too Many Requests), 408 (Request Timeout)
//   - 5xx 서버 에러 (단, 501/505/511은 영구적인 문제이므로 제외)
//
// 재시도 제외:
//   - 컨텍스트 취소
//   - TLS 인증서 검증 실패
//   - 4xx 클라이언트 에러
func isRetriable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var certErr *x509.CertificateInvalidError
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthErr) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
			return false
		default:
			return statusErr.StatusCode >= 500
		}
	}

	// 연결 거부, 재설정, 타임아웃 등 네트워크 계층의 오류는 재시도 대상입니다.
	var netErr net.Error
	return errors.As(err, &netErr)
}

// parseRetryAfter Retry-After 헤더 값을 대기 시간으로 변환합니다.
//
// 초 단위 숫자("120")와 HTTP 날짜("Mon, 02 Jan 2006 15:04:05 GMT") 형식을 모두 지원합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if at, err := http.ParseTime(value); err == nil {
		delay := time.Until(at)
		if delay < 0 {
			delay = 0
		}
		return delay, true
	}

	return 0, false
}

// normalizeMaxRetries 최대 재시도 횟수를 허용 범위(0~10회)로 보정합니다.
func normalizeMaxRetries(maxRetries int) int {
	if maxRetries < 0 {
		return 0
	}
	if maxRetries > maxAllowedRetries {
		return maxAllowedRetries
	}
	return maxRetries
}

// normalizeRetryDelays 재시도 대기 시간의 최소값과 최대값을 안전한 범위로 보정합니다.
func normalizeRetryDelays(minRetryDelay, maxRetryDelay time.Duration) (time.Duration, time.Duration) {
	if minRetryDelay < minRetryDelayFloor {
		minRetryDelay = minRetryDelayFloor
	}
	if maxRetryDelay <= 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}
	return minRetryDelay, maxRetryDelay
}
