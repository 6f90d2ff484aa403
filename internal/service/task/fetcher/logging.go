package fetcher

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// LoggingFetcher HTTP 요청의 처리 결과를 로그로 남기는 미들웨어입니다.
//
// 재시도를 포함한 전체 요청 생애주기를 기록하기 위해 체인의 최외곽에 배치합니다.
// URL과 헤더의 민감 정보(토큰, 인증 정보 등)는 마스킹 처리됩니다.
type LoggingFetcher struct {
	delegate Fetcher
}

var _ Fetcher = (*LoggingFetcher)(nil)

// NewLoggingFetcher 새로운 LoggingFetcher 인스턴스를 생성합니다.
func NewLoggingFetcher(delegate Fetcher) *LoggingFetcher {
	return &LoggingFetcher{
		delegate: delegate,
	}
}

// Do HTTP 요청을 수행하고 소요 시간과 결과를 기록합니다.
func (f *LoggingFetcher) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := f.delegate.Do(req)

	fields := applog.Fields{
		"method":   req.Method,
		"url":      redactURL(req.URL),
		"duration": time.Since(start).String(),
	}

	if err != nil {
		fields["error"] = err.Error()

		applog.WithComponentAndFields(component, fields).Error("HTTP 요청 실패")

		return nil, err
	}

	fields["status_code"] = resp.StatusCode

	applog.WithComponentAndFields(component, fields).Debug("HTTP 요청 완료")

	return resp, nil
}

func (f *LoggingFetcher) Close() error {
	return f.delegate.Close()
}

// sensitiveKeywords 쿼리 파라미터나 헤더의 이름에 포함되면 값을 마스킹할 키워드 목록입니다.
var sensitiveKeywords = []string{
	"token", "key", "secret", "password", "passwd", "auth", "credential", "session", "cookie",
}

const redactedPlaceholder = "[REDACTED]"

// isSensitiveKey 키 이름에 민감 정보 키워드가 포함되어 있는지 확인합니다.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// redactURL 로깅을 위해 URL의 민감 정보(사용자 정보, 민감 쿼리 파라미터)를 마스킹합니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clone := *u

	if clone.User != nil {
		clone.User = url.User(redactedPlaceholder)
	}

	if clone.RawQuery != "" {
		query := clone.Query()
		for key := range query {
			if isSensitiveKey(key) {
				query.Set(key, redactedPlaceholder)
			}
		}
		clone.RawQuery = query.Encode()
	}

	return clone.String()
}

// redactHeaders 에러 객체에 보존할 헤더에서 민감 정보를 마스킹한 복사본을 반환합니다.
func redactHeaders(h http.Header) http.Header {
	redacted := make(http.Header, len(h))
	for key, values := range h {
		if isSensitiveKey(key) {
			redacted[key] = []string{redactedPlaceholder}
			continue
		}
		redacted[key] = append([]string(nil), values...)
	}
	return redacted
}
