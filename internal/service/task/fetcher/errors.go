package fetcher

import (
	"fmt"
	"net/http"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 설정된 최대 재시도 횟수를 모두 소진하고도 요청이 실패했을 때 반환됩니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과하였습니다")

	// ErrResponseBodyTooLarge 응답 본문이 설정된 최대 크기를 초과했을 때 반환됩니다.
	ErrResponseBodyTooLarge = apperrors.New(apperrors.ExecutionFailed, "응답 본문이 허용된 최대 크기를 초과하였습니다")
)

// newErrRequestCreationFailed http.Request 생성 실패 시의 에러를 생성합니다. (주로 잘못된 URL)
func newErrRequestCreationFailed(cause error, url string) error {
	return apperrors.Wrapf(cause, apperrors.InvalidInput, "HTTP 요청 생성에 실패하였습니다. (URL: %s)", url)
}

// newErrMaxRetriesExceeded 마지막 시도의 에러를 원인으로 포함한 재시도 소진 에러를 생성합니다.
func newErrMaxRetriesExceeded(cause error) error {
	if cause == nil {
		return ErrMaxRetriesExceeded
	}
	return apperrors.Wrap(cause, apperrors.Unavailable, "최대 재시도 횟수를 초과하였습니다")
}

// newErrRetryAfterExceeded 서버가 요구한 Retry-After 대기 시간이 정책 허용치를 초과했을 때의 에러를 생성합니다.
func newErrRetryAfterExceeded(requested, limit string) error {
	return apperrors.Newf(apperrors.Unavailable,
		"서버가 요구한 재시도 대기 시간(%s)이 허용된 최대 대기 시간(%s)을 초과하여 재시도를 중단합니다", requested, limit)
}

// newErrGetBodyFailed 재시도를 위한 요청 본문 재생성 실패 시의 에러를 생성합니다.
func newErrGetBodyFailed(cause error) error {
	return apperrors.Wrap(cause, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패하였습니다")
}

// newErrResponseBodyTooLarge 응답 본문 크기 초과 에러를 생성합니다.
func newErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Wrapf(ErrResponseBodyTooLarge, apperrors.ExecutionFailed,
		"응답 본문이 허용된 최대 크기(%d bytes)를 초과하였습니다", limit)
}

// HTTPStatusError 허용되지 않은 HTTP 상태 코드 응답을 나타내는 에러입니다.
//
// 재시도 미들웨어가 Retry-After 헤더를 참조할 수 있도록
// 응답의 상태 코드와 헤더를 함께 보존합니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP 요청이 실패하였습니다. (상태: %s, URL: %s)", e.Status, e.URL)
}
