package fetcher

import (
	"io"
	"net/http"
)

// maxErrorBodySnippetBytes 에러 발생 시 디버깅을 위해 보존할 응답 본문의 최대 크기입니다.
const maxErrorBodySnippetBytes = 4096

// StatusCodeFetcher HTTP 응답 상태 코드를 검증하는 미들웨어입니다.
//
// 허용되지 않은 상태 코드를 받으면 응답 객체를 소비하고
// 상태 코드와 헤더, 본문 일부를 보존한 *HTTPStatusError를 반환합니다.
// 에러에 보존된 Retry-After 헤더는 바깥쪽 재시도 미들웨어가 참조합니다.
type StatusCodeFetcher struct {
	delegate Fetcher

	// allowedStatusCodes 성공으로 간주할 상태 코드 집합입니다. 비어 있으면 200 OK만 허용합니다.
	allowedStatusCodes map[int]struct{}
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 새로운 StatusCodeFetcher 인스턴스를 생성합니다.
func NewStatusCodeFetcher(delegate Fetcher, allowedStatusCodes ...int) *StatusCodeFetcher {
	allowed := make(map[int]struct{})
	if len(allowedStatusCodes) == 0 {
		allowed[http.StatusOK] = struct{}{}
	} else {
		for _, code := range allowedStatusCodes {
			allowed[code] = struct{}{}
		}
	}

	return &StatusCodeFetcher{
		delegate:           delegate,
		allowedStatusCodes: allowed,
	}
}

// Do HTTP 요청을 수행하고 응답 상태 코드를 검증합니다.
func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return nil, err
	}

	if _, ok := f.allowedStatusCodes[resp.StatusCode]; ok {
		return resp, nil
	}

	// 디버깅 편의를 위해 본문 일부만 읽어 에러 객체에 보존합니다.
	var bodySnippet string
	if resp.Body != nil {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySnippetBytes))
		bodySnippet = string(snippet)

		drainAndCloseBody(resp.Body)
	}

	return nil, &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         redactURL(req.URL),
		Header:      redactHeaders(resp.Header),
		BodySnippet: bodySnippet,
	}
}

func (f *StatusCodeFetcher) Close() error {
	return f.delegate.Close()
}
