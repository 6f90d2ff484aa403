// Package mocks 테스트에서 사용하는 Fetcher 구현체를 제공합니다.
package mocks

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// Fetcher 테스트용 Fetcher 구현체입니다.
//
// DoFunc가 설정되어 있으면 이를 호출하고, 없으면 빈 200 OK 응답을 반환합니다.
// 수행된 모든 요청은 Requests()로 조회할 수 있습니다.
type Fetcher struct {
	// DoFunc 요청 처리 동작을 재정의합니다.
	DoFunc func(req *http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []*http.Request
	closed   bool
}

// Do 요청을 기록한 후 DoFunc에 위임합니다.
func (f *Fetcher) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.DoFunc != nil {
		return f.DoFunc(req)
	}

	return NewResponse(http.StatusOK, ""), nil
}

// Close 호출 여부를 기록합니다.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Requests 지금까지 수행된 요청 목록을 반환합니다.
func (f *Fetcher) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

// CallCount 지금까지 수행된 요청 횟수를 반환합니다.
func (f *Fetcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Closed Close가 호출되었는지 여부를 반환합니다.
func (f *Fetcher) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// NewResponse 지정된 상태 코드와 본문을 가진 HTTP 응답 객체를 생성합니다.
func NewResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// NewHTMLResponse Content-Type이 text/html인 200 OK 응답 객체를 생성합니다.
func NewHTMLResponse(body string) *http.Response {
	resp := NewResponse(http.StatusOK, body)
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	return resp
}
