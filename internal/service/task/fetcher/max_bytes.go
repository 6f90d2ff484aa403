package fetcher

import (
	"errors"
	"io"
	"net/http"
)

const (
	// defaultMaxBytes 응답 본문의 기본 크기 제한값입니다. (10MB)
	defaultMaxBytes = 10 * 1024 * 1024

	// NoLimit 응답 본문에 대한 크기 제한을 적용하지 않음을 나타내는 특수 상수입니다.
	NoLimit = -1
)

// MaxBytesFetcher HTTP 응답 본문의 크기를 제한하는 미들웨어입니다.
//
// Content-Length 헤더 기반의 조기 차단과, 실제 읽기 시점의 바이트 수 제한을
// 함께 적용하여 조작된 Content-Length나 청크 전송에도 메모리 고갈을 방지합니다.
type MaxBytesFetcher struct {
	delegate Fetcher

	limit int64
}

var _ Fetcher = (*MaxBytesFetcher)(nil)

// NewMaxBytesFetcher 새로운 MaxBytesFetcher 인스턴스를 생성합니다.
//
// limit이 NoLimit(-1)이면 크기 제한 미들웨어를 생략하고 delegate를 그대로 반환합니다.
func NewMaxBytesFetcher(delegate Fetcher, limit int64) Fetcher {
	if limit == NoLimit {
		return delegate
	}
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	return &MaxBytesFetcher{
		delegate: delegate,
		limit:    limit,
	}
}

// Do HTTP 요청을 수행하고, 응답 본문에 크기 제한을 적용합니다.
//
// 반환된 응답의 Body를 읽는 도중 제한을 초과하면 ErrResponseBodyTooLarge가 발생합니다.
func (f *MaxBytesFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return nil, err
	}

	// Content-Length 헤더가 제한을 초과하면 본문을 읽지 않고 조기 차단합니다.
	if resp.ContentLength > f.limit {
		drainAndCloseBody(resp.Body)
		return nil, newErrResponseBodyTooLarge(f.limit)
	}

	// 실제 읽기 시점의 2차 방어입니다.
	// http.MaxBytesReader는 헤더를 신뢰하지 않고 읽은 바이트 수를 기준으로 제한합니다.
	resp.Body = &maxBytesReader{
		rc:    http.MaxBytesReader(nil, resp.Body, f.limit),
		limit: f.limit,
	}

	return resp, nil
}

func (f *MaxBytesFetcher) Close() error {
	return f.delegate.Close()
}

// maxBytesReader http.MaxBytesReader의 에러를 도메인 에러로 변환하는 래퍼입니다.
type maxBytesReader struct {
	rc    io.ReadCloser
	limit int64
}

func (r *maxBytesReader) Read(p []byte) (n int, err error) {
	n, err = r.rc.Read(p)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return n, newErrResponseBodyTooLarge(r.limit)
		}
	}
	return n, err
}

func (r *maxBytesReader) Close() error {
	return r.rc.Close()
}
