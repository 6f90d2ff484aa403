// Package scraper Fetcher가 가져온 HTTP 응답을 UTF-8 HTML 문자열 또는
// goquery 문서로 변환하는 헬퍼를 제공합니다.
//
// 응답 헤더와 본문의 메타 정보를 기반으로 인코딩을 감지하여,
// EUC-KR 등 비 UTF-8 페이지도 자동으로 UTF-8로 변환합니다.
package scraper

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/fetcher"
)

// FetchHTML 지정된 URL의 HTML 페이지를 가져와 UTF-8 문자열로 반환합니다.
func FetchHTML(ctx context.Context, f fetcher.Fetcher, url string, header http.Header) (string, error) {
	resp, err := fetcher.Get(ctx, f, url, header)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.Unavailable, "HTML 페이지(%s) 요청이 실패하였습니다", url)
	}
	defer resp.Body.Close()

	// Content-Type 헤더와 본문의 메타 정보를 기반으로 인코딩을 UTF-8로 변환합니다.
	utf8Reader, err := charset.NewReader(&contextAwareReader{ctx: ctx, r: resp.Body}, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ParsingFailed, "페이지(%s)의 인코딩 변환이 실패하였습니다", url)
	}

	html, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ExecutionFailed, "페이지(%s)의 본문 읽기가 실패하였습니다", url)
	}

	return string(html), nil
}

// FetchDocument 지정된 URL의 HTML 페이지를 가져와 goquery 문서로 파싱합니다.
func FetchDocument(ctx context.Context, f fetcher.Fetcher, url string, header http.Header) (*goquery.Document, error) {
	html, err := FetchHTML(ctx, f, url, header)
	if err != nil {
		return nil, err
	}

	return ParseDocument(html)
}

// ParseDocument UTF-8 HTML 문자열을 goquery 문서로 파싱합니다.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "HTML 문서 파싱이 실패하였습니다")
	}

	return doc, nil
}

// contextAwareReader 매 Read 호출 전에 Context 취소 여부를 확인하는 io.Reader 래퍼입니다.
//
// 대용량 본문을 읽는 도중에도 취소 시그널에 반응할 수 있도록 합니다.
// 기본 Reader가 블로킹된 동안에는 취소를 감지할 수 없으므로,
// 타임아웃이 설정된 네트워크 스트림과 함께 사용해야 합니다.
type contextAwareReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextAwareReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
