package fetcher_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/fetcher"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/fetcher/mocks"
)

func TestMaxBytesFetcher_SmallBodyPassesThrough(t *testing.T) {
	t.Parallel()

	mock := &mocks.Fetcher{
		DoFunc: func(_ *http.Request) (*http.Response, error) {
			return mocks.NewHTMLResponse("<html>작은 페이지</html>"), nil
		},
	}

	f := fetcher.NewMaxBytesFetcher(mock, 1024)

	resp, err := fetcher.Get(context.Background(), f, "http://30mall.example.com/search", nil)

	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "작은 페이지")
}

func TestMaxBytesFetcher_OversizedBodyFailsDuringRead(t *testing.T) {
	t.Parallel()

	// Content-Length 없이 스트리밍되는 본문도 읽기 시점에 차단되어야 합니다.
	mock := &mocks.Fetcher{
		DoFunc: func(_ *http.Request) (*http.Response, error) {
			resp := mocks.NewResponse(http.StatusOK, strings.Repeat("a", 2048))
			resp.ContentLength = -1
			return resp, nil
		},
	}

	f := fetcher.NewMaxBytesFetcher(mock, 1024)

	resp, err := fetcher.Get(context.Background(), f, "http://30mall.example.com/search", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = io.ReadAll(resp.Body)

	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrResponseBodyTooLarge)
}

func TestMaxBytesFetcher_ContentLengthEarlyBlock(t *testing.T) {
	t.Parallel()

	mock := &mocks.Fetcher{
		DoFunc: func(_ *http.Request) (*http.Response, error) {
			resp := mocks.NewResponse(http.StatusOK, strings.Repeat("a", 2048))
			resp.ContentLength = 2048
			return resp, nil
		},
	}

	f := fetcher.NewMaxBytesFetcher(mock, 1024)

	resp, err := fetcher.Get(context.Background(), f, "http://30mall.example.com/search", nil)

	require.Error(t, err, "Content-Length가 제한을 초과하면 본문을 읽기 전에 차단되어야 합니다")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, fetcher.ErrResponseBodyTooLarge)
}

func TestMaxBytesFetcher_NoLimitBypassesMiddleware(t *testing.T) {
	t.Parallel()

	mock := &mocks.Fetcher{}

	f := fetcher.NewMaxBytesFetcher(mock, fetcher.NoLimit)

	assert.Same(t, mock, f, "NoLimit이면 미들웨어를 생략하고 delegate를 그대로 반환해야 합니다")
}
