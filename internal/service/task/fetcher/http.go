package fetcher

import (
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
)

const (
	// defaultTimeout HTTP 요청 전체(전송 ~ 본문 수신 완료)에 대한 기본 제한 시간입니다.
	defaultTimeout = 30 * time.Second

	// defaultMaxRedirects 기본 최대 리다이렉트 허용 횟수입니다.
	defaultMaxRedirects = 10
)

// HTTPFetcher 실제 네트워크 I/O를 수행하는 체인의 최내곽 구현체입니다.
//
// 기본 Transport에는 브라우저와 유사한 요청 헤더를 부여하는 Cloudflare 우회
// 래퍼가 적용되어, 단순 HTTP 모드에서도 일반적인 봇 차단 규칙에 걸리지 않도록 합니다.
type HTTPFetcher struct {
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Option HTTPFetcher의 동작을 제어하는 설정 함수입니다.
type Option func(*httpFetcherOptions)

type httpFetcherOptions struct {
	timeout      time.Duration
	maxRedirects int
	transport    http.RoundTripper
}

// WithTimeout HTTP 요청 전체에 대한 제한 시간을 설정합니다. (0: 무제한)
func WithTimeout(timeout time.Duration) Option {
	return func(o *httpFetcherOptions) {
		if timeout >= 0 {
			o.timeout = timeout
		}
	}
}

// WithMaxRedirects 최대 리다이렉트 허용 횟수를 설정합니다. (0: 리다이렉트 금지)
func WithMaxRedirects(maxRedirects int) Option {
	return func(o *httpFetcherOptions) {
		if maxRedirects >= 0 {
			o.maxRedirects = maxRedirects
		}
	}
}

// WithTransport 기본 Transport를 교체합니다. 주로 테스트에서 사용됩니다.
//
// 교체된 Transport에는 Cloudflare 우회 래퍼가 적용되지 않습니다.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *httpFetcherOptions) {
		o.transport = transport
	}
}

// NewHTTPFetcher 새로운 HTTPFetcher 인스턴스를 생성합니다.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	options := &httpFetcherOptions{
		timeout:      defaultTimeout,
		maxRedirects: defaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(options)
	}

	transport := options.transport
	if transport == nil {
		// 기본 Transport 복제 후 브라우저 유사 헤더(Accept, Accept-Language 등)를
		// 주입하는 래퍼를 적용합니다.
		transport = cloudflarebp.AddCloudFlareByPass(http.DefaultTransport.(*http.Transport).Clone())
	}

	maxRedirects := options.maxRedirects

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   options.timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return apperrors.Newf(apperrors.ExecutionFailed, "최대 리다이렉트 허용 횟수(%d회)를 초과하였습니다", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Do HTTP 요청을 수행합니다.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Close 유휴 커넥션을 모두 닫습니다.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
