package fetcher

import (
	"math/rand/v2"
	"net/http"

	browser "github.com/EDDYCJY/fake-useragent"
)

// UserAgentFetcher HTTP 요청에 브라우저 User-Agent를 주입하는 미들웨어입니다.
//
// 요청에 User-Agent가 없을 경우에만 주입하며, 사용자 지정 목록이 있으면
// 그중에서, 없으면 실제 브라우저 User-Agent 풀에서 무작위로 선택합니다.
// 재시도 시에도 동일한 User-Agent를 유지하려면 이 미들웨어를
// 재시도 미들웨어보다 바깥쪽에 배치해야 합니다.
type UserAgentFetcher struct {
	delegate Fetcher

	userAgents []string
}

var _ Fetcher = (*UserAgentFetcher)(nil)

// NewUserAgentFetcher 새로운 UserAgentFetcher 인스턴스를 생성합니다.
func NewUserAgentFetcher(delegate Fetcher, userAgents []string) *UserAgentFetcher {
	return &UserAgentFetcher{
		delegate:   delegate,
		userAgents: userAgents,
	}
}

// Do 필요한 경우 User-Agent를 주입한 후 HTTP 요청을 수행합니다.
//
// 원본 요청 객체는 수정하지 않으며, 주입이 필요한 경우 복제본을 사용합니다.
func (f *UserAgentFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return f.delegate.Do(req)
	}

	var ua string
	if len(f.userAgents) > 0 {
		ua = f.userAgents[rand.IntN(len(f.userAgents))]
	} else {
		// 데스크탑 브라우저 User-Agent 풀에서 무작위 선택합니다.
		ua = browser.Computer()
	}

	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("User-Agent", ua)

	return f.delegate.Do(clonedReq)
}

func (f *UserAgentFetcher) Close() error {
	return f.delegate.Close()
}
