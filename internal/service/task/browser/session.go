package browser

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

const (
	// defaultSettleWait 페이지 진입 후 초기 렌더링을 기다리는 기본 시간입니다.
	defaultSettleWait = 5 * time.Second

	// defaultContentWait 본문에 키워드가 나타날 때까지 대기하는 기본 상한입니다.
	defaultContentWait = 15 * time.Second

	// contentPollInterval 본문 감시 폴링 주기입니다.
	contentPollInterval = 500 * time.Millisecond

	// minStableContentLength 콘텐츠가 로드되었다고 간주할 본문 텍스트의 최소 길이입니다.
	minStableContentLength = 1000

	// halfScrollSettle 중간 스크롤 후 지연 로딩을 기다리는 시간입니다.
	halfScrollSettle = 2 * time.Second

	// fullScrollSettle 최하단 스크롤 후 지연 로딩을 기다리는 시간입니다.
	fullScrollSettle = 3 * time.Second
)

// Session 하나의 실행 주기 동안 재사용되는 헤드리스 브라우저 프로세스입니다.
//
// 감시 대상마다 브라우저를 새로 띄우는 비용을 피하기 위해 프로세스는 한 번만 생성하고,
// 대상별 렌더링은 각각 새로운 탭에서 수행합니다.
// 사용 후에는 모든 종료 경로에서 반드시 Close를 호출해야 합니다.
type Session struct {
	allocCancel context.CancelFunc

	// browserCtx 세션이 공유하는 브라우저 프로세스 수준의 컨텍스트입니다.
	// 대상별 탭 컨텍스트는 모두 여기에서 파생됩니다.
	browserCtx    context.Context
	browserCancel context.CancelFunc

	settleWait  time.Duration
	contentWait time.Duration
}

// Config 브라우저 세션의 동작 설정입니다.
type Config struct {
	// ChromePath 사용할 Chrome 실행 파일 경로입니다. (필수, DetectCapability로 감지)
	ChromePath string

	// Headless 헤드리스 모드로 실행할지 여부입니다.
	Headless bool

	// SettleWait 페이지 진입 후 초기 렌더링 대기 시간입니다. (0: 기본값 5초)
	SettleWait time.Duration

	// ContentWait 본문에 키워드가 나타날 때까지 기다리는 상한입니다. (0: 기본값 15초)
	ContentWait time.Duration

	// UserAgent 브라우저에 적용할 User-Agent입니다. (빈 문자열: Chrome 기본값)
	UserAgent string
}

// NewSession 새로운 브라우저 세션을 생성합니다.
//
// 실제 브라우저 프로세스는 첫 렌더링 시점에 기동됩니다.
func NewSession(cfg Config) (*Session, error) {
	if cfg.ChromePath == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "Chrome 실행 파일 경로가 지정되지 않았습니다")
	}

	settleWait := cfg.SettleWait
	if settleWait <= 0 {
		settleWait = defaultSettleWait
	}
	contentWait := cfg.ContentWait
	if contentWait <= 0 {
		contentWait = defaultContentWait
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(cfg.ChromePath),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	// 브라우저 수준 컨텍스트는 세션당 하나만 만들고, 렌더링마다 여기에서 탭을 파생시킵니다.
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))

	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		settleWait:    settleWait,
		contentWait:   contentWait,
	}, nil
}

// Render 대상 URL을 새 탭에서 렌더링하고, 완성된 DOM의 outerHTML을 반환합니다.
//
// 렌더링 절차:
//  1. 페이지 진입 후 초기 렌더링 대기 (settleWait)
//  2. 페이지 중간 지점까지 스크롤 후 지연 로딩 대기
//  3. 최하단까지 스크롤 후 지연 로딩 대기
//  4. 본문 텍스트에 keyword가 나타나거나 콘텐츠 길이가 안정될 때까지 폴링 (contentWait 상한)
//  5. outerHTML 스냅샷 수집
func (s *Session) Render(ctx context.Context, url, keyword string) (string, error) {
	// 브라우저 컨텍스트에서 파생된 새 탭입니다. 프로세스는 세션 전체가 공유합니다.
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	// 탭 작업의 수명을 호출자 컨텍스트에 묶습니다.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	start := time.Now()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.settleWait),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight/2);`, nil),
		chromedp.Sleep(halfScrollSettle),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil),
		chromedp.Sleep(fullScrollSettle),
	)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ExecutionFailed, "브라우저 페이지(%s) 렌더링이 실패하였습니다", url)
	}

	s.waitForContent(tabCtx, keyword)

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", apperrors.Wrapf(err, apperrors.ExecutionFailed, "렌더링된 페이지(%s)의 HTML 수집이 실패하였습니다", url)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url":       url,
		"html_size": len(html),
		"duration":  time.Since(start).String(),
	}).Debug("브라우저 렌더링 완료")

	return html, nil
}

// waitForContent 본문 텍스트에 키워드가 나타나거나 콘텐츠 길이가 안정될 때까지 대기합니다.
//
// 상한(contentWait)을 초과해도 에러로 처리하지 않습니다.
// 이 시점까지 그려진 DOM이 추출 단계의 입력이 되며, 부족한 결과는 추출 단계가 판단합니다.
func (s *Session) waitForContent(tabCtx context.Context, keyword string) {
	deadline := time.Now().Add(s.contentWait)

	var lastLength, stableCount int
	for time.Now().Before(deadline) {
		var bodyText string
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &bodyText)); err != nil {
			return
		}

		if keyword != "" && strings.Contains(bodyText, keyword) {
			return
		}

		// 키워드가 없는 페이지일 수 있으므로, 본문 길이가 일정 수준 이상에서
		// 두 주기 연속 변하지 않으면 로딩이 끝난 것으로 간주합니다.
		if len(bodyText) >= minStableContentLength && len(bodyText) == lastLength {
			stableCount++
			if stableCount >= 2 {
				return
			}
		} else {
			stableCount = 0
		}
		lastLength = len(bodyText)

		select {
		case <-tabCtx.Done():
			return
		case <-time.After(contentPollInterval):
		}
	}
}

// Close 브라우저 프로세스를 종료하고 모든 리소스를 해제합니다.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}
