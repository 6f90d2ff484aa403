package thirtymall

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/browser"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/scraper"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// executeWatchNewProducts 설정된 검색 대상들을 순회하며 상품 목록을 수집하고,
// 이전 스냅샷에 없던 신규 상품을 찾아 알림 메시지를 구성합니다.
//
// 수집 절차:
//  1. 브라우저 사용이 가능한 환경이면 렌더링 세션을 준비합니다.
//  2. 검색 대상별로 렌더링(또는 HTTP 요청)을 수행하여 상품을 추출합니다.
//     개별 검색 실패는 경고로 남기고 나머지 검색을 계속 진행합니다.
//  3. 전체 수집 결과를 이전 스냅샷의 상품 ID 집합과 비교하여 신규 상품을 판별합니다.
//
// 상품이 하나도 수집되지 않은 경우에는 스냅샷을 저장하지 않습니다.
// 페이지 구조 변경 등으로 추출이 일시적으로 실패했을 때 기존 기준선을 비우면
// 다음 실행에서 전체 상품이 신규로 오인되기 때문입니다.
func (t *task) executeWatchNewProducts(ctx context.Context, commandSettings *watchNewProductsSettings, prevSnapshot *watchNewProductsSnapshot) (string, any, error) {
	session := t.newRenderSession()
	if session != nil {
		defer session.Close()
	}

	cooldown := time.Duration(commandSettings.SearchCooldownMS) * time.Millisecond
	limiter := rate.NewLimiter(rate.Every(cooldown), 1)

	var (
		currentProducts []*product
		failedSearches  []string
	)

	t.AdvanceRunState(contract.RunStateFetching)

	for _, target := range commandSettings.Searches {
		if t.IsCanceled() {
			return "", nil, ctx.Err()
		}

		// 검색 대상 사이에 일정 간격을 두어 대상 서버에 연속 요청으로 인한 부하를 주지 않습니다.
		if err := limiter.Wait(ctx); err != nil {
			return "", nil, err
		}

		doc, err := t.fetchSearchPage(ctx, session, target)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}

			t.LogWithContext(component, applog.WarnLevel, "검색 결과 페이지 수집이 실패하였습니다", applog.Fields{
				"search": target.Name,
				"url":    target.URL,
			}, err)
			failedSearches = append(failedSearches, target.Name)

			continue
		}

		t.AdvanceRunState(contract.RunStateExtracting)

		products := extractProducts(doc, target, target.URL)

		t.LogWithContext(component, applog.DebugLevel, "검색 결과 페이지에서 상품을 추출하였습니다", applog.Fields{
			"search":        target.Name,
			"product_count": len(products),
		}, nil)

		currentProducts = append(currentProducts, products...)
	}

	// 모든 검색이 실패한 경우는 일시적인 수집 환경 문제일 가능성이 높으므로
	// 작업 실패로 처리하고 기존 스냅샷을 유지합니다.
	if len(failedSearches) == len(commandSettings.Searches) {
		return "", nil, apperrors.Newf(apperrors.ExecutionFailed, "모든 검색 대상(%s)의 페이지 수집이 실패하였습니다", strings.Join(failedSearches, ", "))
	}

	if len(currentProducts) == 0 {
		t.LogWithContext(component, applog.WarnLevel, "수집된 상품이 없습니다. 페이지 구조 변경 여부를 확인해 주세요.", nil, nil)

		var message string
		if t.RunBy() == contract.TaskRunByUser {
			message = "검색 결과에서 상품을 찾을 수 없습니다.😱\n\n페이지 구조가 변경되었을 수 있습니다."
		}

		// 빈 결과로 스냅샷을 덮어쓰지 않습니다.
		return message, nil, nil
	}

	t.AdvanceRunState(contract.RunStateDiffing)

	freshProducts := newProducts(currentProducts, prevSnapshot.idSet())

	t.LogWithContext(component, applog.InfoLevel, "신규 상품 판별이 완료되었습니다", applog.Fields{
		"product_count": len(currentProducts),
		"fresh_count":   len(freshProducts),
		"failed_count":  len(failedSearches),
	}, nil)

	message := buildNotificationMessage(commandSettings, freshProducts)
	if message == "" && t.RunBy() == contract.TaskRunByUser {
		message = fmt.Sprintf("상품 %d개를 확인하였습니다. 새로 등록된 상품은 없습니다.", len(currentProducts))
	}

	return message, &watchNewProductsSnapshot{Products: currentProducts}, nil
}

// newRenderSession 브라우저 렌더링 세션을 준비합니다.
//
// 브라우저 사용이 비활성화되었거나 실행 환경에서 사용 가능한 브라우저를 찾지
// 못한 경우 nil을 반환하며, 이 경우 수집은 단순 HTTP 요청 모드로 동작합니다.
// 세션 생성 실패도 치명적 오류로 다루지 않고 HTTP 모드로 내려갑니다.
func (t *task) newRenderSession() *browser.Session {
	if !t.browserConfig.Enabled || !t.capability.Available {
		return nil
	}

	session, err := browser.NewSession(browser.Config{
		ChromePath:  t.capability.ChromePath,
		Headless:    t.browserConfig.Headless,
		SettleWait:  t.browserConfig.SettleWaitDuration(),
		ContentWait: t.browserConfig.ContentWaitDuration(),
	})
	if err != nil {
		t.LogWithContext(component, applog.WarnLevel, "브라우저 세션 생성이 실패하여 HTTP 수집 모드로 동작합니다", nil, err)
		return nil
	}

	return session
}

// fetchSearchPage 검색 결과 페이지를 수집하여 파싱된 문서를 반환합니다.
//
// 렌더링 세션이 있으면 브라우저 렌더링을 우선 시도하고,
// 렌더링이 실패하면 단순 HTTP 요청으로 한 번 더 시도합니다.
func (t *task) fetchSearchPage(ctx context.Context, session *browser.Session, target searchTarget) (*goquery.Document, error) {
	if session != nil {
		html, err := session.Render(ctx, target.URL, target.Keyword)
		if err == nil {
			if t.browserConfig.DumpHTML {
				browser.DumpHTML(t.browserConfig.DebugDir, target.Name, html)
			}

			return scraper.ParseDocument(html)
		}
		if ctx.Err() != nil {
			return nil, err
		}

		t.LogWithContext(component, applog.WarnLevel, "브라우저 렌더링이 실패하여 HTTP 요청으로 재시도합니다", applog.Fields{
			"search": target.Name,
		}, err)
	}

	return scraper.FetchDocument(ctx, t.Fetcher(), target.URL, nil)
}
