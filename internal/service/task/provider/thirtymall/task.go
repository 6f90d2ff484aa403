package thirtymall

import (
	"context"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/browser"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/provider"
)

// component 로깅용 컴포넌트 이름
const component = "task.thirtymall"

const (
	// TaskID 써티몰(https://thirtymall.com/) 쇼핑몰과 연동되는 Task의 고유 식별자입니다.
	TaskID contract.TaskID = "THIRTYMALL"

	// WatchNewProductsCommand 검색 결과에 새로 등록된 상품을 감시하는 Command의 고유 식별자입니다.
	// 설정된 검색 결과 페이지들을 주기적으로 수집하여 상품 목록을 추출하고,
	// 이전 실행 시점에 없던 상품이 발견되면 텔레그램 등을 통해 알림을 전송합니다.
	WatchNewProductsCommand contract.TaskCommandID = "WatchNewProducts"
)

func init() {
	provider.MustRegister(TaskID, &provider.TaskConfig{
		Commands: []*provider.TaskCommandConfig{
			{
				ID: WatchNewProductsCommand,

				NewSnapshot: func() any { return &watchNewProductsSnapshot{} },
			},
		},
		NewTask: newTask,
	})
}

func newTask(params provider.NewTaskParams) (provider.Task, error) {
	if params.Request.TaskID != TaskID {
		return nil, provider.NewErrTaskNotSupported(params.Request.TaskID)
	}

	var browserConfig config.BrowserConfig
	if params.AppConfig != nil {
		browserConfig = params.AppConfig.Browser
	}

	thirtymallTask := &task{
		Base:          provider.NewBaseFromParams(params),
		browserConfig: browserConfig,
		capability:    params.BrowserCapability,
	}

	// Command에 따른 실행 함수를 미리 바인딩합니다.
	switch params.Request.CommandID {
	case WatchNewProductsCommand:
		commandSettings, err := provider.FindCommandSettings[watchNewProductsSettings](params.AppConfig, params.Request.TaskID, params.Request.CommandID)
		if err != nil {
			return nil, err
		}
		commandSettings.ApplyDefaults()

		thirtymallTask.SetExecute(func(ctx context.Context, previousSnapshot any, supportsHTML bool) (string, any, error) {
			prevSnapshot, ok := previousSnapshot.(*watchNewProductsSnapshot)
			if !ok {
				return "", nil, provider.NewErrTypeAssertionFailed(&watchNewProductsSnapshot{}, previousSnapshot)
			}

			return thirtymallTask.executeWatchNewProducts(ctx, commandSettings, prevSnapshot)
		})

	default:
		return nil, provider.NewErrCommandNotSupported(params.Request.CommandID, []contract.TaskCommandID{WatchNewProductsCommand})
	}

	return thirtymallTask, nil
}

type task struct {
	*provider.Base

	// browserConfig 렌더링 세션의 동작 설정입니다.
	browserConfig config.BrowserConfig

	// capability 실행 환경의 헤드리스 브라우저 사용 가능 여부입니다.
	// 사용 불가인 경우 단순 HTTP 수집 모드로만 동작합니다.
	capability browser.Capability
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ provider.Task = (*task)(nil)
