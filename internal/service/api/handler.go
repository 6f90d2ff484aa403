package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
	"github.com/labstack/echo/v4"
)

// handler API 엔드포인트의 요청 처리를 담당합니다.
type handler struct {
	appConfig *config.AppConfig

	notificationService NotificationService

	taskSubmitter contract.TaskSubmitter

	taskStatusReporter contract.TaskStatusReporter

	taskResultStore contract.TaskResultStore
}

func newHandler(
	appConfig *config.AppConfig,
	notificationService NotificationService,
	taskSubmitter contract.TaskSubmitter,
	taskStatusReporter contract.TaskStatusReporter,
	taskResultStore contract.TaskResultStore,
) *handler {
	return &handler{
		appConfig: appConfig,

		notificationService: notificationService,

		taskSubmitter: taskSubmitter,

		taskStatusReporter: taskStatusReporter,

		taskResultStore: taskResultStore,
	}
}

// healthResponse GET /healthz 응답 형식입니다.
type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthz 알림 서비스의 상태를 확인하여 전체 서비스의 동작 가능 여부를 반환합니다.
func (h *handler) healthz(c echo.Context) error {
	if err := h.notificationService.Health(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// runningTaskStatus 실행 중인 작업 인스턴스의 응답 형식입니다.
type runningTaskStatus struct {
	TaskID         string `json:"task_id"`
	CommandID      string `json:"command_id"`
	InstanceID     string `json:"instance_id"`
	State          string `json:"state"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
}

// watchStatus 설정된 감시 명령 하나의 스냅샷 상태 응답 형식입니다.
type watchStatus struct {
	TaskID       string `json:"task_id"`
	CommandID    string `json:"command_id"`
	Title        string `json:"title,omitempty"`
	HasSnapshot  bool   `json:"has_snapshot"`
	ProductCount int    `json:"product_count"`
}

// statusResponse GET /api/v1/status 응답 형식입니다.
type statusResponse struct {
	RunningTasks []runningTaskStatus `json:"running_tasks"`
	Watches      []watchStatus       `json:"watches"`
}

// snapshotSummary 저장된 스냅샷에서 상품 수만 읽어내기 위한 최소 구조체입니다.
// 상품의 구체적인 형식은 각 작업 구현에 속하므로 여기서는 해석하지 않습니다.
type snapshotSummary struct {
	Products []json.RawMessage `json:"products"`
}

// getStatus 실행 중인 작업 목록과 설정된 감시 명령별 스냅샷 상태를 반환합니다.
func (h *handler) getStatus(c echo.Context) error {
	running := h.taskStatusReporter.RunningTasks()

	runningTasks := make([]runningTaskStatus, 0, len(running))
	for _, status := range running {
		runningTasks = append(runningTasks, runningTaskStatus{
			TaskID:         string(status.TaskID),
			CommandID:      string(status.CommandID),
			InstanceID:     string(status.InstanceID),
			State:          status.State.String(),
			ElapsedSeconds: int64(status.Elapsed / time.Second),
		})
	}

	watches := make([]watchStatus, 0)
	for _, t := range h.appConfig.Tasks {
		for _, cmd := range t.Commands {
			watches = append(watches, h.watchStatusOf(t, cmd))
		}
	}

	return c.JSON(http.StatusOK, statusResponse{
		RunningTasks: runningTasks,
		Watches:      watches,
	})
}

// watchStatusOf 감시 명령 하나의 스냅샷 상태를 조회합니다.
func (h *handler) watchStatusOf(t config.TaskConfig, cmd config.CommandConfig) watchStatus {
	status := watchStatus{
		TaskID:    t.ID,
		CommandID: cmd.ID,
		Title:     cmd.Title,
	}

	var summary snapshotSummary
	err := h.taskResultStore.Load(contract.TaskID(t.ID), contract.TaskCommandID(cmd.ID), &summary)
	switch {
	case err == nil:
		status.HasSnapshot = true
		status.ProductCount = len(summary.Products)

	case errors.Is(err, contract.ErrTaskResultNotFound):
		// 아직 한 번도 실행되지 않은 감시 명령입니다.

	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"task_id":    t.ID,
			"command_id": cmd.ID,
			"error":      err,
		}).Warn("스냅샷 상태 조회 실패")
	}

	return status
}

// runRequest POST /api/v1/runs 요청 본문 형식입니다.
type runRequest struct {
	TaskID     string `json:"task_id"`
	CommandID  string `json:"command_id"`
	NotifierID string `json:"notifier_id"`
}

// runResponse POST /api/v1/runs 응답 형식입니다.
type runResponse struct {
	Result string `json:"result"`
}

// postRun 감시 작업의 수동 실행을 요청합니다.
//
// 실행 요청은 작업 큐에 등록되는 즉시 202 Accepted로 응답하며,
// 실제 실행 결과는 알림 채널을 통해 전달됩니다.
func (h *handler) postRun(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "요청 본문을 해석할 수 없습니다")
	}

	if strings.TrimSpace(req.TaskID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_id는 필수입니다")
	}
	if strings.TrimSpace(req.CommandID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "command_id는 필수입니다")
	}

	if err := h.taskSubmitter.Submit(c.Request().Context(), &contract.TaskSubmitRequest{
		TaskID:        contract.TaskID(req.TaskID),
		CommandID:     contract.TaskCommandID(req.CommandID),
		NotifierID:    contract.NotifierID(req.NotifierID),
		NotifyOnStart: true,
		RunBy:         contract.TaskRunByUser,
	}); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"task_id":    req.TaskID,
		"command_id": req.CommandID,
		"remote_ip":  c.RealIP(),
	}).Info("수동 실행 요청 접수 완료")

	return c.JSON(http.StatusAccepted, runResponse{Result: "accepted"})
}
