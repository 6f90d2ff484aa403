// Package api 운영 확인용 REST API 서버를 제공합니다.
//
// 외부에 공개되는 서비스가 아니라 감시 작업의 상태 확인과 수동 실행을 위한
// 내부 운영 표면입니다. 설정(api.enabled)으로 비활성화할 수 있으며 기본값은
// 비활성화 상태입니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// component API 서비스의 로깅용 컴포넌트 이름
const component = "api.service"

const (
	// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
	shutdownTimeout = 5 * time.Second

	// requestBodyLimit 요청 본문의 최대 허용 크기
	requestBodyLimit = "64K"
)

// NotificationService API 서버가 필요로 하는 알림 서비스 기능의 집합입니다.
type NotificationService interface {
	contract.NotificationSender
	contract.NotificationHealthChecker
}

// Service 운영 확인용 API 서버의 생명주기를 관리하는 서비스입니다.
//
// Echo 기반 HTTP 서버를 시작/종료하고, 미들웨어 체인(복구, 요청 ID, 요청 로깅,
// App Key 인증)과 라우트를 구성합니다. 서버는 고루틴으로 실행되며
// context를 통해 종료 신호를 받습니다.
type Service struct {
	appConfig *config.AppConfig

	notificationService NotificationService

	taskSubmitter contract.TaskSubmitter

	taskStatusReporter contract.TaskStatusReporter

	taskResultStore contract.TaskResultStore

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(
	appConfig *config.AppConfig,
	notificationService NotificationService,
	taskSubmitter contract.TaskSubmitter,
	taskStatusReporter contract.TaskStatusReporter,
	taskResultStore contract.TaskResultStore,
) *Service {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if notificationService == nil {
		panic("NotificationService는 필수입니다")
	}
	if taskSubmitter == nil {
		panic("TaskSubmitter는 필수입니다")
	}
	if taskStatusReporter == nil {
		panic("TaskStatusReporter는 필수입니다")
	}
	if taskResultStore == nil {
		panic("TaskResultStore는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,

		notificationService: notificationService,

		taskSubmitter: taskSubmitter,

		taskStatusReporter: taskStatusReporter,

		taskResultStore: taskResultStore,
	}
}

// Start API 서비스를 시작합니다.
//
// 서버는 별도의 고루틴에서 실행되며, 이 함수는 즉시 반환됩니다.
//
// 매개변수:
//   - serviceStopCtx: 서비스 종료 신호를 받기 위한 Context
//   - serviceStopWG: 서비스 종료 완료를 알리기 위한 WaitGroup
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: API 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponentAndFields(component, applog.Fields{
		"listen_port": s.appConfig.API.ListenPort,
	}).Info("서비스 시작 완료: API 서비스가 정상적으로 초기화되었습니다")

	return nil
}

// runServiceLoop 서버 설정, HTTP 서버 시작, 종료 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버 인스턴스를 생성하고 미들웨어 체인과 라우트를 구성합니다.
func (s *Service) setupServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = s.appConfig.Debug
	e.HTTPErrorHandler = errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	e.Use(requestLogger())

	h := newHandler(s.appConfig, s.notificationService, s.taskSubmitter, s.taskStatusReporter, s.taskResultStore)

	e.GET("/healthz", h.healthz)

	v1 := e.Group("/api/v1", requireAppKey(s.appConfig.API.AppKey))
	v1.GET("/status", h.getStatus)
	v1.POST("/runs", h.postRun)

	return e
}

// startHTTPServer HTTP 서버를 시작합니다.
//
// 이 함수는 블로킹되며, 서버가 종료되면 done 채널을 닫아 대기 중인 고루틴에 신호를 보냅니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	applog.WithComponentAndFields(component, applog.Fields{
		"listen_port": s.appConfig.API.ListenPort,
	}).Debug("HTTP 서버를 시작합니다")

	s.handleServerError(e.Start(fmt.Sprintf(":%d", s.appConfig.API.ListenPort)))
}

// handleServerError HTTP 서버 종료 원인에 따라 로깅 및 알림을 처리합니다.
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Info("HTTP 서버가 정상적으로 종료되었습니다")
		return
	}

	message := "API 서버 실행 중 치명적인 오류가 발생했습니다"
	applog.WithComponentAndFields(component, applog.Fields{
		"listen_port": s.appConfig.API.ListenPort,
		"error":       err,
	}).Error(message)

	s.notificationService.NotifyDefaultWithError(context.Background(), fmt.Sprintf("%s\n\n%v", message, err))
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(component).Info("종료 절차 진입: API 서비스 중지 시그널을 수신했습니다")

	case <-httpServerDone:
		// 포트 바인딩 실패 등으로 서버가 예기치 않게 종료된 경우입니다.
		// 이미 종료되었으므로 Shutdown 호출 없이 상태만 정리합니다.
		applog.WithComponent(component).Error("HTTP 서버가 예기치 않게 종료되었습니다")

		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("HTTP 서버 Shutdown 중 오류가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

// cleanup 서비스 종료 후 상태를 정리합니다.
func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("API 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}
