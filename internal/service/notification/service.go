package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/notification/notifier"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/notification/notifier/telegram"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// component Notification 서비스의 로깅용 컴포넌트 이름
const component = "notification.service"

// Service 알림 발송을 총괄하는 서비스입니다.
//
// 설정 파일에 정의된 알림 채널(Notifier)들을 초기화하고, 각 채널의 발송 워커를
// 백그라운드 고루틴으로 실행합니다. 외부 컴포넌트(Task, API, 스케줄러)는
// contract.NotificationSender 인터페이스를 통해 이 서비스를 사용합니다.
type Service struct {
	appConfig *config.AppConfig

	notifiers       []notifier.Notifier
	defaultNotifier notifier.Notifier

	notifierFactory notifier.Factory

	// notifiersStopWG 모든 하위 Notifier의 종료를 대기하는 WaitGroup
	notifiersStopWG *sync.WaitGroup

	running   bool
	runningMu sync.Mutex
}

// 인터페이스 준수 확인
var (
	_ contract.NotificationSender        = (*Service)(nil)
	_ contract.NotificationHealthChecker = (*Service)(nil)
)

// NewService Notification 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig) *Service {
	service := &Service{
		appConfig: appConfig,

		defaultNotifier: nil,

		notifiersStopWG: &sync.WaitGroup{},

		running:   false,
		runningMu: sync.Mutex{},
	}

	// Factory 생성 및 Creator 등록
	factory := notifier.NewFactory()
	factory.RegisterCreator(telegram.NewCreator())
	service.notifierFactory = factory

	return service
}

// SetNotifierFactory Notifier 생성을 담당할 Factory를 교체합니다. 테스트에서 사용합니다.
func (s *Service) SetNotifierFactory(factory notifier.Factory) {
	s.notifierFactory = factory
}

// Start 알림 서비스를 시작하여 등록된 Notifier들을 활성화합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Notification 서비스가 이미 시작됨!!!")
		return nil
	}

	// 1. Notifier들을 초기화 및 실행
	notifiers, err := s.notifierFactory.CreateNotifiers(s.appConfig)
	if err != nil {
		defer serviceStopWG.Done()
		return NewErrNotifierInitFailed(err)
	}

	defaultNotifierID := contract.NotifierID(s.appConfig.Notifiers.DefaultNotifierID)

	for _, n := range notifiers {
		s.notifiers = append(s.notifiers, n)

		if n.ID() == defaultNotifierID {
			s.defaultNotifier = n
		}

		s.notifiersStopWG.Add(1)

		go func(n notifier.Notifier) {
			defer s.notifiersStopWG.Done()
			n.Run(serviceStopCtx)
		}(n)

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
		}).Debug("Notifier가 Notification 서비스에 등록됨")
	}

	// 2. 기본 Notifier 존재 여부 확인
	if s.defaultNotifier == nil {
		defer serviceStopWG.Done()
		return NewErrDefaultNotifierNotFound(s.appConfig.Notifiers.DefaultNotifierID)
	}

	// 3. 서비스 종료 감시 루틴 실행
	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponent(component).Info("Notification 서비스 시작됨")

	return nil
}

// waitForShutdown 서비스의 종료 신호를 감지하고 리소스를 안전하게 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("Notification 서비스 중지중...")

	// 등록된 모든 Notifier의 고루틴 작업이 완료(종료)될 때까지 대기합니다.
	// 각 Notifier의 Run 메서드는 종료 시 큐에 남은 메시지를 Drain한 후 반환합니다.
	s.notifiersStopWG.Wait()

	s.runningMu.Lock()
	s.running = false
	s.notifiers = nil
	s.defaultNotifier = nil
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 중지됨")
}

// Notify 지정된 Notifier를 통해 알림 메시지를 발송합니다.
//
// NotifierID가 비어있으면 기본 Notifier를 사용합니다.
// 등록되지 않은 NotifierID가 지정된 경우, 기본 Notifier로 오류 안내를 발송하고 에러를 반환합니다.
func (s *Service) Notify(ctx context.Context, n contract.Notification) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.NotifierID,
		}).Warn("Notification 서비스가 실행 중이 아니어서 메시지를 전송할 수 없습니다")
		return ErrServiceNotRunning
	}

	if n.NotifierID == "" {
		return s.defaultNotifier.Send(ctx, n)
	}

	for _, h := range s.notifiers {
		if h.ID() == n.NotifierID {
			return h.Send(ctx, n)
		}
	}

	m := fmt.Sprintf("알 수 없는 Notifier('%s')입니다. 알림메시지 발송이 실패하였습니다.(Message:%s)", n.NotifierID, n.Message)

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": n.NotifierID,
	}).Error(m)

	_ = s.defaultNotifier.Send(ctx, contract.NewErrorNotification(m))

	return ErrNotifierNotFound
}

// NotifyDefault 시스템 기본 알림 채널로 알림 메시지를 발송합니다.
func (s *Service) NotifyDefault(ctx context.Context, message string) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.defaultNotifier == nil {
		applog.WithComponent(component).Warn("Notification 서비스가 중지된 상태여서 메시지를 전송할 수 없습니다")
		return ErrServiceNotRunning
	}

	return s.defaultNotifier.Send(ctx, contract.NewNotification(message))
}

// NotifyDefaultWithError 시스템 기본 알림 채널로 "에러" 알림 메시지를 발송합니다.
// 시스템 오류, 작업 실패 등 관리자의 주의가 필요한 상황에서 사용합니다.
func (s *Service) NotifyDefaultWithError(ctx context.Context, message string) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.defaultNotifier == nil {
		applog.WithComponent(component).Warn("Notification 서비스가 중지된 상태여서 에러 메시지를 전송할 수 없습니다")
		return ErrServiceNotRunning
	}

	return s.defaultNotifier.Send(ctx, contract.NewErrorNotification(message))
}

// SupportsHTML 해당 Notifier가 HTML 포맷을 지원하는지 확인합니다.
// 등록되지 않은 Notifier에 대해서는 false를 반환합니다.
func (s *Service) SupportsHTML(notifierID contract.NotifierID) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if notifierID == "" && s.defaultNotifier != nil {
		return s.defaultNotifier.SupportsHTML()
	}

	for _, h := range s.notifiers {
		if h.ID() == notifierID {
			return h.SupportsHTML()
		}
	}

	return false
}

// Health 서비스가 정상적으로 실행 중인지 검사합니다.
func (s *Service) Health() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return ErrServiceNotRunning
	}

	return nil
}
