package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/notification/notifier"
)

// TestMain 모든 테스트 종료 후 고루틴 누수가 없는지 검증합니다.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeNotifier 테스트용 Notifier 구현체입니다. Send로 접수된 알림을 기록합니다.
type fakeNotifier struct {
	id           contract.NotifierID
	supportsHTML bool

	mu       sync.Mutex
	received []contract.Notification

	done chan struct{}
}

func newFakeNotifier(id contract.NotifierID, supportsHTML bool) *fakeNotifier {
	return &fakeNotifier{
		id:           id,
		supportsHTML: supportsHTML,
		done:         make(chan struct{}),
	}
}

func (n *fakeNotifier) ID() contract.NotifierID { return n.id }
func (n *fakeNotifier) SupportsHTML() bool      { return n.supportsHTML }
func (n *fakeNotifier) Done() <-chan struct{}   { return n.done }

func (n *fakeNotifier) Run(ctx context.Context) {
	<-ctx.Done()
	close(n.done)
}

func (n *fakeNotifier) Send(_ context.Context, notification contract.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, notification)
	return nil
}

func (n *fakeNotifier) receivedNotifications() []contract.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]contract.Notification, len(n.received))
	copy(out, n.received)
	return out
}

// fakeFactory 고정된 Notifier 목록을 반환하는 테스트용 Factory입니다.
type fakeFactory struct {
	notifiers []notifier.Notifier
	err       error
}

func (f *fakeFactory) RegisterCreator(notifier.CreatorFunc) {}

func (f *fakeFactory) CreateNotifiers(*config.AppConfig) ([]notifier.Notifier, error) {
	return f.notifiers, f.err
}

func newServiceTestConfig() *config.AppConfig {
	appConfig := &config.AppConfig{}
	appConfig.Notifiers.DefaultNotifierID = "telegram"
	return appConfig
}

func startTestService(t *testing.T, notifiers ...notifier.Notifier) (*Service, context.CancelFunc, *sync.WaitGroup) {
	t.Helper()

	service := NewService(newServiceTestConfig())
	service.SetNotifierFactory(&fakeFactory{notifiers: notifiers})

	ctx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}
	serviceStopWG.Add(1)

	require.NoError(t, service.Start(ctx, serviceStopWG))

	return service, cancel, serviceStopWG
}

func TestService_Start(t *testing.T) {
	t.Run("성공: 서비스 시작 및 기본 Notifier 등록", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier)
		defer func() {
			cancel()
			serviceStopWG.Wait()
		}()

		assert.NoError(t, service.Health())
	})

	t.Run("실패: 기본 Notifier가 목록에 없으면 에러", func(t *testing.T) {
		service := NewService(newServiceTestConfig())
		service.SetNotifierFactory(&fakeFactory{notifiers: []notifier.Notifier{newFakeNotifier("other", false)}})

		serviceStopWG := &sync.WaitGroup{}
		serviceStopWG.Add(1)

		err := service.Start(context.Background(), serviceStopWG)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "기본 Notifier")
	})

	t.Run("실패: Notifier 초기화 실패 시 에러 전파", func(t *testing.T) {
		service := NewService(newServiceTestConfig())
		service.SetNotifierFactory(&fakeFactory{err: assert.AnError})

		serviceStopWG := &sync.WaitGroup{}
		serviceStopWG.Add(1)

		assert.Error(t, service.Start(context.Background(), serviceStopWG))
	})
}

func TestService_Notify(t *testing.T) {
	t.Run("성공: 지정된 Notifier로 라우팅", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)
		secondary := newFakeNotifier("telegram-dev", true)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier, secondary)
		defer func() {
			cancel()
			serviceStopWG.Wait()
		}()

		err := service.Notify(context.Background(), contract.Notification{
			NotifierID: "telegram-dev",
			Message:    "개발 채널 메시지",
		})

		require.NoError(t, err)
		require.Len(t, secondary.receivedNotifications(), 1)
		assert.Empty(t, defaultNotifier.receivedNotifications())
	})

	t.Run("성공: NotifierID가 비어있으면 기본 Notifier 사용", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier)
		defer func() {
			cancel()
			serviceStopWG.Wait()
		}()

		require.NoError(t, service.Notify(context.Background(), contract.NewNotification("기본 채널 메시지")))

		received := defaultNotifier.receivedNotifications()
		require.Len(t, received, 1)
		assert.Equal(t, "기본 채널 메시지", received[0].Message)
	})

	t.Run("실패: 알 수 없는 Notifier는 기본 채널로 오류 안내 후 에러 반환", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier)
		defer func() {
			cancel()
			serviceStopWG.Wait()
		}()

		err := service.Notify(context.Background(), contract.Notification{
			NotifierID: "unknown",
			Message:    "메시지",
		})

		assert.ErrorIs(t, err, ErrNotifierNotFound)

		received := defaultNotifier.receivedNotifications()
		require.Len(t, received, 1)
		assert.True(t, received[0].ErrorOccurred)
		assert.Contains(t, received[0].Message, "unknown")
	})

	t.Run("실패: 서비스 미실행 상태에서는 ErrServiceNotRunning 반환", func(t *testing.T) {
		service := NewService(newServiceTestConfig())

		err := service.Notify(context.Background(), contract.NewNotification("메시지"))
		assert.ErrorIs(t, err, ErrServiceNotRunning)
	})
}

func TestService_NotifyDefault(t *testing.T) {
	t.Run("성공: 기본 채널로 일반/오류 메시지 발송", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier)
		defer func() {
			cancel()
			serviceStopWG.Wait()
		}()

		require.NoError(t, service.NotifyDefault(context.Background(), "일반 메시지"))
		require.NoError(t, service.NotifyDefaultWithError(context.Background(), "오류 메시지"))

		received := defaultNotifier.receivedNotifications()
		require.Len(t, received, 2)
		assert.False(t, received[0].ErrorOccurred)
		assert.True(t, received[1].ErrorOccurred)
	})
}

func TestService_SupportsHTML(t *testing.T) {
	t.Run("성공: Notifier별 HTML 지원 여부 조회", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)
		plain := newFakeNotifier("plain", false)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier, plain)
		defer func() {
			cancel()
			serviceStopWG.Wait()
		}()

		assert.True(t, service.SupportsHTML("telegram"))
		assert.False(t, service.SupportsHTML("plain"))
		assert.False(t, service.SupportsHTML("unknown"))
		assert.True(t, service.SupportsHTML("")) // 기본 Notifier
	})
}

func TestService_Shutdown(t *testing.T) {
	t.Run("성공: 종료 후 상태 정리 및 요청 거부", func(t *testing.T) {
		defaultNotifier := newFakeNotifier("telegram", true)

		service, cancel, serviceStopWG := startTestService(t, defaultNotifier)

		cancel()
		serviceStopWG.Wait()

		require.Eventually(t, func() bool {
			return service.Health() != nil
		}, 3*time.Second, 10*time.Millisecond)

		assert.ErrorIs(t, service.Notify(context.Background(), contract.NewNotification("메시지")), ErrServiceNotRunning)
		assert.ErrorIs(t, service.NotifyDefault(context.Background(), "메시지"), ErrServiceNotRunning)
	})
}
