package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTaskSubmitter Submit 호출을 기록하는 테스트용 TaskSubmitter 구현체입니다.
type fakeTaskSubmitter struct {
	mu       sync.Mutex
	requests []*contract.TaskSubmitRequest
	err      error
}

func (f *fakeTaskSubmitter) Submit(_ context.Context, req *contract.TaskSubmitRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.err
}

func (f *fakeTaskSubmitter) submitted() []*contract.TaskSubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*contract.TaskSubmitRequest(nil), f.requests...)
}

// fakeNotificationSender 발송된 알림을 기록하는 테스트용 NotificationSender 구현체입니다.
type fakeNotificationSender struct {
	mu            sync.Mutex
	notifications []contract.Notification
}

func (f *fakeNotificationSender) Notify(_ context.Context, n contract.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationSender) NotifyDefault(ctx context.Context, message string) error {
	return f.Notify(ctx, contract.Notification{Message: message})
}

func (f *fakeNotificationSender) NotifyDefaultWithError(ctx context.Context, message string) error {
	return f.Notify(ctx, contract.Notification{Message: message, ErrorOccurred: true})
}

func (f *fakeNotificationSender) SupportsHTML(_ contract.NotifierID) bool {
	return false
}

func (f *fakeNotificationSender) received() []contract.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Notification(nil), f.notifications...)
}

// newSchedulerTestTaskConfigs 지정한 TimeSpec과 실행 가능 여부를 가진 단일 명령 작업 설정을 생성합니다.
func newSchedulerTestTaskConfigs(timeSpec string, runnable bool) []config.TaskConfig {
	cmd := config.CommandConfig{
		ID:                "WatchNewProducts",
		Title:             "신상품 알림",
		DefaultNotifierID: "telegram",
	}
	cmd.Scheduler.Runnable = runnable
	cmd.Scheduler.TimeSpec = timeSpec

	return []config.TaskConfig{
		{
			ID:       "THIRTYMALL",
			Title:    "떠리몰 감시",
			Commands: []config.CommandConfig{cmd},
		},
	}
}

// startTestScheduler 스케줄러를 시작하고 종료 헬퍼를 함께 반환합니다.
func startTestScheduler(t *testing.T, s *Scheduler) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)

	require.NoError(t, s.Start(ctx, &wg))

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
	t.Cleanup(stop)
	return stop
}

func TestNewService(t *testing.T) {
	t.Parallel()

	submitter := &fakeTaskSubmitter{}
	sender := &fakeNotificationSender{}
	taskConfigs := newSchedulerTestTaskConfigs("@daily", true)

	t.Run("성공: 유효한 의존성으로 생성된다", func(t *testing.T) {
		t.Parallel()

		s := NewService(taskConfigs, submitter, sender)

		require.NotNil(t, s)
		assert.Equal(t, taskConfigs, s.taskConfigs)
		assert.Equal(t, submitter, s.taskSubmitter)
		assert.Equal(t, sender, s.notificationSender)
		assert.False(t, s.running)
	})

	t.Run("실패: TaskSubmitter가 nil이면 패닉이 발생한다", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "TaskSubmitter는 필수입니다", func() {
			NewService(taskConfigs, nil, sender)
		})
	})

	t.Run("실패: NotificationSender가 nil이면 패닉이 발생한다", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "NotificationSender는 필수입니다", func() {
			NewService(taskConfigs, submitter, nil)
		})
	})
}

func TestScheduler_Start(t *testing.T) {
	t.Parallel()

	t.Run("성공: Runnable 명령만 Cron에 등록된다", func(t *testing.T) {
		t.Parallel()

		runnable := newSchedulerTestTaskConfigs("0 0 * * * *", true)
		disabled := newSchedulerTestTaskConfigs("0 0 * * * *", false)
		taskConfigs := append(runnable, disabled...)

		s := NewService(taskConfigs, &fakeTaskSubmitter{}, &fakeNotificationSender{})
		startTestScheduler(t, s)

		assert.Len(t, s.cron.Entries(), 1)
		assert.True(t, s.running)
	})

	t.Run("성공: 중복 시작 호출은 무시된다", func(t *testing.T) {
		t.Parallel()

		s := NewService(newSchedulerTestTaskConfigs("@hourly", true), &fakeTaskSubmitter{}, &fakeNotificationSender{})
		startTestScheduler(t, s)

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		assert.NoError(t, s.Start(ctx, &wg))
		cancel()
		wg.Wait()
	})

	t.Run("실패: 잘못된 Cron 표현식은 등록이 거부되고 오류 알림이 발송된다", func(t *testing.T) {
		t.Parallel()

		sender := &fakeNotificationSender{}
		s := NewService(newSchedulerTestTaskConfigs("이것은 크론이 아닙니다", true), &fakeTaskSubmitter{}, sender)
		startTestScheduler(t, s)

		assert.Empty(t, s.cron.Entries())

		notifications := sender.received()
		require.Len(t, notifications, 1)
		assert.True(t, notifications[0].ErrorOccurred)
		assert.Equal(t, contract.TaskID("THIRTYMALL"), notifications[0].TaskID)
		assert.Equal(t, contract.TaskCommandID("WatchNewProducts"), notifications[0].CommandID)
		assert.Equal(t, contract.NotifierID("telegram"), notifications[0].NotifierID)
		assert.Contains(t, notifications[0].Message, "스케줄 등록 실패")
	})
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	t.Run("성공: 스케줄 도래 시 작업 실행이 요청된다", func(t *testing.T) {
		t.Parallel()

		submitter := &fakeTaskSubmitter{}
		s := NewService(newSchedulerTestTaskConfigs("* * * * * *", true), submitter, &fakeNotificationSender{})
		startTestScheduler(t, s)

		assert.Eventually(t, func() bool {
			return len(submitter.submitted()) >= 1
		}, 3*time.Second, 50*time.Millisecond)

		req := submitter.submitted()[0]
		assert.Equal(t, contract.TaskID("THIRTYMALL"), req.TaskID)
		assert.Equal(t, contract.TaskCommandID("WatchNewProducts"), req.CommandID)
		assert.Equal(t, contract.NotifierID("telegram"), req.NotifierID)
		assert.Equal(t, contract.TaskRunByScheduler, req.RunBy)
		assert.False(t, req.NotifyOnStart)
	})

	t.Run("실패: 작업 실행 요청이 실패하면 오류 알림이 발송된다", func(t *testing.T) {
		t.Parallel()

		submitter := &fakeTaskSubmitter{
			err: apperrors.New(apperrors.Unavailable, "작업 큐가 가득 찼습니다"),
		}
		sender := &fakeNotificationSender{}
		s := NewService(newSchedulerTestTaskConfigs("* * * * * *", true), submitter, sender)
		startTestScheduler(t, s)

		assert.Eventually(t, func() bool {
			return len(sender.received()) >= 1
		}, 3*time.Second, 50*time.Millisecond)

		notification := sender.received()[0]
		assert.True(t, notification.ErrorOccurred)
		assert.Contains(t, notification.Message, "작업 요청 실패")
		assert.True(t, strings.Contains(notification.Message, "작업 큐가 가득 찼습니다"))
	})
}

func TestScheduler_Stop(t *testing.T) {
	t.Parallel()

	t.Run("성공: 종료 후 스케줄이 더 이상 실행되지 않는다", func(t *testing.T) {
		t.Parallel()

		submitter := &fakeTaskSubmitter{}
		s := NewService(newSchedulerTestTaskConfigs("* * * * * *", true), submitter, &fakeNotificationSender{})
		stop := startTestScheduler(t, s)

		stop()

		assert.False(t, s.running)
		assert.Nil(t, s.cron)

		count := len(submitter.submitted())
		time.Sleep(1500 * time.Millisecond)
		assert.Equal(t, count, len(submitter.submitted()))
	})

	t.Run("성공: 시작되지 않은 스케줄러의 Stop 호출은 안전하다", func(t *testing.T) {
		t.Parallel()

		s := NewService(nil, &fakeTaskSubmitter{}, &fakeNotificationSender{})
		assert.NotPanics(t, func() {
			s.Stop()
			s.Stop()
		})
	})
}
