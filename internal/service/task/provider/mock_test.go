package provider

import (
	"context"
	"sync"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
)

// fakeNotificationSender 발송 요청된 알림을 순서대로 기록하는 테스트용 구현체입니다.
type fakeNotificationSender struct {
	mu            sync.Mutex
	notifications []contract.Notification
	supportsHTML  bool
	notifyErr     error
}

func (s *fakeNotificationSender) Notify(_ context.Context, n contract.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return s.notifyErr
}

func (s *fakeNotificationSender) NotifyDefault(ctx context.Context, message string) error {
	return s.Notify(ctx, contract.NewNotification(message))
}

func (s *fakeNotificationSender) NotifyDefaultWithError(ctx context.Context, message string) error {
	return s.Notify(ctx, contract.NewErrorNotification(message))
}

func (s *fakeNotificationSender) SupportsHTML(contract.NotifierID) bool {
	return s.supportsHTML
}

// notifyContextRecorder Notify 호출 시점의 컨텍스트 상태(ctx.Err)를 함께 기록하는 구현체입니다.
type notifyContextRecorder struct {
	fakeNotificationSender
	ctxErrs []error
}

func (s *notifyContextRecorder) Notify(ctx context.Context, n contract.Notification) error {
	s.mu.Lock()
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	s.mu.Unlock()
	return s.fakeNotificationSender.Notify(ctx, n)
}

// NotifyContextErrs 기록된 컨텍스트 상태의 복사본을 반환합니다.
func (s *notifyContextRecorder) NotifyContextErrs() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.ctxErrs))
	copy(out, s.ctxErrs)
	return out
}

// Notifications 지금까지 기록된 알림의 복사본을 반환합니다.
func (s *fakeNotificationSender) Notifications() []contract.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contract.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
