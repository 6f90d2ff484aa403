package mocks

import (
	"context"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

// MockNotificationSender는 contract.NotificationSender 인터페이스의 Mock 구현체입니다.
type MockNotificationSender struct {
	mock.Mock
}

// Notify 알림 발송을 요청하는 Mock 메서드입니다.
func (m *MockNotificationSender) Notify(ctx context.Context, n contract.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// NotifyDefault 기본 Notifier로 알림을 발송하는 Mock 메서드입니다.
func (m *MockNotificationSender) NotifyDefault(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// NotifyDefaultWithError 기본 Notifier로 오류 알림을 발송하는 Mock 메서드입니다.
func (m *MockNotificationSender) NotifyDefaultWithError(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// SupportsHTML HTML 지원 여부를 반환하는 Mock 메서드입니다.
func (m *MockNotificationSender) SupportsHTML(notifierID contract.NotifierID) bool {
	args := m.Called(notifierID)
	return args.Bool(0)
}
