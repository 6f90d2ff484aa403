package contract

import (
	"context"
	"strings"
	"time"
)

// Notification 알림 발송 요청을 캡슐화한 데이터 전송 객체(DTO)입니다.
//
// 발송자(Task, API 등)가 알림 채널의 구체적인 포맷을 알 필요 없이
// 메타데이터를 채워서 전달하면, 수신 측 Notifier가 자신의 채널에 맞게 렌더링합니다.
type Notification struct {
	// NotifierID 알림을 발송할 대상 채널의 식별자입니다.
	// 비어있으면 시스템에 설정된 기본 Notifier가 사용됩니다.
	NotifierID NotifierID

	// TaskID 알림을 발생시킨 작업의 식별자입니다. (Optional)
	TaskID TaskID

	// CommandID 알림을 발생시킨 작업 명령의 식별자입니다. (Optional)
	CommandID TaskCommandID

	// InstanceID 알림을 발생시킨 작업 인스턴스의 식별자입니다. (Optional)
	InstanceID TaskInstanceID

	// Title 알림 메시지의 제목입니다. (Optional)
	Title string

	// Message 전송할 메시지 본문입니다. (Required)
	Message string

	// Elapsed 작업 시작부터 알림 발생까지의 경과 시간입니다. (Optional)
	// 0보다 큰 경우에만 메시지에 표기됩니다.
	Elapsed time.Duration

	// ErrorOccurred 이 알림이 오류 상황에 대한 것인지 여부입니다.
	ErrorOccurred bool
}

// NewNotification 메시지 본문만으로 기본 알림을 생성합니다.
func NewNotification(message string) Notification {
	return Notification{
		Message: message,
	}
}

// NewErrorNotification 오류 플래그가 설정된 알림을 생성합니다.
func NewErrorNotification(message string) Notification {
	return Notification{
		Message:       message,
		ErrorOccurred: true,
	}
}

// NewTaskNotification 작업 실행 결과에 대한 알림을 생성합니다.
func NewTaskNotification(notifierID NotifierID, taskID TaskID, commandID TaskCommandID, instanceID TaskInstanceID, title, message string, elapsed time.Duration, errorOccurred bool) Notification {
	return Notification{
		NotifierID:    notifierID,
		TaskID:        taskID,
		CommandID:     commandID,
		InstanceID:    instanceID,
		Title:         title,
		Message:       message,
		Elapsed:       elapsed,
		ErrorOccurred: errorOccurred,
	}
}

// Validate 알림이 발송 가능한 상태인지 검사합니다.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// NotificationSender 알림 발송 기능을 제공하는 인터페이스입니다.
// API, Task와 같은 클라이언트는 이 인터페이스를 통해 알림 서비스를 사용합니다.
type NotificationSender interface {
	// Notify 알림 발송을 요청합니다.
	//
	// 발송 요청이 정상적으로 큐에 등록되면 nil을 반환하며, 실제 전송 결과와는 무관합니다.
	// 큐가 가득 찼거나 서비스가 중지된 경우 에러를 반환합니다.
	Notify(ctx context.Context, n Notification) error

	// NotifyDefault 시스템에 설정된 기본 Notifier를 통해 알림 메시지를 발송합니다.
	NotifyDefault(ctx context.Context, message string) error

	// NotifyDefaultWithError 기본 Notifier를 통해 "오류" 성격의 알림 메시지를 발송합니다.
	// 시스템 내부 에러, 작업 실패 등 관리자의 주의가 필요한 상황에 사용합니다.
	NotifyDefaultWithError(ctx context.Context, message string) error

	// SupportsHTML 지정된 ID의 Notifier가 HTML 형식을 지원하는지 여부를 반환합니다.
	// 등록되지 않은 Notifier에 대해서는 false를 반환합니다.
	SupportsHTML(notifierID NotifierID) bool
}

// NotificationHealthChecker Notification 서비스의 상태를 확인하는 인터페이스입니다.
type NotificationHealthChecker interface {
	// Health 서비스가 정상적으로 실행 중이면 nil을, 그렇지 않으면 에러를 반환합니다.
	Health() error
}
