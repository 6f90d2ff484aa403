package contract

import "time"

// TaskStatus 실행 중인 작업 인스턴스의 상태 정보입니다.
type TaskStatus struct {
	TaskID     TaskID
	CommandID  TaskCommandID
	InstanceID TaskInstanceID
	NotifierID NotifierID

	// State 실행 상태 머신의 현재 상태입니다.
	State RunState

	// Elapsed 작업 시작 시점부터 현재까지의 경과 시간입니다.
	Elapsed time.Duration
}

// TaskStatusReporter 현재 실행 중인 작업 목록을 조회하기 위한 인터페이스입니다.
type TaskStatusReporter interface {
	// RunningTasks 현재 실행 중인 모든 작업 인스턴스의 상태를 반환합니다.
	// 반환 순서는 보장되지 않습니다.
	RunningTasks() []TaskStatus
}
