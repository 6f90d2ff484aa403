package contract

// RunState 작업 인스턴스가 실행되는 동안 거치는 단계를 나타냅니다.
//
// 정상적인 실행은 아래의 순서로 진행됩니다.
//
//	Init -> Fetching -> Extracting -> Diffing -> Notifying -> Persisting -> Done
//
// 실행 도중 오류가 발생하거나 취소/타임아웃되면 어느 단계에서든 Aborted로 전이되며,
// Done과 Aborted는 종료 상태이므로 더 이상 전이할 수 없습니다.
type RunState int

const (
	// RunStateInit 작업 인스턴스가 생성되었으나 아직 실행이 시작되지 않은 상태입니다.
	RunStateInit RunState = iota

	// RunStateFetching 대상 페이지를 가져오는 중입니다.
	RunStateFetching

	// RunStateExtracting 가져온 페이지에서 상품 정보를 추출하는 중입니다.
	RunStateExtracting

	// RunStateDiffing 이전 스냅샷과 비교하여 변경 사항을 탐지하는 중입니다.
	RunStateDiffing

	// RunStateNotifying 탐지된 변경 사항을 알림으로 발송하는 중입니다.
	RunStateNotifying

	// RunStatePersisting 새로운 스냅샷을 저장소에 기록하는 중입니다.
	RunStatePersisting

	// RunStateDone 모든 단계가 정상적으로 완료된 종료 상태입니다.
	RunStateDone

	// RunStateAborted 오류, 취소 또는 타임아웃으로 실행이 중단된 종료 상태입니다.
	RunStateAborted
)

func (s RunState) String() string {
	switch s {
	case RunStateInit:
		return "Init"
	case RunStateFetching:
		return "Fetching"
	case RunStateExtracting:
		return "Extracting"
	case RunStateDiffing:
		return "Diffing"
	case RunStateNotifying:
		return "Notifying"
	case RunStatePersisting:
		return "Persisting"
	case RunStateDone:
		return "Done"
	case RunStateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// IsTerminal 더 이상 다른 상태로 전이할 수 없는 종료 상태인지 여부를 반환합니다.
func (s RunState) IsTerminal() bool {
	return s == RunStateDone || s == RunStateAborted
}

// CanTransition 현재 상태에서 next 상태로의 전이가 허용되는지 검사합니다.
//
// 허용되는 전이는 두 가지뿐입니다.
//  1. 정상 진행: 바로 다음 단계로의 전이 (Init -> Fetching, ... , Persisting -> Done)
//  2. 중단: 종료 상태가 아닌 모든 상태에서 Aborted로의 전이
func (s RunState) CanTransition(next RunState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == RunStateAborted {
		return true
	}
	return next == s+1
}
