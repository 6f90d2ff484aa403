package errors

import (
	"fmt"
	"runtime"
)

// maxStackDepth 스택 트레이스 수집 시 저장할 최대 프레임 수입니다.
const maxStackDepth = 32

// stack 에러 생성 시점의 호출 스택 프로그램 카운터 목록입니다.
type stack []uintptr

// callers 현재 고루틴의 호출 스택을 수집합니다.
// callers 자신과 에러 생성자(New/Wrap 등)의 프레임은 건너뜁니다.
func callers() *stack {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	st := stack(pcs[0:n])
	return &st
}

// Format %+v 포맷팅 시 "함수명\n\t파일:라인" 형식으로 각 프레임을 출력합니다.
func (s *stack) Format(st fmt.State, verb rune) {
	if verb != 'v' || !st.Flag('+') {
		return
	}

	frames := runtime.CallersFrames(*s)
	for {
		frame, more := frames.Next()
		_, _ = fmt.Fprintf(st, "\n%s\n\t%s:%d", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
}
