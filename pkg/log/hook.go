package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// hook 포맷팅된 로그를 레벨에 따라 적절한 Writer로 라우팅하는 logrus.Hook 구현체입니다.
//
//   - Error 레벨 이상: 메인 로그 + critical 로그(설정된 경우)
//   - Debug 레벨 이하: verbose 로그(설정된 경우에만, 메인 로그에는 기록하지 않음)
//   - 그 외: 메인 로그
//
// 콘솔 Writer가 설정된 경우 모든 레벨의 로그가 콘솔에도 출력됩니다.
type hook struct {
	mainWriter     io.Writer
	criticalWriter io.Writer
	verboseWriter  io.Writer
	consoleWriter  io.Writer

	formatter logrus.Formatter

	mu     sync.RWMutex
	closed bool
}

func (h *hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *hook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	formatted, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("로그 포맷팅이 실패하였습니다: %w", err)
	}

	// 콘솔 출력의 실패는 파일 로깅을 방해하지 않도록 경고만 남깁니다.
	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(formatted); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] 콘솔에 로그를 출력하지 못했습니다: %v\n", err)
		}
	}

	var firstErr error

	if h.criticalWriter != nil && entry.Level <= logrus.ErrorLevel {
		if _, err := h.criticalWriter.Write(formatted); err != nil {
			firstErr = err
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] critical 로그 파일에 기록하지 못했습니다: %v\n", err)
		}
	}

	if h.verboseWriter != nil && entry.Level >= logrus.DebugLevel {
		if _, err := h.verboseWriter.Write(formatted); err != nil && firstErr == nil {
			firstErr = err
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] verbose 로그 파일에 기록하지 못했습니다: %v\n", err)
		}
		// verbose 로그는 메인 로그 파일에 중복 기록하지 않습니다.
		return firstErr
	}

	if _, err := h.mainWriter.Write(formatted); err != nil && firstErr == nil {
		firstErr = err
		fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] 메인 로그 파일에 기록하지 못했습니다: %v\n", err)
	}

	return firstErr
}

// Close 이후의 모든 Fire 호출을 무시하도록 합니다. 진행 중인 Fire가 끝날 때까지 대기합니다.
func (h *hook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}
