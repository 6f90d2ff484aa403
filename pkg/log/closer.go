package log

import (
	"errors"
	"io"
	"sync/atomic"
)

// closer 로그 시스템이 사용하는 모든 리소스를 정리하는 io.Closer 구현체입니다.
//
// Close는 여러 번 호출되어도 안전하며, 첫 번째 호출만 실제 정리를 수행합니다.
type closer struct {
	closers []io.Closer
	hook    *hook

	closed int32
}

type syncer interface {
	Sync() error
}

func (c *closer) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	// 새로운 로그가 더 이상 Writer에 기록되지 않도록 hook을 먼저 닫습니다.
	if c.hook != nil {
		c.hook.Close()
	}

	var errs []error
	for _, cl := range c.closers {
		if s, ok := cl.(syncer); ok {
			if err := s.Sync(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
