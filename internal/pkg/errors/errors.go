// Package errors 애플리케이션 전역에서 사용하는 타입 기반 에러 처리 체계를 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되며, 원인 에러(cause)를 체인으로 보존합니다.
// 스택 트레이스는 에러가 최초 생성되는 경계에서 한 번만 수집하여,
// 래핑을 거듭해도 중복 수집으로 인한 비용과 노이즈가 발생하지 않도록 합니다.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// AppError ErrorType과 원인 에러, 스택 트레이스를 함께 보존하는 애플리케이션 표준 에러입니다.
type AppError struct {
	errType ErrorType
	message string
	cause   error
	stack   *stack
}

// New 지정된 타입과 메시지로 새로운 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return &AppError{
		errType: errType,
		message: message,
		stack:   callers(),
	}
}

// Newf 지정된 타입과 포맷 문자열로 새로운 에러를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return &AppError{
		errType: errType,
		message: fmt.Sprintf(format, args...),
		stack:   callers(),
	}
}

// Wrap 원인 에러를 보존하면서 새로운 타입과 메시지로 에러를 래핑합니다.
//
// cause가 nil이면 nil을 반환하므로, 호출부에서 별도의 nil 검사 없이 사용할 수 있습니다.
// cause가 이미 AppError인 경우 스택 트레이스를 새로 수집하지 않고 원본의 것을 유지합니다.
func Wrap(cause error, errType ErrorType, message string) error {
	if cause == nil {
		return nil
	}

	e := &AppError{
		errType: errType,
		message: message,
		cause:   cause,
	}

	// 스택은 에러가 처음 발생한 경계에서만 수집합니다.
	var appErr *AppError
	if !errors.As(cause, &appErr) {
		e.stack = callers()
	}

	return e
}

// Wrapf 원인 에러를 보존하면서 새로운 타입과 포맷 메시지로 에러를 래핑합니다.
func Wrapf(cause error, errType ErrorType, format string, args ...any) error {
	return Wrap(cause, errType, fmt.Sprintf(format, args...))
}

// Error error 인터페이스 구현입니다. 원인 에러가 있으면 "메시지: 원인" 형식으로 연결합니다.
func (e *AppError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap errors.Is / errors.As 체인 탐색을 지원합니다.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Type 이 에러에 부여된 ErrorType을 반환합니다.
func (e *AppError) Type() ErrorType {
	return e.errType
}

// Message 원인 에러를 제외한 이 에러 자체의 메시지를 반환합니다.
func (e *AppError) Message() string {
	return e.message
}

// Format fmt.Formatter 구현입니다.
//
//	%v, %s: Error()와 동일
//	%+v:    에러 체인 전체와 수집된 스택 트레이스를 함께 출력
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "[%s] %s", e.errType, e.message)
			if e.cause != nil {
				_, _ = fmt.Fprintf(s, "\ncaused by: %+v", e.cause)
			}
			if e.stack != nil {
				e.stack.Format(s, verb)
			}
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// Is 에러 체인 중 지정된 ErrorType을 가진 AppError가 존재하는지 확인합니다.
//
// 표준 errors.Is(err, target)와 달리 센티넬 값이 아닌 타입으로 분기할 때 사용합니다.
func Is(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.errType == errType {
				return true
			}
			err = appErr.cause
			continue
		}
		return false
	}
	return false
}

// UnderlyingType 에러 체인의 가장 안쪽 AppError가 가진 ErrorType을 반환합니다.
//
// 체인에 AppError가 없으면 Unknown을 반환합니다.
// 재시도 판단 등 "근본 원인이 무엇인가"를 기준으로 분기할 때 사용합니다.
func UnderlyingType(err error) ErrorType {
	result := Unknown

	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			break
		}
		result = appErr.errType
		err = appErr.cause
	}

	return result
}

// RootCause 에러 체인을 끝까지 풀어 가장 안쪽의 원인 에러를 반환합니다.
func RootCause(err error) error {
	for err != nil {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
	return err
}
