// Package log 애플리케이션 전역에서 사용하는 로그 시스템을 제공합니다.
//
// logrus를 기반으로 하며, 레벨에 따라 메인/critical/verbose 로그 파일로 분리 기록하고
// lumberjack을 통해 파일 로테이션을 수행합니다.
package log

import (
	"github.com/sirupsen/logrus"
)

const (
	// FieldComponent 로그를 남긴 컴포넌트를 식별하는 필드의 키입니다.
	FieldComponent = "component"
)

// StandardLogger 전역 logrus 로거를 반환합니다.
func StandardLogger() *Logger {
	return logrus.StandardLogger()
}

// WithComponent 컴포넌트 필드가 설정된 로그 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField(FieldComponent, component)
}

// WithComponentAndFields 컴포넌트 필드와 추가 필드들이 설정된 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	return logrus.WithField(FieldComponent, component).WithFields(fields)
}
