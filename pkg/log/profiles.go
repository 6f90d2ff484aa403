package log

import (
	"time"
)

// NewProductionOptions 운영 환경에 적합한 기본 설정을 반환합니다.
//
// Info 레벨 이상의 로그를 파일에 기록하며, Error 레벨 이상은 별도의 critical 로그 파일에,
// Debug 레벨 이하는 별도의 verbose 로그 파일에 분리하여 기록합니다. 콘솔 출력은 비활성화됩니다.
func NewProductionOptions(appName string) Options {
	return Options{
		Name:              appName,
		Level:             InfoLevel,
		MaxAge:            30 * 24 * time.Hour,
		MaxSizeMB:         100,
		MaxBackups:        20,
		EnableCriticalLog: true,
		EnableVerboseLog:  true,
		EnableConsoleLog:  false,
		ReportCaller:      true,
	}
}

// NewDevelopmentOptions 개발 환경에 적합한 기본 설정을 반환합니다.
//
// Trace 레벨까지의 모든 로그를 콘솔과 파일에 출력합니다.
func NewDevelopmentOptions(appName string) Options {
	return Options{
		Name:             appName,
		Level:            TraceLevel,
		MaxAge:           24 * time.Hour,
		MaxSizeMB:        50,
		MaxBackups:       5,
		EnableConsoleLog: true,
		ReportCaller:     true,
	}
}
