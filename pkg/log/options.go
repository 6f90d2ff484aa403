package log

import (
	"fmt"
	"os"
	"time"
)

// Options 로그 시스템의 동작을 설정합니다.
type Options struct {
	// Name 로그 파일의 기본 이름입니다. (예: "thirtymall-monitor" -> "thirtymall-monitor.log")
	Name string

	// Dir 로그 파일이 저장될 디렉토리입니다. 비어 있으면 "logs"가 사용됩니다.
	Dir string

	// Level 기록할 최소 로그 레벨입니다. 설정하지 않으면(0) InfoLevel이 사용됩니다.
	Level Level

	// MaxAge 로그 파일의 최대 보관 기간입니다.
	MaxAge time.Duration

	// MaxSizeMB 로그 파일 하나의 최대 크기(MB)입니다. 초과 시 로테이션됩니다. 0이면 100MB가 사용됩니다.
	MaxSizeMB int

	// MaxBackups 보관할 로테이션된 로그 파일의 최대 개수입니다. 0이면 20개가 사용됩니다.
	MaxBackups int

	// EnableCriticalLog Error 레벨 이상의 로그를 별도의 파일(*.critical.log)에도 기록할지 여부입니다.
	EnableCriticalLog bool

	// EnableVerboseLog Debug 레벨 이하의 로그를 별도의 파일(*.verbose.log)에 기록할지 여부입니다.
	// 활성화하면 Debug/Trace 로그는 메인 로그 파일에는 기록되지 않습니다.
	EnableVerboseLog bool

	// EnableConsoleLog 로그를 콘솔(stdout)에도 출력할지 여부입니다.
	EnableConsoleLog bool

	// ReportCaller 로그를 호출한 함수와 위치 정보를 함께 기록할지 여부입니다.
	ReportCaller bool

	// CallerPathPrefix 호출자 경로에서 생략할 접두사입니다. (예: "github.com/jjangmi46")
	CallerPathPrefix string
}

// Validate 설정값의 유효성을 검사합니다.
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("로그 파일의 이름이 설정되지 않았습니다")
	}
	if o.Dir != "" {
		if fi, err := os.Stat(o.Dir); err == nil && !fi.IsDir() {
			return fmt.Errorf("로그 디렉토리 경로에 이미 파일이 존재합니다: %s", o.Dir)
		}
	}
	if o.MaxAge < 0 {
		return fmt.Errorf("로그 파일의 최대 보관 기간은 0 이상이어야 합니다: %s", o.MaxAge)
	}
	if o.MaxSizeMB < 0 {
		return fmt.Errorf("로그 파일의 최대 크기는 0 이상이어야 합니다: %d", o.MaxSizeMB)
	}
	if o.MaxBackups < 0 {
		return fmt.Errorf("로그 파일의 최대 백업 개수는 0 이상이어야 합니다: %d", o.MaxBackups)
	}
	return nil
}
