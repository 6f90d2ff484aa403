package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDir = "logs"

	defaultMaxSizeMB = 100
	defaultMaxBackups = 20
)

var (
	setupOnce      sync.Once
	globalCloser   io.Closer
	globalSetupErr error
)

// Setup 전역 로그 시스템을 초기화합니다.
//
// 반환된 io.Closer는 애플리케이션 종료 시점에 호출하여 로그 파일 버퍼를 비우고
// 파일 핸들을 해제해야 합니다. Setup은 프로세스 수명 동안 한 번만 초기화를 수행하며,
// 이후의 호출은 첫 번째 호출의 결과를 그대로 반환합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setupInternal(opts)
	})
	return globalCloser, globalSetupErr
}

func setupInternal(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("로그 설정값이 유효하지 않습니다: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(opts.ReportCaller)

	// 모든 출력은 hook이 담당하므로 logrus 자체 출력은 차단합니다.
	logrus.SetFormatter(&silentFormatter{})
	logrus.SetOutput(io.Discard)

	textFormatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			function := f.Function
			if opts.CallerPathPrefix != "" {
				if cut, ok := strings.CutPrefix(function, opts.CallerPathPrefix); ok {
					function = "..." + cut
				}
			}
			return function + "(line:" + strconv.Itoa(f.Line) + ")", ""
		},
	}

	logDir := opts.Dir
	if logDir == "" {
		logDir = defaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리를 생성할 수 없습니다: %w", err)
	}

	maxSizeMB := opts.MaxSizeMB
	if maxSizeMB == 0 {
		maxSizeMB = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}
	maxAgeDays := int(opts.MaxAge / (24 * time.Hour))

	var (
		closers   []io.Closer
		succeeded bool
	)
	defer func() {
		if succeeded {
			return
		}
		for _, c := range closers {
			//goland:noinspection GoUnhandledErrorResult
			c.Close()
		}
	}()

	newRotatingWriter := func(filename string) *lumberjack.Logger {
		w := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, filename),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   false,
			LocalTime:  true,
		}
		closers = append(closers, w)
		return w
	}

	h := &hook{
		mainWriter: newRotatingWriter(opts.Name + ".log"),
		formatter:  textFormatter,
	}
	if opts.EnableCriticalLog {
		h.criticalWriter = newRotatingWriter(opts.Name + ".critical.log")
	}
	if opts.EnableVerboseLog {
		h.verboseWriter = newRotatingWriter(opts.Name + ".verbose.log")
	}
	if opts.EnableConsoleLog {
		h.consoleWriter = os.Stdout
	}

	logrus.AddHook(h)

	c := &closer{
		closers: closers,
		hook:    h,
	}

	// logrus.Fatal류 호출로 프로세스가 종료될 때에도 로그 버퍼가 유실되지 않도록 합니다.
	logrus.RegisterExitHandler(func() {
		//goland:noinspection GoUnhandledErrorResult
		c.Close()
	})

	succeeded = true

	return c, nil
}
