package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	"github.com/jjangmi46/thirtymall-monitor/pkg/cronx"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Browser   BrowserConfig   `json:"browser"`
	Storage   StorageConfig   `json:"storage"`
	Watchdog  WatchdogConfig  `json:"watchdog"`
	Notifiers NotifierConfig  `json:"notifiers"`
	Tasks     []TaskConfig    `json:"tasks"`
	API       APIConfig       `json:"api"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate(v *validator.Validate) error {
	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}

	if err := c.Browser.validate(); err != nil {
		return err
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if err := c.Watchdog.validate(); err != nil {
		return err
	}

	notifierIDs, err := c.Notifiers.validate(v)
	if err != nil {
		return err
	}

	if err := c.validateTasks(v, notifierIDs); err != nil {
		return err
	}

	if err := c.API.validate(v); err != nil {
		return err
	}

	return nil
}

func (c *AppConfig) validateTasks(v *validator.Validate, notifierIDs []string) error {
	// Tasks 중복 ID 검사
	if err := checkUniqueField(v, c.Tasks, "ID", "Task"); err != nil {
		return err
	}

	for _, t := range c.Tasks {
		// Task 구조체 유효성 검사
		if err := checkStruct(v, t, fmt.Sprintf("Task['%s']", t.ID)); err != nil {
			return err
		}

		for _, cmd := range t.Commands {
			// Command 구조체 유효성 검사
			if err := checkStruct(v, cmd, fmt.Sprintf("Task['%s'] > Command['%s']", t.ID, cmd.ID)); err != nil {
				return err
			}

			// Notifier 존재 여부 확인
			if !slices.Contains(notifierIDs, cmd.DefaultNotifierID) {
				return apperrors.Newf(apperrors.NotFound, "Task['%s'] > Command['%s']에서 참조하는 NotifierID('%s')가 정의되지 않았습니다", t.ID, cmd.ID, cmd.DefaultNotifierID)
			}

			// Cron 표현식 검증 (Scheduler가 활성화된 경우)
			if cmd.Scheduler.Runnable {
				if err := cronx.Validate(cmd.Scheduler.TimeSpec); err != nil {
					return apperrors.Wrapf(err, apperrors.InvalidInput, "Task['%s'] > Command['%s']의 스케줄러(TimeSpec) 설정이 유효하지 않습니다", t.ID, cmd.ID)
				}
			}
		}
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if !c.Notifiers.defaultHasCredentials() {
		warnings = append(warnings, "기본 텔레그램 Notifier에 자격 증명(bot_token, chat_id)이 설정되지 않았습니다. 알림 발송이 비활성화된 상태로 동작합니다")
	}

	warnings = append(warnings, c.API.VerifyRecommendations()...)

	return warnings
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries int    `json:"max_retries"`
	RetryDelay string `json:"retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if c.MaxRetries < 0 {
		return apperrors.Newf(apperrors.InvalidInput, "HTTP 재시도 횟수(max_retries)는 0 이상이어야 합니다 (입력값: %d)", c.MaxRetries)
	}
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "HTTP 재시도 대기 시간(retry_delay) 설정이 올바르지 않습니다: '%s' (예: 1s, 500ms)", c.RetryDelay)
	}
	return nil
}

// RetryDelayDuration 파싱된 재시도 대기 시간을 반환합니다. validate() 통과 후 호출을 전제로 합니다.
func (c *HTTPRetryConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// BrowserConfig 렌더링 세션(헤드리스 브라우저)의 동작을 정의하는 설정 구조체
//
// enabled가 false이거나 실행 환경에서 사용 가능한 브라우저를 찾지 못한 경우,
// 감시 작업은 단순 HTTP 요청 모드로만 동작합니다. (스크립트 실행이 필요한 콘텐츠는 수집되지 않을 수 있음)
type BrowserConfig struct {
	Enabled     bool   `json:"enabled"`
	Headless    bool   `json:"headless"`
	ChromePath  string `json:"chrome_path"`
	SettleWait  string `json:"settle_wait"`
	ContentWait string `json:"content_wait"`

	// DumpHTML 렌더링된 페이지 원문을 디버그 파일로 남길지 여부입니다.
	// 저장된 파일은 사후 분석 전용이며, 프로그램이 다시 읽지 않습니다.
	DumpHTML bool   `json:"dump_html"`
	DebugDir string `json:"debug_dir"`
}

func (c *BrowserConfig) validate() error {
	if _, err := time.ParseDuration(c.SettleWait); err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "브라우저 안정화 대기 시간(settle_wait) 설정이 올바르지 않습니다: '%s'", c.SettleWait)
	}
	if _, err := time.ParseDuration(c.ContentWait); err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "브라우저 콘텐츠 대기 시간(content_wait) 설정이 올바르지 않습니다: '%s'", c.ContentWait)
	}
	if c.DumpHTML && c.DebugDir == "" {
		return apperrors.New(apperrors.InvalidInput, "dump_html 활성화 시 디버그 디렉토리(debug_dir)는 필수입니다")
	}
	return nil
}

// SettleWaitDuration 파싱된 안정화 대기 시간을 반환합니다.
func (c *BrowserConfig) SettleWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.SettleWait)
	return d
}

// ContentWaitDuration 파싱된 콘텐츠 대기 시간을 반환합니다.
func (c *BrowserConfig) ContentWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.ContentWait)
	return d
}

// StorageConfig 스냅샷 저장소의 위치를 정의하는 설정 구조체
type StorageConfig struct {
	Dir string `json:"dir"`
}

func (c *StorageConfig) validate() error {
	if c.Dir == "" {
		return apperrors.New(apperrors.InvalidInput, "스냅샷 저장 디렉토리(storage.dir)는 필수입니다")
	}
	return nil
}

// WatchdogConfig 감시 작업 1회 실행의 전체 수행 시간 상한을 정의하는 설정 구조체
type WatchdogConfig struct {
	RunTimeout string `json:"run_timeout"`
}

func (c *WatchdogConfig) validate() error {
	d, err := time.ParseDuration(c.RunTimeout)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "작업 실행 제한 시간(run_timeout) 설정이 올바르지 않습니다: '%s'", c.RunTimeout)
	}
	if d <= 0 {
		return apperrors.Newf(apperrors.InvalidInput, "작업 실행 제한 시간(run_timeout)은 0보다 커야 합니다: '%s'", c.RunTimeout)
	}
	return nil
}

// RunTimeoutDuration 파싱된 실행 제한 시간을 반환합니다.
func (c *WatchdogConfig) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

// NotifierConfig 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	DefaultNotifierID string           `json:"default_notifier_id"`
	Telegrams         []TelegramConfig `json:"telegrams"`
}

func (c *NotifierConfig) validate(v *validator.Validate) ([]string, error) {
	// Notifier 중복 ID 검사
	if err := checkUniqueField(v, c.Telegrams, "ID", "Notifier"); err != nil {
		return nil, err
	}

	// Telegrams 개별 유효성 검사
	for _, telegram := range c.Telegrams {
		if err := checkStruct(v, telegram, fmt.Sprintf("Telegram Notifier['%s']", telegram.ID)); err != nil {
			return nil, err
		}
	}

	var notifierIDs []string
	for _, telegram := range c.Telegrams {
		notifierIDs = append(notifierIDs, telegram.ID)
	}

	// 기본 Notifier ID 검사
	if !slices.Contains(notifierIDs, c.DefaultNotifierID) {
		return nil, apperrors.Newf(apperrors.NotFound, "기본 NotifierID('%s')가 정의된 Notifier 목록에 존재하지 않습니다", c.DefaultNotifierID)
	}

	return notifierIDs, nil
}

func (c *NotifierConfig) defaultHasCredentials() bool {
	for _, t := range c.Telegrams {
		if t.ID == c.DefaultNotifierID {
			return t.HasCredentials()
		}
	}
	return false
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
//
// 자격 증명(bot_token, chat_id)은 의도적으로 필수값이 아닙니다.
// 비어있는 경우 해당 Notifier는 "발송 생략" 모드로 등록되며, 감시 작업 자체는 정상 수행됩니다.
type TelegramConfig struct {
	ID       string `json:"id" validate:"required"`
	BotToken string `json:"bot_token" validate:"omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id"`
}

// HasCredentials 알림을 실제 발송할 수 있는 자격 증명이 모두 채워져 있는지 여부를 반환합니다.
func (c *TelegramConfig) HasCredentials() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// TaskConfig 주기적으로 실행하거나 특정 조건에 따라 수행할 작업을 정의하는 구조체
type TaskConfig struct {
	ID       string                 `json:"id" validate:"required"`
	Title    string                 `json:"title"`
	Commands []CommandConfig        `json:"commands" validate:"unique=ID"`
	Data     map[string]interface{} `json:"data"`
}

// CommandConfig 작업(Task) 내에서 실제로 실행되는 개별 명령을 정의하는 구조체
type CommandConfig struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Scheduler   struct {
		Runnable bool   `json:"runnable"`
		TimeSpec string `json:"time_spec"`
	} `json:"scheduler"`
	Notifier struct {
		Usable bool `json:"usable"`
	} `json:"notifier"`
	DefaultNotifierID string                 `json:"default_notifier_id"`
	Data              map[string]interface{} `json:"data"`
}

// APIConfig 운영 확인용 REST API 서버 설정 구조체
//
// 외부에 공개되는 서비스가 아니라 내부 운영 확인용입니다. 기본값은 비활성화 상태입니다.
type APIConfig struct {
	Enabled    bool   `json:"enabled"`
	ListenPort int    `json:"listen_port" validate:"min=1,max=65535"`
	AppKey     string `json:"app_key"`
}

func (c *APIConfig) validate(v *validator.Validate) error {
	if !c.Enabled {
		return nil
	}

	if err := v.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				if fieldErr.StructField() == "ListenPort" {
					return apperrors.New(apperrors.InvalidInput, "API 서버 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다")
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, "API 서버 설정 검증 중 알 수 없는 오류가 발생했습니다")
	}

	if c.AppKey == "" {
		return apperrors.New(apperrors.InvalidInput, "API 서버 활성화 시 인증 키(app_key)는 필수입니다")
	}

	return nil
}

// VerifyRecommendations API 설정에 대한 권장 사항 준수 여부를 진단합니다.
func (c *APIConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.Enabled && c.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.ListenPort))
	}

	return warnings
}
