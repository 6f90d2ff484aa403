package provider

import (
	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/pkg/maputil"
)

// Validator 설정 데이터의 유효성을 스스로 검증하는 인터페이스입니다.
type Validator interface {
	Validate() error
}

// validateSettings 디코딩된 설정 객체가 Validator 인터페이스를 구현한 경우 유효성 검증을 수행합니다.
// T가 구조체인 경우 Validate 메서드가 포인터 수신자일 수도, 값 수신자일 수도 있으므로 양쪽 모두 확인합니다.
func validateSettings[T any](settings *T) error {
	if v, ok := any(settings).(Validator); ok {
		return v.Validate()
	}
	if v, ok := any(*settings).(Validator); ok {
		return v.Validate()
	}
	return nil
}

// FindTaskSettings AppConfig에서 특정 Task에 해당하는 설정을 찾아 디코딩하고 검증합니다.
// Validator 인터페이스를 구현한 경우 자동으로 유효성 검사(Validate)를 수행합니다.
func FindTaskSettings[T any](appConfig *config.AppConfig, taskID contract.TaskID) (*T, error) {
	for _, t := range appConfig.Tasks {
		if taskID != contract.TaskID(t.ID) {
			continue
		}

		settings, err := maputil.Decode[T](t.Data)
		if err != nil {
			return nil, newErrInvalidTaskSettings(err, taskID)
		}

		if err := validateSettings(settings); err != nil {
			return nil, newErrInvalidTaskSettings(err, taskID)
		}

		return settings, nil
	}

	return nil, ErrTaskSettingsNotFound
}

// FindCommandSettings AppConfig에서 특정 Task와 Command에 해당하는 설정을 찾아 디코딩하고 검증합니다.
// Validator 인터페이스를 구현한 경우 자동으로 유효성 검사(Validate)를 수행합니다.
func FindCommandSettings[T any](appConfig *config.AppConfig, taskID contract.TaskID, commandID contract.TaskCommandID) (*T, error) {
	for _, t := range appConfig.Tasks {
		if taskID != contract.TaskID(t.ID) {
			continue
		}

		for _, c := range t.Commands {
			if commandID != contract.TaskCommandID(c.ID) {
				continue
			}

			settings, err := maputil.Decode[T](c.Data)
			if err != nil {
				return nil, newErrInvalidCommandSettings(err, taskID, commandID)
			}

			if err := validateSettings(settings); err != nil {
				return nil, newErrInvalidCommandSettings(err, taskID, commandID)
			}

			return settings, nil
		}

		break
	}

	return nil, ErrCommandSettingsNotFound
}
