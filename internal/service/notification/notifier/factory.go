package notifier

import (
	"github.com/jjangmi46/thirtymall-monitor/internal/config"
)

// CreatorFunc 설정 정보를 바탕으로 Notifier 목록을 생성하는 함수 타입입니다.
type CreatorFunc func(appConfig *config.AppConfig) ([]Notifier, error)

// Factory Notifier 생성을 담당하는 팩토리 인터페이스입니다.
type Factory interface {
	RegisterCreator(creator CreatorFunc)

	CreateNotifiers(appConfig *config.AppConfig) ([]Notifier, error)
}

// defaultFactory Creator 목록을 순회하며 Notifier를 생성하는 기본 Factory 구현체입니다.
type defaultFactory struct {
	creators []CreatorFunc
}

// NewFactory 새로운 Factory 인스턴스를 생성합니다.
func NewFactory() Factory {
	return &defaultFactory{
		creators: make([]CreatorFunc, 0),
	}
}

// RegisterCreator Notifier 생성을 담당할 새로운 Creator를 등록합니다.
func (f *defaultFactory) RegisterCreator(creator CreatorFunc) {
	if creator != nil {
		f.creators = append(f.creators, creator)
	}
}

// CreateNotifiers 등록된 모든 Creator를 실행하여 사용 가능한 Notifier 목록을 생성합니다.
func (f *defaultFactory) CreateNotifiers(appConfig *config.AppConfig) ([]Notifier, error) {
	var allNotifiers []Notifier

	for _, creator := range f.creators {
		notifiers, err := creator(appConfig)
		if err != nil {
			return nil, err
		}
		allNotifiers = append(allNotifiers, notifiers...)
	}

	return allNotifiers, nil
}
