// Package maputil 맵(Map) 데이터 처리 및 구조체 변환을 위한 유틸리티 기능을 제공합니다.
package maputil

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode 입력된 맵(Map)이나 인터페이스 데이터를 지정된 제네릭 타입 T의 구조체로 변환하여 반환합니다.
//
// 내부적으로 mapstructure 라이브러리를 활용하며, 다음의 기본 동작이 적용되어 있습니다:
//   - 유연한 타입 변환(Weakly Typed): "123" -> 123 (int), 1 -> true (bool)
//   - 임베디드 구조체 평탄화(Squash)
//   - json 태그 기준 필드 매핑
//   - "10s" -> time.Duration, "base64:..." -> []byte, "a,b" -> []string 변환 훅 내장
//
// 구조체에 정의되지 않은 필드가 입력에 포함되어 있어도 기본적으로는 무시됩니다.
// 엄격한 검증이 필요하면 WithErrorUnused(true) 옵션을 사용하십시오.
//
// 사용 예시:
//
//	settings, err := maputil.Decode[WatchSettings](commandData)
func Decode[T any](input any, opts ...Option) (*T, error) {
	output := new(T)

	// new(T)로 생성된 객체는 이미 모든 필드가 Zero Value이므로
	// 기본적으로 WithZeroFields(false)를 적용하여 불필요한 중복 초기화를 방지합니다.
	baseOpts := []Option{
		WithZeroFields(false),
	}
	allOpts := append(baseOpts, opts...)

	if err := DecodeTo(input, output, allOpts...); err != nil {
		return nil, err
	}
	return output, nil
}

// DecodeTo 입력된 데이터를 대상 구조체 포인터(output)에 디코딩하여 값을 채웁니다.
//
// output 인자는 반드시 nil이 아닌 포인터여야 합니다. 기존 output 구조체에 값이 있다면
// 유지하며 입력 데이터와 병합합니다. 완전한 초기화 후 디코딩을 원한다면
// WithZeroFields(true) 옵션을 사용하십시오.
func DecodeTo[T any](input any, output *T, opts ...Option) error {
	if output == nil {
		return errors.New("디코딩 결과를 저장할 output 포인터가 nil입니다")
	}

	cfg := &decodingConfig{
		tagName:          "json",
		weaklyTypedInput: true,
		errorUnused:      false,
		squash:           true,
		zeroFields:       false,
		trimSpace:        true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.zeroFields {
		var zero T
		*output = zero
	}

	msConfig := &mapstructure.DecoderConfig{
		Result:           output,
		TagName:          cfg.tagName,
		WeaklyTypedInput: cfg.weaklyTypedInput,
		ErrorUnused:      cfg.errorUnused,
		Squash:           cfg.squash,
		DecodeHook:       cfg.buildDecodeHook(),
	}

	decoder, err := mapstructure.NewDecoder(msConfig)
	if err != nil {
		return err
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", output, err)
	}

	return nil
}

// decodingConfig 디코딩에 필요한 옵션을 한곳에 모아 관리하는 비공개 설정 구조체입니다.
type decodingConfig struct {
	tagName string

	weaklyTypedInput bool
	errorUnused      bool
	squash           bool
	zeroFields       bool
	trimSpace        bool

	extraHooks []mapstructure.DecodeHookFunc
}

// buildDecodeHook 설정된 옵션을 기반으로 mapstructure.DecodeHookFunc 체인을 조립합니다.
//
// 실행 순서는 [사용자 정의 훅] -> [기본 내장 훅] 이므로
// 사용자가 추가한 변환 로직이 가장 높은 우선순위를 가집니다.
func (c *decodingConfig) buildDecodeHook() mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(c.extraHooks)+4)

	if len(c.extraHooks) > 0 {
		hooks = append(hooks, c.extraHooks...)
	}

	hooks = append(hooks,
		mapstructure.TextUnmarshallerHookFunc(),
		stringToDurationHookFunc(),
		stringToBytesHookFunc(),
		stringToSliceHookFunc(c.trimSpace),
	)

	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

// Option 디코딩 설정을 커스터마이징하기 위한 함수형 옵션 타입입니다.
type Option func(*decodingConfig)

// WithTagName 구조체 필드 매핑에 사용할 태그 이름을 지정합니다. (기본값: "json")
func WithTagName(tagName string) Option {
	return func(c *decodingConfig) {
		c.tagName = tagName
	}
}

// WithErrorUnused 대상 구조체에 없는 필드가 입력 데이터에 존재할 경우,
// 무시하지 않고 에러를 발생시킵니다. (기본값: false)
//
// 오타로 인해 설정이 조용히 누락되는 것을 방지해야 할 때 사용합니다.
func WithErrorUnused(enable bool) Option {
	return func(c *decodingConfig) {
		c.errorUnused = enable
	}
}

// WithDecodeHook 기본 제공되는 변환 로직 외에 사용자 정의 변환 훅(Hook)을 추가합니다.
func WithDecodeHook(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(c *decodingConfig) {
		c.extraHooks = append(c.extraHooks, hooks...)
	}
}

// WithZeroFields 디코딩 전에 대상 구조체의 모든 필드를 제로 값으로 초기화할지 설정합니다.
//
// true로 설정하면 병합(Merge)이 아니라 교체(Replace) 방식으로 동작합니다.
func WithZeroFields(enable bool) Option {
	return func(c *decodingConfig) {
		c.zeroFields = enable
	}
}

// WithTrimSpace 콤마(,)로 구분된 문자열을 슬라이스로 변환할 때,
// 각 요소의 앞뒤 공백을 자동으로 제거할지 설정합니다. (기본값: true)
func WithTrimSpace(enable bool) Option {
	return func(c *decodingConfig) {
		c.trimSpace = enable
	}
}
