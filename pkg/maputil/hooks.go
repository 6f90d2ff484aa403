package maputil

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// stringToBytesHookFunc 문자열을 []byte로 변환하는 훅입니다.
//
// "base64:" 접두사가 있는 경우에만 Base64로 디코딩하며, 그 외에는 원본 문자열의
// 바이트를 반환합니다. 접두사 없이 모든 문자열을 Base64로 해석하면 일반 텍스트가
// 깨진 바이너리로 변환되는 사고가 나기 때문입니다.
func stringToBytesHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return data, nil
		}
		if t.Elem().Kind() != reflect.Uint8 {
			return data, nil
		}

		s := strings.TrimSpace(reflect.ValueOf(data).String())

		const prefix = "base64:"
		if strings.HasPrefix(s, prefix) {
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, prefix))
			if err != nil {
				// 접두사로 변환을 명시적으로 요청했으므로 실패를 조용히 넘기지 않습니다.
				return nil, fmt.Errorf("base64 접두사가 포함된 잘못된 문자열입니다: %w", err)
			}
			return decoded, nil
		}

		return []byte(s), nil
	}
}

// stringToSliceHookFunc 쉼표(,)로 구분된 문자열을 잘라서 슬라이스로 변환합니다.
//
// []byte 타입은 쪼개지 않고 원본 그대로 둡니다. mapstructure가 []byte를 일반
// 슬라이스처럼 취급하여 문자열을 분할해버리면 바이너리 데이터가 손상되기 때문입니다.
func stringToSliceHookFunc(trimSpace bool) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return data, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return data, nil
		}

		strData := reflect.ValueOf(data).String()
		if strData == "" {
			return []string{}, nil
		}

		parts := strings.Split(strData, ",")
		if trimSpace {
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
		}
		return parts, nil
	}
}

// stringToDurationHookFunc 문자열을 time.Duration으로 변환하는 훅입니다.
//
// time.Duration의 별칭(Alias) 타입은 지원하지 않고 정확한 time.Duration 타입만
// 변환합니다. int64 기반의 다른 타입이 시간으로 오해되어 엉뚱한 값으로 변환되는
// 것을 막기 위한 엄격한 타입 검사입니다.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		s := strings.TrimSpace(reflect.ValueOf(data).String())

		d, err := time.ParseDuration(s)
		if err != nil {
			// 파싱에 실패하면 다른 훅이나 기본 로직이 처리하도록 원본을 그대로 넘깁니다.
			return data, nil
		}

		return d, nil
	}
}
