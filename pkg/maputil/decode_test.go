package maputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watchSettings struct {
	Query           string        `json:"query"`
	MaxProducts     int           `json:"max_products"`
	RequestCooldown time.Duration `json:"request_cooldown"`
	IncludeKeywords []string      `json:"include_keywords"`
	Secret          []byte        `json:"secret"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("성공: 기본 필드 디코딩", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"query":        "유기농 당근",
			"max_products": 20,
		}

		got, err := Decode[watchSettings](input)
		require.NoError(t, err)
		assert.Equal(t, "유기농 당근", got.Query)
		assert.Equal(t, 20, got.MaxProducts)
	})

	t.Run("성공: 유연한 타입 변환 (문자열 -> 정수)", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"max_products": "20",
		}

		got, err := Decode[watchSettings](input)
		require.NoError(t, err)
		assert.Equal(t, 20, got.MaxProducts)
	})

	t.Run("성공: Duration 문자열 변환", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"request_cooldown": "3s",
		}

		got, err := Decode[watchSettings](input)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, got.RequestCooldown)
	})

	t.Run("성공: 쉼표 구분 문자열을 슬라이스로 변환", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"include_keywords": "당근, 감자",
		}

		got, err := Decode[watchSettings](input)
		require.NoError(t, err)
		assert.Equal(t, []string{"당근", "감자"}, got.IncludeKeywords)
	})

	t.Run("성공: base64 접두사가 있는 문자열을 []byte로 변환", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"secret": "base64:aGVsbG8=",
		}

		got, err := Decode[watchSettings](input)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got.Secret)
	})

	t.Run("실패: 잘못된 base64 문자열", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"secret": "base64:!!!invalid!!!",
		}

		_, err := Decode[watchSettings](input)
		assert.Error(t, err)
	})

	t.Run("성공: 정의되지 않은 필드는 기본적으로 무시", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"query":   "당근",
			"unknown": "field",
		}

		got, err := Decode[watchSettings](input)
		require.NoError(t, err)
		assert.Equal(t, "당근", got.Query)
	})

	t.Run("실패: WithErrorUnused 옵션 사용 시 알 수 없는 필드는 에러", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"query":   "당근",
			"unknown": "field",
		}

		_, err := Decode[watchSettings](input, WithErrorUnused(true))
		assert.Error(t, err)
	})
}

func TestDecodeTo(t *testing.T) {
	t.Parallel()

	t.Run("실패: output이 nil 포인터", func(t *testing.T) {
		t.Parallel()

		err := DecodeTo[watchSettings](map[string]any{}, nil)
		assert.Error(t, err)
	})

	t.Run("성공: 기존 값과 병합 (기본 동작)", func(t *testing.T) {
		t.Parallel()

		output := watchSettings{Query: "기존 검색어", MaxProducts: 10}
		err := DecodeTo(map[string]any{"max_products": 20}, &output)
		require.NoError(t, err)

		assert.Equal(t, "기존 검색어", output.Query, "입력에 없는 필드는 기존 값이 유지되어야 합니다")
		assert.Equal(t, 20, output.MaxProducts)
	})

	t.Run("성공: WithZeroFields 옵션 사용 시 기존 값 초기화", func(t *testing.T) {
		t.Parallel()

		output := watchSettings{Query: "기존 검색어", MaxProducts: 10}
		err := DecodeTo(map[string]any{"max_products": 20}, &output, WithZeroFields(true))
		require.NoError(t, err)

		assert.Empty(t, output.Query, "기존 값은 초기화되어야 합니다")
		assert.Equal(t, 20, output.MaxProducts)
	})
}
