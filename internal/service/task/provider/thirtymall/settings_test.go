package thirtymall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *watchNewProductsSettings {
	return &watchNewProductsSettings{
		Searches: []searchTarget{
			{Name: "버터 검색", URL: "https://thirtymall.com/search?q=버터", Keyword: "버터"},
			{Name: "치즈 검색", URL: "https://thirtymall.com/search?q=치즈", Keyword: "치즈", Emoji: "🧀"},
		},
	}
}

func TestWatchNewProductsSettings_Validate(t *testing.T) {
	t.Parallel()

	t.Run("성공: 유효한 설정", func(t *testing.T) {
		require.NoError(t, validSettings().Validate())
	})

	t.Run("성공: 필드의 앞뒤 공백은 제거 후 검증", func(t *testing.T) {
		settings := &watchNewProductsSettings{
			Searches: []searchTarget{
				{Name: "  버터 검색  ", URL: " https://thirtymall.com/search?q=버터 ", Keyword: " 버터 "},
			},
		}

		require.NoError(t, settings.Validate())
		assert.Equal(t, "버터 검색", settings.Searches[0].Name)
		assert.Equal(t, "https://thirtymall.com/search?q=버터", settings.Searches[0].URL)
		assert.Equal(t, "버터", settings.Searches[0].Keyword)
	})

	t.Run("실패: 검색 대상이 하나도 없음", func(t *testing.T) {
		settings := &watchNewProductsSettings{}

		assert.ErrorIs(t, settings.Validate(), ErrNoSearchTargets)
	})

	t.Run("실패: 필수값(keyword)이 비어 있음", func(t *testing.T) {
		settings := validSettings()
		settings.Searches[0].Keyword = "   "

		assert.ErrorIs(t, settings.Validate(), ErrInvalidSearchTarget)
	})

	t.Run("실패: 중복된 검색 이름", func(t *testing.T) {
		settings := validSettings()
		settings.Searches[1].Name = settings.Searches[0].Name

		err := settings.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "중복된 검색 이름")
	})

	t.Run("실패: 상대 경로 URL", func(t *testing.T) {
		settings := validSettings()
		settings.Searches[0].URL = "/search?q=버터"

		err := settings.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "절대 URL")
	})
}

func TestWatchNewProductsSettings_ApplyDefaults(t *testing.T) {
	t.Parallel()

	t.Run("성공: 대기 시간과 이모지의 기본값 적용", func(t *testing.T) {
		settings := validSettings()
		settings.ApplyDefaults()

		assert.Equal(t, defaultSearchCooldownMS, settings.SearchCooldownMS)
		assert.Equal(t, defaultEmoji, settings.Searches[0].Emoji)
		// 명시된 이모지는 유지됩니다.
		assert.Equal(t, "🧀", settings.Searches[1].Emoji)
	})

	t.Run("성공: 명시된 대기 시간은 유지", func(t *testing.T) {
		settings := validSettings()
		settings.SearchCooldownMS = 500
		settings.ApplyDefaults()

		assert.Equal(t, 500, settings.SearchCooldownMS)
	})
}
