package thirtymall

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func singleSearchSettings() *watchNewProductsSettings {
	return &watchNewProductsSettings{
		Searches: []searchTarget{
			{Name: "버터 검색", URL: "https://thirtymall.com/search?q=버터", Keyword: "버터", Emoji: "🧈"},
		},
	}
}

func multiSearchSettings() *watchNewProductsSettings {
	return &watchNewProductsSettings{
		Searches: []searchTarget{
			{Name: "버터 검색", URL: "https://thirtymall.com/search?q=버터", Keyword: "버터", Emoji: "🧈"},
			{Name: "치즈 검색", URL: "https://thirtymall.com/search?q=치즈", Keyword: "치즈", Emoji: "🧀"},
		},
	}
}

func TestBuildNotificationMessage(t *testing.T) {
	t.Parallel()

	t.Run("성공: 신규 상품이 없으면 빈 메시지", func(t *testing.T) {
		assert.Empty(t, buildNotificationMessage(multiSearchSettings(), nil))
	})

	t.Run("성공: 단일 검색 설정은 단일 검색 형식 사용", func(t *testing.T) {
		fresh := []*product{
			newProduct("버터 검색", "고메 버터", "12,900원", "https://thirtymall.com/product/1"),
		}

		message := buildNotificationMessage(singleSearchSettings(), fresh)
		assert.True(t, strings.HasPrefix(message, "🧈 새로운 '버터' 상품 1개 발견!"))
	})

	t.Run("성공: 다중 검색 설정은 검색별 블록 형식 사용", func(t *testing.T) {
		fresh := []*product{
			newProduct("버터 검색", "고메 버터", "12,900원", "https://thirtymall.com/product/1"),
		}

		message := buildNotificationMessage(multiSearchSettings(), fresh)
		assert.True(t, strings.HasPrefix(message, "🔔 새로운 상품 알림!"))
	})
}

func TestBuildSingleSearchMessage(t *testing.T) {
	t.Parallel()

	t.Run("성공: 번호 매김과 가격, 링크 표시", func(t *testing.T) {
		fresh := []*product{
			newProduct("버터 검색", "고메 버터", "30% 12,900원", "https://thirtymall.com/product/1"),
			newProduct("버터 검색", "발효 버터", "8,500원", "https://thirtymall.com/product/2"),
		}

		message := buildNotificationMessage(singleSearchSettings(), fresh)

		assert.Contains(t, message, "🧈 새로운 '버터' 상품 2개 발견!")
		assert.Contains(t, message, "1. 고메 버터\n   💰 30% 12,900원\n   🔗 https://thirtymall.com/product/1")
		assert.Contains(t, message, "2. 발효 버터")
		assert.NotContains(t, message, "그 외")
		assert.False(t, strings.HasSuffix(message, "\n"))
	})

	t.Run("성공: 10개를 초과하는 상품은 생략 표시", func(t *testing.T) {
		var fresh []*product
		for i := 0; i < maxItemsSingleSearch+4; i++ {
			fresh = append(fresh, newProduct("버터 검색", fmt.Sprintf("고메 버터 %d", i), "12,900원", "https://thirtymall.com/product/1"))
		}

		message := buildNotificationMessage(singleSearchSettings(), fresh)

		assert.Contains(t, message, fmt.Sprintf("%d. 고메 버터 %d", maxItemsSingleSearch, maxItemsSingleSearch-1))
		assert.NotContains(t, message, fmt.Sprintf("%d. ", maxItemsSingleSearch+1))
		assert.Contains(t, message, "... 그 외 4개")
	})

	t.Run("성공: 긴 제목은 60룬으로 잘라서 표시", func(t *testing.T) {
		longTitle := "버터 " + strings.Repeat("가", 100)
		fresh := []*product{
			newProduct("버터 검색", longTitle, "12,900원", "https://thirtymall.com/product/1"),
		}

		message := buildNotificationMessage(singleSearchSettings(), fresh)

		assert.Contains(t, message, "1. "+truncateRunes(normalizeText(longTitle), maxItemTitleRunes)+"\n")
		assert.NotContains(t, message, longTitle)
	})
}

func TestBuildMultiSearchMessage(t *testing.T) {
	t.Parallel()

	t.Run("성공: 설정 순서대로 검색별 블록 배치 및 첫 상품 링크 표시", func(t *testing.T) {
		fresh := []*product{
			newProduct("치즈 검색", "체다 치즈", "9,900원", "https://thirtymall.com/product/7"),
			newProduct("버터 검색", "고메 버터", "12,900원", "https://thirtymall.com/product/1"),
		}

		message := buildNotificationMessage(multiSearchSettings(), fresh)

		assert.Contains(t, message, "🧈 버터 검색: 1개 신상품\n  • 고메 버터\n    💰 12,900원")
		assert.Contains(t, message, "🧀 치즈 검색: 1개 신상품\n  • 체다 치즈\n    💰 9,900원")
		// 블록은 설정 순서(버터 → 치즈)를 따릅니다.
		assert.Less(t, strings.Index(message, "버터 검색"), strings.Index(message, "치즈 검색"))
		// 미리보기 링크는 신규 상품 목록의 첫 번째 상품을 사용합니다.
		assert.True(t, strings.HasSuffix(message, "\n🔗 https://thirtymall.com/product/7"))
	})

	t.Run("성공: 검색당 3개를 초과하는 상품은 생략 표시", func(t *testing.T) {
		var fresh []*product
		for i := 0; i < maxItemsPerSearch+2; i++ {
			fresh = append(fresh, newProduct("버터 검색", fmt.Sprintf("고메 버터 %d", i), "12,900원", "https://thirtymall.com/product/1"))
		}

		message := buildNotificationMessage(multiSearchSettings(), fresh)

		assert.Contains(t, message, "🧈 버터 검색: 5개 신상품")
		assert.Contains(t, message, "  • 고메 버터 2")
		assert.NotContains(t, message, "  • 고메 버터 3")
		assert.Contains(t, message, "  ... 외 2개 더")
	})

	t.Run("성공: 신규 상품이 없는 검색 대상의 블록은 생략", func(t *testing.T) {
		fresh := []*product{
			newProduct("버터 검색", "고메 버터", "12,900원", "https://thirtymall.com/product/1"),
		}

		message := buildNotificationMessage(multiSearchSettings(), fresh)

		assert.Contains(t, message, "버터 검색")
		assert.NotContains(t, message, "치즈 검색")
	})
}
