package thirtymall

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductID(t *testing.T) {
	t.Parallel()

	t.Run("성공: 동일 입력에 대해 항상 같은 8자리 16진수 식별자 반환", func(t *testing.T) {
		id1 := productID("버터 검색", "고메 버터 프레지덩 200g")
		id2 := productID("버터 검색", "고메 버터 프레지덩 200g")

		assert.Equal(t, id1, id2)
		assert.Len(t, id1, 8)
		assert.Regexp(t, `^[0-9a-f]{8}$`, id1)
	})

	t.Run("성공: 제목의 공백 차이는 식별자에 영향 없음", func(t *testing.T) {
		id1 := productID("버터 검색", "고메   버터\n프레지덩")
		id2 := productID("버터 검색", "고메 버터 프레지덩")

		assert.Equal(t, id1, id2)
	})

	t.Run("성공: 검색 이름이 다르면 같은 제목이라도 다른 식별자", func(t *testing.T) {
		id1 := productID("버터 검색", "고메 버터")
		id2 := productID("마가린 검색", "고메 버터")

		assert.NotEqual(t, id1, id2)
	})
}

func TestNewProduct(t *testing.T) {
	t.Parallel()

	t.Run("성공: 제목 정규화 및 길이 제한 적용", func(t *testing.T) {
		longTitle := strings.Repeat("가", maxTitleRunes+50)

		p := newProduct("버터 검색", "  고메\n버터  ", "12,900원", "https://thirtymall.com/product/1")
		assert.Equal(t, "고메 버터", p.Title)
		assert.Equal(t, productID("버터 검색", "고메 버터"), p.ID)
		assert.Equal(t, "12,900원", p.Price)
		assert.Equal(t, "버터 검색", p.SearchName)
		assert.False(t, p.FoundAt.IsZero())

		truncated := newProduct("버터 검색", longTitle, "", "")
		assert.Equal(t, maxTitleRunes, len([]rune(truncated.Title)))
	})
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"성공: 앞뒤 공백 제거", "  버터  ", "버터"},
		{"성공: 연속 공백 축약", "고메    버터", "고메 버터"},
		{"성공: 개행과 탭도 단일 공백으로 축약", "고메\n\t버터", "고메 버터"},
		{"성공: 빈 문자열", "", ""},
		{"성공: 공백만 있는 문자열", "  \n\t  ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeText(tc.input))
		})
	}
}

func TestContainsKeyword(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		keyword  string
		expected bool
	}{
		{"성공: 정확히 포함", "고메 버터 프레지덩", "버터", true},
		{"성공: 대소문자 무시", "Gourmet BUTTER 200g", "butter", true},
		{"성공: 키워드 내부 공백 정규화 후 매칭", "고메 버터 프레지덩", "고메  버터", true},
		{"성공: 포함되지 않음", "유기농 마가린", "버터", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, containsKeyword(tc.text, tc.keyword))
		})
	}
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	t.Run("성공: 키워드를 포함하는 첫 번째 줄을 제목으로 채택", func(t *testing.T) {
		text := "신상품\n고메 버터 프레지덩 200g\n12,900원\n버터 와플 세트"

		assert.Equal(t, "고메 버터 프레지덩 200g", extractTitle(text, "버터"))
	})

	t.Run("성공: 빈 줄은 건너뛰고 탐색", func(t *testing.T) {
		text := "\n\n  \n고메 버터\n"

		assert.Equal(t, "고메 버터", extractTitle(text, "버터"))
	})

	t.Run("성공: 키워드가 어느 줄에도 없으면 전체 텍스트를 대체 제목으로 사용", func(t *testing.T) {
		text := "신상품\n12,900원"

		assert.Equal(t, "신상품 12,900원", extractTitle(text, "버터"))
	})
}

func TestExtractPrice(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{"성공: 단일 가격 표기", "고메 버터 12,900원", "12,900원"},
		{"성공: 정가와 할인가 중 마지막 표기를 채택", "정가 15,000원 12,900원", "12,900원"},
		{"성공: 할인율이 있으면 접두", "30% 15,000원 12,900원", "30% 12,900원"},
		{"성공: 천 단위 구분 없는 가격", "버터 900원", "900원"},
		{"성공: 가격 표기가 없으면 자리 표시 문자열", "고메 버터 품절", priceNotAvailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractPrice(tc.text))
		})
	}
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://thirtymall.com/search?q=버터")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		href     string
		expected string
	}{
		{"성공: 상대 경로를 절대 URL로 변환", "/product/123", "https://thirtymall.com/product/123"},
		{"성공: 절대 URL은 그대로 유지", "https://thirtymall.com/goods/9", "https://thirtymall.com/goods/9"},
		{"성공: 앞뒤 공백 제거 후 변환", "  /product/123  ", "https://thirtymall.com/product/123"},
		{"실패: 빈 href", "", ""},
		{"실패: 프래그먼트 전용 href", "#top", ""},
		{"실패: 자바스크립트 href", "javascript:void(0)", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, resolveLink(tc.href, base))
		})
	}
}
