package thirtymall

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// maxTitleRunes 상품 제목의 최대 길이(룬 단위)입니다.
	maxTitleRunes = 200

	// priceNotAvailable 가격 패턴을 찾지 못한 경우 사용하는 표시 문자열입니다.
	// 가격 추출 실패는 상품 레코드 생성을 막지 않습니다.
	priceNotAvailable = "가격 정보 없음"
)

var (
	// pricePattern 원화 가격 표기 패턴입니다. (예: "12,900원")
	pricePattern = regexp.MustCompile(`[\d,]+원`)

	// discountPattern 할인율 표기 패턴입니다. (예: "30%")
	discountPattern = regexp.MustCompile(`\d+%`)
)

// product 검색 결과 페이지에서 추출된 상품 레코드입니다.
//
// 한 번 생성된 레코드는 수정되지 않으며, 스냅샷에 통째로 저장되어
// 다음 실행 시 신상품 감지의 비교 기준이 됩니다.
type product struct {
	// ID 상품의 고유 식별자입니다. (검색 이름 + 정규화된 제목의 MD5 앞 8자리)
	ID string `json:"id"`

	// Title 키워드를 포함하는 상품 표시 텍스트입니다. (최대 200룬)
	Title string `json:"title"`

	// Price 가격 표시 문자열입니다. (예: "30% 12,900원", 없으면 "가격 정보 없음")
	Price string `json:"price"`

	// Link 상품 상세 페이지의 절대 URL입니다. 추출 실패 시 검색 페이지 URL입니다.
	Link string `json:"link"`

	// SearchName 이 상품을 발견한 검색 대상의 이름입니다.
	SearchName string `json:"search_name"`

	// FoundAt 상품이 처음 발견된 시각입니다.
	FoundAt time.Time `json:"found_at"`
}

// newProduct 추출된 필드들로부터 상품 레코드를 생성합니다.
// ID는 검색 이름과 정규화된 제목으로부터 결정적으로 파생됩니다.
func newProduct(searchName, title, price, link string) *product {
	title = truncateRunes(normalizeText(title), maxTitleRunes)

	return &product{
		ID:         productID(searchName, title),
		Title:      title,
		Price:      price,
		Link:       link,
		SearchName: searchName,
		FoundAt:    time.Now(),
	}
}

// productID 검색 이름과 제목으로부터 안정적인 8자리 16진수 식별자를 파생합니다.
//
// (검색 이름, 제목) 조합을 사용하는 이유는 추출된 링크가 검색 페이지 URL로
// 대체되는 경우가 잦아, 링크 기반 식별자는 상품 구분이 불가능해지기 때문입니다.
// 제목은 해싱 전에 공백 정규화되어 마크업 변화에 따른 식별자 흔들림을 줄입니다.
func productID(searchName, title string) string {
	sum := md5.Sum([]byte(searchName + "_" + normalizeText(title)))
	return hex.EncodeToString(sum[:])[:8]
}

// normalizeText 앞뒤 공백을 제거하고 연속된 내부 공백(개행 포함)을 단일 공백으로 축약합니다.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes 문자열을 룬 단위로 최대 n룬까지 자릅니다.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// containsKeyword 공백 정규화 후 대소문자를 구분하지 않고 키워드 포함 여부를 판단합니다.
func containsKeyword(text, keyword string) bool {
	return strings.Contains(
		strings.ToLower(normalizeText(text)),
		strings.ToLower(normalizeText(keyword)),
	)
}

// extractTitle 컨테이너 텍스트에서 상품 제목을 추출합니다.
//
// 키워드를 포함하는 첫 번째 줄을 제목으로 사용하며, 키워드가 어느 줄에도 없으면
// 전체 텍스트를 정규화하여 잘라낸 값을 대체 제목으로 사용합니다.
func extractTitle(text, keyword string) string {
	for _, line := range strings.Split(text, "\n") {
		line = normalizeText(line)
		if line == "" {
			continue
		}
		if containsKeyword(line, keyword) {
			return truncateRunes(line, maxTitleRunes)
		}
	}

	return truncateRunes(normalizeText(text), maxTitleRunes)
}

// extractPrice 컨테이너 텍스트에서 가격 표시 문자열을 추출합니다.
//
// 카드 안에 가격 표기가 여러 개인 경우(정가 + 할인가) 마지막 표기를 할인가로 간주하여
// 채택하고, 할인율 표기가 있으면 "30% 12,900원" 형태로 접두합니다.
// 가격 패턴이 전혀 없으면 자리 표시 문자열을 반환합니다.
func extractPrice(text string) string {
	matches := pricePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return priceNotAvailable
	}

	price := matches[len(matches)-1]

	if discount := discountPattern.FindString(text); discount != "" {
		return fmt.Sprintf("%s %s", discount, price)
	}

	return price
}

// resolveLink href 값을 페이지 URL 기준의 절대 URL로 변환합니다.
// 변환할 수 없는 href는 빈 문자열을 반환하여 호출부가 다음 후보로 넘어가게 합니다.
func resolveLink(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return base.ResolveReference(ref).String()
}
