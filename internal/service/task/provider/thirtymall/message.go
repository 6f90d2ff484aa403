package thirtymall

import (
	"fmt"
	"strings"
)

const (
	// maxItemsPerSearch 검색 대상이 여러 개일 때 검색당 표시하는 최대 상품 수입니다.
	maxItemsPerSearch = 3

	// maxItemsSingleSearch 검색 대상이 하나뿐일 때 표시하는 최대 상품 수입니다.
	maxItemsSingleSearch = 10

	// maxItemTitleRunes 알림 메시지에 표시하는 상품 제목의 최대 길이입니다.
	maxItemTitleRunes = 60
)

// buildNotificationMessage 신상품 알림 메시지를 구성합니다.
//
// 검색 대상이 하나뿐인 설정에서는 단일 검색 형식(번호 매김, 최대 10개)을,
// 여러 개인 설정에서는 검색별 블록 형식(검색당 최대 3개)을 사용합니다.
// fresh가 비어 있으면 빈 문자열을 반환합니다.
func buildNotificationMessage(settings *watchNewProductsSettings, fresh []*product) string {
	if len(fresh) == 0 {
		return ""
	}

	if len(settings.Searches) == 1 {
		return buildSingleSearchMessage(settings.Searches[0], fresh)
	}

	return buildMultiSearchMessage(settings, fresh)
}

// buildSingleSearchMessage 단일 검색 설정의 알림 메시지를 구성합니다.
func buildSingleSearchMessage(target searchTarget, fresh []*product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s 새로운 '%s' 상품 %d개 발견!\n\n", target.Emoji, target.Keyword, len(fresh))

	shown := fresh
	if len(shown) > maxItemsSingleSearch {
		shown = shown[:maxItemsSingleSearch]
	}

	for i, p := range shown {
		fmt.Fprintf(&b, "%d. %s\n   💰 %s\n   🔗 %s\n\n", i+1, truncateRunes(p.Title, maxItemTitleRunes), p.Price, p.Link)
	}

	if hidden := len(fresh) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "... 그 외 %d개\n", hidden)
	}

	return strings.TrimRight(b.String(), "\n")
}

// buildMultiSearchMessage 다중 검색 설정의 알림 메시지를 구성합니다.
//
// 검색 대상의 설정 순서대로 블록을 배치하고, 각 블록에는 해당 검색의 이모지와
// 신상품 수, 상위 3개 상품의 제목/가격을 표시합니다. 메시지 말미에는
// 미리보기용으로 첫 번째 신상품의 링크를 덧붙입니다.
func buildMultiSearchMessage(settings *watchNewProductsSettings, fresh []*product) string {
	partitions := partitionBySearch(fresh)

	var b strings.Builder
	b.WriteString("🔔 새로운 상품 알림!\n\n")

	for _, target := range settings.Searches {
		items := partitions[target.Name]
		if len(items) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s %s: %d개 신상품\n", target.Emoji, target.Name, len(items))

		shown := items
		if len(shown) > maxItemsPerSearch {
			shown = shown[:maxItemsPerSearch]
		}
		for _, p := range shown {
			fmt.Fprintf(&b, "  • %s\n    💰 %s\n", truncateRunes(p.Title, maxItemTitleRunes), p.Price)
		}

		if hidden := len(items) - len(shown); hidden > 0 {
			fmt.Fprintf(&b, "  ... 외 %d개 더\n", hidden)
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n🔗 %s", fresh[0].Link)

	return b.String()
}
