package thirtymall

// watchNewProductsSnapshot 한 번의 감시 실행에서 추출된 전체 상품 목록의 스냅샷입니다.
//
// 모든 검색 대상의 상품이 하나의 목록에 저장되며, 다음 실행 시 신상품 감지의
// 비교 기준이 됩니다. 스냅샷은 부분 갱신 없이 통째로 교체됩니다.
type watchNewProductsSnapshot struct {
	// Products 발견된 모든 상품 목록입니다. (검색 대상 구분은 각 상품의 SearchName 필드)
	Products []*product `json:"products"`
}

// idSet 스냅샷에 포함된 모든 상품 ID의 집합을 반환합니다.
//
// 집합은 검색 대상 구분 없이 전체 상품에 걸쳐 구성됩니다. 검색 대상 간에
// 동일 상품이 중복 노출되더라도 이미 알려진 상품이 다시 '신규'로 감지되지 않습니다.
func (s *watchNewProductsSnapshot) idSet() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Products))
	for _, p := range s.Products {
		ids[p.ID] = struct{}{}
	}
	return ids
}

// newProducts 현재 상품 목록에서 이전 스냅샷에 없던 상품만 추려 반환합니다.
//
// 순수 함수이며 입력 순서를 보존합니다. 반환 목록의 각 상품은 current의 원소이고,
// current에서의 상대적 순서가 유지됩니다.
func newProducts(current []*product, previousIDs map[string]struct{}) []*product {
	var fresh []*product
	for _, p := range current {
		if _, known := previousIDs[p.ID]; !known {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

// partitionBySearch 상품 목록을 검색 이름 기준으로 분할합니다.
// 반환되는 맵의 각 목록은 입력 순서를 보존합니다.
func partitionBySearch(products []*product) map[string][]*product {
	partitions := make(map[string][]*product)
	for _, p := range products {
		partitions[p.SearchName] = append(partitions[p.SearchName], p)
	}
	return partitions
}
