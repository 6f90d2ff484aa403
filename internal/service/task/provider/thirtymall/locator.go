package thirtymall

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

const (
	// sufficientProducts 추출 전략이 충분한 결과를 냈다고 판단하는 최소 상품 수입니다.
	// 이 수에 도달한 첫 번째 전략의 결과가 채택되며, 이후 전략은 수행되지 않습니다.
	sufficientProducts = 3

	// maxContainers 한 전략이 검사하는 최대 후보 컨테이너 수입니다.
	maxContainers = 20

	// maxKeywordElements 키워드 텍스트 스캔이 검사하는 최대 매칭 요소 수입니다.
	maxKeywordElements = 30

	// minMatchRunes 키워드 매칭 텍스트의 최소 길이입니다. 이보다 짧은 텍스트는
	// 버튼, 탭 등 상품 카드가 아닌 UI 요소일 가능성이 높아 제외합니다.
	minMatchRunes = 10

	// maxAncestorLevels 매칭 요소에서 카드 컨테이너를 찾기 위해 거슬러 올라가는 최대 단계 수입니다.
	maxAncestorLevels = 5

	// maxLinkAncestorLevels 컨테이너에서 링크를 찾기 위해 거슬러 올라가는 최대 단계 수입니다.
	maxLinkAncestorLevels = 4

	// maxCardTextRunes 카드 컨테이너로 인정하는 텍스트 길이의 상한입니다.
	// 이보다 긴 텍스트를 가진 요소는 상품 카드가 아니라 목록 전체를 감싸는
	// 레이아웃 요소로 간주합니다.
	maxCardTextRunes = 600
)

// structuralSelectors 상품 카드 컨테이너로 자주 쓰이는 CSS 선택자 목록입니다.
// 앞쪽일수록 구체적인 선택자이며, 매칭되는 요소가 있는 첫 번째 선택자가 채택됩니다.
var structuralSelectors = []string{
	".product-item",
	".item",
	".goods-item",
	".product",
	`[class*="product"]`,
	`[class*="item"]`,
	`[class*="goods"]`,
}

// locator 상품 후보 컨테이너를 찾는 하나의 추출 전략입니다.
//
// 전략들은 신뢰도 순으로 배열되어 순서대로 시도되며, 각 전략은 자신이 찾은
// 상품 목록만 반환하고 채택 여부는 호출부(extractProducts)가 결정합니다.
type locator interface {
	// name 로깅용 전략 이름을 반환합니다.
	name() string

	// locate 문서에서 상품 레코드들을 추출합니다. 후보 단위의 실패는 건너뛰며,
	// 전략 전체가 실패하는 경우는 없습니다. (빈 결과 반환)
	locate(doc *goquery.Document, target searchTarget, base *url.URL, pageURL string) []*product
}

// locators 추출 전략의 시도 순서입니다.
var locators = []locator{
	structuralLocator{},
	keywordLocator{},
	linkLocator{},
	jsonLDLocator{},
}

// extractProducts 추출 전략을 순서대로 시도하여 상품 목록을 반환합니다.
//
// 충분한 결과(sufficientProducts 이상)를 낸 첫 번째 전략의 결과가 채택됩니다.
// 어느 전략도 충분한 결과를 내지 못하면, 가장 많은 상품을 찾은 전략의 결과를 반환합니다.
func extractProducts(doc *goquery.Document, target searchTarget, pageURL string) []*product {
	base, err := url.Parse(pageURL)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"search_name": target.Name,
			"page_url":    pageURL,
		}).WithError(err).Warn("페이지 URL 파싱 실패: 상품 추출을 건너뜁니다")
		return nil
	}

	var best []*product
	bestStrategy := ""

	for _, loc := range locators {
		products := dedupeByID(loc.locate(doc, target, base, pageURL))

		applog.WithComponentAndFields(component, applog.Fields{
			"search_name": target.Name,
			"strategy":    loc.name(),
			"found":       len(products),
		}).Debug("추출 전략 수행 완료")

		if len(products) >= sufficientProducts {
			return products
		}

		if len(products) > len(best) {
			best = products
			bestStrategy = loc.name()
		}
	}

	if len(best) > 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"search_name": target.Name,
			"strategy":    bestStrategy,
			"found":       len(best),
		}).Info("모든 전략이 기준치에 미달: 최다 수확 전략의 결과를 채택합니다")
	}

	return best
}

// dedupeByID 한 번의 추출 패스 안에서 상품 ID가 중복된 레코드를 제거합니다.
//
// 컨테이너 텍스트가 달라도(가격 표기 차이 등) 제목이 같으면 ID가 충돌하므로,
// 먼저 수집된 레코드만 남깁니다.
func dedupeByID(products []*product) []*product {
	if len(products) < 2 {
		return products
	}

	seen := make(map[string]bool, len(products))
	deduped := make([]*product, 0, len(products))
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		deduped = append(deduped, p)
	}

	return deduped
}

// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
// 전략 1: 구조적 선택자 스캔
// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

// structuralLocator 상품 카드에 흔히 쓰이는 CSS 클래스 선택자로 컨테이너를 찾는 전략입니다.
// 매칭 요소가 존재하는 첫 번째 선택자가 채택되며, 이후 선택자는 시도하지 않습니다.
type structuralLocator struct{}

func (structuralLocator) name() string { return "structural" }

func (structuralLocator) locate(doc *goquery.Document, target searchTarget, base *url.URL, pageURL string) []*product {
	var containers *goquery.Selection
	for _, selector := range structuralSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			containers = sel
			break
		}
	}
	if containers == nil {
		return nil
	}

	if containers.Length() > maxContainers {
		containers = containers.Slice(0, maxContainers)
	}

	var products []*product
	processed := make(map[string]bool)

	containers.Each(func(_ int, container *goquery.Selection) {
		if p := buildCard(container, target, base, pageURL, processed); p != nil {
			products = append(products, p)
		}
	})

	return products
}

// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
// 전략 2: 키워드 텍스트 스캔
// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

// keywordLocator 키워드를 직접 포함하는 텍스트 노드에서 출발하여 조상 방향으로
// 카드 컨테이너를 찾아 올라가는 전략입니다. 클래스 이름에 의존하지 않으므로
// 마크업 구조가 바뀌어도 동작하지만, 구조적 스캔보다 노이즈가 많습니다.
//
// 결과가 기준치에 미달하면 MUI 레이아웃 컨테이너(div[class*="MuiBox"])를
// 후보 풀에 추가로 합류시킵니다.
type keywordLocator struct{}

func (keywordLocator) name() string { return "keyword" }

func (keywordLocator) locate(doc *goquery.Document, target searchTarget, base *url.URL, pageURL string) []*product {
	var products []*product
	processed := make(map[string]bool)

	matched := 0
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if matched >= maxKeywordElements {
			return false
		}

		own := normalizeText(ownText(s))
		if !containsKeyword(own, target.Keyword) {
			return true
		}
		if len([]rune(own)) < minMatchRunes {
			return true
		}
		matched++

		container := findCardContainer(s, own)
		if p := buildCard(container, target, base, pageURL, processed); p != nil {
			products = append(products, p)
		}
		return true
	})

	// MUI 기반 레이아웃은 의미 있는 클래스 이름이 없어 위의 방식이 빗나갈 수 있습니다.
	if len(products) < sufficientProducts {
		mui := doc.Find(`div[class*="MuiBox"]`)
		if mui.Length() > maxContainers {
			mui = mui.Slice(0, maxContainers)
		}
		mui.Each(func(_ int, container *goquery.Selection) {
			if p := buildCard(container, target, base, pageURL, processed); p != nil {
				products = append(products, p)
			}
		})
	}

	return products
}

// findCardContainer 매칭 요소에서 조상 방향으로 최대 maxAncestorLevels 단계를 거슬러
// 올라가며 가장 작은 그럴듯한 카드 컨테이너를 찾습니다.
//
// 컨테이너 조건: 매칭 텍스트보다 내용이 많고(제목 외에 가격, 링크 등을 포함),
// 상한(maxCardTextRunes)을 넘지 않아야 합니다. 조건을 만족하는 조상이 없으면
// 매칭 요소 자신을 반환합니다.
func findCardContainer(s *goquery.Selection, matchedText string) *goquery.Selection {
	matchedLen := len([]rune(matchedText))

	current := s
	for level := 0; level < maxAncestorLevels; level++ {
		parent := current.Parent()
		if parent.Length() == 0 {
			break
		}

		parentLen := len([]rune(normalizeText(blockText(parent))))
		if parentLen > matchedLen && parentLen <= maxCardTextRunes {
			return parent
		}
		if parentLen > maxCardTextRunes {
			// 더 올라가면 목록 전체를 감싸는 요소뿐이므로 중단합니다.
			break
		}

		current = parent
	}

	return s
}

// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
// 전략 3: 링크 스캔
// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

// productHrefMarkers 상품 상세 페이지로 이어지는 href에 흔히 포함되는 경로 조각입니다.
var productHrefMarkers = []string{"product", "goods", "item", "detail"}

// linkLocator 상품 상세 페이지 패턴의 href를 가진 앵커 중 키워드를 포함하는 것을
// 상품 후보로 삼는 전략입니다. 링크 단위로 중복을 제거합니다.
type linkLocator struct{}

func (linkLocator) name() string { return "link" }

func (linkLocator) locate(doc *goquery.Document, target searchTarget, base *url.URL, pageURL string) []*product {
	var products []*product
	seenLinks := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if len(products) >= maxContainers {
			return false
		}

		href, _ := anchor.Attr("href")
		if !hasProductHrefMarker(href) {
			return true
		}

		text := blockText(anchor)
		if !containsKeyword(text, target.Keyword) {
			return true
		}

		link := resolveLink(href, base)
		if link == "" || seenLinks[link] {
			return true
		}
		seenLinks[link] = true

		title := extractTitle(text, target.Keyword)
		if title == "" {
			return true
		}

		products = append(products, newProduct(target.Name, title, extractPrice(text), link))
		return true
	})

	return products
}

func hasProductHrefMarker(href string) bool {
	lowered := strings.ToLower(href)
	for _, marker := range productHrefMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
// 전략 4: 구조화 데이터(JSON-LD) 스캔
// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

// jsonLDLocator <script type="application/ld+json"> 블록의 Product 엔트리를 읽는
// 최후 수단 전략입니다. 렌더링된 DOM에서 상품 카드를 전혀 찾지 못해도,
// 검색 엔진용 구조화 데이터가 존재하면 여기서 상품을 건질 수 있습니다.
type jsonLDLocator struct{}

func (jsonLDLocator) name() string { return "jsonld" }

func (jsonLDLocator) locate(doc *goquery.Document, target searchTarget, base *url.URL, pageURL string) []*product {
	var products []*product
	seenIDs := make(map[string]bool)

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, script *goquery.Selection) bool {
		if len(products) >= maxContainers {
			return false
		}

		parsed := gjson.Parse(script.Text())
		for _, entry := range flattenJSONLD(parsed) {
			if len(products) >= maxContainers {
				break
			}

			if !strings.EqualFold(entry.Get("@type").String(), "Product") {
				continue
			}

			title := normalizeText(entry.Get("name").String())
			if title == "" || !containsKeyword(title, target.Keyword) {
				continue
			}

			link := resolveLink(entry.Get("url").String(), base)
			if link == "" {
				link = pageURL
			}

			p := newProduct(target.Name, title, jsonLDPrice(entry), link)
			if seenIDs[p.ID] {
				continue
			}
			seenIDs[p.ID] = true

			products = append(products, p)
		}
		return true
	})

	return products
}

// flattenJSONLD JSON-LD 루트를 개별 엔트리 목록으로 평탄화합니다.
// 단일 객체, 배열, @graph 래퍼, ItemList의 itemListElement를 모두 지원합니다.
func flattenJSONLD(root gjson.Result) []gjson.Result {
	var entries []gjson.Result

	var visit func(r gjson.Result)
	visit = func(r gjson.Result) {
		if r.IsArray() {
			for _, item := range r.Array() {
				visit(item)
			}
			return
		}
		if !r.IsObject() {
			return
		}

		if graph := r.Get("@graph"); graph.Exists() {
			visit(graph)
			return
		}
		if strings.EqualFold(r.Get("@type").String(), "ItemList") {
			for _, element := range r.Get("itemListElement").Array() {
				if item := element.Get("item"); item.Exists() {
					visit(item)
				} else {
					visit(element)
				}
			}
			return
		}

		entries = append(entries, r)
	}
	visit(root)

	return entries
}

// jsonLDPrice JSON-LD 엔트리의 offers에서 가격 표시 문자열을 구성합니다.
func jsonLDPrice(entry gjson.Result) string {
	price := entry.Get("offers.price")
	if !price.Exists() {
		price = entry.Get("offers.0.price")
	}
	if !price.Exists() || price.String() == "" {
		return priceNotAvailable
	}

	return formatWon(price.String())
}

// formatWon 숫자 문자열을 천 단위 콤마가 포함된 원화 표기로 변환합니다. (예: "12900" -> "12,900원")
func formatWon(raw string) string {
	// 소수점 이하는 버립니다. 원화에는 소수 단위가 없습니다.
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		raw = raw[:idx]
	}
	if raw == "" {
		return priceNotAvailable
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return priceNotAvailable
		}
	}

	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString("원")

	return b.String()
}

// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
// 카드 필드 추출 공통 로직
// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

// buildCard 후보 컨테이너 하나로부터 상품 레코드를 생성합니다.
//
// 키워드가 없는 컨테이너, 이미 처리된 텍스트와 동일한 컨테이너는 건너뜁니다.
// 필드 단위의 추출 실패(가격 없음, 링크 없음)는 레코드 생성을 막지 않습니다.
func buildCard(container *goquery.Selection, target searchTarget, base *url.URL, pageURL string, processed map[string]bool) *product {
	text := blockText(container)
	if !containsKeyword(text, target.Keyword) {
		return nil
	}

	key := normalizeText(text)
	if key == "" || processed[key] {
		return nil
	}
	processed[key] = true

	title := extractTitle(text, target.Keyword)
	if title == "" {
		return nil
	}

	link := findCardLink(container, base)
	if link == "" {
		link = pageURL
	}

	return newProduct(target.Name, title, extractPrice(text), link)
}

// findCardLink 컨테이너에서 상품 링크를 찾습니다.
//
// 우선 컨테이너 자신과 하위 요소에서 href를 찾고, 없으면 조상 방향으로
// 최대 maxLinkAncestorLevels 단계까지 올라가며 앵커를 찾습니다.
func findCardLink(container *goquery.Selection, base *url.URL) string {
	if container.Is("a") {
		if href, ok := container.Attr("href"); ok {
			if link := resolveLink(href, base); link != "" {
				return link
			}
		}
	}

	link := ""
	container.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		if resolved := resolveLink(href, base); resolved != "" {
			link = resolved
			return false
		}
		return true
	})
	if link != "" {
		return link
	}

	ancestor := container.Parent()
	for level := 0; level < maxLinkAncestorLevels && ancestor.Length() > 0; level++ {
		if ancestor.Is("a") {
			if href, ok := ancestor.Attr("href"); ok {
				if resolved := resolveLink(href, base); resolved != "" {
					return resolved
				}
			}
		}
		ancestor = ancestor.Parent()
	}

	return ""
}

// ownText 요소의 직계 텍스트 노드만 이어붙여 반환합니다. (하위 요소의 텍스트 제외)
func ownText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}

	var b strings.Builder
	for child := s.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}

	return b.String()
}

// blockText 요소의 모든 텍스트 노드를 줄바꿈으로 이어붙여 반환합니다.
//
// goquery의 Text()는 블록 경계 없이 텍스트를 이어붙여 "첫 줄" 단위의 제목 추출이
// 불가능하므로, 텍스트 노드 단위로 줄을 나누어 수집합니다.
func blockText(s *goquery.Selection) string {
	var lines []string

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				lines = append(lines, trimmed)
			}
			return
		}
		// 스크립트와 스타일의 내용은 표시 텍스트가 아닙니다.
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	for _, node := range s.Nodes {
		visit(node)
	}

	return strings.Join(lines, "\n")
}
