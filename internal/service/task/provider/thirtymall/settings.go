package thirtymall

import (
	"net/url"
	"strings"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/task/provider"
)

const (
	// defaultSearchCooldownMS 검색 대상 사이의 기본 대기 시간(밀리초)입니다.
	// 동일한 쇼핑몰 서버에 연속 요청을 보내 부하를 주거나 차단당하지 않기 위한 간격입니다.
	defaultSearchCooldownMS = 3000

	// defaultEmoji 이모지가 설정되지 않은 검색 대상에 사용되는 기본 이모지입니다.
	defaultEmoji = "🛒"
)

// searchTarget 감시할 검색 결과 페이지 하나를 정의하는 구조체입니다.
type searchTarget struct {
	// Name 검색 대상의 표시 이름입니다. 알림 메시지와 스냅샷 구분에 사용됩니다. (필수)
	Name string `json:"name"`

	// URL 감시할 검색 결과 페이지의 절대 URL입니다. (필수)
	URL string `json:"url"`

	// Keyword 상품 추출 시 본문에서 찾을 키워드입니다. (필수)
	// 키워드 매칭은 공백 정규화 후 대소문자를 구분하지 않고 수행됩니다.
	Keyword string `json:"keyword"`

	// Emoji 알림 메시지에서 이 검색 대상을 나타내는 이모지입니다. (선택, 기본값: 🛒)
	Emoji string `json:"emoji"`
}

// watchNewProductsSettings 신상품 감시 작업의 설정 구조체입니다.
type watchNewProductsSettings struct {
	// Searches 감시할 검색 대상 목록입니다. 최소 1개 이상 필요합니다.
	Searches []searchTarget `json:"searches"`

	// === 선택적 설정 ===
	// 아래 필드들은 값이 제공되지 않거나 0 이하일 경우,
	// ApplyDefaults() 메서드에서 기본값이 자동으로 적용됩니다.

	// SearchCooldownMS 검색 대상 사이의 대기 시간(밀리초)입니다. (기본값: 3000)
	SearchCooldownMS int `json:"search_cooldown_ms"`
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ provider.Validator = (*watchNewProductsSettings)(nil)

// Validate 설정값의 유효성을 검증합니다.
func (s *watchNewProductsSettings) Validate() error {
	if len(s.Searches) == 0 {
		return ErrNoSearchTargets
	}

	seenNames := make(map[string]bool, len(s.Searches))
	for i := range s.Searches {
		target := &s.Searches[i]

		target.Name = strings.TrimSpace(target.Name)
		target.URL = strings.TrimSpace(target.URL)
		target.Keyword = strings.TrimSpace(target.Keyword)
		target.Emoji = strings.TrimSpace(target.Emoji)

		if target.Name == "" || target.URL == "" || target.Keyword == "" {
			return apperrors.Wrapf(ErrInvalidSearchTarget, apperrors.InvalidInput,
				"검색 대상의 필수값이 비어 있습니다 (index: %d, name: %q)", i, target.Name)
		}

		// 검색 이름은 스냅샷 diff의 파티션 키이므로 중복될 수 없습니다.
		if seenNames[target.Name] {
			return apperrors.Newf(apperrors.InvalidInput, "중복된 검색 이름입니다: %s", target.Name)
		}
		seenNames[target.Name] = true

		parsed, err := url.Parse(target.URL)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return apperrors.Newf(apperrors.InvalidInput, "검색 대상의 URL이 유효한 절대 URL이 아닙니다 (name: %s, url: %s)", target.Name, target.URL)
		}
	}

	return nil
}

// ApplyDefaults 설정되지 않은 필드에 기본값을 적용합니다.
//
// 이 메서드는 Validate() 호출 후 실행되며, 선택적 필드들이 설정되지 않았거나
// 유효하지 않은 값(0 이하)일 경우 안전한 기본값으로 초기화합니다.
func (s *watchNewProductsSettings) ApplyDefaults() {
	if s.SearchCooldownMS <= 0 {
		s.SearchCooldownMS = defaultSearchCooldownMS
	}

	for i := range s.Searches {
		if s.Searches[i].Emoji == "" {
			s.Searches[i].Emoji = defaultEmoji
		}
	}
}
