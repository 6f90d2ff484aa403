package cronx

import (
	"fmt"
	"strings"
)

// Validate 주어진 Cron 표현식이 이 애플리케이션의 표준 형식에 맞는지 검사합니다.
//
// StandardParser가 지원하는 5필드(표준) 또는 6필드(초 단위 포함) 형식과
// @daily, @every 같은 Descriptor 형식만 허용합니다.
func Validate(spec string) error {
	spec = strings.TrimSpace(spec)

	// Descriptor(@daily 등)와 빈 문자열은 필드 개수 검사 대상이 아니므로 파서에 바로 위임합니다.
	if spec != "" && !strings.HasPrefix(spec, "@") {
		if got := len(strings.Fields(spec)); got < 5 || got > 6 {
			return fmt.Errorf("유효하지 않은 Cron 표현식입니다 (expected 5 or 6 fields, got %d): %q", got, spec)
		}
	}

	if _, err := StandardParser().Parse(spec); err != nil {
		return fmt.Errorf("Cron 표현식 파싱 실패: %w", err)
	}

	return nil
}
