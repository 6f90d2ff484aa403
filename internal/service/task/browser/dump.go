package browser

import (
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// maxDumpBytes 디버그 파일에 기록할 렌더링 HTML의 최대 크기입니다.
const maxDumpBytes = 50000

// DumpHTML 렌더링된 HTML의 앞부분을 검색 이름 기반의 디버그 파일로 기록합니다.
//
// 생성 경로: <debugDir>/debug_<snake_case(검색이름)>.html
// 진단 전용 산출물이며 프로그램이 다시 읽지 않습니다. 기록 실패는 경고로만 남깁니다.
func DumpHTML(debugDir, searchName, html string) {
	if err := os.MkdirAll(debugDir, 0755); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"dir":   debugDir,
			"error": err,
		}).Warn("디버그 디렉토리 생성 실패")
		return
	}

	if len(html) > maxDumpBytes {
		html = html[:maxDumpBytes]
	}

	path := filepath.Join(debugDir, "debug_"+strcase.ToSnake(searchName)+".html")
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"file":  path,
			"error": err,
		}).Warn("디버그 HTML 기록 실패")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"file": path,
		"size": min(len(html), maxDumpBytes),
	}).Debug("디버그 HTML 기록 완료")
}
