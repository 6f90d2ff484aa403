// Package browser Chrome 헤드리스 브라우저를 이용한 페이지 렌더링 세션을 제공합니다.
//
// 자바스크립트로 상품 목록을 그리는 검색 페이지는 단순 HTTP 요청만으로는
// 비어 있는 문서가 내려오므로, 실제 브라우저로 렌더링한 후의 DOM을 수집합니다.
package browser

import (
	"os"
	"os/exec"
	"runtime"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// component 브라우저 세션 로깅용 컴포넌트 이름입니다.
const component = "task.browser"

// Capability 실행 환경의 브라우저 렌더링 가능 여부를 나타냅니다.
//
// 서비스 시작 시 한 번 감지하여 설정과 함께 명시적으로 전달되며,
// 전역 상태로 공유하지 않습니다.
type Capability struct {
	// Available 사용 가능한 Chrome/Chromium 실행 파일이 존재하는지 여부입니다.
	Available bool

	// ChromePath 감지된 실행 파일의 경로입니다. Available이 false면 빈 문자열입니다.
	ChromePath string
}

// DetectCapability 실행 환경에서 사용 가능한 Chrome/Chromium 실행 파일을 탐색합니다.
//
// preferredPath가 지정되어 있으면 이를 우선 확인하고,
// 없거나 유효하지 않으면 운영체제별 일반적인 설치 경로를 차례로 확인합니다.
func DetectCapability(preferredPath string) Capability {
	if preferredPath != "" {
		if path, ok := probeExecutable(preferredPath); ok {
			return Capability{Available: true, ChromePath: path}
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"chrome_path": preferredPath,
		}).Warn("설정된 Chrome 경로를 사용할 수 없어 일반적인 설치 경로를 탐색합니다")
	}

	for _, candidate := range chromeCandidates() {
		if path, ok := probeExecutable(candidate); ok {
			applog.WithComponentAndFields(component, applog.Fields{
				"chrome_path": path,
			}).Debug("Chrome 실행 파일 감지 완료")

			return Capability{Available: true, ChromePath: path}
		}
	}

	applog.WithComponent(component).Info("사용 가능한 Chrome 실행 파일이 없습니다. 단순 HTTP 모드로만 동작합니다")

	return Capability{}
}

// chromeCandidates 운영체제별 Chrome/Chromium 실행 파일 후보 목록을 반환합니다.
func chromeCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chrome.exe`,
		}
	default:
		return []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium",
			"chromium-browser",
			"chrome",
		}
	}
}

// probeExecutable 지정된 경로(또는 PATH 상의 명령)가 실행 가능한지 확인합니다.
func probeExecutable(candidate string) (string, bool) {
	// 절대/상대 경로는 파일 존재 여부를 직접 확인합니다.
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, true
	}

	// 명령 이름은 PATH에서 탐색합니다.
	if path, err := exec.LookPath(candidate); err == nil {
		return path, true
	}

	return "", false
}
