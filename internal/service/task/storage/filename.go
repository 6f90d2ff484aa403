package storage

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/iancoleman/strcase"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
)

// filenameReplacer 파일명에 들어가면 파일 시스템 오류나 경로 이탈을 유발할 수 있는
// 문자들을 안전한 문자로 치환합니다. (경로 구분자, Windows 예약 문자 등)
var filenameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	"|", "-",
	"<", "-",
	">", "-",
	":", "-",
	"\"", "-",
	"?", "-",
	"*", "-",
)

// generateFilename 작업 ID와 명령 ID를 조합하여 스냅샷 파일명을 생성합니다.
//
// 사람이 파일 탐색기에서 식별할 수 있도록 Kebab-Case 이름을 앞에 두고,
// 정제 과정에서 서로 다른 ID가 같은 이름으로 합쳐지는 것을 막기 위해
// 원본 ID의 64비트 해시를 뒤에 붙입니다.
//
// 생성 패턴: "watch-{작업이름}-{명령이름}-{16자리해시}.json"
func generateFilename(taskID contract.TaskID, commandID contract.TaskCommandID) string {
	taskName := truncateByBytes(sanitizeName(string(taskID)), 50)
	commandName := truncateByBytes(sanitizeName(string(commandID)), 50)

	// 단순 연결("ab"+"c" == "a"+"bc")로 인한 해시 충돌을 막기 위해
	// 길이 접두사를 포함하여 해싱합니다.
	hasher := fnv.New64a()
	_, _ = fmt.Fprintf(hasher, "%d:%s|%d:%s", len(taskID), taskID, len(commandID), commandID)

	return fmt.Sprintf("watch-%s-%s-%016x.json", taskName, commandName, hasher.Sum64())
}

// sanitizeName 파일명으로 안전하게 사용할 수 있도록 문자열을 정제합니다.
func sanitizeName(s string) string {
	kebab := strcase.ToKebab(s)

	// Kebab 변환 후에도 남을 수 있는 제어 문자(0x00-0x1F, DEL)를 치환합니다.
	kebab = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '-'
		}
		return r
	}, kebab)

	return filenameReplacer.Replace(kebab)
}

// truncateByBytes 문자열을 UTF-8 바이트 길이 기준으로 자릅니다.
//
// 파일 시스템의 파일명 제한은 문자 수가 아니라 바이트 길이 기준이므로 바이트로 제한하되,
// 멀티바이트 문자(한글 등)가 중간에서 깨지지 않도록 룬 경계에서만 자릅니다.
func truncateByBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	var totalBytes int
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])

		if totalBytes+size > limit {
			return s[:totalBytes]
		}

		totalBytes += size
		i += size
	}

	return s[:totalBytes]
}
