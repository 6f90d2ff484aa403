package errors

// ErrorType 에러의 종류를 나타내는 타입입니다.
//
// 에러를 발생 지점의 세부 원인이 아닌 "호출자가 어떻게 대응해야 하는가"를 기준으로 분류합니다.
// 예를 들어 쇼핑몰 서버의 5xx 응답과 브라우저 세션 기동 실패는 모두 재시도 가능성이 있는
// Unavailable로, 상품 목록 영역의 HTML 구조 변경은 재시도해도 해소되지 않는 ParsingFailed로 분류합니다.
type ErrorType int

// 에러 타입 상수
const (
	// Unknown 알 수 없는 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그, 잘못된 초기화 순서 등)
	Internal

	// System 시스템 또는 인프라 오류 (디스크, 파일 시스템 등)
	System

	// Unauthorized 인증 실패 (토큰 누락, 토큰 만료 등)
	Unauthorized

	// Forbidden 권한 없음 (접근 권한 부족, 봇 차단 등)
	Forbidden

	// InvalidInput 잘못된 입력값 (유효성 검사 실패)
	InvalidInput

	// Conflict 리소스 충돌 (중복 등록 등)
	Conflict

	// NotFound 리소스를 찾을 수 없음
	NotFound

	// ExecutionFailed 비즈니스 로직 수행 실패 (HTTP 요청 실패, 알림 발송 실패 등)
	ExecutionFailed

	// ParsingFailed 데이터 파싱 또는 형식 변환 실패 (상품 추출 실패 등)
	ParsingFailed

	// Timeout 작업 시간 초과 (감시 작업의 실행 데드라인 초과 등)
	Timeout

	// Unavailable 서비스 일시적 사용 불가 (재시도로 해소될 가능성 있음)
	Unavailable
)

// String ErrorType의 문자열 표현을 반환합니다. 로그 필드 및 에러 메시지 포맷팅에 사용됩니다.
func (t ErrorType) String() string {
	switch t {
	case Internal:
		return "Internal"
	case System:
		return "System"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case InvalidInput:
		return "InvalidInput"
	case Conflict:
		return "Conflict"
	case NotFound:
		return "NotFound"
	case ExecutionFailed:
		return "ExecutionFailed"
	case ParsingFailed:
		return "ParsingFailed"
	case Timeout:
		return "Timeout"
	case Unavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}
