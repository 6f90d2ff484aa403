package cronx

import "github.com/robfig/cron/v3"

// StandardParser 애플리케이션의 표준 Cron 표현식 파서 구현체를 반환합니다.
//
// 초 필드는 선택 사항입니다. 표준 5필드 형식은 매분 0초 시점에 실행되는 것으로
// 해석되며, 초 단위 제어가 필요하면 6필드 확장 형식을 사용합니다.
//
// 지원 스펙:
//   - 필드 순서: [초(선택)] [분] [시] [일] [월] [요일]
//   - 특수 표현식: @daily, @hourly, @every <duration> 등 (Descriptor)
//
// 예시:
//   - "*/5 * * * *"   : 매 5분마다 실행 (0초 시점)
//   - "0 */5 * * * *" : 매 5분 0초마다 실행
//   - "@daily"        : 매일 자정에 실행
func StandardParser() cron.Parser {
	return cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}
