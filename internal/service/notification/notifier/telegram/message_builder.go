package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/pkg/strutil"
)

const (
	// maxTitleRunes 제목의 최대 길이 제한
	// 너무 긴 제목으로 인해 HTML 태그가 닫히지 않은 채 메시지가 분할되는 문제를 방지합니다.
	maxTitleRunes = 200

	// titleFormat 제목이 포함된 메시지 포맷
	// 형식: "<b>【 제목 】</b>\n\n원본메시지"
	titleFormat = "<b>【 %s 】</b>\n\n%s"

	// errorFormat 에러 발생 시 메시지 포맷
	// 메시지 하단에 경고 문구를 추가하여 사용자의 주의를 환기시킵니다.
	errorFormat = "%s\n\n*** 오류가 발생하였습니다. ***"

	// elapsedTimeFormat 경과 시간 표시 포맷
	// 형식: " (1시간 30분 10초 지남)"
	elapsedTimeFormat = " (%s지남)"
)

// buildMessage 알림 정보를 텔레그램 전송용 최종 메시지로 가공합니다.
//
// 원본 메시지에 작업 제목, 경과 시간, 오류 강조 표시를 순서대로 덧붙입니다.
// 텔레그램 Notifier는 HTML 포맷을 지원하므로, 사용자 메시지 본문은 이스케이프하지 않고
// 그대로 허용하여 <b>, <a href="..."> 등의 서식을 사용할 수 있게 합니다.
func (n *telegramNotifier) buildMessage(notification contract.Notification) string {
	message := notification.Message

	message = n.withTitle(notification, message)
	message = withElapsedTime(notification, message)

	if notification.ErrorOccurred {
		message = fmt.Sprintf(errorFormat, message)
	}

	return message
}

// withTitle 알림 제목을 메시지 상단에 추가합니다.
//
// 알림에 제목이 비어있는 경우, 설정 파일의 작업 제목("작업명 > 커맨드명")으로 대체합니다.
func (n *telegramNotifier) withTitle(notification contract.Notification, message string) string {
	title := notification.Title

	if title == "" && notification.TaskID != "" && notification.CommandID != "" {
		if commands, ok := n.titlesByTask[string(notification.TaskID)]; ok {
			if ct, exists := commands[string(notification.CommandID)]; exists {
				title = ct.title
			}
		}
	}

	if title == "" {
		return message
	}

	// 긴 제목으로 인해 HTML 태그가 닫히지 않은 채 메시지가 분할되는 문제를 방지하기 위해 Truncate 처리합니다.
	// 중요: Truncate를 먼저 수행한 후 이스케이프해야 안전합니다.
	// 이스케이프된 문자열을 자르면 '&lt;' 따위가 잘려서 '&l' 처럼 되어 HTML 파싱 에러를 유발할 수 있습니다.
	safeTitle := html.EscapeString(strutil.TruncateByRunes(title, maxTitleRunes))

	return fmt.Sprintf(titleFormat, safeTitle, message)
}

// withElapsedTime 작업 실행 경과 시간을 메시지에 추가합니다.
func withElapsedTime(notification contract.Notification, message string) string {
	if notification.Elapsed <= 0 {
		return message
	}

	return message + fmt.Sprintf(elapsedTimeFormat, formatElapsedTime(int64(notification.Elapsed.Seconds())))
}

// formatElapsedTime 초 단위 시간을 읽기 쉬운 문자열로 변환합니다. (예: "1시간 30분 10초 ")
// 모든 값이 0일 때는 "0초"를 표시하고, 시간/분이 있을 때는 0초를 생략합니다.
func formatElapsedTime(seconds int64) string {
	s := seconds % 60
	m := (seconds / 60) % 60
	h := seconds / 3600

	var sb strings.Builder
	if h > 0 {
		fmt.Fprintf(&sb, "%d시간 ", h)
	}
	if m > 0 {
		fmt.Fprintf(&sb, "%d분 ", m)
	}
	if s > 0 {
		fmt.Fprintf(&sb, "%d초 ", s)
	}

	if sb.Len() == 0 {
		sb.WriteString("0초 ")
	}

	return sb.String()
}
