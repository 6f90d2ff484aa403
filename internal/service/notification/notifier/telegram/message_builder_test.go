package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
)

func newBuilderTestNotifier(t *testing.T) *telegramNotifier {
	t.Helper()

	appConfig := &config.AppConfig{
		Tasks: []config.TaskConfig{
			{
				ID:    "THIRTYMALL",
				Title: "떠리몰 감시",
				Commands: []config.CommandConfig{
					func() config.CommandConfig {
						c := config.CommandConfig{ID: "WatchNewProducts", Title: "신상품 알림"}
						c.Notifier.Usable = true
						return c
					}(),
				},
			},
		},
	}

	return newNotifierWithClient("telegram", 100, &fakeClient{}, appConfig)
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	n := newBuilderTestNotifier(t)

	t.Run("성공: 제목이 없는 일반 메시지는 본문 그대로 반환", func(t *testing.T) {
		got := n.buildMessage(contract.NewNotification("안녕하세요"))

		assert.Equal(t, "안녕하세요", got)
	})

	t.Run("성공: 제목이 있으면 굵은 글씨 헤더 추가", func(t *testing.T) {
		got := n.buildMessage(contract.Notification{Title: "신상품", Message: "본문"})

		assert.Equal(t, "<b>【 신상품 】</b>\n\n본문", got)
	})

	t.Run("성공: 제목의 HTML 특수문자는 이스케이프됨", func(t *testing.T) {
		got := n.buildMessage(contract.Notification{Title: "<b>제목</b>", Message: "본문"})

		assert.Contains(t, got, "&lt;b&gt;제목&lt;/b&gt;")
		assert.NotContains(t, got, "<b>제목</b>")
	})

	t.Run("성공: 제목이 비어있으면 설정 파일의 작업 제목으로 대체", func(t *testing.T) {
		got := n.buildMessage(contract.Notification{
			TaskID:    "THIRTYMALL",
			CommandID: "WatchNewProducts",
			Message:   "본문",
		})

		assert.Contains(t, got, "떠리몰 감시 > 신상품 알림")
	})

	t.Run("성공: 등록되지 않은 작업은 제목 없이 반환", func(t *testing.T) {
		got := n.buildMessage(contract.Notification{
			TaskID:    "UNKNOWN",
			CommandID: "Unknown",
			Message:   "본문",
		})

		assert.Equal(t, "본문", got)
	})

	t.Run("성공: 오류 알림은 경고 문구 추가", func(t *testing.T) {
		got := n.buildMessage(contract.NewErrorNotification("작업 실패"))

		assert.Equal(t, "작업 실패\n\n*** 오류가 발생하였습니다. ***", got)
	})

	t.Run("성공: 경과 시간 표기", func(t *testing.T) {
		got := n.buildMessage(contract.Notification{
			Message: "완료",
			Elapsed: 90 * time.Second,
		})

		assert.Equal(t, "완료 (1분 30초 지남)", got)
	})

	t.Run("성공: 긴 제목은 잘라서 처리", func(t *testing.T) {
		longTitle := strings.Repeat("가", maxTitleRunes+50)

		got := n.buildMessage(contract.Notification{Title: longTitle, Message: "본문"})

		assert.NotContains(t, got, longTitle)
	})
}

func TestFormatElapsedTime(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"0초", 0, "0초 "},
		{"초만 있음", 10, "10초 "},
		{"분과 초", 90, "1분 30초 "},
		{"시간, 분, 초", 3670, "1시간 1분 10초 "},
		{"0초는 생략", 3600, "1시간 "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, formatElapsedTime(tc.seconds))
		})
	}
}
