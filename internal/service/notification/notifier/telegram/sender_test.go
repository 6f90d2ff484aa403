package telegram

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjangmi46/thirtymall-monitor/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// newSenderTestNotifier Rate Limit 대기 없이 즉시 전송하는 테스트용 Notifier를 생성합니다.
func newSenderTestNotifier(t *testing.T, client *fakeClient) *telegramNotifier {
	t.Helper()

	n := newNotifierWithClient("telegram", 100, client, &config.AppConfig{})
	n.limiter = rate.NewLimiter(rate.Inf, 1)
	n.retryDelay = time.Millisecond

	return n
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	t.Run("성공: 제한 이내의 메시지는 한 번에 전송", func(t *testing.T) {
		client := &fakeClient{}
		n := newSenderTestNotifier(t, client)

		n.sendMessage(context.Background(), "짧은 메시지")

		sent := client.sentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "짧은 메시지", sent[0].Text)
		assert.Equal(t, tgbotapi.ModeHTML, sent[0].ParseMode)

		// 단일 메시지는 말미의 상품 링크가 펼쳐질 수 있도록 미리보기를 허용합니다.
		assert.False(t, sent[0].DisableWebPagePreview)
	})

	t.Run("성공: 긴 메시지는 줄바꿈 단위로 분할 전송", func(t *testing.T) {
		client := &fakeClient{}
		n := newSenderTestNotifier(t, client)

		line := strings.Repeat("a", 1500)
		message := strings.Join([]string{line, line, line, line}, "\n")
		require.Greater(t, len(message), messageMaxLength)

		n.sendMessage(context.Background(), message)

		sent := client.sentMessages()
		require.Greater(t, len(sent), 1)
		for _, m := range sent {
			assert.LessOrEqual(t, len(m.Text), messageMaxLength)
		}

		// 분할된 메시지를 합치면 줄바꿈을 제외한 원본 내용이 보존됩니다.
		var joined strings.Builder
		for _, m := range sent {
			joined.WriteString(strings.ReplaceAll(m.Text, "\n", ""))
		}
		assert.Equal(t, strings.ReplaceAll(message, "\n", ""), joined.String())

		// 링크 미리보기는 마지막 청크에서만 허용됩니다.
		for i, m := range sent {
			assert.Equal(t, i != len(sent)-1, m.DisableWebPagePreview, "청크 %d의 미리보기 억제 여부 불일치", i)
		}
	})

	t.Run("성공: 한 줄이 제한을 초과하면 룬 경계에서 강제 분할", func(t *testing.T) {
		client := &fakeClient{}
		n := newSenderTestNotifier(t, client)

		// 한글은 3바이트이므로 단순한 바이트 단위 분할 시 문자가 깨집니다.
		message := strings.Repeat("가", messageMaxLength)

		n.sendMessage(context.Background(), message)

		sent := client.sentMessages()
		require.Greater(t, len(sent), 1)
		for _, m := range sent {
			assert.True(t, utf8.ValidString(m.Text))
		}
	})

	t.Run("성공: 취소된 컨텍스트에서는 전송하지 않음", func(t *testing.T) {
		client := &fakeClient{}
		n := newSenderTestNotifier(t, client)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		n.sendMessage(ctx, "메시지")

		assert.Empty(t, client.sentMessages())
	})
}

func TestSendSingleMessage(t *testing.T) {
	t.Parallel()

	t.Run("성공: HTML 파싱 에러(400) 시 Plain Text로 Fallback", func(t *testing.T) {
		client := &fakeClient{
			sendErrs: []error{&tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities"}},
		}
		n := newSenderTestNotifier(t, client)

		err := n.sendSingleMessage(context.Background(), "<불완전한 태그", suppressPreview)

		require.NoError(t, err)

		sent := client.sentMessages()
		require.Len(t, sent, 2)
		assert.Equal(t, tgbotapi.ModeHTML, sent[0].ParseMode)
		assert.Equal(t, "", sent[1].ParseMode)
	})

	t.Run("성공: 일시적 에러(5xx)는 재시도 후 성공", func(t *testing.T) {
		client := &fakeClient{
			sendErrs: []error{&tgbotapi.Error{Code: 500, Message: "Internal Server Error"}, nil},
		}
		n := newSenderTestNotifier(t, client)

		err := n.sendSingleMessage(context.Background(), "메시지", suppressPreview)

		require.NoError(t, err)
		assert.Len(t, client.sentMessages(), 2)
	})

	t.Run("실패: 재시도 불가능한 에러(403)는 즉시 종료", func(t *testing.T) {
		client := &fakeClient{
			sendErrs: []error{&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked"}},
		}
		n := newSenderTestNotifier(t, client)

		// 403은 HTML Fallback 대상(400)이 아니므로 Plain Text 재전송 없이 실패해야 합니다.
		err := n.sendSingleMessageInternal(context.Background(), "메시지", false, suppressPreview)

		require.Error(t, err)
		assert.Len(t, client.sentMessages(), 1)
	})

	t.Run("실패: 재시도 한도 초과 시 마지막 에러 반환", func(t *testing.T) {
		client := &fakeClient{
			sendErrs: []error{
				&tgbotapi.Error{Code: 500},
				&tgbotapi.Error{Code: 500},
				&tgbotapi.Error{Code: 500},
			},
		}
		n := newSenderTestNotifier(t, client)

		err := n.sendSingleMessageInternal(context.Background(), "메시지", false, suppressPreview)

		require.Error(t, err)
		assert.Len(t, client.sentMessages(), 3)
	})
}

func TestShouldRetryError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		code     int
		expected bool
	}{
		{"429는 재시도 가능", 429, true},
		{"400은 재시도 불가", 400, false},
		{"403은 재시도 불가", 403, false},
		{"500은 재시도 가능", 500, true},
		{"코드 없음(네트워크 에러)은 재시도 가능", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldRetryError(tc.code))
		})
	}
}

func TestExtractTelegramErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("성공: 포인터 타입 에러에서 코드 추출", func(t *testing.T) {
		code, retryAfter := extractTelegramErrorCode(&tgbotapi.Error{
			Code:               429,
			ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7},
		})

		assert.Equal(t, 429, code)
		assert.Equal(t, 7, retryAfter)
	})

	t.Run("성공: 값 타입 에러에서 코드 추출", func(t *testing.T) {
		code, _ := extractTelegramErrorCode(tgbotapi.Error{Code: 400})

		assert.Equal(t, 400, code)
	})

	t.Run("성공: 알 수 없는 에러는 0 반환", func(t *testing.T) {
		code, retryAfter := extractTelegramErrorCode(assert.AnError)

		assert.Zero(t, code)
		assert.Zero(t, retryAfter)
	})
}

func TestSafeSplit(t *testing.T) {
	t.Parallel()

	t.Run("성공: 제한 이내 문자열은 그대로 반환", func(t *testing.T) {
		chunk, remainder := safeSplit("hello", 10)

		assert.Equal(t, "hello", chunk)
		assert.Empty(t, remainder)
	})

	t.Run("성공: ASCII 문자열은 제한 위치에서 분할", func(t *testing.T) {
		chunk, remainder := safeSplit("hello world", 5)

		assert.Equal(t, "hello", chunk)
		assert.Equal(t, " world", remainder)
	})

	t.Run("성공: 멀티바이트 문자는 룬 경계에서 분할", func(t *testing.T) {
		// "가"는 3바이트이므로 limit=4는 두 번째 문자의 중간을 가리킵니다.
		chunk, remainder := safeSplit("가나다", 4)

		assert.Equal(t, "가", chunk)
		assert.Equal(t, "나다", remainder)
		assert.True(t, utf8.ValidString(chunk))
	})
}
