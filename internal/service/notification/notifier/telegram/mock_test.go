package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeClient 테스트용 텔레그램 봇 API 클라이언트입니다.
// 전송된 메시지를 기록하며, sendErrs에 지정된 순서대로 에러를 반환합니다.
type fakeClient struct {
	mu sync.Mutex

	// sent 전송에 시도된 메시지 목록 (성공/실패 모두 기록)
	sent []tgbotapi.MessageConfig

	// sendErrs i번째 Send 호출에서 반환할 에러 (목록을 소진하면 성공)
	sendErrs []error
}

func (c *fakeClient) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "thirtymall_monitor_bot"}
}

func (c *fakeClient) Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, ok := chattable.(tgbotapi.MessageConfig)
	if ok {
		c.sent = append(c.sent, msg)
	}

	if len(c.sendErrs) > 0 {
		err := c.sendErrs[0]
		c.sendErrs = c.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}

	return tgbotapi.Message{}, nil
}

// sentMessages 전송 시도된 메시지 본문 목록을 반환합니다.
func (c *fakeClient) sentMessages() []tgbotapi.MessageConfig {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]tgbotapi.MessageConfig, len(c.sent))
	copy(out, c.sent)
	return out
}
