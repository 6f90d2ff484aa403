package telegram

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// 링크 미리보기 억제 여부 (disable_web_page_preview)
const (
	allowPreview    = false
	suppressPreview = true
)

// sendMessage 텔레그램 메시지를 전송합니다.
//
// API 제한(4096자)을 초과하는 메시지는 줄바꿈(\n) 단위로 분할하여 전송합니다.
// 컨텍스트가 취소되거나 전송 중 오류가 발생하면 즉시 중단하고 반환합니다.
//
// 링크 미리보기는 메시지 말미에 덧붙는 상품 링크가 펼쳐질 수 있도록 마지막
// 청크에서만 허용하고, 그 외 청크에서는 억제합니다.
func (n *telegramNotifier) sendMessage(ctx context.Context, message string) {
	// 메시지 길이가 제한 이내라면 한 번에 전송
	if len(message) <= messageMaxLength {
		_ = n.sendSingleMessage(ctx, message, allowPreview)
		return
	}

	var sb strings.Builder
	sb.Grow(messageMaxLength)

	for line := range strings.SplitSeq(message, "\n") {
		// 컨텍스트 취소 확인 (긴 루프 중간에 탈출)
		if ctx.Err() != nil {
			return
		}

		neededSpace := len(line)
		if sb.Len() > 0 {
			neededSpace += 1 // 줄바꿈 문자 공간
		}

		// 현재 청크 + (줄바꿈) + 새 라인이 최대 길이를 넘으면
		if sb.Len()+neededSpace > messageMaxLength {
			// 현재까지 모은 청크가 있다면 전송
			if sb.Len() > 0 {
				if err := n.sendSingleMessage(ctx, sb.String(), suppressPreview); err != nil {
					return
				}
				sb.Reset()
			}

			// 현재 라인 자체가 최대 길이보다 길다면 강제로 자릅니다.
			// 중요: 한글 등 멀티바이트 문자가 깨지지 않도록 룬 경계에서 자릅니다.
			if len(line) > messageMaxLength {
				currentLine := line
				for len(currentLine) > messageMaxLength {
					if ctx.Err() != nil {
						return
					}

					chunk, remainder := safeSplit(currentLine, messageMaxLength)
					if err := n.sendSingleMessage(ctx, chunk, suppressPreview); err != nil {
						return
					}
					currentLine = remainder
				}
				// 자르고 남은 뒷부분을 새로운 청크의 시작으로 설정
				sb.WriteString(currentLine)
			} else {
				sb.WriteString(line)
			}
		} else {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(line)
		}
	}

	// 마지막 남은 청크 전송
	if sb.Len() > 0 {
		_ = n.sendSingleMessage(ctx, sb.String(), allowPreview)
	}
}

// sendSingleMessage 단일 메시지를 HTML 모드로 전송합니다.
// HTML 파싱 오류 발생 시 Plain Text 모드로 한 차례 Fallback합니다.
func (n *telegramNotifier) sendSingleMessage(ctx context.Context, message string, disablePreview bool) error {
	return n.sendSingleMessageInternal(ctx, message, true, disablePreview)
}

func (n *telegramNotifier) sendSingleMessageInternal(ctx context.Context, message string, useHTML, disablePreview bool) error {
	messageConfig := tgbotapi.NewMessage(n.chatID, message)
	messageConfig.DisableWebPagePreview = disablePreview
	if useHTML {
		messageConfig.ParseMode = tgbotapi.ModeHTML
	} else {
		messageConfig.ParseMode = "" // Plain Text
	}

	// 텔레그램 API Rate Limit 준수를 위해 발송 속도를 제어합니다.
	// 지정된 속도(Limit)를 초과하면 토큰이 확보될 때까지 대기합니다.
	// 컨텍스트가 취소되면 Wait는 즉시 에러를 반환합니다.
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"error":       err,
			}).Debug("텔레그램 메시지 전송 취소: Rate Limit 대기 중 컨텍스트 종료")
			return err
		}
	}

	const maxRetries = 3
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := n.client.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"chat_id":     n.chatID,
				"attempt":     attempt,
				"mode":        parseModeToString(messageConfig.ParseMode),
			}).Info("텔레그램 메시지 전송 성공")
			return nil
		}

		lastErr = err
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
			"chat_id":     n.chatID,
			"attempt":     attempt,
			"error":       err,
			"mode":        parseModeToString(messageConfig.ParseMode),
		}).Warn("텔레그램 메시지 전송 실패")

		errCode, retryAfter := extractTelegramErrorCode(err)

		// HTML 파싱 에러(400 Bad Request) 시 Plain Text로 Fallback
		if useHTML && errCode == 400 {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"error":       err,
			}).Warn("HTML 파싱 실패: Plain Text 모드로 재전송합니다")
			return n.sendSingleMessageInternal(ctx, message, false, disablePreview)
		}

		// 재시도 불가능한 에러(429를 제외한 4xx)는 즉시 종료합니다.
		if !shouldRetryError(errCode) {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"error":       err,
				"code":        errCode,
			}).Error("텔레그램 메시지 전송 실패: 재시도 불가능한 에러")
			return err
		}

		if attempt >= maxRetries {
			break
		}

		// 429 (Too Many Requests)는 서버가 지정한 Retry-After만큼 대기 후 재시도합니다.
		if errCode == 429 && retryAfter > 0 {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"retry_after": retryAfter,
			}).Warn("텔레그램 API 요청 한도 초과: Retry-After 만큼 대기 후 재시도합니다")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.retryWaitDuration(retryAfter)):
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": n.ID(),
		"chat_id":     n.chatID,
		"error":       lastErr,
		"max_retries": maxRetries,
	}).Error("텔레그램 메시지 전송 최종 실패: 재시도 한도 초과")

	return lastErr
}

// retryWaitDuration 재시도 대기 시간을 계산합니다.
// 서버가 Retry-After 값을 내려준 경우 그 값을 사용하고, 없으면 기본 대기 시간을 사용합니다.
func (n *telegramNotifier) retryWaitDuration(retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	return n.retryDelay
}

// extractTelegramErrorCode 텔레그램 API 에러에서 에러 코드와 Retry-After 값을 추출합니다.
// 라이브러리가 값/포인터 타입을 혼용하여 반환하므로 둘 다 검사합니다.
func extractTelegramErrorCode(err error) (code int, retryAfter int) {
	if apiErr, ok := err.(tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	if apiErrPtr, ok := err.(*tgbotapi.Error); ok {
		return apiErrPtr.Code, apiErrPtr.ResponseParameters.RetryAfter
	}
	return 0, 0
}

// shouldRetryError 주어진 에러가 재시도 가능한지 판단합니다.
// 429 (Too Many Requests)는 재시도 가능, 기타 4xx는 재시도 불가능합니다.
func shouldRetryError(errCode int) bool {
	if errCode >= 400 && errCode < 500 {
		return errCode == 429
	}
	return true
}

func parseModeToString(mode string) string {
	if mode == tgbotapi.ModeHTML {
		return "HTML"
	}
	return "PlainText"
}

// safeSplit UTF-8 문자열을 지정된 바이트 길이(limit) 내에서 안전하게 자릅니다.
// 문자가 깨지지 않도록 가장 마지막 유효한 룬 경계에서 자릅니다.
func safeSplit(s string, limit int) (chunk, remainder string) {
	if len(s) <= limit {
		return s, ""
	}

	// limit 위치가 문자의 중간이라면, 앞쪽으로 이동하여 온전한 글자까지만 포함합니다.
	splitIndex := limit
	for splitIndex > 0 && !utf8.RuneStart(s[splitIndex]) {
		splitIndex--
	}

	if splitIndex == 0 {
		return s[:limit], s[limit:]
	}

	return s[:splitIndex], s[splitIndex:]
}
