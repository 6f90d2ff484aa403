package telegram

import (
	"context"
	"time"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// Run 텔레그램 알림 발송 워커의 메인 루프를 실행합니다.
//
// 큐(NotificationC)에 쌓인 알림 요청을 하나씩 꺼내어 텔레그램 API로 전송합니다.
// Rate Limit, 재시도, HTML 파싱 오류 Fallback 등의 처리는 전송 단계(sendMessage)에서 수행됩니다.
//
// 종료 처리 (Graceful Shutdown):
//
//   - ctx 취소 시 Close()를 호출하여 새로운 요청 수락을 중단합니다
//   - 이미 큐에 등록된 메시지는 최대 shutdownTimeout 동안 마저 전송(Drain)합니다
//   - Drain 중에는 ctx가 이미 취소된 상태이므로 독립된 타임아웃 컨텍스트를 사용합니다
func (n *telegramNotifier) Run(ctx context.Context) {
	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id":  n.ID(),
		"bot_username": n.client.GetSelf().UserName,
		"chat_id":      n.chatID,
	}).Debug("텔레그램 알림 발송 워커 시작됨")

	for {
		select {
		case req := <-n.NotificationC():
			n.handleRequest(req.Ctx, ctx, req.Notification)

		case <-n.Done():
			n.drain()
			return

		case <-ctx.Done():
			// 새로운 요청 수락을 중단하고 Drain 프로세스를 시작합니다.
			n.Close()
			n.drain()
			return
		}
	}
}

// drain 종료 시점에 큐에 남아있는 미전송 메시지를 최대 shutdownTimeout 동안 처리합니다.
func (n *telegramNotifier) drain() {
	// 진행 중인 Send() 호출이 큐에 메시지를 넣을 기회를 보장한 후 Drain을 시작합니다.
	// "큐 확인(Empty) → 종료 → Send(Push)" 순서로 발생하는 메시지 유실을 방지합니다.
	n.WaitForPendingSends()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	drained := 0
	for {
		select {
		case req := <-n.NotificationC():
			n.handleRequest(drainCtx, drainCtx, req.Notification)
			drained++

		case <-drainCtx.Done():
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"drained":     drained,
				"remaining":   len(n.NotificationC()),
				"timeout":     shutdownTimeout,
			}).Warn("텔레그램 알림 발송 워커 종료: Drain 타임아웃으로 일부 메시지가 유실될 수 있습니다")
			return

		default:
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"drained":     drained,
			}).Debug("텔레그램 알림 발송 워커 종료됨: 대기열의 모든 메시지 처리 완료")
			return
		}
	}
}

// handleRequest 알림 요청 하나를 최종 메시지로 가공하여 전송합니다.
//
// 요청자의 컨텍스트(reqCtx)가 이미 취소된 경우에도 알림 자체는 유실시키지 않기 위해
// 워커의 컨텍스트(runCtx)를 기준으로 전송을 수행합니다.
func (n *telegramNotifier) handleRequest(reqCtx, runCtx context.Context, notification contract.Notification) {
	sendCtx := reqCtx
	if sendCtx == nil || sendCtx.Err() != nil {
		sendCtx = runCtx
	}

	started := time.Now()

	n.sendMessage(sendCtx, n.buildMessage(notification))

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": n.ID(),
		"task_id":     notification.TaskID,
		"elapsed":     time.Since(started),
	}).Debug("텔레그램 알림 요청 처리 완료")
}
