package notifier

import (
	"context"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
)

// noopNotifier 자격 증명이 설정되지 않은 알림 채널을 대신하는 발송 생략용 Notifier입니다.
//
// 알림 채널의 자격 증명(예: 텔레그램 bot_token, chat_id)이 비어있어도 감시 작업 자체는
// 정상적으로 수행되어야 하므로, 실제 발송 대신 메시지를 로그로만 남기고 폐기합니다.
type noopNotifier struct {
	*Base
}

// NewNoop 발송 생략용 Notifier를 생성합니다.
func NewNoop(id contract.NotifierID) Notifier {
	return &noopNotifier{
		Base: NewBase(id, false, 1, 0),
	}
}

// Run 큐에 들어온 알림을 로그로만 남기고 폐기하는 루프를 실행합니다.
func (n *noopNotifier) Run(ctx context.Context) {
	defer n.Close()

	for {
		select {
		case req := <-n.NotificationC():
			n.logDiscarded(req.Notification)

		case <-n.Done():
			return

		case <-ctx.Done():
			return
		}
	}
}

// Send 알림 요청을 접수한 뒤 즉시 폐기합니다.
//
// 큐를 거치지 않고 바로 로그를 남기고 성공을 반환합니다. 발송이 생략된 상태에서
// 호출자(Task)에게 에러를 돌려주면 불필요한 오류 알림 루프가 발생하기 때문입니다.
func (n *noopNotifier) Send(_ context.Context, notification contract.Notification) error {
	if err := notification.Validate(); err != nil {
		return err
	}

	n.logDiscarded(notification)

	return nil
}

func (n *noopNotifier) logDiscarded(notification contract.Notification) {
	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": n.ID(),
		"task_id":     notification.TaskID,
		"message_len": len(notification.Message),
	}).Info("알림 발송 생략: 알림 채널에 자격 증명이 설정되지 않았습니다")
}
