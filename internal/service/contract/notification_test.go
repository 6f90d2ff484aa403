package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNotification(t *testing.T) {
	t.Parallel()

	n := NewNotification("새 상품이 등록되었습니다")

	assert.Equal(t, "새 상품이 등록되었습니다", n.Message)
	assert.False(t, n.ErrorOccurred, "기본 알림은 오류 플래그가 설정되지 않아야 합니다")
	assert.Empty(t, n.NotifierID)
	assert.Empty(t, n.TaskID)
	assert.Empty(t, n.Title)
}

func TestNewErrorNotification(t *testing.T) {
	t.Parallel()

	n := NewErrorNotification("작업 실행 중 오류가 발생하였습니다")

	assert.Equal(t, "작업 실행 중 오류가 발생하였습니다", n.Message)
	assert.True(t, n.ErrorOccurred, "오류 알림은 오류 플래그가 설정되어야 합니다")
	assert.Empty(t, n.NotifierID)
}

func TestNewTaskNotification(t *testing.T) {
	t.Parallel()

	n := NewTaskNotification(
		NotifierID("텔레그램_기본"),
		TaskID("THIRTYMALL"),
		TaskCommandID("WatchNewProducts"),
		TaskInstanceID("INST0001"),
		"써리몰 신상품 알리미",
		"새 상품 2개가 발견되었습니다",
		500*time.Millisecond,
		false,
	)

	assert.Equal(t, NotifierID("텔레그램_기본"), n.NotifierID)
	assert.Equal(t, TaskID("THIRTYMALL"), n.TaskID)
	assert.Equal(t, TaskCommandID("WatchNewProducts"), n.CommandID)
	assert.Equal(t, TaskInstanceID("INST0001"), n.InstanceID)
	assert.Equal(t, "써리몰 신상품 알리미", n.Title)
	assert.Equal(t, "새 상품 2개가 발견되었습니다", n.Message)
	assert.Equal(t, 500*time.Millisecond, n.Elapsed)
	assert.False(t, n.ErrorOccurred)
}

func TestNotification_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{
			name:    "성공: 유효한 메시지",
			message: "Hello World",
			wantErr: nil,
		},
		{
			name:    "실패: 빈 메시지",
			message: "",
			wantErr: ErrMessageRequired,
		},
		{
			name:    "실패: 공백으로만 구성된 메시지",
			message: "      ",
			wantErr: ErrMessageRequired,
		},
		{
			name:    "실패: 탭과 개행으로만 구성된 메시지",
			message: "\t\n",
			wantErr: ErrMessageRequired,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewNotification(tt.message).Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
