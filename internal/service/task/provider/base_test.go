package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	contractmocks "github.com/jjangmi46/thirtymall-monitor/internal/service/contract/mocks"
)

const (
	testTaskID     = contract.TaskID("THIRTYMALL")
	testCommandID  = contract.TaskCommandID("WatchNewProducts")
	testInstanceID = contract.TaskInstanceID("inst-0001")
	testNotifierID = contract.NotifierID("telegram-default")
)

type testSnapshot struct {
	Value string `json:"value"`
}

func newTestBase(t *testing.T, storage contract.TaskResultStore) *Base {
	t.Helper()

	return NewBase(BaseParams{
		ID:          testTaskID,
		CommandID:   testCommandID,
		InstanceID:  testInstanceID,
		NotifierID:  testNotifierID,
		RunBy:       contract.TaskRunByScheduler,
		Storage:     storage,
		NewSnapshot: func() any { return &testSnapshot{} },
	})
}

func TestBase_Accessors(t *testing.T) {
	t.Parallel()

	task := newTestBase(t, &contractmocks.MockTaskResultStorage{})

	assert.Equal(t, testTaskID, task.ID())
	assert.Equal(t, testCommandID, task.CommandID())
	assert.Equal(t, testInstanceID, task.InstanceID())
	assert.Equal(t, testNotifierID, task.NotifierID())
	assert.Equal(t, contract.TaskRunByScheduler, task.RunBy())

	assert.False(t, task.IsCanceled())
	task.Cancel()
	assert.True(t, task.IsCanceled())
}

func TestBase_Elapsed(t *testing.T) {
	t.Parallel()

	task := newTestBase(t, &contractmocks.MockTaskResultStorage{})

	// 실행 전에는 0을 반환해야 합니다.
	assert.Equal(t, time.Duration(0), task.Elapsed())

	task.runTime = time.Now().Add(-2 * time.Second)
	assert.GreaterOrEqual(t, task.Elapsed(), 2*time.Second)
}

func TestBase_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		setup        func(store *contractmocks.MockTaskResultStorage) ExecuteFunc
		preRun       func(task *Base)
		wantCount    int
		wantError    []bool   // 알림별 ErrorOccurred 기대값
		wantContains []string // 마지막 알림 메시지에 포함되어야 할 문자열
		wantState    contract.RunState
	}{
		{
			name: "성공: 메시지와 스냅샷 반환 시 알림 발송 후 저장",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				store.On("Save", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					return "신상품 2개 발견", &testSnapshot{Value: "v2"}, nil
				}
			},
			wantCount:    1,
			wantError:    []bool{false},
			wantContains: []string{"신상품 2개 발견"},
			wantState:    contract.RunStateDone,
		},
		{
			name: "성공: 빈 메시지 반환 시 알림 없이 스냅샷만 저장",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				store.On("Save", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					return "", &testSnapshot{Value: "quiet"}, nil
				}
			},
			wantCount: 0,
			wantState: contract.RunStateDone,
		},
		{
			name: "성공: nil 스냅샷 반환 시 저장 생략",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					return "조회만 수행", nil, nil
				}
			},
			wantCount:    1,
			wantError:    []bool{false},
			wantContains: []string{"조회만 수행"},
			wantState:    contract.RunStateDone,
		},
		{
			name: "성공: 최초 실행 시 이전 결과 없음을 허용",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(contract.ErrTaskResultNotFound)
				store.On("Save", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					snapshot, ok := prev.(*testSnapshot)
					if !ok || snapshot.Value != "" {
						return "", nil, apperrors.New(apperrors.Internal, "빈 스냅샷이 전달되어야 합니다")
					}
					return "첫 번째 실행 완료", &testSnapshot{Value: "v1"}, nil
				}
			},
			wantCount:    1,
			wantError:    []bool{false},
			wantContains: []string{"첫 번째 실행 완료"},
			wantState:    contract.RunStateDone,
		},
		{
			name: "성공: 이전 결과 로딩 실패 시 빈 스냅샷으로 실행을 계속함",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				loadErr := apperrors.New(apperrors.ParsingFailed, "스냅샷 역직렬화 실패")
				store.On("Load", testTaskID, testCommandID, mock.Anything).
					Run(func(args mock.Arguments) {
						// 역직렬화 도중 일부 필드만 채워진 상황을 재현합니다.
						args.Get(2).(*testSnapshot).Value = "partial"
					}).
					Return(loadErr)
				store.On("Save", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					snapshot, ok := prev.(*testSnapshot)
					if !ok || snapshot.Value != "" {
						return "", nil, apperrors.New(apperrors.Internal, "손상된 스냅샷은 빈 상태로 대체되어야 합니다")
					}
					return "손상 복구 후 실행 완료", &testSnapshot{Value: "v1"}, nil
				}
			},
			wantCount:    1,
			wantError:    []bool{false},
			wantContains: []string{"손상 복구 후 실행 완료"},
			wantState:    contract.RunStateDone,
		},
		{
			name: "실패: execute 에러 반환 시 에러 알림 발송",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					return "", nil, apperrors.New(apperrors.ExecutionFailed, "상품 목록 수집 실패")
				}
			},
			wantCount:    1,
			wantError:    []bool{true},
			wantContains: []string{msgTaskExecutionFailed, "상품 목록 수집 실패"},
			wantState:    contract.RunStateAborted,
		},
		{
			name: "실패: 스냅샷 저장 실패 시 중복 알림 경고 발송",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				store.On("Save", testTaskID, testCommandID, mock.Anything).
					Return(apperrors.New(apperrors.System, "디스크 쓰기 실패"))
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					return "신상품 발견", &testSnapshot{Value: "v3"}, nil
				}
			},
			wantCount:    2,
			wantError:    []bool{false, true},
			wantContains: []string{"중복 알림이 발생할 수 있습니다", "디스크 쓰기 실패"},
			wantState:    contract.RunStateDone,
		},
		{
			name: "실패: execute 내부 Panic 발생 시 복구 후 에러 알림 발송",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					panic("unexpected nil dereference")
				}
			},
			wantCount:    1,
			wantError:    []bool{true},
			wantContains: []string{msgTaskExecutionFailed, "Panic"},
			wantState:    contract.RunStateAborted,
		},
		{
			name: "취소: 실행 직전에 취소된 작업은 execute를 호출하지 않음",
			setup: func(store *contractmocks.MockTaskResultStorage) ExecuteFunc {
				store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)
				return func(ctx context.Context, prev any, html bool) (string, any, error) {
					t.Error("취소된 작업의 execute가 호출되어서는 안 됩니다")
					return "", nil, nil
				}
			},
			preRun:    func(task *Base) { task.Cancel() },
			wantCount: 0,
			wantState: contract.RunStateAborted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &contractmocks.MockTaskResultStorage{}
			task := newTestBase(t, store)
			task.SetExecute(tc.setup(store))

			if tc.preRun != nil {
				tc.preRun(task)
			}

			sender := &fakeNotificationSender{}
			task.Run(context.Background(), sender)

			notifs := sender.Notifications()
			require.Len(t, notifs, tc.wantCount)

			for i, wantErr := range tc.wantError {
				assert.Equal(t, wantErr, notifs[i].ErrorOccurred, "알림 %d의 ErrorOccurred 불일치", i)
			}

			if len(notifs) > 0 {
				last := notifs[len(notifs)-1]
				assert.Equal(t, testTaskID, last.TaskID)
				assert.Equal(t, testCommandID, last.CommandID)
				assert.Equal(t, testInstanceID, last.InstanceID)
				assert.Equal(t, testNotifierID, last.NotifierID)

				for _, part := range tc.wantContains {
					assert.Contains(t, last.Message, part)
				}
			}

			assert.Equal(t, tc.wantState, task.RunState(), "실행 종료 상태 불일치")

			store.AssertExpectations(t)
		})
	}
}

func TestBase_Run_ExecuteNotInitialized(t *testing.T) {
	t.Parallel()

	task := newTestBase(t, &contractmocks.MockTaskResultStorage{})

	sender := &fakeNotificationSender{}
	task.Run(context.Background(), sender)

	notifs := sender.Notifications()
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].ErrorOccurred)
	assert.Contains(t, notifs[0].Message, msgExecuteFuncNotInitialized)
}

func TestBase_Run_StorageNotInitialized(t *testing.T) {
	t.Parallel()

	task := newTestBase(t, nil)
	task.SetExecute(func(ctx context.Context, prev any, html bool) (string, any, error) {
		return "", nil, nil
	})

	sender := &fakeNotificationSender{}
	task.Run(context.Background(), sender)

	notifs := sender.Notifications()
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].ErrorOccurred)
	assert.Contains(t, notifs[0].Message, msgStorageNotInitialized)
}

func TestBase_Run_SnapshotFactoryMissing(t *testing.T) {
	t.Parallel()

	task := NewBase(BaseParams{
		ID:         testTaskID,
		CommandID:  testCommandID,
		InstanceID: testInstanceID,
		NotifierID: testNotifierID,
		RunBy:      contract.TaskRunByScheduler,
		Storage:    &contractmocks.MockTaskResultStorage{},
	})
	task.SetExecute(func(ctx context.Context, prev any, html bool) (string, any, error) {
		return "", nil, nil
	})

	sender := &fakeNotificationSender{}
	task.Run(context.Background(), sender)

	notifs := sender.Notifications()
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].ErrorOccurred)
	assert.Contains(t, notifs[0].Message, msgSnapshotCreationFailed)
}

// TestBase_Cancel_DuringExecute 실행 중 Cancel() 호출 시 컨텍스트가 취소되고
// 결과 알림이 발송되지 않는지 검증합니다.
func TestBase_Cancel_DuringExecute(t *testing.T) {
	t.Parallel()

	store := &contractmocks.MockTaskResultStorage{}
	store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)

	task := newTestBase(t, store)

	executing := make(chan struct{})
	task.SetExecute(func(ctx context.Context, prev any, html bool) (string, any, error) {
		close(executing)
		<-ctx.Done()
		return "취소 후 결과", &testSnapshot{Value: "canceled"}, nil
	})

	sender := &fakeNotificationSender{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		task.Run(context.Background(), sender)
	}()

	<-executing
	task.Cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("취소 후에도 Run이 종료되지 않았습니다")
	}

	// 취소된 작업의 결과는 알림/저장 모두 무시되어야 합니다.
	assert.Empty(t, sender.Notifications())
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestBase_Run_DeadlineExpiryStillNotifies Watchdog 타임아웃으로 실행 컨텍스트가
// 만료된 뒤에도 실패 알림이 유실되지 않는지 검증합니다.
func TestBase_Run_DeadlineExpiryStillNotifies(t *testing.T) {
	t.Parallel()

	store := &contractmocks.MockTaskResultStorage{}
	store.On("Load", testTaskID, testCommandID, mock.Anything).Return(nil)

	task := newTestBase(t, store)
	task.SetExecute(func(ctx context.Context, prev any, html bool) (string, any, error) {
		<-ctx.Done()
		return "", nil, apperrors.Wrap(ctx.Err(), apperrors.ExecutionFailed, "실행 시간 초과")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	sender := &notifyContextRecorder{}
	task.Run(ctx, sender)

	notifs := sender.Notifications()
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].ErrorOccurred)
	assert.Contains(t, notifs[0].Message, "실행 시간 초과")

	// 알림 전송용 컨텍스트는 실행 컨텍스트의 만료와 무관하게 살아 있어야 합니다.
	ctxErrs := sender.NotifyContextErrs()
	require.Len(t, ctxErrs, 1)
	assert.NoError(t, ctxErrs[0])
}

func TestNewBaseFromParams(t *testing.T) {
	t.Parallel()

	store := &contractmocks.MockTaskResultStorage{}
	task := NewBaseFromParams(NewTaskParams{
		Request: &contract.TaskSubmitRequest{
			TaskID:     testTaskID,
			CommandID:  testCommandID,
			NotifierID: testNotifierID,
			RunBy:      contract.TaskRunByUser,
		},
		InstanceID:  testInstanceID,
		Storage:     store,
		NewSnapshot: func() any { return &testSnapshot{} },
	})

	assert.Equal(t, testTaskID, task.ID())
	assert.Equal(t, testCommandID, task.CommandID())
	assert.Equal(t, testInstanceID, task.InstanceID())
	assert.Equal(t, testNotifierID, task.NotifierID())
	assert.Equal(t, contract.TaskRunByUser, task.RunBy())
	assert.Nil(t, task.Fetcher())
}
