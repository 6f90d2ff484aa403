package thirtymall

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract"
	"github.com/jjangmi46/thirtymall-monitor/internal/service/contract/mocks"
)

const searchResultHTML = `<html><body>
	<div class="product-item"><a href="/product/1">고메 버터 프레지덩 200g</a><span>12,900원</span></div>
	<div class="product-item"><a href="/product/2">발효 버터 이즈니 250g</a><span>8,500원</span></div>
	<div class="product-item"><a href="/product/3">무염 버터 앵커 454g</a><span>11,900원</span></div>
</body></html>`

func TestWatchNewProducts_FirstRun(t *testing.T) {
	t.Parallel()

	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).Return(contract.ErrTaskResultNotFound)

	var savedSnapshot *watchNewProductsSnapshot
	storage.On("Save", TaskID, WatchNewProductsCommand, mock.Anything).
		Run(func(args mock.Arguments) {
			savedSnapshot = args.Get(2).(*watchNewProductsSnapshot)
		}).
		Return(nil)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	var notified contract.Notification
	sender.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(contract.Notification)
		}).
		Return(nil)

	created, err := newTask(newTestTaskParams(newTestCommandData(), &stubFetcher{html: searchResultHTML}, storage))
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	// 최초 실행이므로 추출된 상품 전체가 신규로 알림됩니다.
	sender.AssertNumberOfCalls(t, "Notify", 1)
	assert.False(t, notified.ErrorOccurred)
	assert.Contains(t, notified.Message, "🧈 새로운 '버터' 상품 3개 발견!")
	assert.Contains(t, notified.Message, "고메 버터 프레지덩 200g")
	assert.Contains(t, notified.Message, "https://thirtymall.com/product/1")

	require.NotNil(t, savedSnapshot)
	assert.Len(t, savedSnapshot.Products, 3)
}

func TestWatchNewProducts_NoNewProducts(t *testing.T) {
	t.Parallel()

	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).
		Run(func(args mock.Arguments) {
			snapshot := args.Get(2).(*watchNewProductsSnapshot)
			snapshot.Products = []*product{
				newProduct("버터 검색", "고메 버터 프레지덩 200g", "12,900원", "https://thirtymall.com/product/1"),
				newProduct("버터 검색", "발효 버터 이즈니 250g", "8,500원", "https://thirtymall.com/product/2"),
				newProduct("버터 검색", "무염 버터 앵커 454g", "11,900원", "https://thirtymall.com/product/3"),
			}
		}).
		Return(nil)
	storage.On("Save", TaskID, WatchNewProductsCommand, mock.Anything).Return(nil)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	created, err := newTask(newTestTaskParams(newTestCommandData(), &stubFetcher{html: searchResultHTML}, storage))
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	// 신규 상품이 없으므로 알림은 전송되지 않지만, 스냅샷은 최신 상태로 갱신됩니다.
	sender.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	storage.AssertCalled(t, "Save", TaskID, WatchNewProductsCommand, mock.Anything)
}

func TestWatchNewProducts_NewProductDetected(t *testing.T) {
	t.Parallel()

	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).
		Run(func(args mock.Arguments) {
			snapshot := args.Get(2).(*watchNewProductsSnapshot)
			snapshot.Products = []*product{
				newProduct("버터 검색", "고메 버터 프레지덩 200g", "12,900원", "https://thirtymall.com/product/1"),
				newProduct("버터 검색", "발효 버터 이즈니 250g", "8,500원", "https://thirtymall.com/product/2"),
			}
		}).
		Return(nil)
	storage.On("Save", TaskID, WatchNewProductsCommand, mock.Anything).Return(nil)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	var notified contract.Notification
	sender.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(contract.Notification)
		}).
		Return(nil)

	created, err := newTask(newTestTaskParams(newTestCommandData(), &stubFetcher{html: searchResultHTML}, storage))
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	// 이전 스냅샷에 없던 상품 하나만 알림됩니다.
	sender.AssertNumberOfCalls(t, "Notify", 1)
	assert.Contains(t, notified.Message, "새로운 '버터' 상품 1개 발견!")
	assert.Contains(t, notified.Message, "무염 버터 앵커 454g")
	assert.NotContains(t, notified.Message, "고메 버터 프레지덩")
}

func TestWatchNewProducts_AllSearchesFailed(t *testing.T) {
	t.Parallel()

	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).Return(contract.ErrTaskResultNotFound)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	var notified contract.Notification
	sender.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(contract.Notification)
		}).
		Return(nil)

	created, err := newTask(newTestTaskParams(newTestCommandData(), &stubFetcher{err: errors.New("connection refused")}, storage))
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	// 모든 검색 실패는 작업 실패로 처리되어 에러 알림이 전송되고, 스냅샷은 저장되지 않습니다.
	sender.AssertNumberOfCalls(t, "Notify", 1)
	assert.True(t, notified.ErrorOccurred)
	assert.Contains(t, notified.Message, "버터 검색")
	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestWatchNewProducts_EmptyExtraction(t *testing.T) {
	t.Parallel()

	emptyHTML := `<html><body><div class="notice">검색 결과가 없습니다</div></body></html>`

	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).Return(contract.ErrTaskResultNotFound)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	created, err := newTask(newTestTaskParams(newTestCommandData(), &stubFetcher{html: emptyHTML}, storage))
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	// 상품이 전혀 추출되지 않으면 기존 기준선을 보존하기 위해 스냅샷도 저장하지 않습니다.
	sender.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestWatchNewProducts_EmptyExtractionByUser(t *testing.T) {
	t.Parallel()

	emptyHTML := `<html><body><div class="notice">검색 결과가 없습니다</div></body></html>`

	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).Return(contract.ErrTaskResultNotFound)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	var notified contract.Notification
	sender.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(contract.Notification)
		}).
		Return(nil)

	params := newTestTaskParams(newTestCommandData(), &stubFetcher{html: emptyHTML}, storage)
	params.Request.RunBy = contract.TaskRunByUser

	created, err := newTask(params)
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	// 사용자 수동 실행에서는 빈 결과라도 확인 메시지를 전송합니다.
	sender.AssertNumberOfCalls(t, "Notify", 1)
	assert.False(t, notified.ErrorOccurred)
	assert.True(t, strings.Contains(notified.Message, "상품을 찾을 수 없습니다"))
}

func TestWatchNewProducts_MultiSearchMessage(t *testing.T) {
	t.Parallel()

	commandData := map[string]any{
		"search_cooldown_ms": 1,
		"searches": []map[string]any{
			{"name": "버터 검색", "url": "https://thirtymall.com/search?q=버터", "keyword": "버터", "emoji": "🧈"},
			{"name": "치즈 검색", "url": "https://thirtymall.com/search?q=치즈", "keyword": "치즈", "emoji": "🧀"},
		},
	}

	// 두 검색 모두 동일한 응답을 받지만 키워드가 달라 버터 상품만 추출됩니다.
	storage := &mocks.MockTaskResultStorage{}
	storage.On("Load", TaskID, WatchNewProductsCommand, mock.Anything).Return(contract.ErrTaskResultNotFound)
	storage.On("Save", TaskID, WatchNewProductsCommand, mock.Anything).Return(nil)

	sender := &mocks.MockNotificationSender{}
	sender.On("SupportsHTML", mock.Anything).Return(false)

	var notified contract.Notification
	sender.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(contract.Notification)
		}).
		Return(nil)

	created, err := newTask(newTestTaskParams(commandData, &stubFetcher{html: searchResultHTML}, storage))
	require.NoError(t, err)

	created.Run(context.Background(), sender)

	sender.AssertNumberOfCalls(t, "Notify", 1)
	assert.True(t, strings.HasPrefix(notified.Message, "🔔 새로운 상품 알림!"))
	assert.Contains(t, notified.Message, "🧈 버터 검색: 3개 신상품")
	assert.NotContains(t, notified.Message, "치즈 검색")
}
