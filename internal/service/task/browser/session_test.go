package browser

import (
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	t.Run("실패: Chrome 경로 미지정", func(t *testing.T) {
		t.Parallel()

		session, err := NewSession(Config{})

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
		assert.Nil(t, session)
	})

	t.Run("성공: 대기 시간 미지정 시 기본값 적용", func(t *testing.T) {
		t.Parallel()

		session, err := NewSession(Config{ChromePath: "/usr/bin/chromium"})
		require.NoError(t, err)
		defer session.Close()

		assert.Equal(t, defaultSettleWait, session.settleWait)
		assert.Equal(t, defaultContentWait, session.contentWait)
	})

	t.Run("성공: 브라우저 수준 컨텍스트는 세션당 하나", func(t *testing.T) {
		t.Parallel()

		session, err := NewSession(Config{
			ChromePath:  "/usr/bin/chromium",
			Headless:    true,
			SettleWait:  time.Second,
			ContentWait: 2 * time.Second,
		})
		require.NoError(t, err)
		defer session.Close()

		// 탭 컨텍스트가 파생될 브라우저 컨텍스트가 세션 생성 시점에 준비되어야 합니다.
		require.NotNil(t, session.browserCtx)
		require.NotNil(t, chromedp.FromContext(session.browserCtx))

		// 탭 컨텍스트는 브라우저 컨텍스트를 부모로 공유합니다.
		tabCtx, tabCancel := chromedp.NewContext(session.browserCtx)
		defer tabCancel()
		assert.Same(t, chromedp.FromContext(session.browserCtx).Allocator, chromedp.FromContext(tabCtx).Allocator)
	})
}
