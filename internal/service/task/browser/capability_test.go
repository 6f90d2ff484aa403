package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCapability_PreferredPathUsed(t *testing.T) {
	dir := t.TempDir()
	fakeChrome := filepath.Join(dir, "chrome")
	require.NoError(t, os.WriteFile(fakeChrome, []byte("#!/bin/sh\n"), 0o755))

	capability := DetectCapability(fakeChrome)

	assert.True(t, capability.Available)
	assert.Equal(t, fakeChrome, capability.ChromePath)
}

func TestDetectCapability_DirectoryIsNotExecutable(t *testing.T) {
	// 디렉토리 경로는 실행 파일로 인정되지 않아야 합니다.
	capability := DetectCapability(t.TempDir())

	if capability.Available {
		assert.NotEqual(t, t.TempDir(), capability.ChromePath)
	}
}

func TestProbeExecutable(t *testing.T) {
	t.Run("성공: 존재하는 파일 경로", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "chromium")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o755))

		resolved, ok := probeExecutable(path)

		assert.True(t, ok)
		assert.Equal(t, path, resolved)
	})

	t.Run("실패: 존재하지 않는 경로", func(t *testing.T) {
		_, ok := probeExecutable(filepath.Join(t.TempDir(), "no-such-browser"))

		assert.False(t, ok)
	})
}

func TestNewSession_RequiresChromePath(t *testing.T) {
	_, err := NewSession(Config{})

	assert.Error(t, err)
}

func TestNewSession_DefaultsApplied(t *testing.T) {
	session, err := NewSession(Config{ChromePath: "/usr/bin/true", Headless: true})
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, defaultSettleWait, session.settleWait)
	assert.Equal(t, defaultContentWait, session.contentWait)
}
