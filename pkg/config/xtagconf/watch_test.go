package xtagconf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Watch 单元测试
// =============================================================================

func TestWatch_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tags.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("tags:\n  - application: v1\n"), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	var mu sync.Mutex
	var reloadCount int
	var lastErr error

	w, err := Watch(cfg, func(c Config, err error) {
		mu.Lock()
		defer mu.Unlock()
		reloadCount++
		lastErr = err
	})
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	// 等待监视器启动
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(configPath, []byte("tags:\n  - application: v2\n"), 0600))

	// 等待重载（防抖 100ms + 一些延迟）
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.GreaterOrEqual(t, reloadCount, 1, "callback should be called at least once")
	assert.NoError(t, lastErr, "reload should not error")
	mu.Unlock()

	// 重载后 Options 反映新内容
	assert.Len(t, cfg.Options(), 1)
}

func TestWatch_ReloadError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tags.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("formatter: legacy\n"), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	var mu sync.Mutex
	var lastErr error

	w, err := Watch(cfg, func(c Config, err error) {
		mu.Lock()
		defer mu.Unlock()
		lastErr = err
	})
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	time.Sleep(50 * time.Millisecond)

	// 写入非法 formatter，重载失败但旧配置保持生效
	require.NoError(t, os.WriteFile(configPath, []byte("formatter: verbose\n"), 0600))
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.Error(t, lastErr)
	mu.Unlock()
	assert.Equal(t, "legacy", cfg.Client().String("formatter"))
}

func TestWatch_FromBytes_Error(t *testing.T) {
	cfg, err := LoadBytes([]byte("prepend: true\n"), FormatYAML)
	require.NoError(t, err)

	w, err := Watch(cfg, nil)
	require.ErrorIs(t, err, ErrNotWatchable)
	assert.Nil(t, w)
}

func TestWatch_WithDebounce(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tags.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("prepend: false\n"), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	var mu sync.Mutex
	var reloadCount int

	w, err := Watch(cfg, func(c Config, err error) {
		mu.Lock()
		defer mu.Unlock()
		reloadCount++
	}, WithDebounce(150*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	time.Sleep(50 * time.Millisecond)

	// 防抖窗口内的多次写入只触发一次重载
	for range 3 {
		require.NoError(t, os.WriteFile(configPath, []byte("prepend: true\n"), 0600))
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, reloadCount)
	mu.Unlock()
}

func TestWatcher_StopIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tags.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("cache: true\n"), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	w, err := Watch(cfg, nil)
	require.NoError(t, err)

	w.StartAsync()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
