package xtagconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 在配置文件每次重载后被调用。
// err 为 nil 表示新配置已生效，此时用 cfg.Options() 重建注释器即可；
// err 非 nil 表示重载被拒绝（语法错误、非法 formatter），旧配置继续生效。
type WatchCallback func(cfg Config, err error)

// Watcher 跟踪磁盘上的标签配置文件，变更后自动触发 Reload。
type Watcher struct {
	cfg      *koanfConfig
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	timer    *time.Timer // 防抖定时器，Stop() 时需要取消
}

// WatchOption 监视行为选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

func defaultWatchOptions() *watchOptions {
	return &watchOptions{
		debounce: 100 * time.Millisecond,
	}
}

// WithDebounce 调整防抖窗口：窗口内的连续变更合并为一次重载。
// 默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// Watch 为 Load 产生的 Config 建立文件监视。
//
// 文件变更触发 Reload()，结果经 callback 通知调用方；重载失败时
// Config 保持变更前的内容。LoadBytes 产生的 Config 没有文件落点，
// 返回 ErrNotWatchable。监视在调用 Start() 或 StartAsync() 后才开始。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, fmt.Errorf("%w: unknown Config implementation", ErrNotWatchable)
	}
	if kc.isBytes || kc.path == "" {
		return nil, ErrNotWatchable
	}

	options := defaultWatchOptions()
	for _, opt := range opts {
		opt(options)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xtagconf: create fsnotify watcher: %w", err)
	}

	// 注册的是文件所在目录。编辑器常以"写临时文件再 rename"的方式
	// 落盘，按文件路径注册会在第一次替换后失去目标。
	dir := filepath.Dir(kc.path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(
			fmt.Errorf("xtagconf: watch dir %s: %w", dir, err),
			closeErr,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		cfg:      kc,
		watcher:  fsWatcher,
		callback: callback,
		debounce: options.debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// markRunning 置位 running，已在运行时返回 false。
func (w *Watcher) markRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return false
	}
	w.running = true
	return true
}

// Start 在当前 goroutine 中运行监视循环，直到 Stop 被调用。
func (w *Watcher) Start() {
	if w.markRunning() {
		w.run()
	}
}

// StartAsync 在后台 goroutine 中运行监视循环，立即返回。
func (w *Watcher) StartAsync() {
	if w.markRunning() {
		go w.run()
	}
}

// Stop 结束监视并释放 fsnotify 资源。可重复调用。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	// 先取消防抖定时器，Stop 之后不允许再有回调触发
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	w.cancel()
	w.running = false
	return w.watcher.Close()
}

func (w *Watcher) run() {
	filename := filepath.Base(w.cfg.path)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent 过滤目录事件，命中目标文件时安排一次防抖重载。
func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}

	// Write 直接改写；Create 覆盖新建；Rename 对应临时文件原子替换。
	// 其余事件（Chmod、Remove）不代表内容更新。
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		err := w.cfg.Reload()
		if w.callback != nil {
			w.callback(w.cfg, err)
		}
	})
}

func (w *Watcher) handleError(err error) {
	if w.callback != nil {
		w.callback(w.cfg, fmt.Errorf("xtagconf: fsnotify: %w", err))
	}
}
