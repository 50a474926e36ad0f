package xsqldb

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/omeyang/qkit/internal/querystat"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// =============================================================================
// 接口定义
// =============================================================================

// DB 定义带注释注入的 sqlx 包装器接口。
type DB interface {
	// Client 返回底层 sqlx.DB。经由 Client() 执行的查询不走注释路径。
	Client() *sqlx.DB

	// ExecContext 附加注释后执行语句。关闭后调用返回 ErrClosed。
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)

	// QueryxContext 附加注释后执行查询。关闭后调用返回 ErrClosed。
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)

	// GetContext 附加注释后查询单行并扫描到 dest。关闭后调用返回 ErrClosed。
	GetContext(ctx context.Context, dest any, query string, args ...any) error

	// SelectContext 附加注释后查询多行并扫描到 dest。关闭后调用返回 ErrClosed。
	SelectContext(ctx context.Context, dest any, query string, args ...any) error

	// Health 执行健康检查。关闭后调用返回 ErrClosed。
	Health(ctx context.Context) error

	// Stats 返回统计信息。
	Stats() Stats

	// Close 关闭数据库句柄。
	// 多次调用是安全的，第二次及后续调用返回 ErrClosed。
	Close() error
}

// Stats 包含包装器的统计信息。
type Stats struct {
	PingCount   int64
	PingErrors  int64
	QueryCount  int64
	QueryErrors int64
	SlowQueries int64

	// Pool 底层连接池状态（database/sql 原生统计）。
	Pool sql.DBStats
}

// SlowQueryInfo 包含慢查询的详细信息。
type SlowQueryInfo struct {
	// Query 是执行的查询语句（注释附加后的最终形态）。
	Query string

	// Args 是查询参数。
	Args []any

	// Duration 是查询耗时。
	Duration time.Duration
}

// SlowQueryHook 是慢查询同步回调函数类型。
// 在请求路径上同步执行，钩子内只应做内存级记录。
type SlowQueryHook = querystat.SlowQueryHook[SlowQueryInfo]

// =============================================================================
// 选项模式
// =============================================================================

// Options 包含包装器的配置选项。
type Options struct {
	// HealthTimeout 是健康检查的超时时间。为 0 时使用 context 的超时。
	HealthTimeout time.Duration

	// SlowQueryThreshold 是慢查询阈值。为 0 时禁用慢查询检测。
	SlowQueryThreshold time.Duration

	// SlowQueryHook 是慢查询同步回调函数。
	SlowQueryHook SlowQueryHook
}

// Option 是用于配置 Options 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		HealthTimeout: querystat.DefaultHealthTimeout,
	}
}

// WithHealthTimeout 设置健康检查超时时间。
func WithHealthTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HealthTimeout = d
	}
}

// WithSlowQueryThreshold 设置慢查询阈值。
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *Options) {
		o.SlowQueryThreshold = d
	}
}

// WithSlowQueryHook 设置慢查询同步回调。
func WithSlowQueryHook(hook SlowQueryHook) Option {
	return func(o *Options) {
		o.SlowQueryHook = hook
	}
}

// =============================================================================
// 工厂函数
// =============================================================================

// New 创建 sqlx 包装器。
// db 必须是已建立的 *sqlx.DB，annotator 提供注释渲染。
func New(db *sqlx.DB, annotator *xtag.Annotator, opts ...Option) (DB, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if annotator == nil {
		return nil, ErrNilAnnotator
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return newWrapper(db, annotator, options), nil
}

// sqlOperations 是包装器实际依赖的 sqlx 操作子集。
// *sqlx.DB 实现此接口；测试用假实现替换。
type sqlOperations interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	PingContext(ctx context.Context) error
	Close() error
}

// =============================================================================
// sqlWrapper 实现
// =============================================================================

type sqlWrapper struct {
	ops       sqlOperations
	db        *sqlx.DB // Client() 暴露的完整句柄，测试时可为 nil
	annotator *xtag.Annotator
	options   *Options

	closed atomic.Bool

	slowQueryDetector *querystat.SlowQueryDetector[SlowQueryInfo]
	healthCounter     querystat.HealthCounter
	queryCounter      querystat.QueryCounter
	slowQueryCounter  querystat.SlowQueryCounter
}

func newWrapper(ops sqlOperations, annotator *xtag.Annotator, options *Options) *sqlWrapper {
	w := &sqlWrapper{
		ops:       ops,
		annotator: annotator,
		options:   options,
	}
	if db, ok := ops.(*sqlx.DB); ok {
		w.db = db
	}
	w.slowQueryDetector = querystat.NewSlowQueryDetector(
		options.SlowQueryThreshold, &w.slowQueryCounter, options.SlowQueryHook)
	return w
}

func (w *sqlWrapper) Client() *sqlx.DB {
	return w.db
}

func (w *sqlWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	annotated, err := w.prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := w.ops.ExecContext(ctx, annotated, args...)
	w.finish(ctx, annotated, args, start, err)
	return res, err
}

func (w *sqlWrapper) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	annotated, err := w.prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := w.ops.QueryxContext(ctx, annotated, args...)
	w.finish(ctx, annotated, args, start, err)
	return rows, err
}

func (w *sqlWrapper) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	annotated, err := w.prepare(ctx, query)
	if err != nil {
		return err
	}

	start := time.Now()
	err = w.ops.GetContext(ctx, dest, annotated, args...)
	w.finish(ctx, annotated, args, start, err)
	return err
}

func (w *sqlWrapper) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	annotated, err := w.prepare(ctx, query)
	if err != nil {
		return err
	}

	start := time.Now()
	err = w.ops.SelectContext(ctx, dest, annotated, args...)
	w.finish(ctx, annotated, args, start, err)
	return err
}

func (w *sqlWrapper) Health(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}

	w.healthCounter.IncPing()

	ctx, cancel := querystat.HealthContext(ctx, w.options.HealthTimeout)
	defer cancel()

	if err := w.ops.PingContext(ctx); err != nil {
		w.healthCounter.IncPingError()
		return err
	}
	return nil
}

func (w *sqlWrapper) Stats() Stats {
	s := Stats{
		PingCount:   w.healthCounter.PingCount(),
		PingErrors:  w.healthCounter.PingErrors(),
		QueryCount:  w.queryCounter.QueryCount(),
		QueryErrors: w.queryCounter.QueryErrors(),
		SlowQueries: w.slowQueryCounter.Count(),
	}
	if w.db != nil {
		s.Pool = w.db.Stats()
	}
	return s
}

// Close 关闭数据库句柄。多次调用安全，第二次及后续返回 ErrClosed。
func (w *sqlWrapper) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return w.ops.Close()
}

// prepare 校验状态并生成注释附加后的查询。
func (w *sqlWrapper) prepare(ctx context.Context, query string) (string, error) {
	if w.closed.Load() {
		return "", ErrClosed
	}
	if query == "" {
		return "", ErrEmptyQuery
	}
	w.queryCounter.IncQuery()
	return w.annotator.Annotate(ctx, query), nil
}

// finish 记录一次查询的错误与耗时。
func (w *sqlWrapper) finish(ctx context.Context, query string, args []any, start time.Time, err error) {
	if err != nil {
		w.queryCounter.IncQueryError()
	}
	elapsed := time.Since(start)
	w.slowQueryDetector.Observe(ctx, elapsed, func() SlowQueryInfo {
		return SlowQueryInfo{
			Query:    query,
			Args:     args,
			Duration: elapsed,
		}
	})
}
