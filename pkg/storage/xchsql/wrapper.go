package xchsql

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/qkit/internal/querystat"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// chConn 是包装器实际依赖的连接操作子集。
// driver.Conn 实现此接口；测试用假连接替换。
type chConn interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) driver.Row
	Exec(ctx context.Context, query string, args ...any) error
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
	Ping(ctx context.Context) error
	Stats() driver.Stats
	Close() error
}

// =============================================================================
// clickhouseWrapper 实现
// =============================================================================

// clickhouseWrapper 实现 ClickHouse 接口。
type clickhouseWrapper struct {
	conn      chConn
	full      driver.Conn // Client() 暴露的完整连接，测试时可为 nil
	annotator *xtag.Annotator
	options   *Options

	closed atomic.Bool

	slowQueryDetector *querystat.SlowQueryDetector[SlowQueryInfo]
	healthCounter     querystat.HealthCounter
	queryCounter      querystat.QueryCounter
	slowQueryCounter  querystat.SlowQueryCounter
}

func newWrapper(conn chConn, annotator *xtag.Annotator, options *Options) *clickhouseWrapper {
	w := &clickhouseWrapper{
		conn:      conn,
		annotator: annotator,
		options:   options,
	}
	if full, ok := conn.(driver.Conn); ok {
		w.full = full
	}
	w.slowQueryDetector = querystat.NewSlowQueryDetector(
		options.SlowQueryThreshold, &w.slowQueryCounter, options.SlowQueryHook)
	return w
}

func (w *clickhouseWrapper) Client() driver.Conn {
	return w.full
}

// Query 附加注释后执行查询。
func (w *clickhouseWrapper) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	if w.closed.Load() {
		return nil, ErrClosed
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}

	annotated := w.annotator.Annotate(ctx, query)
	w.queryCounter.IncQuery()

	start := time.Now()
	rows, err := w.conn.Query(ctx, annotated, args...)
	w.observe(ctx, annotated, args, time.Since(start))
	if err != nil {
		w.queryCounter.IncQueryError()
		return nil, err
	}
	return rows, nil
}

// QueryRow 附加注释后执行单行查询。
func (w *clickhouseWrapper) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	annotated := w.annotator.Annotate(ctx, query)
	w.queryCounter.IncQuery()

	start := time.Now()
	row := w.conn.QueryRow(ctx, annotated, args...)
	w.observe(ctx, annotated, args, time.Since(start))
	return row
}

// Exec 附加注释后执行语句。
func (w *clickhouseWrapper) Exec(ctx context.Context, query string, args ...any) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if query == "" {
		return ErrEmptyQuery
	}

	annotated := w.annotator.Annotate(ctx, query)
	w.queryCounter.IncQuery()

	start := time.Now()
	err := w.conn.Exec(ctx, annotated, args...)
	w.observe(ctx, annotated, args, time.Since(start))
	if err != nil {
		w.queryCounter.IncQueryError()
		return err
	}
	return nil
}

// Health 执行健康检查。
func (w *clickhouseWrapper) Health(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}

	w.healthCounter.IncPing()

	ctx, cancel := querystat.HealthContext(ctx, w.options.HealthTimeout)
	defer cancel()

	if err := w.conn.Ping(ctx); err != nil {
		w.healthCounter.IncPingError()
		return err
	}
	return nil
}

// Stats 返回统计信息。
func (w *clickhouseWrapper) Stats() Stats {
	s := Stats{
		PingCount:   w.healthCounter.PingCount(),
		PingErrors:  w.healthCounter.PingErrors(),
		QueryCount:  w.queryCounter.QueryCount(),
		QueryErrors: w.queryCounter.QueryErrors(),
		SlowQueries: w.slowQueryCounter.Count(),
	}
	if w.conn != nil {
		ds := w.conn.Stats()
		s.Pool = PoolStats{
			Open:  ds.Open,
			Idle:  ds.Idle,
			InUse: ds.Open - ds.Idle,
		}
	}
	return s
}

// Close 关闭连接。多次调用安全，第二次及后续返回 ErrClosed。
func (w *clickhouseWrapper) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return w.conn.Close()
}

// observe 将一次查询耗时交给慢查询检测器。
func (w *clickhouseWrapper) observe(ctx context.Context, query string, args []any, elapsed time.Duration) {
	w.slowQueryDetector.Observe(ctx, elapsed, func() SlowQueryInfo {
		return SlowQueryInfo{
			Query:    query,
			Args:     args,
			Duration: elapsed,
		}
	})
}
