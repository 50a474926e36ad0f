package xchsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/qkit/pkg/context/xqctx"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// fakeConn 记录收到的查询语句的假连接。
type fakeConn struct {
	queries    []string
	batches    []*fakeBatch
	pingErr    error
	execErr    error
	prepareErr error
	appendErr  error
	sendErr    error
	delay      time.Duration
	closed     bool
}

// fakeBatch 只实现被测路径用到的方法，其余方法走未实现的内嵌接口。
type fakeBatch struct {
	driver.Batch
	rows      int
	appendErr error
	sendErr   error
	sent      bool
	aborted   bool
}

func (b *fakeBatch) AppendStruct(any) error {
	if b.appendErr != nil {
		return b.appendErr
	}
	b.rows++
	return nil
}

func (b *fakeBatch) Send() error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = true
	return nil
}

func (b *fakeBatch) Abort() error {
	b.aborted = true
	return nil
}

func (f *fakeConn) Query(_ context.Context, query string, _ ...any) (driver.Rows, error) {
	f.queries = append(f.queries, query)
	time.Sleep(f.delay)
	return nil, nil
}

func (f *fakeConn) QueryRow(_ context.Context, query string, _ ...any) driver.Row {
	f.queries = append(f.queries, query)
	return nil
}

func (f *fakeConn) Exec(_ context.Context, query string, _ ...any) error {
	f.queries = append(f.queries, query)
	time.Sleep(f.delay)
	return f.execErr
}

func (f *fakeConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	f.queries = append(f.queries, query)
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	b := &fakeBatch{appendErr: f.appendErr, sendErr: f.sendErr}
	f.batches = append(f.batches, b)
	return b, nil
}

func (f *fakeConn) Ping(context.Context) error { return f.pingErr }
func (f *fakeConn) Stats() driver.Stats        { return driver.Stats{Open: 2, Idle: 1} }
func (f *fakeConn) Close() error               { f.closed = true; return nil }

func newTestAnnotator(t *testing.T) *xtag.Annotator {
	t.Helper()
	a, err := xtag.New(
		xtag.WithTags(xtag.Key(xqctx.KeyController)),
		xtag.WithResolver(xqctx.KeyApplication, xtag.Literal("MyApp")),
		xtag.WithTags(xtag.Key(xqctx.KeyApplication)),
	)
	require.NoError(t, err)
	return a
}

func annotatedContext(t *testing.T) context.Context {
	t.Helper()
	store := xqctx.NewStoreFrom(map[string]any{xqctx.KeyController: "users"})
	ctx, err := xqctx.WithStore(context.Background(), store)
	require.NoError(t, err)
	return ctx
}

func TestNew_Validation(t *testing.T) {
	a, err := xtag.New()
	require.NoError(t, err)

	_, err = New(nil, a)
	assert.ErrorIs(t, err, ErrNilConn)
}

func TestWrapper_QueryAnnotates(t *testing.T) {
	fake := &fakeConn{}
	w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

	_, err := w.Query(annotatedContext(t), "SELECT 1")
	require.NoError(t, err)

	require.Len(t, fake.queries, 1)
	assert.Equal(t, "SELECT 1 /*controller='users',application='MyApp'*/", fake.queries[0])
	assert.Equal(t, int64(1), w.Stats().QueryCount)
}

func TestWrapper_ExecAnnotates(t *testing.T) {
	fake := &fakeConn{}
	w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

	require.NoError(t, w.Exec(annotatedContext(t), "INSERT INTO t VALUES (1)"))
	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], "/*controller='users',application='MyApp'*/")
}

func TestWrapper_QueryRowAnnotates(t *testing.T) {
	fake := &fakeConn{}
	w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

	_ = w.QueryRow(annotatedContext(t), "SELECT 1")
	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], "/*")
}

func TestWrapper_EmptyQuery(t *testing.T) {
	w := newWrapper(&fakeConn{}, newTestAnnotator(t), defaultOptions())

	_, err := w.Query(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.ErrorIs(t, w.Exec(context.Background(), ""), ErrEmptyQuery)
}

func TestWrapper_ErrorCounted(t *testing.T) {
	fake := &fakeConn{execErr: errors.New("boom")}
	w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

	err := w.Exec(context.Background(), "INSERT INTO t VALUES (1)")
	require.Error(t, err)
	assert.Equal(t, int64(1), w.Stats().QueryErrors)
}

func TestWrapper_Health(t *testing.T) {
	fake := &fakeConn{}
	w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

	require.NoError(t, w.Health(context.Background()))
	assert.Equal(t, int64(1), w.Stats().PingCount)

	fake.pingErr = errors.New("down")
	require.Error(t, w.Health(context.Background()))
	assert.Equal(t, int64(1), w.Stats().PingErrors)
}

func TestWrapper_Close(t *testing.T) {
	fake := &fakeConn{}
	w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

	require.NoError(t, w.Close())
	assert.True(t, fake.closed)

	// 第二次关闭
	assert.ErrorIs(t, w.Close(), ErrClosed)

	// 关闭后的操作
	_, err := w.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, w.Exec(context.Background(), "SELECT 1"), ErrClosed)
	assert.ErrorIs(t, w.Health(context.Background()), ErrClosed)
}

func TestWrapper_SlowQueryHook(t *testing.T) {
	var infos []SlowQueryInfo
	fake := &fakeConn{delay: 5 * time.Millisecond}
	opts := defaultOptions()
	WithSlowQueryThreshold(time.Millisecond)(opts)
	WithSlowQueryHook(func(_ context.Context, info SlowQueryInfo) {
		infos = append(infos, info)
	})(opts)
	w := newWrapper(fake, newTestAnnotator(t), opts)

	_, err := w.Query(context.Background(), "SELECT sleep(1)")
	require.NoError(t, err)

	require.Len(t, infos, 1)
	// 钩子拿到的是注释附加后的最终语句
	assert.Contains(t, infos[0].Query, "SELECT sleep(1)")
	assert.GreaterOrEqual(t, infos[0].Duration, time.Millisecond)
	assert.Equal(t, int64(1), w.Stats().SlowQueries)
}

func TestWrapper_BatchInsert(t *testing.T) {
	type row struct {
		ID int64 `ch:"id"`
	}

	t.Run("成功插入", func(t *testing.T) {
		fake := &fakeConn{}
		w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

		rows := []any{&row{ID: 1}, &row{ID: 2}, &row{ID: 3}}
		result, err := w.BatchInsert(annotatedContext(t), "events", rows, BatchOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.InsertedCount)
		assert.Empty(t, result.Errors)

		// INSERT 语句同样经过注释附加
		require.Len(t, fake.queries, 1)
		assert.Equal(t, "INSERT INTO events /*controller='users',application='MyApp'*/", fake.queries[0])
		require.Len(t, fake.batches, 1)
		assert.True(t, fake.batches[0].sent)
	})

	t.Run("按批切分", func(t *testing.T) {
		fake := &fakeConn{}
		w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

		rows := make([]any, 5)
		for i := range rows {
			rows[i] = &row{ID: int64(i)}
		}
		result, err := w.BatchInsert(context.Background(), "events", rows, BatchOptions{BatchSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.InsertedCount)
		assert.Len(t, fake.batches, 3)
	})

	t.Run("参数校验", func(t *testing.T) {
		w := newWrapper(&fakeConn{}, newTestAnnotator(t), defaultOptions())

		_, err := w.BatchInsert(context.Background(), "", []any{&row{}}, BatchOptions{})
		assert.ErrorIs(t, err, ErrEmptyTable)

		_, err = w.BatchInsert(context.Background(), "bad;table", []any{&row{}}, BatchOptions{})
		assert.ErrorIs(t, err, ErrInvalidTableName)

		_, err = w.BatchInsert(context.Background(), "events", nil, BatchOptions{})
		assert.ErrorIs(t, err, ErrEmptyRows)

		_, err = w.BatchInsert(context.Background(), "events", []any{&row{}}, BatchOptions{BatchSize: MaxBatchSize + 1})
		assert.ErrorIs(t, err, ErrBatchSizeTooLarge)
	})

	t.Run("发送失败", func(t *testing.T) {
		fake := &fakeConn{sendErr: errors.New("network")}
		w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

		result, err := w.BatchInsert(context.Background(), "events", []any{&row{ID: 1}}, BatchOptions{})
		require.Error(t, err)
		assert.Equal(t, int64(0), result.InsertedCount)
		assert.Equal(t, int64(1), w.Stats().QueryErrors)
	})

	t.Run("追加失败时中止批次", func(t *testing.T) {
		fake := &fakeConn{appendErr: errors.New("bad struct")}
		w := newWrapper(fake, newTestAnnotator(t), defaultOptions())

		result, err := w.BatchInsert(context.Background(), "events", []any{&row{ID: 1}}, BatchOptions{})
		require.Error(t, err)
		assert.Equal(t, int64(0), result.InsertedCount)
		require.Len(t, fake.batches, 1)
		assert.True(t, fake.batches[0].aborted)
	})

	t.Run("关闭后报错", func(t *testing.T) {
		w := newWrapper(&fakeConn{}, newTestAnnotator(t), defaultOptions())
		require.NoError(t, w.Close())

		_, err := w.BatchInsert(context.Background(), "events", []any{&row{}}, BatchOptions{})
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestWrapper_PoolStats(t *testing.T) {
	w := newWrapper(&fakeConn{}, newTestAnnotator(t), defaultOptions())
	s := w.Stats()
	assert.Equal(t, 2, s.Pool.Open)
	assert.Equal(t, 1, s.Pool.Idle)
	assert.Equal(t, 1, s.Pool.InUse)
}
