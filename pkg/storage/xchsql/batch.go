package xchsql

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// 批量插入大小限制。
const (
	// DefaultBatchSize 默认批量插入每批大小。
	DefaultBatchSize = 10000

	// MaxBatchSize 批量插入每批大小上限。
	MaxBatchSize = 100000
)

// BatchOptions 批量操作选项。
type BatchOptions struct {
	// BatchSize 是每批大小。
	// 如果为 0 或负值，使用默认值 DefaultBatchSize（10000）。
	// 不得超过 MaxBatchSize（100000），否则返回 ErrBatchSizeTooLarge。
	BatchSize int
}

// BatchResult 批量操作结果。
//
// 重要：即使返回的 error 不为 nil，result 仍可能包含有效数据。
// 调用方应同时检查 error 和 result.InsertedCount 以获取完整信息。
//
// 原子性说明：
// ClickHouse 的每个批次（Batch）是原子的：要么全部成功，要么全部失败。
// InsertedCount 只反映成功发送的批次中的记录数。
type BatchResult struct {
	// InsertedCount 是成功插入的记录数。
	// 如果 AppendStruct 失败，该记录不计入；如果 Send 失败，整批次不计入。
	// 即使 err != nil，InsertedCount 也可能 > 0，表示部分成功。
	InsertedCount int64

	// Errors 是发生的错误列表。
	// 可能包含 AppendStruct 错误（单条记录）和 Send 错误（整批次）。
	Errors []error
}

// tableNamePattern 用于校验表名的合法性。
// 允许普通标识符（可带库名前缀）与反引号包裹的标识符。
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$|^` + "`[^`\\x00-\\x1f]+`" + `(\.` + "`[^`\\x00-\\x1f]+`" + `)?$`)

func validateTableName(table string) error {
	if table == "" {
		return ErrEmptyTable
	}
	if !tableNamePattern.MatchString(table) {
		return ErrInvalidTableName
	}
	return nil
}

// BatchInsert 批量插入。
// INSERT 语句同样经过注释附加再交给驱动准备批次。
func (w *clickhouseWrapper) BatchInsert(ctx context.Context, table string, rows []any, opts BatchOptions) (*BatchResult, error) {
	if w.closed.Load() {
		return nil, ErrClosed
	}

	if err := validateTableName(table); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRows
	}

	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		return nil, ErrBatchSizeTooLarge
	}

	// 设计决策: fmt.Sprintf 拼接表名是安全的，因为 table 已通过
	// validateTableName 的严格正则校验，仅允许合法标识符字符。
	insert := w.annotator.Annotate(ctx, fmt.Sprintf("INSERT INTO %s", table))
	w.queryCounter.IncQuery()

	start := time.Now()
	insertedCount, errs := w.insertBatches(ctx, insert, rows, batchSize)
	w.observe(ctx, insert, nil, time.Since(start))

	var resultErr error
	if len(errs) > 0 {
		w.queryCounter.IncQueryError()
		resultErr = errors.Join(errs...)
	}

	return &BatchResult{
		InsertedCount: insertedCount,
		Errors:        errs,
	}, resultErr
}

func (w *clickhouseWrapper) insertBatches(ctx context.Context, insert string, rows []any, batchSize int) (int64, []error) {
	var insertedCount int64
	var errs []error

	for i := 0; i < len(rows); i += batchSize {
		// 每批次前检查 context，避免在 context 取消后继续无效操作
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("context canceled before batch %d: %w", i/batchSize, err))
			break
		}

		end := min(i+batchSize, len(rows))

		count, batchErrs := w.insertBatch(ctx, insert, rows[i:end])
		insertedCount += count
		if len(batchErrs) > 0 {
			errs = append(errs, batchErrs...)
		}
	}

	return insertedCount, errs
}

func (w *clickhouseWrapper) insertBatch(ctx context.Context, insert string, batch []any) (appendedCount int64, errs []error) {
	batchObj, err := w.conn.PrepareBatch(ctx, insert)
	if err != nil {
		return 0, []error{fmt.Errorf("prepare batch failed: %w", err)}
	}

	appendedCount, errs = w.appendRowsToBatch(ctx, batchObj, batch)

	// 如果没有成功追加任何行，中止批次
	if appendedCount == 0 {
		w.abortBatch(batchObj, &errs)
		return 0, errs
	}

	// 设计决策: context 取消后中止批次而非发送部分数据。
	// 在重试场景下，发送部分数据可能导致重复写入和语义不一致。
	if ctx.Err() != nil {
		errs = append(errs, fmt.Errorf("context canceled before send: %w", ctx.Err()))
		w.abortBatch(batchObj, &errs)
		return 0, errs
	}

	if err := batchObj.Send(); err != nil {
		errs = append(errs, fmt.Errorf("send batch failed: %w", err))
		return 0, errs
	}

	return appendedCount, errs
}

// appendRowsToBatch 将行追加到批次中。
// 每 100 行检查一次 context，平衡性能和响应性。
func (w *clickhouseWrapper) appendRowsToBatch(ctx context.Context, batchObj driver.Batch, batch []any) (appendedCount int64, errs []error) {
	const checkInterval = 100
	for i, row := range batch {
		if i > 0 && i%checkInterval == 0 && ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("context canceled during append at row %d: %w", i, ctx.Err()))
			return appendedCount, errs
		}
		if err := batchObj.AppendStruct(row); err != nil {
			errs = append(errs, fmt.Errorf("append struct failed: %w", err))
			continue
		}
		appendedCount++
	}
	return appendedCount, errs
}

func (w *clickhouseWrapper) abortBatch(batchObj driver.Batch, errs *[]error) {
	if err := batchObj.Abort(); err != nil {
		*errs = append(*errs, fmt.Errorf("abort batch failed: %w", err))
	}
}
