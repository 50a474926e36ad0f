package xchsql

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// =============================================================================
// 接口定义
// =============================================================================

// ClickHouse 定义带注释注入的 ClickHouse 包装器接口。
type ClickHouse interface {
	// Client 返回底层 ClickHouse 连接。
	// 经由 Client() 执行的查询不走注释路径。
	// 方法名与 xsqldb.DB.Client()、xmongoc.Collection.Client() 保持一致。
	Client() driver.Conn

	// Query 执行查询并返回多行结果。查询在下发前附加元数据注释。
	// 关闭后调用返回 ErrClosed。
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)

	// QueryRow 执行查询并返回单行结果。查询在下发前附加元数据注释。
	//
	// 设计决策: driver.Row 的错误通过 Row.Err()/Scan() 暴露，
	// 无法在签名中返回 ErrClosed；关闭后直接透传底层连接，
	// 由驱动层报错（与 Client() 的语义一致）。
	QueryRow(ctx context.Context, query string, args ...any) driver.Row

	// Exec 执行语句（DDL/INSERT 等）。语句在下发前附加元数据注释。
	// 关闭后调用返回 ErrClosed。
	Exec(ctx context.Context, query string, args ...any) error

	// BatchInsert 批量插入。rows 中的每个元素通过 AppendStruct 映射列。
	// 关闭后调用返回 ErrClosed。部分失败时同时返回结果与合并错误。
	BatchInsert(ctx context.Context, table string, rows []any, opts BatchOptions) (*BatchResult, error)

	// Health 执行健康检查。关闭后调用返回 ErrClosed。
	Health(ctx context.Context) error

	// Stats 返回统计信息。
	Stats() Stats

	// Close 关闭 ClickHouse 连接。
	// 多次调用是安全的，第二次及后续调用返回 ErrClosed。
	Close() error
}

// New 创建 ClickHouse 包装器。
// conn 必须是已建立的 clickhouse-go 连接，annotator 提供注释渲染。
func New(conn driver.Conn, annotator *xtag.Annotator, opts ...Option) (ClickHouse, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	if annotator == nil {
		return nil, ErrNilAnnotator
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return newWrapper(conn, annotator, options), nil
}
