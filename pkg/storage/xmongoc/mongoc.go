package xmongoc

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/qkit/internal/querystat"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// Collection 定义带查询注释注入的 MongoDB 集合接口。
type Collection interface {
	// Client 返回底层的 *mongo.Collection 实例，用于未封装的高级操作。
	Client() *mongo.Collection

	// Find 执行查询，并把注释正文作为 $comment 注入。
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)

	// Aggregate 执行聚合管道，并把注释正文作为 comment 注入。
	Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error)

	// CountDocuments 统计匹配文档数，并把注释正文作为 comment 注入。
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)

	// Stats 返回操作统计信息。
	Stats() Stats
}

// Stats 表示 MongoDB 包装器的运行统计。
type Stats struct {
	QueryCount  int64 // 累计操作次数
	QueryErrors int64 // 累计操作错误次数
}

// mongoCollection 是 Collection 接口的默认实现。
type mongoCollection struct {
	coll      collectionOperations
	full      *mongo.Collection // 持有原始集合, 仅当由 New 构造时非空
	annotator *xtag.Annotator
	queries   querystat.QueryCounter
}

// New 创建带查询注释注入的集合包装器。
//
// 每次操作前通过 annotator.CommentBody 计算注释正文（不含注释定界符），
// 以 Mongo 的 comment 选项随命令下发。注入的选项排在调用方选项之前，
// 因此调用方显式设置的 comment 保持优先。
func New(coll *mongo.Collection, annotator *xtag.Annotator) (Collection, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	if annotator == nil {
		return nil, ErrNilAnnotator
	}
	return &mongoCollection{
		coll:      &collectionAdapter{coll: coll},
		full:      coll,
		annotator: annotator,
	}, nil
}

// newCollection 基于操作接口构造包装器，测试用。
func newCollection(coll collectionOperations, annotator *xtag.Annotator) *mongoCollection {
	return &mongoCollection{coll: coll, annotator: annotator}
}

func (m *mongoCollection) Client() *mongo.Collection {
	return m.full
}

func (m *mongoCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	m.queries.IncQuery()
	if body := m.annotator.CommentBody(ctx); body != "" {
		opts = append([]options.Lister[options.FindOptions]{options.Find().SetComment(body)}, opts...)
	}
	cur, err := m.coll.Find(ctx, filter, opts...)
	if err != nil {
		m.queries.IncQueryError()
	}
	return cur, err
}

func (m *mongoCollection) Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error) {
	m.queries.IncQuery()
	if body := m.annotator.CommentBody(ctx); body != "" {
		opts = append([]options.Lister[options.AggregateOptions]{options.Aggregate().SetComment(body)}, opts...)
	}
	cur, err := m.coll.Aggregate(ctx, pipeline, opts...)
	if err != nil {
		m.queries.IncQueryError()
	}
	return cur, err
}

func (m *mongoCollection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	m.queries.IncQuery()
	if body := m.annotator.CommentBody(ctx); body != "" {
		opts = append([]options.Lister[options.CountOptions]{options.Count().SetComment(body)}, opts...)
	}
	n, err := m.coll.CountDocuments(ctx, filter, opts...)
	if err != nil {
		m.queries.IncQueryError()
	}
	return n, err
}

func (m *mongoCollection) Stats() Stats {
	return Stats{
		QueryCount:  m.queries.QueryCount(),
		QueryErrors: m.queries.QueryErrors(),
	}
}
