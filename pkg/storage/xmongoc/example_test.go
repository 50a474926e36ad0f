package xmongoc_test

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/qkit/pkg/context/xqctx"
	"github.com/omeyang/qkit/pkg/storage/xmongoc"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// Example 演示为 MongoDB 集合注入查询注释。
func Example() {
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	annotator, err := xtag.New(
		xtag.WithSpec(xtag.NewSpec(
			xtag.Bind(xqctx.KeyApplication, xtag.Literal("orders-svc")),
			xtag.Key(xqctx.KeyJob),
		)),
	)
	if err != nil {
		log.Fatal(err)
	}

	coll, err := xmongoc.New(client.Database("shop").Collection("orders"), annotator)
	if err != nil {
		log.Fatal(err)
	}

	ctx, err := xqctx.WithStore(context.Background(), xqctx.NewStoreFrom(map[string]any{
		xqctx.KeyJob: "OrderSyncJob",
	}))
	if err != nil {
		log.Fatal(err)
	}

	// 该查询会携带 comment: application='orders-svc',job='OrderSyncJob'
	cursor, err := coll.Find(ctx, map[string]any{"status": "pending"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	fmt.Println(coll.Stats().QueryCount)
}
