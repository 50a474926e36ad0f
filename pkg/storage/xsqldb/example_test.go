package xsqldb_test

import (
	"context"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/omeyang/qkit/pkg/context/xqctx"
	"github.com/omeyang/qkit/pkg/storage/xsqldb"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// 无 Output 注释：示例只参与编译，不需要真实的 MySQL 实例。

func Example() {
	db, err := sqlx.Open("mysql", "user:pass@tcp(localhost:3306)/app")
	if err != nil {
		log.Fatal(err)
	}

	annotator, err := xtag.New(
		xtag.WithTags(
			xtag.Key(xqctx.KeyApplication),
			xtag.Key(xqctx.KeyController),
			xtag.Key(xqctx.KeyAction),
		),
		xtag.WithResolver(xqctx.KeyApplication, xtag.Literal("MyApp")),
		xtag.WithFormatter(xtag.FormatterStructured),
		xtag.WithCache(true),
	)
	if err != nil {
		log.Fatal(err)
	}

	wrapped, err := xsqldb.New(db, annotator)
	if err != nil {
		log.Fatal(err)
	}
	defer wrapped.Close()

	// 在请求中间件里构建 Store 并写入路由信息
	store := xqctx.NewStore()
	store.SetAll(map[string]any{
		xqctx.KeyController: "users",
		xqctx.KeyAction:     "index",
	})
	ctx, err := xqctx.WithStore(context.Background(), store)
	if err != nil {
		log.Fatal(err)
	}

	// 下发的语句末尾带
	// /*application=%27MyApp%27,controller=%27users%27,action=%27index%27*/
	var names []string
	if err := wrapped.SelectContext(ctx, &names, "SELECT name FROM users"); err != nil {
		log.Fatal(err)
	}
}
