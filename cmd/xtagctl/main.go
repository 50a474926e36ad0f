// xtagctl 是查询注释引擎的命令行工具。
//
// 用法:
//
//	xtagctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     配置文件路径 (.yaml/.yml/.json)
//	-f, --formatter  格式化器 (legacy | structured)，覆盖配置文件取值
//	    --prepend    注释前置（默认追加在查询末尾）
//	-D key=value     定义一个环境上下文值，可重复
//
// 命令:
//
//	render             渲染注释串并输出
//	annotate [sql]     为 SQL 附加注释后输出；缺省参数时从 stdin 读取
//	help               显示帮助信息
//
// 标签来源:
//
//	有配置文件时，标签规格来自配置文件的 tags 列表，-D 提供运行期
//	上下文值。无配置文件时，按 -D 出现顺序合成规格，便于快速试验。
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（配置文件加载失败等）
//	2: 参数错误（非法 formatter、格式错误的 -D、未知命令等）
//
// 示例:
//
//	xtagctl -D application=MyApp -D controller=users render
//	xtagctl -c tags.yaml -D controller=users annotate "SELECT * FROM users"
//	echo "SELECT 1" | xtagctl -f structured -D application=MyApp annotate
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xtagctl",
		Usage:   "SQL 查询注释引擎命令行工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (.yaml/.yml/.json)",
			},
			&cli.StringFlag{
				Name:    "formatter",
				Aliases: []string{"f"},
				Usage:   "格式化器 (legacy | structured)，覆盖配置文件取值",
			},
			&cli.BoolFlag{
				Name:  "prepend",
				Usage: "注释前置（默认追加在查询末尾）",
			},
			&cli.StringSliceFlag{
				Name:    "define",
				Aliases: []string{"D"},
				Usage:   "定义一个环境上下文值 (key=value)，可重复",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"QKit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（如未知 flag、未知命令）也返回退出码 2，
		// 与文档契约"参数错误 → 退出码 2"保持一致。
		if isCLIUsageError(err) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
