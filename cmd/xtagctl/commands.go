package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/qkit/pkg/config/xtagconf"
	"github.com/omeyang/qkit/pkg/context/xqctx"
	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// usageError 表示调用方参数错误，映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// isCLIUsageError 判断是否为 CLI 框架产生的参数错误（未知 flag、未知命令）。
func isCLIUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "No help topic for")
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createRenderCommand(),
		createAnnotateCommand(),
	}
}

// createRenderCommand 创建 render 子命令。
func createRenderCommand() *cli.Command {
	return &cli.Command{
		Name:    "render",
		Aliases: []string{"r"},
		Usage:   "渲染注释串并输出",
		Action:  cmdRender,
	}
}

// createAnnotateCommand 创建 annotate 子命令。
func createAnnotateCommand() *cli.Command {
	return &cli.Command{
		Name:      "annotate",
		Aliases:   []string{"a"},
		Usage:     "为 SQL 附加注释后输出；缺省参数时从 stdin 读取",
		ArgsUsage: "[sql]",
		Action:    cmdAnnotate,
	}
}

// cmdRender 渲染当前环境上下文对应的注释串。
func cmdRender(ctx context.Context, cmd *cli.Command) error {
	keys, values, err := parseDefines(cmd.StringSlice("define"))
	if err != nil {
		return err
	}

	annotator, err := buildAnnotator(cmd, keys)
	if err != nil {
		return err
	}

	tctx, err := xqctx.WithStore(ctx, xqctx.NewStoreFrom(values))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, annotator.Comment(tctx))
	return nil
}

// cmdAnnotate 为 SQL 附加注释。SQL 取自命令参数，缺省时从 stdin 读取。
func cmdAnnotate(ctx context.Context, cmd *cli.Command) error {
	keys, values, err := parseDefines(cmd.StringSlice("define"))
	if err != nil {
		return err
	}

	annotator, err := buildAnnotator(cmd, keys)
	if err != nil {
		return err
	}

	sql := strings.Join(cmd.Args().Slice(), " ")
	if sql == "" {
		data, err := io.ReadAll(cmd.Root().Reader)
		if err != nil {
			return fmt.Errorf("读取 stdin 失败: %w", err)
		}
		sql = strings.TrimSpace(string(data))
	}
	if sql == "" {
		return &usageError{msg: "annotate 命令需要 SQL 参数或 stdin 输入"}
	}

	tctx, err := xqctx.WithStore(ctx, xqctx.NewStoreFrom(values))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, annotator.Annotate(tctx, sql))
	return nil
}

// buildAnnotator 根据配置文件和命令行旗标构造注释器。
// 有配置文件时标签规格来自文件；否则按 -D 出现顺序合成规格。
// 命令行旗标追加在配置选项之后，因而覆盖文件取值。
func buildAnnotator(cmd *cli.Command, defineKeys []string) (*xtag.Annotator, error) {
	var opts []xtag.Option

	if path := cmd.String("config"); path != "" {
		cfg, err := xtagconf.Load(path)
		if err != nil {
			return nil, err
		}
		opts = cfg.Options()
	} else {
		tags := make([]xtag.Tag, 0, len(defineKeys))
		for _, key := range defineKeys {
			tags = append(tags, xtag.Key(key))
		}
		opts = append(opts, xtag.WithSpec(xtag.NewSpec(tags...)))
	}

	if kind := cmd.String("formatter"); kind != "" {
		parsed, err := xtag.ParseFormatter(kind)
		if err != nil {
			return nil, &usageError{msg: fmt.Sprintf("非法 formatter %q (应为 legacy 或 structured)", kind)}
		}
		opts = append(opts, xtag.WithFormatter(parsed))
	}

	if cmd.IsSet("prepend") {
		opts = append(opts, xtag.WithPrepend(cmd.Bool("prepend")))
	}

	return xtag.New(opts...)
}

// parseDefines 解析 -D key=value 定义，保持出现顺序。
func parseDefines(defines []string) ([]string, map[string]any, error) {
	keys := make([]string, 0, len(defines))
	values := make(map[string]any, len(defines))

	for _, d := range defines {
		key, value, ok := strings.Cut(d, "=")
		if !ok || key == "" {
			return nil, nil, &usageError{msg: fmt.Sprintf("格式错误的定义 %q (应为 key=value)", d)}
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = value
	}
	return keys, values, nil
}

// setupSignalHandler 设置信号处理。
// 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
