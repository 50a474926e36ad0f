package xtagconf

import (
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Config 定义注释器配置接口。
// 只提供增值功能，基础操作请直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回底层的 koanf 实例。
	Client() *koanf.Koanf

	// Options 返回配置文件翻译出的注释器选项。
	// 返回的是快照副本，Reload 之后需要重新取用。
	// 典型用法: xtag.New(cfg.Options()...)。
	Options() []xtag.Option

	// Reload 重新加载配置文件。
	// 此方法是并发安全的，解析或校验失败时保留旧配置。
	// 仅对从文件创建的 Config 有效，从字节数据创建的 Config 调用会返回错误。
	Reload() error

	// Path 返回配置文件路径。
	// 从字节数据创建的 Config 返回空字符串。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
