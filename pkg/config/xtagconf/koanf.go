package xtagconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/qkit/pkg/tag/xtag"
)

// delim 配置键分隔符。本包的配置层级固定，不开放定制。
const delim = "."

// koanfConfig 是 Config 接口的 koanf 实现。
type koanfConfig struct {
	mu      sync.RWMutex
	k       *koanf.Koanf
	opts    []xtag.Option
	path    string
	format  Format
	isBytes bool // 标记是否从字节数据创建
}

// Load 从文件路径加载配置。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
// 文件中的 formatter、tags 等字段在此处即完成校验（fail-fast）。
func Load(path string) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	k, opts, err := parse(data, format)
	if err != nil {
		return nil, err
	}

	return &koanfConfig{
		k:       k,
		opts:    opts,
		path:    path,
		format:  format,
		isBytes: false,
	}, nil
}

// LoadBytes 从字节数据加载配置。
// 需要显式指定格式，适用于 K8s ConfigMap 等场景。
// 空数据会得到一个空配置（Options 返回空切片），与 Load 读空文件行为一致。
func LoadBytes(data []byte, format Format) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}

	k, opts, err := parse(data, format)
	if err != nil {
		return nil, err
	}

	return &koanfConfig{
		k:       k,
		opts:    opts,
		path:    "",
		format:  format,
		isBytes: true,
	}, nil
}

// Client 返回底层的 koanf 实例。
func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

// Options 返回注释器选项快照。
func (c *koanfConfig) Options() []xtag.Option {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]xtag.Option(nil), c.opts...)
}

// Reload 重新加载配置文件。解析或校验失败时保留旧配置。
func (c *koanfConfig) Reload() error {
	if c.isBytes {
		return errors.New("xtagconf: cannot reload config created from bytes")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	newK, newOpts, err := parse(data, c.format)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.k = newK
	c.opts = newOpts
	c.mu.Unlock()

	return nil
}

// Path 返回配置文件路径。
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *koanfConfig) Format() Format {
	return c.format
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// parse 解析数据并翻译为注释器选项。
func parse(data []byte, format Format) (*koanf.Koanf, []xtag.Option, error) {
	k := koanf.New(delim)

	// 空数据时创建空配置
	if len(data) > 0 {
		var parser koanf.Parser
		switch format {
		case FormatYAML:
			parser = yaml.Parser()
		case FormatJSON:
			parser = json.Parser()
		default:
			return nil, nil, ErrUnsupportedFormat
		}
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	opts, err := buildOptions(k)
	if err != nil {
		return nil, nil, err
	}
	return k, opts, nil
}

// buildOptions 把配置树翻译为 xtag.Option 列表。
// 未出现的键不产生选项，保持 xtag.New 的默认行为。
func buildOptions(k *koanf.Koanf) ([]xtag.Option, error) {
	var opts []xtag.Option

	if k.Exists("formatter") {
		kind, err := xtag.ParseFormatter(k.String("formatter"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, xtag.WithFormatter(kind))
	}

	if k.Exists("prepend") {
		opts = append(opts, xtag.WithPrepend(k.Bool("prepend")))
	}

	if k.Exists("cache") {
		opts = append(opts, xtag.WithCache(k.Bool("cache")))
	}

	if k.Exists("render_cache_size") {
		size := k.Int("render_cache_size")
		if size < 0 {
			return nil, xtag.ErrInvalidCacheSize
		}
		opts = append(opts, xtag.WithRenderCache(size))
	}

	if k.Exists("tags") {
		tags, err := parseTags(k.Get("tags"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, xtag.WithSpec(xtag.NewSpec(tags...)))
	}

	return opts, nil
}

// parseTags 解析 tags 列表。
// 支持两种条目形式：
//   - 裸字符串: 标签键，运行期由注册表或环境上下文解析
//   - 单键映射: 键到字面量值的绑定
func parseTags(raw any) ([]xtag.Tag, error) {
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: tags must be a list", ErrInvalidTagEntry)
	}

	tags := make([]xtag.Tag, 0, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case string:
			if v == "" {
				return nil, fmt.Errorf("%w: empty key at index %d", ErrInvalidTagEntry, i)
			}
			tags = append(tags, xtag.Key(v))
		case map[string]any:
			if len(v) != 1 {
				return nil, fmt.Errorf("%w: entry at index %d must have exactly one key", ErrInvalidTagEntry, i)
			}
			for key, value := range v {
				if key == "" {
					return nil, fmt.Errorf("%w: empty key at index %d", ErrInvalidTagEntry, i)
				}
				tags = append(tags, xtag.Bind(key, xtag.Literal(value)))
			}
		default:
			return nil, fmt.Errorf("%w: unsupported entry type %T at index %d", ErrInvalidTagEntry, entry, i)
		}
	}
	return tags, nil
}
