package xtagconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xtagconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置文件格式。
	ErrUnsupportedFormat = errors.New("xtagconf: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("xtagconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xtagconf: failed to parse config")

	// ErrInvalidTagEntry 表示 tags 列表中出现无法识别的条目。
	ErrInvalidTagEntry = errors.New("xtagconf: invalid tag entry")

	// ErrNotWatchable 表示该 Config 没有可监视的文件落点（如 LoadBytes 产生的）。
	ErrNotWatchable = errors.New("xtagconf: config has no backing file to watch")
)
