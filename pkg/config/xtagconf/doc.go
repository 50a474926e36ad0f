// Package xtagconf 提供注释器的文件配置加载，基于 koanf 实现。
//
// # 设计理念
//
// xtagconf 定位为最小化配置加载器：把 YAML/JSON 配置文件翻译成一组
// xtag.Option，供调用方构造注释器。不负责配置治理（默认值注入、
// 环境变量覆盖），这些能力由上层业务框架按需实现。
//
// 配置文件中只能表达声明式内容：标签键与字面量值、格式化器、放置位置、
// 缓存开关。函数型解析器（Producer / ContextProducer）必须在代码里通过
// Options() 之外追加的 xtag.Option 绑定。
//
// # 配置格式
//
//	formatter: structured     # legacy | structured
//	prepend: false
//	cache: true
//	render_cache_size: 256
//	tags:
//	  - application: MyApp    # 键值对 → 字面量绑定
//	  - controller            # 裸键 → 注册表/上下文兜底
//	  - action
//
// 非法的 formatter 取值在加载期即报 xtag.ErrUnsupportedFormatter，
// 不会等到注释器构造时才暴露。
//
// # 热重载
//
// 支持文件变更监视和自动重载（基于 fsnotify）。
// 特性：监视目录、内置防抖、并发安全、支持 vim/emacs 原子写入。
// 回调中拿到重载后的 Config，用 Options() 重建注释器即可生效。
// 从 bytes 创建的 Config 不支持监视。
package xtagconf
