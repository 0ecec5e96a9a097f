package runtime

// ConfigPath stores the path to the configuration file provided via CLI flags.
// ConfigPath 存储通过 CLI 标志提供的配置文件路径。
var ConfigPath string

// Debug forces debug logging, set by --debug.
// Debug 强制启用调试日志，由 --debug 设置。
var Debug bool

// NoRecorder starts only the web GUI, set by --no-recorder.
// NoRecorder 仅启动 Web 界面，由 --no-recorder 设置。
var NoRecorder bool

// Host and Port are the web server listen address.
// Host 和 Port 是 Web 服务器监听地址。
var (
	Host string
	Port int
)
