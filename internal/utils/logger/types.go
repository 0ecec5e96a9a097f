package logger

// LoggingConfig defines the configuration for logging.
// LoggingConfig 定义日志配置。
type LoggingConfig struct {
	Enabled bool `ini:"enabled" yaml:"enabled" json:"enabled" env:"ENABLED"`
	// Enabled: write to a rotated file instead of stdout
	// Enabled: 是否写入轮转日志文件（否则输出到 stdout）
	Level string `ini:"level" yaml:"level" json:"level" env:"LEVEL"`
	// Level: debug, info, warn, error
	// Level: 日志级别（debug, info, warn, error）
	Path string `ini:"path" yaml:"path" json:"path" env:"PATH"`
	// Path: log file path
	// Path: 日志文件路径
	MaxSize int `ini:"max_size" yaml:"max_size" json:"max_size"`
	// MaxSize: size in MB before rotation
	// MaxSize: 轮转前的最大大小（MB）
	MaxBackups int `ini:"max_backups" yaml:"max_backups" json:"max_backups"`
	// MaxBackups: number of rotated files kept
	// MaxBackups: 保留的旧文件最大数量
	MaxAge int `ini:"max_age" yaml:"max_age" json:"max_age"`
	// MaxAge: days rotated files are kept
	// MaxAge: 保留旧文件的最大天数
	Compress bool `ini:"compress" yaml:"compress" json:"compress"`
	// Compress: gzip rotated files
	// Compress: 是否压缩旧文件
}
