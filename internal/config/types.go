package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/livp123/raidrec/internal/combatlog"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// GeneralConfig locates the combat logs.
// GeneralConfig 定义战斗日志的位置。
type GeneralConfig struct {
	LogDir             string `ini:"log_dir" yaml:"log_dir" json:"log_dir" env:"LOG_DIR"`
	LogPattern         string `ini:"log_pattern" yaml:"log_pattern" json:"log_pattern" env:"LOG_PATTERN"`
	RecordingExtension string `ini:"recording_extension" yaml:"recording_extension" json:"recording_extension" env:"RECORDING_EXTENSION"`
	// Filter is an optional expression deciding which encounters are recorded.
	// Filter 是一个可选表达式，用于决定录制哪些遭遇战。
	Filter string `ini:"filter" yaml:"filter" json:"filter" env:"FILTER"`
}

// OBSConfig holds the OBS WebSocket connection settings.
// OBSConfig 保存 OBS WebSocket 连接设置。
type OBSConfig struct {
	Host     string `ini:"host" yaml:"host" json:"host" env:"HOST"`
	Port     int    `ini:"port" yaml:"port" json:"port" env:"PORT"`
	Password string `ini:"password" yaml:"password" json:"password" env:"PASSWORD"`
	Timeout  int    `ini:"timeout" yaml:"timeout" json:"timeout" env:"TIMEOUT"`
}

// RecordingConfig controls stop timing and post-processing of recordings.
// RecordingConfig 控制停止时机和录像后期处理。
type RecordingConfig struct {
	StopDelay             int    `ini:"stop_delay" yaml:"stop_delay" json:"stop_delay" env:"STOP_DELAY"`
	AutoRename            bool   `ini:"auto_rename" yaml:"auto_rename" json:"auto_rename" env:"AUTO_RENAME"`
	RenameDelay           int    `ini:"rename_delay" yaml:"rename_delay" json:"rename_delay" env:"RENAME_DELAY"`
	MaxRenameAttempts     int    `ini:"max_rename_attempts" yaml:"max_rename_attempts" json:"max_rename_attempts" env:"MAX_RENAME_ATTEMPTS"`
	MinRecordingDuration  int    `ini:"min_recording_duration" yaml:"min_recording_duration" json:"min_recording_duration" env:"MIN_RECORDING_DURATION"`
	DeleteShortRecordings bool   `ini:"delete_short_recordings" yaml:"delete_short_recordings" json:"delete_short_recordings" env:"DELETE_SHORT_RECORDINGS"`
	RecordingPathFallback string `ini:"recording_path_fallback" yaml:"recording_path_fallback" json:"recording_path_fallback" env:"PATH_FALLBACK"`
	DungeonTimeoutSeconds int    `ini:"dungeon_timeout_seconds" yaml:"dungeon_timeout_seconds" json:"dungeon_timeout_seconds" env:"DUNGEON_TIMEOUT_SECONDS"`
}

// DifficultyConfig toggles recording per difficulty category.
// DifficultyConfig 按难度类别开关录制。
type DifficultyConfig struct {
	RecordLFR    bool `ini:"record_lfr" yaml:"record_lfr" json:"record_lfr" env:"LFR"`
	RecordNormal bool `ini:"record_normal" yaml:"record_normal" json:"record_normal" env:"NORMAL"`
	RecordHeroic bool `ini:"record_heroic" yaml:"record_heroic" json:"record_heroic" env:"HEROIC"`
	RecordMythic bool `ini:"record_mythic" yaml:"record_mythic" json:"record_mythic" env:"MYTHIC"`
	RecordOther  bool `ini:"record_other" yaml:"record_other" json:"record_other" env:"OTHER"`
	RecordMPlus  bool `ini:"record_mplus" yaml:"record_mplus" json:"record_mplus" env:"MPLUS"`
}

// HistoryConfig locates the session history database. An empty path disables it.
// HistoryConfig 定义会话历史数据库位置，路径为空则禁用。
type HistoryConfig struct {
	Path string `ini:"path" yaml:"path" json:"path" env:"PATH"`
}

// Config is the whole recorder configuration.
// Config 是完整的录制器配置。
type Config struct {
	General      GeneralConfig        `ini:"General" yaml:"general" json:"general" envPrefix:"GENERAL_"`
	OBS          OBSConfig            `ini:"OBS" yaml:"obs" json:"obs" envPrefix:"OBS_"`
	Recording    RecordingConfig      `ini:"Recording" yaml:"recording" json:"recording" envPrefix:"RECORDING_"`
	Difficulties DifficultyConfig     `ini:"Difficulties" yaml:"difficulties" json:"difficulties" envPrefix:"DIFFICULTIES_"`
	History      HistoryConfig        `ini:"History" yaml:"history" json:"history" envPrefix:"HISTORY_"`
	Logging      logger.LoggingConfig `ini:"Logging" yaml:"logging" json:"logging" envPrefix:"LOGGING_"`
	BossNames    map[int]string       `ini:"-" yaml:"boss_names" json:"boss_names"`
}

// Default returns the configuration written for a fresh install.
// Default 返回新安装时写入的默认配置。
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			LogDir:             filepath.Join(home, "Games", "World of Warcraft", "_retail_", "Logs"),
			LogPattern:         DefaultLogPattern,
			RecordingExtension: DefaultRecordingExtension,
		},
		OBS: OBSConfig{
			Host:    DefaultOBSHost,
			Port:    DefaultOBSPort,
			Timeout: DefaultOBSTimeout,
		},
		Recording: RecordingConfig{
			StopDelay:             DefaultStopDelay,
			AutoRename:            true,
			RenameDelay:           DefaultRenameDelay,
			MaxRenameAttempts:     DefaultMaxRenameAttempts,
			MinRecordingDuration:  DefaultMinRecordingDuration,
			DeleteShortRecordings: true,
			RecordingPathFallback: filepath.Join(home, "Videos"),
			DungeonTimeoutSeconds: DefaultDungeonTimeoutSeconds,
		},
		Difficulties: DifficultyConfig{
			RecordNormal: true,
			RecordHeroic: true,
			RecordMythic: true,
			RecordMPlus:  true,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath,
		},
		Logging: logger.LoggingConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		},
		BossNames: map[int]string{},
	}
}

// Clone returns a deep copy.
// Clone 返回深拷贝。
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.BossNames = make(map[int]string, len(c.BossNames))
	for k, v := range c.BossNames {
		out.BossNames[k] = v
	}
	return &out
}

// normalize cleans user-entered paths: quotes, "~" and separators.
func (c *Config) normalize() {
	c.General.LogDir = SanitizePath(c.General.LogDir)
	c.Recording.RecordingPathFallback = SanitizePath(c.Recording.RecordingPathFallback)
	c.History.Path = SanitizePath(c.History.Path)
	c.Logging.Path = SanitizePath(c.Logging.Path)
	if c.BossNames == nil {
		c.BossNames = map[int]string{}
	}
}

// SanitizePath strips surrounding quotes, expands a leading "~" and cleans the path.
// SanitizePath 去除引号、展开 "~" 并规范化路径。
func SanitizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), `"'`)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}

// LogPatternRegexp compiles the combat log file name pattern.
func (c *Config) LogPatternRegexp() (*regexp.Regexp, error) {
	pattern := c.General.LogPattern
	if pattern == "" {
		pattern = DefaultLogPattern
	}
	return regexp.Compile(pattern)
}

// DifficultyEnabled reports whether encounters of difficultyID are recorded.
// DifficultyEnabled 判断指定难度的遭遇战是否录制。
func (c *Config) DifficultyEnabled(difficultyID int) bool {
	switch combatlog.CategoryOf(difficultyID) {
	case combatlog.CategoryLFR:
		return c.Difficulties.RecordLFR
	case combatlog.CategoryNormal:
		return c.Difficulties.RecordNormal
	case combatlog.CategoryHeroic:
		return c.Difficulties.RecordHeroic
	case combatlog.CategoryMythic:
		return c.Difficulties.RecordMythic
	default:
		return c.Difficulties.RecordOther
	}
}

// BossName returns the display override for a boss id, if any.
func (c *Config) BossName(bossID int) (string, bool) {
	name, ok := c.BossNames[bossID]
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

func seconds(n int) time.Duration {
	if n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func (c *Config) StopDelay() time.Duration      { return seconds(c.Recording.StopDelay) }
func (c *Config) RenameDelay() time.Duration    { return seconds(c.Recording.RenameDelay) }
func (c *Config) MinDuration() time.Duration    { return seconds(c.Recording.MinRecordingDuration) }
func (c *Config) DungeonTimeout() time.Duration { return seconds(c.Recording.DungeonTimeoutSeconds) }
func (c *Config) OBSTimeout() time.Duration     { return seconds(c.OBS.Timeout) }
