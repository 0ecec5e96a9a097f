package config

const (
	// DefaultConfigPath is the config file used when --config is not given.
	// DefaultConfigPath 是未指定 --config 时使用的配置文件。
	DefaultConfigPath = "config.ini"

	// EnvPrefix prefixes every environment override, e.g. RAIDREC_OBS_PASSWORD.
	// EnvPrefix 是所有环境变量覆盖项的前缀，例如 RAIDREC_OBS_PASSWORD。
	EnvPrefix = "RAIDREC_"

	DefaultLogPattern         = `WoWCombatLog-\d{6}_\d{6}\.txt$`
	DefaultRecordingExtension = ".mp4"

	DefaultOBSHost    = "localhost"
	DefaultOBSPort    = 4455
	DefaultOBSTimeout = 3

	DefaultWebHost = "0.0.0.0"
	DefaultWebPort = 5001

	// DefaultStopDelay is the recording tail kept after an encounter ends, in seconds.
	// DefaultStopDelay 是遭遇战结束后继续录制的时间（秒）。
	DefaultStopDelay             = 3
	DefaultRenameDelay           = 3
	DefaultMaxRenameAttempts     = 10
	DefaultMinRecordingDuration  = 5
	DefaultDungeonTimeoutSeconds = 120

	DefaultHistoryPath = "raidrec.db"

	// Section names shared by the INI layout and the API.
	SectionGeneral      = "General"
	SectionOBS          = "OBS"
	SectionRecording    = "Recording"
	SectionDifficulties = "Difficulties"
	SectionBossNames    = "BossNames"
	SectionHistory      = "History"
	SectionLogging      = "Logging"
)
