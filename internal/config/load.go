package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/livp123/raidrec/internal/utils/fileutil"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// Format is the on-disk encoding of a config file.
type Format string

const (
	FormatINI  Format = "ini"
	FormatYAML Format = "yaml"
)

// FormatOf picks the encoding from the file extension. Anything that is not
// YAML is treated as INI.
// FormatOf 根据扩展名选择配置格式，非 YAML 一律按 INI 处理。
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatINI
	}
}

var iniOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
}

// Load reads path over the defaults, then applies RAIDREC_* environment overrides.
// Load 在默认值之上读取配置文件，然后应用 RAIDREC_* 环境变量覆盖。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", rrerrors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// LoadOrCreate loads path, writing the defaults there first when it is missing.
// LoadOrCreate 加载配置，文件不存在时先写入默认配置。
func LoadOrCreate(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, false, nil
	}
	if !errors.Is(err, rrerrors.ErrConfigNotFound) {
		return nil, false, err
	}
	def := Default()
	if err := Save(path, def); err != nil {
		return nil, false, fmt.Errorf("write default config: %w", err)
	}
	if err := applyEnv(def); err != nil {
		return nil, false, err
	}
	def.normalize()
	return def, true, nil
}

// Save writes cfg atomically in the format chosen by the extension.
// Save 按扩展名对应的格式原子写入配置。
func Save(path string, cfg *Config) error {
	data, err := Encode(cfg, FormatOf(path))
	if err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(path, data, 0600)
}

// Decode parses data over the defaults.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	default:
		if err := decodeINI(data, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.BossNames == nil {
		cfg.BossNames = map[int]string{}
	}
	return cfg, nil
}

// Encode renders cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(cfg)
	}
	return encodeINI(cfg)
}

func decodeINI(data []byte, cfg *Config) error {
	f, err := ini.LoadSources(iniOptions, data)
	if err != nil {
		return err
	}
	if err := f.MapTo(cfg); err != nil {
		return err
	}
	// MapTo skips empty values, but an empty value here means "off" or
	// "none" rather than "use the default".
	for _, k := range []struct {
		section, key string
		dst          *string
	}{
		{SectionGeneral, "filter", &cfg.General.Filter},
		{SectionOBS, "password", &cfg.OBS.Password},
		{SectionRecording, "recording_path_fallback", &cfg.Recording.RecordingPathFallback},
		{SectionHistory, "path", &cfg.History.Path},
	} {
		if sec, err := f.GetSection(k.section); err == nil && sec.HasKey(k.key) {
			*k.dst = sec.Key(k.key).String()
		}
	}
	if sec, err := f.GetSection(SectionBossNames); err == nil {
		for _, key := range sec.Keys() {
			id, err := strconv.Atoi(strings.TrimSpace(key.Name()))
			if err != nil {
				return rrerrors.NewConfigError(SectionBossNames, key.Name())
			}
			if name := strings.TrimSpace(key.String()); name != "" {
				cfg.BossNames[id] = name
			}
		}
	}
	return nil
}

var iniComments = map[string]map[string]string{
	SectionGeneral: {
		"log_dir":             "Directory containing WoWCombatLog-*.txt files",
		"log_pattern":         "Regular expression matched against combat log file names",
		"recording_extension": "Extension of recordings produced by OBS",
		"filter":              "Optional expression, e.g. Kind == \"encounter\" && DifficultyID == 16",
	},
	SectionOBS: {
		"host":     "OBS WebSocket host",
		"port":     "OBS WebSocket port (Tools > WebSocket Server Settings)",
		"password": "Leave empty when authentication is disabled",
		"timeout":  "Request timeout in seconds",
	},
	SectionRecording: {
		"stop_delay":              "Seconds to keep recording after an encounter ends",
		"auto_rename":             "Rename recordings after the encounter",
		"rename_delay":            "Seconds to wait for OBS to finish writing before renaming",
		"max_rename_attempts":     "Suffix attempts when the target name already exists",
		"min_recording_duration":  "Recordings shorter than this many seconds are short",
		"delete_short_recordings": "Delete short recordings instead of renaming them",
		"recording_path_fallback": "Used when OBS does not report its recording directory",
		"dungeon_timeout_seconds": "End a Mythic+ run after this much log inactivity",
	},
	SectionDifficulties: {
		"record_lfr":    "Looking For Raid",
		"record_other":  "Timewalking, 5-player and legacy difficulties",
		"record_mplus":  "Mythic+ dungeon runs",
		"record_normal": "",
		"record_heroic": "",
		"record_mythic": "",
	},
	SectionHistory: {
		"path": "SQLite file for session history, empty disables it",
	},
}

func encodeINI(cfg *Config) ([]byte, error) {
	f := ini.Empty(iniOptions)
	if err := f.ReflectFrom(cfg); err != nil {
		return nil, err
	}
	for section, keys := range iniComments {
		sec := f.Section(section)
		for name, comment := range keys {
			if comment == "" || !sec.HasKey(name) {
				continue
			}
			sec.Key(name).Comment = "; " + comment
		}
	}

	bosses := f.Section(SectionBossNames)
	bosses.Comment = "; encounter_id = display name used for file names"
	ids := make([]int, 0, len(cfg.BossNames))
	for id := range cfg.BossNames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, err := bosses.NewKey(strconv.Itoa(id), cfg.BossNames[id]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: environment: %v", rrerrors.ErrConfigInvalid, err)
	}
	return nil
}
