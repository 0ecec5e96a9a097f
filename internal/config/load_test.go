package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

const sampleINI = `[General]
log_dir = "C:\Games\World of Warcraft\_retail_\Logs"
recording_extension = .mkv

[OBS]
host = 192.168.1.10
port = 4456
password = pa;ss#word

[Recording]
auto_rename = False
min_recording_duration = 10

[Difficulties]
record_lfr = True
record_mythic = false

[BossNames]
2902 = Ulgrax the Devourer
2917 = The Bloodbound Horror
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatINI, FormatOf("config.ini"))
	assert.Equal(t, FormatINI, FormatOf("config"))
	assert.Equal(t, FormatYAML, FormatOf("config.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("CONFIG.YML"))
}

func TestLoadINI(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.ini", sampleINI))
	require.NoError(t, err)

	assert.Equal(t, ".mkv", cfg.General.RecordingExtension)
	assert.Equal(t, DefaultLogPattern, cfg.General.LogPattern)
	assert.Equal(t, "192.168.1.10", cfg.OBS.Host)
	assert.Equal(t, 4456, cfg.OBS.Port)
	assert.Equal(t, "pa;ss#word", cfg.OBS.Password)
	assert.Equal(t, DefaultOBSTimeout, cfg.OBS.Timeout)

	assert.False(t, cfg.Recording.AutoRename)
	assert.Equal(t, 10, cfg.Recording.MinRecordingDuration)
	assert.Equal(t, DefaultStopDelay, cfg.Recording.StopDelay)

	assert.True(t, cfg.Difficulties.RecordLFR)
	assert.False(t, cfg.Difficulties.RecordMythic)
	assert.True(t, cfg.Difficulties.RecordHeroic)

	assert.Equal(t, map[int]string{
		2902: "Ulgrax the Devourer",
		2917: "The Bloodbound Horror",
	}, cfg.BossNames)
}

func TestLoadINIBadBossID(t *testing.T) {
	_, err := Load(writeFile(t, "config.ini", "[BossNames]\nnot-a-number = x\n"))
	assert.ErrorIs(t, err, rrerrors.ErrConfigInvalid)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
obs:
  host: obs.local
  port: 4444
recording:
  stop_delay: 5
boss_names:
  2902: Ulgrax
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "obs.local", cfg.OBS.Host)
	assert.Equal(t, 4444, cfg.OBS.Port)
	assert.Equal(t, 5, cfg.Recording.StopDelay)
	assert.Equal(t, "Ulgrax", cfg.BossNames[2902])
	assert.True(t, cfg.Recording.AutoRename)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	assert.ErrorIs(t, err, rrerrors.ErrConfigNotFound)
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.ini")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultOBSPort, cfg.OBS.Port)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[OBS]")
	assert.Contains(t, string(data), "[BossNames]")
	assert.Contains(t, string(data), "; Seconds to keep recording after an encounter ends")

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSaveRoundTripINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	cfg := Default()
	cfg.General.Filter = `Kind == "encounter" && DifficultyID == 16`
	cfg.OBS.Password = "x;y"
	cfg.BossNames[3009] = "Vexie"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.General.Filter, loaded.General.Filter)
	assert.Equal(t, "x;y", loaded.OBS.Password)
	assert.Equal(t, "Vexie", loaded.BossNames[3009])
}

func TestSaveRoundTripEmptyValues(t *testing.T) {
	for _, name := range []string{"config.ini", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.History.Path = ""
			cfg.Recording.RecordingPathFallback = ""
			require.NoError(t, Save(path, cfg))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Empty(t, loaded.History.Path)
			assert.Empty(t, loaded.Recording.RecordingPathFallback)
			assert.Empty(t, loaded.General.Filter)
			assert.Empty(t, loaded.OBS.Password)
		})
	}
}

func TestLoadINIEmptyHistoryPath(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.ini", "[History]\npath =\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.History.Path)

	cfg, err = Load(writeFile(t, "config.ini", "[General]\nrecording_extension = .mkv\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryPath, cfg.History.Path, "missing key keeps the default")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RAIDREC_OBS_PASSWORD", "from-env")
	t.Setenv("RAIDREC_OBS_PORT", "4460")
	t.Setenv("RAIDREC_RECORDING_STOP_DELAY", "7")
	t.Setenv("RAIDREC_DIFFICULTIES_LFR", "true")

	cfg, err := Load(writeFile(t, "config.ini", sampleINI))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OBS.Password)
	assert.Equal(t, 4460, cfg.OBS.Port)
	assert.Equal(t, 7, cfg.Recording.StopDelay)
	assert.True(t, cfg.Difficulties.RecordLFR)
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv("RAIDREC_OBS_PORT", "not-a-port")
	_, err := Load(writeFile(t, "config.ini", sampleINI))
	assert.ErrorIs(t, err, rrerrors.ErrConfigInvalid)
}
