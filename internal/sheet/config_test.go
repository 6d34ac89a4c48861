package sheet_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/jobsheet/internal/kv"
	"github.com/calvinalkan/jobsheet/internal/sheet"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func Test_LoadConfig_Returns_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := sheet.LoadConfig(sheet.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".jobsheet"), cfg.DataDirAbs)
	assert.Equal(t, kv.BackendFile, cfg.Storage)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, time.Duration(0), cfg.LoginDelayDuration())
	assert.Empty(t, cfg.Sources.Global)
	assert.Empty(t, cfg.Sources.Project)
}

func Test_LoadConfig_Applies_Precedence_When_All_Sources_Set(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := filepath.Join(dir, "xdg")

	writeConfig(t, filepath.Join(xdg, "jr", "config.json"), `{
		// global
		"data_dir": "global-data",
		"storage": "sqlite",
		"listen": ":9000",
		"log_level": "info",
	}`)
	writeConfig(t, filepath.Join(dir, ".jr.json"), `{"data_dir": "project-data", "login_delay": "1s"}`)

	env := map[string]string{"XDG_CONFIG_HOME": xdg}

	cfg, err := sheet.LoadConfig(sheet.LoadConfigInput{WorkDirOverride: dir, Env: env})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "project-data"), cfg.DataDirAbs)
	assert.Equal(t, kv.BackendSQLite, cfg.Storage, "global value survives when project is silent")
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, time.Second, cfg.LoginDelayDuration())
	assert.Equal(t, filepath.Join(xdg, "jr", "config.json"), cfg.Sources.Global)
	assert.Equal(t, filepath.Join(dir, ".jr.json"), cfg.Sources.Project)

	writeConfig(t, filepath.Join(dir, "explicit.json"), `{"data_dir": "explicit-data"}`)

	cfg, err = sheet.LoadConfig(sheet.LoadConfigInput{
		WorkDirOverride: dir,
		ConfigPath:      "explicit.json",
		Env:             env,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit-data"), cfg.DataDirAbs, "explicit file replaces project file")

	cfg, err = sheet.LoadConfig(sheet.LoadConfigInput{
		WorkDirOverride: dir,
		ConfigPath:      "explicit.json",
		DataDirOverride: "/abs/flag-data",
		StorageOverride: "memory",
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg, "JR_DEBUG": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/abs/flag-data", cfg.DataDirAbs)
	assert.Equal(t, kv.BackendMemory, cfg.Storage)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_LoadConfig_Uses_Home_When_Xdg_Unset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	writeConfig(t, filepath.Join(home, ".config", "jr", "config.json"), `{"listen": ":7000"}`)

	cfg, err := sheet.LoadConfig(sheet.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{"HOME": home}})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
}

func Test_LoadConfig_Fails_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "explicit empty data dir", content: `{"data_dir": ""}`, wantErr: sheet.ErrDataDirEmpty},
		{name: "bad json", content: `{data_dir}`, wantErr: sheet.ErrConfigInvalid},
		{name: "unknown storage", content: `{"storage": "etcd"}`, wantErr: sheet.ErrInvalidStorage},
		{name: "redis without url", content: `{"storage": "redis"}`, wantErr: sheet.ErrRedisURLRequired},
		{name: "bad level", content: `{"log_level": "loud"}`, wantErr: sheet.ErrInvalidLogLevel},
		{name: "bad delay", content: `{"login_delay": "soon"}`, wantErr: sheet.ErrInvalidLoginDelay},
		{name: "negative delay", content: `{"login_delay": "-1s"}`, wantErr: sheet.ErrInvalidLoginDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, filepath.Join(dir, ".jr.json"), tt.content)

			_, err := sheet.LoadConfig(sheet.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{}})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_LoadConfig_Fails_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	_, err := sheet.LoadConfig(sheet.LoadConfigInput{
		WorkDirOverride: t.TempDir(),
		ConfigPath:      "missing.json",
		Env:             map[string]string{},
	})
	require.ErrorIs(t, err, sheet.ErrConfigFileNotFound)
}

func Test_Config_StorageOptions_Uses_Resolved_Dir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := sheet.LoadConfig(sheet.LoadConfigInput{WorkDirOverride: dir, StorageOverride: "sqlite", Env: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, kv.Options{Backend: kv.BackendSQLite, Dir: filepath.Join(dir, ".jobsheet")}, cfg.StorageOptions())
}
