package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/retry"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: \"1\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []Task{TaskExtract, TaskDownload, TaskReplace}, cfg.Tasks)
	assert.Equal(t, ScopeCurrentFile, cfg.Scope)
	assert.Equal(t, []string{"image", "officeFile"}, cfg.PresetExtensions)
	assert.Equal(t, "assets/${path}", cfg.StorePath)
	assert.Equal(t, "${originalName}", cfg.StoreFileName)
	assert.Equal(t, 30*time.Second, cfg.HTTP.TimeoutDuration())
	assert.Equal(t, retry.ModeLinear, cfg.HTTP.Retry.Policy().Mode)
	assert.True(t, ValidateSettings(cfg).Valid)
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
}

func TestLoad_OverridesAndNormalizes(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `version: "1"
tasks: [extract]
scope: allFiles
preset_extensions: [code]
custom_extensions: [" .PSD "]
store_path: "files/${notename}"
http:
  timeout: 5s
  rate_limit: 2
  retry:
    mode: Exponential
    max_retries: 3
logging:
  level: DEBUG
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []Task{TaskExtract}, cfg.Tasks)
	assert.Equal(t, ScopeAllFiles, cfg.Scope)
	assert.Equal(t, []string{".psd"}, cfg.CustomExtensions)
	assert.Equal(t, "files/${notename}", cfg.StorePath)
	assert.Equal(t, 1, cfg.HTTP.Burst)
	assert.Equal(t, retry.ModeExponential, cfg.HTTP.Retry.Mode)
	assert.Equal(t, 3, cfg.HTTP.Retry.Policy().MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.ActiveExtensions().Has(".psd"))
	assert.True(t, cfg.ActiveExtensions().Has(".go"))
}

func TestLoad_ExpandsEnvironmentButKeepsTemplateVariables(t *testing.T) {
	t.Setenv("LINKLOCAL_TEST_TOKEN", "secret")
	t.Setenv("path", "/should/not/be/used")
	path := writeConfig(t, t.TempDir(), `store_path: "assets/${path}/${date}"
http:
  headers:
    Authorization: "Bearer ${LINKLOCAL_TEST_TOKEN}"
    X-Unset: "${LINKLOCAL_TEST_UNSET}"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "assets/${path}/${date}", cfg.StorePath)
	assert.Equal(t, "Bearer secret", cfg.HTTP.Headers["Authorization"])
	assert.Equal(t, "${LINKLOCAL_TEST_UNSET}", cfg.HTTP.Headers["X-Unset"])
}

func TestLoad_ReadsDotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LINKLOCAL_TEST_AGENT=from-dotenv\n"), 0o600))
	path := writeConfig(t, dir, "http:\n  user_agent: ${LINKLOCAL_TEST_AGENT}\n")
	t.Cleanup(func() { _ = os.Unsetenv("LINKLOCAL_TEST_AGENT") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.HTTP.UserAgent)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad version", "version: \"9\"\n"},
		{"bad duration", "http:\n  timeout: soon\n"},
		{"bad retry mode", "http:\n  retry:\n    mode: random\n"},
		{"negative retries", "http:\n  retry:\n    max_retries: -1\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"unknown key", "storepath: x\n"},
		{"malformed yaml", "tasks: [extract\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoadOptional(t *testing.T) {
	cfg, found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)

	path := writeConfig(t, t.TempDir(), "scope: changed\n")
	cfg, found, err = LoadOptional(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, ScopeChanged, cfg.Scope)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", DefaultFileName)

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.History.Enabled)
	assert.True(t, ValidateSettings(cfg).Valid)

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, Init(path, true))
}

func TestParse_NormalizesEnumSpellings(t *testing.T) {
	cfg, err := Parse([]byte("scope: all-files\ntasks: [Extract, DOWNLOAD]\nhttp:\n  retry:\n    mode: FIXED\n"))
	require.NoError(t, err)
	assert.Equal(t, ScopeAllFiles, cfg.Scope)
	assert.Equal(t, []Task{TaskExtract, TaskDownload}, cfg.Tasks)
	assert.Equal(t, retry.ModeFixed, cfg.HTTP.Retry.Mode)

	// Unknown spellings survive for ValidateSettings to report.
	cfg, err = Parse([]byte("scope: everywhere\n"))
	require.NoError(t, err)
	assert.Equal(t, Scope("everywhere"), cfg.Scope)
}

func TestParseScopeAndTask(t *testing.T) {
	s, err := ParseScope("Current Folder")
	require.NoError(t, err)
	assert.Equal(t, ScopeCurrentFolder, s)

	_, err = ParseScope("nowhere")
	require.Error(t, err)

	task, err := ParseTask("Replace")
	require.NoError(t, err)
	assert.Equal(t, TaskReplace, task)

	_, err = ParseTask("upload")
	require.Error(t, err)
}
