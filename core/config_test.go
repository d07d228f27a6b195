package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_defaults(t *testing.T) {
	t.Setenv("ENV", "")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "DEV", conf.Env)
	assert.True(t, conf.Debug)
	assert.False(t, conf.TestMode)
	assert.Equal(t, EnginePostgres, conf.Database.Engine)
	assert.Equal(t, "localhost:5432", conf.Database.Address())
	assert.Equal(t, MailConsole, conf.Mail.Backend)
	assert.Equal(t, "noreply@sena.edu.co", conf.Mail.FromEmail)
	assert.Equal(t, 465, conf.Mail.SMTPPort)
	assert.Equal(t, 3, conf.Job.BatchSize)
	assert.Equal(t, 5, conf.Job.CutoffDays)
	assert.Equal(t, "America/Bogota", conf.Location().String())
}

func TestNewConfig_envOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", EngineSQLite)
	t.Setenv("TEST_DATABASE_PATH", "sofia.db")
	t.Setenv("TEST_JOB_BATCHSIZE", "7")
	t.Setenv("TEST_MAIL_ENABLED", "true")
	t.Setenv("TEST_MAIL_TESTRECIPIENT", "qa@sena.edu.co")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, EngineSQLite, conf.Database.Engine)
	assert.Equal(t, "sofia.db", conf.Database.Path)
	assert.Equal(t, 7, conf.Job.BatchSize)
	assert.True(t, conf.Mail.Enabled)
	assert.Equal(t, "qa@sena.edu.co", conf.Mail.TestRecipient)
}

func TestNewConfig_prodDisablesDebug(t *testing.T) {
	t.Setenv("ENV", "PROD")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.False(t, conf.Debug)
}

func TestNewConfig_invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"batch size", "TEST_JOB_BATCHSIZE", "0"},
		{"timezone", "TEST_TIMEZONE", "Mars/Olympus"},
		{"engine", "TEST_DATABASE_ENGINE", "mysql"},
		{"mail backend", "TEST_MAIL_BACKEND", "pigeon"},
		{"sqlite without path", "TEST_DATABASE_ENGINE", EngineSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "TEST")
			t.Setenv(tt.key, tt.value)
			if _, err := NewConfig(); err == nil {
				t.Errorf("NewConfig() error = nil with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestNewConfig_dotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	dotEnv := "QA_MAIL_ENABLED=true\nQA_JOB_CUTOFFDAYS=9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", ".env.qa"), []byte(dotEnv), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("QA_MAIL_ENABLED")
		_ = os.Unsetenv("QA_JOB_CUTOFFDAYS")
	})
	t.Setenv("ENV", "qa")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "QA", conf.Env)
	assert.False(t, conf.Debug)
	assert.True(t, conf.Mail.Enabled)
	assert.Equal(t, 9, conf.Job.CutoffDays)
}

func TestNewTestConfig(t *testing.T) {
	conf := NewTestConfig()
	assert.Equal(t, EngineSQLite, conf.Database.Engine)
	assert.Equal(t, ":memory:", conf.Database.Path)
	assert.Equal(t, "America/Bogota", conf.Location().String())
}
