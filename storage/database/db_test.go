package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

func Test_dataSourceName(t *testing.T) {
	pg := func(engine string, disableTLS bool) *core.Config {
		conf := core.NewTestConfig()
		conf.Database = core.DatabaseConfig{
			Engine: engine, Host: "db", Port: 5432, Name: "adso076",
			User: "sofia", Password: "s3cret", AdminUser: "postgres", AdminPassword: "root",
			DisableTLS: disableTLS,
		}
		return conf
	}

	tests := []struct {
		name   string
		dbName string
		admin  bool
		conf   *core.Config
		want   string
	}{
		{"sqlite", "", false, core.NewTestConfig(), ":memory:?_foreign_keys=on"},
		{"postgres", "adso076", false, pg(core.EnginePostgres, true), "postgres://sofia:s3cret@db:5432/adso076?sslmode=disable&timezone=utc"},
		{"pgx with tls", "adso076", false, pg(core.EnginePgx, false), "postgres://sofia:s3cret@db:5432/adso076?sslmode=require&timezone=utc"},
		{"admin", "postgres", true, pg(core.EnginePostgres, true), "postgres://postgres:root@db:5432/postgres?sslmode=disable&timezone=utc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dataSourceName(tt.dbName, tt.admin, tt.conf); got != tt.want {
				t.Errorf("dataSourceName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	conf := core.NewTestConfig()
	db, err := Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, CreateIfNotExist(conf))
	require.NoError(t, Migrate(context.Background(), db, conf.Database.Engine))

	for _, table := range []string{"instructors", "fiches", "schedules", "processing_logs"} {
		var n int
		err = db.Get(&n, "SELECT COUNT(*) FROM "+table)
		assert.NoError(t, err, table)
	}
}

func TestRunMigrations(t *testing.T) {
	conf := core.NewTestConfig()
	db, err := Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var gotCommand string
	var gotArgs []string
	oldRun := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = oldRun })
	gooseRunFunc = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
		gotCommand, gotArgs = command, args
		if dir != migrationsDir {
			t.Errorf("dir = %v, want %v", dir, migrationsDir)
		}
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db, conf.Database.Engine, "up-to", "1"))
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, []string{"1"}, gotArgs)
}
