package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/mealbot/core/config"
	coredatabase "github.com/m3rciful/mealbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(Options{})
	require.Error(t, err)
}

func TestRunSkipsDisabledDatabase(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	require.Nil(t, res.DB)
	require.False(t, connected)
}

func TestRunMigratesBeforeConnect(t *testing.T) {
	var steps []string
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		Migrations: fstest.MapFS{"000001_x.up.sql": {Data: []byte("SELECT 1;")}},
		LoggerInit: noLogger,
		Migrate: func(cfg coredatabase.Config, fsys fs.FS) error {
			require.Equal(t, "db", cfg.Host)
			require.NotNil(t, fsys)
			steps = append(steps, "migrate")
			return nil
		},
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return &sqlx.DB{}, nil
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.DB)
	require.Equal(t, []string{"migrate", "connect"}, steps)
}

func TestRunPropagatesFailures(t *testing.T) {
	boom := errors.New("boom")

	_, err := Run(Options{Config: &coreconfig.Config{}, LoggerInit: func(*coreconfig.Config) error { return boom }})
	require.ErrorIs(t, err, boom)

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		Migrations: fstest.MapFS{},
		LoggerInit: noLogger,
		Migrate:    func(coredatabase.Config, fs.FS) error { return boom },
	})
	require.ErrorIs(t, err, boom)

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, boom },
	})
	require.ErrorIs(t, err, boom)
}
