package cmd_test

import (
	"os"
	"path/filepath"
	"testing"

	"dronedispatch/cmd"
	"dronedispatch/internal/adapters/out/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without env file", func(t *testing.T) {
		cfg, err := cmd.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, "9090", cfg.GRPCPort)
		assert.Equal(t, postgres.DriverPgx, cfg.DBDriver)
		assert.Equal(t, 4001, cfg.GreptimePort)
		assert.Equal(t, "policy.yaml", cfg.PolicyPath)
		assert.Error(t, cfg.Validate())
	})

	t.Run("env file and environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(
			"JWT_SECRET=from-file\nKAFKA_BROKERS=kafka-1:9092, kafka-2:9092\nREDIS_DB=2\nDB_DRIVER=sqlite\nDB_NAME=dispatch.db\n",
		), 0o600))
		t.Setenv("JWT_SECRET", "from-env")
		t.Setenv("HTTP_PORT", "8181")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("REDIS_DB", "")
		t.Setenv("DB_DRIVER", "")
		t.Setenv("DB_NAME", "")

		// godotenv does not override variables that already exist, even empty ones.
		require.NoError(t, os.Unsetenv("KAFKA_BROKERS"))
		require.NoError(t, os.Unsetenv("REDIS_DB"))
		require.NoError(t, os.Unsetenv("DB_DRIVER"))
		require.NoError(t, os.Unsetenv("DB_NAME"))

		cfg, err := cmd.LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.JWTSecret)
		assert.Equal(t, "8181", cfg.HTTPPort)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 2, cfg.RedisDB)
		require.NoError(t, cfg.Validate())

		db := cfg.Database()
		assert.Equal(t, postgres.DriverSqlite, db.Driver)
		assert.Equal(t, "dispatch.db", db.DSN)
	})

	t.Run("bad number", func(t *testing.T) {
		t.Setenv("GREPTIME_PORT", "four")
		_, err := cmd.LoadConfig("")
		require.ErrorContains(t, err, "GREPTIME_PORT")
	})
}

func TestConfig_DatabaseDSN(t *testing.T) {
	cfg := cmd.Config{
		DBDriver:   postgres.DriverPq,
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "dispatch",
		DBPassword: "secret",
		DBName:     "dispatch",
		DBSslMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=dispatch password=secret dbname=dispatch sslmode=disable", cfg.Database().DSN)
}
