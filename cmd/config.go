package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dronedispatch/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string
	GRPCPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBLog      bool

	JWTSecret string

	KafkaBrokers     []string
	KafkaTopicPrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GreptimeHost     string
	GreptimePort     int
	GreptimeDatabase string

	LogLevel  string
	LogFormat string
	LogFile   string

	PolicyPath string
}

// LoadConfig reads the environment, after loading envFile when it exists.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err = godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	redisDB, err := intVariable("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	greptimePort, err := intVariable("GREPTIME_PORT", 4001)
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:         variable("HTTP_PORT", "8080"),
		GRPCPort:         variable("GRPC_PORT", "9090"),
		DBDriver:         variable("DB_DRIVER", postgres.DriverPgx),
		DBHost:           variable("DB_HOST", "localhost"),
		DBPort:           variable("DB_PORT", "5432"),
		DBUser:           variable("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           variable("DB_NAME", "dronedispatch"),
		DBSslMode:        variable("DB_SSLMODE", "disable"),
		DBLog:            os.Getenv("DB_LOG") == "true",
		JWTSecret:        os.Getenv("JWT_SECRET"),
		KafkaBrokers:     list(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		GreptimeHost:     os.Getenv("GREPTIME_HOST"),
		GreptimePort:     greptimePort,
		GreptimeDatabase: variable("GREPTIME_DATABASE", "public"),
		LogLevel:         variable("LOG_LEVEL", "info"),
		LogFormat:        variable("LOG_FORMAT", "text"),
		LogFile:          os.Getenv("LOG_FILE"),
		PolicyPath:       variable("POLICY_PATH", "policy.yaml"),
	}, nil
}

// Validate checks the settings serve cannot run without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// Database builds the connection settings. The sqlite driver uses DB_NAME as
// the file name.
func (c Config) Database() postgres.DatabaseConfig {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
	if c.DBDriver == postgres.DriverSqlite {
		dsn = c.DBName
	}
	return postgres.DatabaseConfig{
		Driver:       c.DBDriver,
		DSN:          dsn,
		MaxOpenConns: 20,
		MaxIdleConns: 5,
		LogQueries:   c.DBLog,
	}
}

func variable(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intVariable(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func list(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
