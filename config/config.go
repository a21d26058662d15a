package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	DB      DBConfig      `yaml:"db"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Redis   RedisConfig   `yaml:"redis"`
	Grading GradingConfig `yaml:"grading"`
	Worker  WorkerConfig  `yaml:"worker"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"` //nolint:gosec // config struct, not hardcoded cred
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type KafkaConfig struct {
	Brokers          []string      `yaml:"brokers"`
	GradeEventsTopic string        `yaml:"grade_events_topic"`
	ResultsTopic     string        `yaml:"results_topic"`
	BatchTimeout     time.Duration `yaml:"batch_timeout"`
}

// RedisConfig is optional; an empty address disables the topic cache.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"` //nolint:gosec // config struct, not hardcoded cred
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type GradingConfig struct {
	Alphabet            string        `yaml:"alphabet"`
	VoidMarker          string        `yaml:"void_marker"`
	LatePenaltyPercent  int           `yaml:"late_penalty_percent"`
	WorkerPoolSize      int           `yaml:"worker_pool_size"`
	WriteRetries        int           `yaml:"write_retries"`
	WriteRetryBaseDelay time.Duration `yaml:"write_retry_base_delay"`
	NotifyConcurrency   int           `yaml:"notify_concurrency"`
	BreakerThreshold    int           `yaml:"breaker_threshold"`
	BreakerReset        time.Duration `yaml:"breaker_reset"`
}

type WorkerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Window   time.Duration `yaml:"window"`
}

func Load() (*Config, error) {
	configPath := getConfigPath()
	data, err := os.ReadFile(configPath) //nolint:gosec // config path from env/flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML, then applies defaults and environment
// overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	possiblePaths := []string{
		"config/config.yaml",
		"/etc/grading-service/config.yaml",
		"./config.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "config.yaml"
}

func setDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}

	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}

	if cfg.Kafka.GradeEventsTopic == "" {
		cfg.Kafka.GradeEventsTopic = "grade-changes"
	}
	if cfg.Kafka.ResultsTopic == "" {
		cfg.Kafka.ResultsTopic = "test-results"
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 50 * time.Millisecond
	}

	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 5 * time.Minute
	}

	if cfg.Grading.Alphabet == "" {
		cfg.Grading.Alphabet = "abcdefghijklmnopqrstuvwyz"
	}
	if cfg.Grading.VoidMarker == "" {
		cfg.Grading.VoidMarker = "x"
	}
	if cfg.Grading.LatePenaltyPercent == 0 {
		cfg.Grading.LatePenaltyPercent = 80
	}
	if cfg.Grading.WorkerPoolSize == 0 {
		cfg.Grading.WorkerPoolSize = 8
	}
	if cfg.Grading.WriteRetries == 0 {
		cfg.Grading.WriteRetries = 3
	}
	if cfg.Grading.WriteRetryBaseDelay == 0 {
		cfg.Grading.WriteRetryBaseDelay = 100 * time.Millisecond
	}
	if cfg.Grading.NotifyConcurrency == 0 {
		cfg.Grading.NotifyConcurrency = 16
	}
	if cfg.Grading.BreakerThreshold == 0 {
		cfg.Grading.BreakerThreshold = 5
	}
	if cfg.Grading.BreakerReset == 0 {
		cfg.Grading.BreakerReset = 30 * time.Second
	}

	if cfg.Worker.Interval == 0 {
		cfg.Worker.Interval = 10 * time.Minute
	}
	if cfg.Worker.Window == 0 {
		cfg.Worker.Window = 10 * time.Minute
	}
}

func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("HTTP_ADDRESS"); val != "" {
		cfg.HTTP.Address = val
	}

	if val := os.Getenv("DB_HOST"); val != "" {
		cfg.DB.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.DB.Port = port
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		cfg.DB.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		cfg.DB.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		cfg.DB.DBName = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		cfg.DB.SSLMode = val
	}

	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		cfg.Kafka.Brokers = strings.Split(val, ",")
	}
	if val := os.Getenv("KAFKA_GRADE_EVENTS_TOPIC"); val != "" {
		cfg.Kafka.GradeEventsTopic = val
	}
	if val := os.Getenv("KAFKA_RESULTS_TOPIC"); val != "" {
		cfg.Kafka.ResultsTopic = val
	}

	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}

	if val := os.Getenv("GRADING_ALPHABET"); val != "" {
		cfg.Grading.Alphabet = val
	}
	if val := os.Getenv("GRADING_LATE_PENALTY_PERCENT"); val != "" {
		if percent, err := strconv.Atoi(val); err == nil {
			cfg.Grading.LatePenaltyPercent = percent
		}
	}
	if val := os.Getenv("GRADING_WORKER_POOL_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			cfg.Grading.WorkerPoolSize = size
		}
	}

	if val := os.Getenv("WORKER_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Worker.Enabled = enabled
		}
	}
	if val := os.Getenv("WORKER_INTERVAL"); val != "" {
		if interval, err := time.ParseDuration(val); err == nil {
			cfg.Worker.Interval = interval
		}
	}
}

func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one Kafka broker must be specified")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.DBName == "" {
		return fmt.Errorf("database configuration is incomplete")
	}

	if len(cfg.Grading.VoidMarker) != 1 {
		return fmt.Errorf("void marker must be a single character")
	}

	if cfg.Grading.LatePenaltyPercent < 0 || cfg.Grading.LatePenaltyPercent > 100 {
		return fmt.Errorf("late penalty percent must be within [0, 100]")
	}

	return nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}
