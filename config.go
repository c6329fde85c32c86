package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "./config.yml"
	DefaultEnvFile    = "./config.env"
	EnvPrefix         = "BSWS"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string          `yaml:"git_commit" envconfig:"BSWS_GIT_COMMIT" json:"git_commit"`
	GitTag             string          `yaml:"git_tag" envconfig:"BSWS_GIT_TAG" json:"git_tag"`
	BuildTime          string          `yaml:"build_time" envconfig:"BSWS_BUILD_TIME" json:"build_time"`
	IsProduction       bool            `yaml:"is_production" envconfig:"BSWS_IS_PRODUCTION" json:"is_production"`
	LogLevel           zapcore.Level   `yaml:"log_level" envconfig:"BSWS_LOG_LEVEL" json:"log_level"`
	LogFolder          string          `yaml:"log_folder" envconfig:"BSWS_LOG_FOLDER" json:"log_folder"`
	LogMaxSize         int             `yaml:"log_max_size" envconfig:"BSWS_LOG_MAX_SIZE" json:"log_max_size"`
	ProfilerEnable     bool            `yaml:"profiler_enable" envconfig:"BSWS_PROFILER_ENABLE" json:"profiler_enable"`
	OpsEndpointsEnable bool            `yaml:"ops_endpoints_enable" envconfig:"BSWS_OPS_ENDPOINTS_ENABLE" json:"ops_endpoints_enable"`
	Server             ServerConfig    `yaml:"server" json:"server"`
	RateLimit          RateLimitConfig `yaml:"ratelimit" json:"ratelimit"`
	Redis              RedisConfig     `yaml:"redis" json:"redis"`
	BoltDB             BoltDBConfig    `yaml:"boltdb" json:"boltdb"`
}

type ServerConfig struct {
	Host                    string        `yaml:"host" envconfig:"BSWS_SERVER_HOST" json:"host"`
	Port                    string        `yaml:"port" envconfig:"BSWS_SERVER_PORT" json:"port"`
	ReadTimeout             time.Duration `yaml:"read_timeout" envconfig:"BSWS_SERVER_READ_TIMEOUT" json:"read_timeout"`
	WriteTimeout            time.Duration `yaml:"write_timeout" envconfig:"BSWS_SERVER_WRITE_TIMEOUT" json:"write_timeout"`
	RequestTimeout          time.Duration `yaml:"request_timeout" envconfig:"BSWS_SERVER_REQUEST_TIMEOUT" json:"request_timeout"` // Time to wait for a request to finish
	LongRequestWriteTimeout time.Duration `yaml:"long_request_write_timeout" envconfig:"BSWS_SERVER_LONG_REQUEST_WRITE_TIMEOUT" json:"long_request_write_timeout"`
	ShutdownTimeout         time.Duration `yaml:"shutdown_timeout" envconfig:"BSWS_SERVER_SHUTDOWN_TIMEOUT" json:"shutdown_timeout"`
}

type RateLimitConfig struct {
	Enable bool    `yaml:"enable" envconfig:"BSWS_RATELIMIT_ENABLE" json:"enable"`
	Rate   float64 `yaml:"rate" envconfig:"BSWS_RATELIMIT_RATE" json:"rate"` // Requests per second per client ip
	Burst  int     `yaml:"burst" envconfig:"BSWS_RATELIMIT_BURST" json:"burst"`
}

type RedisConfig struct {
	Enable        bool          `yaml:"enable" envconfig:"BSWS_REDIS_ENABLE" json:"enable"`
	Host          string        `yaml:"host" envconfig:"BSWS_REDIS_HOST" json:"host"`
	Port          string        `yaml:"port" envconfig:"BSWS_REDIS_PORT" json:"port"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BSWS_REDIS_DIAL_TIMEOUT" json:"dial_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BSWS_REDIS_READ_TIMEOUT" json:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BSWS_REDIS_WRITE_TIMEOUT" json:"write_timeout"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BSWS_REDIS_POOL_SIZE" json:"pool_size"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BSWS_REDIS_POOL_TIMEOUT" json:"pool_timeout"`
	Username      string        `yaml:"username" envconfig:"BSWS_REDIS_USERNAME" json:"-"`
	Password      string        `yaml:"password" envconfig:"BSWS_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BSWS_REDIS_DATABASE_INDEX" json:"db_index"`
}

type BoltDBConfig struct {
	Enable     bool          `yaml:"enable" envconfig:"BSWS_BOLTDB_ENABLE" json:"enable"`
	FilePath   string        `yaml:"filepath" envconfig:"BSWS_BOLTDB_FILE_PATH" json:"filepath"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BSWS_BOLTDB_TIMEOUT" json:"timeout"`
	BucketName string        `yaml:"bucket_name" envconfig:"BSWS_BOLTDB_BUCKET_NAME" json:"bucket_name"`
	QueueSize  int           `yaml:"queue_size" envconfig:"BSWS_BOLTDB_QUEUE_SIZE" json:"queue_size"` // Capacity of the in-memory queue when redis is disabled
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if config.Redis.Enable && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.BoltDB.Enable && (len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0) {
		return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
	}

	if config.RateLimit.Enable && (config.RateLimit.Rate <= 0 || config.RateLimit.Burst <= 0) {
		return errors.New("make sure to set positive rate limit values in configuration file")
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = 10 * time.Second
	}

	if config.Server.LongRequestWriteTimeout <= 0 {
		config.Server.LongRequestWriteTimeout = 2 * config.Server.RequestTimeout
	}

	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}

	if config.BoltDB.Timeout <= 0 {
		config.BoltDB.Timeout = 5 * time.Second
	}

	if config.BoltDB.QueueSize <= 0 {
		config.BoltDB.QueueSize = 1024
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The environment file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BSWS`.
	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
