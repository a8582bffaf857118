package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Storage  *storageConfig
	Ocr      *ocrConfig
	Worker   *workerConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"intake"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`

	// When set, the credential bundle at this path overrides the
	// individual DB_* variables above.
	CredentialsFile string `envconfig:"DB_CREDENTIALS_FILE" default:""`
}

type storageConfig struct {
	Endpoint      string `envconfig:"INTAKE_OCR_S3_ENDPOINT" default:"localhost:9000"`
	DefaultBucket string `envconfig:"INTAKE_OCR_S3_BUCKET" default:"intake-documents"`
	AccessKey     string `envconfig:"INTAKE_OCR_S3_ACCESS_KEY" default:""`
	SecretKey     string `envconfig:"INTAKE_OCR_S3_SECRET_KEY" default:""`
	UseSSL        bool   `envconfig:"INTAKE_OCR_S3_USE_SSL" default:"false"`
}

type ocrConfig struct {
	Endpoint string `envconfig:"INTAKE_OCR_DETECT_ENDPOINT" default:"http://localhost:8500/v1/detect-text"`
	Timeout  string `envconfig:"INTAKE_OCR_DETECT_TIMEOUT" default:"2m"`
}

type workerConfig struct {
	StatusAddress  string `envconfig:"INTAKE_OCR_STATUS_ADDRESS" default:":8080"`
	LogLevel       string `envconfig:"INTAKE_OCR_LOG_LEVEL" default:"info"`
	MaxJobAttempts int    `envconfig:"INTAKE_OCR_MAX_JOB_ATTEMPTS" default:"3"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDefault returns a configuration without reading the environment,
// suitable for tests running against an in-memory sqlite database.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: "file::memory:?cache=shared"},
		Storage:  &storageConfig{DefaultBucket: "intake-documents"},
		Ocr:      &ocrConfig{},
		Worker:   &workerConfig{LogLevel: "info", MaxJobAttempts: 3},
	}
}
