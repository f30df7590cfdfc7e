package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/kozaktomas/face-gate/internal/facematch"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Matching  MatchingConfig `yaml:"matching"`
	Extractor ExtractorConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Web       WebConfig
}

type MatchingConfig struct {
	EnrollTolerance    float64 `yaml:"enroll_tolerance"`    // login recognition and enrollment face check
	DuplicateTolerance float64 `yaml:"duplicate_tolerance"` // duplicate clustering
	ClusterPolicy      string  `yaml:"cluster_policy"`      // greedy or transitive
	EncodingDim        int     `yaml:"encoding_dim"`        // expected encoding length, defaults to 128
}

type ExtractorConfig struct {
	URL string // defaults to http://localhost:8000
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MariaDBDSN   string // MariaDB DSN (e.g., facegate:facegate@tcp(mariadb:3306)/facegate)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type StorageConfig struct {
	EncodingsDir string // file backend directory, used when no database is configured
	PhotosDir    string
	AuditLogPath string
}

type WebConfig struct {
	AdminToken string // bearer token for /admin routes, admin routes are open when empty
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString returns the env var or the default when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var defaults Config
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	m := defaults.Matching

	return &Config{
		Matching: MatchingConfig{
			EnrollTolerance:    envFloat("FACE_ENROLL_TOLERANCE", m.EnrollTolerance),
			DuplicateTolerance: envFloat("FACE_DUPLICATE_TOLERANCE", m.DuplicateTolerance),
			ClusterPolicy:      envString("FACE_CLUSTER_POLICY", m.ClusterPolicy),
			EncodingDim:        envInt("FACE_ENCODING_DIM", m.EncodingDim),
		},
		Extractor: ExtractorConfig{
			URL: envString("EMBEDDING_URL", "http://localhost:8000"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Storage: StorageConfig{
			EncodingsDir: envString("ENCODINGS_DIR", "./db/encodings"),
			PhotosDir:    envString("PHOTOS_DIR", "./db/photos"),
			AuditLogPath: envString("AUDIT_LOG_PATH", "./log.txt"),
		},
		Web: WebConfig{
			AdminToken: os.Getenv("WEB_ADMIN_TOKEN"),
		},
	}
}

// Policy returns the parsed duplicate clustering policy.
func (m MatchingConfig) Policy() (facematch.ClusterPolicy, error) {
	return facematch.ParseClusterPolicy(m.ClusterPolicy)
}

// Validate rejects matching settings that cannot produce meaningful results.
func (c *Config) Validate() error {
	m := c.Matching
	if m.EnrollTolerance <= 0 {
		return fmt.Errorf("enroll tolerance must be positive, got %v", m.EnrollTolerance)
	}
	if m.DuplicateTolerance <= 0 {
		return fmt.Errorf("duplicate tolerance must be positive, got %v", m.DuplicateTolerance)
	}
	if m.DuplicateTolerance > m.EnrollTolerance {
		return fmt.Errorf("duplicate tolerance %v is looser than enroll tolerance %v", m.DuplicateTolerance, m.EnrollTolerance)
	}
	if m.EncodingDim <= 0 {
		return errors.New("encoding dimension must be positive")
	}
	if _, err := m.Policy(); err != nil {
		return err
	}
	if c.Database.URL != "" && c.Database.MariaDBDSN != "" {
		return errors.New("DATABASE_URL and MARIADB_DSN are mutually exclusive")
	}
	return nil
}
