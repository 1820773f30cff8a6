package diskkit

import (
	"strconv"

	"github.com/gobeaver/beaver-kit/config"
)

// Config is the environment-driven configuration for the default disk.
type Config struct {
	// Default driver to use (local, memory, s3)
	Driver string `env:"DISKKIT_DRIVER,default:local"`

	// Local driver configuration
	LocalRoot string `env:"DISKKIT_LOCAL_ROOT,default:./storage"`

	// S3 driver configuration
	S3Region          string `env:"DISKKIT_S3_REGION,default:us-east-1"`
	S3Bucket          string `env:"DISKKIT_S3_BUCKET"`
	S3Prefix          string `env:"DISKKIT_S3_PREFIX"`
	S3Endpoint        string `env:"DISKKIT_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"DISKKIT_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"DISKKIT_S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"DISKKIT_S3_FORCE_PATH_STYLE,default:false"`

	// S3TTLSeconds, when positive, is applied to written objects as an
	// expiry and Cache-Control max-age.
	S3TTLSeconds int `env:"DISKKIT_S3_TTL_SECONDS,default:0"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: ""}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ManagerConfig converts the env configuration into a single-entry manager
// configuration whose "default" disk uses the configured driver.
func (c *Config) ManagerConfig() ManagerConfig {
	def := DiskDef{Driver: c.Driver}

	switch c.Driver {
	case "local":
		def.Config = map[string]string{
			"root": c.LocalRoot,
		}
	case "s3":
		def.Config = map[string]string{
			"region":            c.S3Region,
			"bucket":            c.S3Bucket,
			"prefix":            c.S3Prefix,
			"endpoint":          c.S3Endpoint,
			"access_key_id":     c.S3AccessKeyID,
			"secret_access_key": c.S3SecretAccessKey,
			"force_path_style":  strconv.FormatBool(c.S3ForcePathStyle),
			"ttl_seconds":       strconv.Itoa(c.S3TTLSeconds),
		}
	}

	return ManagerConfig{DefaultDiskName: def}
}

// ManagerConfigFromEnv loads the environment configuration and converts it
// into a manager configuration.
func ManagerConfigFromEnv() (ManagerConfig, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ManagerConfig(), nil
}
