package s3

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gobeaver/diskkit"
)

func init() {
	diskkit.RegisterDriver("s3", createDisk)
}

func createDisk(name string, def diskkit.DiskDef) (diskkit.Disk, error) {
	bucket := def.Config["bucket"]
	if bucket == "" {
		return nil, fmt.Errorf("s3 driver: %q requires a bucket", name)
	}

	client, err := resolveClient(def)
	if err != nil {
		return nil, fmt.Errorf("s3 driver: %w", err)
	}

	opts := []AdapterOption{withName(name)}
	if prefix := def.Config["prefix"]; prefix != "" {
		opts = append(opts, WithPrefix(prefix))
	}
	if ttl := def.Config["ttl_seconds"]; ttl != "" {
		seconds, err := strconv.Atoi(ttl)
		if err != nil {
			return nil, fmt.Errorf("s3 driver: invalid ttl_seconds %q: %w", ttl, err)
		}
		if seconds > 0 {
			opts = append(opts, WithTTL(time.Duration(seconds)*time.Second))
		}
	}

	return New(client, bucket, opts...), nil
}

// resolveClient uses a caller-supplied client when present, otherwise builds
// one from the definition's config.
func resolveClient(def diskkit.DiskDef) (API, error) {
	if def.Client != nil {
		client, ok := def.Client.(API)
		if !ok {
			return nil, fmt.Errorf("unusable client of type %T", def.Client)
		}
		return client, nil
	}
	return newClient(def.Config)
}

func newClient(cfg map[string]string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg["region"]),
	)
	if err != nil {
		return nil, err
	}

	if cfg["access_key_id"] != "" && cfg["secret_access_key"] != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(
			cfg["access_key_id"],
			cfg["secret_access_key"],
			"",
		)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg["endpoint"] != "" {
			o.BaseEndpoint = aws.String(cfg["endpoint"])
		}
		if cfg["force_path_style"] == "true" {
			o.UsePathStyle = true
		}
	}), nil
}
