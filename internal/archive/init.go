package archive

import (
	"context"

	"github.com/jonboulle/clockwork"

	"weather-archive/config"
)

// InitArchiver returns an S3 archiver when archiving is enabled and Nop otherwise.
func InitArchiver(ctx context.Context, cfg config.ArchiveConfig) (Archiver, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	client, err := NewS3Client(ctx, S3Options{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		Prefix:          cfg.Prefix,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return NewS3Archiver(client, cfg.Bucket, cfg.Prefix, clockwork.NewRealClock()), nil
}
