// Package archive keeps copies of uploaded workbooks in object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
)

// Archiver stores the raw bytes of an uploaded file and returns its key.
type Archiver interface {
	Archive(ctx context.Context, batchID string, index int, name string, body []byte) (string, error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Archive(context.Context, string, int, string, []byte) (string, error) { return "", nil }

// ObjectPutter is the part of *s3.Client used by S3Archiver.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	clock  clockwork.Clock
}

// NewS3Client builds an S3 client. A custom endpoint switches to path-style
// addressing for S3-compatible stores; static keys override the default
// credential chain.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Archiver(client ObjectPutter, bucket, prefix string, clock clockwork.Clock) *S3Archiver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		clock:  clock,
	}
}

// Key returns prefix/YYYY/MM/DD/<batch>/<index>-<name> for the current UTC day.
func (a *S3Archiver) Key(batchID string, index int, name string) string {
	now := a.clock.Now().UTC()
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload.xlsx"
	}
	return path.Join(a.prefix, now.Format("2006/01/02"), batchID, fmt.Sprintf("%d-%s", index, base))
}

func (a *S3Archiver) Archive(ctx context.Context, batchID string, index int, name string, body []byte) (string, error) {
	key := a.Key(batchID, index, name)
	if err := validateKey(key); err != nil {
		return "", err
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(mimetype.Detect(body).String()),
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s", key)
	}
	return key, nil
}

func validateKey(key string) error {
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return errors.New("path traversal detected in archive key")
		}
	}
	return nil
}
