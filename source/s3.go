package source

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectGetter is the part of the S3 client used by S3.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads objects of a bucket. Names are keys below Prefix.
type S3 struct {
	Client ObjectGetter
	Bucket string
	Prefix string
}

// S3Config holds the connection parameters of an S3 compatible service.
// Endpoint and the static keys are optional: without them the default AWS
// configuration of the environment is used.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client creates an S3 client.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if len(cfg.Region) > 0 {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if len(cfg.AccessKey) > 0 {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if len(cfg.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Fetch reads the object Prefix/name.
func (b S3) Fetch(ctx context.Context, name string) (string, error) {
	key := path.Join(b.Prefix, name)

	out, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", fmt.Errorf("%w: s3://%s/%s", ErrNotFound, b.Bucket, key)
		}
		return "", fmt.Errorf("getting s3://%s/%s: %w", b.Bucket, key, err)
	}
	defer out.Body.Close()

	return readAll(out.Body)
}
