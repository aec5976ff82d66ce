package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/config"
)

// objectPutter is the slice of *s3.Client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

type S3Uploader struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3Uploader builds an uploader for an S3-compatible endpoint (AWS,
// MinIO). Path-style addressing is used so MinIO works without DNS setup.
func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Uploader(client, cfg.S3Bucket, cfg.S3PublicBaseURL), nil
}

func newS3Uploader(client objectPutter, bucket, publicBaseURL string) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func (u *S3Uploader) Upload(ctx context.Context, folder Folder, data string) (string, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return "", err
	}

	key := u.objectKey(folder, img)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	return u.publicBaseURL + "/" + key, nil
}

func (u *S3Uploader) objectKey(folder Folder, img *Image) string {
	d := u.now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", folder, d.Year(), d.Month(), d.Day(), uuid.New(), img.Ext())
}
