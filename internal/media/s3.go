package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URLExpiry is how long a presigned URL stays valid.
const URLExpiry = 5 * time.Minute

// S3Signer presigns object URLs in one bucket. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type S3Signer struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewS3Signer(ctx context.Context, bucket, region string) (*S3Signer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &S3Signer{
		presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:    bucket,
	}, nil
}

func (s *S3Signer) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	req, err := s.presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}

func (s *S3Signer) PresignRead(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	req, err := s.presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return req.URL, nil
}
