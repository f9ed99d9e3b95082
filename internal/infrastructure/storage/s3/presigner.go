// Package s3 hands out short-lived presigned PUT URLs so applicants upload
// document bytes straight to object storage.
package s3

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rmendes/permitflow/internal/core/ports"
)

var _ ports.UploadPresigner = (*Presigner)(nil)

type Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
}

func New(ctx context.Context, bucket, region string, ttl time.Duration) (*Presigner, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 presigner requires a bucket")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Presigner{
		client: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket: bucket,
		ttl:    ttl,
	}, nil
}

func (p *Presigner) PresignUpload(ctx context.Context, key, contentType string, sizeBytes int64) (string, time.Duration, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"declared-size": strconv.FormatInt(sizeBytes, 10),
		},
	}

	req, err := p.client.PresignPutObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = p.ttl })
	if err != nil {
		return "", 0, fmt.Errorf("presign upload: %w", err)
	}
	return req.URL, p.ttl, nil
}
