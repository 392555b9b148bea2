// Package archive exports audit log slices to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

// LinkValidity is how long an export download URL stays usable.
const LinkValidity = 15 * time.Minute

var loadDefaultAWSConfig = config.LoadDefaultConfig

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

type S3Exporter struct {
	bucket    string
	putter    objectPutter
	presigner getPresigner
}

func NewS3Exporter(ctx context.Context, o Options) (*S3Exporter, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		// MinIO serves buckets by path, not by virtual host.
		opts.UsePathStyle = true
	})

	return newExporter(o.Bucket, client, s3.NewPresignClient(client)), nil
}

func newExporter(bucket string, p objectPutter, ps getPresigner) *S3Exporter {
	return &S3Exporter{bucket: bucket, putter: p, presigner: ps}
}

// ObjectKey returns a fresh key under the day partition of t.
func ObjectKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("audit/%04d/%02d/%02d/%s.jsonl", t.Year(), t.Month(), t.Day(), uuid.New())
}

// Export uploads entries as newline-delimited JSON and returns a
// presigned GET URL for the object.
func (e *S3Exporter) Export(ctx context.Context, key string, entries []*models.AuditEntry) (string, error) {
	body, err := encodeJSONL(entries)
	if err != nil {
		return "", err
	}

	_, err = e.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	req, err := e.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(LinkValidity))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}

func encodeJSONL(entries []*models.AuditEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encode audit entry %d: %w", e.ID, err)
		}
	}
	return buf.Bytes(), nil
}
