package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"llm_dispatch/internal/models"
	"llm_dispatch/internal/utils"
)

// S3Archiver uploads drained record batches to S3 as JSON Lines objects,
// keyed by date and source pod, for long-term usage analysis.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
	source string
	logger *utils.Logger
}

// NewS3Archiver builds an archiver using the default AWS credential chain.
func NewS3Archiver(ctx context.Context, bucket, region, prefix, source string) (*S3Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		source: source,
		logger: utils.NewLogger("s3-archiver"),
	}, nil
}

// ArchiveBatch uploads records as one JSONL object and returns its key.
// Key format: dispatch/2026/08/30/gateway-0-20260830-143022-123456789.jsonl
func (a *S3Archiver) ArchiveBatch(ctx context.Context, records []*models.DispatchRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	now := time.Now()
	key := fmt.Sprintf("%s%04d/%02d/%02d/%s-%s-%d.jsonl",
		a.prefix,
		now.Year(),
		now.Month(),
		now.Day(),
		a.source,
		now.Format("20060102-150405"),
		now.Nanosecond(),
	)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			a.logger.Error("failed to encode record", "error", err)
			continue
		}
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	a.logger.Info("archived batch", "key", key, "count", len(records), "bytes", buf.Len())
	return key, nil
}
