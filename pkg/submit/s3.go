package submit

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/addressform/pkg/addressform"
)

// PutObjectAPI is the subset of *s3.Client used by S3.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores each submission as a JSON object in a bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	sink, _ := submit.NewS3(s3.NewFromConfig(cfg), "my-bucket", "addresses/")
//	f := addressform.New(addressform.WithSubmitter(sink))
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3 creates an S3 sink. Objects are written under prefix.
func NewS3(client PutObjectAPI, bucket, prefix string) (*S3, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}
	return &S3{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

// Key returns the object key for a record.
func (s *S3) Key(r Record) string {
	return path.Join(s.prefix, r.ID+".json")
}

// Submit implements addressform.Submitter.
func (s *S3) Submit(ctx context.Context, v addressform.Values) error {
	rec := newRecord(v, s.now())
	body, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	key := s.Key(rec)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"submission-id": rec.ID,
			"submit-time":   rec.SubmittedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
