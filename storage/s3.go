package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/share-engine/interfaces"
)

// S3Backend implements a share store using Amazon S3 or compatible services.
// Records are private objects encrypted at rest with SSE-S3.
type S3Backend struct {
	client      s3iface.S3API
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Backend creates a new S3 storage backend.
// If accessKey and secretKey are empty, the default AWS credential chain is used.
func NewS3Backend(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Backend, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if accessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", accessKey, bucketName, prefix, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return newS3Backend(s3.New(sess), bucketName, prefix, uri, log), nil
}

func newS3Backend(client s3iface.S3API, bucketName, prefix, uri string, log *slog.Logger) *S3Backend {
	return &S3Backend{
		client:      client,
		bucketName:  bucketName,
		prefix:      strings.Trim(prefix, "/"),
		log:         log,
		locationURI: uri,
	}
}

// Fetch retrieves a record object from S3.
// Returns ErrShareNotFound if the object doesn't exist.
func (b *S3Backend) Fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	start := time.Now()
	key := b.getObjectKey(id)

	result, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			b.log.Debug("Share record not found in S3",
				slog.String("id", id),
				slog.String("bucket", b.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrShareNotFound
		}

		b.log.Error("Failed to get object from S3",
			slog.String("id", id),
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: failed to get object from S3: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	b.log.Debug("Fetched share record from S3",
		slog.String("id", id),
		slog.String("bucket", b.bucketName),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return unmarshalRecord(data)
}

// Store uploads the record as a JSON object.
func (b *S3Backend) Store(ctx context.Context, record *interfaces.ShareRecord) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}
	key := b.getObjectKey(record.ID())

	_, err = b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(b.bucketName),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: aws.String(s3.ServerSideEncryptionAes256),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload object to S3: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored share record in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.String("id", record.ID()))

	return nil
}

// Delete removes the record object.
// S3 deletes are idempotent, so existence is checked with a HEAD request first.
func (b *S3Backend) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	key := b.getObjectKey(id)

	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return interfaces.ErrShareNotFound
		}
		return fmt.Errorf("%w: failed to head object in S3: %v", interfaces.ErrBackendUnavailable, err)
	}

	_, err = b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete object from S3: %v", interfaces.ErrBackendUnavailable, err)
	}
	return nil
}

// Available checks if the S3 backend is accessible by attempting to head the bucket.
func (b *S3Backend) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := b.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucketName),
	})
	if err != nil {
		b.log.Warn("S3 backend unavailable",
			slog.String("bucket", b.bucketName),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

// Name returns a unique identifier for this storage backend.
func (b *S3Backend) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *S3Backend) LocationURI() string {
	return b.locationURI
}

func (b *S3Backend) getObjectKey(id string) string {
	name := id + ".json"
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	var rerr awserr.RequestFailure
	if errors.As(err, &rerr) && rerr.StatusCode() == 404 {
		return true
	}
	return false
}
