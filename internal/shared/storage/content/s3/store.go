package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"credentials-backend/internal/shared/storage/content"
)

// Store implements content.Store on Amazon S3. Object keys are derived from the
// content address, so the same bytes always land on the same key.
type Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates a new S3-backed content store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (content.Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		prefix:   strings.Trim(strings.TrimSpace(prefix), "/"),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// Add buffers and hashes the reader, then uploads the blob to its content
// address unless an object already exists there. Buffering in memory is
// acceptable because the upload handler caps request bodies well below pool
// pressure levels.
func (s *Store) Add(ctx context.Context, r io.Reader) (string, int64, string, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", fmt.Errorf("read body: %w", err)
	}

	sum := sha256.Sum256(data)
	cid := hex.EncodeToString(sum[:])
	size := int64(len(data))
	mimeType := http.DetectContentType(data)
	objectKey := s.objectKey(cid)

	_, headErr := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if headErr == nil {
		// Blob already stored under this address.
		return cid, size, mimeType, nil
	}
	var notFound *s3types.NotFound
	if !errors.As(headErr, &notFound) {
		return "", 0, "", fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, objectKey, headErr)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", 0, "", fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	return cid, size, mimeType, nil
}

// Open downloads a stored blob for reading.
func (s *Store) Open(ctx context.Context, cid string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !content.ValidCID(cid) {
		return nil, fmt.Errorf("invalid cid")
	}

	objectKey := s.objectKey(cid)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

func (s *Store) objectKey(cid string) string {
	key := cid[:2] + "/" + cid
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ content.Store = (*Store)(nil)
