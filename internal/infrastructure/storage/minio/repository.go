package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "bucket and key required")
	ErrObjectTooLarge = errors.New(errors.ErrCodeValidation, "object exceeds maximum upload size")
)

// PutRequest describes an object upload.  Size must be known.
type PutRequest struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket       string            `json:"bucket"`
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DocumentStore reads and writes portal documents.
type DocumentStore struct {
	client *Client
	logger logging.Logger
}

// NewDocumentStore builds a store over client.
func NewDocumentStore(client *Client, log logging.Logger) *DocumentStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentStore{client: client, logger: log}
}

// Client exposes the bucket layout.
func (s *DocumentStore) Client() *Client { return s.client }

// Put uploads req.Body.
func (s *DocumentStore) Put(ctx context.Context, req *PutRequest) (*ObjectInfo, error) {
	if req.Bucket == "" || req.Key == "" {
		return nil, ErrInvalidRequest
	}
	if req.Size < 0 || req.Size > s.client.MaxUploadSize() {
		return nil, ErrObjectTooLarge
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := s.client.api.PutObject(ctx, req.Bucket, req.Key, req.Body, req.Size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: req.Metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(req.Key)
	}
	s.logger.Debug("Object stored",
		logging.String("bucket", req.Bucket),
		logging.String("key", req.Key),
		logging.Int64("size", info.Size))
	return &ObjectInfo{
		Bucket:       info.Bucket,
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  contentType,
		LastModified: info.LastModified,
		Metadata:     req.Metadata,
	}, nil
}

// Stat returns object metadata or ErrObjectNotFound.
func (s *DocumentStore) Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	info, err := s.client.api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate(err, "stat failed")
	}
	return &ObjectInfo{
		Bucket:       bucket,
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}, nil
}

// Delete removes an object.  Removing a missing object succeeds.
func (s *DocumentStore) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return translate(err, "delete failed")
	}
	return nil
}

// PresignedURL returns a time-limited download link.  A non-empty filename
// sets the Content-Disposition of the response.
func (s *DocumentStore) PresignedURL(ctx context.Context, bucket, key, filename string) (string, time.Time, error) {
	if _, err := s.Stat(ctx, bucket, key); err != nil {
		return "", time.Time{}, err
	}
	params := url.Values{}
	if filename != "" {
		params.Set("response-content-disposition", `attachment; filename="`+filename+`"`)
	}
	expiry := s.client.cfg.PresignExpiry
	u, err := s.client.api.PresignedGetObject(ctx, bucket, key, expiry, params)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, errors.ErrCodeStorageError, "presign failed").WithDetail(key)
	}
	return u.String(), time.Now().Add(expiry), nil
}

func translate(err error, msg string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrObjectNotFound
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, msg)
}
