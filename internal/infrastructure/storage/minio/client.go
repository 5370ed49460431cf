// Package minio stores compliance certificates and assessment report exports
// in an S3-compatible object store.
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const (
	defaultRegion       = "us-east-1"
	reportRetentionDays = 30
	connectTimeout      = 10 * time.Second
)

// ObjectAPI is the subset of *minio.Client used by this package.
type ObjectAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Client owns the connection and the portal's bucket layout.
type Client struct {
	api    ObjectAPI
	cfg    config.MinIOConfig
	logger logging.Logger
}

// NewClient connects to cfg.Endpoint, creates missing buckets and installs
// the report expiry rule.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}

	c := NewClientWithAPI(api, cfg, log)
	if err := c.EnsureBuckets(ctx); err != nil {
		return nil, err
	}
	c.setupLifecycle(ctx)

	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewClientWithAPI wraps an existing API implementation.
func NewClientWithAPI(api ObjectAPI, cfg config.MinIOConfig, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.CertificateBucket == "" {
		cfg.CertificateBucket = config.DefaultMinIOCertificateBucket
	}
	if cfg.ReportBucket == "" {
		cfg.ReportBucket = config.DefaultMinIOReportBucket
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = config.DefaultMinIOPresignExpiry
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = config.DefaultMinIOMaxUploadSize
	}
	return &Client{api: api, cfg: cfg, logger: log}
}

// CertificateBucket holds compliance certificate uploads.
func (c *Client) CertificateBucket() string { return c.cfg.CertificateBucket }

// ReportBucket holds assessment report exports.
func (c *Client) ReportBucket() string { return c.cfg.ReportBucket }

// MaxUploadSize is the largest accepted upload in bytes.
func (c *Client) MaxUploadSize() int64 { return c.cfg.MaxUploadSize }

// EnsureBuckets creates the certificate and report buckets when absent.
func (c *Client) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{c.cfg.CertificateBucket, c.cfg.ReportBucket} {
		exists, err := c.api.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket existence").WithDetail(bucket)
		}
		if exists {
			continue
		}
		if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket").WithDetail(bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}
	return nil
}

// Report exports are regenerated on demand, so old ones expire.
func (c *Client) setupLifecycle(ctx context.Context) {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{{
		ID:         "report-expiry",
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(reportRetentionDays)},
	}}
	if err := c.api.SetBucketLifecycle(ctx, c.cfg.ReportBucket, lc); err != nil {
		c.logger.Warn("Failed to set report bucket lifecycle", logging.Err(err))
	}
}

// Name identifies the dependency in readiness reports.
func (c *Client) Name() string { return "minio" }

// Check verifies the certificate bucket is reachable.
func (c *Client) Check(ctx context.Context) error {
	ok, err := c.api.BucketExists(ctx, c.cfg.CertificateBucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "minio health check failed")
	}
	if !ok {
		return errors.New(errors.ErrCodeStorageError, "certificate bucket missing").WithDetail(c.cfg.CertificateBucket)
	}
	return nil
}
