// internal/storage/storage.go
//
// Storage Provisioner: per-site bucket lifecycle on an S3-compatible store.
//
// Context
// -------
// Every provisioned site owns one bucket.  The provisioner creates it, makes
// it world-readable, uploads the generated assets, and—when a later pipeline
// step fails—tears the whole bucket down again.  DeleteBucket is the
// compensating action and is deliberately best-effort: it already runs
// inside a failure path, and its own failure must never mask the original
// error, so it logs and reports a boolean instead of escalating.
//
// Public asset URLs follow `https://<bucket>.<public_domain>/<key>`; cache
// busting is the caller's concern.
//
// Notes
// -----
// • The SDK's own uniqueness enforcement on CreateBucket is the real guard
//   against concurrent name collisions; the registry pre-check only exists
//   to fail fast with a clearer error.
// • Oxford commas, two spaces after periods.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/sitewright/sitewright/internal/fault"
)

// Config carries the object-store connection settings.
type Config struct {
	Region       string
	Endpoint     string // optional; MinIO or another compatible store
	AccessKey    string
	SecretKey    string
	PublicDomain string
}

// Provisioner is safe for concurrent use.
type Provisioner struct {
	client       *s3.Client
	region       string
	publicDomain string
}

// New builds the S3 client.  Endpoint is optional and only set for
// S3-compatible stores outside AWS.
func New(ctx context.Context, cfg Config) (*Provisioner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Provisioner{
		client:       client,
		region:       cfg.Region,
		publicDomain: cfg.PublicDomain,
	}, nil
}

// CreateBucket creates the site's bucket.  A name collision or any store
// rejection surfaces as fault.ErrBucketCreation.
func (p *Provisioner) CreateBucket(ctx context.Context, name string) error {
	in := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if p.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.region),
		}
	}

	if _, err := p.client.CreateBucket(ctx, in); err != nil {
		return fmt.Errorf("%w: %v", fault.ErrBucketCreation, err)
	}
	return nil
}

// SetPublicReadPolicy grants anonymous read on every object in the bucket.
// On failure the orchestrator deletes the bucket before surfacing the error.
func (p *Provisioner) SetPublicReadPolicy(ctx context.Context, name string) error {
	policy := fmt.Sprintf(`{
	  "Version": "2012-10-17",
	  "Statement": [{
	    "Sid": "PublicReadGetObject",
	    "Effect": "Allow",
	    "Principal": "*",
	    "Action": "s3:GetObject",
	    "Resource": "arn:aws:s3:::%s/*"
	  }]
	}`, name)

	_, err := p.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(name),
		Policy: aws.String(policy),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", fault.ErrPolicy, err)
	}
	return nil
}

// UploadObjects uploads each named object and returns key → public URL.
// The first failed key aborts the batch; the orchestrator treats partial
// success as total failure and deletes the bucket.
func (p *Provisioner) UploadObjects(ctx context.Context, bucket string, objects map[string][]byte) (map[string]string, error) {
	urls := make(map[string]string, len(objects))
	for key, data := range objects {
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentTypeFor(key)),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: object %q: %v", fault.ErrUpload, key, err)
		}
		urls[key] = p.PublicURL(bucket, key)
	}
	return urls, nil
}

// DeleteBucket empties and removes the bucket.  Failures are logged, never
// escalated; the return value only feeds the compensation log line.
func (p *Provisioner) DeleteBucket(ctx context.Context, name string) bool {
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			zap.S().Errorw("bucket cleanup list failed", "bucket", name, "err", err)
			return false
		}
		if len(page.Contents) == 0 {
			break
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = p.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(name),
			Delete: &types.Delete{Objects: ids},
		})
		if err != nil {
			zap.S().Errorw("bucket cleanup delete-objects failed", "bucket", name, "err", err)
			return false
		}
	}

	if _, err := p.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); err != nil {
		zap.S().Errorw("bucket cleanup delete failed", "bucket", name, "err", err)
		return false
	}
	return true
}

// PublicURL renders the public address of one object.
func (p *Provisioner) PublicURL(bucket, key string) string {
	return "https://" + bucket + "." + p.publicDomain + "/" + key
}

// contentTypeFor picks a Content-Type from the object key.  Site uploads are
// a small closed set: the rendered document, its stylesheet, and images.
func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(key, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(key, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	default:
		return "image/png"
	}
}
