package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	PresignTTL time.Duration
}

// Client wraps the S3 SDK for poll image uploads. Clients upload directly
// with a presigned PUT; the API never proxies image bytes.
type Client struct {
	cfg     S3Config
	s3      *s3.Client
	presign *s3.PresignClient
}

// Allowed image types for poll images.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MaxImageBytes caps poll image uploads at 5 MiB.
const MaxImageBytes = 5 << 20

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}
	if cfg.PresignTTL == 0 {
		cfg.PresignTTL = 15 * time.Minute
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		cfg:     cfg,
		s3:      s3Client,
		presign: s3.NewPresignClient(s3Client),
	}, nil
}

// ValidateImage rejects uploads before any presign is issued: wrong MIME
// type and oversize files never reach storage.
func (c *Client) ValidateImage(contentType string, sizeBytes int64) error {
	if _, ok := allowedImageTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("unsupported image type %q", contentType)
	}
	if sizeBytes <= 0 || sizeBytes > MaxImageBytes {
		return fmt.Errorf("image size %d out of range", sizeBytes)
	}
	return nil
}

// Ext returns the canonical file extension for an allowed content type.
func (c *Client) Ext(contentType string) string {
	return allowedImageTypes[strings.ToLower(contentType)]
}

// PresignPut returns a presigned PUT URL for the object key.
func (c *Client) PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (string, map[string]string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.Bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(sizeBytes),
	}, s3.WithPresignExpires(c.cfg.PresignTTL))
	if err != nil {
		return "", nil, err
	}

	headers := map[string]string{"Content-Type": contentType}
	return req.URL, headers, nil
}

// PublicURL returns the URL under which an uploaded object is served.
func (c *Client) PublicURL(key string) string {
	base := c.cfg.PublicBase
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.cfg.Bucket, c.cfg.Region)
	}
	return strings.TrimRight(base, "/") + "/" + key
}
