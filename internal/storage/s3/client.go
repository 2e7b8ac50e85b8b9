package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"patient-service/internal/config"
	apperrors "patient-service/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	emptyAWSSessionToken = ""

	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedUploadObjectFmt     = "failed to upload object: %w"

	msgImageOnly = "please upload image only"
)

// Only image attachments are accepted. Both the file extension and the
// declared content type must match the allow-list.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

type Client struct {
	svc    *s3.S3
	bucket string
	region string
	now    func() time.Time
}

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})

	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return &Client{
		svc:    s3.New(sess),
		bucket: cfg.Bucket,
		region: cfg.Region,
		now:    time.Now,
	}, nil
}

// Upload stores the file as a publicly readable object and returns its
// durable URL. Non-image uploads are rejected before any bytes are sent.
func (c *Client) Upload(ctx context.Context, fileName, author, contentType string, body io.Reader) (string, error) {
	if !AllowedImageType(fileName, contentType) {
		return "", apperrors.UploadRejected(msgImageOnly)
	}

	key := c.objectKey(fileName, author)

	_, err := c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(body),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", fmt.Errorf(errFailedUploadObjectFmt, err)
	}

	return c.ObjectURL(key), nil
}

// AllowedImageType checks the file extension and the declared MIME type
// against the image allow-list.
func AllowedImageType(fileName, contentType string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return allowedExtensions[ext] && allowedContentTypes[strings.ToLower(contentType)]
}

// objectKey composes the blob name as <unix-millis>-<file-name>-<author>.
func (c *Client) objectKey(fileName, author string) string {
	return fmt.Sprintf("%d-%s-%s", c.now().UnixMilli(), fileName, author)
}

// ObjectURL returns the public URL for an object key in the configured
// bucket.
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, url.PathEscape(key))
}
