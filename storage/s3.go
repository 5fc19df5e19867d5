package storage

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/nasahack25/airq/domain"
)

// S3 stores image files in an S3 bucket and returns the public object URL.
type S3 struct {
	s3     *s3.S3
	bucket string
}

// NewS3 returns an S3 backend for the given region and bucket.
func NewS3(region, bucket string) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &S3{
		s3:     s3.New(sess),
		bucket: bucket,
	}, nil
}

var _ Backend = &S3{}

// store uploads the image under a unique key and returns its URL.
func (c *S3) store(img *domain.Image) (string, error) {
	key := fmt.Sprintf("posts/%d%s", time.Now().UnixNano(), img.Extension)
	_, err := c.s3.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        img.File,
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key), nil
}
