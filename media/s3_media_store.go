package media

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/pkg/errors"
)

type S3MediaStore struct {
	bucket    string
	uploader  *s3manager.Uploader
	urlPrefix string
}

// NewS3MediaStore uploads into bucket. Objects are served from urlPrefix, e.g.
// a CDN in front of the bucket; when empty the bucket's public endpoint is
// used.
func NewS3MediaStore(bucket string, region string, urlPrefix string) (*S3MediaStore, error) {
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	if urlPrefix == "" {
		urlPrefix = "https://" + bucket + ".s3." + region + ".amazonaws.com/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}

	return &S3MediaStore{
		bucket:    bucket,
		uploader:  s3manager.NewUploader(sess),
		urlPrefix: urlPrefix,
	}, nil
}

func (s *S3MediaStore) Store(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		Logger.Log.Warn("fail to upload media ", key, " to bucket ", s.bucket, " err: ", err)
		return "", errors.Wrap(err, "upload to s3")
	}
	return key, nil
}

func (s *S3MediaStore) GetUrlFromKey(key string) string {
	return s.urlPrefix + key
}

func (s *S3MediaStore) CleanUp() {
	// do nothing for s3
}
