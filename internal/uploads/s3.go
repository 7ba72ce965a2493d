package uploads

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"boatbooking/internal/domain/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps identity documents in a private bucket under id-proofs/<date>/.
type S3Store struct {
	Bucket   string
	MaxBytes int64
	client   putObjectAPI
}

// NewS3Store uses the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket string, maxBytes int64) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{Bucket: bucket, MaxBytes: maxBytes, client: s3.NewFromConfig(cfg)}, nil
}

func (s *S3Store) Store(ctx context.Context, doc models.IDDocument) (string, error) {
	ext, contentType, err := CheckDocument(doc, s.MaxBytes)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("id-proofs/%s/%s%s", time.Now().UTC().Format("2006-01-02"), uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.Bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(doc.Data),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return "", fmt.Errorf("put identity document: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.Bucket, key), nil
}
