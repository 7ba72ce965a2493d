package uploads

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boatbooking/internal/domain/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestLocalStoreWritesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ids")
	store := LocalStore{Dir: dir, MaxBytes: 1024}

	ref, err := store.Store(context.Background(), models.IDDocument{Filename: "Passport.PNG", Data: []byte("png-bytes")})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, dir))
	assert.Equal(t, ".png", filepath.Ext(ref))
	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStoreRejectsBadDocuments(t *testing.T) {
	store := LocalStore{Dir: t.TempDir(), MaxBytes: 4}
	ctx := context.Background()

	_, err := store.Store(ctx, models.IDDocument{Filename: "a.png"})
	assert.Error(t, err, "empty")

	_, err = store.Store(ctx, models.IDDocument{Filename: "a.png", Data: []byte("too large")})
	assert.Error(t, err, "oversized")

	_, err = store.Store(ctx, models.IDDocument{Filename: "a.exe", Data: []byte("x")})
	assert.Error(t, err, "extension")
}

func TestS3StorePutsObject(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{Bucket: "ids", MaxBytes: 1024, client: fake}

	ref, err := store.Store(context.Background(), models.IDDocument{Filename: "card.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "s3://ids/id-proofs/"))
	assert.Equal(t, "ids", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "%PDF", string(fake.body))
}

func TestS3StorePropagatesErrors(t *testing.T) {
	store := &S3Store{Bucket: "ids", client: &fakeS3{err: errors.New("access denied")}}
	_, err := store.Store(context.Background(), models.IDDocument{Filename: "card.jpg", Data: []byte("x")})
	assert.Error(t, err)
}
