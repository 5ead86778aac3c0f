package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StoredFile describes an uploaded file. URL is empty when the file is
// served by this API and the caller must build it from Path.
type StoredFile struct {
	Path string
	URL  string
}

type FileStorage interface {
	Save(ctx context.Context, name string, body io.Reader, contentType string) (StoredFile, error)
}

// LocalStorage writes files under Dir, which is served at /uploads
type LocalStorage struct {
	Dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStorage{Dir: dir}, nil
}

func (l *LocalStorage) Save(_ context.Context, name string, body io.Reader, _ string) (StoredFile, error) {
	name = filepath.Base(name)
	f, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return StoredFile{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return StoredFile{}, err
	}
	return StoredFile{Path: "/uploads/" + name}, nil
}

// S3Storage uploads files to a bucket
type S3Storage struct {
	uploader  *manager.Uploader
	bucket    string
	publicURL string
}

func NewS3Storage(ctx context.Context, bucket, publicURL string) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Storage{uploader: manager.NewUploader(client), bucket: bucket, publicURL: publicURL}, nil
}

func (s *S3Storage) Save(ctx context.Context, name string, body io.Reader, contentType string) (StoredFile, error) {
	key := "uploads/" + filepath.Base(name)
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return StoredFile{}, err
	}

	url := result.Location
	if s.publicURL != "" {
		url = s.publicURL + "/" + key
	}
	return StoredFile{Path: "/" + key, URL: url}, nil
}
