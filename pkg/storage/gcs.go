package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/cyclopcam/logs"
)

// StorageGCS is a Google Cloud Storage bucket.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS).
type StorageGCS struct {
	bucketName string
	bucket     *gcs.BucketHandle
	log        logs.Log
}

func NewStorageGCS(log logs.Log, bucketName string) (*StorageGCS, error) {
	client, err := gcs.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("Failed to create GCS client: %w", err)
	}
	return &StorageGCS{
		bucketName: bucketName,
		bucket:     client.Bucket(bucketName),
		log:        log,
	}, nil
}

func (s *StorageGCS) WriteFile(name string) (io.WriteCloser, error) {
	s.log.Debugf("Uploading %v%v/%v", GCSScheme, s.bucketName, name)
	return s.bucket.Object(name).NewWriter(context.Background()), nil
}

func (s *StorageGCS) ReadFile(name string) (io.ReadCloser, error) {
	s.log.Debugf("Downloading %v%v/%v", GCSScheme, s.bucketName, name)
	r, err := s.bucket.Object(name).NewReader(context.Background())
	if err != nil {
		return nil, fmt.Errorf("Failed to read %v%v/%v: %w", GCSScheme, s.bucketName, name, err)
	}
	return r, nil
}
