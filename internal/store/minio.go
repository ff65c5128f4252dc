package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
	"github.com/nikhil/procurement-ai-agent/backend/internal/procure"
)

const (
	metaFilename   = "Filename"
	metaUploadedAt = "Uploaded-At"
)

// MinioStore backs the reference-document store with a MinIO bucket.
// Each document is one object keyed by a generated id, with the original
// filename and upload time kept as object metadata.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// Upload stores document bytes under a fresh id and returns it.
func (s *MinioStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	id := "file-" + uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, id, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserMetadata: map[string]string{
			metaFilename:   filename,
			metaUploadedAt: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return id, nil
}

// GetContent retrieves the document text.
func (s *MinioStore) GetContent(ctx context.Context, id string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("minio get: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", procure.ErrDocumentNotFound
		}
		return "", fmt.Errorf("minio read: %w", err)
	}
	return string(data), nil
}

// Delete removes a document and reports whether it actually existed.
func (s *MinioStore) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("minio stat: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("minio remove: %w", err)
	}
	return true, nil
}

// List returns every stored document with the metadata MinIO holds for it.
func (s *MinioStore) List(ctx context.Context) ([]models.StoredDocument, error) {
	var docs []models.StoredDocument
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{WithMetadata: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio list: %w", obj.Err)
		}
		doc := models.StoredDocument{ID: obj.Key}
		if info, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{}); err == nil {
			doc.Filename = info.UserMetadata[metaFilename]
			if ts, perr := time.Parse(time.RFC3339, info.UserMetadata[metaUploadedAt]); perr == nil {
				doc.UploadedAt = ts
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
