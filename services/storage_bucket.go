package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

const (
	FolderUploads = "uploads"
	FolderAvatars = "avatars"
	FolderBanners = "banners"
)

// Uploader stores a blob under folder and returns its generated id.
type Uploader interface {
	Upload(ctx context.Context, folder string, data []byte) (blobId string, err error)
}

type StorageBucket struct {
	*storage.BucketHandle
}

func NewStorageBucket(ctx context.Context, app *firebase.App, bucketName string) (*StorageBucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucketHandle, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	return &StorageBucket{
		bucketHandle,
	}, nil
}

func (sb *StorageBucket) Upload(ctx context.Context, folder string, data []byte) (string, error) {
	blobId := uuid.NewString()
	writer := sb.Object(folder + "/" + blobId).NewWriter(ctx)
	writer.ContentType = http.DetectContentType(data)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("error writing blob %v/%v: %w", folder, blobId, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error finalizing blob %v/%v: %w", folder, blobId, err)
	}
	return blobId, nil
}

// DiskUploader writes blobs below a local directory. Used when no bucket is configured.
type DiskUploader struct {
	Dir string
}

func (du *DiskUploader) Upload(ctx context.Context, folder string, data []byte) (string, error) {
	blobId := uuid.NewString()
	dir := filepath.Join(du.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, blobId), data, 0o644); err != nil {
		return "", err
	}
	return blobId, nil
}
