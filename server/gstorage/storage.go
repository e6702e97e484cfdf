package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const UPLOAD_TIMEOUT = 50 * time.Second

type GStorage struct {
	storageClient *storage.Client
}

// NewGStorage creates a storage client from the service account file at 'credentialsFilePath',
// or from application default credentials when it is empty
func NewGStorage(ctx context.Context, credentialsFilePath string, opts ...option.ClientOption) (*GStorage, error) {
	if credentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFilePath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %v", err)
	}

	return &GStorage{storageClient: client}, nil
}

// UploadFile uploads the file at 'filePath' to 'bucket' as 'object'
func (gs *GStorage) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, UPLOAD_TIMEOUT)
	defer cancel()

	wc := gs.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	return nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}
