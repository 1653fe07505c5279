package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

// AzureStore implements Store on one Azure Blob Storage container.
type AzureStore struct {
	client      *azblob.Client
	logger      logging.Logger
	accountName string
	container   string
}

// NewAzureStore creates a store bound to a container.
// accountKey is optional; without it the default Azure credential chain
// (managed identity, environment, CLI) is used.
func NewAzureStore(accountName, accountKey, container string, logger logging.Logger) (*AzureStore, error) {
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	var client *azblob.Client

	if accountKey == "" {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
		}
	} else {
		cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
		}
	}

	return &AzureStore{
		client:      client,
		logger:      logger,
		accountName: accountName,
		container:   container,
	}, nil
}

// Upload stores a document in the container, creating the container on
// first use. The content type is recorded by callers that need it; the
// stream itself is stored as-is.
func (a *AzureStore) Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	logger := a.logger.With(
		logging.NewField("operation", "store.upload"),
		logging.NewField("document", name),
	)

	// Container might already exist, which is fine.
	if _, err := a.client.CreateContainer(ctx, a.container, nil); err != nil {
		logger.Debug("container create result", logging.NewField("error", err.Error()))
	}

	if _, err := a.client.UploadStream(ctx, a.container, name, data, &azblob.UploadStreamOptions{}); err != nil {
		logger.Error("failed to upload document", logging.NewField("error", err))
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	url := a.documentURL(name)
	logger.Info("document uploaded", logging.NewField("url", url))
	return url, nil
}

// Get opens a stored document for reading.
func (a *AzureStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("storage: %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	return resp.Body, nil
}

// Delete removes a stored document.
func (a *AzureStore) Delete(ctx context.Context, name string) error {
	if _, err := a.client.DeleteBlob(ctx, a.container, name, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("storage: %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	a.logger.Info("document deleted",
		logging.NewField("operation", "store.delete"),
		logging.NewField("document", name))
	return nil
}

// Exists checks whether a document is stored.
func (a *AzureStore) Exists(ctx context.Context, name string) (bool, error) {
	// A one-byte ranged download is the cheapest existence probe the
	// flat client offers.
	_, err := a.client.DownloadStream(ctx, a.container, name, &azblob.DownloadStreamOptions{
		Range: azblob.HTTPRange{Offset: 0, Count: 1},
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check document existence: %w", err)
	}
	return true, nil
}

// List enumerates stored documents with an optional name prefix.
func (a *AzureStore) List(ctx context.Context, prefix string) ([]DocumentInfo, error) {
	logger := a.logger.With(
		logging.NewField("operation", "store.list"),
		logging.NewField("prefix", prefix),
	)

	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	var docs []DocumentInfo
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			logger.Error("failed to list documents", logging.NewField("error", err))
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		for _, item := range page.Segment.BlobItems {
			doc := DocumentInfo{
				Name: *item.Name,
				Size: *item.Properties.ContentLength,
				URL:  a.documentURL(*item.Name),
			}
			if item.Properties.ContentType != nil {
				doc.ContentType = *item.Properties.ContentType
			}
			if item.Properties.LastModified != nil {
				doc.LastModified = item.Properties.LastModified.Format(time.RFC3339)
			}
			docs = append(docs, doc)
		}
	}

	logger.Debug("documents listed", logging.NewField("count", len(docs)))
	return docs, nil
}

func (a *AzureStore) documentURL(name string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", a.accountName, a.container, name)
}

func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "BlobNotFound")
}
