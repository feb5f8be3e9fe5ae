// Package publish uploads validation reports to an Azure Blob Storage
// container.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// blobUploader is the part of *azblob.Client the publisher needs.
type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// newCredential is replaced in tests.
var newCredential = func() (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}

// Uploaded describes one published file.
type Uploaded struct {
	Path string
	Blob string
	URL  string
}

// Publisher uploads report files to one container.
type Publisher struct {
	accountURL string
	container  string
	client     blobUploader
}

// New creates a Publisher for the container at accountURL, authenticating
// with the default Azure credential chain.
func New(accountURL, container string) (*Publisher, error) {
	if accountURL == "" || container == "" {
		return nil, errors.New("publish requires both an account URL and a container")
	}

	cred, err := newCredential()
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}

	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client for %s: %w", accountURL, err)
	}

	return newPublisher(accountURL, container, client), nil
}

func newPublisher(accountURL, container string, client blobUploader) *Publisher {
	return &Publisher{
		accountURL: strings.TrimSuffix(accountURL, "/"),
		container:  container,
		client:     client,
	}
}

// Publish uploads each file, stopping at the first failure. Files already
// uploaded are returned alongside the error.
func (p *Publisher) Publish(ctx context.Context, paths []string) ([]Uploaded, error) {
	var uploaded []Uploaded

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return uploaded, fmt.Errorf("reading %s: %w", path, err)
		}

		name := BlobName(path)
		contentType := ContentType(path)

		slog.Debug("Uploading report", "path", path, "blob", name, "container", p.container)

		_, err = p.client.UploadBuffer(ctx, p.container, name, data, &azblob.UploadBufferOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		})
		if err != nil {
			return uploaded, fmt.Errorf("uploading %s to %s/%s: %w", path, p.container, name, err)
		}

		uploaded = append(uploaded, Uploaded{
			Path: path,
			Blob: name,
			URL:  p.accountURL + "/" + p.container + "/" + name,
		})
	}

	return uploaded, nil
}

// BlobName maps a local report path to a blob name: slash separated, with
// no volume, leading separators or parent directory segments.
func BlobName(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	clean = strings.TrimPrefix(clean, filepath.ToSlash(filepath.VolumeName(path)))

	var parts []string
	for _, part := range strings.Split(clean, "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "/")
}

// ContentType returns the blob content type for a report file.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	}

	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
