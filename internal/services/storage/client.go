package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cortexcompose/compose/internal/httpclient"
	"github.com/cortexcompose/compose/internal/metrics"
)

// ErrUploadFailed is returned when the storage API rejects an upload.
var ErrUploadFailed = errors.New("upload failed")

// Client uploads recipe images to a Supabase Storage bucket.
type Client struct {
	supabaseURL string
	serviceKey  string
	bucket      string
	httpClient  *http.Client
}

// NewClient creates a Client for bucket. A nil httpClient gets an
// instrumented default.
func NewClient(supabaseURL, serviceKey, bucket string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httpclient.NewInstrumentedClient(httpclient.ProviderSupabase, 60*time.Second)
	}
	return &Client{
		supabaseURL: strings.TrimRight(supabaseURL, "/"),
		serviceKey:  serviceKey,
		bucket:      bucket,
		httpClient:  httpClient,
	}
}

func HashContent(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ObjectPath returns the content-addressed path for an image, so identical
// bytes always land on the same object.
func ObjectPath(data []byte, mimeType string) string {
	return fmt.Sprintf("recipes/%s.%s", HashContent(data), extension(mimeType))
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// Store uploads the image and returns its public URL.
func (c *Client) Store(ctx context.Context, recipeName string, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = detectContentType(data)
	}
	path := ObjectPath(data, mimeType)

	start := time.Now()
	url, err := c.UploadImage(ctx, path, data, mimeType)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordExternalCall(ctx, "supabase", "upload", status, start)
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "Stored recipe image", "recipe", recipeName, "path", path, "bytes", len(data))
	return url, nil
}

// UploadImage writes data to path in the bucket, overwriting any existing object.
func (c *Client) UploadImage(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.supabaseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, string(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return c.GetPublicURL(path), nil
}

func (c *Client) GetPublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.supabaseURL, c.bucket, path)
}

func detectContentType(data []byte) string {
	if len(data) > 4 && string(data[:4]) == "\x89PNG" {
		return "image/png"
	}
	return "image/jpeg"
}
