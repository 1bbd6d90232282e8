package recipe

import (
	"context"
	"encoding/base64"
)

// DataURIStore inlines images as base64 data URIs.
type DataURIStore struct{}

// Store implements ImageStore.
func (DataURIStore) Store(_ context.Context, _ string, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
