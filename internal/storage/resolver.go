// Package storage keeps uploaded objects on local disk and resolves their public URLs.
package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Resolver turns (bucket, file id) pairs into view and preview URLs.
// It is the only place that knows the URL layout.
type Resolver struct {
	base string
}

// NewResolver returns a Resolver rooted at baseURL.
func NewResolver(baseURL string) Resolver {
	return Resolver{base: strings.TrimRight(baseURL, "/")}
}

// ViewURL returns the URL serving the file, or "" when id is empty.
func (r Resolver) ViewURL(bucket, id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view", r.base, url.PathEscape(bucket), url.PathEscape(id))
}

// PreviewURL returns the URL serving a resized preview, or "" when id is empty.
func (r Resolver) PreviewURL(bucket, id string, width int) string {
	if id == "" {
		return ""
	}
	u := fmt.Sprintf("%s/storage/buckets/%s/files/%s/preview", r.base, url.PathEscape(bucket), url.PathEscape(id))
	if width > 0 {
		u += fmt.Sprintf("?width=%d", width)
	}
	return u
}
