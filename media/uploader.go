package media

import (
	"context"
	"net/url"
	"strings"
)

// Uploader stores a local file on a media host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

const placeholderAvatarBase = "https://ui-avatars.com/api/?name="

// PlaceholderAvatar builds the generated-initials avatar URL used when no avatar was uploaded.
func PlaceholderAvatar(fullName string) string {
	parts := strings.Fields(fullName)
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return placeholderAvatarBase + strings.Join(parts, "+")
}

type cleanupUploader struct {
	next Uploader
}

// WithCleanup wraps u so the local file is deleted after every upload attempt, successful or not.
func WithCleanup(u Uploader) Uploader {
	return &cleanupUploader{next: u}
}

func (c *cleanupUploader) Upload(ctx context.Context, localPath string) (string, error) {
	defer RemoveTemp(localPath)
	return c.next.Upload(ctx, localPath)
}
