package media

import (
	"context"
	"errors"
	"fmt"
	"go-property-api/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader sends files to a Cloudinary account.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, localPath string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{ResourceType: "auto"})
	if err != nil {
		logger.Log.WithError(err).Error("Upload on cloudinary failed")
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		logger.Log.WithField("cloudinary_error", resp.Error.Message).Error("Upload on cloudinary rejected")
		return "", errors.New("cloudinary upload: " + resp.Error.Message)
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	logger.Log.WithField("url", url).Info("Upload on cloudinary successful")
	return url, nil
}
