package handler

import (
	"errors"
	"fmt"
	"go-property-api/common"
	"go-property-api/media"
	"mime"
	"net/http"
)

// MaxMultipartBody bounds a multipart request including its files.
const MaxMultipartBody = 50 << 20

const multipartMemory = 8 << 20

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// receiveFiles parses a multipart request and stores up to max image files of field in tempDir.
// Non-multipart requests are left untouched. The caller must pass the returned paths
// to cleanupUpload once the request is done.
func receiveFiles(w http.ResponseWriter, r *http.Request, field string, max int, tempDir string) ([]string, *common.AppError) {
	if !isMultipart(r) {
		return nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxMultipartBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, common.NewAppError(http.StatusRequestEntityTooLarge, "Request body too large", err)
		}
		return nil, common.NewAppError(http.StatusBadRequest, "Invalid multipart form", err)
	}

	files := r.MultipartForm.File[field]
	if len(files) > max {
		return nil, common.NewAppError(http.StatusBadRequest, fmt.Sprintf("At most %d files may be sent as %s", max, field), nil)
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := media.SaveTemp(tempDir, fh)
		if err != nil {
			media.RemoveTemp(paths...)
			return nil, common.NewAppError(http.StatusInternalServerError, "Could not store uploaded file", err)
		}
		paths = append(paths, path)
		if _, err := media.ImageType(path); err != nil {
			media.RemoveTemp(paths...)
			if errors.Is(err, media.ErrUnsupportedMedia) {
				return nil, common.NewAppError(http.StatusUnsupportedMediaType, fmt.Sprintf("%s must be png, jpeg, gif, webp, avif, bmp or tiff images", field), err)
			}
			return nil, common.NewAppError(http.StatusInternalServerError, "Could not read uploaded file", err)
		}
	}
	return paths, nil
}

func cleanupUpload(r *http.Request, paths []string) {
	media.RemoveTemp(paths...)
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func firstPath(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}
