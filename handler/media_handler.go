package handler

import (
	"errors"
	"go-property-api/common"
	"go-property-api/logger"
	"go-property-api/media"
	"io"
	"net/http"
	"strconv"
)

// MediaSource opens stored media by id.
type MediaSource interface {
	Open(id string) (*media.StoredFile, error)
}

type MediaHandler struct {
	source MediaSource
}

func NewMediaHandler(source MediaSource) *MediaHandler {
	return &MediaHandler{source: source}
}

// Serve godoc
// @Summary      Download an uploaded file
// @Tags         media
// @Produce      octet-stream
// @Param        id   path  string  true  "Media ID"
// @Success      200
// @Failure      404  {object}  common.AppError
// @Router       /api/media/{id} [get]
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) *common.AppError {
	file, err := h.source.Open(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, media.ErrMediaNotFound) {
			return common.NewAppError(http.StatusNotFound, "Media not found", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not open media", err)
	}
	defer file.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if !media.IsImage(file.ContentType) {
		w.Header().Set("Content-Disposition", "attachment")
	}
	w.Header().Set("Content-Length", strconv.FormatInt(file.Length, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		logger.Log.WithError(err).WithField("media_id", r.PathValue("id")).Warn("Media stream interrupted")
	}
	return nil
}
