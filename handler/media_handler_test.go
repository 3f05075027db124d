package handler

import (
	"errors"
	"go-property-api/media"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubFile struct {
	contentType string
	body        string
}

type stubSource map[string]stubFile

func (s stubSource) Open(id string) (*media.StoredFile, error) {
	if id == "broken" {
		return nil, errors.New("socket closed")
	}
	f, ok := s[id]
	if !ok {
		return nil, media.ErrMediaNotFound
	}
	return &media.StoredFile{
		ReadCloser:  io.NopCloser(strings.NewReader(f.body)),
		ContentType: f.contentType,
		Length:      int64(len(f.body)),
	}, nil
}

func TestMediaHandler_Serve(t *testing.T) {
	source := stubSource{
		"abc":    {contentType: "image/png", body: "png-bytes"},
		"legacy": {contentType: "text/html; charset=utf-8", body: "<script>alert(1)</script>"},
	}
	mux := http.NewServeMux()
	mux.Handle("GET /api/media/{id}", ErrorHandlingMiddleware(NewMediaHandler(source).Serve))

	serve := func(id string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/media/"+id, nil))
		return rr
	}

	rr := serve("abc")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "9", rr.Header().Get("Content-Length"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", rr.Body.String())

	t.Run("non-image files are downloaded, not rendered", func(t *testing.T) {
		rr := serve("legacy")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "attachment", rr.Header().Get("Content-Disposition"))
	})

	assert.Equal(t, http.StatusNotFound, serve("missing").Code)
	assert.Equal(t, http.StatusInternalServerError, serve("broken").Code)
}
