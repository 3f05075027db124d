package media

import (
	"context"
	"errors"
	"fmt"
	"go-property-api/logger"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMediaNotFound = errors.New("media not found")

// MediaPath is the route prefix under which GridFS files are served.
const MediaPath = "/api/media/"

// GridFSStore keeps uploads in a MongoDB GridFS bucket and serves them back through the API.
type GridFSStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewGridFSStore(db *mongo.Database, bucketName, publicBaseURL string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *GridFSStore) Upload(ctx context.Context, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	contentType, err := ImageType(localPath)
	if err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	id, err := s.bucket.UploadFromStream(filepath.Base(localPath), f, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Upload to gridfs failed")
		return "", fmt.Errorf("gridfs upload: %w", err)
	}

	url := s.URLFor(id)
	logger.Log.WithField("url", url).Info("Upload to gridfs successful")
	return url, nil
}

func (s *GridFSStore) URLFor(id primitive.ObjectID) string {
	return s.baseURL + MediaPath + id.Hex()
}

// StoredFile is an open GridFS download. Callers must Close it.
type StoredFile struct {
	io.ReadCloser
	ContentType string
	Length      int64
}

func (s *GridFSStore) Open(idHex string) (*StoredFile, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrMediaNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("gridfs download: %w", err)
	}

	file := stream.GetFile()
	sf := &StoredFile{ReadCloser: stream, ContentType: "application/octet-stream", Length: file.Length}
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if file.Metadata != nil && bson.Unmarshal(file.Metadata, &meta) == nil && meta.ContentType != "" {
		sf.ContentType = meta.ContentType
	}
	return sf, nil
}
