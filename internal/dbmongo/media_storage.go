package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crosspost/internal/common"
)

// MediaStorage gives post composition a place to put uploaded media. The
// publish adapters later reference these files by URL only.
type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{gridFS: mongoClient.GridFS}
}

type MediaFile struct {
	ID         string               `json:"id"`
	Filename   string               `json:"filename"`
	Size       int64                `json:"size"`
	MimeType   string               `json:"mime_type"`
	FileType   common.MediaFileType `json:"file_type"`
	UploadedBy uint64               `json:"uploaded_by"`
	UploadedAt time.Time            `json:"uploaded_at"`
}

func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType string, uploaderID uint64, content io.Reader) (*MediaFile, error) {
	fileType := common.DetectFileType(mimeType)

	metadata := bson.M{
		"file_type":   fileType.String(),
		"mime_type":   mimeType,
		"uploaded_by": uploaderID,
		"uploaded_at": time.Now().UTC(),
	}

	stream, err := ms.gridFS.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &MediaFile{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		Size:       size,
		MimeType:   mimeType,
		FileType:   fileType,
		UploadedBy: uploaderID,
		UploadedAt: time.Now().UTC(),
	}, nil
}

func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.Reader, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file id: %w", err)
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	media := &MediaFile{
		ID:         fileID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		MimeType:   metaString(metadata, "mime_type"),
		FileType:   common.MediaFileType(metaString(metadata, "file_type")),
		UploadedAt: fileInfo.UploadDate,
	}
	return stream, media, nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file id: %w", err)
	}
	return ms.gridFS.Delete(objectID)
}

func metaString(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
