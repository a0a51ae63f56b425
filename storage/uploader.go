package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — архив сырых снапшотов: каждый забранный из gomafia ответ
// сохраняется до реконсиляции, чтобы спорную рассадку можно было разобрать
// постфактум.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}
