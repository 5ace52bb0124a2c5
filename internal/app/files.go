package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
)

// MaxUploadBytes caps a single uploaded order file.
const MaxUploadBytes = 25 << 20

var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".zip":  true,
}

const presignExpiry = 24 * time.Hour

// UploadOrderFile streams a file into blob storage under the owning
// order and persists its metadata. Only the order's student may upload.
func (a *App) UploadOrderFile(ctx context.Context, actor *domain.User, orderID, filename, contentType string, size int64, r io.Reader) (domain.UploadedFile, error) {
	if actor == nil {
		return domain.UploadedFile{}, ErrUnauthenticatedMutation
	}
	if a.objects == nil {
		return domain.UploadedFile{}, fmt.Errorf("object storage not configured")
	}
	order, ok, err := a.store.GetOrderForStudent(orderID, actor.ID)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.UploadedFile{}, E(KindNotFound, MsgOrderNotFound)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExts[ext] {
		return domain.UploadedFile{}, E(KindValidation, fmt.Sprintf("file type %q is not allowed", ext))
	}
	if size <= 0 || size > MaxUploadBytes {
		return domain.UploadedFile{}, E(KindValidation, "file exceeds the upload size limit")
	}

	key := fmt.Sprintf("orders/%s/%s%s", order.ID, util.NewID(), ext)
	if err := a.objects.Put(ctx, key, io.LimitReader(r, MaxUploadBytes), size, contentType); err != nil {
		return domain.UploadedFile{}, fmt.Errorf("store object: %w", err)
	}
	url, err := a.objects.PresignGet(ctx, key, presignExpiry)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("presign object: %w", err)
	}

	file := domain.UploadedFile{
		ID:        util.NewID(),
		OrderID:   order.ID,
		URL:       url,
		Name:      filename,
		Size:      size,
		MimeType:  contentType,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AddUploadedFile(file); err != nil {
		return domain.UploadedFile{}, fmt.Errorf("save file metadata: %w", err)
	}
	return file, nil
}

// FilesByOrder returns the uploaded files of an owned order.
func (a *App) FilesByOrder(actor *domain.User, orderID string) ([]domain.UploadedFile, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	if _, err := a.GetOrder(actor, orderID); err != nil {
		return nil, err
	}
	files, err := a.store.ListFilesByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}
