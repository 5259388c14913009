package photo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/logger"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const thumbnailWidth = 200

// allowedTypes maps sniffed content types to the extension stored in the key.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// Service defines photo operations.
type Service interface {
	UploadPhoto(ctx context.Context, unitID uuid.UUID, req UploadRequest) (*Photo, error)
	ListPhotos(ctx context.Context, unitID uuid.UUID) ([]*Photo, error)
	// OpenPhoto streams the original or its thumbnail. The caller closes the reader.
	OpenPhoto(ctx context.Context, id uuid.UUID, thumbnail bool) (io.ReadCloser, *Photo, error)
}

// Units looks up the unit a photo belongs to.
type Units interface {
	GetUnit(ctx context.Context, id uuid.UUID) (*inventory.Unit, error)
}

type service struct {
	repo     Repository
	store    BlobStore
	units    Units
	maxBytes int64
	log      logrus.FieldLogger
}

func NewService(repo Repository, store BlobStore, units Units, maxBytes int64, log logrus.FieldLogger) Service {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &service{repo: repo, store: store, units: units, maxBytes: maxBytes, log: log}
}

func (s *service) UploadPhoto(ctx context.Context, unitID uuid.UUID, req UploadRequest) (*Photo, error) {
	if len(req.Data) == 0 {
		return nil, apperr.InvalidFields(map[string]string{"file": "required"})
	}
	if int64(len(req.Data)) > s.maxBytes {
		return nil, apperr.Validation("file size exceeds %d bytes", s.maxBytes)
	}
	mimeType := http.DetectContentType(req.Data)
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return nil, apperr.Validation("unsupported file type %s", mimeType)
	}
	if _, err := s.units.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}

	p := &Photo{
		ID:           uuid.New(),
		InventoryID:  unitID,
		FileName:     filepath.Base(strings.TrimSpace(req.FileName)),
		FileSize:     int64(len(req.Data)),
		MimeType:     mimeType,
		PhotoType:    strings.TrimSpace(req.PhotoType),
		IsPrimary:    req.IsPrimary,
		Caption:      strings.TrimSpace(req.Caption),
		DisplayOrder: req.DisplayOrder,
	}
	if p.PhotoType == "" {
		p.PhotoType = defaultPhotoType
	}
	if p.FileName == "." || p.FileName == string(filepath.Separator) {
		p.FileName = p.ID.String() + ext
	}
	p.ObjectKey = path.Join("inventory", unitID.String(), uuid.NewString()+ext)

	var thumb []byte
	if strings.HasPrefix(mimeType, "image/") {
		var err error
		if thumb, err = thumbnail(req.Data); err != nil {
			return nil, apperr.Validation("image could not be decoded: %v", err)
		}
		p.ThumbnailKey = thumbnailKey(p.ObjectKey)
	}

	if err := s.store.Put(ctx, p.ObjectKey, mimeType, req.Data); err != nil {
		return nil, err
	}
	if thumb != nil {
		if err := s.store.Put(ctx, p.ThumbnailKey, "image/jpeg", thumb); err != nil {
			s.discard(ctx, p.ObjectKey)
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.discard(ctx, p.ObjectKey, p.ThumbnailKey)
		return nil, err
	}
	return p, nil
}

func (s *service) ListPhotos(ctx context.Context, unitID uuid.UUID) ([]*Photo, error) {
	return s.repo.ListByUnit(ctx, unitID)
}

func (s *service) OpenPhoto(ctx context.Context, id uuid.UUID, thumb bool) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	key := p.ObjectKey
	if thumb {
		if p.ThumbnailKey == "" {
			return nil, nil, apperr.NotFound("photo %s has no thumbnail", id)
		}
		key = p.ThumbnailKey
	}
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return rc, p, nil
}

// discard removes blobs written before a later step failed.
func (s *service) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			logger.LogError(s.log, "photo", "UploadPhoto", "discard orphaned blob", key, err)
		}
	}
}

func thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos), imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func thumbnailKey(objectKey string) string {
	dir, file := path.Split(objectKey)
	return path.Join(dir, "thumbnails", strings.TrimSuffix(file, path.Ext(file))+".jpg")
}
