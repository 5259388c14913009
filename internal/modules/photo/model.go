package photo

import (
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/dbx"
	"github.com/google/uuid"
)

const defaultPhotoType = "Exterior"

// Photo is the metadata row of one stored blob. The bytes live in the BlobStore.
type Photo struct {
	ID           uuid.UUID `json:"id"`
	InventoryID  uuid.UUID `json:"inventory_id"`
	FileName     string    `json:"file_name"`
	ObjectKey    string    `json:"object_key"`
	ThumbnailKey string    `json:"thumbnail_key,omitempty"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	PhotoType    string    `json:"photo_type"`
	IsPrimary    bool      `json:"is_primary"`
	Caption      string    `json:"caption"`
	DisplayOrder int       `json:"display_order"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func (p *Photo) columns() dbx.Columns {
	return dbx.Columns{
		{Name: "id", Ptr: &p.ID},
		{Name: "inventory_id", Ptr: &p.InventoryID},
		{Name: "file_name", Ptr: &p.FileName},
		{Name: "object_key", Ptr: &p.ObjectKey},
		{Name: "thumbnail_key", Ptr: &p.ThumbnailKey},
		{Name: "file_size", Ptr: &p.FileSize},
		{Name: "mime_type", Ptr: &p.MimeType},
		{Name: "photo_type", Ptr: &p.PhotoType},
		{Name: "is_primary", Ptr: &p.IsPrimary},
		{Name: "caption", Ptr: &p.Caption},
		{Name: "display_order", Ptr: &p.DisplayOrder},
		{Name: "uploaded_at", Ptr: &p.UploadedAt},
	}
}

// UploadRequest carries one uploaded file and its form fields.
type UploadRequest struct {
	FileName     string
	Data         []byte
	PhotoType    string
	IsPrimary    bool
	Caption      string
	DisplayOrder int
}
