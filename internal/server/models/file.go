package models

// FileMetadata describes a stored file. The bytes themselves live on disk
// under StoragePath; this record is the only way to reach them.
type FileMetadata struct {
	ID string
	// Filename is the user-visible name, unique per owner.
	Filename string
	// Size is the stored payload size in bytes.
	Size int64
	// OwnerUsername references the owning user by username (soft reference).
	OwnerUsername string
	// StoragePath is the globally unique location of the physical bytes.
	// It is never derived from the user-supplied filename.
	StoragePath string
	// MimeType is the declared content type, may be empty.
	MimeType string
}

// FileListItem is the reduced view returned by list operations.
// Storage path and MIME type are deliberately not exposed.
type FileListItem struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}
