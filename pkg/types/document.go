package types

import "time"

type DocumentCategory string

const (
	DocumentCategoryComplaint      DocumentCategory = "complaint"
	DocumentCategoryOrder          DocumentCategory = "order"
	DocumentCategoryCorrespondence DocumentCategory = "correspondence"
	DocumentCategoryEvidence       DocumentCategory = "evidence"
	DocumentCategoryOther          DocumentCategory = "other"
)

func (c DocumentCategory) Valid() bool {
	switch c {
	case DocumentCategoryComplaint, DocumentCategoryOrder, DocumentCategoryCorrespondence,
		DocumentCategoryEvidence, DocumentCategoryOther:
		return true
	}
	return false
}

// Document is metadata only; the bytes live in the drive provider.
type Document struct {
	ID          string           `db:"id" json:"id"`
	CaseID      string           `db:"case_id" json:"case_id"`
	Name        string           `db:"name" json:"name"`
	DriveFileID string           `db:"drive_file_id" json:"drive_file_id"`
	DriveURL    string           `db:"drive_url" json:"drive_url"`
	DownloadURL string           `db:"download_url" json:"download_url"`
	MimeType    string           `db:"mime_type" json:"mime_type"`
	SizeBytes   int64            `db:"size_bytes" json:"size_bytes"`
	Category    DocumentCategory `db:"category" json:"category"`
	UploadedBy  *string          `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt  time.Time        `db:"uploaded_at" json:"uploaded_at"`
}

type DocumentDetail struct {
	Document
	UploadedByName *string `db:"uploaded_by_name" json:"uploaded_by_name"`
}

// DocumentUpdate renames or recategorizes metadata without touching the
// remote file.
type DocumentUpdate struct {
	Name     *string           `db:"name" json:"name"`
	Category *DocumentCategory `db:"category" json:"category"`
}
