package types

import "time"

type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "active"
	CaseStatusPending  CaseStatus = "pending"
	CaseStatusUrgent   CaseStatus = "urgent"
	CaseStatusResolved CaseStatus = "resolved"
	CaseStatusClosed   CaseStatus = "closed"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusActive, CaseStatusPending, CaseStatusUrgent, CaseStatusResolved, CaseStatusClosed:
		return true
	}
	return false
}

type Case struct {
	ID             string     `db:"id" json:"id"`
	CaseCode       string     `db:"case_code" json:"case_code"`
	BeneficiaryID  string     `db:"beneficiary_id" json:"beneficiary_id"`
	CaseType       string     `db:"case_type" json:"case_type"`
	CaseTitle      string     `db:"case_title" json:"case_title"`
	ResolutionType *string    `db:"case_resolution_type" json:"case_resolution_type"`
	Court          *string    `db:"court" json:"court"`
	Organizations  []string   `db:"organizations" json:"organizations"`
	Status         CaseStatus `db:"status" json:"status"`
	Notes          *string    `db:"notes" json:"notes"`
	DriveFolderID  *string    `db:"drive_folder_id" json:"drive_folder_id"`
	DriveFolderURL *string    `db:"drive_folder_url" json:"drive_folder_url"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// CaseDetail is a case row joined with its beneficiary's contact info.
type CaseDetail struct {
	Case
	BeneficiaryName    *string `db:"beneficiary_name" json:"beneficiary_name"`
	BeneficiaryContact *string `db:"beneficiary_contact" json:"beneficiary_contact"`
	BeneficiaryEmail   *string `db:"beneficiary_email" json:"beneficiary_email"`
	HasSmartphone      *bool   `db:"has_smartphone" json:"has_smartphone"`
	CanRead            *bool   `db:"can_read" json:"can_read"`
}

// CaseUpdate carries only the fields present in an edit request.
// Nil means "leave the stored value alone". updated_at advances regardless.
type CaseUpdate struct {
	BeneficiaryID  *string     `db:"beneficiary_id" json:"beneficiary_id"`
	CaseType       *string     `db:"case_type" json:"case_type"`
	CaseTitle      *string     `db:"case_title" json:"case_title"`
	ResolutionType *string     `db:"case_resolution_type" json:"case_resolution_type"`
	Court          *string     `db:"court" json:"court"`
	Organizations  *[]string   `db:"organizations" json:"organizations"`
	Status         *CaseStatus `db:"status" json:"status"`
	Notes          *string     `db:"notes" json:"notes"`
	DriveFolderID  *string     `db:"drive_folder_id" json:"drive_folder_id"`
	DriveFolderURL *string     `db:"drive_folder_url" json:"drive_folder_url"`
}

// CaseFilters are decoded straight from the query string. Empty values mean
// "no constraint". DateFilter is one of 3months|5months|6months|year-YYYY,
// evaluated against wall-clock now at query time.
type CaseFilters struct {
	DateFilter     string `form:"dateFilter"`
	CaseType       string `form:"caseType"`
	Status         string `form:"status"`
	Court          string `form:"court"`
	ResolutionType string `form:"resolutionType"`
}
