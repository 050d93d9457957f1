package types

import "time"

type Beneficiary struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	ContactNumber *string   `db:"contact_number" json:"contact_number"`
	Email         *string   `db:"email" json:"email"`
	Address       *string   `db:"address" json:"address"`
	DateOfFiling  time.Time `db:"date_of_filing" json:"date_of_filing"`
	HasSmartphone bool      `db:"has_smartphone" json:"has_smartphone"`
	CanRead       bool      `db:"can_read" json:"can_read"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// BeneficiaryUpdate carries only the fields present in an edit request.
// Nil means "leave the stored value alone".
type BeneficiaryUpdate struct {
	Name          *string    `db:"name" json:"name"`
	ContactNumber *string    `db:"contact_number" json:"contact_number"`
	Email         *string    `db:"email" json:"email"`
	Address       *string    `db:"address" json:"address"`
	DateOfFiling  *time.Time `db:"date_of_filing" json:"date_of_filing"`
	HasSmartphone *bool      `db:"has_smartphone" json:"has_smartphone"`
	CanRead       *bool      `db:"can_read" json:"can_read"`
}
