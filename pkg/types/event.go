package types

import "time"

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	ID           string      `db:"id" json:"id"`
	CaseID       string      `db:"case_id" json:"case_id"`
	EventType    string      `db:"event_type" json:"event_type"`
	EventTitle   string      `db:"event_title" json:"event_title"`
	EventDate    time.Time   `db:"event_date" json:"event_date"`
	EventTime    *string     `db:"event_time" json:"event_time"`
	Location     *string     `db:"location" json:"location"`
	Description  *string     `db:"description" json:"description"`
	Status       EventStatus `db:"event_status" json:"event_status"`
	ReferenceURL *string     `db:"reference_url" json:"reference_url"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// EventDetail is an event joined with its case and beneficiary, enough
// context to pick a reminder channel without another round trip.
type EventDetail struct {
	Event
	CaseCode        *string `db:"case_code" json:"case_code"`
	CaseTitle       *string `db:"case_title" json:"case_title"`
	BeneficiaryName *string `db:"beneficiary_name" json:"beneficiary_name"`
	HasSmartphone   *bool   `db:"has_smartphone" json:"has_smartphone"`
	CanRead         *bool   `db:"can_read" json:"can_read"`
}

// UpcomingEvent adds the contact fields needed by the reminder views.
type UpcomingEvent struct {
	Event
	CaseCode        *string `db:"case_code" json:"case_code"`
	CaseTitle       *string `db:"case_title" json:"case_title"`
	BeneficiaryName *string `db:"beneficiary_name" json:"beneficiary_name"`
	ContactNumber   *string `db:"contact_number" json:"contact_number"`
	HasSmartphone   *bool   `db:"has_smartphone" json:"has_smartphone"`
	CanRead         *bool   `db:"can_read" json:"can_read"`
}

// EventUpdate carries only the fields present in an edit request.
type EventUpdate struct {
	EventType    *string      `db:"event_type" json:"event_type"`
	EventTitle   *string      `db:"event_title" json:"event_title"`
	EventDate    *time.Time   `db:"event_date" json:"event_date"`
	EventTime    *string      `db:"event_time" json:"event_time"`
	Location     *string      `db:"location" json:"location"`
	Description  *string      `db:"description" json:"description"`
	Status       *EventStatus `db:"event_status" json:"event_status"`
	ReferenceURL *string      `db:"reference_url" json:"reference_url"`
}
