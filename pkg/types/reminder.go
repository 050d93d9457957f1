package types

import "time"

// ReminderMethod is fixed into the row when the reminder is created and is
// never recomputed, even if the beneficiary's capability flags change later.
type ReminderMethod string

const (
	ReminderMethodWhatsApp   ReminderMethod = "whatsapp"
	ReminderMethodSMS        ReminderMethod = "sms"
	ReminderMethodVoiceNote  ReminderMethod = "voice-note"
	ReminderMethodManualCall ReminderMethod = "manual-call"
)

type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderStatusPending, ReminderStatusSent, ReminderStatusFailed:
		return true
	}
	return false
}

type Reminder struct {
	ID        string         `db:"id" json:"id"`
	EventID   string         `db:"case_event_id" json:"case_event_id"`
	SendDate  time.Time      `db:"send_date" json:"send_date"`
	SendTime  *string        `db:"send_time" json:"send_time"`
	Method    ReminderMethod `db:"method" json:"method"`
	Status    ReminderStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// UpcomingReminder joins the dispatch context: event, case, and who to reach.
type UpcomingReminder struct {
	Reminder
	EventTitle      *string    `db:"event_title" json:"event_title"`
	EventDate       *time.Time `db:"event_date" json:"event_date"`
	EventTime       *string    `db:"event_time" json:"event_time"`
	CaseCode        *string    `db:"case_code" json:"case_code"`
	BeneficiaryName *string    `db:"beneficiary_name" json:"beneficiary_name"`
	ContactNumber   *string    `db:"contact_number" json:"contact_number"`
}
