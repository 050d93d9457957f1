package types

// DriveFolderStatus reports the best-effort folder side effect of case
// creation. The case itself is committed either way.
type DriveFolderStatus struct {
	Created bool    `json:"created"`
	Error   *string `json:"error"`
}

// CaseStatusChange reports the coupler side effect of an event mutation.
type CaseStatusChange struct {
	Changed bool       `json:"changed"`
	Status  CaseStatus `json:"status,omitempty"`
	Error   *string    `json:"error"`
}

type CreateBeneficiaryRequest struct {
	Name          string  `json:"name"`
	ContactNumber *string `json:"contact_number"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	DateOfFiling  string  `json:"date_of_filing"` // YYYY-MM-DD, defaults to today
	HasSmartphone bool    `json:"has_smartphone"`
	CanRead       bool    `json:"can_read"`
}

type CreateCaseRequest struct {
	BeneficiaryID     string     `json:"beneficiary_id"`
	CaseType          string     `json:"case_type"`
	CaseTitle         string     `json:"case_title"`
	ResolutionType    *string    `json:"case_resolution_type"`
	Court             *string    `json:"court"`
	Organizations     []string   `json:"organizations"`
	Status            CaseStatus `json:"status"`
	Notes             *string    `json:"notes"`
	CreateDriveFolder bool       `json:"createDriveFolder"`
}

type CreateEventRequest struct {
	EventType    string  `json:"event_type"`
	EventTitle   string  `json:"event_title"`
	EventDate    string  `json:"event_date"` // YYYY-MM-DD
	EventTime    *string `json:"event_time"`
	Location     *string `json:"location"`
	Description  *string `json:"description"`
	ReferenceURL *string `json:"reference_url"`
}

type CreateReminderRequest struct {
	SendDate string  `json:"send_date"` // YYYY-MM-DD
	SendTime *string `json:"send_time"`
}

// ReminderMethodInfo explains the channel choice back to the caller.
type ReminderMethodInfo struct {
	SelectedMethod ReminderMethod `json:"selected_method"`
	Reason         string         `json:"reason"`
}

type RegisterRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
