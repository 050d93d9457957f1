package reminder

import (
	"context"

	"paceaid/internal/utils"
	"paceaid/pkg/types"

	"github.com/sirupsen/logrus"
)

// Dispatcher is a placeholder for the delivery subsystem. Each channel logs
// what it would send; wiring a real gateway (WhatsApp Business, Twilio SMS)
// replaces the bodies without changing callers.
type Dispatcher struct {
	logger *logrus.Logger
}

func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, r *types.UpcomingReminder) error {
	entry := d.logger.WithFields(logrus.Fields{
		"reminder_id": r.ID,
		"method":      r.Method,
		"case_code":   utils.PtrString(r.CaseCode),
		"beneficiary": utils.PtrString(r.BeneficiaryName),
		"contact":     utils.PtrString(r.ContactNumber),
	})

	switch r.Method {
	case types.ReminderMethodWhatsApp:
		entry.Info("would send WhatsApp message")
	case types.ReminderMethodVoiceNote:
		entry.Info("would send WhatsApp voice note")
	case types.ReminderMethodSMS:
		entry.Info("would send SMS")
	case types.ReminderMethodManualCall:
		entry.Info("manual call required, alerting staff")
	default:
		entry.Warn("unknown reminder method, skipping")
	}

	return nil
}
