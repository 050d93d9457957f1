// Package reminder picks the notification channel for a beneficiary and
// stubs out delivery.
package reminder

import "paceaid/pkg/types"

// DetermineMethod maps a beneficiary's capability flags to a channel.
// Text channels are reserved for beneficiaries who can read; smartphone
// ownership decides between app-based and telecom-based delivery. The result
// is fixed into the reminder at creation and never recomputed.
func DetermineMethod(hasSmartphone, canRead bool) types.ReminderMethod {
	switch {
	case hasSmartphone && canRead:
		return types.ReminderMethodWhatsApp
	case !hasSmartphone && canRead:
		return types.ReminderMethodSMS
	case hasSmartphone && !canRead:
		return types.ReminderMethodVoiceNote
	default:
		return types.ReminderMethodManualCall
	}
}
