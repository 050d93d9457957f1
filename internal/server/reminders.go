package server

import (
	"errors"
	"fmt"
	"net/http"

	"paceaid/internal/reminder"
	"paceaid/internal/utils"
	"paceaid/pkg/types"
)

func (s *Service) handleCreateReminder(w http.ResponseWriter, r *http.Request) {

	eventID := r.PathValue("eventID")

	var req types.CreateReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SendDate == "" {
		s.respondError(w, http.StatusBadRequest, "send_date is required")
		return
	}

	sendDate, err := parseDate(req.SendDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "send_date must be YYYY-MM-DD")
		return
	}

	event, err := s.events.Event(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch event")
		s.respondError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}

	// Channel choice is locked in at creation from the beneficiary's
	// capability flags at this moment.
	hasSmartphone := utils.PtrBool(event.HasSmartphone)
	canRead := utils.PtrBool(event.CanRead)
	method := reminder.DetermineMethod(hasSmartphone, canRead)

	rem := &types.Reminder{
		EventID:  eventID,
		SendDate: sendDate,
		SendTime: req.SendTime,
		Method:   method,
	}

	if err := s.reminders.CreateReminder(r.Context(), rem); err != nil {
		s.logger.WithError(err).Error("failed to create reminder")
		s.respondError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "reminder created",
		"reminder": rem,
		"method_info": types.ReminderMethodInfo{
			SelectedMethod: method,
			Reason:         fmt.Sprintf("beneficiary capability: smartphone=%t, can read=%t", hasSmartphone, canRead),
		},
	})
}

func (s *Service) handleRemindersByEvent(w http.ResponseWriter, r *http.Request) {

	eventID := r.PathValue("eventID")

	reminders, err := s.reminders.RemindersByEvent(r.Context(), eventID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list reminders")
		s.respondError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
}

func (s *Service) handleUpcomingReminders(w http.ResponseWriter, r *http.Request) {

	reminders, err := s.reminders.UpcomingReminders(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list upcoming reminders")
		s.respondError(w, http.StatusInternalServerError, "failed to list upcoming reminders")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
}

func (s *Service) handleUpdateReminderStatus(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	var req struct {
		Status types.ReminderStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid reminder status")
		return
	}

	if err := s.reminders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, types.ErrReminderNotFound) {
			s.respondError(w, http.StatusNotFound, "reminder not found")
			return
		}
		s.logger.WithError(err).Error("failed to update reminder status")
		s.respondError(w, http.StatusInternalServerError, "failed to update reminder status")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "reminder status updated"})
}
