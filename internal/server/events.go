package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"paceaid/internal/utils"
	"paceaid/pkg/types"
)

const defaultUpcomingDays = 7

func (s *Service) handleCreateEvent(w http.ResponseWriter, r *http.Request) {

	caseID := r.PathValue("id")

	var req types.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.EventType) == "" || strings.TrimSpace(req.EventTitle) == "" || req.EventDate == "" {
		s.respondError(w, http.StatusBadRequest, "event_type, event_title and event_date are required")
		return
	}

	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "event_date must be YYYY-MM-DD")
		return
	}

	if _, err := s.cases.Case(r.Context(), caseID); err != nil {
		if errors.Is(err, types.ErrCaseNotFound) {
			s.respondError(w, http.StatusNotFound, "case not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch case")
		s.respondError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	event := &types.Event{
		CaseID:       caseID,
		EventType:    strings.TrimSpace(req.EventType),
		EventTitle:   strings.TrimSpace(req.EventTitle),
		EventDate:    eventDate,
		EventTime:    req.EventTime,
		Location:     req.Location,
		Description:  req.Description,
		ReferenceURL: req.ReferenceURL,
	}

	if err := s.events.CreateEvent(r.Context(), event); err != nil {
		s.logger.WithError(err).Error("failed to create event")
		s.respondError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	caseStatus := s.coupleEventCreated(r, caseID)

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message":    "event created",
		"event":      event,
		"caseStatus": caseStatus,
	})
}

// coupleEventCreated nudges an active case to pending. The event itself is
// already committed; coupling failures are reported, not fatal.
func (s *Service) coupleEventCreated(r *http.Request, caseID string) types.CaseStatusChange {

	status, changed, err := s.coupler.EventCreated(r.Context(), caseID)

	change := types.CaseStatusChange{Changed: changed, Status: status}
	if err != nil {
		change.Error = utils.StringPtr("case status update failed")
	}

	return change
}

// coupleEventSettled is the reverse edge: a pending case with no scheduled
// events left goes back to active.
func (s *Service) coupleEventSettled(r *http.Request, caseID string) types.CaseStatusChange {

	status, changed, err := s.coupler.EventSettled(r.Context(), caseID)

	change := types.CaseStatusChange{Changed: changed, Status: status}
	if err != nil {
		change.Error = utils.StringPtr("case status update failed")
	}

	return change
}

func (s *Service) handleEventsByCase(w http.ResponseWriter, r *http.Request) {

	caseID := r.PathValue("id")

	events, err := s.events.EventsByCase(r.Context(), caseID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list events")
		s.respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Service) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) {

	days := defaultUpcomingDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	events, err := s.events.UpcomingEvents(r.Context(), days)
	if err != nil {
		s.logger.WithError(err).Error("failed to list upcoming events")
		s.respondError(w, http.StatusInternalServerError, "failed to list upcoming events")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"days":   days,
	})
}

func (s *Service) handleGetEvent(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("eventID")

	event, err := s.events.Event(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch event")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch event")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"event": event})
}

func (s *Service) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("eventID")

	var update types.EventUpdate
	if err := decodeJSON(r, &update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if update.Status != nil && !update.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid event status")
		return
	}

	existing, err := s.events.Event(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch event")
		s.respondError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	if err := s.events.UpdateEvent(r.Context(), id, &update); err != nil {
		s.logger.WithError(err).Error("failed to update event")
		s.respondError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	caseStatus := s.coupleEventSettled(r, existing.CaseID)

	event, err := s.events.Event(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch event after update")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch event")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":    "event updated",
		"event":      event,
		"caseStatus": caseStatus,
	})
}

func (s *Service) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("eventID")

	existing, err := s.events.Event(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch event")
		s.respondError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	if err := s.events.DeleteEvent(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete event")
		s.respondError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	caseStatus := s.coupleEventSettled(r, existing.CaseID)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":    "event deleted",
		"caseStatus": caseStatus,
	})
}
