package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"paceaid/pkg/types"
)

func (s *Service) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {

	beneficiaries, err := s.beneficiaries.Beneficiaries(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list beneficiaries")
		s.respondError(w, http.StatusInternalServerError, "failed to list beneficiaries")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"beneficiaries": beneficiaries})
}

// handleFindBeneficiary is the intake dedup check: same person, matched on
// normalized name plus phone, before a second record gets created.
func (s *Service) handleFindBeneficiary(w http.ResponseWriter, r *http.Request) {

	name := r.URL.Query().Get("name")
	phone := r.URL.Query().Get("phone")
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
		s.respondError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	beneficiary, err := s.beneficiaries.FindByNameAndPhone(r.Context(), name, phone)
	if err != nil {
		if errors.Is(err, types.ErrBeneficiaryNotFound) {
			s.respondJSON(w, http.StatusOK, map[string]any{
				"exists":      false,
				"beneficiary": nil,
			})
			return
		}
		s.logger.WithError(err).Error("failed to look up beneficiary")
		s.respondError(w, http.StatusInternalServerError, "failed to look up beneficiary")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"exists":      true,
		"beneficiary": beneficiary,
	})
}

func (s *Service) handleGetBeneficiary(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	beneficiary, err := s.beneficiaries.Beneficiary(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrBeneficiaryNotFound) {
			s.respondError(w, http.StatusNotFound, "beneficiary not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch beneficiary")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch beneficiary")
		return
	}

	cases, err := s.cases.CasesByBeneficiary(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch beneficiary cases")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch beneficiary cases")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"beneficiary": beneficiary,
		"cases":       cases,
	})
}

func (s *Service) handleCreateBeneficiary(w http.ResponseWriter, r *http.Request) {

	var req types.CreateBeneficiaryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	dateOfFiling := time.Now()
	if req.DateOfFiling != "" {
		parsed, err := parseDate(req.DateOfFiling)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "date_of_filing must be YYYY-MM-DD")
			return
		}
		dateOfFiling = parsed
	}

	beneficiary := &types.Beneficiary{
		Name:          strings.TrimSpace(req.Name),
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		DateOfFiling:  dateOfFiling,
		HasSmartphone: req.HasSmartphone,
		CanRead:       req.CanRead,
	}

	if err := s.beneficiaries.CreateBeneficiary(r.Context(), beneficiary); err != nil {
		s.logger.WithError(err).Error("failed to create beneficiary")
		s.respondError(w, http.StatusInternalServerError, "failed to create beneficiary")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message":     "beneficiary created",
		"beneficiary": beneficiary,
	})
}

func (s *Service) handleUpdateBeneficiary(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	var update types.BeneficiaryUpdate
	if err := decodeJSON(r, &update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.beneficiaries.UpdateBeneficiary(r.Context(), id, &update); err != nil {
		if errors.Is(err, types.ErrBeneficiaryNotFound) {
			s.respondError(w, http.StatusNotFound, "beneficiary not found")
			return
		}
		s.logger.WithError(err).Error("failed to update beneficiary")
		s.respondError(w, http.StatusInternalServerError, "failed to update beneficiary")
		return
	}

	beneficiary, err := s.beneficiaries.Beneficiary(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch beneficiary after update")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch beneficiary")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":     "beneficiary updated",
		"beneficiary": beneficiary,
	})
}

func (s *Service) handleDeleteBeneficiary(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	if err := s.beneficiaries.DeleteBeneficiary(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrBeneficiaryNotFound) {
			s.respondError(w, http.StatusNotFound, "beneficiary not found")
			return
		}
		s.logger.WithError(err).Error("failed to delete beneficiary")
		s.respondError(w, http.StatusInternalServerError, "failed to delete beneficiary")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "beneficiary deleted"})
}
