package server

import (
	"errors"
	"net/http"
	"strings"

	"paceaid/internal/utils"
	"paceaid/pkg/types"
)

func (s *Service) handleListCases(w http.ResponseWriter, r *http.Request) {

	filters := types.CaseFilters{
		DateFilter: r.URL.Query().Get("dateFilter"),
	}

	cases, err := s.cases.Cases(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to list cases")
		s.respondError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}

	total, err := s.cases.TotalCount(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to count cases")
		s.respondError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"cases": cases,
		"total": total,
	})
}

func (s *Service) handleOngoingCases(w http.ResponseWriter, r *http.Request) {

	cases, err := s.cases.OngoingCases(r.Context(), r.URL.Query().Get("dateFilter"))
	if err != nil {
		s.logger.WithError(err).Error("failed to list ongoing cases")
		s.respondError(w, http.StatusInternalServerError, "failed to list ongoing cases")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (s *Service) handleFilterCases(w http.ResponseWriter, r *http.Request) {

	var filters types.CaseFilters
	if err := decoder.Decode(&filters, r.URL.Query()); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid filter parameters")
		return
	}

	if filters.Status != "" && !types.CaseStatus(filters.Status).Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	cases, err := s.cases.Cases(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to filter cases")
		s.respondError(w, http.StatusInternalServerError, "failed to filter cases")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (s *Service) handleGetCase(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	detail, err := s.cases.Case(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrCaseNotFound) {
			s.respondError(w, http.StatusNotFound, "case not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch case")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch case")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"case": detail})
}

func (s *Service) handleCreateCase(w http.ResponseWriter, r *http.Request) {

	var req types.CreateCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BeneficiaryID == "" || strings.TrimSpace(req.CaseType) == "" || strings.TrimSpace(req.CaseTitle) == "" {
		s.respondError(w, http.StatusBadRequest, "beneficiary_id, case_type and case_title are required")
		return
	}

	if req.Status != "" && !req.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid case status")
		return
	}

	beneficiary, err := s.beneficiaries.Beneficiary(r.Context(), req.BeneficiaryID)
	if err != nil {
		if errors.Is(err, types.ErrBeneficiaryNotFound) {
			s.respondError(w, http.StatusNotFound, "beneficiary not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch beneficiary")
		s.respondError(w, http.StatusInternalServerError, "failed to create case")
		return
	}

	c := &types.Case{
		BeneficiaryID:  req.BeneficiaryID,
		CaseType:       strings.TrimSpace(req.CaseType),
		CaseTitle:      strings.TrimSpace(req.CaseTitle),
		ResolutionType: req.ResolutionType,
		Court:          req.Court,
		Organizations:  req.Organizations,
		Status:         req.Status,
		Notes:          req.Notes,
	}

	if err := s.cases.CreateCase(r.Context(), c); err != nil {
		if errors.Is(err, types.ErrCaseCodeContention) {
			s.respondError(w, http.StatusConflict, "could not allocate a case code, please retry")
			return
		}
		s.logger.WithError(err).Error("failed to create case")
		s.respondError(w, http.StatusInternalServerError, "failed to create case")
		return
	}

	driveFolder := s.createCaseFolder(r, c, beneficiary.Name, req.CreateDriveFolder)

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message":     "case created",
		"case":        c,
		"driveFolder": driveFolder,
	})
}

// createCaseFolder runs after the case row is committed; the code needed for
// the folder name only exists once the insert transaction finishes. Failures
// are reported in the response but never unwind the case.
func (s *Service) createCaseFolder(r *http.Request, c *types.Case, beneficiaryName string, requested bool) types.DriveFolderStatus {

	var status types.DriveFolderStatus
	if !requested {
		return status
	}

	accessToken := r.Header.Get(driveTokenHeader)
	if accessToken == "" {
		status.Error = utils.StringPtr("drive access token not provided")
		return status
	}

	folder, err := s.drive.CreateCaseFolder(r.Context(), accessToken, c.CaseCode, beneficiaryName)
	if err != nil {
		s.logger.WithError(err).WithField("case_code", c.CaseCode).Warn("failed to create drive folder")
		status.Error = utils.StringPtr("failed to create drive folder")
		return status
	}

	update := &types.CaseUpdate{
		DriveFolderID:  utils.StringPtr(folder.ID),
		DriveFolderURL: utils.StringPtr(folder.URL),
	}
	if err := s.cases.UpdateCase(r.Context(), c.ID, update); err != nil {
		s.logger.WithError(err).WithField("case_code", c.CaseCode).Warn("failed to record drive folder on case")
		status.Error = utils.StringPtr("folder created but not recorded on case")
		return status
	}

	c.DriveFolderID = utils.StringPtr(folder.ID)
	c.DriveFolderURL = utils.StringPtr(folder.URL)
	status.Created = true

	return status
}

func (s *Service) handleUpdateCase(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	var update types.CaseUpdate
	if err := decodeJSON(r, &update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if update.Status != nil && !update.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid case status")
		return
	}

	if err := s.cases.UpdateCase(r.Context(), id, &update); err != nil {
		if errors.Is(err, types.ErrCaseNotFound) {
			s.respondError(w, http.StatusNotFound, "case not found")
			return
		}
		s.logger.WithError(err).Error("failed to update case")
		s.respondError(w, http.StatusInternalServerError, "failed to update case")
		return
	}

	detail, err := s.cases.Case(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch case after update")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch case")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "case updated",
		"case":    detail,
	})
}

func (s *Service) handleDeleteCase(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	if err := s.cases.DeleteCase(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrCaseNotFound) {
			s.respondError(w, http.StatusNotFound, "case not found")
			return
		}
		s.logger.WithError(err).Error("failed to delete case")
		s.respondError(w, http.StatusInternalServerError, "failed to delete case")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "case deleted"})
}
