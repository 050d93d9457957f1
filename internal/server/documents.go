package server

import (
	"errors"
	"net/http"
	"strings"

	"paceaid/internal/utils"
	"paceaid/pkg/types"
)

const maxUploadBytes = 50 << 20

func (s *Service) handleUploadDocument(w http.ResponseWriter, r *http.Request) {

	caseID := r.PathValue("id")

	detail, err := s.cases.Case(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, types.ErrCaseNotFound) {
			s.respondError(w, http.StatusNotFound, "case not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch case")
		s.respondError(w, http.StatusInternalServerError, "failed to upload document")
		return
	}

	// Both preconditions are checked before anything leaves the process.
	if utils.PtrString(detail.DriveFolderID) == "" {
		s.respondError(w, http.StatusBadRequest, "case has no drive folder, create one first")
		return
	}

	accessToken := r.Header.Get(driveTokenHeader)
	if accessToken == "" {
		s.respondError(w, http.StatusBadRequest, "drive access token is required")
		return
	}

	// Resolve the uploader up front; failing after the remote upload would
	// orphan the file.
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	name := strings.TrimSpace(r.FormValue("fileName"))
	if name == "" {
		name = header.Filename
	}

	category := types.DocumentCategoryOther
	if raw := r.FormValue("category"); raw != "" {
		category = types.DocumentCategory(raw)
		if !category.Valid() {
			s.respondError(w, http.StatusBadRequest, "invalid document category")
			return
		}
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	uploaded, err := s.drive.UploadFile(r.Context(), accessToken, utils.PtrString(detail.DriveFolderID), name, mimeType, file)
	if err != nil {
		s.logger.WithError(err).WithField("case_id", caseID).Error("failed to upload file to drive")
		s.respondError(w, http.StatusBadGateway, "failed to upload file to drive")
		return
	}

	document := &types.Document{
		CaseID:      caseID,
		Name:        uploaded.Name,
		DriveFileID: uploaded.ID,
		DriveURL:    uploaded.URL,
		DownloadURL: uploaded.DownloadURL,
		MimeType:    uploaded.MimeType,
		SizeBytes:   uploaded.Size,
		Category:    category,
		UploadedBy:  utils.StringPtr(userID),
	}

	if err := s.documents.CreateDocument(r.Context(), document); err != nil {
		s.logger.WithError(err).Error("failed to record document")
		s.respondError(w, http.StatusInternalServerError, "failed to record document")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "document uploaded",
		"document": document,
	})
}

func (s *Service) handleDocumentsByCase(w http.ResponseWriter, r *http.Request) {

	caseID := r.PathValue("id")

	category := types.DocumentCategory(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid document category")
		return
	}

	documents, err := s.documents.DocumentsByCase(r.Context(), caseID, category)
	if err != nil {
		s.logger.WithError(err).Error("failed to list documents")
		s.respondError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	document, err := s.documents.Document(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch document")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch document")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"document": document})
}

func (s *Service) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	var update types.DocumentUpdate
	if err := decodeJSON(r, &update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if update.Category != nil && !update.Category.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid document category")
		return
	}

	if _, err := s.documents.Document(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch document")
		s.respondError(w, http.StatusInternalServerError, "failed to update document")
		return
	}

	if err := s.documents.UpdateDocument(r.Context(), id, &update); err != nil {
		s.logger.WithError(err).Error("failed to update document")
		s.respondError(w, http.StatusInternalServerError, "failed to update document")
		return
	}

	document, err := s.documents.Document(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch document after update")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch document")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":  "document updated",
		"document": document,
	})
}

// handleDeleteDocument removes the metadata row regardless; the remote file
// is only removed when the caller supplied a token and the call succeeds.
func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("id")

	document, err := s.documents.Document(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch document")
		s.respondError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	accessToken := r.Header.Get(driveTokenHeader)
	if document.DriveFileID != "" {
		if accessToken == "" {
			s.logger.WithField("drive_file_id", document.DriveFileID).
				Warn("no drive access token supplied, remote file left in place")
		} else if err := s.drive.DeleteFile(r.Context(), accessToken, document.DriveFileID); err != nil {
			s.logger.WithError(err).WithField("drive_file_id", document.DriveFileID).
				Warn("failed to delete drive file, removing metadata anyway")
		}
	}

	if err := s.documents.DeleteDocument(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete document")
		s.respondError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}
