package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paceaid/internal/drive"
	"paceaid/internal/utils"
	"paceaid/pkg/types"
)

var staffUser = &types.User{ID: "user-1", Name: "Staff", Email: "staff@paceaid.local", Role: types.UserRoleStaff}

func caseDetail(id string, folderID *string) *types.CaseDetail {
	return &types.CaseDetail{
		Case: types.Case{
			ID:            id,
			CaseCode:      "PACE-2025-001",
			BeneficiaryID: "ben-1",
			CaseType:      "land dispute",
			CaseTitle:     "Boundary encroachment complaint",
			Status:        types.CaseStatusActive,
			DriveFolderID: folderID,
		},
		BeneficiaryName: utils.StringPtr("Ramesh Kumar"),
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func multipartUpload(t *testing.T, fieldValues map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile("file", "fir-copy.pdf")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}

	for key, value := range fieldValues {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return body, mw.FormDataContentType()
}

func TestUploadDocumentRequiresAuth(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodPost, "/cases/case-1/documents", nil)
	rec := s.serveHTTP(req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUploadDocumentRejectedWithoutFolder(t *testing.T) {
	f := newFixtures()
	f.cases.detail = caseDetail("case-1", nil)
	s := newTestService(t, f)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/cases/case-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(driveTokenHeader, "token")
	req = asUser(t, s, req, staffUser)

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if f.drive.uploadCalls != 0 {
		t.Error("upload should not be attempted without a folder")
	}
}

func TestUploadDocumentRejectedWithoutToken(t *testing.T) {
	f := newFixtures()
	f.cases.detail = caseDetail("case-1", utils.StringPtr("folder-1"))
	s := newTestService(t, f)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/cases/case-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req = asUser(t, s, req, staffUser)

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if f.drive.uploadCalls != 0 {
		t.Error("upload should not be attempted without a token")
	}
}

func TestUploadDocumentRecordsMetadata(t *testing.T) {
	f := newFixtures()
	f.cases.detail = caseDetail("case-1", utils.StringPtr("folder-1"))
	f.drive.file = &drive.File{
		ID:          "file-1",
		Name:        "fir-copy.pdf",
		URL:         "https://drive.google.com/file/d/file-1/view",
		DownloadURL: "https://drive.google.com/uc?export=download&id=file-1",
		MimeType:    "application/pdf",
		Size:        13,
	}
	s := newTestService(t, f)

	body, contentType := multipartUpload(t, map[string]string{"category": "complaint"})
	req := httptest.NewRequest(http.MethodPost, "/cases/case-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(driveTokenHeader, "token")
	req = asUser(t, s, req, staffUser)

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if f.drive.uploadCalls != 1 {
		t.Fatalf("upload calls = %d, want 1", f.drive.uploadCalls)
	}
	if len(f.documents.created) != 1 {
		t.Fatalf("documents created = %d, want 1", len(f.documents.created))
	}

	doc := f.documents.created[0]
	if doc.DriveFileID != "file-1" {
		t.Errorf("drive file id = %s, want file-1", doc.DriveFileID)
	}
	if doc.Category != types.DocumentCategoryComplaint {
		t.Errorf("category = %s, want complaint", doc.Category)
	}
	if utils.PtrString(doc.UploadedBy) != staffUser.ID {
		t.Errorf("uploaded by = %s, want %s", utils.PtrString(doc.UploadedBy), staffUser.ID)
	}
}

func TestCreateEventReportsCaseStatusChange(t *testing.T) {
	f := newFixtures()
	f.cases.detail = caseDetail("case-1", nil)
	f.coupler.status = types.CaseStatusPending
	f.coupler.changed = true
	s := newTestService(t, f)

	payload := `{"event_type":"hearing","event_title":"First hearing","event_date":"2026-09-15"}`
	req := httptest.NewRequest(http.MethodPost, "/cases/case-1/events", strings.NewReader(payload))

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(f.coupler.createdCalls) != 1 || f.coupler.createdCalls[0] != "case-1" {
		t.Fatalf("coupler calls = %v, want [case-1]", f.coupler.createdCalls)
	}

	body := decodeBody(t, rec)
	caseStatus, ok := body["caseStatus"].(map[string]any)
	if !ok {
		t.Fatalf("missing caseStatus in response: %v", body)
	}
	if caseStatus["changed"] != true {
		t.Errorf("caseStatus.changed = %v, want true", caseStatus["changed"])
	}
	if caseStatus["status"] != "pending" {
		t.Errorf("caseStatus.status = %v, want pending", caseStatus["status"])
	}
}

func TestCreateEventRequiresCase(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	payload := `{"event_type":"hearing","event_title":"First hearing","event_date":"2026-09-15"}`
	req := httptest.NewRequest(http.MethodPost, "/cases/missing/events", strings.NewReader(payload))

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if len(f.events.created) != 0 {
		t.Error("event should not be created for a missing case")
	}
}

func TestDeleteEventRunsSettledCoupling(t *testing.T) {
	f := newFixtures()
	f.events.detail = &types.EventDetail{
		Event: types.Event{ID: "event-1", CaseID: "case-1", Status: types.EventStatusScheduled},
	}
	f.coupler.status = types.CaseStatusActive
	f.coupler.changed = true
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodDelete, "/events/event-1", nil)
	rec := s.serveHTTP(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(f.coupler.settledCalls) != 1 || f.coupler.settledCalls[0] != "case-1" {
		t.Errorf("coupler calls = %v, want [case-1]", f.coupler.settledCalls)
	}
}

func TestCreateReminderSelectsMethodFromCapabilities(t *testing.T) {
	f := newFixtures()
	f.events.detail = &types.EventDetail{
		Event:         types.Event{ID: "event-1", CaseID: "case-1"},
		HasSmartphone: utils.BoolPtr(true),
		CanRead:       utils.BoolPtr(false),
	}
	s := newTestService(t, f)

	payload := `{"send_date":"2026-09-14"}`
	req := httptest.NewRequest(http.MethodPost, "/events/event-1/reminders", strings.NewReader(payload))

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(f.reminders.created) != 1 {
		t.Fatalf("reminders created = %d, want 1", len(f.reminders.created))
	}
	if f.reminders.created[0].Method != types.ReminderMethodVoiceNote {
		t.Errorf("method = %s, want voice-note", f.reminders.created[0].Method)
	}

	body := decodeBody(t, rec)
	info, ok := body["method_info"].(map[string]any)
	if !ok {
		t.Fatalf("missing method_info in response: %v", body)
	}
	if info["selected_method"] != "voice-note" {
		t.Errorf("selected_method = %v, want voice-note", info["selected_method"])
	}
}

func TestFindBeneficiaryRequiresNameAndPhone(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodGet, "/beneficiaries/find?name=Asha", nil)
	rec := s.serveHTTP(req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFindBeneficiaryReportsMiss(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodGet, "/beneficiaries/find?name=Asha+Devi&phone=9876543210", nil)
	rec := s.serveHTTP(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["exists"] != false {
		t.Errorf("exists = %v, want false", body["exists"])
	}
}

func TestCreateCaseSkipsDriveFolderWhenNotRequested(t *testing.T) {
	f := newFixtures()
	f.beneficiaries.beneficiary = &types.Beneficiary{ID: "ben-1", Name: "Asha Devi"}
	s := newTestService(t, f)

	payload := `{"beneficiary_id":"ben-1","case_type":"domestic violence","case_title":"Protection order"}`
	req := httptest.NewRequest(http.MethodPost, "/cases", strings.NewReader(payload))

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if f.drive.folderCalls != 0 {
		t.Error("drive folder should not be created unless requested")
	}

	body := decodeBody(t, rec)
	folder, ok := body["driveFolder"].(map[string]any)
	if !ok {
		t.Fatalf("missing driveFolder in response: %v", body)
	}
	if folder["created"] != false {
		t.Errorf("driveFolder.created = %v, want false", folder["created"])
	}
}

func TestCreateCaseReportsMissingDriveToken(t *testing.T) {
	f := newFixtures()
	f.beneficiaries.beneficiary = &types.Beneficiary{ID: "ben-1", Name: "Asha Devi"}
	s := newTestService(t, f)

	payload := `{"beneficiary_id":"ben-1","case_type":"domestic violence","case_title":"Protection order","createDriveFolder":true}`
	req := httptest.NewRequest(http.MethodPost, "/cases", strings.NewReader(payload))

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(f.cases.created) != 1 {
		t.Fatalf("cases created = %d, want 1", len(f.cases.created))
	}

	body := decodeBody(t, rec)
	folder, ok := body["driveFolder"].(map[string]any)
	if !ok {
		t.Fatalf("missing driveFolder in response: %v", body)
	}
	if folder["created"] != false {
		t.Errorf("driveFolder.created = %v, want false", folder["created"])
	}
	if folder["error"] == nil {
		t.Error("expected an error explaining the missing token")
	}
}

func TestCreateCaseAttachesDriveFolder(t *testing.T) {
	f := newFixtures()
	f.beneficiaries.beneficiary = &types.Beneficiary{ID: "ben-1", Name: "Asha Devi"}
	f.drive.folder = &drive.Folder{ID: "folder-1", Name: "PACE-2025-001 - Asha Devi", URL: "https://drive.google.com/drive/folders/folder-1"}
	s := newTestService(t, f)

	payload := `{"beneficiary_id":"ben-1","case_type":"domestic violence","case_title":"Protection order","createDriveFolder":true}`
	req := httptest.NewRequest(http.MethodPost, "/cases", strings.NewReader(payload))
	req.Header.Set(driveTokenHeader, "token")

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if f.drive.folderCalls != 1 {
		t.Fatalf("folder calls = %d, want 1", f.drive.folderCalls)
	}
	if len(f.cases.updates) != 1 {
		t.Fatalf("case updates = %d, want 1", len(f.cases.updates))
	}
	if utils.PtrString(f.cases.updates[0].DriveFolderID) != "folder-1" {
		t.Errorf("recorded folder id = %s, want folder-1", utils.PtrString(f.cases.updates[0].DriveFolderID))
	}

	body := decodeBody(t, rec)
	folder, ok := body["driveFolder"].(map[string]any)
	if !ok {
		t.Fatalf("missing driveFolder in response: %v", body)
	}
	if folder["created"] != true {
		t.Errorf("driveFolder.created = %v, want true", folder["created"])
	}
}

func TestGetEventExtractsPathParam(t *testing.T) {
	f := newFixtures()
	f.events.detail = &types.EventDetail{
		Event: types.Event{ID: "event-1", CaseID: "case-1", EventTitle: "First hearing"},
	}
	s := newTestService(t, f)

	rec := s.serveHTTP(httptest.NewRequest(http.MethodGet, "/events/event-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	event, ok := body["event"].(map[string]any)
	if !ok {
		t.Fatalf("missing event in response: %v", body)
	}
	if event["id"] != "event-1" {
		t.Errorf("event id = %v, want event-1", event["id"])
	}

	rec = s.serveHTTP(httptest.NewRequest(http.MethodGet, "/events/event-2", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown id", rec.Code)
	}
}

func TestUploadDocumentResolvesUploaderBeforeUpload(t *testing.T) {
	f := newFixtures()
	f.cases.detail = caseDetail("case-1", utils.StringPtr("folder-1"))
	s := newTestService(t, f)

	// Exercise the handler with no user in context; it must refuse before
	// anything reaches the drive bridge.
	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/cases/case-1/documents", body)
	req.SetPathValue("id", "case-1")
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(driveTokenHeader, "token")

	rec := httptest.NewRecorder()
	s.handleUploadDocument(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if f.drive.uploadCalls != 0 {
		t.Error("upload should not be attempted without a resolved uploader")
	}
	if len(f.documents.created) != 0 {
		t.Error("no document should be recorded")
	}
}

func TestDeleteDocumentWithoutTokenLeavesRemoteFile(t *testing.T) {
	f := newFixtures()
	f.documents.detail = &types.DocumentDetail{
		Document: types.Document{ID: "doc-1", CaseID: "case-1", DriveFileID: "file-1"},
	}
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodDelete, "/documents/doc-1", nil)
	req = asUser(t, s, req, staffUser)

	rec := s.serveHTTP(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if f.drive.deleteCalls != 0 {
		t.Error("remote delete should be skipped without a token")
	}
}

func TestGetCaseNotFound(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodGet, "/cases/missing", nil)
	rec := s.serveHTTP(req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateReminderStatusValidates(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	req := httptest.NewRequest(http.MethodPut, "/reminders/rem-1/status", strings.NewReader(`{"status":"delivered"}`))
	rec := s.serveHTTP(req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	// Register through the handler so the stored hash is real.
	register := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Staff","email":"staff@paceaid.local","password":"correct-horse"}`))
	if rec := s.serveHTTP(register); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"staff@paceaid.local","password":"wrong"}`))
	rec := s.serveHTTP(login)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	f := newFixtures()
	s := newTestService(t, f)

	register := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Staff","email":"staff@paceaid.local","password":"correct-horse"}`))
	if rec := s.serveHTTP(register); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"staff@paceaid.local","password":"correct-horse"}`))
	rec := s.serveHTTP(login)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected a session cookie")
	}

	// The cookie should satisfy RequireAuth.
	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(sessionCookie)
	rec = s.serveHTTP(me)

	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}
