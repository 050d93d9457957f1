package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"paceaid/internal/drive"
	"paceaid/internal/utils"
	"paceaid/pkg/types"

	"github.com/sirupsen/logrus"
)

type fakeBeneficiaryStore struct {
	beneficiary *types.Beneficiary
	created     []*types.Beneficiary
	updates     []*types.BeneficiaryUpdate
}

func (f *fakeBeneficiaryStore) Beneficiary(ctx context.Context, id string) (*types.Beneficiary, error) {
	if f.beneficiary != nil && f.beneficiary.ID == id {
		return f.beneficiary, nil
	}
	return nil, types.ErrBeneficiaryNotFound
}

func (f *fakeBeneficiaryStore) Beneficiaries(ctx context.Context) ([]*types.Beneficiary, error) {
	if f.beneficiary == nil {
		return []*types.Beneficiary{}, nil
	}
	return []*types.Beneficiary{f.beneficiary}, nil
}

func (f *fakeBeneficiaryStore) FindByNameAndPhone(ctx context.Context, name, phone string) (*types.Beneficiary, error) {
	if f.beneficiary != nil {
		return f.beneficiary, nil
	}
	return nil, types.ErrBeneficiaryNotFound
}

func (f *fakeBeneficiaryStore) CreateBeneficiary(ctx context.Context, beneficiary *types.Beneficiary) error {
	beneficiary.ID = utils.NanoID()
	f.created = append(f.created, beneficiary)
	return nil
}

func (f *fakeBeneficiaryStore) UpdateBeneficiary(ctx context.Context, id string, update *types.BeneficiaryUpdate) error {
	if f.beneficiary == nil || f.beneficiary.ID != id {
		return types.ErrBeneficiaryNotFound
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeBeneficiaryStore) DeleteBeneficiary(ctx context.Context, id string) error {
	if f.beneficiary == nil || f.beneficiary.ID != id {
		return types.ErrBeneficiaryNotFound
	}
	return nil
}

type fakeCaseStore struct {
	detail    *types.CaseDetail
	createErr error
	created   []*types.Case
	updates   []*types.CaseUpdate
}

func (f *fakeCaseStore) Case(ctx context.Context, id string) (*types.CaseDetail, error) {
	if f.detail != nil && f.detail.ID == id {
		return f.detail, nil
	}
	return nil, types.ErrCaseNotFound
}

func (f *fakeCaseStore) Cases(ctx context.Context, filters types.CaseFilters) ([]*types.CaseDetail, error) {
	if f.detail == nil {
		return []*types.CaseDetail{}, nil
	}
	return []*types.CaseDetail{f.detail}, nil
}

func (f *fakeCaseStore) OngoingCases(ctx context.Context, dateFilter string) ([]*types.CaseDetail, error) {
	return f.Cases(ctx, types.CaseFilters{})
}

func (f *fakeCaseStore) CasesByBeneficiary(ctx context.Context, beneficiaryID string) ([]*types.Case, error) {
	return []*types.Case{}, nil
}

func (f *fakeCaseStore) CreateCase(ctx context.Context, c *types.Case) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = utils.NanoID()
	c.CaseCode = "PACE-2025-001"
	if c.Status == "" {
		c.Status = types.CaseStatusActive
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCaseStore) UpdateCase(ctx context.Context, id string, update *types.CaseUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeCaseStore) DeleteCase(ctx context.Context, id string) error {
	if f.detail == nil || f.detail.ID != id {
		return types.ErrCaseNotFound
	}
	return nil
}

func (f *fakeCaseStore) TotalCount(ctx context.Context) (int64, error) {
	if f.detail == nil {
		return 0, nil
	}
	return 1, nil
}

type fakeEventStore struct {
	detail  *types.EventDetail
	created []*types.Event
	updates []*types.EventUpdate
}

func (f *fakeEventStore) Event(ctx context.Context, id string) (*types.EventDetail, error) {
	if f.detail != nil && f.detail.ID == id {
		return f.detail, nil
	}
	return nil, types.ErrEventNotFound
}

func (f *fakeEventStore) EventsByCase(ctx context.Context, caseID string) ([]*types.Event, error) {
	return []*types.Event{}, nil
}

func (f *fakeEventStore) UpcomingEvents(ctx context.Context, days int) ([]*types.UpcomingEvent, error) {
	return []*types.UpcomingEvent{}, nil
}

func (f *fakeEventStore) CreateEvent(ctx context.Context, event *types.Event) error {
	event.ID = utils.NanoID()
	event.Status = types.EventStatusScheduled
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEventStore) UpdateEvent(ctx context.Context, id string, update *types.EventUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeEventStore) DeleteEvent(ctx context.Context, id string) error {
	return nil
}

type fakeReminderStore struct {
	created []*types.Reminder
}

func (f *fakeReminderStore) CreateReminder(ctx context.Context, reminder *types.Reminder) error {
	reminder.ID = utils.NanoID()
	reminder.Status = types.ReminderStatusPending
	f.created = append(f.created, reminder)
	return nil
}

func (f *fakeReminderStore) RemindersByEvent(ctx context.Context, eventID string) ([]*types.Reminder, error) {
	return []*types.Reminder{}, nil
}

func (f *fakeReminderStore) UpcomingReminders(ctx context.Context) ([]*types.UpcomingReminder, error) {
	return []*types.UpcomingReminder{}, nil
}

func (f *fakeReminderStore) UpdateStatus(ctx context.Context, id string, status types.ReminderStatus) error {
	return nil
}

type fakeDocumentStore struct {
	detail  *types.DocumentDetail
	created []*types.Document
}

func (f *fakeDocumentStore) Document(ctx context.Context, id string) (*types.DocumentDetail, error) {
	if f.detail != nil && f.detail.ID == id {
		return f.detail, nil
	}
	return nil, types.ErrDocumentNotFound
}

func (f *fakeDocumentStore) DocumentsByCase(ctx context.Context, caseID string, category types.DocumentCategory) ([]*types.DocumentDetail, error) {
	return []*types.DocumentDetail{}, nil
}

func (f *fakeDocumentStore) CreateDocument(ctx context.Context, document *types.Document) error {
	document.ID = utils.NanoID()
	f.created = append(f.created, document)
	return nil
}

func (f *fakeDocumentStore) UpdateDocument(ctx context.Context, id string, update *types.DocumentUpdate) error {
	return nil
}

func (f *fakeDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	return nil
}

type fakeUserStore struct {
	user *types.User
}

func (f *fakeUserStore) User(ctx context.Context, id string) (*types.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeUserStore) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *types.User) error {
	user.ID = utils.NanoID()
	f.user = user
	return nil
}

type fakeCoupler struct {
	status  types.CaseStatus
	changed bool
	err     error

	createdCalls []string
	settledCalls []string
}

func (f *fakeCoupler) EventCreated(ctx context.Context, caseID string) (types.CaseStatus, bool, error) {
	f.createdCalls = append(f.createdCalls, caseID)
	return f.status, f.changed, f.err
}

func (f *fakeCoupler) EventSettled(ctx context.Context, caseID string) (types.CaseStatus, bool, error) {
	f.settledCalls = append(f.settledCalls, caseID)
	return f.status, f.changed, f.err
}

type fakeDrive struct {
	folder *drive.Folder
	file   *drive.File

	folderErr error
	uploadErr error

	folderCalls int
	uploadCalls int
	deleteCalls int

	uploadedName string
}

func (f *fakeDrive) CreateCaseFolder(ctx context.Context, accessToken, caseCode, beneficiaryName string) (*drive.Folder, error) {
	f.folderCalls++
	return f.folder, f.folderErr
}

func (f *fakeDrive) UploadFile(ctx context.Context, accessToken, folderID, name, mimeType string, content io.Reader) (*drive.File, error) {
	f.uploadCalls++
	f.uploadedName = name
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.file, nil
}

func (f *fakeDrive) DeleteFile(ctx context.Context, accessToken, fileID string) error {
	f.deleteCalls++
	return nil
}

type fakeOAuth struct{}

func (f *fakeOAuth) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeOAuth) Exchange(ctx context.Context, code string) (*types.TokenResponse, error) {
	return &types.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, nil
}

type fixtures struct {
	beneficiaries *fakeBeneficiaryStore
	cases         *fakeCaseStore
	events        *fakeEventStore
	reminders     *fakeReminderStore
	documents     *fakeDocumentStore
	users         *fakeUserStore
	coupler       *fakeCoupler
	drive         *fakeDrive
	oauth         *fakeOAuth
}

func newFixtures() *fixtures {
	return &fixtures{
		beneficiaries: &fakeBeneficiaryStore{},
		cases:         &fakeCaseStore{},
		events:        &fakeEventStore{},
		reminders:     &fakeReminderStore{},
		documents:     &fakeDocumentStore{},
		users:         &fakeUserStore{},
		coupler:       &fakeCoupler{},
		drive:         &fakeDrive{},
		oauth:         &fakeOAuth{},
	}
}

func testConfig() *types.Config {
	return &types.Config{
		ServerPort:       8080,
		ReadTimeoutSec:   10,
		WriteTimeoutSec:  15,
		CaseCodePrefix:   "PACE",
		JWTSecret:        "test-secret",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x1f}, 32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x2e}, 32)),
	}
}

func newTestService(t *testing.T, f *fixtures) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := New(
		testConfig(),
		logger,
		f.beneficiaries,
		f.cases,
		f.events,
		f.reminders,
		f.documents,
		f.users,
		f.coupler,
		f.drive,
		f.oauth,
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	return s
}

func (s *Service) serveHTTP(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

// asUser attaches a valid session cookie for the given user.
func asUser(t *testing.T, s *Service, req *http.Request, user *types.User) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	if err := s.setSessionCookie(rec, user); err != nil {
		t.Fatalf("failed to issue session cookie: %v", err)
	}

	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}

	return req
}
