package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"paceaid/internal/drive"
	"paceaid/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Store interfaces are satisfied by the repositories in internal/store;
// tests swap in fakes.

type BeneficiaryStore interface {
	Beneficiary(ctx context.Context, id string) (*types.Beneficiary, error)
	Beneficiaries(ctx context.Context) ([]*types.Beneficiary, error)
	FindByNameAndPhone(ctx context.Context, name, phone string) (*types.Beneficiary, error)
	CreateBeneficiary(ctx context.Context, beneficiary *types.Beneficiary) error
	UpdateBeneficiary(ctx context.Context, id string, update *types.BeneficiaryUpdate) error
	DeleteBeneficiary(ctx context.Context, id string) error
}

type CaseStore interface {
	Case(ctx context.Context, id string) (*types.CaseDetail, error)
	Cases(ctx context.Context, filters types.CaseFilters) ([]*types.CaseDetail, error)
	OngoingCases(ctx context.Context, dateFilter string) ([]*types.CaseDetail, error)
	CasesByBeneficiary(ctx context.Context, beneficiaryID string) ([]*types.Case, error)
	CreateCase(ctx context.Context, c *types.Case) error
	UpdateCase(ctx context.Context, id string, update *types.CaseUpdate) error
	DeleteCase(ctx context.Context, id string) error
	TotalCount(ctx context.Context) (int64, error)
}

type EventStore interface {
	Event(ctx context.Context, id string) (*types.EventDetail, error)
	EventsByCase(ctx context.Context, caseID string) ([]*types.Event, error)
	UpcomingEvents(ctx context.Context, days int) ([]*types.UpcomingEvent, error)
	CreateEvent(ctx context.Context, event *types.Event) error
	UpdateEvent(ctx context.Context, id string, update *types.EventUpdate) error
	DeleteEvent(ctx context.Context, id string) error
}

type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *types.Reminder) error
	RemindersByEvent(ctx context.Context, eventID string) ([]*types.Reminder, error)
	UpcomingReminders(ctx context.Context) ([]*types.UpcomingReminder, error)
	UpdateStatus(ctx context.Context, id string, status types.ReminderStatus) error
}

type DocumentStore interface {
	Document(ctx context.Context, id string) (*types.DocumentDetail, error)
	DocumentsByCase(ctx context.Context, caseID string, category types.DocumentCategory) ([]*types.DocumentDetail, error)
	CreateDocument(ctx context.Context, document *types.Document) error
	UpdateDocument(ctx context.Context, id string, update *types.DocumentUpdate) error
	DeleteDocument(ctx context.Context, id string) error
}

type UserStore interface {
	User(ctx context.Context, id string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	CreateUser(ctx context.Context, user *types.User) error
}

// StatusCoupler is the case status side effect of event mutations.
type StatusCoupler interface {
	EventCreated(ctx context.Context, caseID string) (types.CaseStatus, bool, error)
	EventSettled(ctx context.Context, caseID string) (types.CaseStatus, bool, error)
}

// DriveBridge is the external folder/file integration. Every call takes the
// per-request bearer token.
type DriveBridge interface {
	CreateCaseFolder(ctx context.Context, accessToken, caseCode, beneficiaryName string) (*drive.Folder, error)
	UploadFile(ctx context.Context, accessToken, folderID, name, mimeType string, content io.Reader) (*drive.File, error)
	DeleteFile(ctx context.Context, accessToken, fileID string) error
}

type TokenExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*types.TokenResponse, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	beneficiaries BeneficiaryStore
	cases         CaseStore
	events        EventStore
	reminders     ReminderStore
	documents     DocumentStore
	users         UserStore

	coupler StatusCoupler
	drive   DriveBridge
	oauth   TokenExchanger

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	beneficiaries BeneficiaryStore,
	cases CaseStore,
	events EventStore,
	reminders ReminderStore,
	documents DocumentStore,
	users UserStore,
	statusCoupler StatusCoupler,
	driveBridge DriveBridge,
	oauth TokenExchanger,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		beneficiaries: beneficiaries,
		cases:         cases,
		events:        events,
		reminders:     reminders,
		documents:     documents,
		users:         users,

		coupler: statusCoupler,
		drive:   driveBridge,
		oauth:   oauth,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)
	r.HandleFunc("/auth/google/callback", s.handleGoogleCallback, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/auth/me", s.handleCurrentUser, http.MethodGet)
		r.HandleFunc("/auth/google/url", s.handleGoogleAuthURL, http.MethodGet)
	})

	// Registration order matters: fixed segments like /find and /ongoing
	// must precede their :id siblings.
	r.HandleFunc("/beneficiaries", s.handleListBeneficiaries, http.MethodGet)
	r.HandleFunc("/beneficiaries/find", s.handleFindBeneficiary, http.MethodGet)
	r.HandleFunc("/beneficiaries/:id", s.handleGetBeneficiary, http.MethodGet)
	r.HandleFunc("/beneficiaries", s.handleCreateBeneficiary, http.MethodPost)
	r.HandleFunc("/beneficiaries/:id", s.handleUpdateBeneficiary, http.MethodPut)
	r.HandleFunc("/beneficiaries/:id", s.handleDeleteBeneficiary, http.MethodDelete)

	r.HandleFunc("/cases", s.handleListCases, http.MethodGet)
	r.HandleFunc("/cases/ongoing", s.handleOngoingCases, http.MethodGet)
	r.HandleFunc("/cases/filter", s.handleFilterCases, http.MethodGet)
	r.HandleFunc("/cases/:id", s.handleGetCase, http.MethodGet)
	r.HandleFunc("/cases", s.handleCreateCase, http.MethodPost)
	r.HandleFunc("/cases/:id", s.handleUpdateCase, http.MethodPut)
	r.HandleFunc("/cases/:id", s.handleDeleteCase, http.MethodDelete)

	r.HandleFunc("/cases/:id/events", s.handleCreateEvent, http.MethodPost)
	r.HandleFunc("/cases/:id/events", s.handleEventsByCase, http.MethodGet)
	r.HandleFunc("/events/upcoming", s.handleUpcomingEvents, http.MethodGet)
	r.HandleFunc("/events/:eventID", s.handleGetEvent, http.MethodGet)
	r.HandleFunc("/events/:eventID", s.handleUpdateEvent, http.MethodPut)
	r.HandleFunc("/events/:eventID", s.handleDeleteEvent, http.MethodDelete)
	r.HandleFunc("/events/:eventID/reminders", s.handleCreateReminder, http.MethodPost)
	r.HandleFunc("/events/:eventID/reminders", s.handleRemindersByEvent, http.MethodGet)

	r.HandleFunc("/reminders/upcoming", s.handleUpcomingReminders, http.MethodGet)
	r.HandleFunc("/reminders/:id/status", s.handleUpdateReminderStatus, http.MethodPut)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/cases/:id/documents", s.handleUploadDocument, http.MethodPost)
		r.HandleFunc("/cases/:id/documents", s.handleDocumentsByCase, http.MethodGet)
		r.HandleFunc("/documents/:id", s.handleGetDocument, http.MethodGet)
		r.HandleFunc("/documents/:id", s.handleUpdateDocument, http.MethodPut)
		r.HandleFunc("/documents/:id", s.handleDeleteDocument, http.MethodDelete)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
