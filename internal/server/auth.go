package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"paceaid/internal/utils"
	"paceaid/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/crypto/bcrypt"
)

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req types.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	role := types.UserRoleStaff
	if req.Role != "" {
		if !req.Role.Valid() {
			s.respondError(w, http.StatusBadRequest, "invalid role")
			return
		}
		role = req.Role
	}

	_, err := s.users.UserByEmail(r.Context(), req.Email)
	if err == nil {
		s.respondError(w, http.StatusConflict, "email already registered")
		return
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		s.logger.WithError(err).Error("failed to look up user by email")
		s.respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	user := &types.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.CreateUser(r.Context(), user); err != nil {
		s.logger.WithError(err).Error("failed to create user")
		s.respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered",
		"user":    user,
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.users.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, types.ErrUserNotFound) {
			s.logger.WithError(err).Error("failed to look up user by email")
		}
		s.respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := s.setSessionCookie(w, user); err != nil {
		s.logger.WithError(err).Error("failed to issue session")
		s.respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "logged in",
		"user":    user,
	})
}

func (s *Service) setSessionCookie(w http.ResponseWriter, user *types.User) error {

	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(time.Duration(s.config.SessionMaxAgeSec) * time.Second)).
		Claim("email", user.Email).
		Claim("role", string(user.Role)).
		Build()
	if err != nil {
		return utils.ErrorWrapOrNil(err, "failed to build token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), []byte(s.config.JWTSecret)))
	if err != nil {
		return utils.ErrorWrapOrNil(err, "failed to sign token")
	}

	encoded, err := s.cookie.Encode(sessionCookieName, string(signed))
	if err != nil {
		return utils.ErrorWrapOrNil(err, "failed to encode cookie")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   s.config.SessionMaxAgeSec,
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Service) handleCurrentUser(w http.ResponseWriter, r *http.Request) {

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := s.users.User(r.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondError(w, http.StatusUnauthorized, "user no longer exists")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user")
		s.respondError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Service) handleGoogleAuthURL(w http.ResponseWriter, r *http.Request) {

	state := utils.NanoIDSize(21)

	s.respondJSON(w, http.StatusOK, map[string]string{
		"authUrl": s.oauth.AuthURL(state),
	})
}

func (s *Service) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {

	code := r.URL.Query().Get("code")
	if code == "" {
		s.respondError(w, http.StatusBadRequest, "authorization code is required")
		return
	}

	tokens, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.logger.WithError(err).Error("failed to exchange authorization code")
		s.respondError(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	s.respondJSON(w, http.StatusOK, tokens)
}
