// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/constants"
	"github.com/libbyhq/libby/internal/platform/middleware"
	"github.com/libbyhq/libby/internal/platform/request"
	"github.com/libbyhq/libby/internal/platform/respond"
	"github.com/libbyhq/libby/internal/platform/validate"
)

// # HTTP Transport

// Handler exposes the authentication endpoints over REST.
type Handler struct {
	service *Service
}

// NewHandler constructs the auth transport layer.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
Routes assembles the authentication route table.

Description: Registration, login, refresh, and the recovery flows are
public. Logout and password changes require a verified access token.

Returns:
  - chi.Router: Configured subrouter
*/
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
		protected.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Cookie Handling

// setRefreshCookie stores the refresh token in a hardened cookie scoped to
// the auth endpoints, keeping it away from browser JavaScript entirely.
func setRefreshCookie(writer http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie instructs the browser to drop the refresh token.
func clearRefreshCookie(writer http.ResponseWriter) {
	setRefreshCookie(writer, "", -1)
}

// refreshTokenFromRequest reads the refresh token from the cookie, falling
// back to the JSON body for non-browser clients.
func refreshTokenFromRequest(httpRequest *http.Request) string {
	if cookie, err := httpRequest.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err == nil {
		return payload.RefreshToken
	}

	return ""
}

// sessionResponse shapes the login/refresh response body.
func sessionResponse(session *LoginSession) map[string]any {
	return map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int(AccessTokenTTL.Seconds()),
		FieldUser:        session.User,
	}
}

// # Endpoint Handlers

func (handler *Handler) register(writer http.ResponseWriter, httpRequest *http.Request) {
	var payload struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.service.Register(httpRequest.Context(), RegisterInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		DisplayName: payload.DisplayName,
	})
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.Created(writer, user)
}

func (handler *Handler) login(writer http.ResponseWriter, httpRequest *http.Request) {
	var payload struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.service.Login(httpRequest.Context(), LoginInput{
		Login:     payload.Login,
		Password:  payload.Password,
		UserAgent: httpRequest.UserAgent(),
		IPAddress: middleware.RealIP(httpRequest),
	})
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, int(RefreshTokenTTL.Seconds()))
	respond.OK(writer, sessionResponse(session))
}

func (handler *Handler) refresh(writer http.ResponseWriter, httpRequest *http.Request) {
	refreshToken := refreshTokenFromRequest(httpRequest)
	if refreshToken == "" {
		respond.Error(writer, httpRequest, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.service.RefreshSession(
		httpRequest.Context(),
		refreshToken,
		httpRequest.UserAgent(),
		middleware.RealIP(httpRequest),
	)
	if err != nil {
		clearRefreshCookie(writer)
		respond.Error(writer, httpRequest, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, int(RefreshTokenTTL.Seconds()))
	respond.OK(writer, sessionResponse(session))
}

func (handler *Handler) logout(writer http.ResponseWriter, httpRequest *http.Request) {
	if refreshToken := refreshTokenFromRequest(httpRequest); refreshToken != "" {
		if err := handler.service.Logout(httpRequest.Context(), refreshToken); err != nil {
			respond.Error(writer, httpRequest, err)
			return
		}
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

func (handler *Handler) verifyEmail(writer http.ResponseWriter, httpRequest *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	if err := handler.service.VerifyEmail(httpRequest.Context(), payload.Token); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Email verified"})
}

func (handler *Handler) forgotPassword(writer http.ResponseWriter, httpRequest *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	// The token is delivered out of band. The response is identical for
	// known and unknown emails to prevent account enumeration.
	if _, err := handler.service.RequestPasswordReset(httpRequest.Context(), payload.Email); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "If the email exists, a reset link has been sent"})
}

func (handler *Handler) resetPassword(writer http.ResponseWriter, httpRequest *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	if err := handler.service.ResetPassword(httpRequest.Context(), payload.Token, payload.NewPassword); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Password has been reset"})
}

func (handler *Handler) changePassword(writer http.ResponseWriter, httpRequest *http.Request) {
	claims, err := request.RequiredClaims(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	var payload struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := request.DecodeJSON(httpRequest, &payload); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	refreshToken := ""
	if cookie, err := httpRequest.Cookie(constants.RefreshTokenCookieName); err == nil {
		refreshToken = cookie.Value
	}

	err = handler.service.ChangePassword(
		httpRequest.Context(),
		claims.UserID,
		payload.CurrentPassword,
		payload.NewPassword,
		refreshToken,
	)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Password changed"})
}
