// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/middleware"
	requestutil "github.com/taibuivan/shopauth/internal/platform/request"
	"github.com/taibuivan/shopauth/internal/platform/respond"
	"github.com/taibuivan/shopauth/internal/platform/validate"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/internal/users/otp"
)

// # Definitions & Constructors

// HandlerOptions tunes transport behavior.
type HandlerOptions struct {
	// ExposeOTPCode returns the plaintext code from send-otp. Development only.
	ExposeOTPCode bool
}

// Handler implements the authentication HTTP endpoints.
//
// # Architecture
//
// The handler is a thin layer over [Service]: it decodes payloads, maps the
// session to the response envelope and manages the refresh-token cookie.
// Identifier and secret validation happens in the service.
type Handler struct {
	authService *Service
	options     HandlerOptions
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, options HandlerOptions) *Handler {
	return &Handler{authService: service, options: options}
}

// Routes returns a [chi.Router] with the public authentication endpoints.
// [middleware.Authenticate] must run before it.
//
// # Endpoints
//   - POST   /login          : Password or OTP login
//   - POST   /register       : Creates an account and logs it in
//   - POST   /refresh        : Exchanges a refresh token
//   - DELETE /logout         : Ends the session
//   - POST   /send-otp       : Sends a one-time code
//   - POST   /verify-otp     : Logs in with a one-time code
//   - POST   /login-with-otp : Same as verify-otp
//   - GET    /me             : Current account (bearer)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/register", handler.register)
	router.Post("/refresh", handler.refresh)
	router.Delete("/logout", handler.logout)
	router.Post("/send-otp", handler.sendOTP)
	router.Post("/verify-otp", handler.loginWithOTP)
	router.Post("/login-with-otp", handler.loginWithOTP)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// RegisterAdminRoutes mounts account administration. The caller guards the
// router with an admin role check.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/accounts/{id}/unlock", handler.unlock)
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

type registerRequest struct {
	User struct {
		Email                string `json:"email"`
		Phone                string `json:"phone"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
		FirstName            string `json:"first_name"`
		LastName             string `json:"last_name"`
	} `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type otpLoginRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

/*
Login authenticates an account.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (email|phone, password|otp)

Response:
  - 200: {user, token, refresh_token, token_type, expires_in}
  - 400: VALIDATION_ERROR
  - 401: INVALID_CREDENTIALS / CHALLENGE_MISMATCH
  - 403: ACCOUNT_INACTIVE
  - 423: ACCOUNT_LOCKED with meta.remaining_seconds
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), Credentials{
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		OTP:      input.OTP,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, http.StatusOK, "Logged in successfully", session)
}

/*
Register creates an account and returns a session for it.

POST /api/v1/auth/register

Request:
  - Body: registerRequest {user: {email, phone, password, password_confirmation, first_name, last_name}}

Response:
  - 201: {user, token, refresh_token, token_type, expires_in}
  - 400: Invalid JSON
  - 422: UNPROCESSABLE / DUPLICATE_IDENTITY with field errors
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), account.Draft{
		Email:                input.User.Email,
		Phone:                input.User.Phone,
		Password:             input.User.Password,
		PasswordConfirmation: input.User.PasswordConfirmation,
		FirstName:            input.User.FirstName,
		LastName:             input.User.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, http.StatusCreated, "Account registered successfully", session)
}

/*
Refresh rotates the session.

POST /api/v1/auth/refresh

Description: The refresh token is read from the body, falling back to the
refresh-token cookie.

Response:
  - 200: New token pair
  - 401: TOKEN_* errors
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeOptionalJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), handler.refreshToken(request, input.RefreshToken))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, http.StatusOK, "Token refreshed", session)
}

/*
Logout ends the current session.

DELETE /api/v1/auth/logout

Description: Always succeeds. A refresh token from the body or cookie is
revoked when revocation is enabled, and the cookie is cleared.

Response:
  - 200: Logged out
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	_ = requestutil.DecodeOptionalJSON(writer, request, &input)

	handler.authService.Logout(request.Context(), requestutil.Claims(request), handler.refreshToken(request, input.RefreshToken))

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.OK(writer, "Logged out successfully", nil)
}

/*
SendOTP issues a one-time code.

POST /api/v1/auth/send-otp

Request:
  - Body: sendOTPRequest (phone)

Response:
  - 200: {phone (masked), expires_at}
  - 403: ACCOUNT_INACTIVE
  - 404: NOT_REGISTERED
*/
func (handler *Handler) sendOTP(writer http.ResponseWriter, request *http.Request) {
	var input sendOTPRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	challenge, err := handler.authService.SendOTP(request.Context(), input.Phone)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := map[string]any{
		FieldPhone:     otp.MaskPhone(challenge.Phone),
		FieldExpiresAt: challenge.ExpiresAt,
	}
	if handler.options.ExposeOTPCode {
		payload[FieldCode] = challenge.Code
	}

	respond.OK(writer, "One-time code sent", payload)
}

/*
LoginWithOTP logs in with a one-time code. It backs both verify-otp and
login-with-otp.

POST /api/v1/auth/verify-otp
POST /api/v1/auth/login-with-otp

Response:
  - 200: {user, token, refresh_token, token_type, expires_in}
  - 400: VALIDATION_ERROR / CHALLENGE_EXPIRED / CHALLENGE_NOT_FOUND
  - 401: CHALLENGE_MISMATCH / INVALID_CREDENTIALS
  - 423: ACCOUNT_LOCKED
*/
func (handler *Handler) loginWithOTP(writer http.ResponseWriter, request *http.Request) {
	var input otpLoginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.LoginWithOTP(request.Context(), input.Phone, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, http.StatusOK, "Logged in successfully", session)
}

/*
Me returns the authenticated account.

GET /api/v1/auth/me

Response:
  - 200: Account
  - 401: UNAUTHORIZED
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	current, err := handler.authService.Me(request.Context(), claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", current)
}

/*
Unlock clears an account lock.

POST /api/v1/admin/accounts/{id}/unlock

Response:
  - 200: Account
  - 400: VALIDATION_ERROR (bad id)
  - 404: NOT_FOUND
*/
func (handler *Handler) unlock(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	accountID := requestutil.Param(request, "id")
	validator := &validate.Validator{}
	if err := validator.UUID("id", accountID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	unlocked, err := handler.authService.Unlock(request.Context(), accountID, claims.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account unlocked", unlocked)
}

// # Helpers

func (handler *Handler) refreshToken(request *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (handler *Handler) writeSession(writer http.ResponseWriter, status int, message string, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken.Value,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshToken.ExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.JSON(writer, status, respond.Envelope{
		Status:  respond.StatusSuccess,
		Message: message,
		Data: map[string]any{
			FieldUser:         session.Account,
			FieldToken:        session.AccessToken.Value,
			FieldRefreshToken: session.RefreshToken.Value,
			FieldTokenType:    TokenTypeBearer,
			FieldExpiresIn:    int(handler.authService.AccessTTL() / time.Second),
		},
	})
}
