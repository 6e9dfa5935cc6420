// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/middleware"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/users/auth"
)

type envelope struct {
	Status  string         `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Meta    map[string]any `json:"meta"`
}

func newRouter(fixture *fixture, options auth.HandlerOptions) http.Handler {
	handler := auth.NewHandler(fixture.service, options)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(fixture.tokens))
	router.Mount("/auth", handler.Routes())
	router.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		handler.RegisterAdminRoutes(admin)
	})
	return router
}

func call(t *testing.T, router http.Handler, method, path, body, bearer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	var request *http.Request
	if reader != nil {
		request = httptest.NewRequest(method, path, reader)
	} else {
		request = httptest.NewRequest(method, path, nil)
	}
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

/*
TestHandler_RegisterLoginMe runs the main happy path over HTTP.
*/
func TestHandler_RegisterLoginMe(t *testing.T) {
	fixture := newFixture(t, false)
	router := newRouter(fixture, auth.HandlerOptions{})

	recorder, body := call(t, router, http.MethodPost, "/auth/register",
		`{"user":{"email":"alice@example.com","password":"Secur3!pass","password_confirmation":"Secur3!pass","first_name":"Alice"}}`, "")
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "success", body.Status)
	assert.NotEmpty(t, body.Data["token"])
	assert.NotEmpty(t, body.Data["refresh_token"])
	assert.Equal(t, "Bearer", body.Data["token_type"])
	assert.EqualValues(t, 86400, body.Data["expires_in"])

	user, ok := body.Data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, aliceEmail, user["email"])
	assert.NotContains(t, user, "password_hash")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.RefreshTokenCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	recorder, body = call(t, router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Secur3!pass"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	token, _ := body.Data["token"].(string)

	recorder, body = call(t, router, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, aliceEmail, body.Data["email"])

	recorder, body = call(t, router, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

/*
TestHandler_LoginErrors maps service errors to status codes.
*/
func TestHandler_LoginErrors(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)
	router := newRouter(fixture, auth.HandlerOptions{})

	for range 4 {
		recorder, body := call(t, router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Wr0ng!pass"}`, "")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", body.Code)
	}

	recorder, body := call(t, router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Wr0ng!pass"}`, "")
	require.Equal(t, http.StatusLocked, recorder.Code)
	assert.Equal(t, "ACCOUNT_LOCKED", body.Code)
	assert.EqualValues(t, 900, body.Meta["remaining_seconds"])

	recorder, body = call(t, router, http.MethodPost, "/auth/login", `{"password":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)

	recorder, _ = call(t, router, http.MethodPost, "/auth/login", `{`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestHandler_RegisterDuplicate answers 422 with the taken field.
*/
func TestHandler_RegisterDuplicate(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)
	router := newRouter(fixture, auth.HandlerOptions{})

	recorder, body := call(t, router, http.MethodPost, "/auth/register",
		`{"user":{"email":"alice@example.com","password":"Secur3!pass"}}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Equal(t, "DUPLICATE_IDENTITY", body.Code)
}

/*
TestHandler_OTPFlow sends a code, exposes it in development mode and logs in.
*/
func TestHandler_OTPFlow(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerBob(t, "")
	router := newRouter(fixture, auth.HandlerOptions{ExposeOTPCode: true})

	recorder, body := call(t, router, http.MethodPost, "/auth/send-otp", `{"phone":"9876543210"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "+91******3210", body.Data["phone"])
	code, _ := body.Data["code"].(string)
	require.Len(t, code, 6)

	recorder, _ = call(t, router, http.MethodPost, "/auth/verify-otp", `{"phone":"9876543210","otp":"12"}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, body = call(t, router, http.MethodPost, "/auth/login-with-otp", `{"phone":"9876543210","otp":"`+code+`"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, body.Data["token"])

	recorder, body = call(t, router, http.MethodPost, "/auth/verify-otp", `{"phone":"9876543210","otp":"`+code+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "CHALLENGE_NOT_FOUND", body.Code)
}

/*
TestHandler_SendOTPHidesCode never returns the code outside development.
*/
func TestHandler_SendOTPHidesCode(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerBob(t, "")
	router := newRouter(fixture, auth.HandlerOptions{})

	recorder, body := call(t, router, http.MethodPost, "/auth/send-otp", `{"phone":"9876543210"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, body.Data, "code")

	recorder, body = call(t, router, http.MethodPost, "/auth/send-otp", `{"phone":"9123456789"}`, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_REGISTERED", body.Code)
}

/*
TestHandler_RefreshAndLogout uses the body token and always succeeds on logout.
*/
func TestHandler_RefreshAndLogout(t *testing.T) {
	fixture := newFixture(t, true)
	session := fixture.registerAlice(t)
	router := newRouter(fixture, auth.HandlerOptions{})

	recorder, body := call(t, router, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+session.RefreshToken.Value+`"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	rotated, _ := body.Data["refresh_token"].(string)
	require.NotEmpty(t, rotated)

	recorder, body = call(t, router, http.MethodPost, "/auth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_MALFORMED", body.Code)

	recorder, _ = call(t, router, http.MethodDelete, "/auth/logout", `{"refresh_token":"`+rotated+`"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	recorder, body = call(t, router, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+rotated+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_REVOKED", body.Code)

	recorder, _ = call(t, router, http.MethodDelete, "/auth/logout", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestHandler_AdminUnlock requires the admin role.
*/
func TestHandler_AdminUnlock(t *testing.T) {
	fixture := newFixture(t, false)
	session := fixture.registerAlice(t)
	router := newRouter(fixture, auth.HandlerOptions{})

	for range 5 {
		_, _ = fixture.loginAlice("Wr0ng!pass")
	}

	path := "/admin/accounts/" + session.Account.ID + "/unlock"

	recorder, body := call(t, router, http.MethodPost, path, "", session.AccessToken.Value)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "FORBIDDEN", body.Code)

	admin, err := fixture.tokens.IssueAccessToken(sec.Subject{AccountID: "0190a0e1-0000-7000-8000-0000000000ad", Role: sec.RoleAdmin})
	require.NoError(t, err)

	recorder, _ = call(t, router, http.MethodPost, path, "", admin.Value)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, body = call(t, router, http.MethodPost, "/admin/accounts/not-a-uuid/unlock", "", admin.Value)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)

	_, err = fixture.loginAlice(alicePassword)
	assert.NoError(t, err)
}
