// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response (Success or Error) follows the same JSON envelope:
//
//	{"status": "...", "message": "...", "data": ..., "errors": [...], "meta": {...}}
//
// The storefront and admin dashboard parse this envelope directly, so its
// shape must not drift between endpoints.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
	"github.com/taibuivan/shopauth/pkg/pagination"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Code    string              `json:"code,omitempty"`
	Data    any                 `json:"data"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Meta    any                 `json:"meta,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard envelope.
func OK(writer http.ResponseWriter, message string, data any) {
	JSON(writer, http.StatusOK, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard envelope.
func Created(writer http.ResponseWriter, message string, data any) {
	JSON(writer, http.StatusCreated, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, data any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, Envelope{Status: StatusSuccess, Data: data, Meta: metadata})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())
	requestID := ctxutil.GetRequestID(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client.
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", requestID),
			slog.Any("cause", appError.Cause),
		)
	}

	envelope := Envelope{
		Status:  StatusError,
		Message: appError.Message,
		Code:    appError.Code,
		Errors:  appError.Details,
	}
	if len(appError.Meta) > 0 {
		envelope.Meta = appError.Meta
	}

	JSON(writer, appError.HTTPStatus, envelope)
}
