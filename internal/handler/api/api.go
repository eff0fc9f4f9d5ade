// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers for pages and applications.
//
// Every response uses the same envelope:
//
//	{"responseMeta": {"status": 200, "success": true}, "data": ..., "errors": null}
//
// Exactly one of data and errors is non-null.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/service"
)

// maxBodyBytes caps request bodies; page layouts are the largest payloads.
const maxBodyBytes = 1 << 20

// ResponseMeta carries the HTTP status of the response.
type ResponseMeta struct {
	Status  int  `json:"status"`
	Success bool `json:"success"`
}

// Envelope is the standard API response wrapper.
type Envelope struct {
	ResponseMeta ResponseMeta `json:"responseMeta"`
	Data         any          `json:"data"`
	Errors       *ErrorDetail `json:"errors"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteData writes a successful envelope.
func WriteData(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, Envelope{
		ResponseMeta: ResponseMeta{Status: statusCode, Success: true},
		Data:         data,
	})
}

// WriteSuccess writes a 200 OK envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteData(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created envelope.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteData(w, http.StatusCreated, data)
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, Envelope{
		ResponseMeta: ResponseMeta{Status: statusCode},
		Errors: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// WriteServiceError maps a collaborator error onto the envelope. Unknown
// errors are logged and reported as 500 without leaking their text.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, service.ErrUnsupportedOperation):
		WriteError(w, http.StatusBadRequest, "unsupported_operation", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidInput):
		WriteBadRequest(w, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusServiceUnavailable, "timeout", "Request timed out", nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the response.
		slog.Debug("request cancelled", "path", r.URL.Path)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON decodes a size-limited request body into dst. On failure it
// writes a 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// pathParam returns the decoded value of a chi URL parameter. chi matches
// against URL.RawPath when it is set, so names containing escaped
// characters such as %2F arrive still encoded.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
