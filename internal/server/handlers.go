package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
)

// Error kinds reported in the error envelope
const (
	KindInvalidRequest          = "invalid_request"
	KindInvalidURL              = "invalid_url"
	KindClassifierUnavailable   = "classifier_unavailable"
	KindUpstreamError           = "upstream_error"
	KindThreatIntelUnavailable  = "threat_intel_unavailable"
	KindThreatIntelUnconfigured = "threat_intel_unconfigured"
	KindNotFound                = "not_found"
	KindMethodNotAllowed        = "method_not_allowed"
	KindRequestTooLarge         = "request_too_large"
	KindInternal                = "internal_error"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	ErrorKind  string `json:"error_kind"`
	Message    string `json:"error"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// APIError is an error carrying its HTTP status and envelope
type APIError struct {
	Status int
	Body   ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Body.ErrorKind, e.Body.Message)
}

func newAPIError(status int, kind, message string) *APIError {
	return &APIError{Status: status, Body: ErrorResponse{ErrorKind: kind, Message: message}}
}

// CheckURLRequest is the body of POST /check-url
type CheckURLRequest struct {
	URL string `json:"url"`
}

func (s *HTTPServer) checkURL(c echo.Context) error {
	var req CheckURLRequest
	if err := c.Bind(&req); err != nil {
		return newAPIError(http.StatusBadRequest, KindInvalidRequest, "Invalid request payload")
	}
	if req.URL == "" {
		req.URL = c.QueryParam("url")
	}

	result, err := s.service.CheckURL(c.Request().Context(), req.URL)
	if err != nil {
		var upstream *core.UpstreamError
		switch {
		case errors.Is(err, core.ErrInvalidURL):
			return newAPIError(http.StatusBadRequest, KindInvalidURL, "Invalid URL format")
		case errors.Is(err, core.ErrThreatIntelNotConfigured):
			return newAPIError(http.StatusServiceUnavailable, KindThreatIntelUnconfigured, err.Error())
		case errors.As(err, &upstream):
			apiErr := newAPIError(http.StatusBadGateway, KindUpstreamError, upstream.Error())
			apiErr.Body.Details = upstream.Details
			apiErr.Body.StatusCode = upstream.StatusCode
			return apiErr
		default:
			s.logger.Error("Threat intelligence lookup failed", zap.Error(err))
			return newAPIError(http.StatusBadGateway, KindThreatIntelUnavailable, "Threat intelligence lookup failed")
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (s *HTTPServer) analyze(c echo.Context) error {
	var req core.AnalysisRequest
	if err := c.Bind(&req); err != nil {
		return newAPIError(http.StatusBadRequest, KindInvalidRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return newAPIError(http.StatusBadRequest, KindInvalidRequest, err.Error())
	}

	resp, err := s.service.AnalyzeEmail(c.Request().Context(), &req)
	if err != nil {
		var clsErr *core.ClassifierError
		if errors.As(err, &clsErr) {
			return newAPIError(http.StatusBadGateway, KindClassifierUnavailable, err.Error())
		}
		s.logger.Error("Email analysis failed", zap.Error(err))
		return newAPIError(http.StatusInternalServerError, KindInternal, "Email analysis failed")
	}

	return c.JSON(http.StatusOK, resp)
}

// handleError renders every error, including framework ones, as an ErrorResponse
func (s *HTTPServer) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = newAPIError(httpErr.Code, kindForStatus(httpErr.Code), fmt.Sprint(httpErr.Message))
	default:
		s.logger.Error("Unhandled error", zap.Error(err))
		apiErr = newAPIError(http.StatusInternalServerError, KindInternal, http.StatusText(http.StatusInternalServerError))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(apiErr.Status)
	} else {
		writeErr = c.JSON(apiErr.Status, apiErr.Body)
	}
	if writeErr != nil {
		s.logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return KindInvalidRequest
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusMethodNotAllowed:
		return KindMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return KindRequestTooLarge
	default:
		return KindInternal
	}
}
