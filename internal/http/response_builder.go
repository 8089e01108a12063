// Package http serves the dashboard page, the JSON report API and the
// server-side chart images.
//
// This file holds a small fluent builder for responses so every handler
// sets status, headers and body the same way.
package http

import (
	"encoding/json"
	"net/http"

	"paydash/internal/core"
)

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
	jsonBody   any
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// NoStore marks the response as never cacheable. Every report reflects
// the file at request time.
func (b *ResponseBuilder) NoStore() *ResponseBuilder {
	return b.Header("Cache-Control", "no-store")
}

// JSON sets a value to be encoded as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.jsonBody = v
	return b
}

// SVG sets an image/svg+xml body.
func (b *ResponseBuilder) SVG(content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = "image/svg+xml"
	b.body = content
	return b
}

// Text sets a plain text body.
func (b *ResponseBuilder) Text(content string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(content)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.jsonBody != nil {
		data, err := json.Marshal(b.jsonBody)
		if err != nil {
			http.Error(w, "encode response", http.StatusInternalServerError)
			return
		}
		b.body = append(data, '\n')
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusFor maps a render failure to its HTTP status.
func StatusFor(err error) int {
	switch core.Kind(err) {
	case core.KindFileMissing:
		return http.StatusNotFound
	case core.KindMalformedInput, core.KindMalformedRecord:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse creates a JSON error response for a render failure. The
// message is the one shown to users instead of the report.
func ErrorResponse(err error, source string) *ResponseBuilder {
	return NewResponse().
		Status(StatusFor(err)).
		NoStore().
		JSON(ErrorBody{Error: ErrorDetail{Kind: core.Kind(err), Message: core.UserMessage(err, source)}})
}

// NotFoundError creates a 404 JSON response with a custom kind.
func NotFoundError(kind, message string) *ResponseBuilder {
	return NewResponse().
		Status(http.StatusNotFound).
		JSON(ErrorBody{Error: ErrorDetail{Kind: kind, Message: message}})
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return NewResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}

// RequireGET returns a 405 builder unless the request is GET or HEAD.
func RequireGET(r *http.Request) *ResponseBuilder {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil
	}
	return MethodNotAllowedError("GET, HEAD")
}
