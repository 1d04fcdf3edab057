// Package mockserver holds the status-simulation protocol shared by the
// emitted Express mock and the in-process mock server behind the serve
// command.
//
// A request can force a response status in three ways, checked in order:
// a ?_status=<code> query parameter, an "_error" field in the JSON body, or
// an "id" (body field or identifier path parameter) equal to one of
// SimulatedIDs. A forced status below 300 is treated as a success.
package mockserver

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/spec"
)

// SimulatedIDs are the id values that force their own value as status.
var SimulatedIDs = []int{201, 400, 401, 403, 404, 500}

// ErrorCodes maps "_error" body values to statuses.
var ErrorCodes = map[string]int{
	"VALIDATION":   400,
	"INVALID":      400,
	"UNAUTHORIZED": 401,
	"FORBIDDEN":    403,
	"NOT_FOUND":    404,
	"SERVER_ERROR": 500,
}

// StatusMessages are the canned messages of simulated responses.
var StatusMessages = map[int]string{
	200: "OK",
	201: "Created successfully",
	204: "Deleted successfully",
	400: "Validation failed",
	401: "Authentication required",
	403: "Access denied",
	404: "Resource not found",
	500: "Internal server error",
}

// ErrorNames are the "error" values of failure responses.
var ErrorNames = map[int]string{
	400: "BAD_REQUEST",
	401: "UNAUTHORIZED",
	403: "FORBIDDEN",
	404: "NOT_FOUND",
	500: "SERVER_ERROR",
}

// Pagination defaults for list routes.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// DefaultStatus is the success status of a verb absent any signal.
func DefaultStatus(method spec.HttpMethod) int {
	switch method {
	case spec.POST:
		return 201
	case spec.DELETE:
		return 204
	}
	return 200
}

// Message returns the canned message for status.
func Message(status int) string {
	if m, ok := StatusMessages[status]; ok {
		return m
	}
	return "Simulated status " + strconv.Itoa(status)
}

// ErrorName returns the "error" value of a failure response.
func ErrorName(status int) string {
	if n, ok := ErrorNames[status]; ok {
		return n
	}
	return "HTTP_" + strconv.Itoa(status)
}

// IsSuccess reports whether status is answered with a success wrapper.
func IsSuccess(status int) bool { return status >= 200 && status < 300 }

// Request carries the inputs the simulation inspects.
type Request struct {
	Query      url.Values
	Body       map[string]any
	PathParams map[string]string
}

// Simulate returns the status forced by r, if any.
func Simulate(r Request) (int, bool) {
	if raw := r.Query.Get("_status"); raw != "" {
		if code, err := strconv.Atoi(raw); err == nil && code >= 100 && code <= 599 {
			return code, true
		}
	}
	if v, ok := r.Body["_error"].(string); ok {
		if code, ok := ErrorCodes[strings.ToUpper(v)]; ok {
			return code, true
		}
	}
	if id, ok := r.Body["id"]; ok {
		if code, ok := simulatedID(id); ok {
			return code, true
		}
	}
	names := make([]string, 0, len(r.PathParams))
	for name := range r.PathParams {
		if isIDParam(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if code, ok := simulatedID(r.PathParams[name]); ok {
			return code, true
		}
	}
	return 0, false
}

func simulatedID(v any) (int, bool) {
	var n int
	switch id := v.(type) {
	case float64:
		if id != math.Trunc(id) {
			return 0, false
		}
		n = int(id)
	case int:
		n = id
	case string:
		parsed, err := strconv.Atoi(id)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	for _, code := range SimulatedIDs {
		if n == code {
			return code, true
		}
	}
	return 0, false
}

func isIDParam(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" || strings.HasSuffix(name, "Id") || strings.HasSuffix(name, "ID") || strings.HasSuffix(lower, "_id")
}

// Success is the body of every success response.
type Success struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Failure is the body of every error response.
type Failure struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// NewFailure builds the canned failure body of status.
func NewFailure(status int) Failure {
	return Failure{Error: ErrorName(status), Message: Message(status), StatusCode: status}
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total       int   `json:"total"`
	Count       int   `json:"count"`
	PerPage     int   `json:"perPage"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Links       Links `json:"links"`
}

// Links are page URLs; Prev and Next are null at the ends.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// PageParams reads ?page and ?perPage, falling back to the defaults for
// missing or non-positive values.
func PageParams(q url.Values) (page, perPage int) {
	page, perPage = DefaultPage, DefaultPerPage
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(q.Get("perPage")); err == nil && n > 0 {
		perPage = n
	}
	return page, perPage
}

// Paginate slices items to the requested page and describes it. base is the
// path the links point at.
func Paginate[T any](items []T, page, perPage int, base string) ([]T, Pagination) {
	total := len(items)
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	slice := make([]T, 0, end-start)
	slice = append(slice, items[start:end]...)

	link := func(p int) string { return fmt.Sprintf("%s?page=%d&perPage=%d", base, p, perPage) }
	p := Pagination{
		Total:       total,
		Count:       len(slice),
		PerPage:     perPage,
		CurrentPage: page,
		TotalPages:  totalPages,
		Links:       Links{First: link(1), Last: link(totalPages)},
	}
	if page > 1 {
		prev := link(min(page-1, totalPages))
		p.Links.Prev = &prev
	}
	if page < totalPages {
		next := link(page + 1)
		p.Links.Next = &next
	}
	return slice, p
}
