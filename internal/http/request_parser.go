// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating the expense
// form. The same fields are accepted form-encoded (HTMX, plain browser
// posts) or as a JSON object.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// maxBodyBytes caps the size of an expense submission.
const maxBodyBytes = 64 << 10

// Messages shown to the user for rejected submissions.
const (
	MsgInvalidAmount = "Please enter a positive amount."
	MsgEmptyName     = "Please enter an expense name."
	MsgBadRequest    = "Invalid request format."
	MsgTooLarge      = "The submission is too large."
)

var errNotJSONObject = errors.New("request body is not a JSON object")

// ExpenseForm is a validated expense submission.
type ExpenseForm struct {
	Name     string
	Amount   decimal.Decimal
	Category string
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	isJSON      bool
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing. Bodies over
// maxBodyBytes are rejected with an *http.MaxBytesError.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	contentType := r.Header.Get("Content-Type")
	p := &RequestBodyParser{
		contentType: contentType,
		isJSON:      strings.Contains(contentType, "application/json"),
	}

	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.isJSON || p.body[0] == '{' {
		p.isJSON = true
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		if p.jsonData == nil {
			p.err = errNotJSONObject
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.isJSON {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the request was sent as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.isJSON
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseExpenseForm reads name, amount and type from the parser and applies
// the submission rules: the amount must be a positive number and the name
// must not be blank. A missing type falls back to the classifier default.
func ParseExpenseForm(p *RequestBodyParser) (ExpenseForm, error) {
	if err := p.Parse(); err != nil {
		return ExpenseForm{}, err
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return ExpenseForm{}, err
	}

	tag := p.Get("type")
	e := core.NewExpense(tag, p.Get("name"), amount)
	if err := e.Validate(); err != nil {
		return ExpenseForm{}, err
	}
	return ExpenseForm{Name: e.Name, Amount: e.Amount, Category: tag}, nil
}

// userMessage maps a form error to the text shown to the user.
func userMessage(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return MsgTooLarge
	case errors.Is(err, core.ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, core.ErrEmptyName):
		return MsgEmptyName
	default:
		return MsgBadRequest
	}
}

// errorStatus maps a form error to the response status.
func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrEmptyName):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
