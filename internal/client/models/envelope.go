package models

import "encoding/json"

// FieldError is a field-level validation failure reported by the backend.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param"`
	Value any    `json:"value,omitempty"`
}

// Envelope is the uniform response shape of every gateway operation.
//
// Callers must not assume Data is present when Success is true: operations
// such as logout or forgot-password succeed without a payload.
type Envelope[T any] struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *T           `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HasData reports whether the envelope succeeded and carries a payload.
func (e Envelope[T]) HasData() bool {
	return e.Success && e.Data != nil
}

// Fail builds an unsuccessful envelope with the given message.
func Fail[T any](message string) Envelope[T] {
	return Envelope[T]{Success: false, Message: message}
}

// Empty is the payload type of operations that return no data.
type Empty struct{}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserData is the payload of signup and current-user lookups.
type UserData struct {
	User User `json:"user"`
}

// DomainCheck is the payload of a company domain allow-list lookup.
// Company is passed through untouched; its shape belongs to the backend.
type DomainCheck struct {
	IsAllowed bool            `json:"isAllowed"`
	Company   json.RawMessage `json:"company,omitempty"`
}

// Result is the simplified outcome the session store hands to views.
type Result struct {
	Success     bool
	Message     string
	FieldErrors []FieldError
}

// ResultFrom reduces an envelope to a Result.
func ResultFrom[T any](e Envelope[T]) Result {
	return Result{Success: e.Success, Message: e.Message, FieldErrors: e.Errors}
}
