package models

import "encoding/json"

// OneTimePaymentRequest represents a one-time checkout request
type OneTimePaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0" example:"19.99"`
	Currency  string  `json:"currency" binding:"required,len=3,alpha" example:"USD"`
	ReturnURL string  `json:"return_url" binding:"required,url" example:"http://localhost:5173/success"`
	CancelURL string  `json:"cancel_url" binding:"required,url" example:"http://localhost:5173/cancel"`
}

// SubscriptionRequest represents a recurring subscription request
type SubscriptionRequest struct {
	PlanName  string  `json:"plan_name" binding:"required" example:"Pro Monthly"`
	Price     float64 `json:"price" binding:"required,gt=0" example:"9.50"`
	Currency  string  `json:"currency" binding:"required,len=3,alpha" example:"EUR"`
	ReturnURL string  `json:"return_url" binding:"required,url" example:"http://localhost:5173/success"`
	CancelURL string  `json:"cancel_url" binding:"required,url" example:"http://localhost:5173/cancel"`
}

// Document is a provider JSON document passed through to the caller untouched.
// Orders, captures, plans and subscriptions all travel as Documents.
type Document = json.RawMessage

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail" example:"PayPal Auth Failed"`
}
