package service

import (
	"errors"

	"schoolku_backend/internals/features/finance/billings/model"
)

var (
	ErrFeeStructureNotFound = errors.New("fee structure not found")
	ErrStructureNotFound    = errors.New("no active fee structure for class, academic year and fee type")
	ErrNoStudentsFound      = errors.New("no active students found for class")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrPaymentNotFound      = errors.New("payment not found")

	ErrInvalidAmount     = model.ErrInvalidAmount
	ErrSequenceExhausted = model.ErrSequenceExhausted

	ErrDuplicatePayment  = errors.New("payment for this gateway transaction already recorded")
	ErrOpenInvoiceExists = errors.New("student already has an open invoice for this fee")
	ErrDuplicateNumber   = errors.New("document number already used")

	ErrCheckoutUnavailable = errors.New("online checkout is not configured")
	ErrInvoiceNotPayable   = errors.New("invoice cannot be paid online")
	ErrInvalidSignature    = errors.New("invalid notification signature")
)

type ValidationError = model.ValidationError

var NewValidationError = model.NewValidationError
