// file: internals/features/finance/billings/model/payment_method.go
package model

import "strings"

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodOnline       PaymentMethod = "online"
)

// MethodDetails is the closed set of payment method variants.
type MethodDetails interface {
	Method() PaymentMethod
	apply(p *PaymentModel)
}

type Cash struct{}

type Card struct {
	TransactionID string
}

type UPI struct {
	TransactionID string
}

type BankTransfer struct {
	TransactionID string
	BankName      string
}

type Cheque struct {
	ChequeNumber string
	BankName     string
}

type Online struct {
	TransactionID string
}

func (Cash) Method() PaymentMethod         { return MethodCash }
func (Card) Method() PaymentMethod         { return MethodCard }
func (UPI) Method() PaymentMethod          { return MethodUPI }
func (BankTransfer) Method() PaymentMethod { return MethodBankTransfer }
func (Cheque) Method() PaymentMethod       { return MethodCheque }
func (Online) Method() PaymentMethod       { return MethodOnline }

func (Cash) apply(*PaymentModel) {}

func (d Card) apply(p *PaymentModel) { p.PaymentTransactionID = optional(d.TransactionID) }

func (d UPI) apply(p *PaymentModel) { p.PaymentTransactionID = optional(d.TransactionID) }

func (d BankTransfer) apply(p *PaymentModel) {
	p.PaymentTransactionID = optional(d.TransactionID)
	p.PaymentBankName = optional(d.BankName)
}

func (d Cheque) apply(p *PaymentModel) {
	p.PaymentChequeNumber = optional(d.ChequeNumber)
	p.PaymentBankName = optional(d.BankName)
}

func (d Online) apply(p *PaymentModel) { p.PaymentTransactionID = optional(d.TransactionID) }

// NewMethodDetails builds the variant for method from the flat request fields.
// A field the method does not carry is rejected rather than dropped.
func NewMethodDetails(method, transactionID, chequeNumber, bankName string) (MethodDetails, error) {
	transactionID = strings.TrimSpace(transactionID)
	chequeNumber = strings.TrimSpace(chequeNumber)
	bankName = strings.TrimSpace(bankName)

	method = strings.ToLower(strings.TrimSpace(method))

	v := NewValidationError()
	reject := func(field, value string) {
		if value != "" {
			v.Add(field, "not applicable to payment method "+method)
		}
	}

	var d MethodDetails
	switch PaymentMethod(method) {
	case MethodCash:
		reject("transaction_id", transactionID)
		reject("cheque_number", chequeNumber)
		reject("bank_name", bankName)
		d = Cash{}
	case MethodCard:
		reject("cheque_number", chequeNumber)
		reject("bank_name", bankName)
		d = Card{TransactionID: transactionID}
	case MethodUPI:
		reject("cheque_number", chequeNumber)
		reject("bank_name", bankName)
		d = UPI{TransactionID: transactionID}
	case MethodBankTransfer:
		reject("cheque_number", chequeNumber)
		d = BankTransfer{TransactionID: transactionID, BankName: bankName}
	case MethodCheque:
		reject("transaction_id", transactionID)
		if chequeNumber == "" {
			v.Add("cheque_number", "required for cheque payments")
		}
		d = Cheque{ChequeNumber: chequeNumber, BankName: bankName}
	case MethodOnline:
		reject("cheque_number", chequeNumber)
		reject("bank_name", bankName)
		d = Online{TransactionID: transactionID}
	default:
		v.Add("payment_method", "must be one of cash, card, upi, bank_transfer, cheque, online")
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
