// file: internals/features/finance/billings/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	helperAuth "schoolku_backend/internals/helpers/auth"
	"schoolku_backend/internals/helpers/dbtime"
	"schoolku_backend/internals/helpers/money"
)

type RecordPaymentInput struct {
	InvoiceID   uuid.UUID
	Amount      decimal.Decimal
	PaymentDate *time.Time // defaults to today
	Details     model.MethodDetails
	Remarks     *string
	GatewayMeta map[string]any
}

type PaymentResult struct {
	Payment *model.PaymentModel
	Invoice *model.InvoiceModel
}

// RecordPayment applies a payment to an invoice. The invoice row stays locked for the
// whole transaction, so concurrent payments on one invoice are serialized and a
// second writer validates against the first writer's balance.
func (s *Service) RecordPayment(ctx context.Context, actor helperAuth.Actor, in RecordPaymentInput) (*PaymentResult, error) {
	if in.Details == nil {
		v := NewValidationError()
		v.Add("payment_method", "is required")
		return nil, v
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	if !money.HasCents(in.Amount) {
		return nil, fmt.Errorf("%w: amount has more than 2 decimal places", ErrInvalidAmount)
	}

	paymentDate := s.Today()
	if in.PaymentDate != nil {
		paymentDate = dbtime.DateOf(*in.PaymentDate)
	}
	year := s.currentYear()

	var res PaymentResult
	err := s.store.WithTx(ctx, func(tx Store) error {
		inv, err := tx.LockInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}

		if online, ok := in.Details.(model.Online); ok && online.TransactionID != "" {
			existing, err := tx.FindOnlinePayment(ctx, online.TransactionID)
			if err != nil && !errors.Is(err, ErrPaymentNotFound) {
				return err
			}
			if existing != nil {
				return ErrDuplicatePayment
			}
		}

		if err := inv.ApplyPayment(in.Amount); err != nil {
			return err
		}

		seq, err := tx.NextSequence(ctx, model.PrefixReceipt, year)
		if err != nil {
			return err
		}
		receipt, err := model.FormatDocumentNumber(model.PrefixReceipt, year, seq)
		if err != nil {
			return err
		}

		p := &model.PaymentModel{
			PaymentReceiptNumber: receipt,
			PaymentInvoiceID:     inv.InvoiceID,
			PaymentStudentID:     inv.InvoiceStudentID,
			PaymentAmount:        in.Amount,
			PaymentDate:          paymentDate,
			PaymentRemarks:       trimPtr(in.Remarks),
			PaymentCollectedBy:   actor.UserIDPtr(),
			PaymentGatewayMeta:   in.GatewayMeta,
		}
		p.SetDetails(in.Details)

		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}
		if err := tx.UpdateInvoiceBalance(ctx, inv); err != nil {
			return err
		}

		full, err := tx.GetInvoice(ctx, inv.InvoiceID)
		if err != nil {
			return err
		}
		res = PaymentResult{Payment: p, Invoice: full}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("actor", actor.UserID.String()).
		Str("invoice", res.Invoice.InvoiceNumber).
		Str("receipt", res.Payment.PaymentReceiptNumber).
		Str("amount", money.Format(in.Amount)).
		Str("method", string(res.Payment.PaymentMethod)).
		Str("status", string(res.Invoice.InvoiceStatus)).
		Msg("payment recorded")
	return &res, nil
}

// GetReceipt returns the payment with its student and invoice loaded.
func (s *Service) GetReceipt(ctx context.Context, id uuid.UUID) (*model.PaymentModel, error) {
	return s.store.GetPayment(ctx, id)
}

// BuildMethodDetails is the request-side entry into the method variant.
func BuildMethodDetails(method string, transactionID, chequeNumber, bankName *string) (model.MethodDetails, error) {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.TrimSpace(*p)
	}
	return model.NewMethodDetails(method, deref(transactionID), deref(chequeNumber), deref(bankName))
}
