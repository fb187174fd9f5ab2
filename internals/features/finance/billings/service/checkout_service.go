// file: internals/features/finance/billings/service/checkout_service.go
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

// Gateway is a hosted payment page provider.
type Gateway interface {
	CreateTransaction(ctx context.Context, req CheckoutRequest) (token, redirectURL string, err error)
	VerifyNotification(n GatewayNotification) bool
}

type CheckoutCustomer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type CheckoutRequest struct {
	OrderID  string
	Amount   int64
	ItemID   string
	ItemName string
	Customer CheckoutCustomer
}

type CheckoutSession struct {
	InvoiceID   uuid.UUID
	OrderID     string
	Amount      decimal.Decimal
	Token       string
	RedirectURL string
}

// GatewayNotification is the subset of a payment notification the ledger reads.
// Raw keeps the full payload for the payment's gateway metadata.
type GatewayNotification struct {
	OrderID           string
	StatusCode        string
	GrossAmount       string
	SignatureKey      string
	TransactionStatus string
	FraudStatus       string
	TransactionID     string
	TransactionTime   string
	PaymentType       string
	Raw               map[string]any
}

type NotificationOutcome string

const (
	OutcomeRecorded       NotificationOutcome = "recorded"
	OutcomeIgnored        NotificationOutcome = "ignored"
	OutcomeDuplicate      NotificationOutcome = "duplicate"
	OutcomeUnknownInvoice NotificationOutcome = "unknown_invoice"
	OutcomeRejected       NotificationOutcome = "rejected"
)

const orderTimeLayout = "20060102150405"

// CreateCheckout opens a hosted payment page for the invoice's full balance.
func (s *Service) CreateCheckout(ctx context.Context, actor helperAuth.Actor, invoiceID uuid.UUID) (*CheckoutSession, error) {
	if s.gateway == nil {
		return nil, ErrCheckoutUnavailable
	}
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsOpen() || !inv.InvoiceBalanceAmount.IsPositive() {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrInvoiceNotPayable, inv.InvoiceNumber, inv.InvoiceStatus)
	}
	// the gateway charges whole currency units
	if !money.IsWhole(inv.InvoiceBalanceAmount) {
		return nil, fmt.Errorf("%w: balance %s has a fractional part", ErrInvoiceNotPayable, money.Format(inv.InvoiceBalanceAmount))
	}

	req := CheckoutRequest{
		OrderID:  inv.InvoiceNumber + "-" + s.now().UTC().Format(orderTimeLayout),
		Amount:   inv.InvoiceBalanceAmount.IntPart(),
		ItemID:   inv.InvoiceNumber,
		ItemName: inv.InvoiceFeeType + " " + inv.InvoiceAcademicYear,
	}
	if st := inv.Student; st != nil {
		req.Customer = CheckoutCustomer{FirstName: st.StudentFirstName, LastName: st.StudentLastName}
		if st.StudentParentEmail != nil {
			req.Customer.Email = *st.StudentParentEmail
		}
		if st.StudentParentPhone != nil {
			req.Customer.Phone = *st.StudentParentPhone
		}
	}

	token, redirectURL, err := s.gateway.CreateTransaction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create gateway transaction: %w", err)
	}

	s.log.Info().
		Str("actor", actor.UserID.String()).
		Str("invoice", inv.InvoiceNumber).
		Str("order_id", req.OrderID).
		Int64("amount", req.Amount).
		Msg("checkout created")

	return &CheckoutSession{
		InvoiceID:   inv.InvoiceID,
		OrderID:     req.OrderID,
		Amount:      inv.InvoiceBalanceAmount,
		Token:       token,
		RedirectURL: redirectURL,
	}, nil
}

// ApplyGatewayNotification turns a settled notification into an online payment.
// Everything except a bad signature or a storage failure is acknowledged, so the
// gateway stops retrying.
func (s *Service) ApplyGatewayNotification(ctx context.Context, n GatewayNotification) (NotificationOutcome, error) {
	if s.gateway == nil {
		return "", ErrCheckoutUnavailable
	}
	if !s.gateway.VerifyNotification(n) {
		return "", ErrInvalidSignature
	}

	l := s.log.With().Str("order_id", n.OrderID).Str("transaction_status", n.TransactionStatus).Logger()

	if !isSettled(n) {
		l.Debug().Msg("notification ignored")
		return OutcomeIgnored, nil
	}

	number := invoiceNumberFromOrderID(n.OrderID)
	inv, err := s.store.FindInvoiceByNumber(ctx, number)
	if errors.Is(err, ErrInvoiceNotFound) {
		l.Warn().Str("invoice", number).Msg("notification for unknown invoice")
		return OutcomeUnknownInvoice, nil
	}
	if err != nil {
		return "", err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		l.Warn().Str("gross_amount", n.GrossAmount).Msg("unparseable gross amount")
		return OutcomeRejected, nil
	}

	var paidOn *time.Time
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", n.TransactionTime, s.loc); err == nil {
		d := dbtime.DateOf(t)
		paidOn = &d
	}
	remarks := "Online payment"
	if n.PaymentType != "" {
		remarks += " via " + n.PaymentType
	}

	_, err = s.RecordPayment(ctx, helperAuth.SystemActor, RecordPaymentInput{
		InvoiceID:   inv.InvoiceID,
		Amount:      amount,
		PaymentDate: paidOn,
		Details:     model.Online{TransactionID: n.TransactionID},
		Remarks:     &remarks,
		GatewayMeta: n.Raw,
	})
	switch {
	case err == nil:
		return OutcomeRecorded, nil
	case errors.Is(err, ErrDuplicatePayment):
		l.Info().Str("transaction_id", n.TransactionID).Msg("duplicate notification")
		return OutcomeDuplicate, nil
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvoiceNotFound):
		// e.g. the cashier settled the invoice while the page was open
		l.Warn().Err(err).Str("invoice", number).Msg("gateway payment not applied, needs manual refund review")
		return OutcomeRejected, nil
	default:
		return "", err
	}
}

func isSettled(n GatewayNotification) bool {
	switch strings.ToLower(n.TransactionStatus) {
	case "settlement":
		return true
	case "capture":
		return strings.EqualFold(n.FraudStatus, "accept")
	}
	return false
}

// invoiceNumberFromOrderID strips the "-yyyymmddhhmmss" suffix.
func invoiceNumberFromOrderID(orderID string) string {
	orderID = strings.TrimSpace(orderID)
	if i := strings.LastIndex(orderID, "-"); i > 0 {
		return orderID[:i]
	}
	return orderID
}
