package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
)

const serverKey = "SB-Mid-server-test"

// fakeGateway signs like Midtrans but never leaves the process.
type fakeGateway struct {
	requests []service.CheckoutRequest
	err      error
}

func (g *fakeGateway) CreateTransaction(_ context.Context, r service.CheckoutRequest) (string, string, error) {
	if g.err != nil {
		return "", "", g.err
	}
	g.requests = append(g.requests, r)
	return "snap-token-" + r.OrderID, "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + r.OrderID, nil
}

func (g *fakeGateway) VerifyNotification(n service.GatewayNotification) bool {
	return n.SignatureKey == service.NotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
}

func signed(n service.GatewayNotification) service.GatewayNotification {
	n.SignatureKey = service.NotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func settlement(orderID, gross, txn string) service.GatewayNotification {
	return signed(service.GatewayNotification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: "settlement",
		TransactionID:     txn,
		TransactionTime:   "2024-08-21 14:05:00",
		PaymentType:       "bank_transfer",
		Raw:               map[string]any{"order_id": orderID, "transaction_id": txn},
	})
}

func TestCheckoutDisabledWithoutGateway(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]

	assert.False(t, f.svc.CheckoutEnabled())
	_, err := f.svc.CreateCheckout(ctx, accountant, inv.InvoiceID)
	assert.ErrorIs(t, err, service.ErrCheckoutUnavailable)
	_, err = f.svc.ApplyGatewayNotification(ctx, settlement("x", "1.00", "t"))
	assert.ErrorIs(t, err, service.ErrCheckoutUnavailable)
}

func TestCreateCheckoutChargesFullBalance(t *testing.T) {
	gw := &fakeGateway{}
	f := newFixture(t, service.WithGateway(gw))
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]
	_, err := pay(t, f, inv.InvoiceID, "1500")
	require.NoError(t, err)

	sess, err := f.svc.CreateCheckout(ctx, accountant, inv.InvoiceID)
	require.NoError(t, err)

	assert.Equal(t, inv.InvoiceNumber+"-20240820093000", sess.OrderID)
	assert.Equal(t, "3500.00", sess.Amount.StringFixed(2))
	assert.Equal(t, "snap-token-"+sess.OrderID, sess.Token)
	require.Len(t, gw.requests, 1)
	assert.EqualValues(t, 3500, gw.requests[0].Amount)
	assert.Equal(t, inv.Student.StudentFirstName, gw.requests[0].Customer.FirstName)
}

func TestCreateCheckoutRejectsUnpayableInvoices(t *testing.T) {
	f := newFixture(t, service.WithGateway(&fakeGateway{}))
	f.tuitionStructure(t)
	issued := f.issueTuition(t).Issued

	_, err := pay(t, f, issued[0].InvoiceID, "5000")
	require.NoError(t, err)
	_, err = f.svc.CreateCheckout(ctx, accountant, issued[0].InvoiceID)
	assert.ErrorIs(t, err, service.ErrInvoiceNotPayable)

	_, err = pay(t, f, issued[1].InvoiceID, "0.50")
	require.NoError(t, err)
	_, err = f.svc.CreateCheckout(ctx, accountant, issued[1].InvoiceID)
	assert.ErrorIs(t, err, service.ErrInvoiceNotPayable, "fractional balance")
}

func TestCreateCheckoutWrapsGatewayFailure(t *testing.T) {
	f := newFixture(t, service.WithGateway(&fakeGateway{err: errors.New("503 from snap")}))
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]

	_, err := f.svc.CreateCheckout(ctx, accountant, inv.InvoiceID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 from snap")
}

func TestSettlementNotificationRecordsOnlinePaymentOnce(t *testing.T) {
	f := newFixture(t, service.WithGateway(&fakeGateway{}))
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]
	n := settlement(inv.InvoiceNumber+"-20240820093000", "5000.00", "mid-txn-1")

	out, err := f.svc.ApplyGatewayNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeRecorded, out)

	got, err := f.svc.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, got.InvoiceStatus)
	require.Len(t, got.Payments, 1)
	p := got.Payments[0]
	assert.Equal(t, model.MethodOnline, p.PaymentMethod)
	assert.Equal(t, "mid-txn-1", *p.PaymentTransactionID)
	assert.Nil(t, p.PaymentCollectedBy)
	assert.Equal(t, day(2024, 8, 21), p.PaymentDate)
	assert.Equal(t, "mid-txn-1", p.PaymentGatewayMeta["transaction_id"])

	out, err = f.svc.ApplyGatewayNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeDuplicate, out)

	got, err = f.svc.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Len(t, got.Payments, 1)
}

func TestNotificationOutcomes(t *testing.T) {
	f := newFixture(t, service.WithGateway(&fakeGateway{}))
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]
	order := inv.InvoiceNumber + "-20240820093000"

	bad := settlement(order, "5000.00", "t-1")
	bad.SignatureKey = "deadbeef"
	_, err := f.svc.ApplyGatewayNotification(ctx, bad)
	assert.ErrorIs(t, err, service.ErrInvalidSignature)

	pending := settlement(order, "5000.00", "t-2")
	pending.TransactionStatus = "pending"
	out, err := f.svc.ApplyGatewayNotification(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeIgnored, out)

	challenged := signed(service.GatewayNotification{
		OrderID: order, StatusCode: "201", GrossAmount: "5000.00",
		TransactionStatus: "capture", FraudStatus: "challenge", TransactionID: "t-3",
	})
	out, err = f.svc.ApplyGatewayNotification(ctx, challenged)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeIgnored, out)

	out, err = f.svc.ApplyGatewayNotification(ctx, settlement("INV209900001-20240820093000", "10.00", "t-4"))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeUnknownInvoice, out)

	out, err = f.svc.ApplyGatewayNotification(ctx, settlement(order, "9000.00", "t-5"))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeRejected, out, "more than the balance")

	got, err := f.svc.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Empty(t, got.Payments)
	assert.Equal(t, model.InvoiceStatusPending, got.InvoiceStatus)
}

func TestNotificationStorageFailureIsRetried(t *testing.T) {
	f := newFixture(t, service.WithGateway(&fakeGateway{}))
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]
	n := settlement(inv.InvoiceNumber+"-20240820093000", "5000.00", "t-9")

	f.mem.FailOn("CreatePayment", errors.New("db down"))
	_, err := f.svc.ApplyGatewayNotification(ctx, n)
	require.Error(t, err)

	f.mem.FailOn("CreatePayment", nil)
	out, err := f.svc.ApplyGatewayNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeRecorded, out)
}

func TestNotificationSignatureMatchesMidtransFormula(t *testing.T) {
	gw := service.NewMidtransGateway(serverKey, false)
	n := settlement("INV202400001-20240820093000", "5000.00", "t")
	assert.True(t, gw.VerifyNotification(n))

	n.GrossAmount = "5000"
	assert.False(t, gw.VerifyNotification(n))
	n.SignatureKey = ""
	assert.False(t, gw.VerifyNotification(n))
}
