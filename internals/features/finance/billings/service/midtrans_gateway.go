package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

/* =========================================================
   Midtrans Snap gateway
========================================================= */

type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

// NewMidtransGateway: production=false talks to the sandbox.
func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	g := &MidtransGateway{serverKey: serverKey}
	if production {
		g.client.New(serverKey, midtrans.Production)
	} else {
		g.client.New(serverKey, midtrans.Sandbox)
	}
	return g
}

func (g *MidtransGateway) CreateTransaction(_ context.Context, r CheckoutRequest) (string, string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  r.OrderID,
			GrossAmt: r.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: r.Customer.FirstName,
			LName: r.Customer.LastName,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       r.ItemID,
				Price:    r.Amount,
				Qty:      1,
				Name:     truncate(r.ItemName, 50),
				Category: "School Fee",
			},
		},
	}

	resp, mErr := g.client.CreateTransaction(req)
	if mErr != nil {
		return "", "", mErr
	}
	return resp.Token, resp.RedirectURL, nil
}

// VerifyNotification checks SHA512(order_id + status_code + gross_amount + server_key).
func (g *MidtransGateway) VerifyNotification(n GatewayNotification) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" {
		return false
	}
	got := NotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func NotificationSignature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
