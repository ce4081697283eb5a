package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentGateway is the thin order-create wrapper around the external
// payment processor. Signature verification is done in-process, never
// delegated to client-supplied claims.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}

type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("gateway order create failed: %v", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("gateway returned no order id")
	}
	return orderID, nil
}

// VerifyPaymentSignature recomputes HMAC-SHA256 over "orderID|paymentID"
// with the gateway secret and compares against the supplied signature.
// hmac.Equal keeps the comparison constant-time.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
