package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	PaystackStatusSuccess   = "success"
	PaystackStatusFailed    = "failed"
	PaystackStatusAbandoned = "abandoned"
)

type PaystackInitRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type PaystackInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackTransaction struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Customer  struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
}

// PaystackEvent is the body of a Paystack webhook call
type PaystackEvent struct {
	Event string              `json:"event"`
	Data  PaystackTransaction `json:"data"`
}

type paystackResponse[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type PaystackClient struct {
	client *resty.Client
	secret string
}

func NewPaystackClient(baseURL, secretKey string) *PaystackClient {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &PaystackClient{client: c, secret: secretKey}
}

func (p *PaystackClient) InitializeTransaction(ctx context.Context, req PaystackInitRequest) (*PaystackInitResult, error) {
	var result paystackResponse[PaystackInitResult]
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/transaction/initialize")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || !result.Status {
		return nil, fmt.Errorf("paystack initialize failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return &result.Data, nil
}

func (p *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*PaystackTransaction, error) {
	var result paystackResponse[PaystackTransaction]
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/transaction/verify/" + url.PathEscape(reference))
	if err != nil {
		return nil, err
	}
	if resp.IsError() || !result.Status {
		return nil, fmt.Errorf("paystack verify failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return &result.Data, nil
}

// ValidSignature reports whether signature is the hex HMAC-SHA512 of payload under the secret key
func (p *PaystackClient) ValidSignature(payload []byte, signature string) bool {
	return ValidPaystackSignature(payload, signature, p.secret)
}

func ValidPaystackSignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// PaystackReference builds the transaction reference for an order
func PaystackReference(orderID uint, now time.Time) string {
	return fmt.Sprintf("NA-%d-%d", orderID, now.Unix())
}
