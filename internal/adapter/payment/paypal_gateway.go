package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/funkystitch/storefront/internal/port"
)

// PayPalGateway verifies captured PayPal orders against the provider
// before an order is marked paid. The client id/secret pair is
// exchanged for a short-lived bearer token which is cached until close
// to its expiry.
type PayPalGateway struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPalGateway(baseURL, clientID, clientSecret string) *PayPalGateway {
	return &PayPalGateway{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *PayPalGateway) Verify(ctx context.Context, transactionID string) (*port.PaymentVerification, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/v2/checkout/orders/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &port.PaymentVerification{Verified: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var body struct {
		Status        string `json:"status"`
		UpdateTime    string `json:"update_time"`
		PurchaseUnits []struct {
			Amount struct {
				Value        string `json:"value"`
				CurrencyCode string `json:"currency_code"`
			} `json:"amount"`
		} `json:"purchase_units"`
		Payer struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	verification := &port.PaymentVerification{
		Verified:   body.Status == "COMPLETED",
		Status:     body.Status,
		UpdateTime: body.UpdateTime,
		PayerEmail: body.Payer.EmailAddress,
	}
	if len(body.PurchaseUnits) > 0 {
		amount, err := decimal.NewFromString(body.PurchaseUnits[0].Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", body.PurchaseUnits[0].Amount.Value, err)
		}
		verification.Amount = amount
		verification.Currency = body.PurchaseUnits[0].Amount.CurrencyCode
	}
	return verification, nil
}

// accessToken serializes cache reads and refreshes; Verify is called
// from concurrent payment confirmations sharing one gateway.
func (g *PayPalGateway) accessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(g.clientID, g.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	g.token = body.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return g.token, nil
}
