// Package melhorenvio quotes shipping via the Melhor Envio calculator API.
package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/httpclient"
)

// Client implements ports.ShippingClient against the Melhor Envio
// shipment calculator.
type Client struct {
	baseURL string
	token   string
	cfg     httpclient.Config
	cb      *gobreaker.CircuitBreaker
}

var _ ports.ShippingClient = (*Client)(nil)

// New creates a Melhor Envio client.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		cfg:     httpclient.DefaultConfig(timeout),
		cb:      httpclient.NewBreaker("shipping"),
	}
}

type quoteRequest struct {
	From     endpoint  `json:"from"`
	To       endpoint  `json:"to"`
	Products []product `json:"products"`
}

type endpoint struct {
	PostalCode string `json:"postal_code"`
}

// product is the standard parcel quoted for every request. Quotes are per
// route, not per order, so one representative parcel is enough.
type product struct {
	ID       string  `json:"id"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Length   int     `json:"length"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}

type quoteResponse struct {
	Name         string          `json:"name"`
	Price        json.RawMessage `json:"price"`
	DeliveryTime int             `json:"delivery_time"`
	Company      struct {
		Name string `json:"name"`
	} `json:"company"`
	Error string `json:"error"`
}

// Quote returns shipping options from one postal code to another. Options
// the provider marks with an error are dropped; no usable option at all is
// an error.
func (c *Client) Quote(ctx context.Context, fromPostalCode, toPostalCode string) ([]domain.ShippingQuote, error) {
	payload, err := json.Marshal(quoteRequest{
		From: endpoint{PostalCode: domain.NormalizePostalCode(fromPostalCode)},
		To:   endpoint{PostalCode: domain.NormalizePostalCode(toPostalCode)},
		Products: []product{{
			ID: "1", Width: 15, Height: 10, Length: 20, Weight: 1, Quantity: 1,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("shipping request: %w", err)
	}

	resp, err := httpclient.Do(ctx, c.cfg, c.cb, "shipping", func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("shipping quote: %w", err)
	}
	defer resp.Body.Close()

	var options []quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&options); err != nil {
		return nil, fmt.Errorf("shipping decode: %w", err)
	}

	quotes := make([]domain.ShippingQuote, 0, len(options))
	for _, o := range options {
		if o.Error != "" {
			continue
		}
		quotes = append(quotes, domain.ShippingQuote{
			LeadTimeDays:  o.DeliveryTime,
			LeadTimeLabel: leadTimeLabel(o.DeliveryTime),
			Price:         formatPrice(o.Price),
			Carrier:       o.Company.Name,
			Service:       o.Name,
			Description:   o.Name,
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("shipping quote: no usable options for %s -> %s",
			fromPostalCode, toPostalCode)
	}
	return quotes, nil
}

func leadTimeLabel(days int) string {
	if days == 1 {
		return "1 dia útil"
	}
	return fmt.Sprintf("%d dias úteis", days)
}

// formatPrice renders the provider's price (a JSON string or number) in
// Brazilian currency format.
func formatPrice(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		var asNumber float64
		if err := json.Unmarshal(raw, &asNumber); err != nil {
			return "N/A"
		}
		asString = fmt.Sprintf("%.2f", asNumber)
	}
	if asString == "" {
		return "N/A"
	}
	return "R$ " + strings.Replace(asString, ".", ",", 1)
}
