// Package viacep resolves Brazilian postal codes via the ViaCEP public API.
package viacep

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/httpclient"
)

// Client implements ports.PostalLookupClient against ViaCEP.
type Client struct {
	baseURL string
	cfg     httpclient.Config
	cb      *gobreaker.CircuitBreaker
}

var _ ports.PostalLookupClient = (*Client)(nil)

// New creates a ViaCEP client. baseURL is the API root without a trailing
// slash, e.g. "https://viacep.com.br/ws".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		cfg:     httpclient.DefaultConfig(timeout),
		cb:      httpclient.NewBreaker("viacep"),
	}
}

type viaCEPResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	Locality     string `json:"localidade"`
	Region       string `json:"uf"`
	IBGE         string `json:"ibge"`
	DDD          string `json:"ddd"`
	Error        bool   `json:"erro"`
}

// Lookup resolves a digits-only postal code to a structured address.
func (c *Client) Lookup(ctx context.Context, postalCode string) (*domain.ResolvedAddress, error) {
	url := fmt.Sprintf("%s/%s/json/", c.baseURL, postalCode)

	resp, err := httpclient.Do(ctx, c.cfg, c.cb, "viacep", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("viacep lookup %s: %w", postalCode, err)
	}
	defer resp.Body.Close()

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("viacep decode: %w", err)
	}
	if body.Error {
		return nil, fmt.Errorf("viacep: unknown postal code %s", postalCode)
	}

	return &domain.ResolvedAddress{
		Street:       body.Street,
		Locality:     body.Locality,
		Region:       body.Region,
		Neighborhood: body.Neighborhood,
		PostalCode:   domain.NormalizePostalCode(body.CEP),
		Raw: map[string]any{
			"complemento": body.Complement,
			"ibge":        body.IBGE,
			"ddd":         body.DDD,
		},
	}, nil
}
