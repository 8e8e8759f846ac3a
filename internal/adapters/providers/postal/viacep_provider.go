package postal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
)

const (
	defaultBaseURL     = "https://viacep.com.br/ws"
	defaultHTTPTimeout = 5 * time.Second
)

// ViaCEPProvider implements the PostalLookupProvider against the ViaCEP API
type ViaCEPProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewViaCEPProvider creates a new ViaCEP lookup provider
func NewViaCEPProvider(baseURL string, timeout time.Duration) providers.PostalLookupProvider {
	return NewViaCEPProviderWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewViaCEPProviderWithClient allows overriding the HTTP client (used for tests)
func NewViaCEPProviderWithClient(baseURL string, httpClient *http.Client) providers.PostalLookupProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &ViaCEPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Lookup resolves a digits-only postal code against the external service
func (p *ViaCEPProvider) Lookup(ctx context.Context, postalCode string) (*providers.PostalAddress, error) {
	if len(postalCode) != utils.CEPLength {
		return nil, fmt.Errorf("postal code must have %d digits, got %q", utils.CEPLength, postalCode)
	}

	reqURL := fmt.Sprintf("%s/%s/json/", p.baseURL, postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postal lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("postal lookup returned status %d", resp.StatusCode)
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode postal lookup response: %w", err)
	}

	// ViaCEP signals an unknown code with an "erro" flag instead of a 404.
	if payload.notFound() {
		return nil, providers.ErrPostalCodeNotFound
	}

	return &providers.PostalAddress{
		PostalCode:   utils.NormalizePostalCode(payload.CEP),
		Street:       payload.Logradouro,
		Neighborhood: payload.Bairro,
		City:         payload.Localidade,
		State:        payload.UF,
		RegionCode:   payload.IBGE,
	}, nil
}

type viaCEPResponse struct {
	CEP        string          `json:"cep"`
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	IBGE       string          `json:"ibge"`
	Erro       json.RawMessage `json:"erro,omitempty"`
}

// notFound handles both the boolean and quoted-string forms of the erro flag
func (r *viaCEPResponse) notFound() bool {
	if len(r.Erro) == 0 {
		return false
	}
	trimmed := bytes.Trim(bytes.TrimSpace(r.Erro), `"`)
	return string(trimmed) == "true"
}
