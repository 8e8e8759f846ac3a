package postal

import (
	"context"

	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/utils"
)

// MockPostalProvider implements a mock postal lookup for development and testing
type MockPostalProvider struct{}

// NewMockPostalProvider creates a new mock postal lookup provider
func NewMockPostalProvider() providers.PostalLookupProvider {
	return &MockPostalProvider{}
}

// Lookup returns canned addresses for a few well-known postal codes
func (m *MockPostalProvider) Lookup(ctx context.Context, postalCode string) (*providers.PostalAddress, error) {
	mockAddresses := map[string]providers.PostalAddress{
		"01310100": {
			PostalCode:   "01310100",
			Street:       "Avenida Paulista",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			State:        "SP",
			RegionCode:   "3550308",
		},
		"20040020": {
			PostalCode:   "20040020",
			Street:       "Rua da Assembléia",
			Neighborhood: "Centro",
			City:         "Rio de Janeiro",
			State:        "RJ",
			RegionCode:   "3304557",
		},
		"30130010": {
			PostalCode:   "30130010",
			Street:       "Praça Sete de Setembro",
			Neighborhood: "Centro",
			City:         "Belo Horizonte",
			State:        "MG",
			RegionCode:   "3106200",
		},
	}

	if addr, ok := mockAddresses[utils.NormalizePostalCode(postalCode)]; ok {
		return &addr, nil
	}

	return nil, providers.ErrPostalCodeNotFound
}
