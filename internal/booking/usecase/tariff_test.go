package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

func newTariffUC(store *repo.MemoryStore) *TariffUseCase {
	return NewTariffUseCase(store.Tiers(), store.Options(), newQuoteUC(store), zap.NewNop())
}

func TestUpsertTierRejectsInvalidRateCard(t *testing.T) {
	store := repo.NewMemoryStore()
	uc := newTariffUC(store)

	cases := []struct {
		name string
		tier domain.Tier
	}{
		{"missing code", domain.Tier{Name: "Berline", Currency: "EUR"}},
		{"missing name", domain.Tier{Code: "berline", Currency: "EUR"}},
		{"bad currency", domain.Tier{Code: "berline", Name: "Berline", Currency: "EURO"}},
		{"negative rate", domain.Tier{
			Code: "berline", Name: "Berline", Currency: "EUR",
			Rates: fare.RateCard{PerKm: -1},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.UpsertTier(context.Background(), tc.tier); !domain.IsInvalidInput(err) {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}
}

func TestUpsertTierNewRatesApplyToQuotes(t *testing.T) {
	store := repo.NewMemoryStore()
	seedCatalog(t, store)
	tariffs := newTariffUC(store)
	quotes := newQuoteUC(store)

	tier, err := store.Tiers().GetByCode(context.Background(), "berline")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	tier.Rates.BaseFare = 7
	if _, err := tariffs.UpsertTier(context.Background(), tier); err != nil {
		t.Fatalf("UpsertTier: %v", err)
	}

	quote, err := quotes.QuoteTier(context.Background(), "berline", QuoteRequest{
		Route: fare.RouteSummary{Distance: strPtr("12,5 km"), Duration: strPtr("30")},
	})
	if err != nil {
		t.Fatalf("QuoteTier: %v", err)
	}
	// 7 + 12.5*1.5 + 30*0.5 = 40.75
	if !closeTo(quote.Amount, 40.75) {
		t.Errorf("amount = %v, want 40.75", quote.Amount)
	}
}

func TestUpsertOptionRejectsNegativeSurcharge(t *testing.T) {
	store := repo.NewMemoryStore()
	uc := newTariffUC(store)

	_, err := uc.UpsertOption(context.Background(), domain.RideOption{
		Name:      fare.OptionPet,
		Label:     "Animal",
		Surcharge: -1,
	})
	if !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
