package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
)

// TariffUseCase manages the tier and ride option catalogs for admin screens.
// Every successful write invalidates the quote cache so new rates apply on
// the next quote.
type TariffUseCase struct {
	tiers   repo.TierRepository
	options repo.OptionRepository
	quotes  *QuoteUseCase
	logger  *zap.Logger
}

// NewTariffUseCase creates a new tariff use case
func NewTariffUseCase(tiers repo.TierRepository, options repo.OptionRepository, quotes *QuoteUseCase, logger *zap.Logger) *TariffUseCase {
	return &TariffUseCase{
		tiers:   tiers,
		options: options,
		quotes:  quotes,
		logger:  logger,
	}
}

// ListTiers returns the full tier catalog, inactive tiers included.
func (uc *TariffUseCase) ListTiers(ctx context.Context) ([]domain.Tier, error) {
	return uc.tiers.List(ctx)
}

// ListActiveTiers returns the bookable tier catalog.
func (uc *TariffUseCase) ListActiveTiers(ctx context.Context) ([]domain.Tier, error) {
	return uc.tiers.ListActive(ctx)
}

// ListOptions returns the active ride option catalog.
func (uc *TariffUseCase) ListOptions(ctx context.Context) ([]domain.RideOption, error) {
	return uc.options.ListActive(ctx)
}

// UpsertTier creates or updates a tier after validating its rate card.
func (uc *TariffUseCase) UpsertTier(ctx context.Context, tier domain.Tier) (domain.Tier, error) {
	tier.Code = strings.TrimSpace(tier.Code)
	if tier.Code == "" {
		return domain.Tier{}, domain.NewInvalidInputError("tier code is required", "")
	}
	if tier.Name == "" {
		return domain.Tier{}, domain.NewInvalidInputError("tier name is required", tier.Code)
	}
	if len(tier.Currency) != 3 {
		return domain.Tier{}, domain.NewInvalidInputError("currency must be a 3-character code", tier.Code)
	}
	if err := tier.Rates.Validate(); err != nil {
		return domain.Tier{}, domain.NewInvalidInputError("invalid rate card", err.Error())
	}

	saved, err := uc.tiers.Upsert(ctx, tier)
	if err != nil {
		return domain.Tier{}, err
	}

	uc.quotes.InvalidateCatalog(ctx)
	uc.logger.Info("Tier saved",
		zap.String("tier_code", saved.Code),
		zap.Bool("active", saved.Active))
	return saved, nil
}

// UpsertOption creates or updates a ride option.
func (uc *TariffUseCase) UpsertOption(ctx context.Context, option domain.RideOption) (domain.RideOption, error) {
	if option.Name == "" {
		return domain.RideOption{}, domain.NewInvalidInputError("option name is required", "")
	}
	if option.Surcharge < 0 {
		return domain.RideOption{}, domain.NewInvalidInputError("surcharge cannot be negative", string(option.Name))
	}

	saved, err := uc.options.Upsert(ctx, option)
	if err != nil {
		return domain.RideOption{}, err
	}

	uc.quotes.InvalidateCatalog(ctx)
	uc.logger.Info("Ride option saved",
		zap.String("option", string(saved.Name)),
		zap.Float64("surcharge", saved.Surcharge))
	return saved, nil
}
