package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/cache"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
	"github.com/Missray24/missray-cab-app-sub000/internal/metrics"
	"github.com/Missray24/missray-cab-app-sub000/internal/tracing"
)

const (
	tierCatalogKey   = "pricing:tiers"
	optionCatalogKey = "pricing:options"
)

// QuoteRequest describes a trip to price across tiers.
type QuoteRequest struct {
	Route   fare.RouteSummary
	Stops   int
	Options []fare.OptionSelection
}

// QuoteUseCase prices trips against the tier catalog. Catalogs are read
// through a short-lived Redis cache so admin rate changes show up within
// the TTL without a round trip to Postgres on every quote.
type QuoteUseCase struct {
	tiers    repo.TierRepository
	options  repo.OptionRepository
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewQuoteUseCase creates a new quote use case. The cache may be nil, in
// which case every quote reads the catalog from the repository.
func NewQuoteUseCase(tiers repo.TierRepository, options repo.OptionRepository, c *cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *QuoteUseCase {
	return &QuoteUseCase{
		tiers:    tiers,
		options:  options,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// QuoteAll prices the trip for every active tier, ordered by display position.
func (uc *QuoteUseCase) QuoteAll(ctx context.Context, req QuoteRequest) ([]domain.TierQuote, error) {
	ctx, span := tracing.StartSpan(ctx, "quote.all")
	defer span.End()

	tiers, err := uc.loadTiers(ctx)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, domain.NewInternalError("no active tiers configured")
	}

	surcharges, err := uc.loadSurcharges(ctx)
	if err != nil {
		return nil, err
	}
	engine := fare.NewEngine(surcharges)

	quotes := make([]domain.TierQuote, 0, len(tiers))
	for _, tier := range tiers {
		quote, err := priceTier(engine, tier, req)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}

	uc.logger.Debug("Quoted trip across tiers",
		zap.Int("tiers", len(quotes)),
		zap.Int("stops", req.Stops))
	return quotes, nil
}

// QuoteTier prices the trip for one tier.
func (uc *QuoteUseCase) QuoteTier(ctx context.Context, tierCode string, req QuoteRequest) (domain.TierQuote, error) {
	ctx, span := tracing.StartSpan(ctx, "quote.tier")
	defer span.End()

	tier, err := uc.tiers.GetByCode(ctx, tierCode)
	if err != nil {
		return domain.TierQuote{}, err
	}
	if !tier.Active {
		return domain.TierQuote{}, domain.NewInvalidInputError("tier is not bookable", tierCode)
	}

	surcharges, err := uc.loadSurcharges(ctx)
	if err != nil {
		return domain.TierQuote{}, err
	}

	return priceTier(fare.NewEngine(surcharges), tier, req)
}

// priceTier runs the fare engine for one tier, recording quote metrics.
// The floor check estimates a second time with the floor removed so an
// exact raw-equals-minimum fare is not reported as floored.
func priceTier(engine *fare.Engine, tier domain.Tier, req QuoteRequest) (domain.TierQuote, error) {
	amount, err := engine.Estimate(tier.Rates, req.Route, req.Stops, req.Options)
	if err != nil {
		return domain.TierQuote{}, domain.NewInvalidInputError("cannot price trip", err.Error())
	}

	unfloored := tier.Rates
	unfloored.MinimumPrice = 0
	raw, err := engine.Estimate(unfloored, req.Route, req.Stops, req.Options)
	if err != nil {
		return domain.TierQuote{}, domain.NewInvalidInputError("cannot price trip", err.Error())
	}
	floored := amount > raw

	metrics.QuotesComputed.WithLabelValues(tier.Code, strconv.FormatBool(floored)).Inc()
	metrics.QuoteAmount.WithLabelValues(tier.Code).Observe(amount)

	return domain.TierQuote{
		TierCode: tier.Code,
		TierName: tier.Name,
		Currency: tier.Currency,
		Amount:   amount,
		Floored:  floored,
	}, nil
}

func (uc *QuoteUseCase) loadTiers(ctx context.Context) ([]domain.Tier, error) {
	var tiers []domain.Tier
	if uc.cache != nil {
		if err := uc.cache.Get(ctx, tierCatalogKey, &tiers); err == nil {
			return tiers, nil
		} else if err != cache.ErrMiss {
			uc.logger.Warn("Tier cache read failed", zap.Error(err))
		}
	}

	tiers, err := uc.tiers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiers: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, tierCatalogKey, tiers, uc.cacheTTL); err != nil {
			uc.logger.Warn("Tier cache write failed", zap.Error(err))
		}
	}
	return tiers, nil
}

func (uc *QuoteUseCase) loadSurcharges(ctx context.Context) (fare.SurchargeTable, error) {
	var table fare.SurchargeTable
	if uc.cache != nil {
		if err := uc.cache.Get(ctx, optionCatalogKey, &table); err == nil {
			return table, nil
		} else if err != cache.ErrMiss {
			uc.logger.Warn("Option cache read failed", zap.Error(err))
		}
	}

	options, err := uc.options.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ride options: %w", err)
	}
	table = make(fare.SurchargeTable, len(options))
	for _, o := range options {
		table[o.Name] = o.Surcharge
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, optionCatalogKey, table, uc.cacheTTL); err != nil {
			uc.logger.Warn("Option cache write failed", zap.Error(err))
		}
	}
	return table, nil
}

// InvalidateCatalog drops the cached catalogs after an admin change.
func (uc *QuoteUseCase) InvalidateCatalog(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, tierCatalogKey); err != nil {
		uc.logger.Warn("Failed to invalidate tier cache", zap.Error(err))
	}
	if err := uc.cache.Delete(ctx, optionCatalogKey); err != nil {
		uc.logger.Warn("Failed to invalidate option cache", zap.Error(err))
	}
}
