package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/usecase"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
	"github.com/Missray24/missray-cab-app-sub000/internal/routing"
)

// Handler serves the booking HTTP API
type Handler struct {
	quotes   *usecase.QuoteUseCase
	bookings *usecase.BookingUseCase
	checkout *usecase.CheckoutUseCase
	tariffs  *usecase.TariffUseCase
	planner  routing.Planner
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	quotes *usecase.QuoteUseCase,
	bookings *usecase.BookingUseCase,
	checkout *usecase.CheckoutUseCase,
	tariffs *usecase.TariffUseCase,
	planner routing.Planner,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		quotes:   quotes,
		bookings: bookings,
		checkout: checkout,
		tariffs:  tariffs,
		planner:  planner,
		validate: validator.New(),
		logger:   logger,
	}
}

// Health reports service liveness
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Quote prices a trip across all active tiers
func (h *Handler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "validation failed", Details: err.Error(),
		})
	}

	ctx := c.Request().Context()
	route := fare.RouteSummary{Distance: req.Distance, Duration: req.Duration}
	if req.Pickup != "" && req.Dropoff != "" {
		planned, err := h.planner.Plan(ctx, req.Pickup, req.Dropoff, req.Stops)
		if err != nil {
			h.logger.Warn("Route planning failed for quote", zap.Error(err))
			route = fare.RouteSummary{}
		} else {
			route = planned
		}
	}

	quotes, err := h.quotes.QuoteAll(ctx, usecase.QuoteRequest{
		Route:   route,
		Stops:   len(req.Stops),
		Options: toOptionSelections(req.Options),
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, quoteResponse{
		Quotes:   quotes,
		Distance: route.Distance,
		Duration: route.Duration,
	})
}

// ListTiers returns the bookable tier catalog
func (h *Handler) ListTiers(c echo.Context) error {
	tiers, err := h.tariffs.ListActiveTiers(c.Request().Context())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tiers)
}

// ListOptions returns the active ride option catalog
func (h *Handler) ListOptions(c echo.Context) error {
	options, err := h.tariffs.ListOptions(c.Request().Context())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, options)
}

// CreateBooking creates a booking for the authenticated client
func (h *Handler) CreateBooking(c echo.Context) error {
	identity, _ := callerIdentity(c)

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "validation failed", Details: err.Error(),
		})
	}

	booking, err := h.bookings.Create(c.Request().Context(), usecase.CreateBookingRequest{
		ClientID:    identity.UserID,
		ClientEmail: identity.Email,
		TierCode:    req.TierCode,
		Pickup:      req.Pickup,
		Dropoff:     req.Dropoff,
		Stops:       req.Stops,
		Options:     toOptionSelections(req.Options),
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// GetBooking returns one booking owned by the caller
func (h *Handler) GetBooking(c echo.Context) error {
	identity, _ := callerIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid booking id",
		})
	}

	booking, err := h.bookings.Get(c.Request().Context(), id, identity.UserID, identity.IsAdmin())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListBookings returns the caller's bookings, most recent first
func (h *Handler) ListBookings(c echo.Context) error {
	identity, _ := callerIdentity(c)
	limit, offset := pageParams(c)

	bookings, err := h.bookings.ListForClient(c.Request().Context(), identity.UserID, limit, offset)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// CancelBooking cancels a booking owned by the caller
func (h *Handler) CancelBooking(c echo.Context) error {
	identity, _ := callerIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid booking id",
		})
	}

	var req cancelRequest
	_ = c.Bind(&req)

	booking, err := h.bookings.Cancel(c.Request().Context(), id, identity.UserID, identity.IsAdmin(), req.Note)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// StartCheckout opens a payment session for a booking
func (h *Handler) StartCheckout(c echo.Context) error {
	identity, _ := callerIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid booking id",
		})
	}

	result, err := h.checkout.Start(c.Request().Context(), id, identity.UserID, identity.IsAdmin())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// BillingWebhook receives payment provider callbacks. Unauthenticated; the
// payload is trusted only after its signature validates.
func (h *Handler) BillingWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "unreadable payload",
		})
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.checkout.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.NoContent(http.StatusOK)
}

// AdminListBookings returns all bookings
func (h *Handler) AdminListBookings(c echo.Context) error {
	limit, offset := pageParams(c)
	bookings, err := h.bookings.ListAll(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// AdminUpdateStatus moves a booking through its lifecycle
func (h *Handler) AdminUpdateStatus(c echo.Context) error {
	identity, _ := callerIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid booking id",
		})
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "validation failed", Details: err.Error(),
		})
	}

	booking, err := h.bookings.UpdateStatus(c.Request().Context(), id,
		domain.BookingStatus(req.Status), "admin:"+identity.UserID, req.Note)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// AdminListTiers returns the full tier catalog, inactive included
func (h *Handler) AdminListTiers(c echo.Context) error {
	tiers, err := h.tariffs.ListTiers(c.Request().Context())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tiers)
}

// AdminUpsertTier creates or updates a tier
func (h *Handler) AdminUpsertTier(c echo.Context) error {
	var req upsertTierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "validation failed", Details: err.Error(),
		})
	}

	tier, err := h.tariffs.UpsertTier(c.Request().Context(), req.toDomain())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tier)
}

// AdminUpsertOption creates or updates a ride option
func (h *Handler) AdminUpsertOption(c echo.Context) error {
	var req upsertOptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: domain.ErrCodeInvalidInput, Message: "validation failed", Details: err.Error(),
		})
	}

	option, err := h.tariffs.UpsertOption(c.Request().Context(), req.toDomain())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, option)
}

func pageParams(c echo.Context) (limit, offset int) {
	limit = 20
	if s := c.QueryParam("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			limit = v
		}
	}
	if s := c.QueryParam("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			offset = v
		}
	}
	return limit, offset
}
