package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/auth"
	"github.com/Missray24/missray-cab-app-sub000/internal/billing"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/usecase"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
	"github.com/Missray24/missray-cab-app-sub000/internal/notification"
)

// staticValidator maps fixed tokens onto identities.
type staticValidator map[string]auth.Identity

func (v staticValidator) Validate(ctx context.Context, token string) (auth.Identity, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if id, ok := v[token]; ok {
		return id, nil
	}
	return auth.Identity{}, fmt.Errorf("unknown token")
}

type fixedPlanner struct{ route fare.RouteSummary }

func (p fixedPlanner) Plan(ctx context.Context, pickup, dropoff string, stops []string) (fare.RouteSummary, error) {
	return p.route, nil
}

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T) (*httptest.Server, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	ctx := context.Background()

	tiers := []domain.Tier{
		{Code: "berline", Name: "Berline", Currency: "EUR", Position: 1, Active: true,
			Rates: fare.RateCard{BaseFare: 5, PerKm: 1.5, PerMinute: 0.5, PerStop: 2, MinimumPrice: 10}},
		{Code: "van", Name: "Van", Currency: "EUR", Position: 2, Active: true,
			Rates: fare.RateCard{BaseFare: 8, PerKm: 2, PerMinute: 0.6, PerStop: 2.5, MinimumPrice: 15}},
	}
	for _, tier := range tiers {
		if _, err := store.Tiers().Upsert(ctx, tier); err != nil {
			t.Fatalf("seed tier: %v", err)
		}
	}
	if _, err := store.Options().Upsert(ctx, domain.RideOption{
		Name: fare.OptionChildSeat, Label: "Siège enfant", Surcharge: 3, Active: true,
	}); err != nil {
		t.Fatalf("seed option: %v", err)
	}

	logger := zap.NewNop()
	planner := fixedPlanner{route: fare.RouteSummary{Distance: strPtr("12,5 km"), Duration: strPtr("30")}}
	quotes := usecase.NewQuoteUseCase(store.Tiers(), store.Options(), nil, 0, logger)
	bookings := usecase.NewBookingUseCase(store.Bookings(), quotes, planner,
		events.NewNoopPublisher(), notification.NoopMailer{}, logger)
	checkout := usecase.NewCheckoutUseCase(store.Bookings(), quotes,
		billing.NewMockProvider(), events.NewNoopPublisher(), notification.NoopMailer{}, 10, logger)
	tariffs := usecase.NewTariffUseCase(store.Tiers(), store.Options(), quotes, logger)

	handler := NewHandler(quotes, bookings, checkout, tariffs, planner, logger)
	validator := staticValidator{
		"client-token": {UserID: "client-1", Email: "rider@example.com", Role: auth.RoleClient},
		"admin-token":  {UserID: "ops-1", Role: auth.RoleAdmin},
	}

	e := NewRouter(handler, validator, nil, logger)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestQuoteEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quotes", "", map[string]any{
		"pickup":  "10 Rue de Rivoli, Paris",
		"dropoff": "Aéroport CDG",
		"options": []map[string]any{{"name": "child_seat", "quantity": 1}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decode[quoteResponse](t, resp)
	if len(body.Quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(body.Quotes))
	}
	// berline: 5 + 12.5*1.5 + 30*0.5 + 3 = 41.75
	if got := body.Quotes[0].Amount; got != 41.75 {
		t.Errorf("berline amount = %v, want 41.75", got)
	}
	if body.Distance == nil || *body.Distance != "12,5 km" {
		t.Errorf("distance = %v, want 12,5 km", body.Distance)
	}
}

func TestQuoteEndpointWithRawRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quotes", "", map[string]any{
		"distance": "4 km",
		"duration": "10",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decode[quoteResponse](t, resp)
	// berline: 5 + 4*1.5 + 10*0.5 = 16
	if got := body.Quotes[0].Amount; got != 16 {
		t.Errorf("berline amount = %v, want 16", got)
	}
}

func TestBookingFlowRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bookings", "", map[string]any{
		"tier_code": "berline", "pickup": "A", "dropoff": "B",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBookingCreateAndFetch(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bookings", "client-token", map[string]any{
		"tier_code": "berline",
		"pickup":    "10 Rue de Rivoli, Paris",
		"dropoff":   "Aéroport CDG",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[domain.Booking](t, resp)
	if created.Status != domain.BookingStatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/bookings/"+created.ID.String(), "client-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	fetched := decode[domain.Booking](t, resp)
	if fetched.ID != created.ID {
		t.Errorf("fetched id = %s, want %s", fetched.ID, created.ID)
	}

	// Admins can read any booking
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/bookings/"+created.ID.String(), "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin get status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCheckoutEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bookings", "client-token", map[string]any{
		"tier_code": "van",
		"pickup":    "Gare de Lyon",
		"dropoff":   "Orly",
	})
	created := decode[domain.Booking](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/bookings/"+created.ID.String()+"/checkout", "client-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout status = %d, want 200", resp.StatusCode)
	}
	result := decode[usecase.CheckoutResult](t, resp)
	if result.SessionID == "" || result.URL == "" {
		t.Fatalf("empty checkout session: %+v", result)
	}
}

func TestAdminGuard(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/admin/bookings", "client-token", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("client on admin route: status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/admin/bookings", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin on admin route: status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminUpsertTierValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/admin/tiers", "admin-token", map[string]any{
		"code": "eco", "name": "Eco", "currency": "EUR", "per_km": -1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/admin/tiers", "admin-token", map[string]any{
		"code": "eco", "name": "Eco", "currency": "EUR",
		"base_fare": 4, "per_km": 1.2, "per_minute": 0.4, "minimum_price": 8, "active": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	tier := decode[domain.Tier](t, resp)
	if tier.Rates.PerKm != 1.2 {
		t.Errorf("per_km = %v, want 1.2", tier.Rates.PerKm)
	}
}

func TestCancelEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bookings", "client-token", map[string]any{
		"tier_code": "berline",
		"pickup":    "Bastille",
		"dropoff":   "Montmartre",
	})
	created := decode[domain.Booking](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/bookings/"+created.ID.String()+"/cancel", "client-token",
		map[string]any{"note": "changed plans"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", resp.StatusCode)
	}
	cancelled := decode[domain.Booking](t, resp)
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
}
