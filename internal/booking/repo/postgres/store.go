package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/repo"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

// Store represents the PostgreSQL store implementation
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store
func NewStore(connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: pool}, nil
}

// NewStoreWithPool creates a new PostgreSQL store with an existing pool
func NewStoreWithPool(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool cannot be nil")
	}
	return &Store{db: pool}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// Tiers returns the tier repository implementation
func (s *Store) Tiers() repo.TierRepository {
	return &tierRepository{store: s}
}

// Options returns the ride option repository implementation
func (s *Store) Options() repo.OptionRepository {
	return &optionRepository{store: s}
}

// Bookings returns the booking repository implementation
func (s *Store) Bookings() repo.BookingRepository {
	return &bookingRepository{store: s}
}

type tierRepository struct {
	store *Store
}

const tierColumns = `id, code, name, description, currency,
	base_fare, per_km, per_minute, per_stop, minimum_price,
	position, active, created_at, updated_at`

func scanTier(row pgx.Row) (domain.Tier, error) {
	var t domain.Tier
	err := row.Scan(
		&t.ID, &t.Code, &t.Name, &t.Description, &t.Currency,
		&t.Rates.BaseFare, &t.Rates.PerKm, &t.Rates.PerMinute,
		&t.Rates.PerStop, &t.Rates.MinimumPrice,
		&t.Position, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *tierRepository) GetByCode(ctx context.Context, code string) (domain.Tier, error) {
	row := r.store.db.QueryRow(ctx,
		`SELECT `+tierColumns+` FROM tiers WHERE code = $1`, code)

	t, err := scanTier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tier{}, domain.NewNotFoundError("tier", code)
		}
		return domain.Tier{}, fmt.Errorf("failed to get tier: %w", err)
	}
	return t, nil
}

func (r *tierRepository) ListActive(ctx context.Context) ([]domain.Tier, error) {
	return r.list(ctx, `SELECT `+tierColumns+` FROM tiers WHERE active ORDER BY position, code`)
}

func (r *tierRepository) List(ctx context.Context) ([]domain.Tier, error) {
	return r.list(ctx, `SELECT `+tierColumns+` FROM tiers ORDER BY position, code`)
}

func (r *tierRepository) list(ctx context.Context, query string) ([]domain.Tier, error) {
	rows, err := r.store.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []domain.Tier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *tierRepository) Upsert(ctx context.Context, tier domain.Tier) (domain.Tier, error) {
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
	}

	row := r.store.db.QueryRow(ctx, `
		INSERT INTO tiers (id, code, name, description, currency,
			base_fare, per_km, per_minute, per_stop, minimum_price,
			position, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			currency = EXCLUDED.currency,
			base_fare = EXCLUDED.base_fare,
			per_km = EXCLUDED.per_km,
			per_minute = EXCLUDED.per_minute,
			per_stop = EXCLUDED.per_stop,
			minimum_price = EXCLUDED.minimum_price,
			position = EXCLUDED.position,
			active = EXCLUDED.active,
			updated_at = now()
		RETURNING `+tierColumns,
		tier.ID, tier.Code, tier.Name, tier.Description, tier.Currency,
		tier.Rates.BaseFare, tier.Rates.PerKm, tier.Rates.PerMinute,
		tier.Rates.PerStop, tier.Rates.MinimumPrice,
		tier.Position, tier.Active,
	)

	saved, err := scanTier(row)
	if err != nil {
		return domain.Tier{}, fmt.Errorf("failed to upsert tier: %w", err)
	}
	return saved, nil
}

type optionRepository struct {
	store *Store
}

func (r *optionRepository) Get(ctx context.Context, name fare.OptionName) (domain.RideOption, error) {
	var o domain.RideOption
	err := r.store.db.QueryRow(ctx,
		`SELECT name, label, surcharge, active, updated_at FROM ride_options WHERE name = $1`,
		string(name),
	).Scan(&o.Name, &o.Label, &o.Surcharge, &o.Active, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RideOption{}, domain.NewNotFoundError("ride option", string(name))
		}
		return domain.RideOption{}, fmt.Errorf("failed to get ride option: %w", err)
	}
	return o, nil
}

func (r *optionRepository) ListActive(ctx context.Context) ([]domain.RideOption, error) {
	rows, err := r.store.db.Query(ctx,
		`SELECT name, label, surcharge, active, updated_at FROM ride_options WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ride options: %w", err)
	}
	defer rows.Close()

	var options []domain.RideOption
	for rows.Next() {
		var o domain.RideOption
		if err := rows.Scan(&o.Name, &o.Label, &o.Surcharge, &o.Active, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ride option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func (r *optionRepository) Upsert(ctx context.Context, option domain.RideOption) (domain.RideOption, error) {
	err := r.store.db.QueryRow(ctx, `
		INSERT INTO ride_options (name, label, surcharge, active, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE SET
			label = EXCLUDED.label,
			surcharge = EXCLUDED.surcharge,
			active = EXCLUDED.active,
			updated_at = now()
		RETURNING name, label, surcharge, active, updated_at`,
		string(option.Name), option.Label, option.Surcharge, option.Active,
	).Scan(&option.Name, &option.Label, &option.Surcharge, &option.Active, &option.UpdatedAt)
	if err != nil {
		return domain.RideOption{}, fmt.Errorf("failed to upsert ride option: %w", err)
	}
	return option, nil
}

type bookingRepository struct {
	store *Store
}

const bookingColumns = `id, client_id, client_email, tier_code,
	pickup_address, dropoff_address, stops, distance, duration, options,
	amount, vat_percent, vat_amount, currency, status, payment_status,
	checkout_session, history, scheduled_at, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	stops, options, history, err := marshalBookingJSON(b)
	if err != nil {
		return err
	}

	err = r.store.db.QueryRow(ctx, `
		INSERT INTO bookings (id, client_id, client_email, tier_code,
			pickup_address, dropoff_address, stops, distance, duration, options,
			amount, vat_percent, vat_amount, currency, status, payment_status,
			checkout_session, history, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, now(), now())
		RETURNING created_at, updated_at`,
		b.ID, b.ClientID, b.ClientEmail, b.TierCode,
		b.PickupAddress, b.DropoffAddress, stops, b.Distance, b.Duration, options,
		b.Amount, b.VATPercent, b.VATAmount, b.Currency, string(b.Status),
		string(b.PaymentStatus), b.CheckoutSession, history, b.ScheduledAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.store.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Booking, error) {
	row := r.store.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE checkout_session = $1`, sessionID)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("booking", sessionID)
		}
		return nil, fmt.Errorf("failed to get booking by session: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Booking, error) {
	rows, err := r.store.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepository) List(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	rows, err := r.store.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	stops, options, history, err := marshalBookingJSON(b)
	if err != nil {
		return err
	}

	tag, err := r.store.db.Exec(ctx, `
		UPDATE bookings SET
			tier_code = $2,
			pickup_address = $3,
			dropoff_address = $4,
			stops = $5,
			distance = $6,
			duration = $7,
			options = $8,
			amount = $9,
			vat_percent = $10,
			vat_amount = $11,
			status = $12,
			payment_status = $13,
			checkout_session = $14,
			history = $15,
			scheduled_at = $16,
			updated_at = now()
		WHERE id = $1`,
		b.ID, b.TierCode, b.PickupAddress, b.DropoffAddress, stops,
		b.Distance, b.Duration, options, b.Amount, b.VATPercent, b.VATAmount,
		string(b.Status), string(b.PaymentStatus), b.CheckoutSession,
		history, b.ScheduledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("booking", b.ID.String())
	}
	return nil
}

func marshalBookingJSON(b *domain.Booking) (stops, options, history []byte, err error) {
	if stops, err = json.Marshal(b.Stops); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal stops: %w", err)
	}
	if options, err = json.Marshal(b.Options); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal options: %w", err)
	}
	if history, err = json.Marshal(b.History); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return stops, options, history, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b                       domain.Booking
		stops, options, history []byte
		status, payStatus       string
	)

	err := row.Scan(
		&b.ID, &b.ClientID, &b.ClientEmail, &b.TierCode,
		&b.PickupAddress, &b.DropoffAddress, &stops, &b.Distance, &b.Duration, &options,
		&b.Amount, &b.VATPercent, &b.VATAmount, &b.Currency, &status, &payStatus,
		&b.CheckoutSession, &history, &b.ScheduledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(payStatus)

	if err := json.Unmarshal(stops, &b.Stops); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stops: %w", err)
	}
	if err := json.Unmarshal(options, &b.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	if err := json.Unmarshal(history, &b.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
