package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/backpackers-backend/internal/search"
)

// CatalogRepository loads the approved listings the search runs over.
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (search.Catalog, error)
	Upsert(ctx context.Context, catalog search.Catalog) error
}

type pgCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &pgCatalogRepository{pool: pool}
}

func (r *pgCatalogRepository) LoadCatalog(ctx context.Context) (search.Catalog, error) {
	var catalog search.Catalog
	var err error

	if catalog.Rentals, err = r.loadRentals(ctx); err != nil {
		return search.Catalog{}, err
	}
	if catalog.Sightseeing, err = r.loadSightseeing(ctx); err != nil {
		return search.Catalog{}, err
	}
	if catalog.Tours, err = r.loadTours(ctx); err != nil {
		return search.Catalog{}, err
	}
	return catalog, nil
}

func (r *pgCatalogRepository) loadRentals(ctx context.Context) ([]search.RentalItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, type, model, location, price_per_day::text, seats
		FROM rentals WHERE approved = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []search.RentalItem
	for rows.Next() {
		var item search.RentalItem
		var price string
		if err := rows.Scan(&item.ID, &item.Name, &item.Type, &item.Model, &item.Location, &price, &item.Seats); err != nil {
			return nil, err
		}
		if item.PricePerDay, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCatalogRepository) loadSightseeing(ctx context.Context) ([]search.SightseeingPackage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, city, state, places_covered, price::text, duration_hours
		FROM sightseeing_packages WHERE approved = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []search.SightseeingPackage
	for rows.Next() {
		var item search.SightseeingPackage
		var price string
		if err := rows.Scan(&item.ID, &item.Title, &item.City, &item.State, &item.PlacesCovered, &price, &item.DurationHours); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCatalogRepository) loadTours(ctx context.Context) ([]search.TourPackage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, category, location, price::text, duration_days
		FROM tour_packages WHERE approved = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []search.TourPackage
	for rows.Next() {
		var item search.TourPackage
		var price string
		if err := rows.Scan(&item.ID, &item.Title, &item.Category, &item.Location, &price, &item.DurationDays); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Upsert writes listings keyed by id, used by seeding.
func (r *pgCatalogRepository) Upsert(ctx context.Context, catalog search.Catalog) error {
	batch := &pgx.Batch{}
	for _, it := range catalog.Rentals {
		batch.Queue(`
			INSERT INTO rentals (id, name, type, model, location, price_per_day, seats)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type, model = EXCLUDED.model,
				location = EXCLUDED.location, price_per_day = EXCLUDED.price_per_day, seats = EXCLUDED.seats
		`, it.ID, it.Name, it.Type, it.Model, it.Location, it.PricePerDay.String(), it.Seats)
	}
	for _, it := range catalog.Sightseeing {
		batch.Queue(`
			INSERT INTO sightseeing_packages (id, title, city, state, places_covered, price, duration_hours)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, city = EXCLUDED.city, state = EXCLUDED.state,
				places_covered = EXCLUDED.places_covered, price = EXCLUDED.price, duration_hours = EXCLUDED.duration_hours
		`, it.ID, it.Title, it.City, it.State, it.PlacesCovered, it.Price.String(), it.DurationHours)
	}
	for _, it := range catalog.Tours {
		batch.Queue(`
			INSERT INTO tour_packages (id, title, category, location, price, duration_days)
			VALUES ($1, $2, $3, $4, $5::numeric, $6)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, category = EXCLUDED.category,
				location = EXCLUDED.location, price = EXCLUDED.price, duration_days = EXCLUDED.duration_days
		`, it.ID, it.Title, it.Category, it.Location, it.Price.String(), it.DurationDays)
	}
	if batch.Len() == 0 {
		return nil
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// ============================================
// In-Memory Catalog Repository
// ============================================

type inMemoryCatalogRepository struct {
	mu      sync.RWMutex
	catalog search.Catalog
}

func NewInMemoryCatalogRepository() CatalogRepository {
	return &inMemoryCatalogRepository{}
}

func (r *inMemoryCatalogRepository) LoadCatalog(ctx context.Context) (search.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return search.Catalog{
		Rentals:     append([]search.RentalItem(nil), r.catalog.Rentals...),
		Sightseeing: append([]search.SightseeingPackage(nil), r.catalog.Sightseeing...),
		Tours:       append([]search.TourPackage(nil), r.catalog.Tours...),
	}, nil
}

func (r *inMemoryCatalogRepository) Upsert(ctx context.Context, catalog search.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog.Rentals = upsertByID(r.catalog.Rentals, catalog.Rentals, func(it search.RentalItem) string { return it.ID })
	r.catalog.Sightseeing = upsertByID(r.catalog.Sightseeing, catalog.Sightseeing, func(it search.SightseeingPackage) string { return it.ID })
	r.catalog.Tours = upsertByID(r.catalog.Tours, catalog.Tours, func(it search.TourPackage) string { return it.ID })
	return nil
}

func upsertByID[T any](existing, incoming []T, id func(T) string) []T {
	index := make(map[string]int, len(existing))
	for i, it := range existing {
		index[id(it)] = i
	}
	for _, it := range incoming {
		if i, ok := index[id(it)]; ok {
			existing[i] = it
			continue
		}
		index[id(it)] = len(existing)
		existing = append(existing, it)
	}
	return existing
}
