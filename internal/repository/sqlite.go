package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"influencer-app/internal/domain"
)

type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{dbPath: path}
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return &domain.StoreError{Op: "init", Err: fmt.Errorf("error opening database: %w", err)}
	}

	if err = s.db.Ping(); err != nil {
		return &domain.StoreError{Op: "init", Err: fmt.Errorf("error connecting to database: %w", err)}
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_user TEXT NOT NULL,
		influencer_handle TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		value TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		collection_method TEXT,
		live_likes INTEGER,
		live_views INTEGER
	);
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		influencer_handle TEXT NOT NULL,
		product_name TEXT NOT NULL,
		estimated_value TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_observations_lookup
		ON observations(owner_user, influencer_handle, recorded_at);`

	_, err = s.db.Exec(createTableSQL)
	if err != nil {
		return &domain.StoreError{Op: "init", Err: fmt.Errorf("error creating tables: %w", err)}
	}

	log.Println("SQLiteStore initialized.")
	return nil
}

func (s *SQLiteStore) AppendObservation(ctx context.Context, obs domain.MetricObservation) error {
	stmt, err := s.db.PrepareContext(ctx, `INSERT INTO observations
		(owner_user, influencer_handle, metric_type, value, recorded_at, collection_method, live_likes, live_views)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &domain.StoreError{Op: "append_observation", Err: fmt.Errorf("error preparing insert statement: %w", err)}
	}
	defer stmt.Close()

	var liveLikes, liveViews sql.NullInt64
	if obs.Live != nil {
		liveLikes = sql.NullInt64{Int64: obs.Live.Likes, Valid: true}
		liveViews = sql.NullInt64{Int64: obs.Live.Views, Valid: true}
	}

	_, err = stmt.ExecContext(ctx,
		obs.OwnerUser, obs.InfluencerHandle, string(obs.MetricType), obs.Value.String(),
		obs.RecordedAt.Unix(), obs.CollectionMethod, liveLikes, liveViews)
	if err != nil {
		return &domain.StoreError{Op: "append_observation", Err: fmt.Errorf("error inserting observation: %w", err)}
	}
	return nil
}

func (s *SQLiteStore) AppendProduct(ctx context.Context, p domain.EarnedProduct) error {
	stmt, err := s.db.PrepareContext(ctx, `INSERT INTO products
		(influencer_handle, product_name, estimated_value, recorded_at) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return &domain.StoreError{Op: "append_product", Err: fmt.Errorf("error preparing insert statement: %w", err)}
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, p.InfluencerHandle, p.ProductName, p.EstimatedValue.String(), p.RecordedAt.Unix())
	if err != nil {
		return &domain.StoreError{Op: "append_product", Err: fmt.Errorf("error inserting product: %w", err)}
	}
	return nil
}

func (s *SQLiteStore) ListInfluencers(ctx context.Context, ownerUser string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT influencer_handle FROM observations WHERE owner_user = ? ORDER BY influencer_handle", ownerUser)
	if err != nil {
		return nil, &domain.StoreError{Op: "list_influencers", Err: fmt.Errorf("error querying database: %w", err)}
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, &domain.StoreError{Op: "list_influencers", Err: fmt.Errorf("error scanning row: %w", err)}
		}
		handles = append(handles, h)
	}
	if err = rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list_influencers", Err: fmt.Errorf("error during rows iteration: %w", err)}
	}
	return handles, nil
}

func (s *SQLiteStore) QueryObservations(ctx context.Context, ownerUser string, handles []string, from, to time.Time) ([]domain.MetricObservation, error) {
	if len(handles) == 0 {
		return []domain.MetricObservation{}, nil
	}

	query := fmt.Sprintf(`SELECT owner_user, influencer_handle, metric_type, value, recorded_at,
		collection_method, live_likes, live_views
		FROM observations
		WHERE owner_user = ? AND influencer_handle IN (%s) AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY influencer_handle, recorded_at ASC`, placeholders(len(handles)))

	args := make([]interface{}, 0, len(handles)+3)
	args = append(args, ownerUser)
	for _, h := range handles {
		args = append(args, h)
	}
	args = append(args, from.Unix(), to.Unix())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: "query_observations", Err: fmt.Errorf("error querying database: %w", err)}
	}
	defer rows.Close()

	observations := []domain.MetricObservation{}
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "query_observations", Err: err}
		}
		observations = append(observations, obs)
	}
	if err = rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "query_observations", Err: fmt.Errorf("error during rows iteration: %w", err)}
	}
	return observations, nil
}

func (s *SQLiteStore) QueryProducts(ctx context.Context, handles []string, from, to time.Time) ([]domain.EarnedProduct, error) {
	if len(handles) == 0 {
		return []domain.EarnedProduct{}, nil
	}

	query := fmt.Sprintf(`SELECT influencer_handle, product_name, estimated_value, recorded_at
		FROM products
		WHERE influencer_handle IN (%s) AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY influencer_handle, recorded_at ASC`, placeholders(len(handles)))

	args := make([]interface{}, 0, len(handles)+2)
	for _, h := range handles {
		args = append(args, h)
	}
	args = append(args, from.Unix(), to.Unix())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: "query_products", Err: fmt.Errorf("error querying database: %w", err)}
	}
	defer rows.Close()

	products := []domain.EarnedProduct{}
	for rows.Next() {
		var (
			p        domain.EarnedProduct
			valueStr string
			recorded int64
		)
		if err := rows.Scan(&p.InfluencerHandle, &p.ProductName, &valueStr, &recorded); err != nil {
			return nil, &domain.StoreError{Op: "query_products", Err: fmt.Errorf("error scanning row: %w", err)}
		}
		p.EstimatedValue, err = decimal.NewFromString(valueStr)
		if err != nil {
			return nil, &domain.StoreError{Op: "query_products", Err: fmt.Errorf("error parsing stored value %q: %w", valueStr, err)}
		}
		p.RecordedAt = time.Unix(recorded, 0).UTC()
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "query_products", Err: fmt.Errorf("error during rows iteration: %w", err)}
	}
	return products, nil
}

func (s *SQLiteStore) LastLiveObservation(ctx context.Context, handle, ownerUser string) (*domain.MetricObservation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT owner_user, influencer_handle, metric_type, value, recorded_at,
		collection_method, live_likes, live_views
		FROM observations
		WHERE influencer_handle = ? AND owner_user = ? AND live_views > 0
		ORDER BY recorded_at DESC LIMIT 1`, handle, ownerUser)
	if err != nil {
		return nil, &domain.StoreError{Op: "last_live_observation", Err: fmt.Errorf("error querying database: %w", err)}
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, &domain.StoreError{Op: "last_live_observation", Err: fmt.Errorf("error during rows iteration: %w", err)}
		}
		return nil, nil
	}

	obs, err := scanObservation(rows)
	if err != nil {
		return nil, &domain.StoreError{Op: "last_live_observation", Err: err}
	}
	return &obs, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanObservation(rows *sql.Rows) (domain.MetricObservation, error) {
	var (
		obs                  domain.MetricObservation
		metricType           string
		valueStr             string
		recorded             int64
		liveLikes, liveViews sql.NullInt64
	)
	if err := rows.Scan(&obs.OwnerUser, &obs.InfluencerHandle, &metricType, &valueStr, &recorded,
		&obs.CollectionMethod, &liveLikes, &liveViews); err != nil {
		return obs, fmt.Errorf("error scanning row: %w", err)
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return obs, fmt.Errorf("error parsing stored value %q: %w", valueStr, err)
	}

	obs.MetricType = domain.MetricType(metricType)
	obs.Value = value
	obs.RecordedAt = time.Unix(recorded, 0).UTC()
	if liveLikes.Valid || liveViews.Valid {
		obs.Live = &domain.LiveSnapshot{Likes: liveLikes.Int64, Views: liveViews.Int64}
	}
	return obs, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
