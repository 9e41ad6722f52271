package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"tintas-bot/internal/config"
	statestore "tintas-bot/internal/storage/redis"
	"tintas-bot/pkg/redis"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	statsCacheKey   = "calculation_stats"
	productCacheTTL = 24 * time.Hour
	statsCacheTTL   = time.Hour
)

var ErrNotFound = errors.New("not found")

// Calculation kinds and sources as stored in the calculation log.
const (
	KindPaint = "paint"
	KindFloor = "floor"
	KindQuote = "quote"

	SourceAPI      = "api"
	SourceTelegram = "telegram"
	SourceCLI      = "cli"
)

const telegramRefPrefix = "tg:"

// TelegramUserRef is the user reference recorded for a Telegram chat.
func TelegramUserRef(chatID int64) string {
	return telegramRefPrefix + strconv.FormatInt(chatID, 10)
}

// telegramChatID extracts the chat id from a reference made by TelegramUserRef.
func telegramChatID(userRef string) (int64, bool) {
	id, ok := strings.CutPrefix(userRef, telegramRefPrefix)
	if !ok {
		return 0, false
	}
	chatID, err := strconv.ParseInt(id, 10, 64)
	return chatID, err == nil
}

// Cache is the subset of the Redis client the storage layer uses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

var _ Cache = (*redis.Client)(nil)

type PostgresStorage struct {
	db     *sqlx.DB
	cache  Cache
	logger *zap.Logger
}

type Product struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Brand     string    `db:"brand" json:"brand"`
	Category  string    `db:"category" json:"category"`
	Coverage  float64   `db:"coverage" json:"coverage"`
	Active    bool      `db:"active" json:"active"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Packages  []Package `db:"-" json:"packages"`
}

type Package struct {
	ID        int64           `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Label     string          `db:"label" json:"label"`
	Size      float64         `db:"size" json:"size"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

type Calculation struct {
	ID        string         `db:"id"`
	Kind      string         `db:"kind"`
	Source    string         `db:"source"`
	UserRef   string         `db:"user_ref"`
	TotalArea float64        `db:"total_area"`
	Required  float64        `db:"required"`
	Unit      string         `db:"unit"`
	Summary   string         `db:"summary"`
	Params    types.JSONText `db:"params"`
	CreatedAt time.Time      `db:"created_at"`
}

type Consent struct {
	UserRef     string         `db:"user_ref"`
	ConsentType string         `db:"consent_type"`
	Granted     bool           `db:"granted"`
	Metadata    types.JSONText `db:"metadata"`
	CreatedAt   time.Time      `db:"created_at"`
}

type CalculationStatistics struct {
	TotalCalculations int            `json:"total_calculations"`
	TodayCalculations int            `json:"today_calculations"`
	WeekCalculations  int            `json:"week_calculations"`
	MonthCalculations int            `json:"month_calculations"`
	TotalLiters       float64        `json:"total_liters"`
	TotalArea         float64        `json:"total_area"`
	KindCounts        map[string]int `json:"kind_counts"`
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, cache Cache, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.ConnectTimeout
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				_ = db.Close()
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		cache:  cache,
		logger: logger,
	}, nil
}

// DB exposes the pool for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *PostgresStorage) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	const operation = "storage.ListProducts"

	query := `SELECT id, name, brand, category, coverage, active, updated_at FROM products`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	var products []Product
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("%s: failed to get products: %w", operation, err)
	}

	var packages []Package
	err := s.db.SelectContext(ctx, &packages,
		`SELECT id, product_id, label, size, price FROM product_packages ORDER BY product_id, size`)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get packages: %w", operation, err)
	}

	byProduct := make(map[string][]Package, len(products))
	for _, p := range packages {
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}
	for i := range products {
		products[i].Packages = byProduct[products[i].ID]
	}

	return products, nil
}

func (s *PostgresStorage) GetProductByID(ctx context.Context, productID string) (*Product, error) {
	const operation = "storage.GetProductByID"

	cacheKey := productCacheKey(productID)

	// Try Redis first
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var product Product
		if err := json.Unmarshal(cached, &product); err == nil {
			return &product, nil
		}
	}

	// Fall back to Postgres
	var product Product
	err := s.db.GetContext(ctx, &product,
		`SELECT id, name, brand, category, coverage, active, updated_at FROM products WHERE id = $1`,
		productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: product %q: %w", operation, productID, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get product: %w", operation, err)
	}

	err = s.db.SelectContext(ctx, &product.Packages,
		`SELECT id, product_id, label, size, price FROM product_packages WHERE product_id = $1 ORDER BY size`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get packages: %w", operation, err)
	}

	// Cache the result
	if data, err := json.Marshal(product); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, productCacheTTL); err != nil {
			s.logger.Warn("Failed to cache product", zap.String("product_id", productID), zap.Error(err))
		}
	}

	return &product, nil
}

// UpsertProduct creates or replaces a product together with its packages.
func (s *PostgresStorage) UpsertProduct(ctx context.Context, product Product) error {
	const operation = "storage.UpsertProduct"

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", operation, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO products (id, name, brand, category, coverage, active, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            brand = EXCLUDED.brand,
            category = EXCLUDED.category,
            coverage = EXCLUDED.coverage,
            active = EXCLUDED.active,
            updated_at = NOW()
    `, product.ID, product.Name, product.Brand, product.Category, product.Coverage, product.Active)
	if err != nil {
		return fmt.Errorf("%s: failed to upsert product %q: %w", operation, product.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_packages WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("%s: failed to clear packages: %w", operation, err)
	}

	for _, pkg := range product.Packages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_packages (product_id, label, size, price) VALUES ($1, $2, $3, $4)`,
			product.ID, pkg.Label, pkg.Size, pkg.Price)
		if err != nil {
			return fmt.Errorf("%s: failed to insert package %q: %w", operation, pkg.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", operation, err)
	}

	if err := s.cache.Del(ctx, productCacheKey(product.ID)); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.String("product_id", product.ID), zap.Error(err))
	}
	return nil
}

func (s *PostgresStorage) SaveCalculation(ctx context.Context, calc Calculation) (string, error) {
	const operation = "storage.SaveCalculation"

	if calc.ID == "" {
		calc.ID = uuid.NewString()
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now()
	}
	if len(calc.Params) == 0 {
		calc.Params = types.JSONText(`{}`)
	}

	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO calculations (
            id, kind, source, user_ref, total_area, required, unit, summary, params, created_at
        ) VALUES (
            :id, :kind, :source, :user_ref, :total_area, :required, :unit, :summary, :params, :created_at
        )
    `, calc)
	if err != nil {
		return "", fmt.Errorf("%s: failed to save calculation: %w", operation, err)
	}

	// Invalidate statistics cache
	if err := s.cache.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate statistics cache", zap.Error(err))
	}

	return calc.ID, nil
}

func (s *PostgresStorage) ListCalculations(ctx context.Context, since time.Time, limit int) ([]Calculation, error) {
	const operation = "storage.ListCalculations"

	var calcs []Calculation
	err := s.db.SelectContext(ctx, &calcs, `
        SELECT id, kind, source, user_ref, total_area, required, unit, summary, params, created_at
        FROM calculations
        WHERE created_at >= $1
        ORDER BY created_at DESC
        LIMIT $2
    `, since, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch calculations: %w", operation, err)
	}
	return calcs, nil
}

func (s *PostgresStorage) GetCalculationStatistics(ctx context.Context) (*CalculationStatistics, error) {
	const operation = "storage.GetCalculationStatistics"

	// Try Redis first
	if cached, err := s.cache.Get(ctx, statsCacheKey); err == nil {
		var stats CalculationStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	var totals struct {
		Total  int     `db:"total"`
		Today  int     `db:"today"`
		Week   int     `db:"week"`
		Month  int     `db:"month"`
		Liters float64 `db:"liters"`
		Area   float64 `db:"area"`
	}
	err := s.db.GetContext(ctx, &totals, `
        SELECT
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE) AS today,
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '7 days') AS week,
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '30 days') AS month,
            COALESCE(SUM(required) FILTER (WHERE unit = 'liters'), 0) AS liters,
            COALESCE(SUM(total_area), 0) AS area
        FROM calculations
    `)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get totals: %w", operation, err)
	}

	stats := &CalculationStatistics{
		TotalCalculations: totals.Total,
		TodayCalculations: totals.Today,
		WeekCalculations:  totals.Week,
		MonthCalculations: totals.Month,
		TotalLiters:       totals.Liters,
		TotalArea:         totals.Area,
		KindCounts:        make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM calculations GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get kind counts: %w", operation, err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("%s: failed to scan kind count: %w", operation, err)
		}
		stats.KindCounts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	// Cache the result
	if data, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, data, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache statistics", zap.Error(err))
		}
	}

	return stats, nil
}

func (s *PostgresStorage) RecordConsent(ctx context.Context, consent Consent) error {
	const operation = "storage.RecordConsent"

	if len(consent.Metadata) == 0 {
		consent.Metadata = types.JSONText(`{}`)
	}
	if consent.CreatedAt.IsZero() {
		consent.CreatedAt = time.Now()
	}

	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO consents (user_ref, consent_type, granted, metadata, created_at)
        VALUES (:user_ref, :consent_type, :granted, :metadata, :created_at)
    `, consent)
	if err != nil {
		return fmt.Errorf("%s: failed to record consent: %w", operation, err)
	}
	return nil
}

// GetConsentStatus reports the latest decision for the user, false when none was recorded.
func (s *PostgresStorage) GetConsentStatus(ctx context.Context, userRef, consentType string) (bool, error) {
	const operation = "storage.GetConsentStatus"

	var granted bool
	err := s.db.GetContext(ctx, &granted, `
        SELECT granted FROM consents
        WHERE user_ref = $1 AND consent_type = $2
        ORDER BY created_at DESC
        LIMIT 1
    `, userRef, consentType)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", operation, err)
	}
	return granted, nil
}

// UserDataDeletion counts the rows removed for one user.
type UserDataDeletion struct {
	Calculations int64 `json:"calculations"`
	Consents     int64 `json:"consents"`
}

// DeleteUserData removes every calculation and consent recorded for userRef.
func (s *PostgresStorage) DeleteUserData(ctx context.Context, userRef string) (UserDataDeletion, error) {
	const operation = "storage.DeleteUserData"

	var deleted UserDataDeletion
	if userRef == "" {
		return deleted, fmt.Errorf("%s: empty user reference", operation)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return deleted, fmt.Errorf("%s: begin: %w", operation, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM calculations WHERE user_ref = $1`, userRef)
	if err != nil {
		return deleted, fmt.Errorf("%s: failed to delete calculations: %w", operation, err)
	}
	if deleted.Calculations, err = res.RowsAffected(); err != nil {
		return deleted, fmt.Errorf("%s: %w", operation, err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM consents WHERE user_ref = $1`, userRef)
	if err != nil {
		return deleted, fmt.Errorf("%s: failed to delete consents: %w", operation, err)
	}
	if deleted.Consents, err = res.RowsAffected(); err != nil {
		return deleted, fmt.Errorf("%s: %w", operation, err)
	}

	if err := tx.Commit(); err != nil {
		return deleted, fmt.Errorf("%s: commit: %w", operation, err)
	}

	// Drop cached statistics and any dialog state of the chat
	keys := []string{statsCacheKey}
	if chatID, ok := telegramChatID(userRef); ok {
		keys = append(keys, statestore.StateKey(chatID))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Failed to drop cached user data", zap.String("user_ref", userRef), zap.Error(err))
	}

	s.logger.Info("User data deleted",
		zap.String("user_ref", userRef),
		zap.Int64("calculations", deleted.Calculations),
		zap.Int64("consents", deleted.Consents),
	)

	return deleted, nil
}

// CheckRateLimit counts an action for subject in a fixed window and reports
// whether the limit has been exceeded.
func (s *PostgresStorage) CheckRateLimit(ctx context.Context, subject, action string, limit int64, window time.Duration) (bool, error) {
	return CheckRateLimit(ctx, s.cache, subject, action, limit, window)
}

func CheckRateLimit(ctx context.Context, cache Cache, subject, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", subject, action)

	count, err := cache.IncrWindow(ctx, key, window)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	return count > limit, nil
}
