package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang-stock-scanner/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSnapshotNotFound is returned when no snapshot matches the ticker.
var ErrSnapshotNotFound = errors.New("stock snapshot not found")

// StockSnapshotRepository persists the latest scan per ticker.
type StockSnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *entity.StockSnapshot) error
	FindByTicker(ctx context.Context, ticker string) (*entity.StockSnapshot, error)
	Search(ctx context.Context, term string, limit int) ([]entity.StockSnapshot, error)
	SeedTickers(ctx context.Context, snapshots []entity.StockSnapshot) (int64, error)
	FindStale(ctx context.Context, olderThan time.Time, limit int) ([]entity.StockSnapshot, error)
}

type stockSnapshotRepository struct {
	db *gorm.DB
}

// NewStockSnapshotRepository creates a StockSnapshotRepository.
func NewStockSnapshotRepository(db *gorm.DB) StockSnapshotRepository {
	return &stockSnapshotRepository{db: db}
}

// Upsert matches the ticker case-insensitively, overwrites every mutable column
// and stamps UpdatedAt.
func (r *stockSnapshotRepository) Upsert(ctx context.Context, snapshot *entity.StockSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.StockSnapshot
		err := tx.Scopes(lockTicker(snapshot.Ticker)).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			snapshot.ID = 0
		case err != nil:
			return err
		default:
			snapshot.ID = existing.ID
		}

		snapshot.UpdatedAt = time.Now()
		return tx.Save(snapshot).Error
	})
}

func (r *stockSnapshotRepository) FindByTicker(ctx context.Context, ticker string) (*entity.StockSnapshot, error) {
	var snapshot entity.StockSnapshot
	err := r.db.WithContext(ctx).Scopes(tickerEquals(ticker)).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Search is a case-insensitive substring match over ticker and company name.
func (r *stockSnapshotRepository) Search(ctx context.Context, term string, limit int) ([]entity.StockSnapshot, error) {
	var snapshots []entity.StockSnapshot
	err := r.db.WithContext(ctx).Scopes(matchTerm(term, limit)).Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// SeedTickers inserts placeholders, skipping tickers that already exist.
func (r *stockSnapshotRepository) SeedTickers(ctx context.Context, snapshots []entity.StockSnapshot) (int64, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Scopes(skipExisting).CreateInBatches(&snapshots, 500)
	return result.RowsAffected, result.Error
}

// FindStale returns snapshots not refreshed since olderThan, oldest first.
func (r *stockSnapshotRepository) FindStale(ctx context.Context, olderThan time.Time, limit int) ([]entity.StockSnapshot, error) {
	var snapshots []entity.StockSnapshot
	err := r.db.WithContext(ctx).
		Where("updated_at < ?", olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// tickerEquals matches the ticker ignoring case, like the unique UPPER(ticker) index.
func tickerEquals(ticker string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("UPPER(ticker) = UPPER(?)", ticker)
	}
}

func lockTicker(ticker string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(tickerEquals(ticker)).Clauses(clause.Locking{Strength: "UPDATE"})
	}
}

func matchTerm(term string, limit int) func(*gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(term) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("ticker ILIKE ? OR company_name ILIKE ?", pattern, pattern).
			Order("ticker ASC").
			Limit(limit)
	}
}

func skipExisting(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.OnConflict{DoNothing: true})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
