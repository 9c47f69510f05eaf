package repository

import (
	"testing"

	"golang-stock-scanner/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB builds statements against the postgres dialect without connecting.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost port=5432 user=scanner dbname=scanner sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestSnapshotQueries(t *testing.T) {
	db := newDryRunDB(t)

	t.Run("find by ticker ignores case", func(t *testing.T) {
		sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(tickerEquals("petr4")).First(&entity.StockSnapshot{})
		})
		assert.Contains(t, sql, `FROM "stock_snapshots"`)
		assert.Contains(t, sql, `UPPER(ticker) = UPPER('petr4')`)
	})

	t.Run("upsert lookup locks the row", func(t *testing.T) {
		sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(lockTicker("Vale3")).First(&entity.StockSnapshot{})
		})
		assert.Contains(t, sql, `UPPER(ticker) = UPPER('Vale3')`)
		assert.Contains(t, sql, "FOR UPDATE")
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(matchTerm("50%_off", 20)).Find(&[]entity.StockSnapshot{})
		})
		assert.Contains(t, sql, `ticker ILIKE '%50\%\_off%' OR company_name ILIKE '%50\%\_off%'`)
		assert.Contains(t, sql, "ORDER BY ticker ASC")
		assert.Contains(t, sql, "LIMIT 20")
	})

	t.Run("seeding skips existing tickers", func(t *testing.T) {
		snapshots := []entity.StockSnapshot{
			{Ticker: "PETR4", CompanyName: "PETR4", Exchange: "BVMF"},
			{Ticker: "VALE3", CompanyName: "VALE3", Exchange: "BVMF"},
		}
		sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(skipExisting).Create(&snapshots)
		})
		assert.Contains(t, sql, `INSERT INTO "stock_snapshots"`)
		assert.Contains(t, sql, "'PETR4'")
		assert.Contains(t, sql, "'VALE3'")
		assert.Contains(t, sql, "ON CONFLICT DO NOTHING")
	})
}
