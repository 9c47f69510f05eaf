package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// StockSnapshot is the latest scan of one ticker.
type StockSnapshot struct {
	ID             uint           `gorm:"primaryKey"`
	Ticker         string         `gorm:"not null;uniqueIndex:idx_stock_snapshots_ticker"`
	CompanyName    string         `gorm:"not null"`
	Exchange       string         `gorm:"not null;default:BVMF"`
	Sector         string         `gorm:"type:text"`
	Currency       string         `gorm:"type:varchar(8)"`
	Price          *float64       `gorm:"type:double precision"`
	ChangePercent  *float64       `gorm:"type:double precision"`
	MetricSet      string         `gorm:"type:varchar(64)"`
	Metrics        datatypes.JSON `gorm:"type:jsonb"`
	MissingMetrics pq.StringArray `gorm:"type:text[]"`
	Score          *float64       `gorm:"type:double precision"`
	Verdict        string         `gorm:"type:varchar(32)"`
	Breakdown      datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt      time.Time      `gorm:"not null"`
}

func (StockSnapshot) TableName() string {
	return "stock_snapshots"
}

// Scanned reports whether the snapshot holds a real scan rather than a seeded placeholder.
func (s StockSnapshot) Scanned() bool {
	return s.Score != nil
}
