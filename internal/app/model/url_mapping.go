package model

import "time"

// URLMapping describes the durable short-URL record stored in Postgres.
// ShortCode stays nil between the first persist (which assigns the id)
// and the second persist that attaches the derived code.
type URLMapping struct {
	ID         int64      `db:"id" gorm:"primaryKey;autoIncrement"`
	ShortCode  *string    `db:"short_code" gorm:"size:10;uniqueIndex"`
	LongURL    string     `db:"long_url" gorm:"type:text;not null;uniqueIndex"`
	ExpiryAt   *time.Time `db:"expiry_at"`
	CreatedAt  time.Time  `db:"created_at" gorm:"autoCreateTime"`
	ClickCount int64      `db:"click_count" gorm:"not null;default:0"`
	Active     bool       `db:"active" gorm:"not null;default:true"`
}

// TableName keeps the table name stable regardless of GORM pluralisation.
func (URLMapping) TableName() string {
	return "url_mappings"
}

// Expired reports whether the record's expiry has passed at the given time.
// Records without an expiry never expire.
func (m *URLMapping) Expired(now time.Time) bool {
	return m.ExpiryAt != nil && m.ExpiryAt.Before(now)
}
