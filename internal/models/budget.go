package models

// Budget is a monthly spending cap for one category. One row per
// (user, category, month); writes are upserts.
type Budget struct {
	Base
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_category_month" json:"user_id"`
	Category string `gorm:"not null;uniqueIndex:uq_budgets_user_category_month" json:"category"`
	Amount   int64  `gorm:"type:bigint;not null" json:"amount"`
	Month    string `gorm:"size:7;not null;uniqueIndex:uq_budgets_user_category_month" json:"month"`

	Spent      int64   `gorm:"-" json:"spent"`
	Remaining  int64   `gorm:"-" json:"remaining"`
	Percentage float64 `gorm:"-" json:"percentage"`
}
