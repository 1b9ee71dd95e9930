package model

import "time"

// Customer owns plants. Its UpdatedAt is touched whenever one of its plant revisions changes.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"column:name;type:varchar(255);not null;index:idx_customer_name" json:"name"`
	Town      string    `gorm:"column:town;type:varchar(255)" json:"town,omitempty"`
	Country   string    `gorm:"column:country;type:varchar(255)" json:"country,omitempty"`
}

// TableName overrides gorm to use customer table.
func (Customer) TableName() string {
	return "customer"
}
