package catalog

import "time"

const (
	DefaultCurrency = "RON"
	DefaultDuration = 60
	DefaultIcon     = "consultation"

	// MaxPrice is the largest value the NUMERIC(10,2) price column holds.
	MaxPrice = 99999999.99

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Package is one consulting offer shown on the packages page.
type Package struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Duration    int       `json:"duration"`
	Features    []string  `json:"features"`
	Icon        string    `json:"icon"`
	Popular     bool      `json:"popular"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput carries a new package. Nil optional fields take defaults.
type CreateInput struct {
	Name        string
	Description string
	Price       float64
	Currency    *string
	Duration    *int
	Features    []string
	Icon        *string
	Popular     *bool
}
