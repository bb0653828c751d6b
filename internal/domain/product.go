package domain

import "time"

// Product is an item of the public catalogue.
type Product struct {
	ID          string
	Name        string
	Price       float64
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
