package models

import "time"

// PriceSnapshot es un payload exitoso guardado en la base de datos
type PriceSnapshot struct {
	ID         int64     `json:"id"`
	SectionID  string    `json:"section_id"`
	Provider   string    `json:"provider"`
	Currency   string    `json:"currency"`
	Price      *float64  `json:"price"`
	Change     *float64  `json:"change_24h"`
	High       *float64  `json:"high,omitempty"`
	Low        *float64  `json:"low,omitempty"`
	UpdatedAt  *int64    `json:"last_updated_at"`
	ObservedAt time.Time `json:"observed_at"`
}
