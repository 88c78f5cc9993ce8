package models

import (
	"time"

	"github.com/moznion/go-optional"
)

// Valores por defecto de la configuración de una sección
const (
	DefaultCurrency        = "usd"
	DefaultIntervalSeconds = 30
	MinIntervalSeconds     = 10
	MaxIntervalSeconds     = 24 * 60 * 60
	DefaultProvider        = "coingecko"
)

// Estados visibles del indicador de estado
const (
	StateOK    = "ok"
	StateError = "error"
)

// Dirección del cambio porcentual
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// SectionConfig es la configuración de una sección, leída una sola vez de sus atributos
type SectionConfig struct {
	Currency        string `json:"currency" validate:"required"`
	IntervalSeconds int    `json:"interval_seconds"`
	Provider        string `json:"provider" validate:"required,provider"`
}

// EffectiveInterval devuelve el período real de refresco: entre 10 segundos y 24 horas.
// El tope evita que la conversión a time.Duration desborde.
func (c SectionConfig) EffectiveInterval() time.Duration {
	seconds := c.IntervalSeconds
	if seconds > MaxIntervalSeconds {
		seconds = MaxIntervalSeconds
	}
	if seconds < MinIntervalSeconds {
		seconds = MinIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// PricePayload es el resultado normalizado de una consulta al proveedor.
// Cualquier campo puede faltar en la respuesta.
type PricePayload struct {
	Price   optional.Option[float64]
	Change  optional.Option[float64]
	High    optional.Option[float64]
	Low     optional.Option[float64]
	Updated optional.Option[int64]
}

// PayloadView es la representación JSON de un PricePayload
type PayloadView struct {
	Price   *float64 `json:"price"`
	Change  *float64 `json:"change_24h"`
	High    *float64 `json:"high,omitempty"`
	Low     *float64 `json:"low,omitempty"`
	Updated *int64   `json:"last_updated_at"`
}

// View convierte el payload a su forma serializable
func (p PricePayload) View() PayloadView {
	return PayloadView{
		Price:   optionPtr(p.Price),
		Change:  optionPtr(p.Change),
		High:    optionPtr(p.High),
		Low:     optionPtr(p.Low),
		Updated: optionPtr(p.Updated),
	}
}

func optionPtr[T any](o optional.Option[T]) *T {
	if o.IsNone() {
		return nil
	}
	v := o.Unwrap()
	return &v
}

// StatusView es el texto y estado del indicador de una sección
type StatusView struct {
	Text  string `json:"text"`
	State string `json:"state"`
}

// FieldsView contiene el texto actualmente mostrado en cada campo
type FieldsView struct {
	Price     string `json:"price"`
	Change    string `json:"change,omitempty"`
	Direction string `json:"direction,omitempty"`
	High      string `json:"high,omitempty"`
	Low       string `json:"low,omitempty"`
	Updated   string `json:"updated,omitempty"`
}

// SectionView es el estado público de una sección (API y websocket)
type SectionView struct {
	ID            string        `json:"id"`
	Config        SectionConfig `json:"config"`
	Status        StatusView    `json:"status"`
	Fields        FieldsView    `json:"fields"`
	LastPayload   *PayloadView  `json:"last_payload,omitempty"`
	LastSuccessAt *time.Time    `json:"last_success_at,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
}
