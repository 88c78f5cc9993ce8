package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/providers"
)

const userAgent = "zec-tracker/1.0"

// PriceClient hace la consulta HTTP de un ciclo de refresco
type PriceClient struct {
	http    *http.Client
	options providers.Options
}

// NewPriceClient crea un cliente con el timeout indicado por petición
func NewPriceClient(timeout time.Duration, options providers.Options) *PriceClient {
	return &PriceClient{
		http:    &http.Client{Timeout: timeout},
		options: options,
	}
}

// Fetch obtiene el payload de la moneda configurada en la sección.
// Error de red, status distinto de 2xx y JSON inválido terminan todos en error.
func (c *PriceClient) Fetch(ctx context.Context, cfg models.SectionConfig) (models.PricePayload, error) {
	provider, err := providers.Lookup(cfg.Provider)
	if err != nil {
		return models.PricePayload{}, err
	}

	params := provider.BuildRequest(cfg.Currency, c.options)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, params.URL, nil)
	if err != nil {
		return models.PricePayload{}, fmt.Errorf("error al crear la petición: %w", err)
	}
	for key, values := range params.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.PricePayload{}, fmt.Errorf("error de red al consultar %s: %w", provider.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PricePayload{}, fmt.Errorf("error al leer la respuesta de %s: %w", provider.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.PricePayload{}, fmt.Errorf("%s respondió con status %s", provider.Name, resp.Status)
	}

	return provider.Decode(body, cfg.Currency)
}
