package providers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
)

// https://docs.coingecko.com/reference/simple-price
func coinGeckoSimplePriceRequest(currency string, opts Options) RequestParams {
	query := url.Values{}
	query.Set("ids", Asset)
	query.Set("vs_currencies", currency)
	query.Set("include_24hr_change", "true")
	query.Set("include_last_updated_at", "true")

	return RequestParams{
		URL:    buildURL(baseURL(opts), "/simple/price", query),
		Header: authHeader(opts),
	}
}

// decodeSimplePrice lee {zcash: {<cur>: n, <cur>_24h_change: n, last_updated_at: n}}.
// Si falta la moneda o algún campo, el valor queda vacío; un JSON inválido o null es error.
func decodeSimplePrice(body []byte, currency string) (models.PricePayload, error) {
	var result map[string]map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return models.PricePayload{}, fmt.Errorf("respuesta inválida de coingecko: %w", err)
	}
	if result == nil {
		return models.PricePayload{}, fmt.Errorf("respuesta vacía de coingecko")
	}

	tokenData := result[Asset]
	payload := models.PricePayload{
		Price:   getFloat(tokenData, currency),
		Change:  getFloat(tokenData, currency+"_24h_change"),
		Updated: getInt(tokenData, "last_updated_at"),
	}
	return payload, nil
}

// https://docs.coingecko.com/reference/coins-markets
func coinGeckoMarketsRequest(currency string, opts Options) RequestParams {
	query := url.Values{}
	query.Set("ids", Asset)
	query.Set("vs_currency", currency)

	return RequestParams{
		URL:    buildURL(baseURL(opts), "/coins/markets", query),
		Header: authHeader(opts),
	}
}

type coinGeckoMarket struct {
	ID                       string   `json:"id"`
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	High24h                  *float64 `json:"high_24h"`
	Low24h                   *float64 `json:"low_24h"`
	LastUpdated              string   `json:"last_updated"`
}

func decodeMarkets(body []byte, _ string) (models.PricePayload, error) {
	var markets []coinGeckoMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return models.PricePayload{}, fmt.Errorf("respuesta inválida de coingecko markets: %w", err)
	}
	if markets == nil {
		return models.PricePayload{}, fmt.Errorf("respuesta vacía de coingecko markets")
	}

	for _, m := range markets {
		if m.ID != Asset {
			continue
		}
		payload := models.PricePayload{
			Price:  fromPtr(m.CurrentPrice),
			Change: fromPtr(m.PriceChangePercentage24h),
			High:   fromPtr(m.High24h),
			Low:    fromPtr(m.Low24h),
		}
		if ts, err := time.Parse(time.RFC3339, m.LastUpdated); err == nil {
			payload.Updated = optional.Some(ts.Unix())
		}
		return payload, nil
	}

	return models.PricePayload{}, nil
}

func fromPtr(v *float64) optional.Option[float64] {
	if v == nil {
		return optional.None[float64]()
	}
	return optional.Some(*v)
}

// getFloat extrae un valor numérico de un mapa; cualquier otra cosa queda vacía
func getFloat(data map[string]interface{}, key string) optional.Option[float64] {
	val, exists := data[key]
	if !exists {
		return optional.None[float64]()
	}
	switch v := val.(type) {
	case float64:
		return optional.Some(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return optional.None[float64]()
		}
		return optional.Some(f)
	}
	return optional.None[float64]()
}

func getInt(data map[string]interface{}, key string) optional.Option[int64] {
	f := getFloat(data, key)
	if f.IsNone() || math.IsNaN(f.Unwrap()) || math.IsInf(f.Unwrap(), 0) {
		return optional.None[int64]()
	}
	return optional.Some(int64(f.Unwrap()))
}
