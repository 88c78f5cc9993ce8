package providers

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("known provider", func(t *testing.T) {
		p, err := Lookup("coingecko")
		require.NoError(t, err)
		require.Equal(t, "coingecko", p.Name)
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		_, err := Lookup("binance")
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUnknownProvider))
	})

	t.Run("names are sorted", func(t *testing.T) {
		require.Equal(t, []string{"coingecko", "coingecko-markets"}, Names())
	})
}

func TestCoinGeckoSimplePriceRequest(t *testing.T) {
	t.Run("public endpoint without key", func(t *testing.T) {
		params := coinGeckoSimplePriceRequest("eur", Options{})

		u, err := url.Parse(params.URL)
		require.NoError(t, err)
		require.Equal(t, "api.coingecko.com", u.Host)
		require.Equal(t, "/api/v3/simple/price", u.Path)
		require.Equal(t, "zcash", u.Query().Get("ids"))
		require.Equal(t, "eur", u.Query().Get("vs_currencies"))
		require.Equal(t, "true", u.Query().Get("include_24hr_change"))
		require.Equal(t, "true", u.Query().Get("include_last_updated_at"))
		require.Empty(t, params.Header.Get("x-cg-demo-api-key"))
	})

	t.Run("demo key header", func(t *testing.T) {
		params := coinGeckoSimplePriceRequest("usd", Options{APIKey: "k"})
		require.Equal(t, "k", params.Header.Get("x-cg-demo-api-key"))
	})

	t.Run("pro key switches host and header", func(t *testing.T) {
		params := coinGeckoSimplePriceRequest("usd", Options{APIKey: "k", Pro: true})

		u, err := url.Parse(params.URL)
		require.NoError(t, err)
		require.Equal(t, "pro-api.coingecko.com", u.Host)
		require.Equal(t, "k", params.Header.Get("x-cg-pro-api-key"))
	})

	t.Run("base url override", func(t *testing.T) {
		params := coinGeckoSimplePriceRequest("usd", Options{BaseURL: "http://127.0.0.1:9999/v3/"})

		u, err := url.Parse(params.URL)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:9999", u.Host)
		require.Equal(t, "/v3/simple/price", u.Path)
	})
}

func TestDecodeSimplePrice(t *testing.T) {
	t.Run("null body is an error", func(t *testing.T) {
		_, err := decodeSimplePrice([]byte(`null`), "usd")
		require.Error(t, err)
	})

	t.Run("full payload", func(t *testing.T) {
		body := []byte(`{"zcash":{"usd":45.12,"usd_24h_change":3.4,"last_updated_at":1700000000}}`)

		payload, err := decodeSimplePrice(body, "usd")
		require.NoError(t, err)
		require.Equal(t, 45.12, payload.Price.Unwrap())
		require.Equal(t, 3.4, payload.Change.Unwrap())
		require.Equal(t, int64(1700000000), payload.Updated.Unwrap())
		require.True(t, payload.High.IsNone())
		require.True(t, payload.Low.IsNone())
	})

	t.Run("fields keyed by another currency are absent", func(t *testing.T) {
		body := []byte(`{"zcash":{"usd":45.12,"usd_24h_change":3.4,"last_updated_at":1700000000}}`)

		payload, err := decodeSimplePrice(body, "eur")
		require.NoError(t, err)
		require.True(t, payload.Price.IsNone())
		require.True(t, payload.Change.IsNone())
		require.Equal(t, int64(1700000000), payload.Updated.Unwrap())
	})

	t.Run("missing asset yields empty payload", func(t *testing.T) {
		payload, err := decodeSimplePrice([]byte(`{}`), "usd")
		require.NoError(t, err)
		require.True(t, payload.Price.IsNone())
		require.True(t, payload.Updated.IsNone())
	})

	t.Run("numeric strings are accepted", func(t *testing.T) {
		payload, err := decodeSimplePrice([]byte(`{"zcash":{"usd":"41.5","usd_24h_change":"oops"}}`), "usd")
		require.NoError(t, err)
		require.Equal(t, 41.5, payload.Price.Unwrap())
		require.True(t, payload.Change.IsNone())
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		_, err := decodeSimplePrice([]byte(`<html>`), "usd")
		require.Error(t, err)
	})
}

func TestDecodeMarkets(t *testing.T) {
	t.Run("null body is an error", func(t *testing.T) {
		_, err := decodeMarkets([]byte(`null`), "usd")
		require.Error(t, err)
	})

	t.Run("reads high and low", func(t *testing.T) {
		body := []byte(`[{"id":"zcash","current_price":40,"price_change_percentage_24h":-1.25,"high_24h":42,"low_24h":39.5,"last_updated":"2023-11-14T22:13:20.000Z"}]`)

		payload, err := decodeMarkets(body, "usd")
		require.NoError(t, err)
		require.Equal(t, 40.0, payload.Price.Unwrap())
		require.Equal(t, -1.25, payload.Change.Unwrap())
		require.Equal(t, 42.0, payload.High.Unwrap())
		require.Equal(t, 39.5, payload.Low.Unwrap())
		require.Equal(t, int64(1700000000), payload.Updated.Unwrap())
	})

	t.Run("empty list", func(t *testing.T) {
		payload, err := decodeMarkets([]byte(`[]`), "usd")
		require.NoError(t, err)
		require.True(t, payload.Price.IsNone())
	})

	t.Run("object instead of list", func(t *testing.T) {
		_, err := decodeMarkets([]byte(`{"error":"rate limited"}`), "usd")
		require.Error(t, err)
	})
}
