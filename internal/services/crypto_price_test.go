package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/providers"
)

func newTestClient(serverURL string) *PriceClient {
	return NewPriceClient(5*time.Second, providers.Options{BaseURL: serverURL, APIKey: "demo"})
}

func TestPriceClient_Fetch(t *testing.T) {
	cfg := models.SectionConfig{Currency: "usd", IntervalSeconds: 30, Provider: "coingecko"}

	t.Run("successful request", func(t *testing.T) {
		var gotPath, gotCurrency, gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotCurrency = r.URL.Query().Get("vs_currencies")
			gotKey = r.Header.Get("x-cg-demo-api-key")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"zcash":{"usd":45.12,"usd_24h_change":3.4,"last_updated_at":1700000000}}`))
		}))
		defer server.Close()

		payload, err := newTestClient(server.URL).Fetch(context.Background(), cfg)
		require.NoError(t, err)
		require.Equal(t, "/simple/price", gotPath)
		require.Equal(t, "usd", gotCurrency)
		require.Equal(t, "demo", gotKey)
		require.Equal(t, 45.12, payload.Price.Unwrap())
	})

	t.Run("non 2xx status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"zcash":{"usd":1}}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Fetch(context.Background(), cfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "500")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Fetch(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(url).Fetch(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("unknown provider never sends a request", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		bad := cfg
		bad.Provider = "kraken"
		_, err := newTestClient(server.URL).Fetch(context.Background(), bad)
		require.True(t, errors.Is(err, providers.ErrUnknownProvider))
		require.False(t, called)
	})
}
