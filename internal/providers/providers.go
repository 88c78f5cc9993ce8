// Package providers mantiene la tabla de proveedores de precios conocidos.
// Cada proveedor sabe construir su petición y decodificar su respuesta.
package providers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
)

// Asset es el id de CoinGecko de la moneda seguida
const Asset = "zcash"

const (
	publicBaseURL = "https://api.coingecko.com/api/v3"
	proBaseURL    = "https://pro-api.coingecko.com/api/v3"
)

// ErrUnknownProvider se devuelve cuando una sección nombra un proveedor sin endpoint
var ErrUnknownProvider = errors.New("proveedor desconocido")

// Options son los ajustes comunes a todos los proveedores
type Options struct {
	BaseURL string
	APIKey  string
	Pro     bool
}

// RequestParams describe la petición GET de un ciclo
type RequestParams struct {
	URL    string
	Header http.Header
}

// Provider agrupa las dos funciones puras de un proveedor
type Provider struct {
	Name         string
	BuildRequest func(currency string, opts Options) RequestParams
	Decode       func(body []byte, currency string) (models.PricePayload, error)
}

var registry = map[string]Provider{
	"coingecko": {
		Name:         "coingecko",
		BuildRequest: coinGeckoSimplePriceRequest,
		Decode:       decodeSimplePrice,
	},
	"coingecko-markets": {
		Name:         "coingecko-markets",
		BuildRequest: coinGeckoMarketsRequest,
		Decode:       decodeMarkets,
	},
}

// Lookup devuelve el proveedor registrado con ese nombre
func Lookup(name string) (Provider, error) {
	p, ok := registry[name]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names devuelve los nombres de todos los proveedores, ordenados
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func baseURL(opts Options) string {
	if opts.BaseURL != "" {
		return strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Pro {
		return proBaseURL
	}
	return publicBaseURL
}

// CoinGecko tiene dos tipos de API key (demo y pro) con distinto header
func authHeader(opts Options) http.Header {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if opts.APIKey == "" {
		return header
	}
	if opts.Pro {
		header.Set("x-cg-pro-api-key", opts.APIKey)
	} else {
		header.Set("x-cg-demo-api-key", opts.APIKey)
	}
	return header
}

func buildURL(base, path string, query url.Values) string {
	return base + path + "?" + query.Encode()
}
