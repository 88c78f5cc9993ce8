package widget

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/providers"
)

// Textos del indicador de estado
const (
	StatusRefreshing = "Refreshing…"
	StatusFailed     = "Failed to refresh"
	statusLivePrefix = "Live · "
)

// ErrNoPriceTarget indica que la sección no tiene campo de precio y se omite
var ErrNoPriceTarget = errors.New("la sección no tiene campo de precio")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		_, err := providers.Lookup(fl.Field().String())
		return err == nil
	})
	return v
}

type targets struct {
	status  *html.Node
	price   *html.Node
	change  *html.Node
	high    *html.Node
	low     *html.Node
	updated *html.Node
	dot     *html.Node
}

// Section es una instancia del widget ligada a un subárbol del DOM
type Section struct {
	ID     string
	Config models.SectionConfig

	page    *Page
	targets targets
}

func newSection(page *Page, id string, node *html.Node) (*Section, error) {
	t := targets{
		status:  querySelector(node, hasAttr(StatusAttr)),
		price:   querySelector(node, attrEquals(FieldAttr, "price")),
		change:  querySelector(node, attrEquals(FieldAttr, "change")),
		high:    querySelector(node, attrEquals(FieldAttr, "high")),
		low:     querySelector(node, attrEquals(FieldAttr, "low")),
		updated: querySelector(node, attrEquals(FieldAttr, "updated")),
		dot:     querySelector(node, hasAttr(DotAttr)),
	}
	if t.price == nil {
		return nil, ErrNoPriceTarget
	}

	return &Section{
		ID:      id,
		Config:  readConfig(node),
		page:    page,
		targets: t,
	}, nil
}

// readConfig aplica los valores por defecto de cada atributo; un atributo vacío cuenta como ausente
func readConfig(node *html.Node) models.SectionConfig {
	cfg := models.SectionConfig{
		Currency:        models.DefaultCurrency,
		IntervalSeconds: models.DefaultIntervalSeconds,
		Provider:        models.DefaultProvider,
	}

	if v, _ := getAttr(node, CurrencyAttr); v != "" {
		cfg.Currency = strings.ToLower(v)
	}
	if v, _ := getAttr(node, IntervalAttr); v != "" {
		if seconds, ok := parseIntPrefix(v); ok {
			cfg.IntervalSeconds = seconds
		}
	}
	if v, _ := getAttr(node, ProviderAttr); v != "" {
		cfg.Provider = v
	}

	return cfg
}

// parseIntPrefix lee el entero al comienzo del texto ("45s" -> 45)
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Desbordamiento: el signo decide el extremo
		if s[0] == '-' {
			return models.MinIntervalSeconds, true
		}
		return models.MaxIntervalSeconds, true
	}
	return n, true
}

// Validate verifica la configuración; un proveedor desconocido es un error de configuración
func (s *Section) Validate() error {
	if err := validate.Struct(s.Config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "provider" {
					return fmt.Errorf("sección %s: %w: %q (disponibles: %s)", s.ID, providers.ErrUnknownProvider,
						s.Config.Provider, strings.Join(providers.Names(), ", "))
				}
			}
		}
		return fmt.Errorf("sección %s: configuración inválida: %w", s.ID, err)
	}
	return nil
}

// SetStatus actualiza el texto de estado y el data-state del indicador y del punto
func (s *Section) SetStatus(message string, isError bool) {
	s.page.mu.Lock()
	defer s.page.mu.Unlock()

	s.setStatusLocked(message, isError)
}

func (s *Section) setStatusLocked(message string, isError bool) {
	state := models.StateOK
	if isError {
		state = models.StateError
	}

	if s.targets.dot != nil {
		setAttr(s.targets.dot, StateAttr, state)
	}
	if s.targets.status == nil {
		return
	}
	setTextContent(s.targets.status, message)
	setAttr(s.targets.status, StateAttr, state)
}

// Commit aplica un payload exitoso y deja el estado en vivo, todo bajo el mismo lock.
// Con dos ciclos en vuelo gana el último que termina.
func (s *Section) Commit(payload models.PricePayload, f *Formatter) {
	price := f.Currency(payload.Price, s.Config.Currency)
	change, direction := f.Change(payload.Change)

	s.page.mu.Lock()
	defer s.page.mu.Unlock()

	s.applyLocked(payload, f, price, change, direction)
	s.setStatusLocked(LiveStatus(s.Config.Currency), false)
}

// LiveStatus es el texto de estado tras un ciclo exitoso
func LiveStatus(currency string) string {
	return statusLivePrefix + strings.ToUpper(currency)
}

// Máximo, mínimo y hora solo se tocan cuando el valor existe y no es cero
func (s *Section) applyLocked(payload models.PricePayload, f *Formatter, price, change, direction string) {
	setTextContent(s.targets.price, price)

	if s.targets.change != nil {
		setTextContent(s.targets.change, change)
		setAttr(s.targets.change, DirectionAttr, direction)
	}
	if s.targets.high != nil && payload.High.IsSome() && payload.High.Unwrap() != 0 {
		setTextContent(s.targets.high, f.Currency(payload.High, s.Config.Currency))
	}
	if s.targets.low != nil && payload.Low.IsSome() && payload.Low.Unwrap() != 0 {
		setTextContent(s.targets.low, f.Currency(payload.Low, s.Config.Currency))
	}
	if s.targets.updated != nil && payload.Updated.IsSome() && payload.Updated.Unwrap() != 0 {
		setTextContent(s.targets.updated, f.Updated(payload.Updated.Unwrap()))
	}
}

// Status devuelve el texto y estado mostrados actualmente
func (s *Section) Status() models.StatusView {
	s.page.mu.RLock()
	defer s.page.mu.RUnlock()

	if s.targets.status == nil {
		return models.StatusView{}
	}
	state, _ := getAttr(s.targets.status, StateAttr)
	return models.StatusView{Text: textContent(s.targets.status), State: state}
}

// Fields devuelve el texto actual de cada campo
func (s *Section) Fields() models.FieldsView {
	s.page.mu.RLock()
	defer s.page.mu.RUnlock()

	view := models.FieldsView{
		Price:   textContent(s.targets.price),
		Change:  textContent(s.targets.change),
		High:    textContent(s.targets.high),
		Low:     textContent(s.targets.low),
		Updated: textContent(s.targets.updated),
	}
	if s.targets.change != nil {
		view.Direction, _ = getAttr(s.targets.change, DirectionAttr)
	}
	return view
}
