package widget

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
)

// Placeholder se muestra cuando un valor no es numérico
const Placeholder = "--"

// Formatter convierte valores numéricos en texto según el locale y la zona horaria configurados
type Formatter struct {
	printer    *message.Printer
	location   *time.Location
	timeLayout string
}

// NewFormatter crea un formatter; una location nil equivale a time.Local
func NewFormatter(tag language.Tag, location *time.Location) *Formatter {
	if location == nil {
		location = time.Local
	}

	// Los locales en inglés muestran la hora en formato de 12 horas
	layout := "15:04"
	if base, _ := tag.Base(); base.String() == "en" {
		layout = "03:04 PM"
	}

	return &Formatter{
		printer:    message.NewPrinter(tag),
		location:   location,
		timeLayout: layout,
	}
}

// Currency formatea un precio como moneda.
// Un código de tres letras que no es ISO (btc, eth) se muestra en mayúsculas con dos decimales;
// cualquier otro código inválido devuelve el número sin formato.
func (f *Formatter) Currency(value optional.Option[float64], code string) string {
	if value.IsNone() || math.IsNaN(value.Unwrap()) {
		return Placeholder
	}
	v := value.Unwrap()

	var symbol string
	scale := 2
	upper := strings.ToUpper(code)
	if unit, err := currency.ParseISO(upper); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
		symbol = f.printer.Sprint(currency.Symbol(unit))
	} else if isCurrencyCode(upper) {
		symbol = upper + "\u00a0"
	} else {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + symbol + f.printer.Sprint(number.Decimal(v, number.Scale(scale)))
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Change formatea el cambio porcentual de 24h (máximo dos decimales) y su dirección
func (f *Formatter) Change(value optional.Option[float64]) (string, string) {
	if value.IsNone() || math.IsNaN(value.Unwrap()) || math.IsInf(value.Unwrap(), 0) {
		return Placeholder + "%", models.DirectionFlat
	}
	v := value.Unwrap()

	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	text := f.printer.Sprint(number.Decimal(rounded, number.MaxFractionDigits(2))) + "%"

	switch {
	case v > 0:
		return "+" + text, models.DirectionUp
	case v < 0:
		return text, models.DirectionDown
	default:
		return text, models.DirectionFlat
	}
}

// Updated convierte un timestamp en segundos a hora:minuto local
func (f *Formatter) Updated(seconds int64) string {
	return time.Unix(seconds, 0).In(f.location).Format(f.timeLayout)
}
