// Package widget mantiene el DOM de la página del tracker: descubre las secciones
// marcadas, resuelve sus nodos destino y aplica los cambios de cada ciclo.
package widget

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/net/html"
)

// Atributos del contrato HTML
const (
	TrackerAttr   = "data-zcash-tracker"
	CurrencyAttr  = "data-currency"
	IntervalAttr  = "data-interval"
	ProviderAttr  = "data-provider"
	StatusAttr    = "data-tracker-status"
	FieldAttr     = "data-tracker-field"
	DotAttr       = "data-tracker-dot"
	StateAttr     = "data-state"
	DirectionAttr = "data-direction"
)

//go:embed assets/index.html
var defaultPage []byte

// Page es el árbol DOM compartido por todas las secciones.
// Cada sección solo modifica sus propios nodos, pero el árbol se protege con un único lock
// para que el render nunca vea una escritura a medias.
type Page struct {
	mu   sync.RWMutex
	root *html.Node
}

// ParsePage parsea un documento HTML completo
func ParsePage(r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error al parsear la página: %w", err)
	}
	return &Page{root: root}, nil
}

// LoadPage lee la página desde un archivo; con path vacío usa la página incluida en el binario
func LoadPage(path string) (*Page, error) {
	if path == "" {
		return ParsePage(bytes.NewReader(defaultPage))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error al abrir la página %s: %w", path, err)
	}
	defer f.Close()

	return ParsePage(f)
}

// Render escribe el estado actual del DOM
func (p *Page) Render(w io.Writer) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return html.Render(w, p.root)
}

// Discover busca todas las secciones marcadas. Las secciones sin campo de precio
// no se inicializan y solo se devuelve su id en skipped.
func (p *Page) Discover() (sections []*Section, skipped []string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i, node := range querySelectorAll(p.root, hasAttr(TrackerAttr)) {
		id, ok := getAttr(node, "id")
		if !ok || id == "" {
			id = fmt.Sprintf("tracker-%d", i+1)
		}

		section, err := newSection(p, id, node)
		if err != nil {
			skipped = append(skipped, id)
			continue
		}
		sections = append(sections, section)
	}

	return sections, skipped
}
