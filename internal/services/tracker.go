package services

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/widget"
)

// PayloadFetcher obtiene el payload de un ciclo; PriceClient es la implementación real
type PayloadFetcher interface {
	Fetch(ctx context.Context, cfg models.SectionConfig) (models.PricePayload, error)
}

// SnapshotRecorder guarda los payloads exitosos
type SnapshotRecorder interface {
	SaveSnapshot(ctx context.Context, snapshot models.PriceSnapshot) error
}

// Tracker ejecuta el ciclo de refresco de una sola sección
type Tracker struct {
	section   *widget.Section
	fetcher   PayloadFetcher
	formatter *widget.Formatter
	recorder  SnapshotRecorder
	onChange  func(*Tracker)
	logger    *log.Entry

	// disabled es true cuando la configuración es inválida; nunca se programa
	disabled bool

	mutex       sync.Mutex
	lastPayload *models.PricePayload
	lastSuccess time.Time
	lastError   string
}

// ID devuelve el id de la sección
func (t *Tracker) ID() string {
	return t.section.ID
}

// Config devuelve la configuración de la sección
func (t *Tracker) Config() models.SectionConfig {
	return t.section.Config
}

// Refresh ejecuta un ciclo completo: estado "refrescando", consulta, render y estado final.
// Ciclos de la misma sección pueden solaparse; se aplica el que termina último.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.section.SetStatus(widget.StatusRefreshing, false)
	t.changed()

	payload, err := t.fetcher.Fetch(ctx, t.section.Config)
	if err != nil {
		t.logger.WithError(err).Warn("Error al refrescar el precio")

		t.section.SetStatus(widget.StatusFailed, true)
		t.mutex.Lock()
		t.lastError = err.Error()
		t.mutex.Unlock()
		t.changed()
		return err
	}

	t.section.Commit(payload, t.formatter)

	observedAt := time.Now()
	t.mutex.Lock()
	t.lastPayload = &payload
	t.lastSuccess = observedAt
	t.lastError = ""
	t.mutex.Unlock()
	t.changed()

	t.logger.WithField("price", t.section.Fields().Price).Debug("Precio actualizado")

	if t.recorder != nil {
		t.record(ctx, payload, observedAt)
	}
	return nil
}

// El guardado es opcional; un fallo solo se registra en el log
func (t *Tracker) record(ctx context.Context, payload models.PricePayload, observedAt time.Time) {
	view := payload.View()
	snapshot := models.PriceSnapshot{
		SectionID:  t.section.ID,
		Provider:   t.section.Config.Provider,
		Currency:   t.section.Config.Currency,
		Price:      view.Price,
		Change:     view.Change,
		High:       view.High,
		Low:        view.Low,
		UpdatedAt:  view.Updated,
		ObservedAt: observedAt,
	}
	if err := t.recorder.SaveSnapshot(ctx, snapshot); err != nil {
		t.logger.WithError(err).Error("Error al guardar el snapshot")
	}
}

func (t *Tracker) changed() {
	if t.onChange != nil {
		t.onChange(t)
	}
}

// View devuelve el estado público de la sección
func (t *Tracker) View() models.SectionView {
	view := models.SectionView{
		ID:     t.section.ID,
		Config: t.section.Config,
		Status: t.section.Status(),
		Fields: t.section.Fields(),
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.lastPayload != nil {
		payload := t.lastPayload.View()
		view.LastPayload = &payload
	}
	if !t.lastSuccess.IsZero() {
		success := t.lastSuccess
		view.LastSuccessAt = &success
	}
	view.LastError = t.lastError
	return view
}
