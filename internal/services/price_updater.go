package services

import (
	"context"
	"errors"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/widget"
)

// ErrTrackerNotFound se devuelve cuando no existe una sección con ese id
var ErrTrackerNotFound = errors.New("tracker no encontrado")

// ErrTrackerDisabled se devuelve al refrescar una sección con configuración inválida
var ErrTrackerDisabled = errors.New("tracker deshabilitado por configuración inválida")

// Broadcaster recibe cada cambio de estado de una sección
type Broadcaster interface {
	Broadcast(view models.SectionView)
}

// ManagerOptions agrupa las dependencias del TrackerManager
type ManagerOptions struct {
	Fetcher     PayloadFetcher
	Formatter   *widget.Formatter
	Recorder    SnapshotRecorder
	Broadcaster Broadcaster
}

// TrackerManager descubre las secciones de la página y programa el refresco de cada una
type TrackerManager struct {
	trackers []*Tracker
	byID     map[string]*Tracker
	skipped  []string

	cron      *cron.Cron
	isRunning bool
	mutex     sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewTrackerManager inicializa una sección por cada elemento marcado de la página.
// Las secciones sin campo de precio se omiten; las de configuración inválida quedan
// deshabilitadas con el estado de error.
func NewTrackerManager(page *widget.Page, opts ManagerOptions) *TrackerManager {
	sections, skipped := page.Discover()

	m := &TrackerManager{
		byID:    make(map[string]*Tracker),
		skipped: skipped,
		cron:    cron.New(),
	}

	for _, id := range skipped {
		log.WithField("section", id).Debug("Sección sin campo de precio, se omite")
	}

	for _, section := range sections {
		t := &Tracker{
			section:   section,
			fetcher:   opts.Fetcher,
			formatter: opts.Formatter,
			recorder:  opts.Recorder,
			logger:    log.WithField("section", section.ID),
		}
		if opts.Broadcaster != nil {
			broadcaster := opts.Broadcaster
			t.onChange = func(t *Tracker) {
				broadcaster.Broadcast(t.View())
			}
		}

		if err := section.Validate(); err != nil {
			t.disabled = true
			t.lastError = err.Error()
			t.logger.WithError(err).Warn("Configuración de sección inválida, no se programa")
			section.SetStatus(widget.StatusFailed, true)
		}

		m.trackers = append(m.trackers, t)
		m.byID[section.ID] = t
	}

	return m
}

// Start hace la primera consulta de cada sección y programa las siguientes
func (m *TrackerManager) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.isRunning {
		return
	}

	m.isRunning = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
	ctx := m.ctx

	for _, t := range m.trackers {
		if t.disabled {
			continue
		}
		t := t

		// Actualizar inmediatamente al iniciar
		go t.Refresh(ctx)

		// cron ejecuta cada disparo en su propia goroutine, así que un ciclo lento no frena al siguiente
		interval := t.Config().EffectiveInterval()
		m.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
			_ = t.Refresh(ctx)
		}))

		t.logger.WithField("interval", interval).Info("Tracker iniciado")
	}

	m.cron.Start()
	log.Infof("Servicio de trackers iniciado con %d secciones", len(m.trackers))
}

// Stop detiene la programación y cancela los ciclos en vuelo
func (m *TrackerManager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return
	}

	m.isRunning = false
	// Cancelar primero para que los ciclos en vuelo no retrasen el apagado
	m.cancel()
	<-m.cron.Stop().Done()
	log.Info("Servicio de trackers detenido")
}

// Get busca un tracker por id de sección
func (m *TrackerManager) Get(id string) (*Tracker, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, ErrTrackerNotFound
	}
	return t, nil
}

// List devuelve el estado de todas las secciones en orden de documento
func (m *TrackerManager) List() []models.SectionView {
	views := make([]models.SectionView, 0, len(m.trackers))
	for _, t := range m.trackers {
		views = append(views, t.View())
	}
	return views
}

// Skipped devuelve los ids de las secciones omitidas por no tener campo de precio
func (m *TrackerManager) Skipped() []string {
	return m.skipped
}

// RefreshNow lanza un ciclo fuera de la programación
func (m *TrackerManager) RefreshNow(id string) error {
	t, err := m.Get(id)
	if err != nil {
		return err
	}
	if t.disabled {
		return ErrTrackerDisabled
	}

	go t.Refresh(m.context())
	return nil
}

// RefreshAll ejecuta un ciclo de cada sección habilitada y espera a que terminen todos
func (m *TrackerManager) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range m.trackers {
		if t.disabled {
			continue
		}
		wg.Add(1)
		go func(t *Tracker) {
			defer wg.Done()
			_ = t.Refresh(ctx)
		}(t)
	}
	wg.Wait()
}

func (m *TrackerManager) context() context.Context {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}
