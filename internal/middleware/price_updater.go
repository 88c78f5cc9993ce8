package middleware

import (
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/repository"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/services"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/widget"
)

// Instancias compartidas por los handlers
var (
	pageInstance     *widget.Page
	trackerManager   *services.TrackerManager
	hubInstance      *services.Hub
	snapshotRepo     *repository.SnapshotRepository
	allowedWSOrigins []string
)

// InitTrackers establece las instancias que usan los handlers.
// snapshots puede ser nil cuando el historial está deshabilitado.
func InitTrackers(page *widget.Page, manager *services.TrackerManager, hub *services.Hub, snapshots *repository.SnapshotRepository, origins []string) {
	pageInstance = page
	trackerManager = manager
	hubInstance = hub
	snapshotRepo = snapshots
	allowedWSOrigins = origins
}
