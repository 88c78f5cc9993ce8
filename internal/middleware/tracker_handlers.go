package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/services"
)

// RenderPage devuelve la página con el estado actual de todas las secciones
func RenderPage(c *gin.Context) {
	var buf bytes.Buffer
	if err := pageInstance.Render(&buf); err != nil {
		log.WithError(err).Error("Error al renderizar la página")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al renderizar la página"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GetTrackers lista todas las secciones y las que se omitieron por no tener campo de precio
func GetTrackers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"trackers": trackerManager.List(),
		"skipped":  trackerManager.Skipped(),
	})
}

// GetTracker devuelve el estado de una sección
func GetTracker(c *gin.Context) {
	tracker, err := trackerManager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tracker no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tracker": tracker.View()})
}

// GetTrackerHistory devuelve los últimos snapshots guardados de una sección
func GetTrackerHistory(c *gin.Context) {
	if snapshotRepo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "El historial de precios no está habilitado"})
		return
	}

	id := c.Param("id")
	if _, err := trackerManager.Get(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tracker no encontrado"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El parámetro limit debe ser un número positivo"})
			return
		}
		limit = n
	}

	snapshots, err := snapshotRepo.GetSnapshots(c.Request.Context(), id, limit)
	if err != nil {
		log.WithError(err).Error("Error al obtener el historial")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener el historial"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

// StreamTrackers abre un websocket que recibe cada cambio de estado de las secciones
func StreamTrackers(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Debug("Error al abrir el websocket")
		return
	}

	hubInstance.Serve(conn, trackerManager.List())
}

// Sin header Origin (clientes que no son navegador) o mismo host se acepta siempre
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, allowed := range allowedWSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Health informa el estado del servicio
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sections": len(trackerManager.List()),
		"clients":  hubInstance.Clients(),
	})
}

// RefreshTracker lanza un ciclo de refresco fuera de la programación
func RefreshTracker(c *gin.Context) {
	err := trackerManager.RefreshNow(c.Param("id"))
	switch {
	case errors.Is(err, services.ErrTrackerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Tracker no encontrado"})
		return
	case errors.Is(err, services.ErrTrackerDisabled):
		c.JSON(http.StatusConflict, gin.H{"error": "El tracker tiene una configuración inválida"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Refresco iniciado"})
}
