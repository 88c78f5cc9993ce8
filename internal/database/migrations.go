package database

import (
	log "github.com/sirupsen/logrus"
)

// RunMigrations ejecuta las migraciones necesarias para actualizar el esquema de la base de datos
func RunMigrations() error {
	log.Debug("Ejecutando migraciones de la base de datos...")

	// Índice para leer el historial de una sección ordenado por fecha
	createSnapshotsIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_price_snapshots_section_observed
	ON price_snapshots(section_id, observed_at);`

	if _, err := DB.Exec(createSnapshotsIndexSQL); err != nil {
		log.Errorf("Error al crear el índice de snapshots: %v", err)
		return err
	}

	return nil
}
