package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// Drivers soportados para el historial de precios
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var DB *sql.DB

// InitDB abre la base de datos y crea el esquema si no existe
func InitDB(driver, dsn string) error {
	if driver != DriverSQLite && driver != DriverPostgres {
		return fmt.Errorf("driver de base de datos no soportado: %s", driver)
	}

	// Crear el directorio del archivo sqlite si no existe
	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("no se pudo conectar a la base de datos: %w", err)
	}

	// sqlite en memoria vive solo mientras dure su conexión
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	DB = db

	if err := createSchema(driver); err != nil {
		return err
	}

	log.Infof("Base de datos inicializada (%s)", driver)
	return RunMigrations()
}

func createSchema(driver string) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	// Crear tabla de snapshots de precios
	createSnapshotsTableSQL := `
	CREATE TABLE IF NOT EXISTS price_snapshots (
		` + idColumn + `,
		section_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		currency TEXT NOT NULL,
		price DOUBLE PRECISION,
		change_24h DOUBLE PRECISION,
		high DOUBLE PRECISION,
		low DOUBLE PRECISION,
		last_updated_at BIGINT,
		observed_at TIMESTAMP NOT NULL
	);`

	_, err := DB.Exec(createSnapshotsTableSQL)
	return err
}
