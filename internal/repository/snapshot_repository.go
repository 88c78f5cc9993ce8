package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/models"
)

// Límites para la lectura del historial
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// SnapshotRepository guarda los payloads exitosos de cada sección.
// Las consultas usan placeholders $N, que aceptan tanto sqlite como postgres.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveSnapshot inserta un snapshot nuevo
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, s models.PriceSnapshot) error {
	query := `
		INSERT INTO price_snapshots (
			section_id, provider, currency, price, change_24h, high, low, last_updated_at, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		s.SectionID,
		s.Provider,
		s.Currency,
		s.Price,
		s.Change,
		s.High,
		s.Low,
		s.UpdatedAt,
		s.ObservedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error al guardar snapshot de %s: %w", s.SectionID, err)
	}
	return nil
}

// GetSnapshots devuelve los últimos snapshots de una sección, del más reciente al más antiguo
func (r *SnapshotRepository) GetSnapshots(ctx context.Context, sectionID string, limit int) ([]models.PriceSnapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := `
		SELECT id, section_id, provider, currency, price, change_24h, high, low, last_updated_at, observed_at
		FROM price_snapshots
		WHERE section_id = $1
		ORDER BY observed_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, sectionID, limit)
	if err != nil {
		return nil, fmt.Errorf("error al obtener snapshots de %s: %w", sectionID, err)
	}
	defer rows.Close()

	snapshots := []models.PriceSnapshot{}
	for rows.Next() {
		var (
			s                        models.PriceSnapshot
			price, change, high, low sql.NullFloat64
			updatedAt                sql.NullInt64
		)
		if err := rows.Scan(
			&s.ID, &s.SectionID, &s.Provider, &s.Currency,
			&price, &change, &high, &low, &updatedAt, &s.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("error al escanear snapshot: %w", err)
		}

		s.Price = nullFloat(price)
		s.Change = nullFloat(change)
		s.High = nullFloat(high)
		s.Low = nullFloat(low)
		if updatedAt.Valid {
			v := updatedAt.Int64
			s.UpdatedAt = &v
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
