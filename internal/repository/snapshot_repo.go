package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository persists the last raw booking JSON per booking key so
// the scheduler can rebuild a day view when the backend is unreachable.
type SnapshotRepository interface {
	Upsert(ctx context.Context, projectKey string, raw models.RawBooking) error
	UpsertAll(ctx context.Context, projectKey string, raws []models.RawBooking) error
	ListByProject(ctx context.Context, projectKey string) ([]models.RawBooking, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Upsert(ctx context.Context, projectKey string, raw models.RawBooking) error {
	if raw.BookingKey == "" {
		return nil
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	row := models.BookingSnapshot{
		BookingKey: raw.BookingKey,
		ProjectKey: projectKey,
		Payload:    string(payload),
		FetchedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "booking_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"project_key", "payload", "fetched_at"}),
	}).Create(&row).Error
}

func (r *snapshotRepository) UpsertAll(ctx context.Context, projectKey string, raws []models.RawBooking) error {
	for _, raw := range raws {
		if err := r.Upsert(ctx, projectKey, raw); err != nil {
			return err
		}
	}
	return nil
}

// ListByProject returns the cached raw bookings in fetch order. Rows whose
// payload no longer unmarshals are skipped rather than failing the list.
func (r *snapshotRepository) ListByProject(ctx context.Context, projectKey string) ([]models.RawBooking, error) {
	var rows []models.BookingSnapshot
	err := r.db.WithContext(ctx).
		Where("project_key = ?", projectKey).
		Order("fetched_at ASC, booking_key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	raws := make([]models.RawBooking, 0, len(rows))
	for _, row := range rows {
		var raw models.RawBooking
		if err := json.Unmarshal([]byte(row.Payload), &raw); err != nil {
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
