//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"github.com/Ross1116/sitespace-app-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBooking(key, assetID, start, end string) models.RawBooking {
	return models.RawBooking{
		BookingKey:  key,
		Status:      "confirmed",
		Purpose:     "integration test booking",
		BookingDate: "2025-03-12",
		StartTime:   start,
		EndTime:     end,
		Asset:       &models.AssetRef{ID: assetID, Name: "Tower Crane A"},
	}
}

func TestSnapshotRepository_UpsertAndList(t *testing.T) {
	repo := repository.NewSnapshotRepository(testDB)
	ctx := context.Background()

	raws := []models.RawBooking{
		rawBooking("it-b1", "crane-1", "09:00", "10:00"),
		rawBooking("it-b2", "crane-1", "11:00", "12:00"),
	}
	require.NoError(t, repo.UpsertAll(ctx, "it-proj", raws))

	listed, err := repo.ListByProject(ctx, "it-proj")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "it-b1", listed[0].BookingKey)
	assert.Equal(t, "crane-1", listed[0].Asset.ID)
}

func TestSnapshotRepository_UpsertReplacesPayload(t *testing.T) {
	repo := repository.NewSnapshotRepository(testDB)
	ctx := context.Background()

	first := rawBooking("it-b3", "crane-1", "09:00", "10:00")
	require.NoError(t, repo.Upsert(ctx, "it-proj-2", first))

	moved := rawBooking("it-b3", "crane-1", "14:00", "15:00")
	require.NoError(t, repo.Upsert(ctx, "it-proj-2", moved))

	listed, err := repo.ListByProject(ctx, "it-proj-2")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "14:00", listed[0].StartTime)
}

func TestSnapshotRepository_ProjectsAreIsolated(t *testing.T) {
	repo := repository.NewSnapshotRepository(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "it-proj-a", rawBooking("it-b4", "crane-1", "09:00", "10:00")))
	require.NoError(t, repo.Upsert(ctx, "it-proj-b", rawBooking("it-b5", "bay-1", "09:00", "10:00")))

	listed, err := repo.ListByProject(ctx, "it-proj-a")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "it-b4", listed[0].BookingKey)
}

func TestSnapshotRepository_SkipsKeylessBookings(t *testing.T) {
	repo := repository.NewSnapshotRepository(testDB)
	ctx := context.Background()

	keyless := rawBooking("", "crane-1", "09:00", "10:00")
	require.NoError(t, repo.Upsert(ctx, "it-proj-c", keyless))

	listed, err := repo.ListByProject(ctx, "it-proj-c")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
