package filedb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otrabotki-service/internal/model"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestMissingFilesYieldDefaults(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	slots, err := NewSlotRepo(store).List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	limits, err := NewLimitsRepo(store).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLimits(), limits)
}

func TestSaveAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)
	repo := NewSlotRepo(store)

	slot := model.Slot{
		ID:        "slot_1",
		TeacherID: "t1",
		Subject:   "Физика",
		CourseIDs: []int{1, 2},
		Date:      "2026-03-06",
		TimeFrom:  "10:00",
		TimeTo:    "11:30",
		Capacity:  5,
		Students:  []string{"st1"},
	}
	require.NoError(t, repo.SaveAll(ctx, []model.Slot{slot}))

	loaded, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, slot, loaded[0])

	// Файл назван как в исходном хранилище
	_, err = os.Stat(filepath.Join(dir, "slots.json"))
	assert.NoError(t, err)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	require.NoError(t, NewLimitsRepo(store).Save(ctx, model.Limits{MaxPerDay: 2, MaxPerWeek: 4}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "limits.json", entries[0].Name())

	limits, err := NewLimitsRepo(store).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Limits{MaxPerDay: 2, MaxPerWeek: 4}, limits)
}

func TestCorruptFileIsAnError(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	_, err := NewUserRepo(store).List(ctx)
	assert.Error(t, err)
}
