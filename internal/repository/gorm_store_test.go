package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xelth-com/xrfdesk/internal/config"
	"github.com/xelth-com/xrfdesk/internal/database"
	"github.com/xelth-com/xrfdesk/internal/models"
)

var today = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)

func newTestStore(t *testing.T, maxImage int) *GormStore {
	t.Helper()
	db, err := database.Connect(config.StoreConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return NewGormStore(db.DB, maxImage)
}

func token(customer string, at time.Time) models.Record {
	return models.Record{
		ID:              uuid.NewString(),
		CustomerName:    customer,
		ItemDescription: "ring",
		ItemWeight:      "4.2",
		Date:            at.Format("02/01/2006"),
		Time:            at.Format("15:04:05"),
		Timestamp:       at.UnixMilli(),
	}
}

var gold = models.Analysis{Percentage: "91.6", Element: models.ElementGold, PercentageInWords: "NINE ONE / SIX ZERO"}

func TestAppendPendingWithSequence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	// yesterday's tokens do not count
	old := token("old", today.AddDate(0, 0, -1))
	old.TokenNumber = "0403001"
	require.NoError(t, s.AppendPending(ctx, old))

	var numbers []string
	for i := 0; i < 3; i++ {
		at := today.Add(time.Duration(i) * time.Minute)
		rec, err := s.AppendPendingWithSequence(ctx, token(fmt.Sprintf("c%d", i), at), at)
		require.NoError(t, err)
		numbers = append(numbers, rec.TokenNumber)
		assert.Equal(t, models.StagePending, rec.Stage)
	}
	assert.Equal(t, []string{"0503001", "0503002", "0503003"}, numbers)

	// committed reports of the day still count
	pending, err := s.ListPendingForDay(ctx, today)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	_, err = s.CommitToHistory(ctx, pending[0].WithAnalysis(gold, ""))
	require.NoError(t, err)

	n, err := s.CountForDay(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	at := today.Add(time.Hour)
	rec, err := s.AppendPendingWithSequence(ctx, token("c3", at), at)
	require.NoError(t, err)
	assert.Equal(t, "0503004", rec.TokenNumber)

	all, err := s.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "old", all[0].CustomerName)
}

func TestAppendPendingWithSequence_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	const n = 12
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := s.AppendPendingWithSequence(ctx, token(fmt.Sprintf("c%d", i), today), today)
			assert.NoError(t, err)
			results <- rec.TokenNumber
		}(i)
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for num := range results {
		assert.False(t, seen[num], "duplicate token number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["0503012"])
}

func TestCommitToHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	rec, err := s.AppendPendingWithSequence(ctx, token("Meena", today), today)
	require.NoError(t, err)

	_, err = s.CommitToHistory(ctx, rec)
	assert.ErrorIs(t, err, ErrIncomplete)
	_, err = s.GetPending(ctx, rec.ID)
	require.NoError(t, err, "failed commit must leave the token pending")

	report := rec.WithAnalysis(gold, "fine")
	report.TokenNumber = "9999999" // cannot be reassigned
	committed, err := s.CommitToHistory(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, rec.TokenNumber, committed.TokenNumber)

	_, err = s.GetPending(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := s.GetHistory(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "91.6", got.Percentage)
	assert.Equal(t, models.ElementGold, got.Element)
	assert.Equal(t, "fine", got.Remarks)
	assert.Equal(t, models.StageHistory, got.Stage)

	found, err := s.SearchHistory(ctx, "meen")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, rec.ID, found[0].ID)

	// a second commit of the same id finds nothing pending
	_, err = s.CommitToHistory(ctx, report)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveHistory_LeavesOthersIdentical(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	for i := 0; i < 4; i++ {
		rec := token(fmt.Sprintf("cust-%d", i), today.Add(time.Duration(i)*time.Minute)).WithAnalysis(gold, "")
		rec.TokenNumber = fmt.Sprintf("050300%d", i+1)
		require.NoError(t, s.AppendHistory(ctx, rec))
	}

	before, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, before, 4)
	assert.Equal(t, "cust-3", before[0].CustomerName, "newest first")

	victim := before[1]
	require.NoError(t, s.RemoveHistory(ctx, victim.ID))

	after, err := s.ListHistory(ctx)
	require.NoError(t, err)
	want := append(append([]models.Record{}, before[:1]...), before[2:]...)
	assert.Equal(t, want, after)

	assert.ErrorIs(t, s.RemoveHistory(ctx, victim.ID), ErrNotFound)
	found, err := s.SearchHistory(ctx, victim.CustomerName)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestReplaceHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	rec := token("Anil", today).WithAnalysis(gold, "")
	rec.TokenNumber = "0503001"
	require.NoError(t, s.AppendHistory(ctx, rec))

	edited := rec
	edited.CustomerName = "Anil Kumar"
	edited.Percentage = "75"
	edited.TokenNumber = "0000000"
	require.NoError(t, s.ReplaceHistory(ctx, edited))

	got, err := s.GetHistory(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anil Kumar", got.CustomerName)
	assert.Equal(t, "75", got.Percentage)
	assert.Equal(t, "0503001", got.TokenNumber)

	found, err := s.SearchHistory(ctx, "KUMAR")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	missing := edited
	missing.ID = uuid.NewString()
	assert.ErrorIs(t, s.ReplaceHistory(ctx, missing), ErrNotFound)
	assert.ErrorIs(t, s.ReplaceHistory(ctx, token("x", today)), ErrIncomplete)
}

func TestSearchHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	a := token("Ravi", today).WithAnalysis(gold, "")
	a.TokenNumber = "0503001"
	a.ItemDescription = "Chain 100%"
	b := token("Sita", today.Add(time.Minute)).WithAnalysis(gold, "")
	b.TokenNumber = "0503002"
	b.ItemDescription = "Anklet"
	require.NoError(t, s.AppendHistory(ctx, a))
	require.NoError(t, s.AppendHistory(ctx, b))

	found, err := s.SearchHistory(ctx, "0503002")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sita", found[0].CustomerName)

	found, err = s.SearchHistory(ctx, "anklet")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.SearchHistory(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1, "percent sign is matched literally")
	assert.Equal(t, "Ravi", found[0].CustomerName)

	found, err = s.SearchHistory(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.SearchHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearchHistory_FoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	rec := token("Śrī Lakshmi", today).WithAnalysis(gold, "")
	rec.TokenNumber = "0503001"
	require.NoError(t, s.AppendHistory(ctx, rec))

	for _, q := range []string{"śrī", "ŚRĪ", "Śrī lak"} {
		found, err := s.SearchHistory(ctx, q)
		require.NoError(t, err)
		assert.Len(t, found, 1, q)
	}
}

func TestPendingMutations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	rec, err := s.AppendPendingWithSequence(ctx, token("Gopal", today), today)
	require.NoError(t, err)

	promoted := rec.WithAnalysis(gold, "")
	require.NoError(t, s.ReplacePending(ctx, promoted))
	got, err := s.GetPending(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KindCompleted, got.Kind())

	partial := rec
	partial.Percentage = "50"
	err = s.ReplacePending(ctx, partial)
	assert.ErrorIs(t, err, models.ErrPartialAnalysis)

	require.NoError(t, s.RemovePending(ctx, rec.ID))
	assert.ErrorIs(t, s.RemovePending(ctx, rec.ID), ErrNotFound)
	assert.ErrorIs(t, s.ReplacePending(ctx, rec), ErrNotFound)
}

func TestPayloadTooLarge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 8)

	big := token("Big", today)
	big.Image = make([]byte, 9)
	_, err := s.AppendPendingWithSequence(ctx, big, today)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	n, err := s.CountForDay(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, n)

	small, err := s.AppendPendingWithSequence(ctx, big.WithoutImage(), today)
	require.NoError(t, err)
	assert.Equal(t, "0503001", small.TokenNumber)
}
