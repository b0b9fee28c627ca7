package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/xelth-com/xrfdesk/internal/models"
	"github.com/xelth-com/xrfdesk/internal/utils"
)

// GormStore implements Repository on any gorm dialect. Writes are serialized
// so count-then-insert sequencing cannot interleave.
type GormStore struct {
	db       *gorm.DB
	maxImage int
	mu       sync.Mutex
}

// NewGormStore wraps db. maxImageBytes <= 0 disables the image size limit.
func NewGormStore(db *gorm.DB, maxImageBytes int) *GormStore {
	return &GormStore{db: db, maxImage: maxImageBytes}
}

func (s *GormStore) checkSize(rec models.Record) error {
	if s.maxImage > 0 && len(rec.Image) > s.maxImage {
		return ErrPayloadTooLarge
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) get(tx *gorm.DB, id string, stage models.Stage) (models.Record, error) {
	var rec models.Record
	err := tx.Where("id = ? AND stage = ?", id, stage).First(&rec).Error
	return rec, notFound(err)
}

// ListPending returns all in-progress tokens in creation order
func (s *GormStore) ListPending(ctx context.Context) ([]models.Record, error) {
	var recs []models.Record
	err := s.db.WithContext(ctx).
		Where("stage = ?", models.StagePending).
		Order("timestamp ASC").
		Find(&recs).Error
	return recs, err
}

// ListPendingForDay returns the in-progress tokens created on day's calendar date
func (s *GormStore) ListPendingForDay(ctx context.Context, day time.Time) ([]models.Record, error) {
	start, end := utils.DayBounds(day)
	var recs []models.Record
	err := s.db.WithContext(ctx).
		Where("stage = ? AND timestamp >= ? AND timestamp < ?", models.StagePending, start, end).
		Order("timestamp ASC").
		Find(&recs).Error
	return recs, err
}

// ListHistory returns committed reports, newest first
func (s *GormStore) ListHistory(ctx context.Context) ([]models.Record, error) {
	var recs []models.Record
	err := s.db.WithContext(ctx).
		Where("stage = ?", models.StageHistory).
		Order("timestamp DESC").
		Find(&recs).Error
	return recs, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchHistory matches customer name, token number or description,
// case-insensitively, newest first. An empty query lists everything.
func (s *GormStore) SearchHistory(ctx context.Context, query string) ([]models.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListHistory(ctx)
	}

	like := "%" + likeEscaper.Replace(models.SearchText(query)) + "%"
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.HistoryEntry{}).
		Where(`search_text LIKE ? ESCAPE '\'`, like).
		Pluck("record_id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	var recs []models.Record
	err = s.db.WithContext(ctx).
		Where("stage = ? AND id IN ?", models.StageHistory, ids).
		Order("timestamp DESC").
		Find(&recs).Error
	return recs, err
}

// GetPending loads one in-progress token
func (s *GormStore) GetPending(ctx context.Context, id string) (models.Record, error) {
	return s.get(s.db.WithContext(ctx), id, models.StagePending)
}

// GetHistory loads one committed report
func (s *GormStore) GetHistory(ctx context.Context, id string) (models.Record, error) {
	return s.get(s.db.WithContext(ctx), id, models.StageHistory)
}

// CountForDay counts pending and committed records created on day's calendar date
func (s *GormStore) CountForDay(ctx context.Context, day time.Time) (int, error) {
	return s.countForDay(s.db.WithContext(ctx), day)
}

func (s *GormStore) countForDay(tx *gorm.DB, day time.Time) (int, error) {
	start, end := utils.DayBounds(day)
	var n int64
	err := tx.Model(&models.Record{}).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Count(&n).Error
	return int(n), err
}

// AppendPending stores rec as an in-progress token as given
func (s *GormStore) AppendPending(ctx context.Context, rec models.Record) error {
	if err := s.checkSize(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Stage = models.StagePending
	return s.db.WithContext(ctx).Create(&rec).Error
}

// AppendPendingWithSequence assigns the day's next token number and stores rec
func (s *GormStore) AppendPendingWithSequence(ctx context.Context, rec models.Record, now time.Time) (models.Record, error) {
	if err := s.checkSize(rec); err != nil {
		return rec, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.countForDay(tx, now)
		if err != nil {
			return err
		}
		rec.TokenNumber = utils.NextTokenNumber(now, n)
		rec.Stage = models.StagePending
		return tx.Create(&rec).Error
	})
	return rec, err
}

// keepIdentity stops an update from reassigning what was fixed at creation.
func keepIdentity(rec *models.Record, existing models.Record) {
	rec.TokenNumber = existing.TokenNumber
	rec.Date = existing.Date
	rec.Time = existing.Time
	rec.Timestamp = existing.Timestamp
	rec.CreatedAt = existing.CreatedAt
}

// ReplacePending overwrites an in-progress token by id
func (s *GormStore) ReplacePending(ctx context.Context, rec models.Record) error {
	if err := s.checkSize(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.get(tx, rec.ID, models.StagePending)
		if err != nil {
			return err
		}
		keepIdentity(&rec, existing)
		rec.Stage = models.StagePending
		return tx.Save(&rec).Error
	})
}

// RemovePending deletes an in-progress token by id
func (s *GormStore) RemovePending(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).
		Where("id = ? AND stage = ?", id, models.StagePending).
		Delete(&models.Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendHistory stores a completed record directly in history
func (s *GormStore) AppendHistory(ctx context.Context, rec models.Record) error {
	if rec.Kind() != models.KindCompleted {
		return ErrIncomplete
	}
	if err := s.checkSize(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Stage = models.StageHistory
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		entry := models.NewHistoryEntry(rec)
		return tx.Create(&entry).Error
	})
}

// ReplaceHistory overwrites a committed report by id and refreshes its index row
func (s *GormStore) ReplaceHistory(ctx context.Context, rec models.Record) error {
	if rec.Kind() != models.KindCompleted {
		return ErrIncomplete
	}
	if err := s.checkSize(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.get(tx, rec.ID, models.StageHistory)
		if err != nil {
			return err
		}
		keepIdentity(&rec, existing)
		rec.Stage = models.StageHistory
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		entry := models.NewHistoryEntry(rec)
		return tx.Save(&entry).Error
	})
}

// RemoveHistory deletes a committed report and its index row
func (s *GormStore) RemoveHistory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND stage = ?", id, models.StageHistory).Delete(&models.Record{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("record_id = ?", id).Delete(&models.HistoryEntry{}).Error
	})
}

// CommitToHistory moves a pending token into history with rec's analysis
func (s *GormStore) CommitToHistory(ctx context.Context, rec models.Record) (models.Record, error) {
	if rec.Kind() != models.KindCompleted {
		return rec, ErrIncomplete
	}
	if err := s.checkSize(rec); err != nil {
		return rec, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.get(tx, rec.ID, models.StagePending)
		if err != nil {
			return err
		}
		keepIdentity(&rec, existing)
		rec.Stage = models.StageHistory
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		entry := models.NewHistoryEntry(rec)
		return tx.Create(&entry).Error
	})
	return rec, err
}

var _ Repository = (*GormStore)(nil)
