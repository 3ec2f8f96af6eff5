package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uirecorder/internal/models"
)

// Repository persists sessions and preferences.
type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID uint) ([]models.Session, error)
	ListByStatus(ctx context.Context, status string) ([]models.Session, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	DeleteStoppedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, s *models.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) Save(ctx context.Context, s *models.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormRepository) ListByStatus(ctx context.Context, status string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&sessions).Error
	return sessions, err
}

func (r *gormRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *gormRepository) DeleteStoppedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND stopped_at < ?", models.SessionStopped, cutoff).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var st models.Setting
	err := r.db.WithContext(ctx).Where(&models.Setting{Key: key}).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return st.Value, err
}

func (r *gormRepository) SetSetting(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.Setting{Key: key, Value: value}).Error
}
