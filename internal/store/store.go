// Package store persists learners, sessions, run history and SPN settings
// in Postgres through gorm.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptolab/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const historyLimit = 200

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.Role{}, &models.Learner{}, &models.Session{}, &models.Run{}, &models.SPNSetting{})
}

// SeedDefaults creates the roles and a default learner if none exists yet.
func (s *Store) SeedDefaults(ctx context.Context, email, passwordHash string, lg *zap.SugaredLogger) error {
	db := s.db.WithContext(ctx)
	for _, name := range []string{"Instructor", "Learner"} {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Role{Name: name}).Error; err != nil {
			return err
		}
	}
	var count int64
	db.Model(&models.Learner{}).Where("LOWER(email)=?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil
	}
	var roles []models.Role
	if err := db.Where("name IN ?", []string{"Instructor", "Learner"}).Find(&roles).Error; err != nil {
		return err
	}
	l := models.Learner{
		Email:        strings.ToLower(email),
		DisplayName:  "instructor",
		PasswordHash: passwordHash,
		IsActive:     true,
		Roles:        roles,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&l).Error; err != nil {
		return err
	}
	lg.Infow("seeded default learner", "email", l.Email)
	return nil
}

func (s *Store) LearnerByEmail(ctx context.Context, email string) (*models.Learner, error) {
	var l models.Learner
	err := s.db.WithContext(ctx).Preload("Roles").First(&l, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	return &l, notFound(err)
}

func (s *Store) LearnerByID(ctx context.Context, id string) (*models.Learner, error) {
	var l models.Learner
	err := s.db.WithContext(ctx).Preload("Roles").First(&l, "id = ?", id).Error
	return &l, notFound(err)
}

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *Store) Session(ctx context.Context, jti string) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).First(&sess, "jti = ?", jti).Error
	return &sess, notFound(err)
}

func (s *Store) RevokeSession(ctx context.Context, jti string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("jti = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) RecordRun(ctx context.Context, run *models.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(run).Error
}

// ListRuns returns the learner's most recent runs, newest first, optionally
// filtered by topic.
func (s *Store) ListRuns(ctx context.Context, learnerID, topic string) ([]models.Run, error) {
	var runs []models.Run
	err := findRuns(s.db.WithContext(ctx), learnerID, topic, &runs).Error
	return runs, err
}

// ListRecentRuns returns the most recent runs of every learner.
func (s *Store) ListRecentRuns(ctx context.Context, topic string) ([]models.Run, error) {
	var runs []models.Run
	err := findRuns(s.db.WithContext(ctx), "", topic, &runs).Error
	return runs, err
}

// findRuns selects at most historyLimit runs, newest first. Empty learnerID
// or topic means no filter.
func findRuns(db *gorm.DB, learnerID, topic string, out *[]models.Run) *gorm.DB {
	if learnerID != "" {
		db = db.Where("learner_id = ?", learnerID)
	}
	if topic != "" {
		db = db.Where("topic = ?", topic)
	}
	return db.Order("created_at desc").Limit(historyLimit).Find(out)
}

// SaveSPNSetting upserts the learner's SPN setup.
func (s *Store) SaveSPNSetting(ctx context.Context, st *models.SPNSetting) error {
	st.UpdatedAt = time.Now()
	return upsertSPNSetting(s.db.WithContext(ctx), st).Error
}

func upsertSPNSetting(db *gorm.DB, st *models.SPNSetting) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "learner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rounds", "sbox_hex", "key", "updated_at"}),
	}).Create(st)
}

func (s *Store) LoadSPNSetting(ctx context.Context, learnerID string) (*models.SPNSetting, error) {
	var st models.SPNSetting
	err := s.db.WithContext(ctx).First(&st, "learner_id = ?", learnerID).Error
	return &st, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
