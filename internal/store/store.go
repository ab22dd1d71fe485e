// Package store persists finished sessions so a payout service can settle
// them later.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
)

type SessionRecord struct {
	gorm.Model
	SessionID    string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Mode         string `gorm:"type:varchar(16);not null"`
	MapID        int
	Bonus        string `gorm:"type:varchar(16)"`
	BonusMet     bool
	Rounds       int
	Aborted      bool
	Reason       string
	StartedAt    time.Time
	EndedAt      time.Time
	Participants []ParticipantRecord `gorm:"foreignKey:SessionRecordID"`
}

type ParticipantRecord struct {
	gorm.Model
	SessionRecordID uint   `gorm:"index;not null"`
	PlayerID        string `gorm:"type:varchar(64);index;not null"`
	Name            string `gorm:"type:varchar(64)"`
	Role            string `gorm:"type:varchar(8);not null"`
	Rank            int
	Bot             bool
	KnockedOut      bool
	Health          int
}

// Store is a session.ResultSink backed by postgres.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects through pgx and migrates the schema.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pcfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	sqlDB := stdlib.OpenDB(*pcfg)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("open gorm: %w", err), sqlDB.Close())
	}
	s := &Store{db: db, log: log.With(zap.String("component", "store"))}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping: %w", err), sqlDB.Close())
	}
	if err := db.WithContext(ctx).AutoMigrate(&SessionRecord{}, &ParticipantRecord{}); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrate: %w", err), sqlDB.Close())
	}
	return s, nil
}

func (s *Store) Record(ctx context.Context, o session.Outcome) error {
	rec := toRecord(o)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("store session %s: %w", o.SessionID, err)
	}
	s.log.Debug("session stored", zap.String("session", o.SessionID), zap.Uint("row", rec.ID))
	return nil
}

// Recent lists the latest sessions with their participants.
func (s *Store) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	var out []SessionRecord
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Order("ended_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(o session.Outcome) SessionRecord {
	rec := SessionRecord{
		SessionID: o.SessionID,
		Mode:      o.Mode.String(),
		MapID:     o.MapID,
		Bonus:     string(o.Bonus),
		BonusMet:  o.BonusMet,
		Rounds:    o.Rounds,
		Aborted:   o.Aborted,
		Reason:    o.Reason,
		StartedAt: o.StartedAt,
		EndedAt:   o.EndedAt,
	}
	for _, p := range o.Participants {
		rec.Participants = append(rec.Participants, ParticipantRecord{
			PlayerID:   p.ID,
			Name:       p.Name,
			Role:       p.Role.String(),
			Rank:       p.Rank,
			Bot:        p.Bot,
			KnockedOut: p.KnockedOut,
			Health:     p.Health,
		})
	}
	return rec
}

var _ session.ResultSink = (*Store)(nil)
