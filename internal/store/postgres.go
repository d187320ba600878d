package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nightfall/internal/game"
)

// RoomRecord is the rooms table row: the snapshot as jsonb plus a few
// columns for querying
type RoomRecord struct {
	ID        string `gorm:"primaryKey;size:16"`
	Name      string
	Phase     string `gorm:"index"`
	Day       int
	Winner    string
	State     []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

// TableName overrides gorm's pluralized default
func (RoomRecord) TableName() string {
	return "rooms"
}

// PostgresStore implements Repository on PostgreSQL through gorm
type PostgresStore struct {
	db *gorm.DB
}

// gormConfig is shared by OpenPostgres and the store tests. Every write is a
// single statement, so gorm's implicit transactions are skipped.
func gormConfig() *gorm.Config {
	return &gorm.Config{SkipDefaultTransaction: true}
}

// OpenPostgres connects to PostgreSQL and migrates the rooms table
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo, err := NewPostgresStore(db)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// NewPostgresStore wraps an open gorm handle
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &PostgresStore{db: db}, nil
}

// Migrate creates or updates the rooms table
func (p *PostgresStore) Migrate() error {
	if err := p.db.AutoMigrate(&RoomRecord{}); err != nil {
		return fmt.Errorf("failed to migrate rooms table: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(room *game.RoomState) (*RoomRecord, error) {
	state, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room: %w", err)
	}
	return &RoomRecord{
		ID:     room.ID,
		Name:   room.Name,
		Phase:  string(room.Phase),
		Day:    room.Day,
		Winner: string(room.Winner),
		State:  state,
	}, nil
}

func fromRecord(rec *RoomRecord) (*game.RoomState, error) {
	var room game.RoomState
	if err := json.Unmarshal(rec.State, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", rec.ID, err)
	}
	return &room, nil
}

// SaveRoom upserts the snapshot row in one INSERT ... ON CONFLICT statement
func (p *PostgresStore) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}

	rec, err := toRecord(input.Room)
	if err != nil {
		return err
	}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// GetRoom loads the latest snapshot of a room
func (p *PostgresStore) GetRoom(ctx context.Context, input *GetRoomInput) (*game.RoomState, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	var rec RoomRecord
	err := p.db.WithContext(ctx).First(&rec, "id = ?", input.RoomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room %s: %w", input.RoomID, ErrRoomNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return fromRecord(&rec)
}

// DeleteRoom removes the room row
func (p *PostgresStore) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}
	if err := p.db.WithContext(ctx).Delete(&RoomRecord{}, "id = ?", input.RoomID).Error; err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// ListRooms returns room ids, most recently updated first
func (p *PostgresStore) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	var ids []string
	err := p.db.WithContext(ctx).Model(&RoomRecord{}).Order("updated_at DESC").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return &ListRoomsOutput{RoomIDs: ids}, nil
}
