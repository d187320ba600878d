package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nightfall/internal/game"
)

func TestRoomRecord_RoundTrip(t *testing.T) {
	room := testRoom("ABC123")
	room.Phase = game.PhaseResult
	room.Day = 4
	room.Winner = game.TeamFox

	rec, err := toRecord(room)
	require.NoError(t, err)

	assert.Equal(t, "ABC123", rec.ID)
	assert.Equal(t, "RESULT", rec.Phase)
	assert.Equal(t, 4, rec.Day)
	assert.Equal(t, "FOX", rec.Winner)
	assert.Equal(t, "rooms", rec.TableName())

	got, err := fromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, room, got)
}

func TestFromRecord_Corrupt(t *testing.T) {
	_, err := fromRecord(&RoomRecord{ID: "BAD", State: []byte("{")})
	assert.Error(t, err)
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

// newMockPostgres returns a store over a sqlmock connection
func newMockPostgres(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	require.NoError(t, err)
	repo, err := NewPostgresStore(db)
	require.NoError(t, err)
	return repo, mock
}

// snapshotOf matches a jsonb state argument holding the given room
type snapshotOf string

func (id snapshotOf) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var room game.RoomState
	return json.Unmarshal(raw, &room) == nil && room.ID == string(id)
}

const upsertRoomSQL = `INSERT INTO "rooms" ("id","name","phase","day","winner","state","updated_at") ` +
	`VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT ("id") DO UPDATE SET`

func TestPostgresStore_SaveRoomUpserts(t *testing.T) {
	repo, mock := newMockPostgres(t)
	ctx := context.Background()
	room := testRoom("ABC123")

	for i := 0; i < 2; i++ {
		mock.ExpectExec(regexp.QuoteMeta(upsertRoomSQL)).
			WithArgs("ABC123", "Test village", "SETUP", 0, "", snapshotOf("ABC123"), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.SaveRoom(ctx, &SaveRoomInput{Room: room}))
	require.NoError(t, repo.SaveRoom(ctx, &SaveRoomInput{Room: room}), "saving an existing room updates it")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRoomFailure(t *testing.T) {
	repo, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(upsertRoomSQL)).WillReturnError(errors.New("connection reset"))

	err := repo.SaveRoom(context.Background(), &SaveRoomInput{Room: testRoom("ABC123")})
	assert.ErrorContains(t, err, "connection reset")
	assert.Error(t, repo.SaveRoom(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

const selectRoomSQL = `SELECT * FROM "rooms" WHERE id = $1 ORDER BY "rooms"."id" LIMIT $2`

func TestPostgresStore_GetRoom(t *testing.T) {
	repo, mock := newMockPostgres(t)
	room := testRoom("ABC123")
	room.Phase = game.PhaseNight
	room.Day = 2
	state, err := json.Marshal(room)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(selectRoomSQL)).
		WithArgs("ABC123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phase", "day", "winner", "state", "updated_at"}).
			AddRow("ABC123", room.Name, "NIGHT", 2, "", state, time.Now()))

	got, err := repo.GetRoom(context.Background(), &GetRoomInput{RoomID: "ABC123"})
	require.NoError(t, err)
	assert.Equal(t, room, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRoomNotFound(t *testing.T) {
	repo, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomSQL)).
		WithArgs("NOPE42", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phase", "day", "winner", "state", "updated_at"}))

	_, err := repo.GetRoom(context.Background(), &GetRoomInput{RoomID: "NOPE42"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRoomFailure(t *testing.T) {
	repo, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomSQL)).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetRoom(context.Background(), &GetRoomInput{RoomID: "ABC123"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteRoom(t *testing.T) {
	repo, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "rooms" WHERE id = $1`)).
		WithArgs("ABC123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "rooms" WHERE id = $1`)).
		WithArgs("GONE01").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.DeleteRoom(ctx, &DeleteRoomInput{RoomID: "ABC123"}))
	require.NoError(t, repo.DeleteRoom(ctx, &DeleteRoomInput{RoomID: "GONE01"}), "deleting a missing room is not an error")
	assert.Error(t, repo.DeleteRoom(ctx, &DeleteRoomInput{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRoomsNewestFirst(t *testing.T) {
	repo, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "rooms" ORDER BY updated_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("NEWEST").AddRow("MIDDLE").AddRow("OLDEST"))

	out, err := repo.ListRooms(context.Background(), &ListRoomsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"NEWEST", "MIDDLE", "OLDEST"}, out.RoomIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresStore_Live runs against a real database when
// NIGHTFALL_TEST_POSTGRES_DSN is set
func TestPostgresStore_Live(t *testing.T) {
	dsn := os.Getenv("NIGHTFALL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NIGHTFALL_TEST_POSTGRES_DSN not set")
	}
	repo, err := OpenPostgres(dsn)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	older, newer := testRoom("LIVE01"), testRoom("LIVE02")
	t.Cleanup(func() {
		_ = repo.DeleteRoom(ctx, &DeleteRoomInput{RoomID: older.ID})
		_ = repo.DeleteRoom(ctx, &DeleteRoomInput{RoomID: newer.ID})
	})

	require.NoError(t, repo.SaveRoom(ctx, &SaveRoomInput{Room: older}))
	require.NoError(t, repo.SaveRoom(ctx, &SaveRoomInput{Room: newer}))
	older.Phase = game.PhaseNight
	older.Day = 1
	require.NoError(t, repo.SaveRoom(ctx, &SaveRoomInput{Room: older}))

	got, err := repo.GetRoom(ctx, &GetRoomInput{RoomID: older.ID})
	require.NoError(t, err)
	assert.Equal(t, game.PhaseNight, got.Phase)

	out, err := repo.ListRooms(ctx, &ListRoomsInput{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out.RoomIDs), 2)
	assert.Equal(t, older.ID, out.RoomIDs[0], "the upserted room is the most recent")

	require.NoError(t, repo.DeleteRoom(ctx, &DeleteRoomInput{RoomID: older.ID}))
	_, err = repo.GetRoom(ctx, &GetRoomInput{RoomID: older.ID})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
