package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	board []domain.CapacityStatus
	err   error
	calls int
}

func (s *countingSource) Board(ctx context.Context) ([]domain.CapacityStatus, error) {
	s.calls++
	return s.board, s.err
}

func sampleBoard() []domain.CapacityStatus {
	return []domain.CapacityStatus{{
		AreaID: uuid.MustParse("0b8f9f7e-6f0e-4c55-9a56-0b6f3f0f7a11"), AreaCode: "A1", AreaName: "Basement 1",
		VehicleTypeID: uuid.MustParse("5d2c1e47-3b9a-4f0c-8f61-2d7e5c9b0a22"), VehicleTypeCode: "CAR", VehicleTypeName: "Car",
		TotalSlots: 10, Occupied: 3, Available: 7,
	}}
}

func TestBoard_MissLoadsAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	source := &countingSource{board: sampleBoard()}
	c := NewCapacityCache(db, source, time.Minute)
	payload, err := json.Marshal(source.board)
	require.NoError(t, err)

	mock.ExpectGet(BoardKey).RedisNil()
	mock.ExpectSet(BoardKey, string(payload), time.Minute).SetVal("OK")

	board, err := c.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, source.board, board)
	assert.Equal(t, 1, source.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoard_HitSkipsSource(t *testing.T) {
	db, mock := redismock.NewClientMock()
	source := &countingSource{}
	c := NewCapacityCache(db, source, time.Minute)
	payload, err := json.Marshal(sampleBoard())
	require.NoError(t, err)

	mock.ExpectGet(BoardKey).SetVal(string(payload))

	board, err := c.Board(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 7, board[0].Available)
	assert.Zero(t, source.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoard_RedisDownReadsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	source := &countingSource{board: sampleBoard()}
	c := NewCapacityCache(db, source, time.Minute)
	payload, err := json.Marshal(source.board)
	require.NoError(t, err)

	mock.ExpectGet(BoardKey).SetErr(errors.New("connection refused"))
	mock.ExpectSet(BoardKey, string(payload), time.Minute).SetErr(errors.New("connection refused"))

	board, err := c.Board(context.Background())
	require.NoError(t, err)
	assert.Len(t, board, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_PropagatesSourceError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	boom := errors.New("db down")
	c := NewCapacityCache(db, &countingSource{err: boom}, time.Minute)

	assert.ErrorIs(t, c.Refresh(context.Background()), boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_Invalidates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCapacityCache(db, &countingSource{}, time.Minute)

	mock.ExpectDel(BoardKey).SetVal(1)
	c.Publish(context.Background(), domain.TransactionEvent{Type: domain.EventCheckedIn})
	assert.NoError(t, mock.ExpectationsWereMet())
}
