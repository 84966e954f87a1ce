package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPool struct {
	mock.Mock
}

func (m *mockPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

func (m *mockPool) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.data
	return nil
}

func newTestPostgresBackend(pool pgPool) *PostgresBackend {
	return &PostgresBackend{pool: pool, log: discardLogger(), locationURI: "postgres://db/shares"}
}

func TestPostgresBackend_Fetch(t *testing.T) {
	record := testRecord(t)
	data, err := marshalRecord(record)
	require.NoError(t, err)

	pool := &mockPool{}
	pool.On("QueryRow", mock.Anything, mock.Anything, []any{record.ID()}).Return(fakeRow{data: data}).Once()
	pool.On("QueryRow", mock.Anything, mock.Anything, []any{record.ID()}).Return(fakeRow{err: pgx.ErrNoRows}).Once()
	pool.On("QueryRow", mock.Anything, mock.Anything, []any{record.ID()}).Return(fakeRow{err: errors.New("conn reset")}).Once()
	backend := newTestPostgresBackend(pool)

	got, err := backend.Fetch(context.Background(), record.ID())
	require.NoError(t, err)
	assertSameRecord(t, record, got)

	_, err = backend.Fetch(context.Background(), record.ID())
	assert.ErrorIs(t, err, interfaces.ErrShareNotFound)

	_, err = backend.Fetch(context.Background(), record.ID())
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	pool.AssertExpectations(t)
}

func TestPostgresBackend_StoreAndDelete(t *testing.T) {
	record := testRecord(t)
	pool := &mockPool{}
	pool.On("Exec", mock.Anything, mock.Anything, mock.MatchedBy(func(args []any) bool {
		return len(args) == 6 && args[0] == record.ID() && args[1] == "salary"
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()
	pool.On("Exec", mock.Anything, mock.Anything, []any{record.ID()}).Return(pgconn.NewCommandTag("DELETE 1"), nil).Once()
	pool.On("Exec", mock.Anything, mock.Anything, []any{record.ID()}).Return(pgconn.NewCommandTag("DELETE 0"), nil).Once()
	backend := newTestPostgresBackend(pool)

	require.NoError(t, backend.Store(context.Background(), record))
	require.NoError(t, backend.Delete(context.Background(), record.ID()))
	assert.ErrorIs(t, backend.Delete(context.Background(), record.ID()), interfaces.ErrShareNotFound)

	pool.AssertExpectations(t)
}

func TestPostgresBackend_Available(t *testing.T) {
	pool := &mockPool{}
	pool.On("Ping", mock.Anything).Return(nil).Once()
	pool.On("Ping", mock.Anything).Return(errors.New("down")).Once()
	backend := newTestPostgresBackend(pool)

	assert.True(t, backend.Available(context.Background()))
	assert.False(t, backend.Available(context.Background()))
	assert.Equal(t, "postgres", backend.Name())
	assert.Equal(t, "postgres://db/shares", backend.LocationURI())
}

func TestPostgresBackend_Migrate(t *testing.T) {
	pool := &mockPool{}
	pool.On("Exec", mock.Anything, Schema, []any(nil)).Return(pgconn.NewCommandTag("CREATE TABLE"), nil).Once()

	require.NoError(t, newTestPostgresBackend(pool).Migrate(context.Background()))
	pool.AssertExpectations(t)
}
