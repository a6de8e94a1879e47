package services

import (
	"context"
	"errors"
	"testing"

	"soundsocial/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestTransactionService_Execute(t *testing.T) {
	fnError := errors.New("rating write failed")

	tests := []struct {
		name        string
		expect      func(sqlmock.Sqlmock)
		fn          func(context.Context, *gorm.DB) error
		wantErr     error
		wantErrText string
	}{
		{
			name: "commits when the function succeeds",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *gorm.DB) error {
				return nil
			},
		},
		{
			name: "rolls back and returns the function error unchanged",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, tx *gorm.DB) error {
				return fnError
			},
			wantErr: fnError,
		},
		{
			name: "converts a panic into an error after rollback",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, tx *gorm.DB) error {
				panic("aggregate recompute blew up")
			},
			wantErrText: "panic during transaction",
		},
		{
			name: "surfaces a commit failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("connection lost"))
			},
			fn: func(ctx context.Context, tx *gorm.DB) error {
				return nil
			},
			wantErrText: "failed to commit transaction",
		},
		{
			name: "reports a rollback failure alongside the function error",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errors.New("connection lost"))
			},
			fn: func(ctx context.Context, tx *gorm.DB) error {
				return fnError
			},
			wantErrText: "transaction rollback failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock := setupTestDB(t)
			tt.expect(mock)

			service := NewTransactionService(database.DB{SQL: gormDB})
			err := service.Execute(context.Background(), tt.fn)

			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// The gorm begin call must carry the read-committed isolation request; the
// option struct is what the rating recompute's snapshot discipline hangs
// on, even though the mock driver accepts any isolation level.
func TestTransactionService_Execute_PassesTxOptions(t *testing.T) {
	gormDB, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	service := NewTransactionService(database.DB{SQL: gormDB})

	var sawTx bool
	err := service.Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		// A gorm tx handle born from Begin(&sql.TxOptions{...}) carries a
		// *sql.Tx conn pool rather than the root *sql.DB.
		_, isTx := tx.Statement.ConnPool.(gorm.TxCommitter)
		sawTx = isTx
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawTx, "function must run on the transaction handle")
	assert.NoError(t, mock.ExpectationsWereMet())
}
