package repositories_test

import (
	"context"
	"testing"

	"soundsocial/internal/models"
	"soundsocial/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistRepository_CreateOrGet_ReturnsWinnerOnDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repositories.NewArtistRepository(db)

	winnerID := uuid.New()

	mock.ExpectQuery(`INSERT INTO "artists"`).
		WillReturnError(uniqueViolation())
	mock.ExpectQuery(`SELECT (.+) FROM "artists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "mbid", "name"}).
			AddRow(winnerID.String(), "a-1", "Radiohead"))

	artist, err := repo.CreateOrGet(context.Background(), &models.Artist{
		MBID: "a-1",
		Name: "Radiohead",
	})

	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, winnerID, artist.ID)
	assert.Equal(t, "Radiohead", artist.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtistRepository_GetByMBID_MissingIsNilNotError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repositories.NewArtistRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "artists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "mbid", "name"}))

	artist, err := repo.GetByMBID(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, artist)
	assert.NoError(t, mock.ExpectationsWereMet())
}
