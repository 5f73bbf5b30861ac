package handler

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/decorviz/decor-serve/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestMarkFinalImageDemotesPreviousFinal(t *testing.T) {
	db, mock := newMockDB(t)

	image := &models.RoomImage{RoomID: 7}
	image.ID = 42

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "room_images" SET .*"is_final".* WHERE \(room_id = .* AND is_final = `).
		WithArgs(false, sqlmock.AnyArg(), int64(7), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "room_images" SET .*"is_final".* WHERE .*"id" = `).
		WithArgs(true, sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, markFinalImage(db, 7, image))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFinalImageRollsBackWhenDemoteFails(t *testing.T) {
	db, mock := newMockDB(t)

	image := &models.RoomImage{RoomID: 7}
	image.ID = 42

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "room_images" SET .*"is_final".* WHERE \(room_id = `).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := markFinalImage(db, 7, image)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFinalImageRollsBackWhenPromoteFails(t *testing.T) {
	db, mock := newMockDB(t)

	image := &models.RoomImage{RoomID: 7}
	image.ID = 42

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "room_images" SET .*"is_final".* WHERE \(room_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "room_images" SET .*"is_final".* WHERE .*"id" = `).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := markFinalImage(db, 7, image)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
