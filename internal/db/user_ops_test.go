package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Подменяет глобальный пул на sqlmock и возвращает функцию восстановления.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	orig := DB
	DB = mockDB
	t.Cleanup(func() {
		DB = orig
		mockDB.Close()
	})
	return mock
}

func userRow(id, chatID int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "chat_id", "role", "full_name", "phone", "languages",
		"status", "conversation_step", "deleted", "created_at",
	}).AddRow(id, chatID, "CLIENT", "Алишер", "+998901234567", "{UZ}",
		"NOT_WORKING", "awaiting_operator", false, time.Now())
}

// Повторная регистрация после мягкого удаления должна оживить старую строку,
// а не биться об уникальность chat_id.
func TestRegisterClientRevivesSoftDeletedRow(t *testing.T) {
	mock := setupMockDB(t)

	// Мягко удалённая запись не видна проверке существования.
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE chat_id=\$1 AND deleted=FALSE\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`(?s)INSERT INTO users .*ON CONFLICT \(chat_id\) DO UPDATE SET.*deleted=FALSE.*WHERE users\.deleted=TRUE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM users WHERE chat_id=\$1 AND deleted=FALSE`).
		WillReturnRows(userRow(7, 100500))

	u, err := RegisterClient(100500, "Алишер", "+998901234567", "uz")
	require.NoError(t, err)
	assert.Equal(t, int64(100500), u.ChatID)
	assert.False(t, u.Deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterClientRejectsActiveDuplicate(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE chat_id=\$1 AND deleted=FALSE\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := RegisterClient(100500, "Алишер", "+998901234567", "uz")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
