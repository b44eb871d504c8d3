package db

import (
	"database/sql"
	"log"
	"strings"
)

// Кэш выбранного языка на этапе регистрации. В исходном проекте это была
// карта в памяти процесса; здесь — таблица chat_states, чтобы выбор переживал
// рестарт и работал при нескольких воркерах.

// SetChatLanguage сохраняет выбранный язык для чата (код в нижнем регистре).
func SetChatLanguage(chatID int64, languageCode string) error {
	_, err := DB.Exec(`
        INSERT INTO chat_states (chat_id, language_code, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        ON CONFLICT (chat_id) DO UPDATE SET language_code = EXCLUDED.language_code, updated_at = NOW()`,
		chatID, strings.ToLower(languageCode))
	if err != nil {
		log.Printf("SetChatLanguage: ошибка сохранения языка '%s' для chatID %d: %v", languageCode, chatID, err)
	}
	return err
}

// GetChatLanguage возвращает сохранённый язык чата. ErrNotFound, если чат
// ещё не выбирал язык.
func GetChatLanguage(chatID int64) (string, error) {
	var lang sql.NullString
	err := DB.QueryRow("SELECT language_code FROM chat_states WHERE chat_id=$1", chatID).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		log.Printf("GetChatLanguage: ошибка чтения языка для chatID %d: %v", chatID, err)
		return "", err
	}
	return lang.String, nil
}

// ClearChatState удаляет запись о незавершённой регистрации.
// Вызывается после успешного создания пользователя: дальше язык живёт в users.
func ClearChatState(chatID int64) {
	if _, err := DB.Exec("DELETE FROM chat_states WHERE chat_id=$1", chatID); err != nil {
		log.Printf("ClearChatState: ошибка удаления состояния чата %d: %v", chatID, err)
	}
}
