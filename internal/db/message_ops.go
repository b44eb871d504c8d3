package db

import (
	"database/sql"
	"log"

	"supportbot/internal/models"
)

const messageColumns = `id, session_id, sender_id, text, file_id, message_type, original_message_id, relayed_message_id, reply_to_message_id, deleted, created_at`

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.SenderID, &m.Text, &m.FileID, &m.MessageType,
			&m.OriginalMessageID, &m.RelayedMessageID, &m.ReplyToMessageID, &m.Deleted, &m.CreatedAt); err != nil {
			log.Printf("scanMessages: ошибка сканирования строки: %v", err)
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SaveMessage сохраняет запись о сообщении сессии и возвращает её id.
// relayedMessageID нулевой, пока копия не доставлена (сообщения, написанные
// до привязки оператора, дозаполняются при реплее очереди).
func SaveMessage(m models.Message) (int64, error) {
	var id int64
	err := DB.QueryRow(`
        INSERT INTO messages (session_id, sender_id, text, file_id, message_type,
                              original_message_id, relayed_message_id, reply_to_message_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING id`,
		m.SessionID, m.SenderID, m.Text, m.FileID, m.MessageType,
		m.OriginalMessageID, m.RelayedMessageID, m.ReplyToMessageID).Scan(&id)
	if err != nil {
		log.Printf("SaveMessage: ошибка сохранения сообщения сессии %d: %v", m.SessionID, err)
		return 0, err
	}
	return id, nil
}

// UpdateRelayedMessageID записывает id доставленной копии после успешной ретрансляции.
func UpdateRelayedMessageID(messageID int64, relayedMessageID int) error {
	_, err := DB.Exec("UPDATE messages SET relayed_message_id=$1 WHERE id=$2", relayedMessageID, messageID)
	if err != nil {
		log.Printf("UpdateRelayedMessageID: ошибка обновления сообщения %d: %v", messageID, err)
	}
	return err
}

// GetSessionMessages возвращает неудалённые сообщения сессии в порядке создания.
func GetSessionMessages(sessionID int64) ([]models.Message, error) {
	rows, err := DB.Query("SELECT "+messageColumns+` FROM messages
        WHERE session_id=$1 AND deleted=FALSE ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		log.Printf("GetSessionMessages: ошибка выборки сообщений сессии %d: %v", sessionID, err)
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetUnrelayedSessionMessages возвращает сообщения сессии, ещё не доставленные
// второй стороне — накопившийся бэклог времени ожидания оператора.
func GetUnrelayedSessionMessages(sessionID int64) ([]models.Message, error) {
	rows, err := DB.Query("SELECT "+messageColumns+` FROM messages
        WHERE session_id=$1 AND deleted=FALSE AND relayed_message_id IS NULL
        ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		log.Printf("GetUnrelayedSessionMessages: ошибка выборки бэклога сессии %d: %v", sessionID, err)
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessagesByClientID возвращает сообщения всех сессий клиента.
func GetMessagesByClientID(clientID int64) ([]models.Message, error) {
	rows, err := DB.Query(`
        SELECT m.id, m.session_id, m.sender_id, m.text, m.file_id, m.message_type,
               m.original_message_id, m.relayed_message_id, m.reply_to_message_id, m.deleted, m.created_at
        FROM messages m
        JOIN sessions s ON s.id = m.session_id
        WHERE s.client_id = $1 AND m.deleted = FALSE AND s.deleted = FALSE
        ORDER BY m.created_at ASC, m.id ASC`, clientID)
	if err != nil {
		log.Printf("GetMessagesByClientID: ошибка выборки сообщений клиента %d: %v", clientID, err)
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessagesByOperatorID возвращает сообщения всех сессий оператора.
func GetMessagesByOperatorID(operatorID int64) ([]models.Message, error) {
	rows, err := DB.Query(`
        SELECT m.id, m.session_id, m.sender_id, m.text, m.file_id, m.message_type,
               m.original_message_id, m.relayed_message_id, m.reply_to_message_id, m.deleted, m.created_at
        FROM messages m
        JOIN sessions s ON s.id = m.session_id
        WHERE s.operator_id = $1 AND m.deleted = FALSE AND s.deleted = FALSE
        ORDER BY m.created_at ASC, m.id ASC`, operatorID)
	if err != nil {
		log.Printf("GetMessagesByOperatorID: ошибка выборки сообщений оператора %d: %v", operatorID, err)
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// TrashMessage помечает сообщение удалённым.
func TrashMessage(id int64) error {
	res, err := DB.Exec("UPDATE messages SET deleted=TRUE WHERE id=$1 AND deleted=FALSE", id)
	if err != nil {
		log.Printf("TrashMessage: ошибка мягкого удаления сообщения id %d: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
