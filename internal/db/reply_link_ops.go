package db

import (
	"database/sql"
	"log"
)

// Таблица соответствия id сообщений между чатом клиента и чатом оператора.
// Две стороны сессии живут в независимых пространствах message_id Telegram,
// поэтому ответ, пришедший с одной стороны, перед копированием переводится
// в id-пространство другой. В исходном проекте карта жила в памяти процесса
// и не переживала рестарт; здесь связь пишется в БД и в обе стороны.

// UpsertReplyLink записывает пару соответствий для одной успешной копии:
// (fromChat, originalID) -> (toChat, relayedID) и обратную. Повторная запись
// той же пары обновляет значение.
func UpsertReplyLink(sessionID, fromChatID int64, originalID int, toChatID int64, relayedID int) error {
	_, err := DB.Exec(`
        INSERT INTO reply_links (session_id, chat_id, message_id, peer_chat_id, peer_message_id, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW()), ($1, $4, $5, $2, $3, NOW())
        ON CONFLICT (session_id, chat_id, message_id)
        DO UPDATE SET peer_chat_id = EXCLUDED.peer_chat_id, peer_message_id = EXCLUDED.peer_message_id`,
		sessionID, fromChatID, originalID, toChatID, relayedID)
	if err != nil {
		log.Printf("UpsertReplyLink: ошибка записи связи сессии %d (%d:%d -> %d:%d): %v",
			sessionID, fromChatID, originalID, toChatID, relayedID, err)
	}
	return err
}

// LookupReplyLink возвращает id эквивалентного сообщения на другой стороне
// сессии. ErrNotFound, если сообщение второй стороне не копировалось — в этом
// случае ретранслятор отправляет копию без ответа, это не ошибка.
func LookupReplyLink(sessionID, chatID int64, messageID int) (int, error) {
	var peerMessageID int
	err := DB.QueryRow(`
        SELECT peer_message_id FROM reply_links
        WHERE session_id=$1 AND chat_id=$2 AND message_id=$3`,
		sessionID, chatID, messageID).Scan(&peerMessageID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		log.Printf("LookupReplyLink: ошибка поиска связи сессии %d (%d:%d): %v", sessionID, chatID, messageID, err)
		return 0, err
	}
	return peerMessageID, nil
}
