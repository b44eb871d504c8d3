package models

import (
	"database/sql"
	"time"
)

// Message represents one relayed chat item.
// OriginalMessageID — id сообщения в чате отправителя (назначен Telegram),
// RelayedMessageID — id копии в чате получателя; NULL, пока копия не доставлена
// (например, сообщение сохранено во время ожидания оператора).
// ReplyToMessageID ссылается на OriginalMessageID другого сообщения той же сессии.
type Message struct {
	ID                int64          `json:"id"`
	SessionID         int64          `json:"session_id"`
	SenderID          int64          `json:"sender_id"`
	Text              sql.NullString `json:"text"`
	FileID            sql.NullString `json:"file_id"`
	MessageType       string         `json:"message_type"`
	OriginalMessageID int            `json:"original_message_id"`
	RelayedMessageID  sql.NullInt64  `json:"relayed_message_id"`
	ReplyToMessageID  sql.NullInt64  `json:"reply_to_message_id"`
	Deleted           bool           `json:"deleted"`
	CreatedAt         time.Time      `json:"created_at"`
}

// ReplyLink — одна запись таблицы соответствия id сообщений между двумя чатами
// сессии. Пишется в обе стороны после каждой успешной копии, чтобы ответ с любой
// стороны можно было переадресовать в id-пространство другой стороны.
type ReplyLink struct {
	SessionID     int64
	ChatID        int64
	MessageID     int
	PeerChatID    int64
	PeerMessageID int
}
