package handlers

import (
	"database/sql"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"supportbot/internal/constants"
	"supportbot/internal/db"
	"supportbot/internal/locales"
	"supportbot/internal/models"
)

// classifyIncoming определяет тип сообщения, его текст и file_id вложения.
// Порядок проверок фиксирован: у сообщения с несколькими полями побеждает
// первый совпавший тип (например, GIF приходит вместе с Document).
func classifyIncoming(msg *tgbotapi.Message) (msgType, text, fileID string) {
	switch {
	case msg.Text != "":
		return constants.MSG_TYPE_TEXT, msg.Text, ""
	case len(msg.Photo) > 0:
		// Последний элемент — самое крупное разрешение.
		return constants.MSG_TYPE_PHOTO, msg.Caption, msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		return constants.MSG_TYPE_VIDEO, msg.Caption, msg.Video.FileID
	case msg.Voice != nil:
		return constants.MSG_TYPE_VOICE, msg.Caption, msg.Voice.FileID
	case msg.Audio != nil:
		return constants.MSG_TYPE_AUDIO, msg.Caption, msg.Audio.FileID
	case msg.VideoNote != nil:
		return constants.MSG_TYPE_VIDEO_NOTE, "", msg.VideoNote.FileID
	case msg.Sticker != nil:
		return constants.MSG_TYPE_STICKER, "", msg.Sticker.FileID
	case msg.Animation != nil:
		return constants.MSG_TYPE_GIF, msg.Caption, msg.Animation.FileID
	case msg.Document != nil:
		return constants.MSG_TYPE_DOCUMENT, msg.Caption, msg.Document.FileID
	case msg.Location != nil:
		return constants.MSG_TYPE_LOCATION, "", ""
	case msg.Poll != nil:
		return constants.MSG_TYPE_POLL, msg.Poll.Question, ""
	default:
		return constants.MSG_TYPE_UNKNOWN, "", ""
	}
}

// exceedsAttachmentLimit сообщает, превышает ли вложение допустимый размер.
// Граница включительно: файл ровно в лимит ещё проходит.
func exceedsAttachmentLimit(size int64) bool {
	return size > constants.MAX_ATTACHMENT_BYTES
}

type replyLookupFunc func(sessionID, chatID int64, messageID int) (int, error)

// resolveReplyTarget переводит ответ в id-пространство другой стороны сессии.
// 0 — отвеченное сообщение второй стороне не копировалось, копия уходит
// обычным сообщением.
func resolveReplyTarget(lookup replyLookupFunc, sessionID, chatID int64, replyTo *tgbotapi.Message) int {
	if replyTo == nil {
		return 0
	}
	peer, err := lookup(sessionID, chatID, replyTo.MessageID)
	if err != nil {
		return 0
	}
	return peer
}

// relayFromClient обрабатывает сообщение клиента в шаге in_chat.
// Пока сессия PENDING, сообщение сохраняется и будет доставлено оператору
// при подключении; в PROCESSING — копируется оператору сразу.
func (bh *BotHandler) relayFromClient(ec eventContext) {
	msg := ec.Update.Message

	session, operatorChatID, err := db.GetProcessingSessionByClientChatID(ec.ChatID)
	if err == db.ErrNotFound {
		// Оператор ещё не подключился: пишем в очередь PENDING-сессии.
		pending, perr := db.GetActiveSessionByClientChatID(ec.ChatID)
		if perr == db.ErrNotFound {
			// Шаг in_chat без сессии — клиента вернули в чат после сбоя.
			pending, perr = db.CreateSessionIfAbsent(ec.User.ID)
		}
		if perr != nil {
			log.Printf("Ошибка получения сессии клиента %d: %v", ec.User.ID, perr)
			return
		}
		bh.persistAndRelay(pending.ID, ec.User, msg, ec.ChatID, 0)
		return
	}
	if err != nil {
		log.Printf("Ошибка поиска активной сессии клиента %d: %v", ec.User.ID, err)
		return
	}
	bh.persistAndRelay(session.ID, ec.User, msg, ec.ChatID, operatorChatID)
}

// relayFromOperator обрабатывает сообщение занятого оператора.
func (bh *BotHandler) relayFromOperator(ec eventContext) {
	session, clientChatID, err := db.GetProcessingSessionByOperatorChatID(ec.ChatID)
	if err != nil {
		if err != db.ErrNotFound {
			log.Printf("Ошибка поиска сессии оператора %d: %v", ec.User.ID, err)
		}
		return
	}
	bh.persistAndRelay(session.ID, ec.User, ec.Update.Message, ec.ChatID, clientChatID)
}

// persistAndRelay сохраняет сообщение и, если toChatID задан, копирует его
// на другую сторону с переносом reply-связи в чужое пространство id.
// Слишком большие вложения отклоняются целиком: ни копии, ни записи в БД.
func (bh *BotHandler) persistAndRelay(sessionID int64, sender models.User, msg *tgbotapi.Message, fromChatID, toChatID int64) {
	msgType, text, fileID := classifyIncoming(msg)

	if fileID != "" {
		size, err := bh.Deps.BotClient.GetFileSize(fileID)
		if err != nil {
			log.Printf("Ошибка получения размера файла %s: %v", fileID, err)
		} else if exceedsAttachmentLimit(size) {
			bh.sendText(fromChatID, bh.localize(fromChatID, locales.KeyFileTooLarge))
			return
		}
	}

	record := models.Message{
		SessionID:         sessionID,
		SenderID:          sender.ID,
		MessageType:       msgType,
		OriginalMessageID: msg.MessageID,
	}
	if text != "" {
		record.Text = sql.NullString{String: text, Valid: true}
	}
	if fileID != "" {
		record.FileID = sql.NullString{String: fileID, Valid: true}
	}
	if msg.ReplyToMessage != nil {
		record.ReplyToMessageID = sql.NullInt64{Int64: int64(msg.ReplyToMessage.MessageID), Valid: true}
	}

	recordID, err := db.SaveMessage(record)
	if err != nil {
		log.Printf("Ошибка сохранения сообщения в сессии %d: %v", sessionID, err)
		return
	}
	if toChatID == 0 {
		return
	}

	replyTo := resolveReplyTarget(db.LookupReplyLink, sessionID, fromChatID, msg.ReplyToMessage)

	relayedID, err := bh.Deps.BotClient.CopyMessage(fromChatID, msg.MessageID, toChatID, replyTo)
	if err != nil {
		log.Printf("Ошибка копирования сообщения %d из чата %d: %v", msg.MessageID, fromChatID, err)
		bh.sendText(fromChatID, bh.localize(fromChatID, locales.KeyRelayFailed))
		return
	}
	if err := db.UpdateRelayedMessageID(recordID, relayedID); err != nil {
		log.Printf("Ошибка сохранения id копии для сообщения %d: %v", recordID, err)
	}
	if err := db.UpsertReplyLink(sessionID, fromChatID, msg.MessageID, toChatID, relayedID); err != nil {
		log.Printf("Ошибка сохранения связи ответов для сообщения %d: %v", recordID, err)
	}
}
