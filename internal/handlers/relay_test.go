package handlers

import (
	"testing"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"

	"supportbot/internal/constants"
	"supportbot/internal/db"
)

func TestClassifyIncoming(t *testing.T) {
	tests := []struct {
		name       string
		msg        *tgbotapi.Message
		wantType   string
		wantText   string
		wantFileID string
	}{
		{
			name:     "plain text",
			msg:      &tgbotapi.Message{Text: "salom"},
			wantType: constants.MSG_TYPE_TEXT,
			wantText: "salom",
		},
		{
			name: "photo takes the largest size and keeps the caption",
			msg: &tgbotapi.Message{
				Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
				Caption: "подпись",
			},
			wantType:   constants.MSG_TYPE_PHOTO,
			wantText:   "подпись",
			wantFileID: "large",
		},
		{
			name:       "video",
			msg:        &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "vid"}},
			wantType:   constants.MSG_TYPE_VIDEO,
			wantFileID: "vid",
		},
		{
			name:       "voice",
			msg:        &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "voice"}},
			wantType:   constants.MSG_TYPE_VOICE,
			wantFileID: "voice",
		},
		{
			name:       "audio",
			msg:        &tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "audio"}},
			wantType:   constants.MSG_TYPE_AUDIO,
			wantFileID: "audio",
		},
		{
			name:       "video note",
			msg:        &tgbotapi.Message{VideoNote: &tgbotapi.VideoNote{FileID: "note"}},
			wantType:   constants.MSG_TYPE_VIDEO_NOTE,
			wantFileID: "note",
		},
		{
			name:       "sticker",
			msg:        &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "stick"}},
			wantType:   constants.MSG_TYPE_STICKER,
			wantFileID: "stick",
		},
		{
			// Telegram присылает GIF одновременно с Document: побеждает GIF.
			name: "gif wins over its document twin",
			msg: &tgbotapi.Message{
				Animation: &tgbotapi.Animation{FileID: "anim"},
				Document:  &tgbotapi.Document{FileID: "doc"},
			},
			wantType:   constants.MSG_TYPE_GIF,
			wantFileID: "anim",
		},
		{
			name:       "document",
			msg:        &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc"}},
			wantType:   constants.MSG_TYPE_DOCUMENT,
			wantFileID: "doc",
		},
		{
			name:     "location has no file",
			msg:      &tgbotapi.Message{Location: &tgbotapi.Location{Latitude: 41.3, Longitude: 69.2}},
			wantType: constants.MSG_TYPE_LOCATION,
		},
		{
			name:     "poll keeps the question as text",
			msg:      &tgbotapi.Message{Poll: &tgbotapi.Poll{Question: "вопрос"}},
			wantType: constants.MSG_TYPE_POLL,
			wantText: "вопрос",
		},
		{
			name:     "empty message is unknown",
			msg:      &tgbotapi.Message{},
			wantType: constants.MSG_TYPE_UNKNOWN,
		},
		{
			// Текст побеждает всё остальное.
			name:     "text wins over attachments",
			msg:      &tgbotapi.Message{Text: "t", Document: &tgbotapi.Document{FileID: "doc"}},
			wantType: constants.MSG_TYPE_TEXT,
			wantText: "t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgType, text, fileID := classifyIncoming(tt.msg)
			assert.Equal(t, tt.wantType, msgType)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantFileID, fileID)
		})
	}
}

func TestExceedsAttachmentLimit(t *testing.T) {
	assert.False(t, exceedsAttachmentLimit(0))
	assert.False(t, exceedsAttachmentLimit(constants.MAX_ATTACHMENT_BYTES-1))
	assert.False(t, exceedsAttachmentLimit(constants.MAX_ATTACHMENT_BYTES), "файл ровно в лимит проходит")
	assert.True(t, exceedsAttachmentLimit(constants.MAX_ATTACHMENT_BYTES+1))
	assert.True(t, exceedsAttachmentLimit(25*1024*1024))
}

// Память связей между id-пространствами двух чатов, как reply_links:
// каждая успешная копия записывается в обе стороны.
type fakeLinkTable struct {
	links map[[3]int64]int
}

func newFakeLinkTable() *fakeLinkTable {
	return &fakeLinkTable{links: make(map[[3]int64]int)}
}

func (ft *fakeLinkTable) upsert(sessionID, fromChatID int64, originalID int, toChatID int64, relayedID int) {
	ft.links[[3]int64{sessionID, fromChatID, int64(originalID)}] = relayedID
	ft.links[[3]int64{sessionID, toChatID, int64(relayedID)}] = originalID
}

func (ft *fakeLinkTable) lookup(sessionID, chatID int64, messageID int) (int, error) {
	peer, ok := ft.links[[3]int64{sessionID, chatID, int64(messageID)}]
	if !ok {
		return 0, db.ErrNotFound
	}
	return peer, nil
}

func TestResolveReplyTarget(t *testing.T) {
	table := newFakeLinkTable()
	table.upsert(7, 100, 11, 200, 21)

	t.Run("без ответа", func(t *testing.T) {
		assert.Zero(t, resolveReplyTarget(table.lookup, 7, 100, nil))
	})

	t.Run("известное сообщение переводится", func(t *testing.T) {
		got := resolveReplyTarget(table.lookup, 7, 100, &tgbotapi.Message{MessageID: 11})
		assert.Equal(t, 21, got)
	})

	t.Run("неретранслированное сообщение даёт 0", func(t *testing.T) {
		got := resolveReplyTarget(table.lookup, 7, 100, &tgbotapi.Message{MessageID: 99})
		assert.Zero(t, got)
	})

	t.Run("чужая сессия не видна", func(t *testing.T) {
		got := resolveReplyTarget(table.lookup, 8, 100, &tgbotapi.Message{MessageID: 11})
		assert.Zero(t, got)
	})
}

// Цепочка ответов сохраняется через два скачка ретрансляции: ответ на копию
// возвращается в исходный чат ответом на оригинал, породивший эту копию.
func TestReplyChainSurvivesRoundTrip(t *testing.T) {
	const (
		sessionID  = int64(42)
		clientChat = int64(1000)
		operChat   = int64(2000)
	)
	table := newFakeLinkTable()

	// Скачок 1: сообщение клиента 11 скопировано оператору как 21.
	table.upsert(sessionID, clientChat, 11, operChat, 21)

	// Скачок 2: оператор отвечает на копию 21; ответ должен указать на оригинал 11.
	replyTo := resolveReplyTarget(table.lookup, sessionID, operChat, &tgbotapi.Message{MessageID: 21})
	assert.Equal(t, 11, replyTo)

	// Копия ответа (id 12 в чате клиента) тоже записывается в обе стороны.
	table.upsert(sessionID, operChat, 22, clientChat, 12)

	// Клиент отвечает на доставленный ответ — попадаем в сообщение оператора 22.
	replyTo = resolveReplyTarget(table.lookup, sessionID, clientChat, &tgbotapi.Message{MessageID: 12})
	assert.Equal(t, 22, replyTo)
}
