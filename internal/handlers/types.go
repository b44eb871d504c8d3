package handlers

import (
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"supportbot/internal/config"
	"supportbot/internal/db"
	"supportbot/internal/locales"
	"supportbot/internal/models"
	"supportbot/internal/telegram_api"
)

// HandlerDependencies содержит все зависимости, необходимые для обработчиков.
type HandlerDependencies struct {
	Config    *config.Config
	BotClient *telegram_api.BotClient
}

// BotHandler инкапсулирует логику обработки сообщений и коллбэков.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.BotClient == nil {
		panic("Не все зависимости для BotHandler были предоставлены.")
	}
	return &BotHandler{Deps: deps}
}

// eventContext — всё, что нужно действию перехода: обновление, пользователь
// (пустой для незарегистрированного чата) и chatID.
type eventContext struct {
	Update tgbotapi.Update
	User   models.User
	ChatID int64
}

// getUserFromDB получает пользователя из БД; false, если его нет.
func (bh *BotHandler) getUserFromDB(chatID int64) (models.User, bool) {
	user, err := db.GetUserByChatID(chatID)
	if err != nil {
		if err != db.ErrNotFound {
			log.Printf("Ошибка получения пользователя %d из БД: %v", chatID, err)
		}
		return models.User{}, false
	}
	return user, true
}

// localize возвращает текст по ключу на языке чата.
func (bh *BotHandler) localize(chatID int64, key string) string {
	return locales.Get(key, db.GetLanguageByChatID(chatID))
}

// sendText — сокращение для отправки простого текста.
func (bh *BotHandler) sendText(chatID int64, text string) {
	if _, err := telegram_api.SendTextMessage(bh.Deps.BotClient, chatID, text); err != nil {
		log.Printf("sendText: ошибка отправки в чат %d: %v", chatID, err)
	}
}

// deleteMessageHelper удаляет сообщение, игнорируя ошибки удаления.
func (bh *BotHandler) deleteMessageHelper(chatID int64, messageID int) {
	telegram_api.DeleteMessage(bh.Deps.BotClient, chatID, messageID)
}
