package handlers

import (
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// HandleCallback — точка входа для нажатий inline-кнопок.
func (bh *BotHandler) HandleCallback(update tgbotapi.Update) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message == nil {
		return
	}
	chatID := update.CallbackQuery.Message.Chat.ID

	// Подтверждаем нажатие, чтобы у клиента пропали "часики".
	callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
	if _, err := bh.Deps.BotClient.Request(callback); err != nil {
		log.Printf("Ошибка подтверждения callback в чате %d: %v", chatID, err)
	}

	ec := eventContext{Update: update, ChatID: chatID}
	user, ok := bh.getUserFromDB(chatID)
	if !ok {
		bh.handleRegistrationCallback(ec)
		return
	}
	ec.User = user
	bh.dispatch(ec)
}
