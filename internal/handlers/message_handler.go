package handlers

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// HandleMessage — точка входа для всех входящих сообщений.
// Незарегистрированный чат всегда попадает в поток регистрации,
// зарегистрированный — в таблицу переходов.
func (bh *BotHandler) HandleMessage(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	ec := eventContext{Update: update, ChatID: chatID}
	user, ok := bh.getUserFromDB(chatID)
	if !ok {
		bh.handleRegistrationMessage(ec)
		return
	}
	ec.User = user
	bh.dispatch(ec)
}
