package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// SendTextMessage отправляет текстовое сообщение без клавиатуры.
func SendTextMessage(botClient *BotClient, chatID int64, text string) (tgbotapi.Message, error) {
	if botClient == nil || botClient.api == nil {
		log.Println("SendTextMessage: BotClient или его API не инициализирован.")
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := botClient.Send(msg)
	if err != nil {
		log.Printf("SendTextMessage: ОШИБКА отправки сообщения для chatID %d: %v", chatID, err)
	}
	return sent, err
}

// SendTextWithInlineKeyboard отправляет текст с inline-клавиатурой.
func SendTextWithInlineKeyboard(botClient *BotClient, chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	if botClient == nil || botClient.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	sent, err := botClient.Send(msg)
	if err != nil {
		log.Printf("SendTextWithInlineKeyboard: ОШИБКА отправки для chatID %d: %v", chatID, err)
	}
	return sent, err
}

// SendTextWithReplyKeyboard отправляет текст с reply-клавиатурой.
func SendTextWithReplyKeyboard(botClient *BotClient, chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	if botClient == nil || botClient.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	sent, err := botClient.Send(msg)
	if err != nil {
		log.Printf("SendTextWithReplyKeyboard: ОШИБКА отправки для chatID %d: %v", chatID, err)
	}
	return sent, err
}

// SendTextRemovingKeyboard отправляет текст и убирает reply-клавиатуру.
func SendTextRemovingKeyboard(botClient *BotClient, chatID int64, text string) (tgbotapi.Message, error) {
	if botClient == nil || botClient.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	sent, err := botClient.Send(msg)
	if err != nil {
		log.Printf("SendTextRemovingKeyboard: ОШИБКА отправки для chatID %d: %v", chatID, err)
	}
	return sent, err
}

// DeleteMessage удаляет сообщение. Ошибка удаления (например, сообщение уже
// удалено) логируется и не считается фатальной.
func DeleteMessage(botClient *BotClient, chatID int64, messageID int) bool {
	if botClient == nil || botClient.api == nil {
		log.Println("DeleteMessage: BotClient или его API не инициализирован.")
		return false
	}
	if messageID == 0 {
		return false
	}
	deleteConfig := tgbotapi.NewDeleteMessage(chatID, messageID)
	_, err := botClient.Request(deleteConfig)
	if err != nil {
		log.Printf("DeleteMessage: не удалось удалить сообщение %d в чате %d: %v", messageID, chatID, err)
		return false
	}
	return true
}
