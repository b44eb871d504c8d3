package handlers

import (
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"supportbot/internal/constants"
	"supportbot/internal/db"
	"supportbot/internal/locales"
	"supportbot/internal/telegram_api"
)

// Поток регистрации: выбор языка -> запрос контакта -> создание клиента.
// До создания записи в users весь прогресс живёт в таблице chat_states.

func (bh *BotHandler) handleRegistrationMessage(ec eventContext) {
	msg := ec.Update.Message
	if msg.Contact != nil {
		bh.finishRegistration(ec)
		return
	}
	if _, err := db.GetChatLanguage(ec.ChatID); err == nil {
		// Язык уже выбран, но контакт ещё не получен.
		bh.sendShareContactPrompt(ec.ChatID)
		return
	}
	bh.sendLanguageKeyboard(ec.ChatID)
}

func (bh *BotHandler) handleRegistrationCallback(ec eventContext) {
	data := ec.Update.CallbackQuery.Data
	switch data {
	case constants.LANG_UZ, constants.LANG_RU, constants.LANG_EN:
	default:
		return
	}
	if err := db.SetChatLanguage(ec.ChatID, data); err != nil {
		log.Printf("Ошибка сохранения языка чата %d: %v", ec.ChatID, err)
		return
	}
	// Убираем клавиатуру выбора языка, чтобы не нажали второй раз.
	bh.deleteMessageHelper(ec.ChatID, ec.Update.CallbackQuery.Message.MessageID)
	bh.sendShareContactPrompt(ec.ChatID)
}

func (bh *BotHandler) sendLanguageKeyboard(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha 🇺🇿", constants.LANG_UZ),
			tgbotapi.NewInlineKeyboardButtonData("Русский 🇷🇺", constants.LANG_RU),
			tgbotapi.NewInlineKeyboardButtonData("English 🇬🇧", constants.LANG_EN),
		),
	)
	text := locales.Get(locales.KeyChooseLanguage, constants.LANG_UZ)
	if _, err := telegram_api.SendTextWithInlineKeyboard(bh.Deps.BotClient, chatID, text, keyboard); err != nil {
		log.Printf("Ошибка отправки выбора языка в чат %d: %v", chatID, err)
	}
}

func (bh *BotHandler) sendShareContactPrompt(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(bh.localize(chatID, locales.KeyShareContactButton)),
		),
	)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true
	if _, err := telegram_api.SendTextWithReplyKeyboard(bh.Deps.BotClient, chatID, bh.localize(chatID, locales.KeyShareContact), keyboard); err != nil {
		log.Printf("Ошибка отправки запроса контакта в чат %d: %v", chatID, err)
	}
}

// finishRegistration создает клиента по присланному контакту.
// Принимается только собственный контакт отправителя: у чужого контакта
// contact.user_id не совпадает с from.id (или отсутствует вовсе).
func (bh *BotHandler) finishRegistration(ec eventContext) {
	msg := ec.Update.Message
	contact := msg.Contact
	if msg.From == nil || contact.UserID != msg.From.ID {
		bh.sendText(ec.ChatID, bh.localize(ec.ChatID, locales.KeyShareOtherContact))
		return
	}

	lang, err := db.GetChatLanguage(ec.ChatID)
	if err != nil {
		// Контакт пришёл до выбора языка — возвращаем на первый шаг.
		bh.sendLanguageKeyboard(ec.ChatID)
		return
	}

	fullName := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	user, err := db.RegisterClient(ec.ChatID, fullName, contact.PhoneNumber, lang)
	if err != nil {
		if err == db.ErrConflict {
			// Гонка двух апдейтов: пользователь уже создан, продолжаем как обычно.
			user, _ = db.GetUserByChatID(ec.ChatID)
		} else {
			log.Printf("Ошибка регистрации клиента %d: %v", ec.ChatID, err)
			return
		}
	}
	log.Printf("Зарегистрирован новый клиент: id=%d, chat_id=%d", user.ID, user.ChatID)
	// Язык теперь в записи пользователя, черновик регистрации больше не нужен.
	db.ClearChatState(ec.ChatID)

	if _, err := telegram_api.SendTextRemovingKeyboard(bh.Deps.BotClient, ec.ChatID, bh.localize(ec.ChatID, locales.KeySuccessShareContact)); err != nil {
		log.Printf("Ошибка отправки подтверждения регистрации в чат %d: %v", ec.ChatID, err)
	}
	ec.User = user
	bh.sendConnectOperatorButton(ec)
}
