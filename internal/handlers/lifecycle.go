package handlers

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"supportbot/internal/constants"
	"supportbot/internal/db"
	"supportbot/internal/locales"
	"supportbot/internal/models"
	"supportbot/internal/telegram_api"
)

// sendConnectOperatorButton предлагает клиенту кнопку вызова оператора.
func (bh *BotHandler) sendConnectOperatorButton(ec eventContext) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(bh.localize(ec.ChatID, locales.KeyConnectButton), constants.CALLBACK_CONNECT_OPERATOR),
		),
	)
	if _, err := telegram_api.SendTextWithInlineKeyboard(bh.Deps.BotClient, ec.ChatID, bh.localize(ec.ChatID, locales.KeyTextConnectButton), keyboard); err != nil {
		log.Printf("Ошибка отправки кнопки оператора в чат %d: %v", ec.ChatID, err)
	}
}

// connectOperator открывает (или переиспользует) PENDING-сессию клиента
// и переводит его в режим чата. Сообщения клиента с этого момента копятся
// в сессии до подключения оператора.
func (bh *BotHandler) connectOperator(ec eventContext) {
	if ec.Update.CallbackQuery != nil {
		bh.deleteMessageHelper(ec.ChatID, ec.Update.CallbackQuery.Message.MessageID)
	}

	session, err := db.CreateSessionIfAbsent(ec.User.ID)
	if err != nil {
		log.Printf("Ошибка создания сессии для клиента %d: %v", ec.User.ID, err)
		return
	}
	if err := db.UpdateUserStep(ec.ChatID, constants.STEP_IN_CHAT); err != nil {
		log.Printf("Ошибка обновления шага клиента %d: %v", ec.ChatID, err)
		return
	}
	log.Printf("Клиент %d встал в очередь, сессия %d", ec.User.ID, session.ID)
	bh.sendText(ec.ChatID, bh.localize(ec.ChatID, locales.KeyWriteToOperator))
}

// sendStartWorkButton предлагает оператору начать приём клиентов.
func (bh *BotHandler) sendStartWorkButton(ec eventContext) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(bh.localize(ec.ChatID, locales.KeyStartWorkButton), constants.CALLBACK_START_WORK),
		),
	)
	if _, err := telegram_api.SendTextWithInlineKeyboard(bh.Deps.BotClient, ec.ChatID, bh.localize(ec.ChatID, locales.KeyStartWork), keyboard); err != nil {
		log.Printf("Ошибка отправки кнопки начала работы в чат %d: %v", ec.ChatID, err)
	}
}

// startWork пытается привязать к оператору ближайшую подходящую по языкам
// PENDING-сессию. Подбор и смена статусов атомарны на стороне БД.
func (bh *BotHandler) startWork(ec eventContext) {
	if ec.Update.CallbackQuery != nil {
		bh.deleteMessageHelper(ec.ChatID, ec.Update.CallbackQuery.Message.MessageID)
	}

	// Повторное нажатие уже занятым оператором не должно привязать вторую сессию.
	if _, _, err := db.GetProcessingSessionByOperatorChatID(ec.ChatID); err == nil {
		return
	}
	bh.tryBindNext(ec)
}

// tryBindNext — общий для startWork и endChat подбор следующего клиента.
func (bh *BotHandler) tryBindNext(ec eventContext) {
	session, clientChatID, err := db.BindNextPendingSession(ec.User, bh.Deps.Config.MatchStrategy)
	if err == db.ErrConflict {
		// Оператор уже занят (дубликат нажатия) — молча игнорируем.
		return
	}
	if err == db.ErrNoMatch {
		bh.sendText(ec.ChatID, bh.localize(ec.ChatID, locales.KeyNotFoundPendingClient))
		bh.sendStartWorkButton(ec)
		return
	}
	if err != nil {
		log.Printf("Ошибка подбора сессии для оператора %d: %v", ec.User.ID, err)
		return
	}
	log.Printf("Оператор %d взял сессию %d (клиент chat_id=%d)", ec.User.ID, session.ID, clientChatID)

	lang := db.GetLanguageByChatID(ec.ChatID)
	header := fmt.Sprintf(locales.Get(locales.KeyClientChatHeader, lang), clientChatID)
	if _, err := telegram_api.SendTextWithReplyKeyboard(bh.Deps.BotClient, ec.ChatID, header, operatorChatKeyboard(lang)); err != nil {
		log.Printf("Ошибка отправки заголовка чата оператору %d: %v", ec.ChatID, err)
	}

	bh.replayBacklog(session, clientChatID, ec.ChatID)
}

// operatorChatKeyboard — клавиатура занятого оператора с командами завершения.
func operatorChatKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(locales.Get(locales.KeyEndChat, lang))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(locales.Get(locales.KeyEndWork, lang))),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// replayBacklog доставляет оператору сообщения, накопленные клиентом,
// пока сессия ждала в очереди. Порядок — порядок сохранения.
func (bh *BotHandler) replayBacklog(session models.Session, clientChatID, operatorChatID int64) {
	backlog, err := db.GetUnrelayedSessionMessages(session.ID)
	if err != nil {
		log.Printf("Ошибка чтения очереди сообщений сессии %d: %v", session.ID, err)
		return
	}
	for _, m := range backlog {
		replyTo := 0
		if m.ReplyToMessageID.Valid {
			if peer, err := db.LookupReplyLink(session.ID, clientChatID, int(m.ReplyToMessageID.Int64)); err == nil {
				replyTo = peer
			}
		}
		relayedID, err := bh.Deps.BotClient.CopyMessage(clientChatID, m.OriginalMessageID, operatorChatID, replyTo)
		if err != nil {
			log.Printf("Ошибка доставки отложенного сообщения %d: %v", m.ID, err)
			continue
		}
		if err := db.UpdateRelayedMessageID(m.ID, relayedID); err != nil {
			log.Printf("Ошибка сохранения id копии для сообщения %d: %v", m.ID, err)
		}
		if err := db.UpsertReplyLink(session.ID, clientChatID, m.OriginalMessageID, operatorChatID, relayedID); err != nil {
			log.Printf("Ошибка сохранения связи ответов для сообщения %d: %v", m.ID, err)
		}
	}
}

// endChat завершает текущую сессию оператора, отправляет клиенту запрос
// оценки и сразу пытается подобрать оператору следующего клиента.
func (bh *BotHandler) endChat(ec eventContext) {
	session, clientChatID, err := db.GetProcessingSessionByOperatorChatID(ec.ChatID)
	if err != nil {
		return
	}
	if err := db.CompleteSession(session.ID); err != nil {
		log.Printf("Ошибка завершения сессии %d: %v", session.ID, err)
		return
	}
	if err := db.UpdateOperatorStatus(ec.ChatID, constants.STATUS_FREE); err != nil {
		log.Printf("Ошибка обновления статуса оператора %d: %v", ec.ChatID, err)
	}
	log.Printf("Сессия %d завершена оператором %d", session.ID, ec.User.ID)

	bh.askClientToRate(clientChatID)

	if _, err := telegram_api.SendTextRemovingKeyboard(bh.Deps.BotClient, ec.ChatID, bh.localize(ec.ChatID, locales.KeyChatEnded)); err != nil {
		log.Printf("Ошибка уведомления оператора %d: %v", ec.ChatID, err)
	}

	ec.User.Status = constants.STATUS_FREE
	bh.tryBindNext(ec)
}

// endWork завершает текущую сессию и выводит оператора из смены.
func (bh *BotHandler) endWork(ec eventContext) {
	session, clientChatID, err := db.GetProcessingSessionByOperatorChatID(ec.ChatID)
	if err != nil {
		return
	}
	if err := db.CompleteSession(session.ID); err != nil {
		log.Printf("Ошибка завершения сессии %d: %v", session.ID, err)
		return
	}
	if err := db.UpdateOperatorStatus(ec.ChatID, constants.STATUS_NOT_WORKING); err != nil {
		log.Printf("Ошибка обновления статуса оператора %d: %v", ec.ChatID, err)
	}
	log.Printf("Оператор %d завершил работу, сессия %d закрыта", ec.User.ID, session.ID)

	bh.askClientToRate(clientChatID)

	if _, err := telegram_api.SendTextRemovingKeyboard(bh.Deps.BotClient, ec.ChatID, bh.localize(ec.ChatID, locales.KeyChatEnded)); err != nil {
		log.Printf("Ошибка уведомления оператора %d: %v", ec.ChatID, err)
	}
}

// askClientToRate переводит клиента в шаг оценки и присылает кнопки 1..5.
func (bh *BotHandler) askClientToRate(clientChatID int64) {
	if err := db.UpdateUserStep(clientChatID, constants.STEP_RATING); err != nil {
		log.Printf("Ошибка обновления шага клиента %d: %v", clientChatID, err)
	}
	bh.sendRateKeyboard(clientChatID)
}

func (bh *BotHandler) sendRateKeyboard(clientChatID int64) {
	row := make([]tgbotapi.InlineKeyboardButton, 0, constants.MAX_SESSION_RATE)
	for rate := constants.MIN_SESSION_RATE; rate <= constants.MAX_SESSION_RATE; rate++ {
		value := strconv.Itoa(rate)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(value+" ⭐", value))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)
	if _, err := telegram_api.SendTextWithInlineKeyboard(bh.Deps.BotClient, clientChatID, bh.localize(clientChatID, locales.KeySendRateValue), keyboard); err != nil {
		log.Printf("Ошибка отправки кнопок оценки в чат %d: %v", clientChatID, err)
	}
}

// sendRatePrompt повторяет запрос оценки, если клиент прислал текст вместо кнопки.
func (bh *BotHandler) sendRatePrompt(ec eventContext) {
	bh.sendRateKeyboard(ec.ChatID)
}

// applyRating сохраняет оценку последней завершённой сессии клиента
// и возвращает его к началу диалога.
func (bh *BotHandler) applyRating(ec eventContext) {
	rate, ok := parseRateCallback(ec.Update.CallbackQuery.Data)
	if !ok {
		return
	}
	if err := db.RateLastCompletedSession(ec.ChatID, rate); err != nil {
		if err != db.ErrInvalidState {
			log.Printf("Ошибка сохранения оценки клиента %d: %v", ec.ChatID, err)
		}
		return
	}
	bh.deleteMessageHelper(ec.ChatID, ec.Update.CallbackQuery.Message.MessageID)
	if err := db.UpdateUserStep(ec.ChatID, constants.STEP_AWAITING_OPERATOR); err != nil {
		log.Printf("Ошибка обновления шага клиента %d: %v", ec.ChatID, err)
	}
	bh.sendText(ec.ChatID, bh.localize(ec.ChatID, locales.KeyRateSaved))
	bh.sendConnectOperatorButton(ec)
}
