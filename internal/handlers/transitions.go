package handlers

import (
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"supportbot/internal/constants"
	"supportbot/internal/db"
	"supportbot/internal/locales"
)

// Вид события, извлечённый из апдейта. Классификация зависит от пользователя:
// текстовые команды операторов ("Завершить чат"/"Завершить работу") сравниваются
// с каталогом на языке самого оператора.
type eventKind string

const (
	eventMessage           eventKind = "message"
	eventCommandStart      eventKind = "command_start"
	eventCommandEndChat    eventKind = "command_end_chat"
	eventCommandEndWork    eventKind = "command_end_work"
	eventCallbackConnect   eventKind = "callback_connect_operator"
	eventCallbackStartWork eventKind = "callback_start_work"
	eventCallbackRate      eventKind = "callback_rate"
	eventIgnored           eventKind = "ignored"
)

// transitionKey — грань конечного автомата. Для клиентов Step — это
// users.conversation_step, для операторов — users.status.
type transitionKey struct {
	Role  string
	Step  string
	Event eventKind
}

type transitionAction func(bh *BotHandler, ec eventContext)

// transitionTable — полная таблица переходов. Комбинация, которой нет
// в таблице, игнорируется молча: дубликаты нажатий кнопок и отставшие
// апдейты не должны ничего ломать.
var transitionTable = map[transitionKey]transitionAction{
	// Клиент: ожидание оператора.
	{constants.ROLE_CLIENT, constants.STEP_AWAITING_OPERATOR, eventMessage}:         (*BotHandler).sendConnectOperatorButton,
	{constants.ROLE_CLIENT, constants.STEP_AWAITING_OPERATOR, eventCommandStart}:    (*BotHandler).sendConnectOperatorButton,
	{constants.ROLE_CLIENT, constants.STEP_AWAITING_OPERATOR, eventCallbackConnect}: (*BotHandler).connectOperator,

	// Клиент: в чате. Сообщения ретранслируются (или копятся, пока сессия PENDING).
	{constants.ROLE_CLIENT, constants.STEP_IN_CHAT, eventMessage}:      (*BotHandler).relayFromClient,
	{constants.ROLE_CLIENT, constants.STEP_IN_CHAT, eventCommandStart}: (*BotHandler).relayFromClient,

	// Клиент: выставление оценки.
	{constants.ROLE_CLIENT, constants.STEP_RATING, eventCallbackRate}: (*BotHandler).applyRating,
	{constants.ROLE_CLIENT, constants.STEP_RATING, eventMessage}:      (*BotHandler).sendRatePrompt,
	{constants.ROLE_CLIENT, constants.STEP_RATING, eventCommandStart}: (*BotHandler).sendRatePrompt,

	// Оператор: не работает или свободен — можно начать работу.
	{constants.ROLE_OPERATOR, constants.STATUS_NOT_WORKING, eventCommandStart}:      (*BotHandler).sendStartWorkButton,
	{constants.ROLE_OPERATOR, constants.STATUS_NOT_WORKING, eventCallbackStartWork}: (*BotHandler).startWork,
	{constants.ROLE_OPERATOR, constants.STATUS_FREE, eventCommandStart}:             (*BotHandler).sendStartWorkButton,
	{constants.ROLE_OPERATOR, constants.STATUS_FREE, eventCallbackStartWork}:        (*BotHandler).startWork,

	// Оператор: занят — ретрансляция и команды завершения.
	{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventMessage}:        (*BotHandler).relayFromOperator,
	{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventCommandEndChat}: (*BotHandler).endChat,
	{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventCommandEndWork}: (*BotHandler).endWork,

	// Админ ведёт себя в боте как оператор не начавший работу.
	{constants.ROLE_ADMIN, constants.STATUS_NOT_WORKING, eventCommandStart}:      (*BotHandler).sendStartWorkButton,
	{constants.ROLE_ADMIN, constants.STATUS_NOT_WORKING, eventCallbackStartWork}: (*BotHandler).startWork,
	{constants.ROLE_ADMIN, constants.STATUS_FREE, eventCommandStart}:             (*BotHandler).sendStartWorkButton,
	{constants.ROLE_ADMIN, constants.STATUS_FREE, eventCallbackStartWork}:        (*BotHandler).startWork,
	{constants.ROLE_ADMIN, constants.STATUS_BUSY, eventMessage}:                  (*BotHandler).relayFromOperator,
	{constants.ROLE_ADMIN, constants.STATUS_BUSY, eventCommandEndChat}:           (*BotHandler).endChat,
	{constants.ROLE_ADMIN, constants.STATUS_BUSY, eventCommandEndWork}:           (*BotHandler).endWork,
}

// classifyEvent определяет вид события для зарегистрированного пользователя.
func classifyEvent(update tgbotapi.Update, userRole string, userLang string) eventKind {
	if update.CallbackQuery != nil {
		return classifyCallback(update.CallbackQuery.Data)
	}
	if update.Message == nil {
		return eventIgnored
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "/start" {
		return eventCommandStart
	}
	if userRole == constants.ROLE_OPERATOR || userRole == constants.ROLE_ADMIN {
		if text != "" && text == locales.Get(locales.KeyEndChat, userLang) {
			return eventCommandEndChat
		}
		if text != "" && text == locales.Get(locales.KeyEndWork, userLang) {
			return eventCommandEndWork
		}
	}
	return eventMessage
}

func classifyCallback(data string) eventKind {
	switch data {
	case constants.CALLBACK_CONNECT_OPERATOR:
		return eventCallbackConnect
	case constants.CALLBACK_START_WORK:
		return eventCallbackStartWork
	}
	if _, ok := parseRateCallback(data); ok {
		return eventCallbackRate
	}
	return eventIgnored
}

// parseRateCallback разбирает callback-данные кнопок оценки ("1".."5").
func parseRateCallback(data string) (int, bool) {
	rate, err := strconv.Atoi(data)
	if err != nil {
		return 0, false
	}
	if rate < constants.MIN_SESSION_RATE || rate > constants.MAX_SESSION_RATE {
		return 0, false
	}
	return rate, true
}

// dispatch выполняет действие из таблицы переходов, если оно определено.
func (bh *BotHandler) dispatch(ec eventContext) {
	step := ec.User.ConversationStep
	if ec.User.Role != constants.ROLE_CLIENT {
		step = ec.User.Status
	}
	kind := classifyEvent(ec.Update, ec.User.Role, db.GetLanguageByChatID(ec.ChatID))
	action, ok := transitionTable[transitionKey{Role: ec.User.Role, Step: step, Event: kind}]
	if !ok {
		return
	}
	action(bh, ec)
}
