package handlers

import (
	"testing"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"

	"supportbot/internal/constants"
	"supportbot/internal/locales"
)

func messageUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Text: text}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{Data: data}}
}

func TestClassifyCallback(t *testing.T) {
	assert.Equal(t, eventCallbackConnect, classifyCallback(constants.CALLBACK_CONNECT_OPERATOR))
	assert.Equal(t, eventCallbackStartWork, classifyCallback(constants.CALLBACK_START_WORK))
	for _, data := range []string{"1", "2", "3", "4", "5"} {
		assert.Equal(t, eventCallbackRate, classifyCallback(data), "оценка %s", data)
	}
	assert.Equal(t, eventIgnored, classifyCallback("0"))
	assert.Equal(t, eventIgnored, classifyCallback("6"))
	assert.Equal(t, eventIgnored, classifyCallback("garbage"))
	assert.Equal(t, eventIgnored, classifyCallback(""))
}

func TestParseRateCallback(t *testing.T) {
	for rate := constants.MIN_SESSION_RATE; rate <= constants.MAX_SESSION_RATE; rate++ {
		got, ok := parseRateCallback(string(rune('0' + rate)))
		assert.True(t, ok)
		assert.Equal(t, rate, got)
	}
	for _, data := range []string{"0", "6", "-1", "10", "x", "", "3.5"} {
		_, ok := parseRateCallback(data)
		assert.False(t, ok, "значение %q не должно приниматься", data)
	}
}

func TestClassifyEventForClient(t *testing.T) {
	assert.Equal(t, eventCommandStart, classifyEvent(messageUpdate("/start"), constants.ROLE_CLIENT, "uz"))
	assert.Equal(t, eventCommandStart, classifyEvent(messageUpdate("  /start  "), constants.ROLE_CLIENT, "uz"))
	assert.Equal(t, eventMessage, classifyEvent(messageUpdate("salom"), constants.ROLE_CLIENT, "uz"))
	// Текст команд завершения для клиента — обычное сообщение.
	endChat := locales.Get(locales.KeyEndChat, constants.LANG_RU)
	assert.Equal(t, eventMessage, classifyEvent(messageUpdate(endChat), constants.ROLE_CLIENT, "ru"))
	assert.Equal(t, eventIgnored, classifyEvent(tgbotapi.Update{}, constants.ROLE_CLIENT, "uz"))
}

func TestClassifyEventForOperator(t *testing.T) {
	for _, lang := range []string{constants.LANG_UZ, constants.LANG_RU, constants.LANG_EN} {
		endChat := locales.Get(locales.KeyEndChat, lang)
		endWork := locales.Get(locales.KeyEndWork, lang)
		assert.Equal(t, eventCommandEndChat, classifyEvent(messageUpdate(endChat), constants.ROLE_OPERATOR, lang), "язык %s", lang)
		assert.Equal(t, eventCommandEndWork, classifyEvent(messageUpdate(endWork), constants.ROLE_OPERATOR, lang), "язык %s", lang)
	}
	// Команда на чужом языке не совпадает с каталогом оператора.
	endChatRu := locales.Get(locales.KeyEndChat, constants.LANG_RU)
	assert.Equal(t, eventMessage, classifyEvent(messageUpdate(endChatRu), constants.ROLE_OPERATOR, constants.LANG_EN))
	assert.Equal(t, eventMessage, classifyEvent(messageUpdate("привет"), constants.ROLE_OPERATOR, constants.LANG_RU))
	assert.Equal(t, eventCommandStart, classifyEvent(messageUpdate("/start"), constants.ROLE_OPERATOR, constants.LANG_RU))
}

// Таблица переходов должна ссылаться только на допустимые роли, шаги и события.
func TestTransitionTableIsWellFormed(t *testing.T) {
	validClientSteps := map[string]bool{
		constants.STEP_AWAITING_OPERATOR: true,
		constants.STEP_IN_CHAT:           true,
		constants.STEP_RATING:            true,
	}
	validOperatorStatuses := map[string]bool{
		constants.STATUS_FREE:        true,
		constants.STATUS_BUSY:        true,
		constants.STATUS_NOT_WORKING: true,
	}

	for key, action := range transitionTable {
		assert.NotNil(t, action, "действие для %v не задано", key)
		switch key.Role {
		case constants.ROLE_CLIENT:
			assert.True(t, validClientSteps[key.Step], "недопустимый шаг клиента в %v", key)
		case constants.ROLE_OPERATOR, constants.ROLE_ADMIN:
			assert.True(t, validOperatorStatuses[key.Step], "недопустимый статус оператора в %v", key)
		default:
			t.Errorf("недопустимая роль в ключе %v", key)
		}
	}
}

// Комбинации, которых нет в таблице, должны молча игнорироваться.
func TestTransitionTableOmitsInvalidCombinations(t *testing.T) {
	absent := []transitionKey{
		// Клиент в очереди не может ставить оценку.
		{constants.ROLE_CLIENT, constants.STEP_AWAITING_OPERATOR, eventCallbackRate},
		// Клиент в чате не может повторно вызвать оператора.
		{constants.ROLE_CLIENT, constants.STEP_IN_CHAT, eventCallbackConnect},
		// Занятый оператор не может начать вторую смену.
		{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventCallbackStartWork},
		// Свободный оператор не ретранслирует сообщения.
		{constants.ROLE_OPERATOR, constants.STATUS_FREE, eventMessage},
		{constants.ROLE_OPERATOR, constants.STATUS_NOT_WORKING, eventMessage},
		// Завершать нечего, пока оператор не занят.
		{constants.ROLE_OPERATOR, constants.STATUS_FREE, eventCommandEndChat},
		{constants.ROLE_OPERATOR, constants.STATUS_NOT_WORKING, eventCommandEndWork},
		// Операторские события не применимы к клиенту.
		{constants.ROLE_CLIENT, constants.STEP_AWAITING_OPERATOR, eventCallbackStartWork},
	}
	for _, key := range absent {
		_, ok := transitionTable[key]
		assert.False(t, ok, "комбинация %v не должна присутствовать в таблице", key)
	}
}

// Админ ведёт себя в боте как оператор: каждая операторская грань таблицы
// обязана иметь точную админскую пару, и наоборот. Без этого админ,
// завершивший чат, не смог бы снова начать работу.
func TestTransitionTableAdminMirrorsOperator(t *testing.T) {
	for key := range transitionTable {
		switch key.Role {
		case constants.ROLE_OPERATOR:
			mirrored := transitionKey{constants.ROLE_ADMIN, key.Step, key.Event}
			_, ok := transitionTable[mirrored]
			assert.True(t, ok, "для %v нет админской пары", key)
		case constants.ROLE_ADMIN:
			mirrored := transitionKey{constants.ROLE_OPERATOR, key.Step, key.Event}
			_, ok := transitionTable[mirrored]
			assert.True(t, ok, "для %v нет операторской пары", key)
		}
	}
	// Полный цикл админа: начать работу, завершить чат, начать снова.
	cycle := []transitionKey{
		{constants.ROLE_ADMIN, constants.STATUS_NOT_WORKING, eventCallbackStartWork},
		{constants.ROLE_ADMIN, constants.STATUS_BUSY, eventCommandEndChat},
		{constants.ROLE_ADMIN, constants.STATUS_FREE, eventCallbackStartWork},
	}
	for _, key := range cycle {
		_, ok := transitionTable[key]
		assert.True(t, ok, "цикл смены админа разорван на %v", key)
	}
}

// Ключевые сценарии должны быть покрыты таблицей.
func TestTransitionTableCoversCoreFlows(t *testing.T) {
	required := []transitionKey{
		{constants.ROLE_CLIENT, constants.STEP_AWAITING_OPERATOR, eventCallbackConnect},
		{constants.ROLE_CLIENT, constants.STEP_IN_CHAT, eventMessage},
		{constants.ROLE_CLIENT, constants.STEP_RATING, eventCallbackRate},
		{constants.ROLE_OPERATOR, constants.STATUS_FREE, eventCallbackStartWork},
		{constants.ROLE_OPERATOR, constants.STATUS_NOT_WORKING, eventCallbackStartWork},
		{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventMessage},
		{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventCommandEndChat},
		{constants.ROLE_OPERATOR, constants.STATUS_BUSY, eventCommandEndWork},
	}
	for _, key := range required {
		_, ok := transitionTable[key]
		assert.True(t, ok, "комбинация %v должна присутствовать в таблице", key)
	}
}
