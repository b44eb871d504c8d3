package locales

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"supportbot/internal/constants"
)

var allLangs = []string{constants.LANG_UZ, constants.LANG_RU, constants.LANG_EN}

// Каждый ключ каталога обязан иметь перевод на все три языка.
func TestCatalogIsComplete(t *testing.T) {
	for _, key := range Keys() {
		for _, lang := range allLangs {
			text := Get(key, lang)
			assert.NotEmpty(t, text, "ключ %s не переведён на %s", key, lang)
			assert.NotEqual(t, key, text, "ключ %s возвращает сам себя на %s", key, lang)
		}
	}
}

// Каждый код ошибки обязан иметь сообщение на все три языка.
func TestErrorMessagesAreComplete(t *testing.T) {
	expected := []int{
		constants.ERR_USER_NOT_FOUND,
		constants.ERR_USER_ALREADY_EXISTS,
		constants.ERR_USER_BAD_REQUEST,
		constants.ERR_SESSION_NOT_FOUND,
		constants.ERR_MESSAGE_NOT_FOUND,
		constants.ERR_INVALID_MESSAGE_TYPE,
		constants.ERR_INVALID_SESSION_STATUS,
		constants.ERR_EMPTY_LIST,
		constants.ERR_CAPACITY_EXCEEDED,
	}
	assert.ElementsMatch(t, expected, ErrorCodes())

	for _, code := range expected {
		for _, lang := range allLangs {
			assert.NotEmpty(t, ErrorMessage(code, lang), "код %d не переведён на %s", code, lang)
		}
	}
}

func TestGetFallsBackToUzbek(t *testing.T) {
	assert.Equal(t, Get(KeyEndChat, constants.LANG_UZ), Get(KeyEndChat, "de"))
	assert.Equal(t, Get(KeyEndChat, constants.LANG_UZ), Get(KeyEndChat, ""))
}

// Язык принимается в любом регистре: в БД коды хранятся в верхнем.
func TestGetNormalizesLanguageCase(t *testing.T) {
	assert.Equal(t, Get(KeyEndChat, "ru"), Get(KeyEndChat, "RU"))
	assert.Equal(t, Get(KeyEndChat, "en"), Get(KeyEndChat, " EN "))
}

func TestUnknownKeyReturnsKeyItself(t *testing.T) {
	assert.Equal(t, "NO_SUCH_KEY", Get("NO_SUCH_KEY", constants.LANG_RU))
}

func TestUnknownErrorCode(t *testing.T) {
	assert.Equal(t, "unknown error", ErrorMessage(999, constants.LANG_RU))
}

// Команды завершения различаются между собой на каждом языке:
// по ним распознаются действия оператора.
func TestEndCommandsAreDistinct(t *testing.T) {
	for _, lang := range allLangs {
		assert.NotEqual(t, Get(KeyEndChat, lang), Get(KeyEndWork, lang), "язык %s", lang)
	}
}
