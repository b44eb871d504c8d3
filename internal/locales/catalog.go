// internal/locales/catalog.go
package locales

import (
	"log"
	"strings"

	"supportbot/internal/constants"
)

// Ключи сообщений бота. Набор повторяет messages.properties исходного проекта.
const (
	KeyChooseLanguage        = "CHOOSE_LANGUAGE"
	KeyShareContact          = "SHARE_CONTACT"
	KeyShareContactButton    = "SHARE_CONTACT_BUTTON"
	KeySuccessShareContact   = "SUCCESS_SHARE_CONTACT"
	KeyShareOtherContact     = "SHARE_OTHER_CONTACT"
	KeyTextConnectButton     = "TEXT_CONNECT_BUTTON_TO_OPERATOR"
	KeyConnectButton         = "CONNECT_BUTTON_TO_OPERATOR"
	KeyWriteToOperator       = "WRITE_TO_OPERATOR"
	KeyStartWork             = "START_WORK"
	KeyStartWorkButton       = "START_WORK_BUTTON"
	KeyNotFoundPendingClient = "NOT_FOUND_PENDING_CLIENT"
	KeyEndChat               = "END_CHAT"
	KeyEndWork               = "END_WORK"
	KeyClientChatHeader      = "CLIENT_CHAT_HEADER"
	KeySendRateValue         = "SEND_RATE_VALUE"
	KeyRateSaved             = "RATE_SAVED"
	KeyFileTooLarge          = "FILE_TOO_LARGE"
	KeyRelayFailed           = "RELAY_FAILED"
	KeyChatEnded             = "CHAT_ENDED"
)

// catalog: ключ -> код языка (uz/ru/en) -> текст.
var catalog = map[string]map[string]string{
	KeyChooseLanguage: {
		constants.LANG_UZ: "Tilni tanlang/Choose language/Выберите язык:",
		constants.LANG_RU: "Tilni tanlang/Choose language/Выберите язык:",
		constants.LANG_EN: "Tilni tanlang/Choose language/Выберите язык:",
	},
	KeyShareContact: {
		constants.LANG_UZ: "Telefon raqamingizni yuboring.",
		constants.LANG_RU: "Отправьте свой номер телефона.",
		constants.LANG_EN: "Please share your phone number.",
	},
	KeyShareContactButton: {
		constants.LANG_UZ: "📱 Raqamni yuborish",
		constants.LANG_RU: "📱 Отправить номер",
		constants.LANG_EN: "📱 Share number",
	},
	KeySuccessShareContact: {
		constants.LANG_UZ: "Rahmat! Ro'yxatdan o'tdingiz.",
		constants.LANG_RU: "Спасибо! Вы зарегистрированы.",
		constants.LANG_EN: "Thank you! You are registered.",
	},
	KeyShareOtherContact: {
		constants.LANG_UZ: "Iltimos, faqat o'zingizning raqamingizni yuboring.",
		constants.LANG_RU: "Пожалуйста, отправьте только свой собственный номер.",
		constants.LANG_EN: "Please share your own contact, not someone else's.",
	},
	KeyTextConnectButton: {
		constants.LANG_UZ: "Operator bilan bog'lanish uchun tugmani bosing.",
		constants.LANG_RU: "Нажмите кнопку, чтобы связаться с оператором.",
		constants.LANG_EN: "Press the button to connect to an operator.",
	},
	KeyConnectButton: {
		constants.LANG_UZ: "📞 Operator bilan bog'lanish",
		constants.LANG_RU: "📞 Связаться с оператором",
		constants.LANG_EN: "📞 Connect to operator",
	},
	KeyWriteToOperator: {
		constants.LANG_UZ: "Xabaringizni yozing. Operator tez orada javob beradi.",
		constants.LANG_RU: "Напишите ваше сообщение. Оператор скоро ответит.",
		constants.LANG_EN: "Write your message. An operator will reply shortly.",
	},
	KeyStartWork: {
		constants.LANG_UZ: "Ishni boshlash uchun tugmani bosing.",
		constants.LANG_RU: "Нажмите кнопку, чтобы начать работу.",
		constants.LANG_EN: "Press the button to start working.",
	},
	KeyStartWorkButton: {
		constants.LANG_UZ: "▶️ Ishni boshlash",
		constants.LANG_RU: "▶️ Начать работу",
		constants.LANG_EN: "▶️ Start work",
	},
	KeyNotFoundPendingClient: {
		constants.LANG_UZ: "Hozircha kutayotgan mijoz yo'q.",
		constants.LANG_RU: "Сейчас нет ожидающих клиентов.",
		constants.LANG_EN: "No waiting client at the moment.",
	},
	KeyEndChat: {
		constants.LANG_UZ: "Suhbatni yakunlash",
		constants.LANG_RU: "Завершить чат",
		constants.LANG_EN: "End chat",
	},
	KeyEndWork: {
		constants.LANG_UZ: "Ishni yakunlash",
		constants.LANG_RU: "Завершить работу",
		constants.LANG_EN: "End work",
	},
	KeyClientChatHeader: {
		constants.LANG_UZ: "Mijoz chati: %d",
		constants.LANG_RU: "Чат клиента: %d",
		constants.LANG_EN: "Client chat: %d",
	},
	KeySendRateValue: {
		constants.LANG_UZ: "Operator ishini 1 dan 5 gacha baholang.",
		constants.LANG_RU: "Оцените работу оператора от 1 до 5.",
		constants.LANG_EN: "Rate the operator from 1 to 5.",
	},
	KeyRateSaved: {
		constants.LANG_UZ: "Bahoyingiz uchun rahmat!",
		constants.LANG_RU: "Спасибо за вашу оценку!",
		constants.LANG_EN: "Thank you for your rating!",
	},
	KeyFileTooLarge: {
		constants.LANG_UZ: "Fayl juda katta (10 MB dan oshmasligi kerak). Xabar yuborilmadi.",
		constants.LANG_RU: "Файл слишком большой (не более 10 МБ). Сообщение не отправлено.",
		constants.LANG_EN: "The file is too large (10 MB max). The message was not delivered.",
	},
	KeyRelayFailed: {
		constants.LANG_UZ: "Xabarni yetkazib bo'lmadi. Qayta urinib ko'ring.",
		constants.LANG_RU: "Не удалось доставить сообщение. Попробуйте ещё раз.",
		constants.LANG_EN: "The message could not be delivered. Please try again.",
	},
	KeyChatEnded: {
		constants.LANG_UZ: "Suhbat yakunlandi.",
		constants.LANG_RU: "Чат завершён.",
		constants.LANG_EN: "The chat has ended.",
	},
}

// errorMessages: код ошибки API -> код языка -> текст.
var errorMessages = map[int]map[string]string{
	constants.ERR_USER_NOT_FOUND: {
		constants.LANG_UZ: "Foydalanuvchi topilmadi.",
		constants.LANG_RU: "Пользователь не найден.",
		constants.LANG_EN: "User not found.",
	},
	constants.ERR_USER_ALREADY_EXISTS: {
		constants.LANG_UZ: "Bunday foydalanuvchi allaqachon mavjud.",
		constants.LANG_RU: "Такой пользователь уже существует.",
		constants.LANG_EN: "User already exists.",
	},
	constants.ERR_USER_BAD_REQUEST: {
		constants.LANG_UZ: "Noto'g'ri so'rov.",
		constants.LANG_RU: "Некорректный запрос.",
		constants.LANG_EN: "Bad request.",
	},
	constants.ERR_SESSION_NOT_FOUND: {
		constants.LANG_UZ: "Sessiya topilmadi.",
		constants.LANG_RU: "Сессия не найдена.",
		constants.LANG_EN: "Session not found.",
	},
	constants.ERR_MESSAGE_NOT_FOUND: {
		constants.LANG_UZ: "Xabar topilmadi.",
		constants.LANG_RU: "Сообщение не найдено.",
		constants.LANG_EN: "Message not found.",
	},
	constants.ERR_INVALID_MESSAGE_TYPE: {
		constants.LANG_UZ: "Xabar turi mazmuniga mos emas.",
		constants.LANG_RU: "Тип сообщения не соответствует содержимому.",
		constants.LANG_EN: "Message type does not match the payload.",
	},
	constants.ERR_INVALID_SESSION_STATUS: {
		constants.LANG_UZ: "Sessiya holati bu amalga ruxsat bermaydi.",
		constants.LANG_RU: "Состояние сессии не допускает эту операцию.",
		constants.LANG_EN: "The session state does not allow this operation.",
	},
	constants.ERR_EMPTY_LIST: {
		constants.LANG_UZ: "Hech narsa topilmadi.",
		constants.LANG_RU: "Ничего не найдено.",
		constants.LANG_EN: "Nothing found.",
	},
	constants.ERR_CAPACITY_EXCEEDED: {
		constants.LANG_UZ: "Fayl hajmi ruxsat etilganidan katta.",
		constants.LANG_RU: "Размер файла превышает допустимый.",
		constants.LANG_EN: "The file exceeds the allowed size.",
	},
}

// Get возвращает локализованный текст по ключу. Код языка принимает в любом
// регистре ("UZ" из БД или "uz" из callback-данных), при неизвестном языке или
// ключе откатывается на узбекский.
func Get(key, lang string) string {
	translations, ok := catalog[key]
	if !ok {
		log.Printf("locales.Get: неизвестный ключ сообщения '%s'", key)
		return key
	}
	text, ok := translations[normalize(lang)]
	if !ok {
		return translations[constants.LANG_UZ]
	}
	return text
}

// ErrorMessage возвращает локализованный текст ошибки API по её коду.
func ErrorMessage(code int, lang string) string {
	translations, ok := errorMessages[code]
	if !ok {
		log.Printf("locales.ErrorMessage: неизвестный код ошибки %d", code)
		return "unknown error"
	}
	text, ok := translations[normalize(lang)]
	if !ok {
		return translations[constants.LANG_UZ]
	}
	return text
}

// Keys возвращает все ключи каталога. Используется тестами полноты перевода.
func Keys() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	return keys
}

// ErrorCodes возвращает все коды ошибок каталога.
func ErrorCodes() []int {
	codes := make([]int, 0, len(errorMessages))
	for c := range errorMessages {
		codes = append(codes, c)
	}
	return codes
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
