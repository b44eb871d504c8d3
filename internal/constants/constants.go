package constants

// Роли пользователей / User roles
const (
	ROLE_CLIENT   = "CLIENT"
	ROLE_OPERATOR = "OPERATOR"
	ROLE_ADMIN    = "ADMIN"
)

// Шаги диалога клиента / Client conversation steps
// Шаги до регистрации (выбор языка, контакт) живут в таблице chat_states,
// у зарегистрированного клиента шаг хранится в users.conversation_step.
const (
	STEP_AWAITING_OPERATOR = "awaiting_operator"
	STEP_IN_CHAT           = "in_chat"
	STEP_RATING            = "rating"
)

// Статусы оператора / Operator statuses
const (
	STATUS_FREE        = "FREE"
	STATUS_BUSY        = "BUSY"
	STATUS_NOT_WORKING = "NOT_WORKING"
)

// Статусы сессий / Session statuses
const (
	SESSION_PENDING    = "PENDING"
	SESSION_PROCESSING = "PROCESSING"
	SESSION_COMPLETED  = "COMPLETED"
)

// Callback-токены / Callback tokens
const (
	CALLBACK_CONNECT_OPERATOR = "CONNECT_OPERATOR"
	CALLBACK_START_WORK       = "START_WORK"
)

// Коды языков. В callback-данных ходят строчные коды,
// в БД языки хранятся в верхнем регистре ("UZ", "RU", "EN").
const (
	LANG_UZ = "uz"
	LANG_RU = "ru"
	LANG_EN = "en"
)

// Типы сообщений ретранслятора в порядке приоритета классификации.
// Message types of the relay, in classification precedence order.
const (
	MSG_TYPE_TEXT       = "TEXT"
	MSG_TYPE_PHOTO      = "PHOTO"
	MSG_TYPE_VIDEO      = "VIDEO"
	MSG_TYPE_VOICE      = "VOICE"
	MSG_TYPE_AUDIO      = "AUDIO"
	MSG_TYPE_VIDEO_NOTE = "VIDEO_NOTE"
	MSG_TYPE_STICKER    = "STICKER"
	MSG_TYPE_GIF        = "GIF"
	MSG_TYPE_DOCUMENT   = "DOCUMENT"
	MSG_TYPE_LOCATION   = "LOCATION"
	MSG_TYPE_POLL       = "POLL"
	MSG_TYPE_UNKNOWN    = "UNKNOWN"
)

// Стратегии подбора PENDING-сессии для оператора.
const (
	MATCH_STRATEGY_FIFO_STRICT = "fifo_strict"
	MATCH_STRATEGY_BEST_FIT    = "best_fit"
)

// Лимит размера вложения: всё, что больше, не ретранслируется и не сохраняется.
const MAX_ATTACHMENT_BYTES = 10 * 1024 * 1024

// Границы оценки сессии.
const (
	MIN_SESSION_RATE = 1
	MAX_SESSION_RATE = 5
)

// Коды ошибок API / API error codes
const (
	ERR_USER_NOT_FOUND         = 100
	ERR_USER_ALREADY_EXISTS    = 101
	ERR_USER_BAD_REQUEST       = 102
	ERR_SESSION_NOT_FOUND      = 103
	ERR_MESSAGE_NOT_FOUND      = 104
	ERR_INVALID_MESSAGE_TYPE   = 105
	ERR_INVALID_SESSION_STATUS = 106
	ERR_EMPTY_LIST             = 107
	ERR_CAPACITY_EXCEEDED      = 108
)
