package models

import (
	"time"

	"github.com/lib/pq"
)

// User represents a user in the system.
// Languages хранится как text[] в БД, у клиента обычно один язык,
// у оператора — набор поддерживаемых.
type User struct {
	ID               int64          `json:"id"`
	ChatID           int64          `json:"chat_id"`
	Role             string         `json:"role"`
	FullName         string         `json:"full_name"`
	Phone            string         `json:"phone"`
	Languages        pq.StringArray `json:"languages"`
	Status           string         `json:"status"`
	ConversationStep string         `json:"conversation_step"`
	Deleted          bool           `json:"deleted"`
	CreatedAt        time.Time      `json:"created_at"`
}

// IsOperator сообщает, работает ли пользователь как оператор.
// Админ обслуживает чаты наравне с операторами.
func (u User) IsOperator() bool {
	return u.Role == "OPERATOR" || u.Role == "ADMIN"
}

// PrimaryLanguage возвращает первый (основной) язык пользователя.
// Пустая строка, если список языков пуст — такого в БД быть не должно.
func (u User) PrimaryLanguage() string {
	if len(u.Languages) == 0 {
		return ""
	}
	return u.Languages[0]
}
