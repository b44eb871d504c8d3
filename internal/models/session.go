package models

import (
	"database/sql"
	"time"
)

// Session represents one support interaction between a client and an operator.
// OperatorID равен NULL, пока сессия ждёт в очереди; Rate равен NULL,
// пока клиент не поставил оценку (возможно только после COMPLETED).
type Session struct {
	ID         int64         `json:"id"`
	ClientID   int64         `json:"client_id"`
	OperatorID sql.NullInt64 `json:"operator_id"`
	Status     string        `json:"status"`
	Rate       sql.NullInt64 `json:"rate"`
	Deleted    bool          `json:"deleted"`
	CreatedAt  time.Time     `json:"created_at"`
}

// PendingSessionCandidate — строка очереди, которую матчмейкер рассматривает
// при подборе сессии для оператора. Заполняется внутри транзакции подбора.
type PendingSessionCandidate struct {
	SessionID       int64
	ClientID        int64
	ClientChatID    int64
	ClientLanguages []string
	CreatedAt       time.Time
}
