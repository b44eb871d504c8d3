package models

// TotalSessionsStats — сводка по всем сессиям.
type TotalSessionsStats struct {
	TotalSessions      int64 `json:"total_sessions"`
	PendingSessions    int64 `json:"pending_sessions"`
	ProcessingSessions int64 `json:"processing_sessions"`
	CompletedSessions  int64 `json:"completed_sessions"`
}

// OperatorSessionStats — статистика сессий одного оператора.
type OperatorSessionStats struct {
	OperatorID        int64   `json:"operator_id"`
	OperatorName      string  `json:"operator_name"`
	TotalSessions     int64   `json:"total_sessions"`
	CompletedSessions int64   `json:"completed_sessions"`
	RatedSessions     int64   `json:"rated_sessions"`
	AverageRating     float64 `json:"average_rating"`
}

// RatingBucket — количество сессий с данной оценкой.
type RatingBucket struct {
	Rate  int   `json:"rate"`
	Count int64 `json:"count"`
}

// UserStats — агрегат по клиенту: сколько обращений и средняя выставленная оценка.
type UserStats struct {
	UserID        int64   `json:"user_id"`
	FullName      string  `json:"full_name"`
	ChatID        int64   `json:"chat_id"`
	TotalSessions int64   `json:"total_sessions"`
	AverageRating float64 `json:"average_rating"`
}

// TopRatedOperator — строка рейтинга операторов.
type TopRatedOperator struct {
	OperatorID    int64   `json:"operator_id"`
	OperatorName  string  `json:"operator_name"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}
