package db

import (
	"log"
	"time"

	"supportbot/internal/constants"
	"supportbot/internal/models"
)

// GetTotalSessionsStats возвращает сводку по всем неудалённым сессиям.
func GetTotalSessionsStats() (models.TotalSessionsStats, error) {
	var s models.TotalSessionsStats
	err := DB.QueryRow(`
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = $1),
               COUNT(*) FILTER (WHERE status = $2),
               COUNT(*) FILTER (WHERE status = $3)
        FROM sessions WHERE deleted = FALSE`,
		constants.SESSION_PENDING, constants.SESSION_PROCESSING, constants.SESSION_COMPLETED).
		Scan(&s.TotalSessions, &s.PendingSessions, &s.ProcessingSessions, &s.CompletedSessions)
	if err != nil {
		log.Printf("GetTotalSessionsStats: ошибка агрегации: %v", err)
	}
	return s, err
}

// GetOperatorSessionStats возвращает статистику сессий одного оператора.
func GetOperatorSessionStats(operatorID int64) (models.OperatorSessionStats, error) {
	var s models.OperatorSessionStats
	operator, err := GetUserByID(operatorID)
	if err != nil {
		return s, err
	}
	if !operator.IsOperator() {
		return s, ErrNotFound
	}
	s.OperatorID = operator.ID
	s.OperatorName = operator.FullName

	err = DB.QueryRow(`
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = $2),
               COUNT(rate),
               COALESCE(AVG(rate), 0)
        FROM sessions WHERE operator_id = $1 AND deleted = FALSE`,
		operatorID, constants.SESSION_COMPLETED).
		Scan(&s.TotalSessions, &s.CompletedSessions, &s.RatedSessions, &s.AverageRating)
	if err != nil {
		log.Printf("GetOperatorSessionStats: ошибка агрегации для оператора %d: %v", operatorID, err)
	}
	return s, err
}

// GetDetailedRatings возвращает распределение оценок по всем сессиям.
func GetDetailedRatings() ([]models.RatingBucket, error) {
	rows, err := DB.Query(`
        SELECT rate, COUNT(*) FROM sessions
        WHERE rate IS NOT NULL AND deleted = FALSE
        GROUP BY rate ORDER BY rate`)
	if err != nil {
		log.Printf("GetDetailedRatings: ошибка выборки: %v", err)
		return nil, err
	}
	defer rows.Close()

	var buckets []models.RatingBucket
	for rows.Next() {
		var b models.RatingBucket
		if err := rows.Scan(&b.Rate, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// GetUserStatistics возвращает агрегаты по клиентам: число обращений и
// средняя выставленная ими оценка.
func GetUserStatistics() ([]models.UserStats, error) {
	rows, err := DB.Query(`
        SELECT u.id, COALESCE(u.full_name, ''), u.chat_id,
               COUNT(s.id), COALESCE(AVG(s.rate), 0)
        FROM users u
        LEFT JOIN sessions s ON s.client_id = u.id AND s.deleted = FALSE
        WHERE u.role = $1 AND u.deleted = FALSE
        GROUP BY u.id, u.full_name, u.chat_id
        ORDER BY COUNT(s.id) DESC`,
		constants.ROLE_CLIENT)
	if err != nil {
		log.Printf("GetUserStatistics: ошибка выборки: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.UserStats
	for rows.Next() {
		var s models.UserStats
		if err := rows.Scan(&s.UserID, &s.FullName, &s.ChatID, &s.TotalSessions, &s.AverageRating); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetTopRatedOperators возвращает операторов по убыванию средней оценки.
// lastMonth ограничивает выборку последними 30 днями.
func GetTopRatedOperators(lastMonth bool, limit int) ([]models.TopRatedOperator, error) {
	var since time.Time
	if lastMonth {
		since = time.Now().AddDate(0, -1, 0)
	}
	rows, err := DB.Query(`
        SELECT o.id, COALESCE(o.full_name, ''), AVG(s.rate), COUNT(s.rate)
        FROM sessions s
        JOIN users o ON o.id = s.operator_id
        WHERE s.rate IS NOT NULL AND s.deleted = FALSE
          AND ($1 = FALSE OR s.created_at >= $2)
        GROUP BY o.id, o.full_name
        ORDER BY AVG(s.rate) DESC
        LIMIT $3`,
		lastMonth, since, limit)
	if err != nil {
		log.Printf("GetTopRatedOperators: ошибка выборки: %v", err)
		return nil, err
	}
	defer rows.Close()

	var operators []models.TopRatedOperator
	for rows.Next() {
		var o models.TopRatedOperator
		if err := rows.Scan(&o.OperatorID, &o.OperatorName, &o.AverageRating, &o.TotalRatings); err != nil {
			return nil, err
		}
		operators = append(operators, o)
	}
	return operators, rows.Err()
}
