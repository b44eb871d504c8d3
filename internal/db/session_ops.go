package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"supportbot/internal/constants"
	"supportbot/internal/matchmaker"
	"supportbot/internal/models"
)

const sessionColumns = `id, client_id, operator_id, status, rate, deleted, created_at`

func scanSession(row *sql.Row) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.ClientID, &s.OperatorID, &s.Status, &s.Rate, &s.Deleted, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// GetSessionByID извлекает неудалённую сессию по id.
func GetSessionByID(id int64) (models.Session, error) {
	row := DB.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id=$1 AND deleted=FALSE", id)
	s, err := scanSession(row)
	if err != nil && err != ErrNotFound {
		log.Printf("GetSessionByID: ошибка получения сессии id %d: %v", id, err)
	}
	return s, err
}

// GetActiveSessionByClientChatID возвращает PENDING- или PROCESSING-сессию клиента.
// Инвариант «не больше одной активной сессии на клиента» поддерживается
// CreateSessionIfAbsent.
func GetActiveSessionByClientChatID(clientChatID int64) (models.Session, error) {
	row := DB.QueryRow(`
        SELECT s.id, s.client_id, s.operator_id, s.status, s.rate, s.deleted, s.created_at
        FROM sessions s
        JOIN users c ON c.id = s.client_id
        WHERE c.chat_id = $1 AND s.deleted = FALSE AND s.status IN ($2, $3)
        ORDER BY s.created_at DESC LIMIT 1`,
		clientChatID, constants.SESSION_PENDING, constants.SESSION_PROCESSING)
	return scanSession(row)
}

// GetProcessingSessionByClientChatID возвращает PROCESSING-сессию клиента
// вместе с chat_id оператора.
func GetProcessingSessionByClientChatID(clientChatID int64) (models.Session, int64, error) {
	var s models.Session
	var operatorChatID int64
	err := DB.QueryRow(`
        SELECT s.id, s.client_id, s.operator_id, s.status, s.rate, s.deleted, s.created_at, o.chat_id
        FROM sessions s
        JOIN users c ON c.id = s.client_id
        JOIN users o ON o.id = s.operator_id
        WHERE c.chat_id = $1 AND s.deleted = FALSE AND s.status = $2
        LIMIT 1`,
		clientChatID, constants.SESSION_PROCESSING).Scan(
		&s.ID, &s.ClientID, &s.OperatorID, &s.Status, &s.Rate, &s.Deleted, &s.CreatedAt, &operatorChatID)
	if err == sql.ErrNoRows {
		return s, 0, ErrNotFound
	}
	if err != nil {
		log.Printf("GetProcessingSessionByClientChatID: ошибка для chatID %d: %v", clientChatID, err)
		return s, 0, err
	}
	return s, operatorChatID, nil
}

// GetProcessingSessionByOperatorChatID возвращает PROCESSING-сессию оператора
// вместе с chat_id клиента.
func GetProcessingSessionByOperatorChatID(operatorChatID int64) (models.Session, int64, error) {
	var s models.Session
	var clientChatID int64
	err := DB.QueryRow(`
        SELECT s.id, s.client_id, s.operator_id, s.status, s.rate, s.deleted, s.created_at, c.chat_id
        FROM sessions s
        JOIN users c ON c.id = s.client_id
        JOIN users o ON o.id = s.operator_id
        WHERE o.chat_id = $1 AND s.deleted = FALSE AND s.status = $2
        LIMIT 1`,
		operatorChatID, constants.SESSION_PROCESSING).Scan(
		&s.ID, &s.ClientID, &s.OperatorID, &s.Status, &s.Rate, &s.Deleted, &s.CreatedAt, &clientChatID)
	if err == sql.ErrNoRows {
		return s, 0, ErrNotFound
	}
	if err != nil {
		log.Printf("GetProcessingSessionByOperatorChatID: ошибка для chatID %d: %v", operatorChatID, err)
		return s, 0, err
	}
	return s, clientChatID, nil
}

// CreateSessionIfAbsent создаёт PENDING-сессию для клиента, если активной ещё нет.
// Возвращает существующую активную сессию, если она есть (операция идемпотентна).
func CreateSessionIfAbsent(clientID int64) (models.Session, error) {
	tx, err := DB.Begin()
	if err != nil {
		return models.Session{}, err
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRow(`
        SELECT id FROM sessions
        WHERE client_id = $1 AND deleted = FALSE AND status IN ($2, $3)
        FOR UPDATE`,
		clientID, constants.SESSION_PENDING, constants.SESSION_PROCESSING).Scan(&existingID)
	if err == nil {
		if errCommit := tx.Commit(); errCommit != nil {
			return models.Session{}, errCommit
		}
		return GetSessionByID(existingID)
	}
	if err != sql.ErrNoRows {
		log.Printf("CreateSessionIfAbsent: ошибка проверки активной сессии клиента %d: %v", clientID, err)
		return models.Session{}, err
	}

	var newID int64
	err = tx.QueryRow(`
        INSERT INTO sessions (client_id, status, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        RETURNING id`,
		clientID, constants.SESSION_PENDING).Scan(&newID)
	if err != nil {
		log.Printf("CreateSessionIfAbsent: ошибка создания сессии для клиента %d: %v", clientID, err)
		return models.Session{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.Session{}, err
	}
	log.Printf("Создана PENDING-сессия %d для клиента %d", newID, clientID)
	return GetSessionByID(newID)
}

// BindNextPendingSession атомарно подбирает оператору ожидающую сессию.
// Очередь читается от старых к новым с блокировкой строк (FOR UPDATE SKIP LOCKED),
// выбор делает стратегия матчмейкера, затем в той же транзакции сессия переводится
// в PROCESSING, к ней привязывается оператор, а оператор помечается BUSY.
// Два оператора никогда не получат одну и ту же сессию.
// Возвращает ErrNoMatch, когда совместимой сессии нет; состояние при этом не меняется.
func BindNextPendingSession(operator models.User, strategy string) (models.Session, int64, error) {
	tx, err := DB.Begin()
	if err != nil {
		return models.Session{}, 0, err
	}
	defer tx.Rollback()

	// Блокируем строку оператора: повторный START_WORK, пришедший параллельно,
	// увидит статус BUSY и не привяжет вторую сессию.
	var currentStatus string
	err = tx.QueryRow("SELECT status FROM users WHERE id=$1 AND deleted=FALSE FOR UPDATE", operator.ID).
		Scan(&currentStatus)
	if err == sql.ErrNoRows {
		return models.Session{}, 0, ErrNotFound
	}
	if err != nil {
		log.Printf("BindNextPendingSession: ошибка блокировки оператора %d: %v", operator.ID, err)
		return models.Session{}, 0, err
	}
	if currentStatus == constants.STATUS_BUSY {
		return models.Session{}, 0, ErrConflict
	}

	// fifo_strict смотрит только на голову очереди, best_fit — дальше.
	limit := 1
	if strategy == constants.MATCH_STRATEGY_BEST_FIT {
		limit = 100
	}

	rows, err := tx.Query(`
        SELECT s.id, s.client_id, c.chat_id, c.languages, s.created_at
        FROM sessions s
        JOIN users c ON c.id = s.client_id
        WHERE s.status = $1 AND s.deleted = FALSE AND c.deleted = FALSE
        ORDER BY s.created_at ASC
        LIMIT $2
        FOR UPDATE OF s SKIP LOCKED`,
		constants.SESSION_PENDING, limit)
	if err != nil {
		log.Printf("BindNextPendingSession: ошибка выборки очереди: %v", err)
		return models.Session{}, 0, err
	}

	var queue []models.PendingSessionCandidate
	for rows.Next() {
		var cand models.PendingSessionCandidate
		var langs pq.StringArray
		if err := rows.Scan(&cand.SessionID, &cand.ClientID, &cand.ClientChatID,
			&langs, &cand.CreatedAt); err != nil {
			rows.Close()
			log.Printf("BindNextPendingSession: ошибка сканирования кандидата: %v", err)
			return models.Session{}, 0, err
		}
		cand.ClientLanguages = []string(langs)
		queue = append(queue, cand)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Session{}, 0, err
	}

	chosen := matchmaker.SelectCandidate(strategy, operator.Languages, queue)
	if chosen == nil {
		// NoMatch — нормальный исход, транзакция откатывается без изменений.
		return models.Session{}, 0, ErrNoMatch
	}

	res, err := tx.Exec(`
        UPDATE sessions SET status=$1, operator_id=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`,
		constants.SESSION_PROCESSING, operator.ID, chosen.SessionID, constants.SESSION_PENDING)
	if err != nil {
		log.Printf("BindNextPendingSession: ошибка перевода сессии %d в PROCESSING: %v", chosen.SessionID, err)
		return models.Session{}, 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Session{}, 0, ErrNoMatch
	}

	_, err = tx.Exec("UPDATE users SET status=$1, updated_at=NOW() WHERE id=$2",
		constants.STATUS_BUSY, operator.ID)
	if err != nil {
		log.Printf("BindNextPendingSession: ошибка перевода оператора %d в BUSY: %v", operator.ID, err)
		return models.Session{}, 0, err
	}

	if err = tx.Commit(); err != nil {
		return models.Session{}, 0, err
	}
	log.Printf("Оператор %d (chatID %d) привязан к сессии %d клиента chatID %d",
		operator.ID, operator.ChatID, chosen.SessionID, chosen.ClientChatID)

	session, err := GetSessionByID(chosen.SessionID)
	return session, chosen.ClientChatID, err
}

// CompleteSession переводит PROCESSING-сессию в COMPLETED. Оператор в записи
// сохраняется для истории и статистики.
func CompleteSession(sessionID int64) error {
	res, err := DB.Exec(`
        UPDATE sessions SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3 AND deleted=FALSE`,
		constants.SESSION_COMPLETED, sessionID, constants.SESSION_PROCESSING)
	if err != nil {
		log.Printf("CompleteSession: ошибка завершения сессии %d: %v", sessionID, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidState
	}
	log.Printf("Сессия %d завершена", sessionID)
	return nil
}

// RateLastCompletedSession записывает оценку 1..5 в последнюю завершённую сессию клиента.
func RateLastCompletedSession(clientChatID int64, rate int) error {
	if rate < constants.MIN_SESSION_RATE || rate > constants.MAX_SESSION_RATE {
		return ErrInvalidState
	}
	res, err := DB.Exec(`
        UPDATE sessions SET rate=$1, updated_at=NOW()
        WHERE id = (
            SELECT s.id FROM sessions s
            JOIN users c ON c.id = s.client_id
            WHERE c.chat_id = $2 AND s.status = $3 AND s.deleted = FALSE
            ORDER BY s.updated_at DESC LIMIT 1
        )`,
		rate, clientChatID, constants.SESSION_COMPLETED)
	if err != nil {
		log.Printf("RateLastCompletedSession: ошибка записи оценки для chatID %d: %v", clientChatID, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidState
	}
	log.Printf("Клиент chatID %d поставил оценку %d последней завершённой сессии", clientChatID, rate)
	return nil
}

// TrashSession помечает сессию удалённой (админская операция).
func TrashSession(id int64) error {
	res, err := DB.Exec("UPDATE sessions SET deleted=TRUE, updated_at=NOW() WHERE id=$1 AND deleted=FALSE", id)
	if err != nil {
		log.Printf("TrashSession: ошибка мягкого удаления сессии id %d: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions возвращает страницу неудалённых сессий с необязательным
// фильтром по диапазону дат создания.
func ListSessions(from, to *time.Time, limit, offset int) ([]models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions WHERE deleted=FALSE"
	args := []interface{}{}
	idx := 1
	if from != nil && to != nil {
		query += fmt.Sprintf(" AND created_at BETWEEN $%d AND $%d", idx, idx+1)
		args = append(args, *from, *to)
		idx += 2
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("ListSessions: ошибка выборки сессий: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.ClientID, &s.OperatorID, &s.Status, &s.Rate, &s.Deleted, &s.CreatedAt); err != nil {
			log.Printf("ListSessions: ошибка сканирования строки: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
