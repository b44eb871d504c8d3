package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"

	"supportbot/internal/constants"
	"supportbot/internal/models"
)

const userColumns = `id, chat_id, role, COALESCE(full_name, ''), COALESCE(phone, ''), languages, status, conversation_step, deleted, created_at`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ChatID, &u.Role, &u.FullName, &u.Phone, &u.Languages,
		&u.Status, &u.ConversationStep, &u.Deleted, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// ExistsByChatID проверяет, зарегистрирован ли (и не удалён) пользователь с данным chat_id.
func ExistsByChatID(chatID int64) (bool, error) {
	var exists bool
	err := DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE chat_id=$1 AND deleted=FALSE)", chatID).Scan(&exists)
	if err != nil {
		log.Printf("ExistsByChatID: ошибка проверки существования пользователя chatID %d: %v", chatID, err)
		return false, err
	}
	return exists, nil
}

// GetUserByChatID извлекает неудалённого пользователя по его chat_id.
func GetUserByChatID(chatID int64) (models.User, error) {
	row := DB.QueryRow("SELECT "+userColumns+" FROM users WHERE chat_id=$1 AND deleted=FALSE", chatID)
	u, err := scanUser(row)
	if err != nil && err != ErrNotFound {
		log.Printf("GetUserByChatID: ошибка получения пользователя chatID %d: %v", chatID, err)
	}
	return u, err
}

// GetUserByID извлекает неудалённого пользователя по первичному ключу.
func GetUserByID(id int64) (models.User, error) {
	row := DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id=$1 AND deleted=FALSE", id)
	u, err := scanUser(row)
	if err != nil && err != ErrNotFound {
		log.Printf("GetUserByID: ошибка получения пользователя id %d: %v", id, err)
	}
	return u, err
}

// RegisterClient регистрирует нового клиента после успешного шага с контактом.
// Язык приходит из кэша выбора языка (chat_states) и сохраняется в верхнем регистре.
// Мягко удалённая запись с тем же chat_id восстанавливается: пользователи из БД
// не стираются физически, поэтому повторная регистрация оживляет старую строку.
func RegisterClient(chatID int64, fullName, phone, language string) (models.User, error) {
	exists, err := ExistsByChatID(chatID)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrConflict
	}

	langs := pq.StringArray{strings.ToUpper(language)}
	_, err = DB.Exec(`
        INSERT INTO users (chat_id, role, full_name, phone, languages, status, conversation_step, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (chat_id) DO UPDATE SET
            role=EXCLUDED.role, full_name=EXCLUDED.full_name, phone=EXCLUDED.phone,
            languages=EXCLUDED.languages, status=EXCLUDED.status,
            conversation_step=EXCLUDED.conversation_step, deleted=FALSE, updated_at=NOW()
        WHERE users.deleted=TRUE`,
		chatID, constants.ROLE_CLIENT, fullName, phone, langs,
		constants.STATUS_NOT_WORKING, constants.STEP_AWAITING_OPERATOR)
	if err != nil {
		log.Printf("RegisterClient: ошибка вставки нового клиента chatID %d: %v", chatID, err)
		return models.User{}, err
	}
	log.Printf("Зарегистрирован новый клиент с chatID %d (язык %s)", chatID, strings.ToUpper(language))
	return GetUserByChatID(chatID)
}

// SeedAdminIfAbsent создаёт административного пользователя, если ни одного нет.
// Аналог загрузчика данных исходного проекта: без админа REST API бесполезен.
func SeedAdminIfAbsent(chatID int64, fullName string) error {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE role=$1 AND deleted=FALSE", constants.ROLE_ADMIN).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = DB.Exec(`
        INSERT INTO users (chat_id, role, full_name, languages, status, conversation_step, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        ON CONFLICT (chat_id) DO NOTHING`,
		chatID, constants.ROLE_ADMIN, fullName, pq.StringArray{"EN"},
		constants.STATUS_NOT_WORKING, constants.STEP_AWAITING_OPERATOR)
	if err != nil {
		log.Printf("SeedAdminIfAbsent: ошибка создания администратора: %v", err)
		return err
	}
	log.Printf("Создан административный пользователь с chatID %d", chatID)
	return nil
}

// UpdateUserStep обновляет шаг диалога клиента.
func UpdateUserStep(chatID int64, step string) error {
	res, err := DB.Exec("UPDATE users SET conversation_step=$1, updated_at=NOW() WHERE chat_id=$2 AND deleted=FALSE", step, chatID)
	if err != nil {
		log.Printf("UpdateUserStep: ошибка обновления шага для chatID %d на %s: %v", chatID, step, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOperatorStatus обновляет статус доступности оператора.
// Админ работает в боте как оператор, поэтому принимаются обе роли:
// иначе завершивший чат админ навсегда остался бы в статусе BUSY.
func UpdateOperatorStatus(chatID int64, status string) error {
	res, err := DB.Exec("UPDATE users SET status=$1, updated_at=NOW() WHERE chat_id=$2 AND role IN ($3, $4) AND deleted=FALSE",
		status, chatID, constants.ROLE_OPERATOR, constants.ROLE_ADMIN)
	if err != nil {
		log.Printf("UpdateOperatorStatus: ошибка обновления статуса для chatID %d на %s: %v", chatID, status, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Статус оператора chatID %d обновлён на %s", chatID, status)
	return nil
}

// UpdateUserRole обновляет роль пользователя (админская операция).
func UpdateUserRole(id int64, role string) error {
	res, err := DB.Exec("UPDATE users SET role=$1, updated_at=NOW() WHERE id=$2 AND deleted=FALSE", role, id)
	if err != nil {
		log.Printf("UpdateUserRole: ошибка обновления роли пользователя id %d на %s: %v", id, role, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Роль пользователя id %d обновлена на %s", id, role)
	return nil
}

// AddOperatorLanguage добавляет язык в набор оператора (без дублей).
func AddOperatorLanguage(id int64, language string) error {
	lang := strings.ToUpper(language)
	res, err := DB.Exec(`
        UPDATE users SET languages = array_append(languages, $1), updated_at=NOW()
        WHERE id=$2 AND role=$3 AND deleted=FALSE AND NOT ($1 = ANY(languages))`,
		lang, id, constants.ROLE_OPERATOR)
	if err != nil {
		log.Printf("AddOperatorLanguage: ошибка добавления языка %s оператору id %d: %v", lang, id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Либо оператора нет, либо язык уже в наборе. Различаем.
		var exists bool
		errChk := DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id=$1 AND role=$2 AND deleted=FALSE)",
			id, constants.ROLE_OPERATOR).Scan(&exists)
		if errChk != nil {
			return errChk
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// TrashUser помечает пользователя удалённым. Запись остаётся для истории.
func TrashUser(id int64) error {
	res, err := DB.Exec("UPDATE users SET deleted=TRUE, updated_at=NOW() WHERE id=$1 AND deleted=FALSE", id)
	if err != nil {
		log.Printf("TrashUser: ошибка мягкого удаления пользователя id %d: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers возвращает страницу неудалённых пользователей с необязательными
// фильтрами по роли и диапазону дат создания.
func ListUsers(role string, from, to *time.Time, limit, offset int) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE deleted=FALSE"
	args := []interface{}{}
	idx := 1
	if role != "" {
		query += fmt.Sprintf(" AND role=$%d", idx)
		args = append(args, role)
		idx++
	}
	if from != nil && to != nil {
		query += fmt.Sprintf(" AND created_at BETWEEN $%d AND $%d", idx, idx+1)
		args = append(args, *from, *to)
		idx += 2
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("ListUsers: ошибка выборки пользователей: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.ChatID, &u.Role, &u.FullName, &u.Phone, &u.Languages,
			&u.Status, &u.ConversationStep, &u.Deleted, &u.CreatedAt); err != nil {
			log.Printf("ListUsers: ошибка сканирования строки: %v", err)
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetLanguageByChatID возвращает основной язык пользователя в нижнем регистре,
// для локализации сообщений бота. До регистрации язык берётся из chat_states.
func GetLanguageByChatID(chatID int64) string {
	user, err := GetUserByChatID(chatID)
	if err == nil {
		if lang := user.PrimaryLanguage(); lang != "" {
			return strings.ToLower(lang)
		}
	}
	if lang, errState := GetChatLanguage(chatID); errState == nil && lang != "" {
		return lang
	}
	return constants.LANG_UZ
}
