package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"supportbot/internal/constants"
	"supportbot/internal/db"
	"supportbot/internal/locales"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Code    int         `json:"code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UpdateRoleRequest - тело запроса на смену роли пользователя.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// AddLanguageRequest - тело запроса на добавление языка оператору.
type AddLanguageRequest struct {
	Language string `json:"language"`
}

// --- Вспомогательные функции для JSON-ответов ---

// writeJSONError отдаёт ошибку с числовым кодом и локализованным сообщением.
// Язык сообщения берётся из query-параметра lang (по умолчанию узбекский).
func writeJSONError(w http.ResponseWriter, r *http.Request, statusCode, errCode int) {
	lang := r.URL.Query().Get("lang")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Code: errCode, Message: locales.ErrorMessage(errCode, lang)})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// parseTimeParam принимает дату в формате RFC3339 или YYYY-MM-DD.
func parseTimeParam(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// --- Пользователи ---

func GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	user, err := db.GetUserByID(id)
	if err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_USER_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "User retrieved successfully", user)
}

func ListUsers(w http.ResponseWriter, r *http.Request) {
	from, okFrom := parseTimeParam(r.URL.Query().Get("from"))
	to, okTo := parseTimeParam(r.URL.Query().Get("to"))
	if !okFrom || !okTo {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	role := strings.ToUpper(r.URL.Query().Get("role"))
	limit, offset := parsePagination(r)

	users, err := db.ListUsers(role, from, to, limit, offset)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(users) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Users retrieved successfully", users)
}

func UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case constants.ROLE_CLIENT, constants.ROLE_OPERATOR, constants.ROLE_ADMIN:
	default:
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	if err := db.UpdateUserRole(id, role); err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_USER_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "User role updated successfully", nil)
}

func AddUserLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	var req AddLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	switch strings.ToLower(strings.TrimSpace(req.Language)) {
	case constants.LANG_UZ, constants.LANG_RU, constants.LANG_EN:
	default:
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	if err := db.AddOperatorLanguage(id, req.Language); err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_USER_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "Operator language added successfully", nil)
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	if err := db.TrashUser(id); err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_USER_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "User deleted successfully", nil)
}

// --- Сессии ---

func GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	session, err := db.GetSessionByID(id)
	if err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_SESSION_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "Session retrieved successfully", session)
}

func ListSessions(w http.ResponseWriter, r *http.Request) {
	from, okFrom := parseTimeParam(r.URL.Query().Get("from"))
	to, okTo := parseTimeParam(r.URL.Query().Get("to"))
	if !okFrom || !okTo {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	limit, offset := parsePagination(r)

	sessions, err := db.ListSessions(from, to, limit, offset)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(sessions) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Sessions retrieved successfully", sessions)
}

func DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	if err := db.TrashSession(id); err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_SESSION_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "Session deleted successfully", nil)
}

// --- Сообщения ---

func GetSessionMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	messages, err := db.GetSessionMessages(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(messages) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Messages retrieved successfully", messages)
}

func GetClientMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	messages, err := db.GetMessagesByClientID(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(messages) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Messages retrieved successfully", messages)
}

func GetOperatorMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	messages, err := db.GetMessagesByOperatorID(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(messages) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Messages retrieved successfully", messages)
}

func DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	if err := db.TrashMessage(id); err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_MESSAGE_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "Message deleted successfully", nil)
}
