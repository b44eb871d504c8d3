package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"supportbot/internal/constants"
	"supportbot/internal/db"
	"supportbot/internal/utils"
)

// GetTotalSessions возвращает сводку по сессиям во всех статусах.
func GetTotalSessions(w http.ResponseWriter, r *http.Request) {
	stats, err := db.GetTotalSessionsStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONSuccess(w, "Statistics retrieved successfully", stats)
}

// GetOperatorSessions возвращает статистику одного оператора.
func GetOperatorSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, constants.ERR_USER_BAD_REQUEST)
		return
	}
	stats, err := db.GetOperatorSessionStats(id)
	if err != nil {
		if err == db.ErrNotFound {
			writeJSONError(w, r, http.StatusNotFound, constants.ERR_USER_NOT_FOUND)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONSuccess(w, "Statistics retrieved successfully", stats)
}

// GetDetailedRatings возвращает распределение оценок 1..5.
func GetDetailedRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := db.GetDetailedRatings()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(ratings) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Statistics retrieved successfully", ratings)
}

// GetUserStatistics возвращает агрегаты по клиентам.
func GetUserStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := db.GetUserStatistics()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(stats) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Statistics retrieved successfully", stats)
}

// GetTopRatedOperators возвращает рейтинг операторов.
// Параметры: lastMonth=true|false, limit (по умолчанию 10).
func GetTopRatedOperators(w http.ResponseWriter, r *http.Request) {
	lastMonth := r.URL.Query().Get("lastMonth") == "true"
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	operators, err := db.GetTopRatedOperators(lastMonth, limit)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(operators) == 0 {
		writeJSONError(w, r, http.StatusNotFound, constants.ERR_EMPTY_LIST)
		return
	}
	writeJSONSuccess(w, "Statistics retrieved successfully", operators)
}

// ExportStatistics отдаёт xlsx-отчёт: сводка, операторы, клиенты, оценки.
func ExportStatistics(w http.ResponseWriter, r *http.Request) {
	totals, err := db.GetTotalSessionsStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	operators, err := db.GetTopRatedOperators(false, 100)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	clients, err := db.GetUserStatistics()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	ratings, err := db.GetDetailedRatings()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	sheetName := "Statistics"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Всего сессий", "В очереди", "В работе", "Завершено"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	f.SetCellValue(sheetName, "A2", totals.TotalSessions)
	f.SetCellValue(sheetName, "B2", totals.PendingSessions)
	f.SetCellValue(sheetName, "C2", totals.ProcessingSessions)
	f.SetCellValue(sheetName, "D2", totals.CompletedSessions)

	opSheet := "Операторы"
	f.NewSheet(opSheet)
	opHeaders := []string{"ID", "Имя", "Средняя оценка", "Количество оценок"}
	for i, header := range opHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(opSheet, cell, header)
	}
	for i, op := range operators {
		row := i + 2
		f.SetCellValue(opSheet, fmt.Sprintf("A%d", row), op.OperatorID)
		f.SetCellValue(opSheet, fmt.Sprintf("B%d", row), op.OperatorName)
		f.SetCellValue(opSheet, fmt.Sprintf("C%d", row), op.AverageRating)
		f.SetCellValue(opSheet, fmt.Sprintf("D%d", row), op.TotalRatings)
	}

	clSheet := "Клиенты"
	f.NewSheet(clSheet)
	clHeaders := []string{"ID", "Имя", "Chat ID", "Всего сессий", "Средняя оценка"}
	for i, header := range clHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(clSheet, cell, header)
	}
	for i, cl := range clients {
		row := i + 2
		f.SetCellValue(clSheet, fmt.Sprintf("A%d", row), cl.UserID)
		f.SetCellValue(clSheet, fmt.Sprintf("B%d", row), cl.FullName)
		f.SetCellValue(clSheet, fmt.Sprintf("C%d", row), cl.ChatID)
		f.SetCellValue(clSheet, fmt.Sprintf("D%d", row), cl.TotalSessions)
		f.SetCellValue(clSheet, fmt.Sprintf("E%d", row), cl.AverageRating)
	}

	rtSheet := "Оценки"
	f.NewSheet(rtSheet)
	f.SetCellValue(rtSheet, "A1", "Оценка")
	f.SetCellValue(rtSheet, "B1", "Количество")
	for i, bucket := range ratings {
		row := i + 2
		f.SetCellValue(rtSheet, fmt.Sprintf("A%d", row), bucket.Rate)
		f.SetCellValue(rtSheet, fmt.Sprintf("B%d", row), bucket.Count)
	}

	filename := fmt.Sprintf("statistics_%s.xlsx", uuid.New().String())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		log.Printf("ExportStatistics: ошибка записи xlsx-отчёта: %v", err)
	}
}

// GetQRCode отдаёт PNG с QR-кодом ссылки на бот.
func GetQRCode(botUsername string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qrBytes, err := utils.GenerateQRCode(botUsername)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(qrBytes)
	}
}
