// Пакет matchmaker содержит правило совместимости по языкам и стратегии выбора
// ожидающей сессии. Сам выбор строки и её блокировка выполняются в транзакции
// слоя db; здесь только чистая логика, чтобы её можно было проверять тестами.
package matchmaker

import (
	"strings"

	"supportbot/internal/constants"
	"supportbot/internal/models"
)

// LanguagesMatch сообщает, покрывает ли набор языков оператора все языки клиента.
// Сравнение без учёта регистра. Пустой список клиента считается несовместимым:
// у корректной записи клиента всегда есть хотя бы один язык.
func LanguagesMatch(operatorLanguages, clientLanguages []string) bool {
	if len(clientLanguages) == 0 {
		return false
	}
	set := make(map[string]bool, len(operatorLanguages))
	for _, l := range operatorLanguages {
		set[strings.ToUpper(l)] = true
	}
	for _, l := range clientLanguages {
		if !set[strings.ToUpper(l)] {
			return false
		}
	}
	return true
}

// SelectCandidate выбирает сессию для оператора из списка кандидатов,
// отсортированного по возрастанию времени создания (голова очереди первой).
//
// fifo_strict: рассматривается только голова очереди; если она несовместима,
// не подаётся ничего — строгая честность по порядку ожидания.
// best_fit: очередь просматривается от старых к новым до первой совместимой.
//
// Возвращает nil, когда подходящей сессии нет.
func SelectCandidate(strategy string, operatorLanguages []string, queue []models.PendingSessionCandidate) *models.PendingSessionCandidate {
	if len(queue) == 0 {
		return nil
	}
	switch strategy {
	case constants.MATCH_STRATEGY_BEST_FIT:
		for i := range queue {
			if LanguagesMatch(operatorLanguages, queue[i].ClientLanguages) {
				return &queue[i]
			}
		}
		return nil
	default:
		// fifo_strict — поведение по умолчанию
		if LanguagesMatch(operatorLanguages, queue[0].ClientLanguages) {
			return &queue[0]
		}
		return nil
	}
}
