package matchmaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/constants"
	"supportbot/internal/models"
)

func TestLanguagesMatch(t *testing.T) {
	tests := []struct {
		name     string
		operator []string
		client   []string
		want     bool
	}{
		{"exact match", []string{"UZ"}, []string{"UZ"}, true},
		{"operator superset", []string{"UZ", "RU", "EN"}, []string{"RU"}, true},
		{"operator covers several", []string{"UZ", "RU"}, []string{"UZ", "RU"}, true},
		{"operator missing one", []string{"UZ"}, []string{"UZ", "RU"}, false},
		{"no overlap", []string{"EN"}, []string{"RU"}, false},
		{"case insensitive", []string{"uz", "Ru"}, []string{"RU"}, true},
		{"empty client never matches", []string{"UZ", "RU", "EN"}, nil, false},
		{"empty operator", nil, []string{"UZ"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguagesMatch(tt.operator, tt.client))
		})
	}
}

func queueOf(langs ...[]string) []models.PendingSessionCandidate {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	queue := make([]models.PendingSessionCandidate, len(langs))
	for i, l := range langs {
		queue[i] = models.PendingSessionCandidate{
			SessionID:       int64(i + 1),
			ClientID:        int64(100 + i),
			ClientChatID:    int64(1000 + i),
			ClientLanguages: l,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
	}
	return queue
}

func TestSelectCandidateFifoStrict(t *testing.T) {
	queue := queueOf([]string{"RU"}, []string{"EN"})

	t.Run("head compatible", func(t *testing.T) {
		got := SelectCandidate(constants.MATCH_STRATEGY_FIFO_STRICT, []string{"RU", "EN"}, queue)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.SessionID)
	})

	t.Run("head incompatible blocks the queue", func(t *testing.T) {
		// Вторая сессия подошла бы, но строгий FIFO её не отдаёт.
		got := SelectCandidate(constants.MATCH_STRATEGY_FIFO_STRICT, []string{"EN"}, queue)
		assert.Nil(t, got)
	})

	t.Run("empty queue", func(t *testing.T) {
		assert.Nil(t, SelectCandidate(constants.MATCH_STRATEGY_FIFO_STRICT, []string{"RU"}, nil))
	})
}

func TestSelectCandidateBestFit(t *testing.T) {
	queue := queueOf([]string{"RU"}, []string{"EN"}, []string{"EN"})

	t.Run("skips incompatible head", func(t *testing.T) {
		got := SelectCandidate(constants.MATCH_STRATEGY_BEST_FIT, []string{"EN"}, queue)
		require.NotNil(t, got)
		assert.Equal(t, int64(2), got.SessionID, "должна быть выбрана самая старая совместимая сессия")
	})

	t.Run("nothing compatible", func(t *testing.T) {
		got := SelectCandidate(constants.MATCH_STRATEGY_BEST_FIT, []string{"UZ"}, queue)
		assert.Nil(t, got)
	})
}

func TestSelectCandidateUnknownStrategyFallsBackToFifo(t *testing.T) {
	queue := queueOf([]string{"RU"}, []string{"EN"})
	got := SelectCandidate("something_else", []string{"EN"}, queue)
	assert.Nil(t, got, "неизвестная стратегия ведёт себя как fifo_strict")
}
