// internal/config/config.go
package config

import (
	"log"
	"net/url"
	"os"
	"strings"

	"supportbot/internal/constants"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	AppEnv        string
	BotUsername   string
	Port          string
	APIToken      string
	MatchStrategy string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AppEnv:        os.Getenv("ENV"),
		BotUsername:   os.Getenv("BOT_USERNAME"),
		Port:          os.Getenv("PORT"),
		APIToken:      os.Getenv("API_TOKEN"),
		MatchStrategy: os.Getenv("MATCH_STRATEGY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	switch cfg.MatchStrategy {
	case constants.MATCH_STRATEGY_FIFO_STRICT, constants.MATCH_STRATEGY_BEST_FIT:
		// ок
	case "":
		cfg.MatchStrategy = constants.MATCH_STRATEGY_FIFO_STRICT
	default:
		log.Printf("Предупреждение: неизвестное значение MATCH_STRATEGY ('%s'). Используется %s.",
			cfg.MatchStrategy, constants.MATCH_STRATEGY_FIFO_STRICT)
		cfg.MatchStrategy = constants.MATCH_STRATEGY_FIFO_STRICT
	}

	if cfg.TelegramToken == "" {
		log.Println("Критическая ошибка: TELEGRAM_APITOKEN не установлен.")
	}
	if cfg.APIToken == "" {
		log.Println("Предупреждение: API_TOKEN не установлен. Административный API будет недоступен.")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	} else {
		parsedURL, parseErr := url.Parse(cfg.DatabaseURL)
		if parseErr != nil {
			log.Printf("Критическая ошибка: ошибка парсинга DATABASE_URL: %v", parseErr)
		} else {
			cfg.DBHost = parsedURL.Hostname()
			cfg.DBPort = parsedURL.Port()
			if cfg.DBPort == "" {
				cfg.DBPort = "5432"
			}
			cfg.DBUser = parsedURL.User.Username()
			cfg.DBPassword, _ = parsedURL.User.Password()
			cfg.DBName = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}
	if cfg.BotUsername == "" {
		log.Println("Предупреждение: BOT_USERNAME не установлен. Генерация ссылки на бота и QR-кода не будет работать.")
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
