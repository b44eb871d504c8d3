package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"supportbot/internal/api"
	"supportbot/internal/config"
	"supportbot/internal/db"
	"supportbot/internal/handlers"
	"supportbot/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	seedAdmin()

	err = telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev")
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}

	if telegram_api.Client == nil || telegram_api.Client.GetAPI() == nil {
		log.Fatalf("Критическая ошибка: Telegram API клиент не был корректно инициализирован.")
	}
	botAPI := telegram_api.Client.GetAPI()

	handlerDeps := handlers.HandlerDependencies{
		Config:    cfg,
		BotClient: telegram_api.Client,
	}
	botHandler := handlers.NewBotHandler(handlerDeps)

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.SetupRoutes(apiRouter, api.ApiDependencies{Config: cfg})

	// Обработка запроса иконки, чтобы избежать ошибки 404 в логах
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Запускаем HTTP-сервер в отдельной горутине
	go func() {
		log.Printf("Запуск HTTP-сервера API на порту %s", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	// Запуск самого бота
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Println("Бот и API-сервер запущены и готовы к работе...")

	for update := range updates {
		if update.Message != nil {
			go botHandler.HandleMessage(update)
		} else if update.CallbackQuery != nil {
			go botHandler.HandleCallback(update)
		}
	}
}

// seedAdmin создает администратора при первом запуске, если задан ADMIN_CHAT_ID.
func seedAdmin() {
	raw := os.Getenv("ADMIN_CHAT_ID")
	if raw == "" {
		return
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Предупреждение: невалидный ADMIN_CHAT_ID %q: %v", raw, err)
		return
	}
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}
	if err := db.SeedAdminIfAbsent(chatID, name); err != nil {
		log.Printf("Предупреждение: не удалось создать администратора: %v", err)
	}
}
