// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// Сигнальные ошибки уровня хранилища. API-слой переводит их в коды ответов,
// бот-слой — в сообщения пользователю.
var (
	ErrNotFound     = errors.New("запись не найдена")
	ErrNoMatch      = errors.New("нет совместимой ожидающей сессии")
	ErrInvalidState = errors.New("недопустимое состояние для операции")
	ErrConflict     = errors.New("операция конфликтует с существующей записью")
)

// InitDB инициализирует соединение с базой данных и выполняет миграции.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("ошибка парсинга DATABASE_URL: %v", err)
	}
	query := parsedURL.Query()
	parsedURL.RawQuery = query.Encode()
	finalURL := parsedURL.String()

	DB, err = sql.Open("postgres", finalURL)
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}

	log.Println("Успешное подключение к базе данных.")

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %v", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            chat_id BIGINT UNIQUE NOT NULL,
            role TEXT NOT NULL,
            full_name TEXT,
            phone VARCHAR(20),
            languages TEXT[] NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'NOT_WORKING',
            conversation_step TEXT NOT NULL DEFAULT 'awaiting_operator',
            deleted BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMP NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS sessions (
            id SERIAL PRIMARY KEY,
            client_id INTEGER REFERENCES users(id) NOT NULL,
            operator_id INTEGER REFERENCES users(id),
            status TEXT NOT NULL,
            rate INTEGER,
            deleted BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMP NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            session_id INTEGER REFERENCES sessions(id) NOT NULL,
            sender_id INTEGER REFERENCES users(id) NOT NULL,
            text TEXT,
            file_id TEXT,
            message_type TEXT NOT NULL,
            original_message_id INTEGER NOT NULL,
            relayed_message_id INTEGER,
            reply_to_message_id INTEGER,
            deleted BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS reply_links (
            id SERIAL PRIMARY KEY,
            session_id INTEGER REFERENCES sessions(id) NOT NULL,
            chat_id BIGINT NOT NULL,
            message_id INTEGER NOT NULL,
            peer_chat_id BIGINT NOT NULL,
            peer_message_id INTEGER NOT NULL,
            created_at TIMESTAMP NOT NULL DEFAULT NOW(),
            UNIQUE (session_id, chat_id, message_id)
        );
        CREATE TABLE IF NOT EXISTS chat_states (
            chat_id BIGINT PRIMARY KEY,
            language_code TEXT,
            created_at TIMESTAMP NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMP NOT NULL DEFAULT NOW()
        );
    `
	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("ошибка создания таблиц: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("ошибка фиксации транзакции создания таблиц: %v", err)
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	err = migrateDBSchema()
	if err != nil {
		return fmt.Errorf("ошибка выполнения миграции схемы: %v", err)
	}
	log.Println("Миграция схемы базы данных успешно завершена.")

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_users_chat_id ON users(chat_id);
        CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
        CREATE INDEX IF NOT EXISTS idx_sessions_client_status ON sessions(client_id, status);
        CREATE INDEX IF NOT EXISTS idx_sessions_operator_status ON sessions(operator_id, status);
        CREATE INDEX IF NOT EXISTS idx_sessions_status_created_at ON sessions(status, created_at);
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_sessions_active_client ON sessions(client_id) WHERE status IN ('PENDING', 'PROCESSING') AND deleted = FALSE;
        CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
        CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id);
        CREATE INDEX IF NOT EXISTS idx_reply_links_lookup ON reply_links(session_id, chat_id, message_id);
    `
	indexStatements := strings.Split(strings.TrimSpace(createIndexesSQL), ";")
	for _, stmt := range indexStatements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		_, errIdx := DB.Exec(trimmedStmt)
		if errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v.", trimmedStmt, errIdx)
		}
	}
	log.Println("Создание индексов (если не существуют) завершено.")

	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

// migrateDBSchema выполняет необходимые миграции схемы базы данных.
// Должна быть идемпотентной.
func migrateDBSchema() error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "sessions.rate_range_check",
			sql: `DO $$
                  BEGIN
                      IF NOT EXISTS (
                          SELECT 1 FROM pg_constraint
                          WHERE conrelid = 'sessions'::regclass
                          AND conname = 'sessions_rate_range_check'
                      ) THEN
                          ALTER TABLE sessions ADD CONSTRAINT sessions_rate_range_check CHECK (rate IS NULL OR (rate >= 1 AND rate <= 5));
                      END IF;
                  END$$;`,
		},
		{
			name: "users.status_default",
			sql: `ALTER TABLE users
                  ALTER COLUMN status SET DEFAULT 'NOT_WORKING';`,
		},
		{
			name: "messages.relayed_message_id",
			sql: `ALTER TABLE messages
                  ADD COLUMN IF NOT EXISTS relayed_message_id INTEGER;`,
		},
		{
			name: "chat_states.language_code_nullable",
			sql: `ALTER TABLE chat_states
                  ALTER COLUMN language_code DROP NOT NULL;`,
		},
	}

	for _, migration := range migrations {
		_, err := DB.Exec(migration.sql)
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Миграция '%s' пропущена (объект уже существует). Детали: %v", migration.name, err)
			} else {
				return fmt.Errorf("ошибка миграции схемы ('%s'): %v", migration.name, err)
			}
		} else {
			log.Printf("INFO: Миграция ('%s') успешно применена или объект уже существовал.", migration.name)
		}
	}

	log.Println("Миграция схемы базы данных успешно выполнена (или не требовалась).")
	return nil
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Соединение с базой данных закрыто.")
	}
}
