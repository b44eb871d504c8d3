package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// BotClient представляет собой обертку для Telegram Bot API.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// Глобальный экземпляр бота для пакета
var Client *BotClient

// InitBot инициализирует Telegram бота.
// token - API токен бота, debug - флаг режима отладки.
func InitBot(token string, debug bool) error {
	if token == "" {
		return fmt.Errorf("токен Telegram API не предоставлен")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}

	api.Debug = debug

	log.Printf("Авторизован как аккаунт %s", api.Self.UserName)

	// Отключаем вебхук, если он активен (важно для getUpdates)
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	}
	_, err = api.Request(deleteWebhookConfig)
	if err != nil {
		log.Printf("Предупреждение или ошибка при отключении вебхука: %v. Это может быть нормально, если вебхук не был установлен.", err)
	} else {
		log.Println("Вебхук успешно отключен (или не был установлен).")
	}

	Client = &BotClient{
		api:   api,
		Debug: debug,
	}
	return nil
}

// GetAPI возвращает нижележащий экземпляр *tgbotapi.BotAPI.
func (bc *BotClient) GetAPI() *tgbotapi.BotAPI {
	if bc == nil || bc.api == nil {
		log.Fatal("BotClient или его API не инициализирован.")
	}
	return bc.api
}

// GetUpdatesChan возвращает канал обновлений от Telegram.
func (bc *BotClient) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if bc == nil || bc.api == nil {
		log.Fatal("BotClient или его API не инициализирован перед запросом обновлений.")
	}
	return bc.api.GetUpdatesChan(config)
}

// Send отправляет сообщение через BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			log.Printf("Отправка сообщения: ChatID=%d, Text='%.50s...'", msg.ChatID, msg.Text)
		} else {
			log.Printf("Отправка/запрос типа %T", c)
		}
	}
	return bc.api.Send(c)
}

// Request выполняет запрос через BotClient.
func (bc *BotClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if delMsg, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			log.Printf("Запрос на удаление: ChatID=%d, MessageID=%d", delMsg.ChatID, delMsg.MessageID)
		} else {
			log.Printf("Выполнение запроса типа %T", c)
		}
	}
	return bc.api.Request(c)
}

// CopyMessage копирует сообщение в другой чат и возвращает id новой копии.
// replyToMessageID больше нуля — копия отправляется как ответ на сообщение
// в чате назначения.
func (bc *BotClient) CopyMessage(fromChatID int64, messageID int, toChatID int64, replyToMessageID int) (int, error) {
	if bc == nil || bc.api == nil {
		return 0, fmt.Errorf("BotClient или его API не инициализирован")
	}
	copyConfig := tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID)
	if replyToMessageID > 0 {
		copyConfig.ReplyParameters = tgbotapi.ReplyParameters{MessageID: replyToMessageID}
	}
	newMsg, err := bc.api.CopyMessage(copyConfig)
	if err != nil {
		return 0, err
	}
	if bc.Debug {
		log.Printf("Скопировано сообщение %d из чата %d в чат %d как %d (replyTo=%d)",
			messageID, fromChatID, toChatID, newMsg.MessageID, replyToMessageID)
	}
	return newMsg.MessageID, nil
}

// GetFileSize возвращает размер файла в байтах по его FileID.
func (bc *BotClient) GetFileSize(fileID string) (int64, error) {
	if bc == nil || bc.api == nil {
		return 0, fmt.Errorf("BotClient или его API не инициализирован")
	}
	file, err := bc.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return 0, err
	}
	return file.FileSize, nil
}
