package utils

import (
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"
)

// GenerateBotLink генерирует ссылку для входа в бот поддержки.
// botUsername должен передаваться, так как это конфигурационное значение.
func GenerateBotLink(botUsername string) (string, error) {
	if botUsername == "" {
		log.Println("GenerateBotLink: botUsername не предоставлен.")
		return "", fmt.Errorf("имя пользователя бота не настроено")
	}
	return fmt.Sprintf("https://t.me/%s", botUsername), nil
}

// GenerateQRCode генерирует QR-код со ссылкой на бот — для стоек и буклетов.
func GenerateQRCode(botUsername string) ([]byte, error) {
	link, err := GenerateBotLink(botUsername)
	if err != nil {
		log.Printf("GenerateQRCode: ошибка генерации ссылки для QR-кода: %v", err)
		return nil, err
	}

	// qrcode.Medium - уровень коррекции ошибок, 256 - размер QR-кода в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GenerateQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
