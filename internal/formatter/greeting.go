package formatter

import "strings"

// Greeting возвращает приветствие для получателя. Владелец рассылки
// (сравнение адресов без учёта регистра) получает обращение по имени.
func Greeting(recipient, ownerEmail, ownerName string) string {
	recipient = strings.TrimSpace(recipient)
	ownerEmail = strings.TrimSpace(ownerEmail)
	ownerName = strings.TrimSpace(ownerName)
	if ownerEmail != "" && ownerName != "" && strings.EqualFold(recipient, ownerEmail) {
		return "Good morning, " + ownerName
	}
	return "Good morning"
}
