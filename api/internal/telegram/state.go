package telegram

import "sync"

var chatCurrency sync.Map // chatID -> string

func setCurrency(chatID int64, cur string) { chatCurrency.Store(chatID, cur) }

func getCurrency(chatID int64) string {
	if v, ok := chatCurrency.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}

func clearCurrency(chatID int64) { chatCurrency.Delete(chatID) }
