// Package bot delivers review reminders through Telegram.
package bot

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/petwords/internal/logger"
)

// ErrUnknownAccount is returned for an account with no chat configured
var ErrUnknownAccount = errors.New("no chat configured for account")

// sender is the part of tgbotapi.BotAPI the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends reminders to the Telegram chat mapped to each account
type Notifier struct {
	api   sender
	chats map[string]int64
	log   *logger.Logger
}

// NewNotifier connects to Telegram with token
func NewNotifier(token string, chats map[string]int64, log *logger.Logger) (*Notifier, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info("authorized on telegram", "account", api.Self.UserName)
	return newNotifier(api, chats, log), nil
}

func newNotifier(api sender, chats map[string]int64, log *logger.Logger) *Notifier {
	copied := make(map[string]int64, len(chats))
	for k, v := range chats {
		copied[k] = v
	}
	return &Notifier{api: api, chats: copied, log: log.With("service", "TelegramNotifier")}
}

// Accounts returns the accounts that have a chat configured
func (n *Notifier) Accounts() []string {
	ids := make([]string, 0, len(n.chats))
	for id := range n.chats {
		ids = append(ids, id)
	}
	return ids
}

// SendReminders implements the scheduler.Notifier interface
func (n *Notifier) SendReminders(accountID string, count int) error {
	chatID, ok := n.chats[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	msg := tgbotapi.NewMessage(chatID, ReminderText(count))
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warn("failed to send reminder", "account", accountID, "error", err)
		return err
	}
	n.log.Info("sent reminder", "account", accountID, "count", count)
	return nil
}

// ReminderText formats the reminder for count due words
func ReminderText(count int) string {
	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}
	return fmt.Sprintf("You have %d %s to review! Open PET Words to keep your streak going.", count, wordForm)
}
