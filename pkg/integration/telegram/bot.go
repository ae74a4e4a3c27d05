package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/commands"
)

// Prefix starts every Telegram command.
const Prefix = "/"

// Sender posts a reply. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram bot API and dependencies
type Bot struct {
	API     *tgbotapi.BotAPI
	Handler *commands.Handler
	Logger  *slog.Logger
	sender  Sender
}

// NewBot creates a new Telegram bot
func NewBot(token string, handler *commands.Handler, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		API:     api,
		Handler: handler,
		Logger:  logger,
		sender:  api,
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.API.GetUpdatesChan(u)
	defer b.API.StopReceivingUpdates()

	b.Logger.Info("telegram bot started", "user", b.API.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	cmd, content := commands.ParseCommand(Prefix, msg.Text)
	if cmd == "" {
		return
	}

	var userName, userID string
	if msg.From != nil {
		userName = msg.From.UserName
		userID = strconv.FormatInt(msg.From.ID, 10)
	}
	if !b.Handler.Allows(userName, userID) {
		b.Logger.Warn("telegram command from unknown user", "user", userName, "id", userID)
		b.reply(msg.Chat.ID, "Sorry, you are not allowed to use this bot.")
		return
	}

	b.Logger.Info("telegram command", "command", cmd, "user", userName)
	if text := b.Handler.Handle(ctx, Prefix, cmd, content); text != "" {
		b.reply(msg.Chat.ID, text)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.Logger.Warn("failed to send Telegram reply", "error", err)
	}
}
