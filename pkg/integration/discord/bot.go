package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/commands"
)

// Prefix starts every Discord command.
const Prefix = "!"

// Bot wraps the Discord session and dependencies
type Bot struct {
	Session *discordgo.Session
	Handler *commands.Handler
	Logger  *slog.Logger
}

// NewBot creates a new Discord bot
func NewBot(token string, handler *commands.Handler, logger *slog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	bot := &Bot{
		Session: dg,
		Handler: handler,
		Logger:  logger,
	}

	dg.AddHandler(bot.messageCreate)

	return bot, nil
}

// Run opens the websocket connection and keeps it until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}
	b.Logger.Info("discord bot started")
	<-ctx.Done()
	return b.Session.Close()
}

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from self
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}

	reply := b.Reply(context.Background(), m.Author.Username, m.Author.ID, m.Content)
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.Logger.Warn("failed to send Discord reply", "error", err)
	}
}

// Reply works out the answer to one message from a user.
func (b *Bot) Reply(ctx context.Context, userName, userID, text string) string {
	cmd, content := commands.ParseCommand(Prefix, text)
	if cmd == "" {
		return ""
	}
	if !b.Handler.Allows(userName, userID) {
		b.Logger.Warn("discord command from unknown user", "user", userName, "id", userID)
		return "Sorry, you are not allowed to use this bot."
	}
	b.Logger.Info("discord command", "command", cmd, "user", userName)
	return b.Handler.Handle(ctx, Prefix, cmd, content)
}
