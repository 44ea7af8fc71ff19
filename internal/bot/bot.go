package bot

import (
	"context"
	"fmt"

	"wordwarden/internal/analytics"
	"wordwarden/internal/config"
	"wordwarden/internal/moderation"
	"wordwarden/internal/modules/audit"
	"wordwarden/internal/modules/contentmod"
	"wordwarden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	engine    *moderation.Engine
	audit     *audit.Logger
	analytics *analytics.Service
	session   *discordgo.Session
	content   *contentmod.Module
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, engine *moderation.Engine, auditLogger *audit.Logger, analyticsService *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		engine:    engine,
		audit:     auditLogger,
		analytics: analyticsService,
		session:   session,
	}
	b.content = contentmod.New(engine, store, auditLogger, logger, cfg.Moderation, cfg.Escalation)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageUpdate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	ctx := context.Background()
	b.content.HandleMessage(ctx, session, msg, msg.GuildID, b.auditOnly())
}

// Edited messages go through the same scan so edits cannot smuggle content
// past the filter.
func (b *Bot) onMessageUpdate(session *discordgo.Session, msg *discordgo.MessageUpdate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" || msg.Content == "" {
		return
	}

	ctx := context.Background()
	created := &discordgo.MessageCreate{Message: msg.Message}
	b.content.HandleMessage(ctx, session, created, msg.GuildID, b.auditOnly())
}

func (b *Bot) auditOnly() bool {
	return b.cfg.Mode == "audit"
}

// NotifyAudit mirrors an audit entry into the configured moderation channel.
// A no-op when no channel is set.
func (b *Bot) NotifyAudit(ctx context.Context, entry storage.AuditLog) {
	_ = ctx
	channelID := b.cfg.Moderation.NotifyChannelID
	if channelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Moderation event",
		Description: entry.Event,
		Color:       embedColor(entry.Level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: entry.Level, Inline: true},
			{Name: "User", Value: userMention(entry.UserID), Inline: true},
			{Name: "Details", Value: entry.Details},
		},
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("audit notify failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func embedColor(level string) int {
	switch level {
	case audit.LevelCrit:
		return 0xEF4444
	case audit.LevelWarn:
		return 0xF59E0B
	default:
		return 0x3B82F6
	}
}

func userMention(userID string) string {
	if userID == "" {
		return "n/a"
	}
	return fmt.Sprintf("<@%s>", userID)
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}
