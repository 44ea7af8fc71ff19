package contentmod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wordwarden/internal/config"
	"wordwarden/internal/moderation"
	"wordwarden/internal/modules/audit"
	"wordwarden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Module scans guild messages with the moderation engine and applies the
// recommended action, escalating for repeat offenders.
type Module struct {
	engine     *moderation.Engine
	store      *storage.Store
	audit      *audit.Logger
	logger     *zap.Logger
	moderation config.ModerationConfig
	escalation config.EscalationConfig
}

func New(engine *moderation.Engine, store *storage.Store, auditLogger *audit.Logger, logger *zap.Logger, modCfg config.ModerationConfig, escCfg config.EscalationConfig) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{
		engine:     engine,
		store:      store,
		audit:      auditLogger,
		logger:     logger,
		moderation: modCfg,
		escalation: escCfg,
	}
}

func (m *Module) HandleMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, guildID string, auditOnly bool) (moderation.AnalysisResult, bool) {
	if msg == nil || msg.Content == "" || msg.Author == nil || msg.Author.Bot {
		return moderation.AnalysisResult{IsClean: true}, false
	}

	settings := m.engine.GetGuildSettings(guildID)
	if !settings.Enabled {
		return moderation.AnalysisResult{IsClean: true}, false
	}
	if !m.engine.ShouldMonitorChannel(guildID, msg.ChannelID) {
		return moderation.AnalysisResult{IsClean: true}, false
	}
	if msg.Member != nil && m.engine.IsUserExcluded(guildID, msg.Member.Roles) {
		return moderation.AnalysisResult{IsClean: true}, false
	}

	result := m.engine.AnalyzeContent(ctx, msg.Content, moderation.Options{
		Sensitivity:                 settings.Sensitivity,
		EnableScriptTransliteration: settings.EnableScriptTransliteration,
		GuildID:                     guildID,
	})
	if result.IsClean {
		return result, false
	}

	detail := fmt.Sprintf("flagged words=%s severity=%s confidence=%.2f", strings.Join(result.DetectedWords, ","), result.Severity, result.Confidence)
	m.audit.Log(ctx, auditLevel(result.Severity), guildID, msg.Author.ID, "content_flagged", detail)

	if auditOnly {
		return result, true
	}

	// The guild's configured action is a floor; the engine's recommendation
	// can raise it for severe content.
	action := result.RecommendedAction
	if settings.ActionType != "" && actionRank(settings.ActionType) > actionRank(action) {
		action = settings.ActionType
	}
	action = m.escalate(ctx, guildID, msg.Author.ID, action)

	m.apply(session, msg, guildID, action)
	m.audit.Log(ctx, audit.LevelInfo, guildID, msg.Author.ID, "action_applied", string(action))
	return result, true
}

// escalate upgrades the action once the member's violation count crosses the
// configured thresholds.
func (m *Module) escalate(ctx context.Context, guildID, userID string, action moderation.Action) moderation.Action {
	if !m.escalation.Enabled {
		return action
	}
	forgive := time.Duration(m.escalation.ForgivenessMinutes) * time.Minute
	count, err := m.store.IncrementViolation(ctx, guildID, userID, string(action), forgive)
	if err != nil {
		m.logger.Warn("violation tracking failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		return action
	}
	switch {
	case m.escalation.KickAfter > 0 && count >= m.escalation.KickAfter:
		return moderation.ActionKick
	case m.escalation.TimeoutAfter > 0 && count >= m.escalation.TimeoutAfter && actionRank(action) < actionRank(moderation.ActionTimeout):
		return moderation.ActionTimeout
	default:
		return action
	}
}

func (m *Module) apply(session *discordgo.Session, msg *discordgo.MessageCreate, guildID string, action moderation.Action) {
	switch action {
	case moderation.ActionWarn:
		m.warn(session, msg)
	case moderation.ActionDelete:
		if err := session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
			m.logger.Warn("message delete failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		}
		m.warn(session, msg)
	case moderation.ActionTimeout:
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		until := time.Now().Add(time.Duration(m.moderation.TimeoutMinutes) * time.Minute)
		if err := session.GuildMemberTimeout(guildID, msg.Author.ID, &until); err != nil {
			m.logger.Warn("member timeout failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
		}
	case moderation.ActionKick:
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		if err := session.GuildMemberDeleteWithReason(guildID, msg.Author.ID, "repeated content violations"); err != nil {
			m.logger.Warn("member kick failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
		}
	}
}

func (m *Module) warn(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if !m.moderation.DMWarnEnabled {
		return
	}
	channel, err := session.UserChannelCreate(msg.Author.ID)
	if err != nil {
		return
	}
	_, _ = session.ChannelMessageSend(channel.ID, "Your message was removed because it violated this server's content rules.")
}

func auditLevel(severity moderation.Severity) string {
	if severity == moderation.SeverityHigh {
		return audit.LevelCrit
	}
	return audit.LevelWarn
}

func actionRank(action moderation.Action) int {
	switch action {
	case moderation.ActionWarn:
		return 0
	case moderation.ActionDelete:
		return 1
	case moderation.ActionTimeout:
		return 2
	case moderation.ActionKick:
		return 3
	default:
		return 0
	}
}
