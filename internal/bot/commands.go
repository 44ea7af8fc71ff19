package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wordwarden/internal/moderation"
	"wordwarden/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) registerCommands() error {
	manageGuild := int64(discordgo.PermissionManageServer)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "word",
			Description:              "Manage the custom word list",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a word to this server's list",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "word",
							Description: "Word to block",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "severity",
							Description: "low, medium, or high",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "low", Value: "low"},
								{Name: "medium", Value: "medium"},
								{Name: "high", Value: "high"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a word from this server's list",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "word",
							Description: "Word to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show this server's custom words",
				},
			},
		},
		{
			Name:                     "modconfig",
			Description:              "View or change moderation settings",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Enable or disable moderation",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "sensitivity",
					Description: "Detection sensitivity",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "low", Value: "low"},
						{Name: "medium", Value: "medium"},
						{Name: "high", Value: "high"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Base action for flagged messages",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "warn", Value: "warn"},
						{Name: "delete", Value: "delete"},
						{Name: "timeout", Value: "timeout"},
						{Name: "kick", Value: "kick"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "transliteration",
					Description: "Detect keyboard-layout and script swaps",
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "monitor_channel",
					Description: "Toggle a channel on the monitored list",
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "excluded_role",
					Description: "Toggle a role on the exclusion list",
				},
			},
		},
		{
			Name:        "testcontent",
			Description: "Dry-run the content filter on a message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Text to analyze",
					Required:    true,
				},
			},
		},
		{
			Name:        "modreport",
			Description: "Show moderation activity for the last 7 days",
		},
	}

	for _, command := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", command); err != nil {
			return fmt.Errorf("register command %s: %w", command.Name, err)
		}
	}
	return nil
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.GuildID == "" {
		b.respond(session, interaction, "This command only works in a server.", true)
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "word":
		b.handleWord(ctx, session, interaction, data.Options)
	case "modconfig":
		b.handleModConfig(ctx, session, interaction, data.Options)
	case "testcontent":
		b.handleTestContent(ctx, session, interaction, data.Options)
	case "modreport":
		b.handleModReport(ctx, session, interaction)
	}
}

func (b *Bot) handleWord(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, "Missing subcommand.", true)
		return
	}
	sub := options[0]
	guildID := interaction.GuildID
	actorID := interactionUserID(interaction)

	switch sub.Name {
	case "add":
		word := sub.Options[0].StringValue()
		severity := moderation.Severity(sub.Options[1].StringValue())
		entry, err := b.engine.AddBadWord(ctx, word, severity, guildID, actorID)
		if err != nil {
			b.logger.Warn("word add failed", zap.String("guild_id", guildID), zap.Error(err))
			b.respond(session, interaction, "Could not add that word.", true)
			return
		}
		b.audit.Log(ctx, audit.LevelInfo, guildID, actorID, "word_added", entry.Word)
		b.respond(session, interaction, fmt.Sprintf("Added `%s` (%s).", entry.Word, entry.Severity), true)
	case "remove":
		word := sub.Options[0].StringValue()
		removed, err := b.engine.RemoveBadWord(ctx, word, guildID)
		if err != nil {
			b.logger.Warn("word remove failed", zap.String("guild_id", guildID), zap.Error(err))
			b.respond(session, interaction, "Could not remove that word.", true)
			return
		}
		if !removed {
			b.respond(session, interaction, "That word is not on the list.", true)
			return
		}
		b.audit.Log(ctx, audit.LevelInfo, guildID, actorID, "word_removed", word)
		b.respond(session, interaction, fmt.Sprintf("Removed `%s`.", word), true)
	case "list":
		list := b.engine.BadWordsForGuild(ctx, guildID)
		if len(list.Custom) == 0 {
			b.respond(session, interaction, "No custom words configured.", true)
			return
		}
		var lines []string
		for _, entry := range list.Custom {
			scope := "guild"
			if entry.GuildID == "" {
				scope = "global"
			}
			lines = append(lines, fmt.Sprintf("`%s` (%s, %s)", entry.Word, entry.Severity, scope))
		}
		b.respond(session, interaction, strings.Join(lines, "\n"), true)
	}
}

func (b *Bot) handleModConfig(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID := interaction.GuildID
	settings := b.engine.GetGuildSettings(guildID)
	settings.GuildID = guildID

	if len(options) == 0 {
		b.respond(session, interaction, formatSettings(settings), true)
		return
	}

	for _, opt := range options {
		switch opt.Name {
		case "enabled":
			settings.Enabled = opt.BoolValue()
		case "sensitivity":
			settings.Sensitivity = moderation.NormalizeSensitivity(opt.StringValue())
		case "action":
			settings.ActionType = moderation.Action(opt.StringValue())
		case "transliteration":
			settings.EnableScriptTransliteration = opt.BoolValue()
		case "monitor_channel":
			channel := opt.ChannelValue(session)
			if channel != nil {
				settings.MonitoredChannelIDs = toggleID(settings.MonitoredChannelIDs, channel.ID)
			}
		case "excluded_role":
			role := opt.RoleValue(session, guildID)
			if role != nil {
				settings.ExcludedRoleIDs = toggleID(settings.ExcludedRoleIDs, role.ID)
			}
		}
	}

	if err := b.store.UpsertModerationSettings(ctx, settings); err != nil {
		b.logger.Warn("settings update failed", zap.String("guild_id", guildID), zap.Error(err))
		b.respond(session, interaction, "Could not save settings.", true)
		return
	}
	b.engine.SaveGuildSettings(guildID, settings)
	b.audit.Log(ctx, audit.LevelInfo, guildID, interactionUserID(interaction), "settings_updated", string(settings.Sensitivity))
	b.respond(session, interaction, formatSettings(settings), true)
}

func (b *Bot) handleTestContent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respond(session, interaction, "Missing text.", true)
		return
	}
	guildID := interaction.GuildID
	settings := b.engine.GetGuildSettings(guildID)
	result := b.engine.AnalyzeContent(ctx, options[0].StringValue(), moderation.Options{
		Sensitivity:                 settings.Sensitivity,
		EnableScriptTransliteration: settings.EnableScriptTransliteration,
		GuildID:                     guildID,
	})

	if result.IsClean && len(result.DetectedWords) == 0 {
		b.respond(session, interaction, "Clean, nothing detected.", true)
		return
	}
	status := "would be flagged"
	if result.IsClean {
		status = "detected but below the flag threshold"
	}
	b.respond(session, interaction, fmt.Sprintf(
		"Content %s: words=[%s] severity=%s confidence=%.2f action=%s",
		status, strings.Join(result.DetectedWords, ", "), result.Severity, result.Confidence, result.RecommendedAction,
	), true)
}

func (b *Bot) handleModReport(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	report, err := b.analytics.Report(ctx, interaction.GuildID, time.Now().AddDate(0, 0, -7))
	if err != nil {
		b.respond(session, interaction, "Could not build the report.", true)
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Events this week: %d\n", report.Total)
	for level, count := range report.ByLevel {
		fmt.Fprintf(&sb, "%s: %d\n", level, count)
	}
	for _, offender := range report.TopOffenders {
		fmt.Fprintf(&sb, "<@%s>: %d flags\n", offender.UserID, offender.Count)
	}
	b.respond(session, interaction, sb.String(), true)
}

func formatSettings(settings moderation.GuildSettings) string {
	monitored := "all channels"
	if len(settings.MonitoredChannelIDs) > 0 {
		monitored = strings.Join(settings.MonitoredChannelIDs, ", ")
	}
	excluded := "none"
	if len(settings.ExcludedRoleIDs) > 0 {
		excluded = strings.Join(settings.ExcludedRoleIDs, ", ")
	}
	return fmt.Sprintf(
		"enabled=%t sensitivity=%s action=%s transliteration=%t\nmonitored: %s\nexcluded roles: %s",
		settings.Enabled, settings.Sensitivity, settings.ActionType, settings.EnableScriptTransliteration, monitored, excluded,
	)
}

func toggleID(list []string, id string) []string {
	for i, existing := range list {
		if existing == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, id)
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}
