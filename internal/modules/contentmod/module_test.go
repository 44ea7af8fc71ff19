package contentmod

import (
	"context"
	"testing"

	"wordwarden/internal/config"
	"wordwarden/internal/moderation"
	"wordwarden/internal/modules/audit"
	"wordwarden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestModule(t *testing.T) (*Module, *storage.Store) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	auditLogger := audit.NewLogger(store, zap.NewNop())
	engine := moderation.NewEngine(store, moderation.Defaults{
		Sensitivity: moderation.SensitivityMedium,
		ActionType:  moderation.ActionDelete,
	}, zap.NewNop())
	cfg := config.DefaultConfig()
	return New(engine, store, auditLogger, zap.NewNop(), cfg.Moderation, cfg.Escalation), store
}

func makeMessage(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "1",
		ChannelID: "c1",
		GuildID:   "g1",
		Author:    &discordgo.User{ID: "u1"},
		Content:   content,
	}}
}

func TestFlagsProfanity(t *testing.T) {
	module, _ := newTestModule(t)

	msg := makeMessage("well fuck this place")
	result, flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg, "g1", true)
	if !flagged {
		t.Fatalf("expected flag, got %+v", result)
	}
	if result.Severity != moderation.SeverityHigh {
		t.Fatalf("severity = %q, want high", result.Severity)
	}
}

func TestIgnoresSafeMessage(t *testing.T) {
	module, _ := newTestModule(t)

	msg := makeMessage("hello everyone, welcome to the server")
	if _, flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg, "g1", true); flagged {
		t.Fatal("did not expect flag")
	}
}

func TestIgnoresBotsAndDisabledGuilds(t *testing.T) {
	module, _ := newTestModule(t)

	msg := makeMessage("well fuck this place")
	msg.Author.Bot = true
	if _, flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg, "g1", true); flagged {
		t.Fatal("bot messages should be skipped")
	}

	module.engine.SaveGuildSettings("g2", moderation.GuildSettings{GuildID: "g2", Enabled: false})
	msg = makeMessage("well fuck this place")
	msg.GuildID = "g2"
	if _, flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg, "g2", true); flagged {
		t.Fatal("disabled guild should be skipped")
	}
}

func TestSkipsExcludedRoles(t *testing.T) {
	module, _ := newTestModule(t)

	module.engine.SaveGuildSettings("g1", moderation.GuildSettings{
		GuildID:         "g1",
		Enabled:         true,
		ExcludedRoleIDs: []string{"mods"},
	})
	msg := makeMessage("well fuck this place")
	msg.Member = &discordgo.Member{Roles: []string{"mods"}}
	if _, flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg, "g1", true); flagged {
		t.Fatal("excluded role should be skipped")
	}
}

func TestEscalationUpgradesAction(t *testing.T) {
	module, store := newTestModule(t)
	ctx := context.Background()

	for i := 0; i < module.escalation.TimeoutAfter-1; i++ {
		if _, err := store.IncrementViolation(ctx, "g1", "u1", "delete", 0); err != nil {
			t.Fatalf("seed violation: %v", err)
		}
	}
	action := module.escalate(ctx, "g1", "u1", moderation.ActionDelete)
	if action != moderation.ActionTimeout {
		t.Fatalf("action = %q, want timeout", action)
	}

	for i := 0; i < module.escalation.KickAfter; i++ {
		if _, err := store.IncrementViolation(ctx, "g1", "u2", "delete", 0); err != nil {
			t.Fatalf("seed violation: %v", err)
		}
	}
	action = module.escalate(ctx, "g1", "u2", moderation.ActionDelete)
	if action != moderation.ActionKick {
		t.Fatalf("action = %q, want kick", action)
	}
}
