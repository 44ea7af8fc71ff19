package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"wordwarden/internal/analytics"
	"wordwarden/internal/moderation"
	"wordwarden/internal/storage"

	"go.uber.org/zap"
)

// Server exposes the moderation engine and audit history over HTTP, plus a
// websocket live feed at /ws.
type Server struct {
	addr      string
	logger    *zap.Logger
	store     *storage.Store
	engine    *moderation.Engine
	analytics *analytics.Service
	hub       *Hub
	http      *http.Server
}

func NewServer(addr string, logger *zap.Logger, store *storage.Store, engine *moderation.Engine, analyticsService *analytics.Service, hub *Hub) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:      addr,
		logger:    logger,
		store:     store,
		engine:    engine,
		analytics: analyticsService,
		hub:       hub,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/guilds/{guildID}/words", s.handleListWords)
	mux.HandleFunc("POST /api/guilds/{guildID}/words", s.handleAddWord)
	mux.HandleFunc("DELETE /api/guilds/{guildID}/words/{word}", s.handleRemoveWord)
	mux.HandleFunc("GET /api/guilds/{guildID}/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/guilds/{guildID}/settings", s.handlePutSettings)
	mux.HandleFunc("GET /api/guilds/{guildID}/audit", s.handleAudit)
	mux.HandleFunc("GET /api/guilds/{guildID}/report", s.handleReport)
	mux.HandleFunc("GET /ws", s.hub.HandleWS)
	return mux
}

func (s *Server) Start() {
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Text            string `json:"text"`
	GuildID         string `json:"guild_id"`
	Sensitivity     string `json:"sensitivity"`
	Transliteration bool   `json:"transliteration"`
}

type detectionDTO struct {
	Word           string  `json:"word"`
	Category       string  `json:"category"`
	Severity       string  `json:"severity"`
	Confidence     float64 `json:"confidence"`
	Method         string  `json:"method"`
	MatchedVariant string  `json:"matched_variant"`
}

type analyzeResponse struct {
	IsClean           bool           `json:"is_clean"`
	DetectedWords     []string       `json:"detected_words"`
	Detections        []detectionDTO `json:"detections"`
	Severity          string         `json:"severity"`
	Confidence        float64        `json:"confidence"`
	RecommendedAction string         `json:"recommended_action"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	opts := moderation.Options{
		Sensitivity:                 moderation.NormalizeSensitivity(req.Sensitivity),
		EnableScriptTransliteration: req.Transliteration,
		GuildID:                     req.GuildID,
	}
	if req.GuildID != "" && req.Sensitivity == "" {
		settings := s.engine.GetGuildSettings(req.GuildID)
		opts.Sensitivity = settings.Sensitivity
		opts.EnableScriptTransliteration = settings.EnableScriptTransliteration
	}

	result := s.engine.AnalyzeContent(r.Context(), req.Text, opts)
	writeJSON(w, http.StatusOK, toAnalyzeResponse(result))
}

type wordDTO struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	GuildID  string `json:"guild_id"`
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	list := s.engine.BadWordsForGuild(r.Context(), r.PathValue("guildID"))
	out := make([]wordDTO, 0, len(list.Custom))
	for _, entry := range list.Custom {
		out = append(out, wordDTO{
			Word:     entry.Word,
			Category: entry.Category,
			Severity: string(entry.Severity),
			GuildID:  entry.GuildID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var req wordDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	entry, err := s.engine.AddBadWord(r.Context(), req.Word, moderation.Severity(req.Severity), r.PathValue("guildID"), "dashboard")
	if err != nil {
		if errors.Is(err, moderation.ErrEmptyWord) || errors.Is(err, moderation.ErrInvalidSeverity) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Warn("word add failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	writeJSON(w, http.StatusCreated, wordDTO{
		Word:     entry.Word,
		Category: entry.Category,
		Severity: string(entry.Severity),
		GuildID:  entry.GuildID,
	})
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	removed, err := s.engine.RemoveBadWord(r.Context(), r.PathValue("word"), r.PathValue("guildID"))
	if err != nil {
		if errors.Is(err, moderation.ErrEmptyWord) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Warn("word remove failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingsDTO struct {
	GuildID             string   `json:"guild_id"`
	Enabled             bool     `json:"enabled"`
	Transliteration     bool     `json:"transliteration"`
	ActionType          string   `json:"action_type"`
	Sensitivity         string   `json:"sensitivity"`
	CustomWords         []string `json:"custom_words"`
	MonitoredChannelIDs []string `json:"monitored_channels"`
	ExcludedRoleIDs     []string `json:"excluded_roles"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.engine.GetGuildSettings(r.PathValue("guildID"))
	settings.GuildID = r.PathValue("guildID")
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	settings := moderation.GuildSettings{
		GuildID:                     r.PathValue("guildID"),
		Enabled:                     req.Enabled,
		EnableScriptTransliteration: req.Transliteration,
		ActionType:                  moderation.Action(req.ActionType),
		Sensitivity:                 moderation.NormalizeSensitivity(req.Sensitivity),
		CustomWords:                 req.CustomWords,
		MonitoredChannelIDs:         req.MonitoredChannelIDs,
		ExcludedRoleIDs:             req.ExcludedRoleIDs,
	}
	if err := s.store.UpsertModerationSettings(r.Context(), settings); err != nil {
		s.logger.Warn("settings update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	s.engine.SaveGuildSettings(settings.GuildID, settings)
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

type auditDTO struct {
	ID        int64     `json:"id"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Level     string    `json:"level"`
	Event     string    `json:"event"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	logs, err := s.store.ListAuditLogs(r.Context(), r.PathValue("guildID"), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		s.logger.Warn("audit list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	out := make([]auditDTO, 0, len(logs))
	for _, log := range logs {
		out = append(out, auditDTO{
			ID:        log.ID,
			GuildID:   log.GuildID,
			UserID:    log.UserID,
			Level:     log.Level,
			Event:     log.Event,
			Details:   log.Details,
			CreatedAt: log.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	report, err := s.analytics.Report(r.Context(), r.PathValue("guildID"), time.Now().AddDate(0, 0, -days))
	if err != nil {
		s.logger.Warn("report failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func toAnalyzeResponse(result moderation.AnalysisResult) analyzeResponse {
	out := analyzeResponse{
		IsClean:           result.IsClean,
		DetectedWords:     result.DetectedWords,
		Detections:        make([]detectionDTO, 0, len(result.DetectedDetails)),
		Severity:          string(result.Severity),
		Confidence:        result.Confidence,
		RecommendedAction: string(result.RecommendedAction),
	}
	for _, d := range result.DetectedDetails {
		out.Detections = append(out.Detections, detectionDTO{
			Word:           d.Word,
			Category:       d.Category,
			Severity:       string(d.Severity),
			Confidence:     d.Confidence,
			Method:         d.Method,
			MatchedVariant: d.MatchedVariant,
		})
	}
	return out
}

func toSettingsDTO(settings moderation.GuildSettings) settingsDTO {
	return settingsDTO{
		GuildID:             settings.GuildID,
		Enabled:             settings.Enabled,
		Transliteration:     settings.EnableScriptTransliteration,
		ActionType:          string(settings.ActionType),
		Sensitivity:         string(settings.Sensitivity),
		CustomWords:         settings.CustomWords,
		MonitoredChannelIDs: settings.MonitoredChannelIDs,
		ExcludedRoleIDs:     settings.ExcludedRoleIDs,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
