package analytics

import (
	"context"
	"time"

	"wordwarden/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Total        int            `json:"total"`
	ByLevel      map[string]int `json:"by_level"`
	ByEvent      map[string]int `json:"by_event"`
	TopOffenders []Offender     `json:"top_offenders"`
}

type Offender struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// Report aggregates audit entries for one guild since the given time.
func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	logs, err := s.store.ListAuditLogs(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByLevel: make(map[string]int), ByEvent: make(map[string]int)}
	byUser := make(map[string]int)
	for _, log := range logs {
		report.Total++
		report.ByLevel[log.Level]++
		report.ByEvent[log.Event]++
		if log.Event == "content_flagged" && log.UserID != "" {
			byUser[log.UserID]++
		}
	}

	for len(byUser) > 0 && len(report.TopOffenders) < 5 {
		best := ""
		for userID, count := range byUser {
			if best == "" || count > byUser[best] {
				best = userID
			}
		}
		report.TopOffenders = append(report.TopOffenders, Offender{UserID: best, Count: byUser[best]})
		delete(byUser, best)
	}
	return report, nil
}
