package httpapi

import (
	"time"

	"github.com/riskibarqy/rift-scout/internal/domain/performance"
	"github.com/riskibarqy/rift-scout/internal/usecase"
)

type healthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type rateWindowDTO struct {
	Limit   int `json:"limit"`
	Seconds int `json:"seconds"`
}

type upstreamStatusDTO struct {
	Breaker       string          `json:"breaker"`
	Acquired      int64           `json:"acquired"`
	Throttled     int64           `json:"throttled"`
	CooldownUntil *time.Time      `json:"cooldownUntil,omitempty"`
	Windows       []rateWindowDTO `json:"windows"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

type summonerDTO struct {
	Name          string `json:"name"`
	PUUID         string `json:"puuid"`
	Level         int    `json:"level"`
	ProfileIconID int    `json:"profileIconId"`
}

type recentChampionDTO struct {
	ChampionID   int        `json:"championId"`
	ChampionName string     `json:"championName,omitempty"`
	PlayedAt     *time.Time `json:"playedAt,omitempty"`
}

type unavailableDTO struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

type participantReportDTO struct {
	PlayerID     string                           `json:"playerId,omitempty"`
	DisplayName  string                           `json:"displayName"`
	ChampionID   int                              `json:"championId"`
	ChampionName string                           `json:"championName,omitempty"`
	Team         string                           `json:"team"`
	TeamID       int                              `json:"teamId"`
	Slot         int                              `json:"slot"`
	Bot          bool                             `json:"bot"`
	Performance  *performance.ChampionPerformance `json:"performance,omitempty"`
	Unavailable  *unavailableDTO                  `json:"unavailable,omitempty"`
}

type matchViewDTO struct {
	Summoner       summonerDTO            `json:"summoner"`
	MatchID        string                 `json:"matchId"`
	IsLiveMatch    bool                   `json:"isLiveMatch"`
	MasteryScore   int                    `json:"masteryScore"`
	RecentChampion *recentChampionDTO     `json:"recentChampion,omitempty"`
	Participants   []participantReportDTO `json:"participants"`
}

func matchViewToDTO(view usecase.MatchView) matchViewDTO {
	out := matchViewDTO{
		Summoner: summonerDTO{
			Name:          view.Subject.DisplayName,
			PUUID:         view.Subject.PlayerID,
			Level:         view.Subject.AccountLevel,
			ProfileIconID: view.Subject.ProfileIconID,
		},
		MatchID:      view.MatchID,
		IsLiveMatch:  view.IsLiveMatch,
		MasteryScore: view.MasteryScore,
		Participants: make([]participantReportDTO, 0, len(view.Reports)),
	}

	if recent := view.RecentChampion; recent.ChampionID != 0 {
		out.RecentChampion = &recentChampionDTO{
			ChampionID:   recent.ChampionID,
			ChampionName: recent.ChampionName,
			PlayedAt:     optionalTime(recent.PlayedAt),
		}
	}

	for _, report := range view.Reports {
		p := report.Participant
		item := participantReportDTO{
			PlayerID:     p.PlayerID,
			DisplayName:  p.DisplayName,
			ChampionID:   p.ChampionID,
			ChampionName: p.ChampionName,
			Team:         p.TeamID.String(),
			TeamID:       int(p.TeamID),
			Slot:         p.Slot,
			Bot:          p.Bot,
		}
		switch {
		case report.Unavailable != nil:
			item.Unavailable = &unavailableDTO{
				Reason:  string(report.Unavailable.Reason),
				Message: report.Unavailable.Message,
			}
		case report.Performance != nil:
			perf := *report.Performance
			item.Performance = &perf
		}
		out.Participants = append(out.Participants, item)
	}

	return out
}

func upstreamStatusToDTO(status UpstreamStatus) upstreamStatusDTO {
	windows := make([]rateWindowDTO, 0, len(status.Limiter.Windows))
	for _, w := range status.Limiter.Windows {
		windows = append(windows, rateWindowDTO{Limit: w.Limit, Seconds: w.Seconds})
	}

	return upstreamStatusDTO{
		Breaker:       string(status.BreakerState),
		Acquired:      status.Limiter.Acquired,
		Throttled:     status.Limiter.Throttled,
		CooldownUntil: optionalTime(status.Limiter.CooldownUntil),
		Windows:       windows,
		UpdatedAt:     optionalTime(status.Limiter.UpdatedAt),
	}
}

func optionalTime(v time.Time) *time.Time {
	if v.IsZero() {
		return nil
	}
	utc := v.UTC()
	return &utc
}
