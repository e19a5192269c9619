package performance

import "github.com/riskibarqy/rift-scout/internal/domain/match"

// ChampionPerformance aggregates one player's history on one champion.
// GamesPlayed == 0 is a valid result meaning "no history on this champion".
type ChampionPerformance struct {
	ChampionID             int     `json:"championId"`
	GamesPlayed            int     `json:"gamesPlayed"`
	Wins                   int     `json:"wins"`
	Losses                 int     `json:"losses"`
	AvgKills               float64 `json:"avgKills"`
	AvgDeaths              float64 `json:"avgDeaths"`
	AvgAssists             float64 `json:"avgAssists"`
	AvgCreepScorePerMinute float64 `json:"avgCreepScorePerMinute"`
	WinRate                float64 `json:"winRate"`
	KDA                    float64 `json:"kda"`
}

type UnavailableReason string

const (
	ReasonRateLimited UnavailableReason = "rate_limited"
	ReasonFetchFailed UnavailableReason = "fetch_failed"
	ReasonNoData      UnavailableReason = "no_data"
	ReasonTimeout     UnavailableReason = "timeout"
)

// Unavailable marks a participant whose statistics could not be produced.
type Unavailable struct {
	Reason  UnavailableReason
	Message string
}

// ParticipantReport is one row of a match view. Exactly one of Performance or Unavailable is set.
type ParticipantReport struct {
	Participant match.Participant
	Performance *ChampionPerformance
	Unavailable *Unavailable
}

func Available(p match.Participant, perf ChampionPerformance) ParticipantReport {
	return ParticipantReport{Participant: p, Performance: &perf}
}

func Unavailablef(p match.Participant, reason UnavailableReason, message string) ParticipantReport {
	return ParticipantReport{Participant: p, Unavailable: &Unavailable{Reason: reason, Message: message}}
}

func (r ParticipantReport) IsAvailable() bool {
	return r.Performance != nil && r.Unavailable == nil
}
