package match

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Side is the team a participant plays on. The upstream encodes blue as 100 and red as 200.
type Side int

const (
	SideBlue Side = 100
	SideRed  Side = 200
)

func (s Side) String() string {
	switch s {
	case SideBlue:
		return "blue"
	case SideRed:
		return "red"
	default:
		return fmt.Sprintf("team-%d", int(s))
	}
}

// Participant is one player in a located match together with the champion they are on.
// The champion recorded when the match started is authoritative.
type Participant struct {
	PlayerID     string
	DisplayName  string
	ChampionID   int
	ChampionName string
	TeamID       Side
	Slot         int
	Bot          bool
}

// Summary is one completed match from a single player's point of view.
type Summary struct {
	MatchID         string
	ChampionID      int
	ChampionName    string
	Win             bool
	Kills           int
	Deaths          int
	Assists         int
	CreepScore      int
	DurationSeconds int
	PlayedAt        time.Time
}

// Lineup is the outcome of locating a match for a player.
type Lineup struct {
	MatchID      string
	IsLive       bool
	Participants []Participant
}

// LiveGame is an in-progress match as reported by the spectator service.
type LiveGame struct {
	GameID       int64
	StartedAt    time.Time
	Participants []Participant
}

// PlayerResult is one participant's line in a completed match.
type PlayerResult struct {
	Participant
	Win        bool
	Kills      int
	Deaths     int
	Assists    int
	CreepScore int
}

// Match is a completed match with every participant's line.
type Match struct {
	ID              string
	StartedAt       time.Time
	DurationSeconds int
	Players         []PlayerResult
}

// SummaryFor projects the match onto one player. ok is false if the player did not take part.
func (m Match) SummaryFor(playerID string) (Summary, bool) {
	for _, p := range m.Players {
		if p.PlayerID == "" || p.PlayerID != playerID {
			continue
		}
		return Summary{
			MatchID:         m.ID,
			ChampionID:      p.ChampionID,
			ChampionName:    p.ChampionName,
			Win:             p.Win,
			Kills:           p.Kills,
			Deaths:          p.Deaths,
			Assists:         p.Assists,
			CreepScore:      p.CreepScore,
			DurationSeconds: m.DurationSeconds,
			PlayedAt:        m.StartedAt,
		}, true
	}
	return Summary{}, false
}

// Participants returns the match roster in canonical order.
func (m Match) Participants() []Participant {
	out := make([]Participant, 0, len(m.Players))
	for _, p := range m.Players {
		out = append(out, p.Participant)
	}
	SortParticipants(out)
	return out
}

// SortParticipants orders by side, then slot. The sort is stable so equal keys keep source order.
func SortParticipants(participants []Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].TeamID != participants[j].TeamID {
			return participants[i].TeamID < participants[j].TeamID
		}
		return participants[i].Slot < participants[j].Slot
	})
}

// SortNewestFirst orders summaries by start time descending, then match id descending.
func SortNewestFirst(history []Summary) {
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].PlayedAt.Equal(history[j].PlayedAt) {
			return history[i].PlayedAt.After(history[j].PlayedAt)
		}
		return strings.Compare(history[i].MatchID, history[j].MatchID) > 0
	})
}
