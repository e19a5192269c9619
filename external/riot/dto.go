package riot

import (
	"strings"
	"time"

	"github.com/riskibarqy/rift-scout/internal/domain/account"
	"github.com/riskibarqy/rift-scout/internal/domain/match"
)

type accountDTO struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type summonerDTO struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

type activeGameDTO struct {
	GameID        int64                  `json:"gameId"`
	GameMode      string                 `json:"gameMode"`
	GameQueueID   int                    `json:"gameQueueConfigId"`
	GameStartTime int64                  `json:"gameStartTime"`
	GameLength    int64                  `json:"gameLength"`
	Participants  []activeParticipantDTO `json:"participants"`
}

type activeParticipantDTO struct {
	PUUID      string `json:"puuid"`
	SummonerID string `json:"summonerId"`
	RiotID     string `json:"riotId"`
	TeamID     int    `json:"teamId"`
	ChampionID int    `json:"championId"`
	Bot        bool   `json:"bot"`
}

type matchDTO struct {
	Metadata matchMetadataDTO `json:"metadata"`
	Info     matchInfoDTO     `json:"info"`
}

type matchMetadataDTO struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type matchInfoDTO struct {
	GameCreation       int64                 `json:"gameCreation"`
	GameStartTimestamp int64                 `json:"gameStartTimestamp"`
	GameEndTimestamp   int64                 `json:"gameEndTimestamp"`
	GameDuration       int64                 `json:"gameDuration"`
	QueueID            int                   `json:"queueId"`
	Participants       []matchParticipantDTO `json:"participants"`
}

type matchParticipantDTO struct {
	PUUID                string `json:"puuid"`
	ParticipantID        int    `json:"participantId"`
	SummonerName         string `json:"summonerName"`
	RiotIDGameName       string `json:"riotIdGameName"`
	RiotIDTagline        string `json:"riotIdTagline"`
	TeamID               int    `json:"teamId"`
	ChampionID           int    `json:"championId"`
	ChampionName         string `json:"championName"`
	Win                  bool   `json:"win"`
	Kills                int    `json:"kills"`
	Deaths               int    `json:"deaths"`
	Assists              int    `json:"assists"`
	TotalMinionsKilled   int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled int    `json:"neutralMinionsKilled"`
}

func (s summonerDTO) toHandle(displayName string) account.Handle {
	if displayName == "" {
		displayName = s.Name
	}
	return account.Handle{
		DisplayName:   displayName,
		PlayerID:      s.PUUID,
		ProfileIconID: s.ProfileIconID,
		AccountLevel:  s.SummonerLevel,
	}
}

func (g activeGameDTO) toLiveGame() match.LiveGame {
	out := match.LiveGame{
		GameID:       g.GameID,
		Participants: make([]match.Participant, 0, len(g.Participants)),
	}
	if g.GameStartTime > 0 {
		out.StartedAt = time.UnixMilli(g.GameStartTime).UTC()
	}

	// Slot is the position within the team as the spectator list orders it.
	slots := make(map[int]int, 2)
	for _, p := range g.Participants {
		slot := slots[p.TeamID]
		slots[p.TeamID] = slot + 1

		playerID := p.PUUID
		if p.Bot {
			playerID = ""
		}
		out.Participants = append(out.Participants, match.Participant{
			PlayerID:    playerID,
			DisplayName: p.RiotID,
			ChampionID:  p.ChampionID,
			TeamID:      match.Side(p.TeamID),
			Slot:        slot,
			Bot:         p.Bot,
		})
	}
	return out
}

func (m matchDTO) toMatch() match.Match {
	out := match.Match{
		ID:              m.Metadata.MatchID,
		DurationSeconds: durationSeconds(m.Info),
		Players:         make([]match.PlayerResult, 0, len(m.Info.Participants)),
	}
	switch {
	case m.Info.GameStartTimestamp > 0:
		out.StartedAt = time.UnixMilli(m.Info.GameStartTimestamp).UTC()
	case m.Info.GameCreation > 0:
		out.StartedAt = time.UnixMilli(m.Info.GameCreation).UTC()
	}

	for _, p := range m.Info.Participants {
		bot := isBotPUUID(p.PUUID)
		playerID := p.PUUID
		if bot {
			playerID = ""
		}
		out.Players = append(out.Players, match.PlayerResult{
			Participant: match.Participant{
				PlayerID:     playerID,
				DisplayName:  participantName(p),
				ChampionID:   p.ChampionID,
				ChampionName: p.ChampionName,
				TeamID:       match.Side(p.TeamID),
				Slot:         p.ParticipantID,
				Bot:          bot,
			},
			Win:        p.Win,
			Kills:      p.Kills,
			Deaths:     p.Deaths,
			Assists:    p.Assists,
			CreepScore: p.TotalMinionsKilled + p.NeutralMinionsKilled,
		})
	}
	return out
}

// durationSeconds normalizes gameDuration. Matches without gameEndTimestamp report milliseconds.
func durationSeconds(info matchInfoDTO) int {
	if info.GameDuration <= 0 {
		return 0
	}
	if info.GameEndTimestamp == 0 {
		return int(info.GameDuration / 1000)
	}
	return int(info.GameDuration)
}

func participantName(p matchParticipantDTO) string {
	if p.RiotIDGameName != "" {
		if p.RiotIDTagline != "" {
			return p.RiotIDGameName + "#" + p.RiotIDTagline
		}
		return p.RiotIDGameName
	}
	return p.SummonerName
}

func isBotPUUID(puuid string) bool {
	puuid = strings.TrimSpace(puuid)
	return puuid == "" || strings.EqualFold(puuid, "BOT")
}
