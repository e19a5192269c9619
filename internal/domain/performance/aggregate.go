package performance

import "github.com/riskibarqy/rift-scout/internal/domain/match"

// Aggregate filters history to the participant's current champion and averages it.
// It is pure: identical inputs always produce identical output.
func Aggregate(participant match.Participant, history []match.Summary) ChampionPerformance {
	out := ChampionPerformance{ChampionID: participant.ChampionID}

	var (
		kills, deaths, assists int
		csRateSum              float64
		csRateGames            int
	)
	for _, game := range history {
		if game.ChampionID != participant.ChampionID {
			continue
		}

		out.GamesPlayed++
		if game.Win {
			out.Wins++
		}
		kills += game.Kills
		deaths += game.Deaths
		assists += game.Assists

		// Zero-length games (remakes with broken metadata) carry no rate.
		if game.DurationSeconds > 0 {
			csRateSum += float64(game.CreepScore) / (float64(game.DurationSeconds) / 60)
			csRateGames++
		}
	}

	if out.GamesPlayed == 0 {
		return out
	}

	games := float64(out.GamesPlayed)
	out.Losses = out.GamesPlayed - out.Wins
	out.AvgKills = float64(kills) / games
	out.AvgDeaths = float64(deaths) / games
	out.AvgAssists = float64(assists) / games
	out.WinRate = float64(out.Wins) / games
	if csRateGames > 0 {
		out.AvgCreepScorePerMinute = csRateSum / float64(csRateGames)
	}
	out.KDA = float64(kills+assists) / float64(max(deaths, 1))

	return out
}
