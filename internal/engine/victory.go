package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// checkVictory evaluates the win conditions and, if one holds, moves the
// match to its terminal phase. Werewolves win by wiping out either the
// plain villagers or the god roles; the village wins by exiling the last
// wolf. A match that somehow drags past the day cap is handed to the
// wolves so the loop always terminates.
func (e *Engine) checkVictory(st *game.State) bool {
	var wolves, villagers, gods int
	for _, p := range st.Players {
		if !p.Alive {
			continue
		}
		switch {
		case p.Role == role.Werewolf:
			wolves++
		case p.Role.IsGod():
			gods++
		default:
			villagers++
		}
	}

	switch {
	case wolves == 0:
		st.Winner = role.Good
	case villagers == 0 || gods == 0:
		st.Winner = role.Bad
	case st.Day > e.cfg.Tuning.MaxDays:
		st.AppendSystem(fmt.Sprintf("The village could not end it in %d days. The wolves take the long game.", e.cfg.Tuning.MaxDays))
		st.Winner = role.Bad
	default:
		return false
	}

	e.finishMatch(st)
	return true
}

func (e *Engine) finishMatch(st *game.State) {
	st.Phase = game.PhaseGameOver

	verdict := "The village prevails. All werewolves have been eliminated."
	if st.Winner == role.Bad {
		verdict = "The werewolves win. The village has fallen."
	}
	st.AppendSystem(verdict)
	e.highlight(st, verdict)

	for _, p := range st.Players {
		p.RoleRevealed = true
	}
	st.AppendSystem(rolesReveal(st))

	e.metrics.MatchesFinished.Add(1)
	e.log.Info("match finished", "winner", string(st.Winner), "days", st.Day)

	if e.store != nil {
		rec := MatchRecord{
			Winner:     string(st.Winner),
			Days:       st.Day,
			Highlights: append([]string(nil), st.Highlights...),
		}
		for _, p := range st.Players {
			rec.Seats = append(rec.Seats, MatchSeat{
				ID: p.ID, Name: p.Name, Role: p.Role.Label(),
				Model: p.Model, Survived: p.Alive,
			})
		}
		// Fire and forget: archiving must never stall or fail the match.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.store.SaveMatch(ctx, rec); err != nil {
				e.log.Warn("match archive failed", "error", err)
			}
		}()
	}
}

func rolesReveal(st *game.State) string {
	out := "Final roles:"
	for _, p := range st.Players {
		out += fmt.Sprintf(" Player %d (%s) was %s.", p.ID, p.Name, p.Role.Label())
	}
	return out
}
