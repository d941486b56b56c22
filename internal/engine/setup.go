package engine

import (
	"fmt"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// newMatch deals a fresh board: the fixed role multiset shuffled over the
// twelve configured personas, a playstyle each, and a model assignment
// that gives the information-bearing roles the stronger backend.
func (e *Engine) newMatch() *game.State {
	roles := role.Distribution()
	e.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	styles := e.cfg.Playstyles
	roster := make([]*player.Player, 0, game.Seats)
	for i, persona := range e.cfg.Personas {
		r := roles[i]
		model := e.cfg.BasicModel
		if r.IsGod() || r == role.Werewolf {
			model = e.cfg.PowerModel
		}
		roster = append(roster, &player.Player{
			ID:          i + 1,
			Name:        persona.Name,
			Gender:      persona.Gender,
			Role:        r,
			Provider:    e.cfg.Fallback,
			Model:       model,
			Personality: persona.Personality,
			Style:       styles[e.rng.Intn(len(styles))],
			Alive:       true,
		})
	}
	if len(e.cfg.Providers) > 0 {
		// Round-robin the seats over the configured backends so a match
		// is not hostage to a single vendor.
		for i, p := range roster {
			p.Provider = e.cfg.Providers[i%len(e.cfg.Providers)].Name
		}
	}
	return game.New(roster)
}

// stepSetup announces the table and opens the first night.
func (e *Engine) stepSetup(st *game.State) error {
	st.AppendSystem(fmt.Sprintf("Welcome to the arena. %d players take their seats.", game.Seats))
	for _, p := range st.Players {
		e.log.Event("seat_dealt", p.ID, p.Role.Label()+" / "+p.Model)
	}
	st.Phase = game.PhaseNightStart
	return nil
}
