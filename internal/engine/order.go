package engine

import "github.com/renlu07/wolf-arena/internal/game"

// nextAliveSeat returns the first living seat clockwise after the given
// one. Clockwise means increasing id, wrapping from 12 back to 1. Returns
// 0 when nobody is alive.
func nextAliveSeat(st *game.State, after int) int {
	for i := 1; i <= game.Seats; i++ {
		id := (after+i-1)%game.Seats + 1
		if p := st.PlayerByID(id); p != nil && p.Alive {
			return id
		}
	}
	return 0
}

// speakingOrder computes the discussion queue. A living sheriff sets the
// order: speeches start clockwise after the badge and the sheriff closes.
// Without a sheriff, the first speaker sits clockwise after the lowest
// numbered victim of the night; on a peaceful night with no sheriff the
// order is shuffled so no seat is structurally first every day.
func (e *Engine) speakingOrder(st *game.State) []int {
	if st.SheriffID != 0 {
		if sheriff := st.PlayerByID(st.SheriffID); sheriff != nil && sheriff.Alive {
			return orderFrom(st, nextAliveSeat(st, st.SheriffID))
		}
	}

	if victim := lowestNightVictim(st); victim != 0 {
		return orderFrom(st, nextAliveSeat(st, victim))
	}

	ids := st.AliveIDs()
	e.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// orderFrom walks the living seats clockwise starting at the given seat.
func orderFrom(st *game.State, start int) []int {
	if start == 0 {
		return nil
	}
	var out []int
	id := start
	for {
		out = append(out, id)
		id = nextAliveSeat(st, id)
		if id == start || id == 0 {
			return out
		}
	}
}

// lowestNightVictim returns the smallest seat id among today's announced
// deaths, or 0 on a peaceful night.
func lowestNightVictim(st *game.State) int {
	low := 0
	for _, m := range st.Logs {
		if m.Type != game.MsgDeath || m.Day != st.Day {
			continue
		}
		if low == 0 || m.SenderID < low {
			low = m.SenderID
		}
	}
	return low
}
