// Package role defines the seven role variants of the arena and their
// faction alignment. The distribution is fixed: a 12-seat standard board
// with 4 werewolves, 4 villagers and the four god roles.
package role

// Role identifies a player's hidden card.
type Role string

const (
	Unknown  Role = "UNKNOWN"
	Werewolf Role = "WEREWOLF"
	Villager Role = "VILLAGER"
	Seer     Role = "SEER"
	Witch    Role = "WITCH"
	Hunter   Role = "HUNTER"
	Guard    Role = "GUARD"
)

// Faction is the win condition a role belongs to.
type Faction string

const (
	Good Faction = "GOOD"
	Bad  Faction = "BAD"
)

// Faction returns the side the role plays for.
func (r Role) Faction() Faction {
	if r == Werewolf {
		return Bad
	}
	return Good
}

// IsGod reports whether the role is one of the special good roles whose
// collective elimination hands the game to the werewolves.
func (r Role) IsGod() bool {
	switch r {
	case Seer, Witch, Hunter, Guard:
		return true
	}
	return false
}

// Label returns a human-readable name for logs and match records.
func (r Role) Label() string {
	switch r {
	case Werewolf:
		return "Werewolf"
	case Villager:
		return "Villager"
	case Seer:
		return "Seer"
	case Witch:
		return "Witch"
	case Hunter:
		return "Hunter"
	case Guard:
		return "Guard"
	default:
		return "Unknown"
	}
}

// Distribution returns the fixed role multiset for a 12-seat game.
// Callers shuffle the returned slice; the multiset itself never varies.
func Distribution() []Role {
	return []Role{
		Werewolf, Werewolf, Werewolf, Werewolf,
		Villager, Villager, Villager, Villager,
		Seer, Witch, Guard, Hunter,
	}
}
