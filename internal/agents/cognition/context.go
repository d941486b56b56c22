package cognition

import (
	"fmt"

	"github.com/renlu07/wolf-arena/internal/domain/player"
	"github.com/renlu07/wolf-arena/internal/domain/role"
	"github.com/renlu07/wolf-arena/internal/game"
)

// Context is the role frame an agent reasons inside: what it is allowed
// to treat as known, what it must not act on, and how it should carry
// itself at the table.
type Context struct {
	Knows       []string
	DoesntKnow  []string
	Mindset     string
	SpeechStyle string
	Goals       []string
}

// ForRole builds the frame for one seat. The Knows list is the hard
// boundary on information play: anything in DoesntKnow that the model
// asserts anyway is a rules leak, and the frame is the main defense.
func ForRole(s *game.State, p *player.Player) Context {
	ctx := Context{
		SpeechStyle: fmt.Sprintf("Personality: %s. Style: %s (%s).",
			p.Personality, p.Style.Label, p.Style.Description),
	}

	switch p.Role {
	case role.Werewolf:
		ctx.Knows = []string{
			"your own role and the identity of every werewolf",
			"the pack's kill decisions each night",
		}
		ctx.DoesntKnow = []string{
			"which good players hold which god roles",
			"the seer's check results, unless claimed publicly",
		}
		ctx.Mindset = "You are a werewolf pretending to be a villager. Blend in, steer suspicion onto good players, and never reveal the pack."
		ctx.Goals = []string{
			"survive the day votes",
			"protect your packmates without obvious coordination",
			"eliminate the seer and witch before they anchor the village",
		}

	case role.Seer:
		ctx.Knows = []string{
			"your own role",
			"the verified alignment of every player you have checked",
		}
		ctx.DoesntKnow = []string{
			"the roles of players you have not checked",
			"what happened during other players' night actions",
		}
		ctx.Mindset = "You hold the only verified information in the village. Decide when revealing it helps more than the target it paints on you."
		ctx.Goals = []string{
			"check the most informative player each night",
			"build a trusted block around your results",
			"get confirmed werewolves exiled",
		}

	case role.Witch:
		ctx.Knows = []string{
			"your own role",
			"which of your potions are spent",
		}
		if !s.WitchPotionUsed {
			ctx.Knows = append(ctx.Knows, "who the wolves targeted tonight, because you still hold the antidote")
		}
		ctx.DoesntKnow = []string{
			"the roles of other players",
			"who the seer has checked",
		}
		ctx.Mindset = "Two single-use potions decide the whole match. Spend them late rather than early, and never waste the poison on a guess."
		ctx.Goals = []string{
			"save key players at the right moment",
			"poison a confirmed werewolf",
			"keep your role hidden until a potion reveals it",
		}

	case role.Guard:
		ctx.Knows = []string{
			"your own role",
			"who you protected each night",
		}
		ctx.DoesntKnow = []string{
			"whether your protection actually blocked an attack",
			"the roles of other players",
		}
		ctx.Mindset = "You protect, you never investigate. Read the table for who the wolves want dead and stand in front of them."
		ctx.Goals = []string{
			"protect the likely wolf target each night",
			"never protect the same player two nights running",
			"stay anonymous as long as possible",
		}

	case role.Hunter:
		ctx.Knows = []string{
			"your own role",
			"that your shot fires when you die, unless the witch poisoned you",
		}
		ctx.DoesntKnow = []string{
			"the roles of other players",
		}
		ctx.Mindset = "Your death is a weapon. Keep a running read on the table so your last shot lands on a wolf."
		ctx.Goals = []string{
			"maintain an up-to-date suspicion ranking",
			"deter votes against you by hinting at your role only under real pressure",
		}

	default:
		ctx.Knows = []string{"your own role"}
		ctx.DoesntKnow = []string{
			"the roles of every other player",
			"anything that happened during the night beyond the announced results",
		}
		ctx.Mindset = "You have no special information. Your weapons are logic, vote records and reading the speeches."
		ctx.Goals = []string{
			"find contradictions between claims and behavior",
			"vote with the evidence, not the crowd",
		}
	}

	if p.Sheriff {
		ctx.Goals = append(ctx.Goals,
			"as sheriff, use your control of the speaking order to favor your camp")
	}
	return ctx
}
