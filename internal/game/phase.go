package game

// Phase is one discrete step of the day/night cycle state machine.
type Phase string

const (
	PhaseSetup           Phase = "SETUP"
	PhaseNightStart      Phase = "NIGHT_START"
	PhaseNightGuard      Phase = "NIGHT_GUARD"
	PhaseNightWerewolf   Phase = "NIGHT_WEREWOLF"
	PhaseNightWitch      Phase = "NIGHT_WITCH"
	PhaseNightSeer       Phase = "NIGHT_SEER"
	PhaseDayStart        Phase = "DAY_START"
	PhaseSheriffNom      Phase = "DAY_SHERIFF_NOM"
	PhaseSheriffSpeech   Phase = "DAY_SHERIFF_SPEECH"
	PhaseSheriffVote     Phase = "DAY_SHERIFF_VOTE"
	PhaseSheriffPKSpeech Phase = "DAY_SHERIFF_PK_SPEECH"
	PhaseSheriffPKVote   Phase = "DAY_SHERIFF_PK_VOTE"
	PhaseDayAnnounce     Phase = "DAY_ANNOUNCE"
	PhaseDayLastWords    Phase = "DAY_LAST_WORDS"
	PhaseDayDiscuss      Phase = "DAY_DISCUSS"
	PhaseDayVote         Phase = "DAY_VOTE"
	PhaseDayPKSpeech     Phase = "DAY_PK_SPEECH"
	PhaseDayPKVote       Phase = "DAY_PK_VOTE"
	PhaseGameOver        Phase = "GAME_OVER"

	// Transient sub-steps. Never the committed phase cursor; set on a
	// working copy only while prompting a dying hunter or sheriff.
	PhaseHunterShoot     Phase = "HUNTER_SHOOT"
	PhaseSheriffTransfer Phase = "SHERIFF_TRANSFER"
)

// IsNight reports whether the phase belongs to the closed-eyes half of the
// cycle. Speech and vote logs are never visible during these phases.
func (p Phase) IsNight() bool {
	switch p {
	case PhaseNightStart, PhaseNightGuard, PhaseNightWerewolf, PhaseNightWitch, PhaseNightSeer:
		return true
	}
	return false
}

// IsSheriffElection reports whether the phase is part of the day-1 sheriff
// election group. While it holds, night results are blacked out for every
// viewer: the election happens before dawn results are revealed.
func (p Phase) IsSheriffElection() bool {
	switch p {
	case PhaseSheriffNom, PhaseSheriffSpeech, PhaseSheriffVote, PhaseSheriffPKSpeech, PhaseSheriffPKVote:
		return true
	}
	return false
}

// IsSpeechRound reports whether the phase drains the discussion queue one
// speaker at a time.
func (p Phase) IsSpeechRound() bool {
	switch p {
	case PhaseSheriffSpeech, PhaseSheriffPKSpeech, PhaseDayDiscuss, PhaseDayPKSpeech, PhaseDayLastWords:
		return true
	}
	return false
}

// Title returns the announcer caption for a phase.
func (p Phase) Title() string {
	switch p {
	case PhaseSetup:
		return "Preparing"
	case PhaseNightStart:
		return "Nightfall"
	case PhaseNightGuard:
		return "Guard acts"
	case PhaseNightWerewolf:
		return "Werewolves act"
	case PhaseNightWitch:
		return "Witch acts"
	case PhaseNightSeer:
		return "Seer acts"
	case PhaseDayStart:
		return "Dawn"
	case PhaseSheriffNom:
		return "Sheriff nomination"
	case PhaseSheriffSpeech:
		return "Campaign speeches"
	case PhaseSheriffVote:
		return "Sheriff vote"
	case PhaseSheriffPKSpeech:
		return "Sheriff runoff speeches"
	case PhaseSheriffPKVote:
		return "Sheriff runoff vote"
	case PhaseDayAnnounce:
		return "Night results"
	case PhaseDayLastWords:
		return "Last words"
	case PhaseDayDiscuss:
		return "Open discussion"
	case PhaseDayVote:
		return "Exile vote"
	case PhaseDayPKSpeech:
		return "Runoff speeches"
	case PhaseDayPKVote:
		return "Runoff vote"
	case PhaseGameOver:
		return "Game over"
	default:
		return string(p)
	}
}
