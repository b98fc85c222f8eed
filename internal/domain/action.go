package domain

// Action is a trading action produced by a decision source.
type Action string

// Action constants.
const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// ParseAction normalizes a raw action string. Anything that is not a
// recognized action maps to ActionHold so that malformed decisions can
// never halt a simulation.
func ParseAction(s string) Action {
	switch Action(s) {
	case ActionBuy:
		return ActionBuy
	case ActionSell:
		return ActionSell
	case ActionHold:
		return ActionHold
	default:
		return ActionHold
	}
}

// Decision is one symbol's trading instruction for a single simulated day.
// Decisions are produced fresh each day, consumed once by the trade
// executor, and never persisted as ledger state.
type Decision struct {
	Action   Action
	Quantity float64 // requested units, >= 0
}

// HoldDecision returns the neutral no-op decision.
func HoldDecision() Decision {
	return Decision{Action: ActionHold, Quantity: 0}
}
