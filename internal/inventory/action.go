package inventory

type Action string

const (
	ActionRestock Action = "RESTOCK"
	ActionSale    Action = "SALE"
	ActionAdjust  Action = "ADJUST"
)

func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionRestock, ActionSale, ActionAdjust:
		return Action(s), true
	}
	return "", false
}

// Delta maps a scanned quantity to the signed change applied to a record.
// ADJUST carries its own sign in qty (a correction, not a movement).
func (a Action) Delta(qty int) int {
	switch a {
	case ActionSale:
		return -qty
	default:
		return qty
	}
}
