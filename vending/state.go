package vending

// State records which transition last ran. It is informational, events are
// never rejected because of it.
type State int

const (
	Idle State = iota
	AwaitingFunds
	ItemSelected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case AwaitingFunds:
		return "AWAITING_FUNDS"
	case ItemSelected:
		return "ITEM_SELECTED"
	default:
		return "INVALID STATE"
	}
}

type EventKind int

const (
	EventUnknown EventKind = iota
	EventCoin
	EventItemSelect
	EventReturn
)

func (k EventKind) String() string {
	switch k {
	case EventCoin:
		return "coin"
	case EventItemSelect:
		return "item"
	case EventReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Event is one input to the machine
type Event struct {
	Kind  EventKind
	Label string
}

func Coin(label string) Event {
	return Event{Kind: EventCoin, Label: label}
}

func ItemSelect(label string) Event {
	return Event{Kind: EventItemSelect, Label: label}
}

func Return() Event {
	return Event{Kind: EventReturn}
}

func Unknown(label string) Event {
	return Event{Kind: EventUnknown, Label: label}
}

func (e Event) String() string {
	if e.Label == "" {
		return e.Kind.String()
	}

	return e.Kind.String() + "(" + e.Label + ")"
}

type OutcomeKind int

const (
	Ignored OutcomeKind = iota
	Credited
	Purchased
	InsufficientFunds
	Returned
)

func (k OutcomeKind) String() string {
	switch k {
	case Credited:
		return "credited"
	case Purchased:
		return "purchased"
	case InsufficientFunds:
		return "insufficient funds"
	case Returned:
		return "returned"
	default:
		return "ignored"
	}
}

// Outcome describes what handling a single event did
type Outcome struct {
	Kind         OutcomeKind
	Label        string
	Amount       int64
	Change       int64
	Returned     int64
	Total        int64
	State        State
	Notification string
	Fault        error
}
