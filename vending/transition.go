package vending

import (
	"fmt"

	"github.com/the-lightning-land/vendd/pricing"
)

// step is the result of applying an event to a total
type step struct {
	next        State
	stateChange bool
	total       int64
	dispense    bool
	outcome     Outcome
}

// transition decides what an event does. It looks at the event and the
// tables only, never at the current state.
func transition(total int64, event Event, tables *pricing.Tables) step {
	switch event.Kind {
	case EventCoin:
		value, ok := tables.LookupCoin(event.Label)
		if !ok {
			return ignore(total, event)
		}

		return step{
			next:        AwaitingFunds,
			stateChange: true,
			total:       total + value,
			outcome: Outcome{
				Kind:   Credited,
				Label:  event.Label,
				Amount: value,
			},
		}

	case EventItemSelect:
		price, ok := tables.LookupPrice(event.Label)
		if !ok {
			return ignore(total, event)
		}

		change := pricing.ComputeChange(total, price)
		if change < 0 {
			return step{
				total: total,
				outcome: Outcome{
					Kind:         InsufficientFunds,
					Label:        event.Label,
					Amount:       price,
					Change:       change,
					Notification: fmt.Sprintf("Not enough money for %s. Insert more coins.", event.Label),
				},
			}
		}

		return step{
			next:        ItemSelected,
			stateChange: true,
			total:       0,
			dispense:    true,
			outcome: Outcome{
				Kind:         Purchased,
				Label:        event.Label,
				Amount:       price,
				Change:       change,
				Notification: fmt.Sprintf("Bought %s. Your change is: %d", event.Label, change),
			},
		}

	case EventReturn:
		return step{
			next:        Idle,
			stateChange: true,
			total:       0,
			outcome: Outcome{
				Kind:         Returned,
				Returned:     total,
				Notification: fmt.Sprintf("Returning %d cents", total),
			},
		}

	default:
		return ignore(total, event)
	}
}

func ignore(total int64, event Event) step {
	return step{
		total: total,
		outcome: Outcome{
			Kind:  Ignored,
			Label: event.Label,
		},
	}
}
