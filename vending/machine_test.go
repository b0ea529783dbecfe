package vending

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/vendd/display"
	"github.com/the-lightning-land/vendd/pricing"
)

type fakeActuator struct {
	dispensed int
	err       error
}

func (a *fakeActuator) Dispense() error {
	a.dispensed++
	return a.err
}

type fakeDisplay struct {
	total   string
	console []string
	err     error
}

func (d *fakeDisplay) Update(region display.Region, text string) error {
	if region == display.RegionTotal {
		d.total = text
	}

	return d.err
}

func (d *fakeDisplay) Append(region display.Region, text string) error {
	d.console = append(d.console, text)
	return d.err
}

func newTestMachine() (*Machine, *fakeActuator, *fakeDisplay) {
	act := &fakeActuator{}
	disp := &fakeDisplay{}

	m := NewMachine(&Config{
		Tables:   pricing.MustDefault(),
		Actuator: act,
		Display:  disp,
	})

	return m, act, disp
}

func TestMachine_StartsIdle(t *testing.T) {
	m, _, _ := newTestMachine()

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, int64(0), m.Total())
}

func TestMachine_CoinAddsExactValue(t *testing.T) {
	for label, value := range pricing.DefaultCoins {
		t.Run(label, func(t *testing.T) {
			m, _, disp := newTestMachine()
			m.Update(Coin("5"))
			before := m.Total()

			out := m.Update(Coin(label))

			assert.Equal(t, Credited, out.Kind)
			assert.Equal(t, value, out.Amount)
			assert.Equal(t, before+value, m.Total())
			assert.Equal(t, AwaitingFunds, m.State())
			assert.Equal(t, totalText(m.Total()), disp.total)
		})
	}
}

func TestMachine_CoinAcceptedInAnyState(t *testing.T) {
	m, _, _ := newTestMachine()

	m.Update(Coin("100"))
	m.Update(ItemSelect("pop"))
	require.Equal(t, ItemSelected, m.State())

	m.Update(Coin("25"))
	assert.Equal(t, AwaitingFunds, m.State())
	assert.Equal(t, int64(25), m.Total())
}

func TestMachine_PurchaseWithSufficientFunds(t *testing.T) {
	for label, price := range pricing.DefaultPrices {
		t.Run(label, func(t *testing.T) {
			m, act, _ := newTestMachine()
			m.Update(Coin("200"))
			m.Update(Coin("25"))
			before := m.Total()

			out := m.Update(ItemSelect(label))

			assert.Equal(t, Purchased, out.Kind)
			assert.Equal(t, before-price, out.Change)
			assert.Equal(t, int64(0), m.Total())
			assert.Equal(t, ItemSelected, m.State())
			assert.Equal(t, 1, act.dispensed)
		})
	}
}

func TestMachine_PurchaseWithInsufficientFunds(t *testing.T) {
	m, act, disp := newTestMachine()
	m.Update(Coin("10"))

	out := m.Update(ItemSelect("beer"))

	assert.Equal(t, InsufficientFunds, out.Kind)
	assert.Equal(t, int64(10), m.Total())
	assert.Equal(t, AwaitingFunds, m.State())
	assert.Equal(t, 0, act.dispensed)
	assert.Equal(t, "Not enough money for beer. Insert more coins.", disp.console[len(disp.console)-1])
	assert.Equal(t, "Total Amount: 10", disp.total)
}

func TestMachine_SelectWithoutCoins(t *testing.T) {
	m, act, _ := newTestMachine()

	out := m.Update(ItemSelect("choc"))

	assert.Equal(t, InsufficientFunds, out.Kind)
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, 0, act.dispensed)
}

func TestMachine_ExactPurchaseScenario(t *testing.T) {
	m, act, disp := newTestMachine()

	m.Update(Coin("25"))
	m.Update(Coin("25"))
	require.Equal(t, int64(50), m.Total())

	out := m.Update(ItemSelect("pop"))

	assert.Equal(t, Purchased, out.Kind)
	assert.Equal(t, int64(0), out.Change)
	assert.Equal(t, int64(0), m.Total())
	assert.Equal(t, 1, act.dispensed)
	assert.Equal(t, "Bought pop. Your change is: 0", out.Notification)
	assert.Equal(t, "Total Amount: 0", disp.total)
}

func TestMachine_ReturnScenario(t *testing.T) {
	m, _, disp := newTestMachine()

	m.Update(Coin("100"))
	m.Update(Coin("100"))

	out := m.Update(Return())

	assert.Equal(t, Returned, out.Kind)
	assert.Equal(t, int64(200), out.Returned)
	assert.Equal(t, "Returning 200 cents", out.Notification)
	assert.Equal(t, int64(0), m.Total())
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, "Total Amount: 0", disp.total)
}

func TestMachine_ReturnIsIdempotent(t *testing.T) {
	m, _, _ := newTestMachine()
	m.Update(Coin("25"))

	m.Update(Return())
	state, total := m.State(), m.Total()

	out := m.Update(Return())

	assert.Equal(t, int64(0), out.Returned)
	assert.Equal(t, state, m.State())
	assert.Equal(t, total, m.Total())
}

func TestMachine_UnknownTokensChangeNothing(t *testing.T) {
	events := []Event{
		Coin("1"),
		ItemSelect("suprise"),
		Unknown("bogus"),
		Unknown(""),
	}

	for _, event := range events {
		t.Run(event.String(), func(t *testing.T) {
			m, act, disp := newTestMachine()
			m.Update(Coin("10"))
			notifications := len(disp.console)

			out := m.Update(event)

			assert.Equal(t, Ignored, out.Kind)
			assert.Equal(t, int64(10), m.Total())
			assert.Equal(t, AwaitingFunds, m.State())
			assert.Equal(t, 0, act.dispensed)
			assert.Len(t, disp.console, notifications)
		})
	}
}

func TestMachine_DispenseFaultKeepsPurchase(t *testing.T) {
	m, act, disp := newTestMachine()
	act.err = errors.New("servo jammed")

	m.Update(Coin("100"))
	out := m.Update(ItemSelect("chips"))

	assert.Equal(t, Purchased, out.Kind)
	assert.EqualError(t, out.Fault, "servo jammed")
	assert.Equal(t, int64(25), out.Change)
	assert.Equal(t, int64(0), m.Total())
	assert.Equal(t, ItemSelected, m.State())
	assert.Equal(t, []string{
		"Bought chips. Your change is: 25",
		"Could not dispense chips: servo jammed",
	}, disp.console)

	// still operable
	act.err = nil
	m.Update(Coin("200"))
	out = m.Update(ItemSelect("beer"))
	assert.Equal(t, Purchased, out.Kind)
	assert.NoError(t, out.Fault)
}

func TestMachine_DisplayErrorsDoNotTouchLedger(t *testing.T) {
	m, _, disp := newTestMachine()
	disp.err = errors.New("panel gone")

	m.Update(Coin("25"))

	assert.Equal(t, int64(25), m.Total())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "IDLE", Idle.String())
	assert.Equal(t, "AWAITING_FUNDS", AwaitingFunds.String())
	assert.Equal(t, "ITEM_SELECTED", ItemSelected.String())
	assert.Equal(t, "INVALID STATE", State(42).String())
}
