package vending

import (
	"fmt"

	"github.com/the-lightning-land/vendd/display"
	"github.com/the-lightning-land/vendd/pricing"
)

// Actuator ejects a purchased item
type Actuator interface {
	Dispense() error
}

// Display receives the texts the machine shows
type Display interface {
	Update(region display.Region, text string) error
	Append(region display.Region, text string) error
}

type Config struct {
	Tables   *pricing.Tables
	Actuator Actuator
	Display  Display
	Logger   Logger
}

// Machine owns the inserted total and the current state. It is not safe for
// concurrent use; a single event loop is expected to call Update.
type Machine struct {
	tables   *pricing.Tables
	actuator Actuator
	display  Display
	log      Logger
	state    State
	total    int64
}

func NewMachine(config *Config) *Machine {
	m := &Machine{
		tables:   config.Tables,
		actuator: config.Actuator,
		display:  config.Display,
		state:    Idle,
	}

	if config.Logger != nil {
		m.log = config.Logger
	} else {
		m.log = noopLogger{}
	}

	return m
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Total() int64 {
	return m.total
}

// Render shows the current total
func (m *Machine) Render() {
	m.update(display.RegionTotal, totalText(m.total))
}

// Update applies a single event and performs its side effects
func (m *Machine) Update(event Event) Outcome {
	s := transition(m.total, event, m.tables)

	if s.outcome.Kind == Ignored {
		m.log.Debugf("Ignoring %v", event)
		s.outcome.Total = m.total
		s.outcome.State = m.state
		return s.outcome
	}

	if s.stateChange {
		m.log.Debugf("State %v -> %v on %v", m.state, s.next, event)
		m.state = s.next
	}

	m.total = s.total

	if s.outcome.Notification != "" {
		m.append(s.outcome.Notification)
	}

	if s.outcome.Kind != InsufficientFunds {
		m.Render()
	}

	if s.dispense && m.actuator != nil {
		if err := m.actuator.Dispense(); err != nil {
			m.log.Errorf("Could not dispense %v: %v", event.Label, err)
			s.outcome.Fault = err
			m.append(fmt.Sprintf("Could not dispense %s: %v", event.Label, err))
		}
	}

	s.outcome.Total = m.total
	s.outcome.State = m.state

	return s.outcome
}

func (m *Machine) update(region display.Region, text string) {
	if m.display == nil {
		return
	}

	if err := m.display.Update(region, text); err != nil {
		m.log.Warnf("Could not update %v: %v", region, err)
	}
}

func (m *Machine) append(text string) {
	if m.display == nil {
		return
	}

	if err := m.display.Append(display.RegionConsole, text); err != nil {
		m.log.Warnf("Could not notify %q: %v", text, err)
	}
}

func totalText(total int64) string {
	return fmt.Sprintf("Total Amount: %d", total)
}
