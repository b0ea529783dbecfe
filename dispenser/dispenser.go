package dispenser

import (
	"sync"

	"github.com/the-lightning-land/vendd/display"
	"github.com/the-lightning-land/vendd/machine"
	"github.com/the-lightning-land/vendd/pricing"
	"github.com/the-lightning-land/vendd/vending"
)

const (
	// DefaultQueueSize bounds events injected from outside the panel
	DefaultQueueSize = 16

	welcome = "Welcome to the Vending Machine"
)

// Dispenser feeds the vending machine one event at a time. Panel
// interactions and hardware button presses are merged into a single loop,
// which is the only caller of the vending machine.
type Dispenser struct {
	machine  machine.Machine
	surface  display.Surface
	vending  *vending.Machine
	tables   *pricing.Tables
	actuator Closer
	events   chan vending.Event
	done     chan struct{}
	doneOnce sync.Once
	log      Logger
}

func NewDispenser(config *Config) *Dispenser {
	d := &Dispenser{
		machine:  config.Machine,
		surface:  config.Surface,
		vending:  config.Vending,
		tables:   config.Tables,
		actuator: config.Actuator,
		done:     make(chan struct{}),
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	d.events = make(chan vending.Event, queueSize)

	if config.Logger != nil {
		d.log = config.Logger
	} else {
		d.log = noopLogger{}
	}

	if d.machine != nil {
		d.machine.OnReturnPress(d.pressReturn)
	}

	return d
}

// Classify turns a panel token into an event
func Classify(token string, tables *pricing.Tables) vending.Event {
	if token == display.ReturnToken {
		return vending.Return()
	}

	if _, ok := tables.LookupCoin(token); ok {
		return vending.Coin(token)
	}

	if _, ok := tables.LookupPrice(token); ok {
		return vending.ItemSelect(token)
	}

	return vending.Unknown(token)
}

// Run blocks until the panel is closed or Shutdown is called. The actuator
// is released on every way out.
func (d *Dispenser) Run() error {
	d.log.Infof("Starting dispenser...")

	defer func() {
		if d.actuator == nil {
			return
		}

		if err := d.actuator.Close(); err != nil {
			d.log.Errorf("Could not release actuator: %v", err)
		} else {
			d.log.Infof("Released actuator.")
		}
	}()

	if err := d.surface.Append(display.RegionConsole, welcome); err != nil {
		d.log.Warnf("Could not greet: %v", err)
	}

	d.vending.Render()

	interactions := d.surface.Interactions()

	for {
		// injected events queued while the last one was handled go first
		select {
		case event := <-d.events:
			d.handle(event)
			continue
		case <-d.done:
			return nil
		default:
		}

		select {
		case event := <-d.events:
			d.handle(event)

		case interaction, ok := <-interactions:
			if !ok || interaction.Token == display.CloseToken {
				d.log.Infof("Panel closed, stopping dispenser.")
				return nil
			}

			d.handle(Classify(interaction.Token, d.tables))

		case <-d.done:
			// finish loop when program is done
			return nil
		}
	}
}

func (d *Dispenser) handle(event vending.Event) {
	outcome := d.vending.Update(event)

	switch outcome.Kind {
	case vending.Ignored:
		d.log.Debugf("Ignored %v", event)
	default:
		d.log.Infof("%v: %v, total %v, state %v", event, outcome.Kind, outcome.Total, outcome.State)
	}
}

// Inject queues an event for the loop without blocking. It reports false
// when the queue is full and the event was dropped.
func (d *Dispenser) Inject(event vending.Event) bool {
	select {
	case d.events <- event:
		return true
	default:
		d.log.Warnf("Event queue full, dropping %v", event)
		return false
	}
}

func (d *Dispenser) pressReturn() {
	d.log.Debugf("Return button pressed")
	d.Inject(vending.Return())
}

// Shutdown stops Run. It is safe to call more than once and from any
// goroutine.
func (d *Dispenser) Shutdown() {
	d.doneOnce.Do(func() {
		close(d.done)
	})
}
