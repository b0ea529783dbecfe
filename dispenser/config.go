package dispenser

import (
	"github.com/the-lightning-land/vendd/display"
	"github.com/the-lightning-land/vendd/machine"
	"github.com/the-lightning-land/vendd/pricing"
	"github.com/the-lightning-land/vendd/vending"
)

// Closer releases the actuator when the dispenser stops
type Closer interface {
	Close() error
}

type Config struct {
	Machine   machine.Machine
	Surface   display.Surface
	Vending   *vending.Machine
	Tables    *pricing.Tables
	Actuator  Closer
	QueueSize int
	Logger    Logger
}
