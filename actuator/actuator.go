package actuator

import (
	"fmt"
	"time"

	"github.com/go-errors/errors"
)

// Step names one stage of the dispense motion
type Step string

const (
	StepDispense   Step = "dispense"
	StepRest       Step = "rest"
	StepNeutralize Step = "neutralize"
)

// DefaultSettle is how long the servo is given to reach a position
const DefaultSettle = 500 * time.Millisecond

// Servo is the narrow hardware contract the controller drives
type Servo interface {
	SetServoAngle(angle float64) error
	ReleaseServo() error
}

// Fault is returned when a step of the motion sequence failed
type Fault struct {
	Step Step
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("actuator fault during %s: %v", f.Step, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

type Config struct {
	Servo         Servo
	DispenseAngle float64
	RestAngle     float64
	Settle        time.Duration
	Sleep         func(time.Duration)
	Logger        Logger
}

// Controller moves the servo through the dispense sequence and always
// leaves it at rest with the drive signal released.
type Controller struct {
	servo         Servo
	dispenseAngle float64
	restAngle     float64
	settle        time.Duration
	sleep         func(time.Duration)
	log           Logger
}

func NewController(config *Config) *Controller {
	c := &Controller{
		servo:         config.Servo,
		dispenseAngle: config.DispenseAngle,
		restAngle:     config.RestAngle,
		settle:        config.Settle,
		sleep:         config.Sleep,
	}

	if c.settle <= 0 {
		c.settle = DefaultSettle
	}

	if c.sleep == nil {
		c.sleep = time.Sleep
	}

	if config.Logger != nil {
		c.log = config.Logger
	} else {
		c.log = noopLogger{}
	}

	return c
}

// Dispense moves to the dispense position and back to rest. Resting and
// releasing the signal are attempted on every exit path, also when the
// driver panics. The first failure is returned as *Fault.
func (c *Controller) Dispense() (err error) {
	c.log.Debugf("Dispensing at %v°, resting at %v°", c.dispenseAngle, c.restAngle)

	defer func() {
		c.keep(&err, c.release())
	}()

	return c.guard(StepDispense, func() error {
		return c.moveTo(StepDispense, c.dispenseAngle)
	})
}

// Close brings the servo to rest and releases it
func (c *Controller) Close() error {
	c.log.Debugf("Releasing servo")

	return c.release()
}

// release runs the rest and neutralize steps, each guarded on its own so the
// signal is released even when resting fails or panics.
func (c *Controller) release() (err error) {
	c.keep(&err, c.guard(StepRest, func() error {
		return c.moveTo(StepRest, c.restAngle)
	}))

	c.keep(&err, c.guard(StepNeutralize, func() error {
		if rerr := c.servo.ReleaseServo(); rerr != nil {
			return &Fault{Step: StepNeutralize, Err: rerr}
		}
		return nil
	}))

	return err
}

// guard turns a driver panic during step into a *Fault
func (c *Controller) guard(step Step, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Fault{Step: step, Err: errors.Wrap(r, 2)}
		}
	}()

	return fn()
}

func (c *Controller) moveTo(step Step, angle float64) error {
	if err := c.servo.SetServoAngle(angle); err != nil {
		return &Fault{Step: step, Err: err}
	}

	c.sleep(c.settle)

	return nil
}

// keep stores next into err unless err already holds an earlier fault
func (c *Controller) keep(err *error, next error) {
	if next == nil {
		return
	}

	if *err != nil {
		c.log.Errorf("Additional %v", next)
		return
	}

	*err = next
}
