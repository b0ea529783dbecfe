package machine

import (
	"sync"
	"time"

	"github.com/go-errors/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

const (
	// DefaultServoFrequency is the refresh rate hobby servos expect
	DefaultServoFrequency = 50 * physic.Hertz

	debounce  = 200 * time.Millisecond
	edgeCheck = time.Second
)

// Compile time check for protocol compatibility
var _ Machine = (*RaspberryMachine)(nil)

type RaspberryMachineConfig struct {
	ServoPin       string
	ReturnPin      string
	ServoFrequency physic.Frequency
	Logger         Logger
}

// RaspberryMachine drives a servo over PWM and watches a push button wired
// against ground on a Raspberry Pi.
type RaspberryMachine struct {
	servoPinName  string
	returnPinName string
	frequency     physic.Frequency
	servoPin      gpio.PinIO
	returnPin     gpio.PinIO
	onPress       func()
	done          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	log           Logger
}

func NewRaspberryMachine(config *RaspberryMachineConfig) *RaspberryMachine {
	m := &RaspberryMachine{
		servoPinName:  config.ServoPin,
		returnPinName: config.ReturnPin,
		frequency:     config.ServoFrequency,
		done:          make(chan struct{}),
	}

	if m.frequency == 0 {
		m.frequency = DefaultServoFrequency
	}

	if config.Logger != nil {
		m.log = config.Logger
	} else {
		m.log = noopLogger{}
	}

	return m
}

// HostAvailable reports whether the named GPIO pin exists on this host
func HostAvailable(pin string) bool {
	if _, err := host.Init(); err != nil {
		return false
	}

	return gpioreg.ByName(pin) != nil
}

func (m *RaspberryMachine) OnReturnPress(fn func()) {
	m.onPress = fn
}

func (m *RaspberryMachine) Start() error {
	if _, err := host.Init(); err != nil {
		return errors.Errorf("could not initialize host: %v", err)
	}

	m.servoPin = gpioreg.ByName(m.servoPinName)
	if m.servoPin == nil {
		return errors.Errorf("could not find servo pin %v", m.servoPinName)
	}

	m.returnPin = gpioreg.ByName(m.returnPinName)
	if m.returnPin == nil {
		return errors.Errorf("could not find return pin %v", m.returnPinName)
	}

	if err := m.returnPin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return errors.Errorf("could not set up return pin %v: %v", m.returnPinName, err)
	}

	m.wg.Add(1)
	go m.watchReturn()

	m.log.Infof("Started with servo on %v and return button on %v", m.servoPinName, m.returnPinName)

	return nil
}

func (m *RaspberryMachine) watchReturn() {
	defer m.wg.Done()

	var last time.Time

	for {
		select {
		case <-m.done:
			return
		default:
		}

		if !m.returnPin.WaitForEdge(edgeCheck) {
			continue
		}

		if time.Since(last) < debounce {
			continue
		}

		last = time.Now()

		m.log.Infof("Hardware return button pressed")

		if m.onPress != nil {
			m.onPress()
		}
	}
}

func (m *RaspberryMachine) Stop() error {
	m.stopOnce.Do(func() {
		close(m.done)
	})

	if m.returnPin == nil {
		return nil
	}

	// unblocks a pending WaitForEdge
	if err := m.returnPin.Halt(); err != nil {
		m.log.Warnf("Could not halt return pin: %v", err)
	}

	m.wg.Wait()

	var err error

	if m.servoPin != nil {
		if serr := m.servoPin.Out(gpio.Low); serr != nil {
			err = errors.Errorf("could not release servo pin: %v", serr)
		}
	}

	if rerr := m.returnPin.In(gpio.PullNoChange, gpio.NoEdge); rerr != nil && err == nil {
		err = errors.Errorf("could not release return pin: %v", rerr)
	}

	return err
}

func (m *RaspberryMachine) SetServoAngle(angle float64) error {
	if m.servoPin == nil {
		return errors.New("machine not started")
	}

	if err := m.servoPin.PWM(DutyForAngle(angle), m.frequency); err != nil {
		return errors.Errorf("could not set servo to %v°: %v", angle, err)
	}

	return nil
}

// ReleaseServo stops the PWM signal so the servo does not jitter or heat up
func (m *RaspberryMachine) ReleaseServo() error {
	if m.servoPin == nil {
		return errors.New("machine not started")
	}

	if err := m.servoPin.Out(gpio.Low); err != nil {
		return errors.Errorf("could not release servo: %v", err)
	}

	return nil
}

// DutyForAngle maps 0° to 180° onto a 2% to 12% duty cycle at 50 Hz
func DutyForAngle(angle float64) gpio.Duty {
	percent := angle/18 + 2
	return gpio.Duty(percent / 100 * float64(gpio.DutyMax))
}
