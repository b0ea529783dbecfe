package machine

import (
	"fmt"
	"sync"
)

// Compile time check for protocol compatibility
var _ Machine = (*MockMachine)(nil)

// MockMachine stands in for the hardware. It records every servo command
// and lets the return button be pressed programmatically.
type MockMachine struct {
	mtx        sync.Mutex
	commands   []string
	failAngles map[float64]error
	releaseErr error
	released   bool
	started    bool
	onPress    func()
	log        Logger
}

func NewMockMachine(logger Logger) *MockMachine {
	m := &MockMachine{
		failAngles: make(map[float64]error),
		released:   true,
	}

	if logger != nil {
		m.log = logger
	} else {
		m.log = noopLogger{}
	}

	return m
}

func (m *MockMachine) Start() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.started = true
	m.log.Infof("Started mock machine")

	return nil
}

func (m *MockMachine) Stop() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.started = false
	m.log.Infof("Stopped mock machine")

	return nil
}

func (m *MockMachine) SetServoAngle(angle float64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.commands = append(m.commands, fmt.Sprintf("angle %v", angle))
	m.released = false

	m.log.Debugf("Servo at %v°", angle)

	return m.failAngles[angle]
}

func (m *MockMachine) ReleaseServo() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.commands = append(m.commands, "release")
	m.released = true

	m.log.Debugf("Servo released")

	return m.releaseErr
}

func (m *MockMachine) OnReturnPress(fn func()) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.onPress = fn
}

// Press simulates the return button being pressed
func (m *MockMachine) Press() {
	m.mtx.Lock()
	fn := m.onPress
	m.mtx.Unlock()

	m.log.Infof("Mock return button pressed")

	if fn != nil {
		fn()
	}
}

// FailAngle makes every move to angle fail with err
func (m *MockMachine) FailAngle(angle float64, err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.failAngles[angle] = err
}

// FailRelease makes releasing the servo fail with err
func (m *MockMachine) FailRelease(err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.releaseErr = err
}

// Commands returns the servo commands received so far
func (m *MockMachine) Commands() []string {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return append([]string(nil), m.commands...)
}

// Released reports whether the last servo command released the signal
func (m *MockMachine) Released() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.released
}

func (m *MockMachine) Started() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.started
}
