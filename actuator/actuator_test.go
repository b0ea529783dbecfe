package actuator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServo struct {
	calls      []string
	failAngle  map[float64]error
	panicAngle map[float64]bool
	releaseErr error
}

func (s *fakeServo) SetServoAngle(angle float64) error {
	s.calls = append(s.calls, "angle:"+formatAngle(angle))

	if s.panicAngle[angle] {
		panic("servo driver crashed")
	}

	return s.failAngle[angle]
}

func (s *fakeServo) ReleaseServo() error {
	s.calls = append(s.calls, "release")
	return s.releaseErr
}

func formatAngle(angle float64) string {
	switch angle {
	case 90:
		return "90"
	case 0:
		return "0"
	default:
		return "?"
	}
}

func newTestController(servo *fakeServo, sleeps *[]time.Duration) *Controller {
	return NewController(&Config{
		Servo:         servo,
		DispenseAngle: 90,
		RestAngle:     0,
		Settle:        500 * time.Millisecond,
		Sleep: func(d time.Duration) {
			*sleeps = append(*sleeps, d)
		},
	})
}

func TestController_DispenseSequence(t *testing.T) {
	servo := &fakeServo{}
	var sleeps []time.Duration

	err := newTestController(servo, &sleeps).Dispense()

	require.NoError(t, err)
	assert.Equal(t, []string{"angle:90", "angle:0", "release"}, servo.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, sleeps)
}

func TestController_DispenseFaultStillRests(t *testing.T) {
	cause := errors.New("pwm unavailable")
	servo := &fakeServo{failAngle: map[float64]error{90: cause}}
	var sleeps []time.Duration

	err := newTestController(servo, &sleeps).Dispense()

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, StepDispense, fault.Step)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, []string{"angle:90", "angle:0", "release"}, servo.calls)
	assert.Len(t, sleeps, 1, "only the rest position settles")
}

func TestController_RestFaultStillReleases(t *testing.T) {
	servo := &fakeServo{failAngle: map[float64]error{0: errors.New("stuck")}}
	var sleeps []time.Duration

	err := newTestController(servo, &sleeps).Dispense()

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, StepRest, fault.Step)
	assert.Equal(t, "release", servo.calls[len(servo.calls)-1])
}

func TestController_FirstFaultWins(t *testing.T) {
	servo := &fakeServo{
		failAngle:  map[float64]error{90: errors.New("first")},
		releaseErr: errors.New("second"),
	}
	var sleeps []time.Duration

	err := newTestController(servo, &sleeps).Dispense()

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, StepDispense, fault.Step)
	assert.EqualError(t, fault.Err, "first")
}

func TestController_DriverPanicBecomesFault(t *testing.T) {
	servo := &fakeServo{panicAngle: map[float64]bool{90: true}}
	var sleeps []time.Duration

	var err error
	assert.NotPanics(t, func() {
		err = newTestController(servo, &sleeps).Dispense()
	})

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, StepDispense, fault.Step)
	assert.Contains(t, fault.Error(), "servo driver crashed")
	assert.Equal(t, []string{"angle:90", "angle:0", "release"}, servo.calls)
}

func TestController_RestPanicStillReleases(t *testing.T) {
	servo := &fakeServo{panicAngle: map[float64]bool{0: true}}
	var sleeps []time.Duration

	var err error
	assert.NotPanics(t, func() {
		err = newTestController(servo, &sleeps).Dispense()
	})

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, StepRest, fault.Step)
	assert.Contains(t, fault.Error(), "servo driver crashed")
	assert.Equal(t, []string{"angle:90", "angle:0", "release"}, servo.calls)
}

func TestController_ReleasePanicBecomesFault(t *testing.T) {
	servo := &panickyReleaseServo{}

	var err error
	assert.NotPanics(t, func() {
		err = NewController(&Config{Servo: servo, Sleep: func(time.Duration) {}}).Close()
	})

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, StepNeutralize, fault.Step)
	assert.Equal(t, []string{"angle:0"}, servo.calls)
}

type panickyReleaseServo struct {
	fakeServo
}

func (s *panickyReleaseServo) ReleaseServo() error {
	panic("release crashed")
}

func TestController_Close(t *testing.T) {
	servo := &fakeServo{}
	var sleeps []time.Duration

	require.NoError(t, newTestController(servo, &sleeps).Close())
	assert.Equal(t, []string{"angle:0", "release"}, servo.calls)
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(&Config{Servo: &fakeServo{}})

	assert.Equal(t, DefaultSettle, c.settle)
	assert.NotNil(t, c.sleep)
	assert.NotNil(t, c.log)
}
