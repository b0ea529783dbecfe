package machine

// Machine is the hardware of the vending machine: the dispense servo and the
// physical return button.
type Machine interface {
	Start() error
	Stop() error
	SetServoAngle(angle float64) error
	ReleaseServo() error
	// OnReturnPress registers fn to be called from the driver's own
	// goroutine whenever the return button is pressed. Must be called
	// before Start.
	OnReturnPress(fn func())
}
