package display

// Region names an area of the panel that can be written to
type Region string

const (
	// RegionTotal shows the amount currently inserted
	RegionTotal Region = "total"
	// RegionConsole is the scrolling notification log
	RegionConsole Region = "console"
)

const (
	// ReturnToken is sent when the panel's return button is pressed
	ReturnToken = "Return"
	// CloseToken is sent once when the panel is closed
	CloseToken = "__closed__"
)

// Interaction is a single button press or command on a panel
type Interaction struct {
	Token   string
	Payload interface{}
}

// Surface is an interactive panel the machine is operated through
type Surface interface {
	// Interactions delivers the panel's interactions in order. The channel
	// yields CloseToken or is closed when the panel goes away.
	Interactions() <-chan Interaction
	// Update replaces the text of a region
	Update(region Region, text string) error
	// Append adds a line to a region
	Append(region Region, text string) error
	Close() error
}
