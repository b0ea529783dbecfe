package api

const clientBuffer = 32

type regionEvent struct {
	Region string `json:"region"`
	Text   string `json:"text"`
	Append bool   `json:"append"`
}

// client is a subscriber to display changes
type client struct {
	id     uint32
	events chan *regionEvent
	api    *Api
}

// subscribe registers a client and returns the display as it was at that
// moment. Every later change reaches the client on its events channel only.
func (a *Api) subscribe() (*client, string, []string) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	c := &client{
		id:     a.nextClientID,
		events: make(chan *regionEvent, clientBuffer),
		api:    a,
	}

	a.nextClientID++

	select {
	case <-a.closed:
		close(c.events)
	default:
		a.clients[c.id] = c
	}

	return c, a.total, append([]string{}, a.console...)
}

func (c *client) cancel() {
	c.api.mtx.Lock()
	defer c.api.mtx.Unlock()

	if _, ok := c.api.clients[c.id]; ok {
		delete(c.api.clients, c.id)
		close(c.events)
	}
}

// broadcast never blocks the caller, a subscriber that falls behind misses
// events.
func (a *Api) broadcast(event *regionEvent) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	for _, c := range a.clients {
		select {
		case c.events <- event:
		default:
			a.log.Warnf("Display subscriber %v is behind, dropping event", c.id)
		}
	}
}
