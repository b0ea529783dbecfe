package api

import (
	"net"
	"net/http"
	"sync"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/vendd/display"
	"github.com/the-lightning-land/vendd/pricing"
)

// DefaultConsoleLines is how many notifications the panel keeps
const DefaultConsoleLines = 100

// Compile time check for protocol compatibility
var _ display.Surface = (*Api)(nil)

type Config struct {
	Tables       *pricing.Tables
	ConsoleLines int
	Log          Logger
}

// Api is a web panel for the machine. Buttons are pressed through a JSON
// endpoint and the display is streamed to browsers over a websocket.
type Api struct {
	router       *mux.Router
	tables       *pricing.Tables
	incoming     chan display.Interaction
	interactions chan display.Interaction
	closed       chan struct{}
	closeOnce    sync.Once
	mtx          sync.Mutex
	total        string
	console      []string
	consoleLines int
	clients      map[uint32]*client
	nextClientID uint32
	listeners    []net.Listener
	log          Logger
}

func New(config *Config) *Api {
	api := &Api{
		router:       mux.NewRouter(),
		tables:       config.Tables,
		incoming:     make(chan display.Interaction),
		interactions: make(chan display.Interaction),
		closed:       make(chan struct{}),
		consoleLines: config.ConsoleLines,
		clients:      make(map[uint32]*client),
	}

	if api.consoleLines <= 0 {
		api.consoleLines = DefaultConsoleLines
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.router.Handle("/api/v1/tables", api.handleGetTables()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/display", api.handleGetDisplay()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/display/events", api.handleGetDisplayEvents()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/interactions", api.handlePostInteraction()).Methods(http.MethodPost)

	go api.pump()

	return api
}

// ServeHTTP lets the api be mounted or tested without a listener
func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *Api) Serve(l net.Listener) error {
	a.mtx.Lock()
	a.listeners = append(a.listeners, l)
	a.mtx.Unlock()

	err := http.Serve(l, a.router)
	if err != nil {
		select {
		case <-a.closed:
			return nil
		default:
		}

		return errors.Errorf("unable to serve api: %v", err)
	}

	return nil
}

// pump hands queued interactions to the consumer one by one, and ends the
// interaction stream when the panel closes.
func (a *Api) pump() {
	defer close(a.interactions)

	for {
		select {
		case interaction := <-a.incoming:
			select {
			case a.interactions <- interaction:
			case <-a.closed:
				return
			}
		case <-a.closed:
			return
		}
	}
}

func (a *Api) Interactions() <-chan display.Interaction {
	return a.interactions
}

func (a *Api) Update(region display.Region, text string) error {
	a.mtx.Lock()
	switch region {
	case display.RegionTotal:
		a.total = text
	default:
		a.mtx.Unlock()
		return errors.Errorf("unknown region %v", region)
	}
	a.mtx.Unlock()

	a.broadcast(&regionEvent{Region: string(region), Text: text})

	return nil
}

func (a *Api) Append(region display.Region, text string) error {
	a.mtx.Lock()
	switch region {
	case display.RegionConsole:
		a.console = append(a.console, text)
		if len(a.console) > a.consoleLines {
			a.console = a.console[len(a.console)-a.consoleLines:]
		}
	default:
		a.mtx.Unlock()
		return errors.Errorf("cannot append to region %v", region)
	}
	a.mtx.Unlock()

	a.broadcast(&regionEvent{Region: string(region), Text: text, Append: true})

	return nil
}

// Close ends the interaction stream, closes all listeners and disconnects
// display subscribers.
func (a *Api) Close() error {
	var err error

	a.closeOnce.Do(func() {
		close(a.closed)

		a.mtx.Lock()
		defer a.mtx.Unlock()

		for _, lis := range a.listeners {
			if lerr := lis.Close(); lerr != nil && err == nil {
				err = errors.Errorf("could not close listener: %v", lerr)
			}
		}

		for id, c := range a.clients {
			close(c.events)
			delete(a.clients, id)
		}
	})

	return err
}

func (a *Api) snapshot() (string, []string) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.total, append([]string{}, a.console...)
}
