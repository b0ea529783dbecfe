package display

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-errors/errors"
)

// Compile time check for protocol compatibility
var _ Surface = (*ConsoleSurface)(nil)

type ConsoleConfig struct {
	In     io.Reader
	Out    io.Writer
	Logger Logger
}

// ConsoleSurface is a line based panel on a terminal. Every input line is
// one token, "quit", "exit" or end of input close the panel.
type ConsoleSurface struct {
	out          io.Writer
	outMtx       sync.Mutex
	interactions chan Interaction
	done         chan struct{}
	closeOnce    sync.Once
	log          Logger
}

func NewConsoleSurface(config *ConsoleConfig) *ConsoleSurface {
	s := &ConsoleSurface{
		out:          config.Out,
		interactions: make(chan Interaction),
		done:         make(chan struct{}),
	}

	if config.Logger != nil {
		s.log = config.Logger
	} else {
		s.log = noopLogger{}
	}

	go s.read(config.In)

	return s
}

func (s *ConsoleSurface) read(in io.Reader) {
	defer close(s.interactions)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}

		if token == "quit" || token == "exit" {
			break
		}

		if !s.emit(Interaction{Token: token}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.Errorf("Could not read console input: %v", err)
	}

	s.emit(Interaction{Token: CloseToken})
}

func (s *ConsoleSurface) emit(interaction Interaction) bool {
	select {
	case s.interactions <- interaction:
		return true
	case <-s.done:
		return false
	}
}

func (s *ConsoleSurface) Interactions() <-chan Interaction {
	return s.interactions
}

func (s *ConsoleSurface) Update(region Region, text string) error {
	return s.write(fmt.Sprintf("[%s] %s\n", region, text))
}

func (s *ConsoleSurface) Append(region Region, text string) error {
	if region == RegionConsole {
		return s.write(fmt.Sprintf("> %s\n", text))
	}

	return s.write(fmt.Sprintf("[%s] + %s\n", region, text))
}

func (s *ConsoleSurface) write(line string) error {
	s.outMtx.Lock()
	defer s.outMtx.Unlock()

	if _, err := io.WriteString(s.out, line); err != nil {
		return errors.Errorf("could not write to console: %v", err)
	}

	return nil
}

// Close stops delivering interactions. A read blocked on the input is
// left to finish on its own.
func (s *ConsoleSurface) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	return nil
}
