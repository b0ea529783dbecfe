package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/vendd/actuator"
	"github.com/the-lightning-land/vendd/api"
	"github.com/the-lightning-land/vendd/dispenser"
	"github.com/the-lightning-land/vendd/display"
	"github.com/the-lightning-land/vendd/machine"
	"github.com/the-lightning-land/vendd/pricing"
	"github.com/the-lightning-land/vendd/vendb"
	"github.com/the-lightning-land/vendd/vending"
	"periph.io/x/periph/conn/physic"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// venddMain is the true entry point for vendd. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func venddMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	// vend.db stores the machine name and its coin and price tables
	vendDB, err := vendb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open vend.db: %v", err)
	}

	log.Infof("Opened %v", vendDB.Path())

	defer func() {
		err := vendDB.Close()
		if err != nil {
			log.Errorf("Could not close vend.db: %v", err)
		} else {
			log.Info("Closed vend.db.")
		}
	}()

	if cfg.Name != "" {
		if err := vendDB.SetName(cfg.Name); err != nil {
			return errors.Errorf("Could not save name: %v", err)
		}
	}

	name, err := vendDB.GetName()
	if err != nil {
		log.Warnf("Could not read name: %v", err)
	}

	if name != "" {
		log.Infof("This is %v.", name)
	}

	tables, err := vendDB.LoadTables(pricing.DefaultCoins, pricing.DefaultPrices,
		display.ReturnToken, display.CloseToken)
	if err != nil {
		return errors.Errorf("Could not load tables: %v", err)
	}

	log.Infof("Accepting coins %v, selling %v", tables.Coins(), tables.Items())

	// The hardware controller
	var m machine.Machine
	var mock *machine.MockMachine

	kind := cfg.Machine
	if kind == "auto" {
		if machine.HostAvailable(cfg.Raspberry.ServoPin) {
			kind = "raspberry"
		} else {
			log.Warnf("No GPIO found for pin %v, falling back to a mock machine.", cfg.Raspberry.ServoPin)
			kind = "mock"
		}
	}

	switch kind {
	case "raspberry":
		m = machine.NewRaspberryMachine(&machine.RaspberryMachineConfig{
			ServoPin:       cfg.Raspberry.ServoPin,
			ReturnPin:      cfg.Raspberry.ReturnPin,
			ServoFrequency: physic.Frequency(cfg.Raspberry.Frequency * float64(physic.Hertz)),
			Logger:         log.WithField("system", "machine"),
		})

		log.Infof("Created Raspberry Pi machine on servo pin %v and return pin %v.",
			cfg.Raspberry.ServoPin, cfg.Raspberry.ReturnPin)
	case "mock":
		mock = machine.NewMockMachine(log.WithField("system", "machine"))
		m = mock

		log.Info("Created a mock machine. Send SIGUSR1 to press its return button.")
	default:
		return errors.Errorf("Unknown machine type %v", cfg.Machine)
	}

	// The panel
	var surface display.Surface

	switch cfg.Surface {
	case "console":
		surface = display.NewConsoleSurface(&display.ConsoleConfig{
			In:     os.Stdin,
			Out:    os.Stdout,
			Logger: log.WithField("system", "console"),
		})

		log.Info("Created console panel. Type a coin, an item, Return or quit.")
	case "web":
		webApi := api.New(&api.Config{
			Tables:       tables,
			ConsoleLines: cfg.Web.ConsoleLines,
			Log:          log.WithField("system", "api"),
		})

		lis, err := net.Listen("tcp", cfg.Web.Listen)
		if err != nil {
			return errors.Errorf("Web panel unable to listen on %v: %v", cfg.Web.Listen, err)
		}

		go func() {
			err := webApi.Serve(lis)
			if err != nil {
				log.Errorf("Could not serve web panel: %v", err)
			}
		}()

		surface = webApi

		log.Infof("Serving web panel on %v", lis.Addr())
	default:
		return errors.Errorf("Unknown surface type %v", cfg.Surface)
	}

	defer func() {
		err := surface.Close()
		if err != nil {
			log.Errorf("Could not close panel: %v", err)
		} else {
			log.Info("Closed panel.")
		}
	}()

	act := actuator.NewController(&actuator.Config{
		Servo:         m,
		DispenseAngle: cfg.Actuator.DispenseAngle,
		RestAngle:     cfg.Actuator.RestAngle,
		Settle:        cfg.Actuator.Settle,
		Logger:        log.WithField("system", "actuator"),
	})

	vend := vending.NewMachine(&vending.Config{
		Tables:   tables,
		Actuator: act,
		Display:  surface,
		Logger:   log.WithField("system", "vending"),
	})

	// central controller, the only one touching the vending machine
	d := dispenser.NewDispenser(&dispenser.Config{
		Machine:   m,
		Surface:   surface,
		Vending:   vend,
		Tables:    tables,
		Actuator:  act,
		QueueSize: cfg.QueueSize,
		Logger:    log.WithField("system", "dispenser"),
	})

	log.Infof("Created dispenser.")

	if err := m.Start(); err != nil {
		return errors.Errorf("Could not start machine: %v", err)
	}

	defer func() {
		err := m.Stop()
		if err != nil {
			log.Errorf("Could not properly stop machine: %v", err)
		} else {
			log.Infof("Stopped machine.")
		}
	}()

	// Handle interrupt signals correctly
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		sig := <-signals
		log.Info(sig)
		log.Info("Received an interrupt, stopping dispenser...")
		d.Shutdown()
	}()

	if mock != nil {
		go func() {
			presses := make(chan os.Signal, 1)
			signal.Notify(presses, syscall.SIGUSR1)
			for range presses {
				mock.Press()
			}
		}()
	}

	// blocks until the panel is closed or the dispenser is shut down
	err = d.Run()
	if err != nil {
		return errors.Errorf("Failed running dispenser: %v", err)
	}

	// finish with no error
	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := venddMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running vendd.")
		}
		os.Exit(1)
	}
}
