package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "vendd.conf"
	defaultDataDirname    = "data"
)

type raspberryConfig struct {
	ServoPin  string  `long:"servopin" description:"GPIO pin driving the dispense servo" default:"GPIO17"`
	ReturnPin string  `long:"returnpin" description:"GPIO pin of the hardware return button" default:"GPIO5"`
	Frequency float64 `long:"frequency" description:"Servo PWM frequency in Hz" default:"50"`
}

type actuatorConfig struct {
	DispenseAngle float64       `long:"dispenseangle" description:"Servo angle that ejects an item" default:"90"`
	RestAngle     float64       `long:"restangle" description:"Servo resting angle" default:"0"`
	Settle        time.Duration `long:"settle" description:"Time given to the servo to reach a position" default:"500ms"`
}

type webConfig struct {
	Listen       string `long:"listen" description:"Address the web panel listens on" default:"localhost:9000"`
	ConsoleLines int    `long:"consolelines" description:"Notifications kept by the web panel" default:"100"`
}

type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	Debug       bool   `long:"debug" description:"Start in debug mode"`
	ConfigFile  string `long:"configfile" description:"Path to configuration file"`
	DataDir     string `long:"datadir" description:"The directory to store vendd's settings in"`
	Name        string `long:"name" description:"Name of this machine, saved for later starts"`
	Machine     string `long:"machine" description:"The hardware to use" choice:"raspberry" choice:"mock" choice:"auto" default:"auto"`
	Surface     string `long:"surface" description:"The panel the machine is operated through" choice:"console" choice:"web" default:"console"`
	QueueSize   int    `long:"queuesize" description:"Hardware button presses buffered while an event is handled" default:"16"`

	Raspberry *raspberryConfig `group:"Raspberry" namespace:"raspberry"`
	Actuator  *actuatorConfig  `group:"Actuator" namespace:"actuator"`
	Web       *webConfig       `group:"Web" namespace:"web"`
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return defaultDataDirname
	}

	return filepath.Join(dir, "vendd")
}

// loadConfig parses the command line, then an ini file if one exists, then
// the command line again so flags win over the file.
func loadConfig() (*config, error) {
	cfg := config{
		DataDir:   defaultDataDir(),
		Raspberry: &raspberryConfig{},
		Actuator:  &actuatorConfig{},
		Web:       &webConfig{},
	}

	preCfg := cfg
	if _, err := flags.Parse(&preCfg); err != nil {
		return nil, err
	}

	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	configFile := preCfg.ConfigFile
	if configFile == "" {
		configFile = filepath.Join(preCfg.DataDir, defaultConfigFilename)
	}

	parser := flags.NewParser(&cfg, flags.Default)

	if _, err := os.Stat(configFile); err == nil {
		if err := flags.NewIniParser(parser).ParseFile(configFile); err != nil {
			return nil, err
		}
	} else if preCfg.ConfigFile != "" {
		return nil, err
	}

	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
