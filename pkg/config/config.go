package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/cloud-bulldozer/globesort-perf/pkg/logging"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxMessageSize is the inbound ceiling large enough for big value vectors.
	DefaultMaxMessageSize = 100 * 1024 * 1024
	// DefaultShutdownGrace bounds how long channel teardown may take.
	DefaultShutdownGrace = 2 * time.Second
	// DefaultConnectTimeout bounds the connection handshake.
	DefaultConnectTimeout = 10 * time.Second
)

// Config describes the transport tuning of a run
type Config struct {
	MaxMessageSize int           `yaml:"maxMessageSize,omitempty"`
	ShutdownGrace  time.Duration `yaml:"shutdownGrace,omitempty"`
	ConnectTimeout time.Duration `yaml:"connectTimeout,omitempty"`
	Verify         bool          `yaml:"verify"`
}

// Endpoint is the server the run is measured against.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Address returns host:port, bracketing IPv6 literals.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Address()
}

// ArgumentError reports bad command line input or an invalid tuning file.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Arg, e.Reason)
}

// Default returns the tuning used when no file is given.
func Default() Config {
	return Config{
		MaxMessageSize: DefaultMaxMessageSize,
		ShutdownGrace:  DefaultShutdownGrace,
		ConnectTimeout: DefaultConnectTimeout,
		Verify:         true,
	}
}

// Validate checks the tuning values.
func (c Config) Validate() error {
	if c.MaxMessageSize < 1 {
		return &ArgumentError{Arg: "maxMessageSize", Reason: "must be > 0"}
	}
	if c.ShutdownGrace <= 0 {
		return &ArgumentError{Arg: "shutdownGrace", Reason: "must be > 0"}
	}
	if c.ConnectTimeout <= 0 {
		return &ArgumentError{Arg: "connectTimeout", Reason: "must be > 0"}
	}
	return nil
}

// ParseConf will read in the tuning file. Keys missing from the
// file keep their default value. An empty name returns the defaults.
func ParseConf(fn string) (Config, error) {
	cfg := Default()
	if fn == "" {
		return cfg, nil
	}
	log.Infof("📒 Reading %s file. ", fn)
	buf, err := os.ReadFile(fn)
	if err != nil {
		return cfg, &ArgumentError{Arg: "config", Reason: err.Error()}
	}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return cfg, &ArgumentError{Arg: "config", Reason: fmt.Sprintf("in file %q: %v", fn, err)}
	}
	return cfg, cfg.Validate()
}

// ParseArgs validates the positional arguments: server ip, server port
// and number of values to sort.
func ParseArgs(args []string) (Endpoint, int, error) {
	if len(args) != 3 {
		return Endpoint{}, 0, &ArgumentError{Arg: "arguments", Reason: fmt.Sprintf("expected server_ip server_port num_values, got %d values", len(args))}
	}
	host := strings.TrimSpace(args[0])
	if host == "" {
		return Endpoint{}, 0, &ArgumentError{Arg: "server_ip", Reason: "must not be empty"}
	}
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return Endpoint{}, 0, &ArgumentError{Arg: "server_port", Reason: fmt.Sprintf("%q is not an integer", args[1])}
	}
	if port < 1 || port > 65535 {
		return Endpoint{}, 0, &ArgumentError{Arg: "server_port", Reason: "must be between 1 and 65535"}
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return Endpoint{}, 0, &ArgumentError{Arg: "num_values", Reason: fmt.Sprintf("%q is not an integer", args[2])}
	}
	if n < 0 {
		return Endpoint{}, 0, &ArgumentError{Arg: "num_values", Reason: "must be >= 0"}
	}
	return Endpoint{Host: host, Port: port}, n, nil
}

// Show Display the run configuration
func Show(c Config, ep Endpoint, n int) {
	log.Infof("🗒️  Sorting %d values on %s (max message %d bytes, verify %t)", n, ep, c.MaxMessageSize, c.Verify)
}
