// Package config loads relay configuration.
//
// Relay configuration is a TOML file with the single recognized key:
//
//	central_ip_port = 4000
//
// Process-level settings (logging, ops endpoint) come from the environment, see Runtime.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DefaultPath - config file used when no path is given on the command line.
const DefaultPath = "config.toml"

const portKey = "central_ip_port"

// ErrMissingPort - config file does not define the listen port.
var ErrMissingPort = errors.New(portKey + " is required")

// Config - relay configuration.
type Config struct {
	// CentralIPPort - TCP port to listen on all interfaces.
	CentralIPPort uint32 `toml:"central_ip_port"`
}

// Addr - returns listen address on all IPv4 interfaces.
func (c Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", strconv.FormatUint(uint64(c.CentralIPPort), 10))
}

// Error - config file can't be read or decoded.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Load - reads and decodes config file. Any failure is reported as *Error.
func Load(path string) (*Config, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	cfg := &Config{}
	meta, err := toml.Decode(string(text), cfg)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if !meta.IsDefined(portKey) {
		return nil, &Error{Path: path, Err: ErrMissingPort}
	}
	return cfg, nil
}
