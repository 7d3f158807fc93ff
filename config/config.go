package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/varesa/BGtraP/packet"
)

const (
	DefaultListenAddr     = ":179"
	DefaultHoldTime       = 90
	DefaultLocalAS        = 65000
	DefaultReadBufferSize = 4096
)

// Config holds the settings of the speaker daemon
type Config struct {
	ListenAddr     string `toml:"listen_addr"`
	LocalAS        uint16 `toml:"local_as"`
	RouterID       string `toml:"router_id"`
	HoldTime       uint16 `toml:"hold_time"`
	ReadBufferSize int    `toml:"read_buffer_size"`
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	return &Config{
		ListenAddr:     DefaultListenAddr,
		LocalAS:        DefaultLocalAS,
		HoldTime:       DefaultHoldTime,
		ReadBufferSize: DefaultReadBufferSize,
	}
}

// Load reads and validates the TOML file at path. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read reads the TOML file at path without validating it, so callers can
// override values first.
func Read(path string) (*Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.RouterID = strings.TrimSpace(cfg.RouterID)

	return cfg, nil
}

// Validate checks the configuration for values a speaker cannot run with
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}

	if _, err := c.RouterIDUint32(); err != nil {
		return err
	}

	if c.HoldTime != 0 && c.HoldTime < 3 {
		return fmt.Errorf("hold_time must be 0 or at least 3 seconds, got %d", c.HoldTime)
	}

	if c.ReadBufferSize < packet.MinLen {
		return fmt.Errorf("read_buffer_size must be at least %d, got %d", packet.MinLen, c.ReadBufferSize)
	}

	return nil
}

// RouterIDUint32 returns the router id as BGP identifier
func (c *Config) RouterIDUint32() (uint32, error) {
	ip := net.ParseIP(c.RouterID).To4()
	if ip == nil || strings.Contains(c.RouterID, ":") {
		return 0, fmt.Errorf("router_id %q is not an IPv4 address", c.RouterID)
	}

	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3]), nil
}
