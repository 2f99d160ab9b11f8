// Package config loads the daemon configuration from TOML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/titan.go/pkg/l0/shm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// EnvConfigPath names the config file when -config is not given.
const EnvConfigPath = "TITAN_CONFIG"

// Transport kinds.
const (
	TransportSerial    = "serial"
	TransportMQTT      = "mqtt"
	TransportTCP       = "tcp"
	TransportWebsocket = "websocket"
	TransportLoopback  = "loopback"
)

// Defaults.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultReadTimeout  = 100 * time.Millisecond
)

// Duration is a time.Duration written as a string like "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(strings.TrimSpace(string(text)))
	return
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the daemon configuration.
type Config struct {
	// Address is the device address shared by all processes.
	Address     uint16    `toml:"address"`
	MetricsAddr string    `toml:"metrics_addr"`
	Areas       []Area    `toml:"area"`
	Processes   []Process `toml:"process"`
}

// Area declares a shared area. It's identified by Name, by Index, or both
// when Name isn't one of the well-known areas.
type Area struct {
	Name     string `toml:"name"`
	Index    *int   `toml:"index"`
	Capacity int    `toml:"capacity"`
	Access   string `toml:"access"`

	index  uint8
	access shm.AccessType
}

// ResolvedIndex returns the index after Validate.
func (a *Area) ResolvedIndex() uint8 { return a.index }

// ResolvedAccess returns the access type after Validate.
func (a *Area) ResolvedAccess() shm.AccessType { return a.access }

// Process declares a communication process.
type Process struct {
	Name      string `toml:"name"`
	Transport string `toml:"transport"`
	// URL addresses the transport: a device path for serial, host:port for
	// tcp, a broker URL for mqtt and a ws:// URL for websocket.
	URL            string   `toml:"url"`
	Baud           int      `toml:"baud"`
	BufferSize     int      `toml:"buffer_size"`
	ReadTimeout    Duration `toml:"read_timeout"`
	PollInterval   Duration `toml:"poll_interval"`
	SingleArea     string   `toml:"single_area"`
	ContinuousArea string   `toml:"continuous_area"`
	// Framed enables length prefixes on tcp.
	Framed bool `toml:"framed"`

	singleArea     uint8
	continuousArea uint8
}

// ResolvedAreas returns the one-shot request and schedule areas after
// Validate.
func (p *Process) ResolvedAreas() (single, continuous uint8) {
	return p.singleArea, p.continuousArea
}

// Load reads the file at path, applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes TOML text, applies defaults and validates.
func Parse(text string) (*Config, error) {
	var conf Config
	meta, err := toml.Decode(text, &conf)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}
	if !meta.IsDefined("address") {
		return nil, fmt.Errorf("parse config: address is required")
	}
	conf.ApplyDefaults()
	if err = conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// ApplyDefaults fills unset optional values.
func (c *Config) ApplyDefaults() {
	for i := range c.Processes {
		p := &c.Processes[i]
		if p.ReadTimeout.Duration == 0 {
			p.ReadTimeout.Duration = DefaultReadTimeout
		}
		if p.PollInterval.Duration == 0 {
			p.PollInterval.Duration = DefaultPollInterval
		}
		if p.BufferSize == 0 {
			p.BufferSize = wire.MaxFrameSize
		}
	}
}

// Validate checks the configuration and resolves area references.
func (c *Config) Validate() error {
	if c.Address == wire.BroadcastAddress || c.Address == wire.InvalidAddress {
		return fmt.Errorf("address %#04x is reserved", c.Address)
	}
	seen := make(map[uint8]bool)
	for i := range c.Areas {
		a := &c.Areas[i]
		if err := a.resolve(); err != nil {
			return fmt.Errorf("area[%d]: %w", i, err)
		}
		if seen[a.index] {
			return fmt.Errorf("area[%d]: index %d declared twice", i, a.index)
		}
		seen[a.index] = true
	}
	names := make(map[string]bool)
	for i := range c.Processes {
		p := &c.Processes[i]
		if err := p.validate(); err != nil {
			return fmt.Errorf("process[%d] %q: %w", i, p.Name, err)
		}
		if names[p.Name] {
			return fmt.Errorf("process[%d]: name %q used twice", i, p.Name)
		}
		names[p.Name] = true
	}
	return nil
}

func (a *Area) resolve() error {
	switch {
	case a.Index != nil:
		if *a.Index < 0 || *a.Index >= shm.MaxAreas {
			return fmt.Errorf("index %d out of range", *a.Index)
		}
		a.index = uint8(*a.Index)
		if known, ok := AreaIndex(a.Name); ok && known != a.index {
			return fmt.Errorf("%q is area %d", a.Name, known)
		}
	case a.Name != "":
		index, err := ParseArea(a.Name)
		if err != nil {
			return err
		}
		a.index = index
	default:
		return fmt.Errorf("name or index required")
	}
	if a.Capacity <= 0 || a.Capacity > 0xffff {
		return fmt.Errorf("capacity %d out of range", a.Capacity)
	}
	access, err := shm.ParseAccessType(a.Access)
	if err != nil {
		return err
	}
	a.access = access
	return nil
}

func (p *Process) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name required")
	}
	switch p.Transport {
	case TransportSerial, TransportMQTT, TransportTCP, TransportWebsocket:
		if p.URL == "" {
			return fmt.Errorf("url required for %s", p.Transport)
		}
	case TransportLoopback:
	default:
		return fmt.Errorf("unknown transport %q", p.Transport)
	}
	if p.BufferSize < 0 || p.BufferSize > wire.MaxFrameSize {
		return fmt.Errorf("buffer_size %d out of range", p.BufferSize)
	}
	var err error
	if p.singleArea, err = ParseArea(p.SingleArea); err != nil {
		return fmt.Errorf("single_area: %w", err)
	}
	if p.continuousArea, err = ParseArea(p.ContinuousArea); err != nil {
		return fmt.Errorf("continuous_area: %w", err)
	}
	if p.singleArea == p.continuousArea {
		return fmt.Errorf("single_area and continuous_area are both %d", p.singleArea)
	}
	return nil
}
