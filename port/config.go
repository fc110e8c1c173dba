package port

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultQueueSize = 256

	// maxEventSize mirrors the largest sysex chunk a PortMidi stream accepts.
	maxEventSize = 1 << 16
)

// Config holds per-port settings, usually loaded from YAML.
type Config struct {
	// ChannelMask selects delivered channels. Zero means all channels.
	ChannelMask ChannelMask `yaml:"channel-mask"`
	// Filters names message types to drop, see ParseFilter.
	Filters []string `yaml:"filters"`
	// QueueSize bounds the chunks buffered between a Source and Input.
	QueueSize int `yaml:"queue-size"`
	// EventSize splits Output writes into chunks of at most this many bytes.
	// Zero sends each message in one call.
	EventSize int `yaml:"event-size"`

	SysEx       bool `yaml:"sysex"`
	TimeCode    bool `yaml:"timecode"`
	ActiveSense bool `yaml:"active-sense"`
}

// DefaultConfig delivers everything on all channels.
func DefaultConfig() Config {
	return Config{
		ChannelMask: AllChannels,
		QueueSize:   defaultQueueSize,
		SysEx:       true,
		TimeCode:    true,
		ActiveSense: true,
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("port: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("port: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and filter names.
func (c Config) Validate() error {
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: queue-size %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.EventSize < 0 || c.EventSize > maxEventSize {
		return fmt.Errorf("%w: event-size %d", ErrInvalidConfig, c.EventSize)
	}
	_, err := ParseFilter(c.Filters)
	return err
}

func (c Config) filter() Filter {
	f, _ := ParseFilter(c.Filters)
	return f
}

func (c Config) mask() ChannelMask {
	if c.ChannelMask == 0 {
		return AllChannels
	}
	return c.ChannelMask
}

func (c Config) queueSize() int {
	if c.QueueSize <= 0 {
		return defaultQueueSize
	}
	return c.QueueSize
}
