package modem

import (
	"go.uber.org/zap"

	"github.com/collab-project/atcmd/at"
)

// Config carries the settings for a Modem. Build one with
// NewConfigBuilder.
type Config struct {
	dialer       Dialer
	registry     *at.Registry
	dispatchOpts at.Options
	logger       *zap.Logger
	echo         bool
	maxLineLen   int
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.registry == nil {
		c.registry = at.NewRegistry()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.maxLineLen == 0 {
		c.maxLineLen = 4096
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets the Dialer used to open the host channel. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithRegistry sets the command registry the modem dispatches into.
// When omitted an empty registry is created.
func (b *ConfigBuilder) WithRegistry(r *at.Registry) *ConfigBuilder {
	b.config.registry = r
	return b
}

// WithDispatchOptions sets the dialect options for the dispatcher.
func (b *ConfigBuilder) WithDispatchOptions(opts at.Options) *ConfigBuilder {
	b.config.dispatchOpts = opts
	return b
}

// WithLogger sets the structured logger. When omitted, logging is off.
func (b *ConfigBuilder) WithLogger(l *zap.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// WithEcho enables command echo (ATE1 behavior) at startup.
func (b *ConfigBuilder) WithEcho(on bool) *ConfigBuilder {
	b.config.echo = on
	return b
}

// WithMaxLineLength caps inbound command line length. Longer lines abort
// the loop with ErrLineTooLong. Zero means the 4096-byte default.
func (b *ConfigBuilder) WithMaxLineLength(n int) *ConfigBuilder {
	b.config.maxLineLen = n
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	b.config.setDefaults()
	return b.config, nil
}
