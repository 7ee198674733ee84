package main

import (
	"flag"
	"os"
	"strconv"
)

// Config holds the daemon configuration
type Config struct {
	// BindAddress is the address the admin API listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the host-facing serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the host (e.g. 115200)
	BaudRate int
	// DBPath is the location of the persistent profile database
	DBPath string
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// SimPIN is the PIN the simulated SIM accepts; empty leaves the SIM unlocked
	SimPIN string
	// Strict rejects bare "=" SET commands instead of treating them as empty
	Strict bool
	// Echo enables command echo at startup
	Echo bool
	// MQTTBroker enables the notification bridge when set (e.g. "tcp://localhost:1883")
	MQTTBroker string
	// MQTTClientID identifies this daemon to the broker
	MQTTClientID string
	// MQTTTopic is the topic whose payloads are forwarded as unsolicited lines
	MQTTTopic string
	// MQTTUser and MQTTPass are optional broker credentials
	MQTTUser string
	MQTTPass string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.DBPath = "atmodemd.db"
		c.LogLevel = "info"
		c.MQTTClientID = "atmodemd-1"
		c.MQTTTopic = "atmodemd/notify"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if path := os.Getenv("DB_PATH"); path != "" {
			c.DBPath = path
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if simPIN := os.Getenv("SIM_PIN"); simPIN != "" {
			c.SimPIN = simPIN
		}

		if strict := os.Getenv("STRICT"); strict != "" {
			c.Strict = strict == "1" || strict == "true"
		}

		if echo := os.Getenv("ECHO"); echo != "" {
			c.Echo = echo == "1" || echo == "true"
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTTBroker = broker
		}

		if id := os.Getenv("MQTT_CLIENT_ID"); id != "" {
			c.MQTTClientID = id
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTTTopic = topic
		}

		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MQTTUser = user
		}

		if pass := os.Getenv("MQTT_PASSWORD"); pass != "" {
			c.MQTTPass = pass
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "db-path":
				c.DBPath = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			case "sim-pin":
				c.SimPIN = f.Value.String()
			case "strict":
				c.Strict = f.Value.String() == "true"
			case "echo":
				c.Echo = f.Value.String() == "true"
			case "mqtt-broker":
				c.MQTTBroker = f.Value.String()
			case "mqtt-client-id":
				c.MQTTClientID = f.Value.String()
			case "mqtt-topic":
				c.MQTTTopic = f.Value.String()
			}
		})
		return nil
	}
}
