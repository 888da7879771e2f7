// Package config provides configuration loading for pantryd.
package config

import (
	"fmt"
	"time"

	"github.com/greenstead/pantryd/internal/logging"
)

// Config is the full pantryd configuration.
type Config struct {
	Bring  BringConfig    `koanf:"bring"`
	NATS   NATSConfig     `koanf:"nats"`
	Server ServerConfig   `koanf:"server"`
	Speech SpeechConfig   `koanf:"speech"`
	Log    logging.Config `koanf:"log"`
}

// BringConfig holds credentials and connection settings for the Bring
// shopping-list API.
type BringConfig struct {
	// BaseURL is the Bring REST endpoint.
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as X-BRING-API-KEY on every request.
	APIKey Secret `koanf:"api_key"`

	// UserUUID identifies the Bring account.
	UserUUID Secret `koanf:"user_uuid"`

	// ListUUID identifies the shopping list all operations target.
	ListUUID Secret `koanf:"list_uuid"`

	// Timeout bounds each HTTP request to the Bring API.
	Timeout Duration `koanf:"timeout"`
}

// NATSConfig holds the connection settings for the intent bus.
type NATSConfig struct {
	URL string `koanf:"url"`

	// Name is the connection name reported to the broker.
	Name string `koanf:"name"`
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// SpeechConfig selects the response locale and the intent names the
// dispatcher subscribes to.
type SpeechConfig struct {
	// Locale selects the embedded phrase-template set (e.g. "de", "en").
	Locale string `koanf:"locale"`

	Intents IntentsConfig `koanf:"intents"`
}

// IntentsConfig maps the four shopping-list actions to the intent names
// the NLU publishes them under.
type IntentsConfig struct {
	Add    string `koanf:"add"`
	Remove string `koanf:"remove"`
	Check  string `koanf:"check"`
	Read   string `koanf:"read"`
}

// Default returns the configuration defaults. Values from the config file
// and environment are merged on top.
func Default() *Config {
	return &Config{
		Bring: BringConfig{
			BaseURL: "https://api.getbring.com/rest/v2",
			Timeout: Duration(15 * time.Second),
		},
		NATS: NATSConfig{
			URL:  "nats://127.0.0.1:4222",
			Name: "pantryd",
		},
		Server: ServerConfig{
			Port:            8732,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Speech: SpeechConfig{
			Locale: "de",
			Intents: IntentsConfig{
				Add:    "addItem",
				Remove: "delItem",
				Check:  "checkList",
				Read:   "readList",
			},
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
			Caller: true,
		},
	}
}

// Validate checks the configuration for values the daemon cannot start
// without.
func (c *Config) Validate() error {
	if c.Bring.BaseURL == "" {
		return fmt.Errorf("bring.base_url is required")
	}
	if !c.Bring.APIKey.IsSet() {
		return fmt.Errorf("bring.api_key is required")
	}
	if !c.Bring.UserUUID.IsSet() {
		return fmt.Errorf("bring.user_uuid is required")
	}
	if !c.Bring.ListUUID.IsSet() {
		return fmt.Errorf("bring.list_uuid is required")
	}
	if c.Bring.Timeout.Duration() <= 0 {
		return fmt.Errorf("bring.timeout must be positive")
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range 1-65535, got %d", c.Server.Port)
	}
	if c.Speech.Locale == "" {
		return fmt.Errorf("speech.locale is required")
	}
	for action, name := range map[string]string{
		"add":    c.Speech.Intents.Add,
		"remove": c.Speech.Intents.Remove,
		"check":  c.Speech.Intents.Check,
		"read":   c.Speech.Intents.Read,
	} {
		if name == "" {
			return fmt.Errorf("speech.intents.%s is required", action)
		}
	}
	return nil
}
