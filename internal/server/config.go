package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	ActionTimeout string `hcl:"action_timeout,optional"`
	PhaseDelay    string `hcl:"phase_delay,optional"`
	ShowdownDelay string `hcl:"showdown_delay,optional"`
}

// TableConfig defines a room created when the server starts
type TableConfig struct {
	Name      string   `hcl:"name,label"`
	Passcode  string   `hcl:"passcode,optional"`
	MaxSeats  int      `hcl:"max_seats,optional"`
	Blind     int64    `hcl:"blind,optional"`
	BuyIn     int64    `hcl:"buy_in,optional"`
	AutoStart bool     `hcl:"auto_start,optional"`
	Bots      []string `hcl:"bots,optional"` // one strategy name per bot
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Tables: []TableConfig{{Name: "main"}},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *ServerConfig) applyDefaults() {
	s := &c.Server
	if s.Address == "" {
		s.Address = "localhost"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	defaults := game.DefaultEngineConfig()
	if s.ActionTimeout == "" {
		s.ActionTimeout = defaults.ActionTimeout.String()
	}
	if s.PhaseDelay == "" {
		s.PhaseDelay = defaults.PhaseDelay.String()
	}
	if s.ShowdownDelay == "" {
		s.ShowdownDelay = defaults.ShowdownDelay.String()
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxSeats == 0 {
			t.MaxSeats = 4
		}
		if t.Blind == 0 {
			t.Blind = 1
		}
		if t.BuyIn == 0 {
			t.BuyIn = t.Blind * game.BuyInBlinds
		}
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultServerConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source and applies defaults
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if _, err := c.Engine(); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: defined twice", table.Name)
		}
		seen[table.Name] = true

		if table.Blind <= 0 {
			return fmt.Errorf("table %s: blind must be positive", table.Name)
		}
		if table.MaxSeats < 2 || table.MaxSeats > 10 {
			return fmt.Errorf("table %s: max seats must be between 2 and 10", table.Name)
		}
		if table.BuyIn < 2*table.Blind {
			return fmt.Errorf("table %s: buy-in must cover the big blind", table.Name)
		}
		if len(table.Bots) > table.MaxSeats {
			return fmt.Errorf("table %s: %d bots do not fit in %d seats", table.Name, len(table.Bots), table.MaxSeats)
		}
		for _, strategy := range table.Bots {
			if !validStrategy(strategy) {
				return fmt.Errorf("table %s: invalid bot strategy %s", table.Name, strategy)
			}
		}
	}

	return nil
}

func validStrategy(name string) bool {
	for _, s := range bot.Strategies() {
		if s == name {
			return true
		}
	}
	return false
}

// Engine returns the table pacing described by the server settings
func (c *ServerConfig) Engine() (game.EngineConfig, error) {
	var cfg game.EngineConfig
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"action_timeout", c.Server.ActionTimeout, &cfg.ActionTimeout},
		{"phase_delay", c.Server.PhaseDelay, &cfg.PhaseDelay},
		{"showdown_delay", c.Server.ShowdownDelay, &cfg.ShowdownDelay},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		if d < 0 {
			return cfg, fmt.Errorf("invalid %s %q: must not be negative", f.name, f.value)
		}
		*f.dst = d
	}
	if cfg.ActionTimeout == 0 {
		return cfg, fmt.Errorf("invalid action_timeout: must be positive")
	}
	return cfg, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTableByName returns a table configuration by name
func (c *ServerConfig) GetTableByName(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// Room returns the room options for a configured table
func (t TableConfig) Room() RoomOptions {
	return RoomOptions{
		Name:     t.Name,
		Passcode: t.Passcode,
		MaxSeats: t.MaxSeats,
		Blind:    game.Chips(t.Blind),
		BuyIn:    game.Chips(t.BuyIn),

		Persistent: true,
	}
}
