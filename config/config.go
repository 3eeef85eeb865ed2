package config

import (
	"fmt"
	"math/big"
	"os"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling from human
// readable strings.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Address wraps a 20-byte account address parsed from 0x-prefixed hex.
type Address struct {
	Bytes [20]byte
}

// UnmarshalYAML parses checksummed or lowercase hex addresses.
func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	if value == nil || value.Value == "" {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("address must be string")
	}
	if !ethcommon.IsHexAddress(value.Value) {
		return fmt.Errorf("invalid address %q", value.Value)
	}
	copy(a.Bytes[:], ethcommon.HexToAddress(value.Value).Bytes())
	return nil
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a.Bytes == [20]byte{} }

// Config captures runtime configuration for routerd.
type Config struct {
	ListenAddress string        `yaml:"listen"`
	DatabasePath  string        `yaml:"database"`
	ChainID       int64         `yaml:"chain_id"`
	Custody       Address       `yaml:"custody"`
	Owner         Address       `yaml:"owner"`
	RequireAuth   bool          `yaml:"require_quote_auth"`
	ShutdownGrace Duration      `yaml:"shutdown_grace"`
	Admin         AdminConfig   `yaml:"admin"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
	Tokens        []TokenConfig `yaml:"tokens"`
	Venues        []VenueConfig `yaml:"venues"`
	Targets       []Address     `yaml:"targets"`
	Signers       []Address     `yaml:"signers"`
}

// AdminConfig secures the privileged endpoints.
type AdminConfig struct {
	BearerToken string `yaml:"bearer_token"`
}

// RateLimit throttles the public settlement endpoints per client.
type RateLimit struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// TokenConfig declares an asset ledger the daemon hosts.
type TokenConfig struct {
	Address     Address   `yaml:"address"`
	Name        string    `yaml:"name"`
	Symbol      string    `yaml:"symbol"`
	Decimals    uint8     `yaml:"decimals"`
	PermitStyle string    `yaml:"permit_style"`
	Balances    []Balance `yaml:"balances"`
}

// Balance seeds an account with an initial amount.
type Balance struct {
	Address Address `yaml:"address"`
	Amount  string  `yaml:"amount"`
}

// VenueConfig declares a reference venue with its quoted rates and seeded
// inventory.
type VenueConfig struct {
	Address   Address      `yaml:"address"`
	Rates     []RateConfig `yaml:"rates"`
	Inventory []Balance    `yaml:"inventory"`
}

// RateConfig quotes buy units per sell unit as a rational number.
type RateConfig struct {
	Sell        Address `yaml:"sell"`
	Buy         Address `yaml:"buy"`
	Numerator   int64   `yaml:"numerator"`
	Denominator int64   `yaml:"denominator"`
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the daemon cannot start without.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		c.ListenAddress = ":8080"
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("config: database path required")
	}
	if c.ChainID <= 0 {
		c.ChainID = 1
	}
	if c.Custody.IsZero() {
		return fmt.Errorf("config: custody address required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("config: owner address required")
	}
	if c.ShutdownGrace.Duration <= 0 {
		c.ShutdownGrace.Duration = 10 * time.Second
	}
	for i, tok := range c.Tokens {
		if tok.Address.IsZero() {
			return fmt.Errorf("config: token %d: address required", i)
		}
		switch tok.PermitStyle {
		case "", "none", "standard", "allowed":
		default:
			return fmt.Errorf("config: token %d: unknown permit style %q", i, tok.PermitStyle)
		}
		for j, bal := range tok.Balances {
			if _, err := ParseAmount(bal.Amount); err != nil {
				return fmt.Errorf("config: token %d balance %d: %w", i, j, err)
			}
		}
	}
	for i, v := range c.Venues {
		if v.Address.IsZero() {
			return fmt.Errorf("config: venue %d: address required", i)
		}
		for j, rate := range v.Rates {
			if rate.Numerator <= 0 || rate.Denominator <= 0 {
				return fmt.Errorf("config: venue %d rate %d: numerator and denominator must be positive", i, j)
			}
		}
		for j, bal := range v.Inventory {
			if _, err := ParseAmount(bal.Amount); err != nil {
				return fmt.Errorf("config: venue %d inventory %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// ParseAmount converts a decimal string into a non-negative big integer.
func ParseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}
