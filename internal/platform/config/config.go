// Package config loads the arena configuration from YAML plus
// environment variables and provides workable defaults so the server
// can start with no config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/renlu07/wolf-arena/internal/domain/player"
)

// ProviderConfig describes one OpenAI-compatible backend.
type ProviderConfig struct {
	Name         string `yaml:"name"`
	Endpoint     string `yaml:"endpoint"`
	KeyEnv       string `yaml:"key_env"`
	DefaultModel string `yaml:"default_model"`
}

// Persona is the fixed identity of one seat, independent of the role
// dealt to it.
type Persona struct {
	Name        string `yaml:"name"`
	Gender      string `yaml:"gender"`
	Personality string `yaml:"personality"`
	Voice       string `yaml:"voice"`
	Speed       float64 `yaml:"speed"`
}

// Tuning holds the knobs for pacing and match limits.
type Tuning struct {
	PhaseDelay      time.Duration `yaml:"phase_delay"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	MaxDays         int           `yaml:"max_days"`
	AutoLoop        bool          `yaml:"auto_loop"`
	Seed            int64         `yaml:"seed"`
}

// Config is the full server configuration.
type Config struct {
	Addr       string             `yaml:"addr"`
	DBPath     string             `yaml:"db_path"`
	Providers  []ProviderConfig   `yaml:"providers"`
	Fallback   string             `yaml:"fallback_provider"`
	PowerModel string             `yaml:"power_model"`
	BasicModel string             `yaml:"basic_model"`
	Personas   []Persona          `yaml:"personas"`
	Playstyles []player.Playstyle `yaml:"playstyles"`
	Tuning     Tuning             `yaml:"tuning"`
}

// Load reads the YAML file at path, layered over Default. A missing
// file is not an error. Environment variables are loaded from .env
// first so provider key lookups work either way.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Personas) != 12 {
		return fmt.Errorf("config: need 12 personas, got %d", len(c.Personas))
	}
	if len(c.Playstyles) == 0 {
		return fmt.Errorf("config: need at least one playstyle")
	}
	if c.Tuning.MaxDays <= 0 {
		return fmt.Errorf("config: max_days must be positive")
	}
	return nil
}

// Default returns the built-in configuration: a local Ollama-style
// provider, twelve personas and five playstyles.
func Default() *Config {
	return &Config{
		Addr:   ":8080",
		DBPath: "arena.db",
		Providers: []ProviderConfig{
			{Name: "openai", Endpoint: "https://api.openai.com/v1", KeyEnv: "OPENAI_API_KEY", DefaultModel: "gpt-4o-mini"},
			{Name: "deepseek", Endpoint: "https://api.deepseek.com/v1", KeyEnv: "DEEPSEEK_API_KEY", DefaultModel: "deepseek-chat"},
			{Name: "local", Endpoint: "http://localhost:11434/v1", KeyEnv: "LOCAL_API_KEY", DefaultModel: "qwen2.5:14b"},
		},
		Fallback:   "local",
		PowerModel: "gpt-4o-mini",
		BasicModel: "gpt-4o-mini",
		Personas:   DefaultPersonas(),
		Playstyles: DefaultPlaystyles(),
		Tuning: Tuning{
			PhaseDelay:      2 * time.Second,
			ProviderTimeout: 45 * time.Second,
			MaxDays:         15,
			AutoLoop:        false,
			Seed:            0,
		},
	}
}

// DefaultPersonas covers all twelve seats.
func DefaultPersonas() []Persona {
	return []Persona{
		{Name: "Victor", Gender: "male", Personality: "logical and methodical, builds arguments from voting records", Voice: "onyx", Speed: 1.0},
		{Name: "Lily", Gender: "female", Personality: "sweet and disarming, people instinctively trust her", Voice: "nova", Speed: 1.05},
		{Name: "Bruno", Gender: "male", Personality: "hot-tempered, accuses first and reconsiders later", Voice: "echo", Speed: 1.1},
		{Name: "Ingrid", Gender: "female", Personality: "aloof and economical with words, speaks only when certain", Voice: "shimmer", Speed: 0.95},
		{Name: "Marcus", Gender: "male", Personality: "sarcastic, pokes holes in every claim", Voice: "onyx", Speed: 1.0},
		{Name: "Rosa", Gender: "female", Personality: "gentle peacemaker, hates voting anyone out", Voice: "nova", Speed: 0.95},
		{Name: "Edwin", Gender: "male", Personality: "rigorous, tracks every claim in a mental ledger", Voice: "fable", Speed: 1.0},
		{Name: "Tina", Gender: "female", Personality: "timid, follows the crowd unless cornered", Voice: "alloy", Speed: 1.0},
		{Name: "Rex", Gender: "male", Personality: "impulsive gambler, votes on gut feeling", Voice: "echo", Speed: 1.15},
		{Name: "Selene", Gender: "female", Personality: "scheming, plants doubts without committing to them", Voice: "shimmer", Speed: 1.0},
		{Name: "Owen", Gender: "male", Personality: "ordinary and unremarkable, easy to overlook", Voice: "alloy", Speed: 1.0},
		{Name: "Nina", Gender: "female", Personality: "anxious overthinker, second-guesses her own reads", Voice: "nova", Speed: 1.05},
	}
}

// DefaultPlaystyles are the five temperaments agents are dealt.
func DefaultPlaystyles() []player.Playstyle {
	return []player.Playstyle{
		{Label: "aggressive", Description: "push hard, force commitments, lead votes", ThinkTemp: 0.9, SpeakTemp: 1.0},
		{Label: "conservative", Description: "hold information back, avoid early commitments", ThinkTemp: 0.5, SpeakTemp: 0.6},
		{Label: "analytical", Description: "reason from logs and vote history, cite evidence", ThinkTemp: 0.3, SpeakTemp: 0.5},
		{Label: "deceptive", Description: "misdirect, seed false trails, fake claims when useful", ThinkTemp: 0.8, SpeakTemp: 0.9},
		{Label: "balanced", Description: "adapt to the table, no fixed posture", ThinkTemp: 0.7, SpeakTemp: 0.7},
	}
}

// Provider returns the configured provider by name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
