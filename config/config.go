package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pentone/debug"
	"pentone/sequencer"
)

// RendererKind selects where sounds go
type RendererKind string

const (
	RendererAudio RendererKind = "audio"
	RendererMIDI  RendererKind = "midi"
	RendererBoth  RendererKind = "both" // audio and midi together
	RendererNone  RendererKind = "none"
)

// Pen limits; the TUI selects pens with the digit keys
const (
	MinPens = 1
	MaxPens = 9
)

// MIDIConfig describes the MIDI output and the optional keyboard input
type MIDIConfig struct {
	Out      string `yaml:"out,omitempty"` // empty picks the first port
	Channel  int    `yaml:"channel"`       // base channel, 0-based
	Kit      string `yaml:"kit"`
	Keyboard string `yaml:"keyboard,omitempty"` // input port substring
	Slot     int    `yaml:"slot"`               // slot the keyboard plays, never one a pen uses
}

// PenConfig sets how many pens the TUI offers and their starting modes
type PenConfig struct {
	Count int      `yaml:"count"`
	Modes []string `yaml:"modes,flow,omitempty"`
}

type ArpeggioConfig struct {
	Octaves int  `yaml:"octaves"`
	Chord   bool `yaml:"chord"`
}

// TimingConfig mirrors sequencer.Timing
type TimingConfig struct {
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
	AlignEpsilon  time.Duration `yaml:"alignEpsilon"`
	StartLead     time.Duration `yaml:"startLead"`
	Lookahead     time.Duration `yaml:"lookahead"`
	DispatchAhead time.Duration `yaml:"dispatchAhead"`
	TickInterval  time.Duration `yaml:"tickInterval"`
	MaxPending    int           `yaml:"maxPending"`
	MaxLag        time.Duration `yaml:"maxLag"`
}

// Config is the main configuration structure
type Config struct {
	Tempo    float64        `yaml:"tempo"`
	Renderer RendererKind   `yaml:"renderer"`
	Palette  string         `yaml:"palette,omitempty"` // GIMP palette for the UI
	MIDI     MIDIConfig     `yaml:"midi"`
	Pens     PenConfig      `yaml:"pens"`
	Arpeggio ArpeggioConfig `yaml:"arpeggio"`
	Timing   TimingConfig   `yaml:"timing"`
	Debug    bool           `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	t := sequencer.DefaultTiming()
	arp := sequencer.DefaultInstrument(sequencer.KindArpeggio)
	return &Config{
		Tempo:    120,
		Renderer: RendererAudio,
		MIDI: MIDIConfig{
			Kit:  "gm",
			Slot: MaxPens - 1,
		},
		Pens: PenConfig{
			Count: 4,
			Modes: []string{"drum", "bass", "arpeggio", "vibrato"},
		},
		Arpeggio: ArpeggioConfig{
			Octaves: arp.Octaves,
			Chord:   arp.Chord,
		},
		Timing: TimingConfig{
			IdleTimeout:   t.IdleTimeout,
			AlignEpsilon:  t.AlignEpsilon,
			StartLead:     t.StartLead,
			Lookahead:     t.Lookahead,
			DispatchAhead: t.DispatchAhead,
			TickInterval:  t.TickInterval,
			MaxPending:    t.MaxPending,
			MaxLag:        t.MaxLag,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pentone"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path on top of the defaults. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate clamps out-of-range values back into range
func (c *Config) Validate() {
	def := DefaultConfig()

	if c.Tempo < sequencer.MinTempo || c.Tempo > sequencer.MaxTempo {
		debug.Log("config", "tempo %v out of range, using %v", c.Tempo, def.Tempo)
		c.Tempo = def.Tempo
	}
	switch c.Renderer {
	case RendererAudio, RendererMIDI, RendererBoth, RendererNone:
	default:
		debug.Log("config", "unknown renderer %q, using %s", c.Renderer, def.Renderer)
		c.Renderer = def.Renderer
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel+int(sequencer.NumKinds) > 16 {
		c.MIDI.Channel = 0
	}
	if c.MIDI.Slot < 0 {
		c.MIDI.Slot = 0
	}
	if c.MIDI.Kit == "" {
		c.MIDI.Kit = def.MIDI.Kit
	}
	if c.Pens.Count < MinPens {
		c.Pens.Count = MinPens
	}
	if c.Pens.Count > MaxPens {
		c.Pens.Count = MaxPens
	}
	// pens use slots 0..Count-1; the keyboard gets the first slot after them
	if c.MIDI.Slot < c.Pens.Count {
		debug.Log("config", "keyboard slot %d is taken by a pen, using %d", c.MIDI.Slot, c.Pens.Count)
		c.MIDI.Slot = c.Pens.Count
	}
	if c.Arpeggio.Octaves < 1 {
		c.Arpeggio.Octaves = 1
	}

	// sequencer.Timing normalizes the rest
	t := c.Timing
	if t.IdleTimeout <= 0 {
		t.IdleTimeout = def.Timing.IdleTimeout
	}
	if t.Lookahead <= 0 {
		t.Lookahead = def.Timing.Lookahead
	}
	if t.TickInterval <= 0 {
		t.TickInterval = def.Timing.TickInterval
	}
	if t.TickInterval > t.Lookahead {
		debug.Log("config", "tick %v longer than lookahead %v", t.TickInterval, t.Lookahead)
		t.TickInterval = t.Lookahead
	}
	if t.MaxPending < 1 {
		t.MaxPending = def.Timing.MaxPending
	}
	c.Timing = t
}

// SequencerTiming converts the timing section
func (c *Config) SequencerTiming() sequencer.Timing {
	t := c.Timing
	return sequencer.Timing{
		IdleTimeout:   t.IdleTimeout,
		AlignEpsilon:  t.AlignEpsilon,
		StartLead:     t.StartLead,
		Lookahead:     t.Lookahead,
		DispatchAhead: t.DispatchAhead,
		TickInterval:  t.TickInterval,
		MaxPending:    t.MaxPending,
		MaxLag:        t.MaxLag,
	}
}

// PenMode returns the starting mode of pen i. Pens without a valid entry
// cycle through the instruments.
func (c *Config) PenMode(i int) sequencer.Kind {
	if i >= 0 && i < len(c.Pens.Modes) {
		if k, ok := sequencer.ParseKind(c.Pens.Modes[i]); ok {
			return k
		}
		debug.Log("config", "pen %d: unknown mode %q", i+1, c.Pens.Modes[i])
	}
	if i < 0 {
		i = 0
	}
	return sequencer.Kind(i % int(sequencer.NumKinds))
}

// Instruments returns the instrument parameters for every kind
func (c *Config) Instruments() []sequencer.Instrument {
	out := make([]sequencer.Instrument, 0, sequencer.NumKinds)
	for k := sequencer.Kind(0); k < sequencer.NumKinds; k++ {
		inst := sequencer.DefaultInstrument(k)
		if k == sequencer.KindArpeggio {
			inst.Octaves = c.Arpeggio.Octaves
			inst.Chord = c.Arpeggio.Chord
		}
		out = append(out, inst)
	}
	return out
}
