package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pentone/audio"
	"pentone/clock"
	"pentone/config"
	"pentone/debug"
	"pentone/midi"
	"pentone/sequencer"
	"pentone/theme"
	"pentone/tui"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default ~/.config/pentone/config.yaml)")
	renderer := flag.String("renderer", "", "override renderer: audio, midi, both or none")
	debugFlag := flag.Bool("debug", false, "log to ~/.config/pentone/debug.log")
	writeConfig := flag.Bool("write-config", false, "save the effective config and exit")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *renderer != "" {
		cfg.Renderer = config.RendererKind(*renderer)
		cfg.Validate()
	}
	if *writeConfig {
		if err := saveConfig(cfg, *cfgPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Debug || *debugFlag {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// Load theme
	palette, err := theme.LoadOrDefault(cfg.Palette)
	if err != nil {
		debug.Log("tui", "palette %s: %v, using default", cfg.Palette, err)
	}
	th := theme.New(palette)

	// Clock and slot manager
	clk := clock.New(clock.Monotonic(), cfg.Tempo)
	manager := sequencer.NewManager(clk, cfg.SequencerTiming())
	for _, inst := range cfg.Instruments() {
		manager.SetInstrument(inst)
	}
	for i := 0; i < cfg.Pens.Count; i++ {
		manager.SetMode(sequencer.SlotID(i), cfg.PenMode(i))
	}

	out, label, closers := openRenderer(cfg, clk.Now)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	engine := sequencer.NewEngine(manager, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.StartRuntime(ctx)
	defer engine.Close()

	// Keyboard hot-plug, if one is configured
	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.Keyboard != "" {
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.Keyboard, sequencer.SlotID(cfg.MIDI.Slot), manager)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(engine, deviceMgr, th, cfg.Pens.Count)
	m.Output = label
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func saveConfig(cfg *config.Config, path string) error {
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

// openRenderer builds the configured renderer. Anything that fails to open
// leaves the program running without it, silently if nothing is left.
func openRenderer(cfg *config.Config, now clock.Source) (sequencer.Renderer, string, []io.Closer) {
	var (
		outs    sequencer.Multi
		labels  []string
		closers []io.Closer
	)

	if cfg.Renderer == config.RendererAudio || cfg.Renderer == config.RendererBoth {
		r, err := audio.New(now)
		if err != nil {
			debug.Log("audio", "%v", err)
		} else {
			outs = append(outs, r)
			labels = append(labels, "audio")
		}
		closers = append(closers, r)
	}

	if cfg.Renderer == config.RendererMIDI || cfg.Renderer == config.RendererBoth {
		out, err := midi.Open(cfg.MIDI.Out, now, midi.OutputOptions{
			Kit:     cfg.MIDI.Kit,
			Channel: uint8(cfg.MIDI.Channel),
		})
		if err != nil {
			debug.Log("midi", "%v", err)
		} else {
			outs = append(outs, out)
			labels = append(labels, "midi "+cfg.MIDI.Kit)
			closers = append(closers, out)
		}
	}

	switch len(outs) {
	case 0:
		return sequencer.Nop{}, "silent", closers
	case 1:
		return outs[0], labels[0], closers
	}
	return outs, strings.Join(labels, " + "), closers
}
