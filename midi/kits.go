package midi

import "pentone/pattern"

// DrumKit maps each drum sound to a MIDI note
type DrumKit struct {
	Name  string
	Notes [pattern.NumSounds]uint8
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name: "General MIDI",
		Notes: [pattern.NumSounds]uint8{
			pattern.Kick:      36,
			pattern.Snare:     38,
			pattern.ClosedHat: 42,
			pattern.OpenHat:   46,
			pattern.Clap:      39,
			pattern.Rim:       37,
			pattern.LowTom:    41,
			pattern.HighTom:   45,
			pattern.Cowbell:   56,
			pattern.Shaker:    70, // maracas
			pattern.Ride:      51,
			pattern.Crash:     49,
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: [pattern.NumSounds]uint8{
			pattern.Kick:      36,
			pattern.Snare:     40, // RD-8 uses 40, not 38
			pattern.ClosedHat: 42,
			pattern.OpenHat:   46,
			pattern.Clap:      39,
			pattern.Rim:       37,
			pattern.LowTom:    45,
			pattern.HighTom:   50,
			pattern.Cowbell:   56,
			pattern.Shaker:    70,
			pattern.Ride:      51,
			pattern.Crash:     49,
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: [pattern.NumSounds]uint8{
			pattern.Kick:      36,
			pattern.Snare:     38,
			pattern.ClosedHat: 42,
			pattern.OpenHat:   46,
			pattern.Clap:      39,
			pattern.Rim:       37,
			pattern.LowTom:    41,
			pattern.HighTom:   45,
			pattern.Cowbell:   56,
			pattern.Shaker:    70,
			pattern.Ride:      51,
			pattern.Crash:     49,
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: [pattern.NumSounds]uint8{
			pattern.Kick:      36, // perc synth 1
			pattern.Snare:     38, // perc synth 2
			pattern.ClosedHat: 42,
			pattern.OpenHat:   46,
			pattern.Clap:      39,
			pattern.Rim:       37,
			pattern.LowTom:    40, // perc synth 3
			pattern.HighTom:   40,
			pattern.Cowbell:   41, // perc synth 4
			pattern.Shaker:    42,
			pattern.Ride:      46,
			pattern.Crash:     49,
		},
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s", "er1"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits["gm"]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
