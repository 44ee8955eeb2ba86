package pattern

import "fmt"

// Sound identifies a percussive hit
type Sound uint8

const (
	Kick Sound = iota
	Snare
	ClosedHat
	OpenHat
	Clap
	Rim
	LowTom
	HighTom
	Cowbell
	Shaker
	Ride
	Crash
	NumSounds
)

var soundNames = [NumSounds]string{
	"kick", "snare", "closed-hat", "open-hat", "clap", "rim",
	"low-tom", "high-tom", "cowbell", "shaker", "ride", "crash",
}

func (s Sound) String() string {
	if s >= NumSounds {
		return "unknown"
	}
	return soundNames[s]
}

// DrumSteps is the cycle length of every kit
const DrumSteps = 16

// lane is one sound's hits over 16 steps, "x" = hit, "X" = accented hit
type lane struct {
	sound Sound
	hits  string
}

// kit is a base groove plus the lanes added by its second variation
type kit struct {
	name      string
	base      []lane
	variation []lane
}

// Kits pairs up the 12 pitch classes: kit = note/2, variation = note%2
var kits = [6]kit{
	{
		name: "four-floor",
		base: []lane{
			{Kick, "X...x...X...x..."},
			{Snare, "....x.......x..."},
			{ClosedHat, "..x...x...x...x."},
		},
		variation: []lane{
			{OpenHat, "......x.......x."},
		},
	},
	{
		name: "break",
		base: []lane{
			{Kick, "X.....x...x....."},
			{Snare, "....X.......x..x"},
			{ClosedHat, "x.x.x.x.x.x.x.x."},
		},
		variation: []lane{
			{Rim, "..x.......x....."},
		},
	},
	{
		name: "latin",
		base: []lane{
			{Kick, "X..x..x.x..x..x."},
			{Cowbell, "x...x.x...x.x..."},
		},
		variation: []lane{
			{Shaker, "xxxxxxxxxxxxxxxx"},
		},
	},
	{
		name: "toms",
		base: []lane{
			{Kick, "X.......x......."},
			{LowTom, "x.....x.....x..."},
			{HighTom, "...x.....x....x."},
		},
		variation: []lane{
			{Clap, "....x.......x..."},
		},
	},
	{
		name: "half-time",
		base: []lane{
			{Kick, "X.........x....."},
			{Snare, "........X......."},
			{Ride, "x.x.x.x.x.x.x.x."},
		},
		variation: []lane{
			{Crash, "X..............."},
		},
	},
	{
		name: "clap-house",
		base: []lane{
			{Kick, "X...x...X...x..."},
			{Clap, "....x.......x..."},
			{OpenHat, "..x...x...x...x."},
		},
		variation: []lane{
			{Shaker, "x.xxx.xxx.xxx.xx"},
		},
	},
}

// NumKits is the number of percussive kits
const NumKits = len(kits)

// KitFor returns the kit and variation a note selects. Invalid notes fall
// back to the first kit.
func KitFor(n Note) (kitIdx, variation int) {
	if !n.Valid() {
		return 0, 0
	}
	return int(n) / 2, int(n) % 2
}

// KitName returns the display name of a kit
func KitName(kitIdx int) string {
	if kitIdx < 0 || kitIdx >= NumKits {
		kitIdx = 0
	}
	return kits[kitIdx].name
}

// Drum returns the percussive pattern for a note
func Drum(n Note) Pattern {
	k, v := KitFor(n)
	lanes := append([]lane(nil), kits[k].base...)
	if v == 1 {
		lanes = append(lanes, kits[k].variation...)
	}

	var steps []Step
	for _, l := range lanes {
		for i, c := range l.hits {
			if i >= DrumSteps {
				break
			}
			switch c {
			case 'x':
				steps = append(steps, Step{Offset: i, Payload: Hit(l.sound)})
			case 'X':
				steps = append(steps, Step{Offset: i, Payload: Hit(l.sound), Accent: true})
			}
		}
	}
	name := fmt.Sprintf("%s/%c", kits[k].name, 'a'+v)
	return newPattern(name, DrumSteps, steps)
}
