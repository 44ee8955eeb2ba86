package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"pentone/clock"
	"pentone/midi"
	"pentone/pattern"
	"pentone/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	arg := func(i int) string {
		if len(os.Args) > i {
			return os.Args[i]
		}
		return ""
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "probe":
		probe(arg(2), arg(3))
	case "keys":
		watchKeys(arg(2))
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI port tool")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List all MIDI ports")
	fmt.Println("  probe [port] [kit]  - Play a drum bar and a scale on an output")
	fmt.Println("  keys <port>         - Print the regions a keyboard produces")
	fmt.Println("  poll                - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := midi.Ports()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

// probe plays one bar of the C drum pattern followed by a C major scale
func probe(port, kit string) {
	c := clock.New(clock.Monotonic(), 120)
	out, err := midi.Open(port, c.Now, midi.OutputOptions{Kit: kit})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer out.Close()

	g := c.Grid()
	start := c.Now() + 100*time.Millisecond
	drums := pattern.Drum(pattern.C)
	for pos := 0; pos < drums.Length; pos++ {
		for _, st := range drums.At(pos) {
			at := start + time.Duration(pos)*g.Step()
			out.Play(sequencer.Sound{Kind: sequencer.KindDrum, Payload: st.Payload, Accent: st.Accent}, at)
		}
	}

	start += g.Measure()
	scale := []pattern.Note{pattern.C, pattern.D, pattern.E, pattern.F, pattern.G, pattern.A, pattern.B}
	for i, n := range scale {
		at := start + time.Duration(i)*g.Beat()/2
		out.Play(sequencer.Sound{Kind: sequencer.KindArpeggio, Payload: pattern.Freq(n.Hz())}, at)
	}

	fmt.Printf("Playing on %s...\n", portLabel(port))
	time.Sleep(start + 2*g.Beat() - c.Now())
	if n := out.Errors(); n > 0 {
		fmt.Printf("%d messages failed\n", n)
	}
	fmt.Println("Done!")
}

func portLabel(port string) string {
	if port == "" {
		return "first output"
	}
	return port
}

type printSink struct{}

func (printSink) OnEnter(id sequencer.SlotID, r sequencer.Region) {
	fmt.Printf("enter  %-2s %7.2fHz\n", r.Note, r.Hz)
}

func (printSink) OnChange(id sequencer.SlotID, r sequencer.Region) {
	fmt.Printf("change %-2s %7.2fHz\n", r.Note, r.Hz)
}

func (printSink) OnLeave(id sequencer.SlotID) {
	fmt.Println("leave")
}

func watchKeys(port string) {
	if port == "" {
		usage()
		return
	}
	in, err := midi.FindIn(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	kb, err := midi.ListenKeyboard(in, 0, printSink{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer kb.Close()

	fmt.Printf("Listening on %s. Press Enter to stop.\n", in.String())
	fmt.Scanln()
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		var inNames, outNames []string
		for _, p := range gomidi.GetInPorts() {
			inNames = append(inNames, p.String())
		}
		for _, p := range gomidi.GetOutPorts() {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
