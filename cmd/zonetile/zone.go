package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/zonetile/zonetile/internal/ipc"
)

func printZoneUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  zonetile zone list [--monitor N]")
	fmt.Fprintln(w, "  zonetile zone assign [--window ID] [--swap|--displace] <zone-index>")
	fmt.Fprintln(w, "  zonetile zone cycle [--window ID] [--prev] [--swap|--displace]")
	fmt.Fprintln(w, "  zonetile zone release [--window ID]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zonetile zone <command> --help' for command-specific options.")
}

func runZone(args []string) int {
	if len(args) == 0 {
		printZoneUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printZoneUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		return runZoneList(client, args[1:])
	case "assign":
		return runZoneAssign(client, args[1:])
	case "cycle":
		return runZoneCycle(client, args[1:])
	case "release":
		return runZoneRelease(client, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown zone command: %s\n\n", args[0])
		printZoneUsage(os.Stderr)
		return 2
	}
}

func runZoneList(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile zone list [--monitor N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the resolved zones of a monitor's active layout and their occupants.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	monitor := fs.Int("monitor", -1, "Monitor ID (default: active monitor)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "zone list takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := client.GetZones(*monitor)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("monitor %d, layout %s:\n", data.MonitorID, data.Layout)
	for _, z := range data.Zones {
		occupant := "(empty)"
		if z.WindowID != 0 {
			occupant = fmt.Sprintf("0x%x %s", z.WindowID, truncateTitle(z.WindowTitle))
		}
		fmt.Printf("  zone %d: %dx%d+%d+%d  %s\n", z.Index, z.Width, z.Height, z.X, z.Y, occupant)
	}
	return 0
}

// truncateTitle shortens window titles so zone list rows fit the terminal.
func truncateTitle(title string) string {
	width := 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
			width = w
		}
	}
	max := width - 40
	if max < 10 {
		max = 10
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max-3]) + "..."
}

func directiveFromFlags(swap, displace bool) (string, error) {
	if swap && displace {
		return "", fmt.Errorf("--swap and --displace are mutually exclusive")
	}
	if swap {
		return "swap", nil
	}
	if displace {
		return "displace", nil
	}
	return "", nil
}

func runZoneAssign(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile zone assign [--window ID] [--swap|--displace] <zone-index>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Assign a window to a zone of its monitor's active layout.")
		fmt.Fprintln(os.Stderr, "Without a directive the command fails when the zone is occupied.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	window := fs.String("window", "", "Window ID (default: focused window)")
	swap := fs.Bool("swap", false, "Swap with the current occupant if the zone is taken")
	displace := fs.Bool("displace", false, "Release the current occupant if the zone is taken")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "zone assign takes exactly one zone index")
		fs.Usage()
		return 2
	}

	var zoneIndex int
	if _, err := fmt.Sscanf(fs.Arg(0), "%d", &zoneIndex); err != nil || zoneIndex < 0 {
		fmt.Fprintf(os.Stderr, "invalid zone index %q\n", fs.Arg(0))
		return 2
	}
	windowID, err := parseWindowID(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	directive, err := directiveFromFlags(*swap, *displace)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	data, err := client.AssignZone(windowID, zoneIndex, directive)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printAssignResult(data)
	return 0
}

func runZoneCycle(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("cycle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile zone cycle [--window ID] [--prev] [--swap|--displace]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move a window to the next zone, wrapping at the end of the layout.")
		fmt.Fprintln(os.Stderr, "An unassigned window enters the first zone.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	window := fs.String("window", "", "Window ID (default: focused window)")
	prev := fs.Bool("prev", false, "Cycle backwards")
	swap := fs.Bool("swap", false, "Swap with the current occupant if the zone is taken")
	displace := fs.Bool("displace", false, "Release the current occupant if the zone is taken")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "zone cycle takes no arguments")
		fs.Usage()
		return 2
	}

	windowID, err := parseWindowID(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	directive, err := directiveFromFlags(*swap, *displace)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	direction := "next"
	if *prev {
		direction = "prev"
	}

	data, err := client.CycleZone(windowID, direction, directive)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printAssignResult(data)
	return 0
}

func runZoneRelease(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("release", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile zone release [--window ID]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Release a window from its zone so it floats again.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	window := fs.String("window", "", "Window ID (default: focused window)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "zone release takes no arguments")
		fs.Usage()
		return 2
	}

	windowID, err := parseWindowID(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := client.ReleaseWindow(windowID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printAssignResult(data *ipc.AssignData) {
	fmt.Printf("window 0x%x -> monitor %d, layout %s, zone %d (%dx%d+%d+%d)\n",
		data.WindowID, data.MonitorID, data.Layout, data.ZoneIndex,
		data.Width, data.Height, data.X, data.Y)
	for _, id := range data.Displaced {
		fmt.Printf("displaced window 0x%x\n", id)
	}
	if data.Swapped != 0 {
		fmt.Printf("swapped with window 0x%x\n", data.Swapped)
	}
}
