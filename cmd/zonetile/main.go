package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/zonetile/zonetile/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "zone":
		os.Exit(runZone(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: zonetile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the zonetile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  monitors            List monitors and their active layouts")
	fmt.Fprintln(w, "  reload              Reload custom layout definitions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout list         List registered layouts")
	fmt.Fprintln(w, "  layout switch       Switch the active layout on a monitor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  zone list           Show zones and occupants for a monitor")
	fmt.Fprintln(w, "  zone assign         Assign a window to a zone")
	fmt.Fprintln(w, "  zone cycle          Move a window to the next/previous zone")
	fmt.Fprintln(w, "  zone release        Release a window from its zone")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zonetile <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("default_layout: %s\n", status.DefaultLayout)
	fmt.Printf("monitors:       %d\n", status.Monitors)
	fmt.Printf("assignments:    %d\n", status.Assignments)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile monitors")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List connected monitors with geometry and active layout.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "monitors takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, m := range data.Monitors {
		primary := ""
		if m.Primary {
			primary = " (primary)"
		}
		fmt.Printf("monitor %d: %s %dx%d+%d+%d layout=%s%s\n",
			m.ID, m.Name, m.Width, m.Height, m.X, m.Y, m.ActiveLayout, primary)
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonetile reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to re-read the custom layouts directory.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  zonetile layout list")
	fmt.Fprintln(w, "  zonetile layout switch [--monitor N] <layout>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zonetile layout <command> --help' for command-specific options.")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printLayoutUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout list")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "List registered layouts with zone counts.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "layout list takes no arguments")
			fs.Usage()
			return 2
		}

		data, err := client.ListLayouts()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, l := range data.Layouts {
			marker := " "
			if l.ID == data.DefaultLayout {
				marker = "*"
			}
			kind := "custom"
			if l.Builtin {
				kind = "builtin"
			}
			fmt.Printf("%s %-16s %-24s %d zones (%s)\n", marker, l.ID, l.Name, l.Zones, kind)
		}
		return 0

	case "switch":
		fs := flag.NewFlagSet("switch", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: zonetile layout switch [--monitor N] <layout>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Switch a monitor's active layout, remapping assigned windows.")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		monitor := fs.Int("monitor", -1, "Monitor ID (default: active monitor)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "layout switch takes exactly one layout ID")
			fs.Usage()
			return 2
		}

		data, err := client.SwitchLayout(*monitor, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("monitor %d now uses layout %s (%d windows remapped", data.MonitorID, data.Layout, data.Remapped)
		if len(data.Dropped) > 0 {
			fmt.Printf(", %d dropped", len(data.Dropped))
		}
		fmt.Println(")")
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

func parseWindowID(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window ID %q", s)
	}
	return uint32(id), nil
}
