package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/doomcycle/internal/core"
)

var devicesCmd = &cobra.Command{
	Use:   "devices [id]",
	Short: "List the device catalog",
	Long: `Shows every device in the catalog. With an id, shows the device in
detail together with the crises its default tags expose it to.

Examples:
  doomcycle devices
  doomcycle devices baby-monitor
  doomcycle devices --catalog ./my-catalog`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDevices,
}

func runDevices(_ *cobra.Command, args []string) error {
	if len(args) == 1 {
		return showDevice(args[0])
	}

	devices := cat.Devices()
	if len(devices) == 0 {
		fmt.Println("No devices available.")
		return nil
	}

	fmt.Println("Available devices:")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tCATEGORY\tBUDGET\tUPKEEP/MO\tEOL")
	for _, d := range devices {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Category, formatMoney(d.InitialBudget), formatMoney(d.MaintenanceCost), eolLabel(d))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Run 'doomcycle devices <id>' for details.")
	return nil
}

func showDevice(id string) error {
	d, ok := cat.DeviceByID(id)
	if !ok {
		return unknownDeviceError(id)
	}

	fmt.Printf("%s (%s)\n", d.Name, d.ID)
	if d.Description != "" {
		fmt.Println(d.Description)
	}
	fmt.Println()
	fmt.Printf("  Category:     %s\n", d.Category)
	fmt.Printf("  Budget:       %s\n", formatMoney(d.InitialBudget))
	fmt.Printf("  Upkeep:       %s per month\n", formatMoney(d.MaintenanceCost))
	fmt.Printf("  End of life:  %s\n", eolLabel(d))
	if len(d.DefaultTags) > 0 {
		fmt.Printf("  Tags:         %s\n", strings.Join(d.DefaultTags, ", "))
	}

	eligible := cat.EligibleEvents(d.DefaultTags, d.Category)
	fmt.Println()
	if len(eligible) == 0 {
		fmt.Println("No crises are eligible at the start of a run.")
		return nil
	}
	fmt.Println("Crises eligible at the start of a run:")
	for _, ev := range eligible {
		note := ""
		if ev.MinMonth > 0 {
			note = fmt.Sprintf(" (from month %d)", ev.MinMonth)
		}
		fmt.Printf("  - %s%s\n", ev.Title, note)
	}
	return nil
}

func eolLabel(d core.Device) string {
	if d.EndOfLifeMonth == 0 {
		return "none"
	}
	return fmt.Sprintf("month %d", d.EndOfLifeMonth)
}

func unknownDeviceError(id string) error {
	if suggestions := cat.Suggest(id); len(suggestions) > 0 {
		return fmt.Errorf("unknown device %q, did you mean %s?", id, strings.Join(suggestions, " or "))
	}
	return fmt.Errorf("unknown device %q (run 'doomcycle devices' to list them)", id)
}
