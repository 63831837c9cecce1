package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/doomcycle/internal/codec"
	"github.com/vovakirdan/doomcycle/internal/session"
	"github.com/vovakirdan/doomcycle/internal/storage"
)

var flagBaseURL string

var shareCmd = &cobra.Command{
	Use:   "share [url]",
	Short: "Build or inspect share links",
	Long: `Without arguments, prints a debug link that restores the profile's
unfinished run. With a URL, decodes its save or result token and prints
what it contains.

Examples:
  doomcycle share
  doomcycle share 'https://doomcycle.dev/play?result=...'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShare,
}

func init() {
	shareCmd.Flags().StringVar(&flagBaseURL, "base-url", session.DefaultBaseURL, "Base URL for generated links")
}

func runShare(_ *cobra.Command, args []string) error {
	if len(args) == 1 {
		return inspectShareURL(args[0])
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.LoadGame(settings.Profile)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("profile %q has no unfinished run to share", settings.Profile)
	}
	if err != nil {
		return err
	}
	snap, _, err := codec.DecodeSave(entry.Record)
	if err != nil {
		return err
	}
	token, err := codec.EncodeSaveToken(snap)
	if err != nil {
		return err
	}
	link, err := codec.ShareURL(flagBaseURL, codec.ParamSave, token)
	if err != nil {
		return err
	}
	fmt.Println(link)
	return nil
}

func inspectShareURL(raw string) error {
	link, err := codec.ParseShareURL(raw)
	if err != nil {
		return err
	}
	if link.Empty() {
		return fmt.Errorf("no %s or %s parameter in %q", codec.ParamSave, codec.ParamResult, raw)
	}
	if clean, err := codec.StripShareParams(raw); err == nil {
		fmt.Printf("Page:    %s\n", clean)
	}

	if link.ResultToken != "" {
		r, ok := codec.DecodeResultToken(link.ResultToken)
		if !ok {
			return codec.ErrInvalidToken
		}
		fmt.Println("Result:")
		fmt.Printf("  Outcome:    %s\n", r.Outcome)
		fmt.Printf("  Device:     %s\n", r.DeviceID)
		fmt.Printf("  Month:      %d\n", r.Month)
		fmt.Printf("  Budget:     %s\n", formatMoney(r.Budget))
		fmt.Printf("  Doom:       %.1f\n", r.DoomLevel)
		fmt.Printf("  Compliance: %.1f\n", r.ComplianceLevel)
		fmt.Printf("  Language:   %s\n", r.Language)
	}
	if link.SaveToken != "" {
		snap, ok := codec.DecodeSaveToken(link.SaveToken)
		if !ok {
			return codec.ErrInvalidToken
		}
		fmt.Println("Saved run:")
		fmt.Printf("  Phase:      %s\n", snap.Phase)
		fmt.Printf("  Seed:       %d\n", snap.Seed)
		fmt.Printf("  Device:     %s\n", snap.DeviceID())
		fmt.Printf("  Month:      %d\n", snap.TimelineMonth)
		fmt.Printf("  Budget:     %s\n", formatMoney(snap.Budget))
		fmt.Printf("  Doom:       %.1f\n", snap.DoomLevel)
		fmt.Printf("  Compliance: %.1f\n", snap.ComplianceLevel)
		if len(snap.ActiveTags) > 0 {
			fmt.Printf("  Tags:       %s\n", strings.Join(snap.ActiveTags, ", "))
		}
		fmt.Printf("  Crises:     %d\n", len(snap.History))
	}
	return nil
}
