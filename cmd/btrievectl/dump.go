package main

import (
	"encoding/hex"
	"fmt"

	"github.com/joshuapare/btrievekit/btrieve"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <store.db>",
	Short: "Step through every record in physical order and print its bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	storePath := args[0]

	h, err := btrieve.Open(storePath, btrieve.ModeNormal)
	if err != nil {
		return fmt.Errorf("opening %s: %w", storePath, err)
	}
	defer h.Close()

	record, stepErr := h.StepFirst()
	if stepErr != nil {
		if stepErr.Code == btrieve.InvalidPositioning {
			printInfo("(empty store)\n")
			return nil
		}
		return fmt.Errorf("stepping first: %w", stepErr)
	}

	for {
		pos, _ := h.GetPosition()
		printInfo("%d: %s\n", pos, hex.EncodeToString(record))

		record, stepErr = h.StepNext()
		if stepErr != nil {
			if stepErr.Code == btrieve.InvalidPositioning {
				break
			}
			return fmt.Errorf("stepping next: %w", stepErr)
		}
	}
	return nil
}
