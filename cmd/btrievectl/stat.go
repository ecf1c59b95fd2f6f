package main

import (
	"fmt"

	"github.com/joshuapare/btrievekit/btrieve"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <store.db>",
	Short: "Report a store's FILESPEC and per-segment KEYSPEC list",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)
}

type statReport struct {
	FileSpec btrieve.FileSpec  `json:"fileSpec"`
	Keys     []btrieve.KeySpec `json:"keys"`
}

func runStat(cmd *cobra.Command, args []string) error {
	storePath := args[0]

	h, err := btrieve.Open(storePath, btrieve.ModeNormal)
	if err != nil {
		return fmt.Errorf("opening %s: %w", storePath, err)
	}
	defer h.Close()

	spec, keys, statErr := h.Stat()
	if statErr != nil {
		return fmt.Errorf("stat %s: %w", storePath, statErr)
	}

	if jsonOut {
		return printJSON(statReport{FileSpec: spec, Keys: keys})
	}

	printInfo("Store: %s\n", storePath)
	printInfo("  Record length:  %d\n", spec.LogicalFixedRecordLength)
	printInfo("  Page size:      %d\n", spec.PageSize)
	printInfo("  Record count:   %d\n", spec.RecordCount)
	printInfo("  Key count:      %d\n", spec.NumberOfKeys)
	for i, k := range keys {
		printInfo("  key[%d]: position=%d length=%d attributes=0x%03x\n", i, k.Position, k.Length, k.Attributes)
	}
	return nil
}
