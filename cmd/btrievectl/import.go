package main

import (
	"fmt"
	"os"

	"github.com/joshuapare/btrievekit/btrieve"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "create <legacy.DAT> <store.db>",
	Short: "Decode a legacy .DAT file and build a new SQL-backed store from it",
	Long: `Decodes a legacy Btrieve v5 .DAT file and builds a fresh
SQL-backed store at the given output path, inserting every record the
decoder yields.

Example:
  btrievectl create MBBSEMU.DAT mbbsemu.db`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	legacyPath, storePath := args[0], args[1]

	if _, err := os.Stat(legacyPath); os.IsNotExist(err) {
		return fmt.Errorf("legacy file not found: %s", legacyPath)
	}
	if _, err := os.Stat(storePath); err == nil {
		return fmt.Errorf("output store already exists: %s (refusing to overwrite)", storePath)
	}

	printVerbose("decoding %s\n", legacyPath)
	opts := btrieve.ImportOptions{}
	if verbose {
		opts.Warnings = os.Stderr
	}
	if err := btrieve.ImportLegacyFile(legacyPath, storePath, opts); err != nil {
		return fmt.Errorf("importing %s: %w", legacyPath, err)
	}

	printInfo("store created: %s\n", storePath)
	return nil
}
