// Copyright © 2019 Andrei Gubarev <agubarev@protonmail.com>

package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/agubarev/stronghold/pkg/util"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every persisted faction document.",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		fs, _, err := newStores()
		if err != nil {
			log.Fatal(err)
		}

		factions, err := fs.FetchAllFactions(context.Background())
		if err != nil {
			log.Fatal(err)
		}

		for _, f := range factions {
			util.PrettyPrint(f)
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
