// Copyright © 2019 Andrei Gubarev <agubarev@protonmail.com>

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agubarev/stronghold/internal/core"
	"github.com/agubarev/stronghold/pkg/character"
	"github.com/agubarev/stronghold/pkg/database"
	"github.com/agubarev/stronghold/pkg/faction"
	"github.com/agubarev/stronghold/pkg/util"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Stronghold faction registry.",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		log.Fatal(start())
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().Bool("debug", false, "log at debug verbosity")
	startCmd.Flags().String("logdir", "logs", "log file directory")

	_ = viper.BindPFlag("debug", startCmd.Flags().Lookup("debug"))
	_ = viper.BindPFlag("logdir", startCmd.Flags().Lookup("logdir"))
}

// newStores initializes the faction and character stores per the
// configured backend
func newStores() (faction.Store, character.Store, error) {
	switch backend := viper.GetString("store.backend"); backend {
	case "mysql":
		db := database.Instance()

		fs, err := faction.NewMySQLStore(db)
		if err != nil {
			return nil, nil, err
		}

		cs, err := character.NewMySQLStore(db)
		if err != nil {
			return nil, nil, err
		}

		return fs, cs, nil
	case "badger":
		db, err := database.OpenBadger(viper.GetString("store.badger_dir"))
		if err != nil {
			return nil, nil, err
		}

		fs, err := faction.NewBadgerStore(db)
		if err != nil {
			return nil, nil, err
		}

		// character documents are owned by the game server; without a
		// database this node falls back to an in-memory mirror
		return fs, character.NewMemoryStore(), nil
	case "memory":
		return faction.NewMemoryStore(), character.NewMemoryStore(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

func start() error {
	logger, err := util.DefaultLogger(viper.GetBool("debug"), viper.GetString("logdir"))
	if err != nil {
		return err
	}

	fs, cs, err := newStores()
	if err != nil {
		return err
	}

	cm, err := character.NewManager(cs)
	if err != nil {
		return err
	}

	c, err := core.New(fs, cm)
	if err != nil {
		return err
	}

	if err := c.SetLogger(logger); err != nil {
		return err
	}

	if err := c.Init(context.Background()); err != nil {
		return err
	}
	defer c.Close()

	logger.Info("stronghold is up")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("shutting down")

	return nil
}
