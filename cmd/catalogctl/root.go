package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/phenrril/catalogo/internal/adapters/cache"
	"github.com/phenrril/catalogo/internal/app"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Catalog maintenance: migrations, variant plans, exports and stock",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// openApp connects to the configured database and redis. The returned func
// releases the redis client.
func openApp() (*app.App, func(), error) {
	db, err := app.OpenDB()
	if err != nil {
		return nil, nil, err
	}
	rdb := cache.NewClientFromEnv()
	a, err := app.NewApp(db, rdb)
	if err != nil {
		return nil, nil, err
	}
	return a, func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}, nil
}
