package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := newViper()

	var cfgFile string
	cmd := &cobra.Command{
		Use:          "relayd",
		Short:        "Serves Relay connections over a SQL table",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}

			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("cannot read config file: %w", err)
			}

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("database-driver", "sqlite", `database driver: "sqlite", "postgres" or "mysql"`)
	flags.String("database-dsn", "relayd.db", "database connection string")
	flags.String("log-level", "info", "log level")
	bindFlags(v, flags, map[string]string{
		"database.driver": "database-driver",
		"database.dsn":    "database-dsn",
		"log.level":       "log-level",
	})

	cmd.AddCommand(newServeCmd(v), newSeedCmd(v))

	return cmd
}

// bindFlags binds config keys to flags. Flags win over the environment only
// when they are set explicitly.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Errorf("cannot bind flag '%s': %w", name, err))
		}
	}
}
