package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/andreyvit/seqdb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const Version = "0.1.0"

var (
	registry *seqdb.Registry
	coll     *seqdb.Collection
)

var RootCmd = &cobra.Command{
	Use:   "seqdb",
	Short: "Inspect and edit seqdb stores",
	Long: fmt.Sprintf(`seqdb (v%s) works with ordered collections of JSON records
kept in embedded store files. Every record gets the next integer id
of its collection.

Settings can also come from SEQDB_* environment variables and from
.env / .env.local files in the working directory.`, Version),
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("seqdb", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.AddCommand(versionCmd)

	flags := RootCmd.PersistentFlags()
	flags.String("dir", seqdb.DefaultDir, WrapString("Directory holding one file per store"))
	flags.String("store", "", WrapString("Name of the store to open (required by most commands)"))
	flags.String("collection", "", WrapString("Name of the collection within the store"))
	flags.String("engine", "bolt", WrapString("Storage engine: bolt (on disk) or memory"))
	flags.String("encoding", "msgpack", WrapString("Encoding of newly written records: msgpack or json. Existing records keep theirs"))
	flags.Duration("timeout", 10*time.Second, WrapString("How long to wait for the store file lock held by another process"))
	flags.BoolP("verbose", "v", false, WrapString("Log every operation at debug level"))
}

type runFunc func(cmd *cobra.Command, args []string) error

// withRegistry runs f against a fresh registry and closes every store it
// opened, even when f fails.
func withRegistry(f runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := bindCommandFlags(cmd); err != nil {
			return err
		}
		opt, err := registryOptions()
		if err != nil {
			return err
		}
		registry = seqdb.NewRegistry(opt)
		defer func() {
			err = errors.Join(err, registry.CloseAll())
		}()
		return f(cmd, args)
	}
}

// withCollection is like withRegistry, but also opens --store/--collection.
func withCollection(f runFunc) runFunc {
	return withRegistry(func(cmd *cobra.Command, args []string) error {
		var err error
		coll, err = registry.Open(viper.GetString("store"), viper.GetString("collection"))
		if err != nil {
			return err
		}
		return f(cmd, args)
	})
}

// Execute runs the root command
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
