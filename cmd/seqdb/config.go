package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/andreyvit/seqdb"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrap is the number of characters to wrap the help text at
const Wrap int = 50

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var lines []string
	var line strings.Builder
	width := 0
	for _, word := range strings.Fields(text) {
		if width > 0 && width+1+len(word) > Wrap {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		if width > 0 {
			line.WriteString(" ")
			width++
		}
		line.WriteString(word)
		width += len(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("seqdb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// registryOptions reads store options from flags, env and .env files.
func registryOptions() (seqdb.Options, error) {
	engine, err := seqdb.ParseEngine(viper.GetString("engine"))
	if err != nil {
		return seqdb.Options{}, err
	}
	enc, err := seqdb.ParseEncoding(viper.GetString("encoding"))
	if err != nil {
		return seqdb.Options{}, err
	}
	return seqdb.Options{
		Dir:      viper.GetString("dir"),
		Engine:   engine,
		Encoding: enc,
		Logger:   newLogger(),
		Verbose:  viper.GetBool("verbose"),
		Timeout:  viper.GetDuration("timeout"),
	}, nil
}
