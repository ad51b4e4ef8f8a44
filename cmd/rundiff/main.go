// Package main provides the rundiff command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rundiff",
		Short: "Compare results between two runs of a genomics pipeline",
		Long: `rundiff compares two independently produced pipeline runs:
which files exist, whether the scored VCFs agree on called variants,
how rank scores and annotations differ, and whether ancillary reports
(YAML, versions) diverge.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	}

	root.AddCommand(newVCFCmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rundiff version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfigFile wires the optional ~/.rundiff.yaml into viper.
func initConfigFile() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil // no home, no config file
	}
	viper.SetConfigName(".rundiff")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// buildLogger creates the console logger backing the reporter: plain
// message lines on stderr, level shown only for warnings and errors.
func buildLogger(verbose bool) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		EncodeLevel:    minimalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// minimalLevelEncoder hides the level tag for info lines so report tables
// stay clean, but keeps WARN/ERROR visible.
func minimalLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l > zapcore.InfoLevel {
		enc.AppendString(l.CapitalString())
	}
}
