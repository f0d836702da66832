package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:           "shiftboard",
	Short:         "Weekly shift schedule",
	Long:          `View the weekly shift grid, claim open slots and manage staff assignments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(v, cfgFile)
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./shiftboard.yaml)")
	pf.String("base-url", "", "schedule API base URL")
	pf.String("token", "", "bearer token")
	pf.String("username", "", "sign in with this username")
	pf.String("password", "", "password for --username")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "write logs to this file")

	bindFlag(v, "client.base_url", rootCmd, "base-url")
	bindFlag(v, "client.token", rootCmd, "token")
	bindFlag(v, "client.username", rootCmd, "username")
	bindFlag(v, "client.password", rootCmd, "password")
	bindFlag(v, "log.level", rootCmd, "log-level")
	bindFlag(v, "log.file", rootCmd, "log-file")

	rootCmd.AddCommand(boardCmd, weekCmd, staffCmd, claimCmd, assignCmd, removeCmd, summaryCmd)
}
