package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "mctpso",
	Short:         "Распределение задач по виртуальным машинам методом роя частиц (MCT-PSO)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		log.SetOutput(os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "уровень логирования: debug | info | warn | error")
	rootCmd.AddCommand(newSolveCmd(), newBenchCmd())
}

func main() {
	// Ctrl+C останавливает решатели между итерациями
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error(fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}
