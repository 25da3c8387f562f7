package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbannexus/core/config"
	"github.com/urbannexus/core/store"
)

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "List stored trace exports, newest first",
	RunE:  runTraces,
}

func runTraces(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ts, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open trace store: %w", err)
	}
	defer ts.Close()

	infos, err := ts.ListTraces(cmd.Context())
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no traces stored")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  %s\n",
			info.TraceID,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
			info.FinalRecommendation)
	}
	return nil
}
