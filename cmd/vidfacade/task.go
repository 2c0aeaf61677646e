package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	providerFlag string
	imageFlag    string
	textFlag     string
	taskFlag     string
	waitFlag     bool
	intervalFlag time.Duration
	deadlineFlag time.Duration
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a talking video generation task",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the normalized status of a task",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers and whether they are configured",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

func init() {
	startCmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "provider: a2e, did (d-id) or heygen")
	startCmd.Flags().StringVar(&imageFlag, "image", "", "image URL (HeyGen: avatar id)")
	startCmd.Flags().StringVar(&textFlag, "text", "", "text to speak")
	startCmd.Flags().BoolVar(&waitFlag, "wait", false, "poll until the task completes or fails")
	startCmd.Flags().DurationVar(&intervalFlag, "interval", 5*time.Second, "poll interval used with --wait")
	startCmd.Flags().DurationVar(&deadlineFlag, "deadline", 10*time.Minute, "give up waiting after this long")
	_ = startCmd.MarkFlagRequired("provider")

	statusCmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "provider: a2e, did (d-id) or heygen")
	statusCmd.Flags().StringVar(&taskFlag, "task", "", "task id returned by start")
	_ = statusCmd.MarkFlagRequired("provider")
	_ = statusCmd.MarkFlagRequired("task")

	rootCmd.AddCommand(startCmd, statusCmd, providersCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	client, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := client.Start(ctx, providerFlag, imageFlag, textFlag)
	if err != nil {
		return err
	}
	if !waitFlag {
		return printJSON(result)
	}

	ctx, cancel := context.WithTimeout(ctx, deadlineFlag)
	defer cancel()
	result, err = client.WaitForCompletion(ctx, providerFlag, result.TaskID, intervalFlag)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := client.Poll(ctx, providerFlag, taskFlag)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runProviders(cmd *cobra.Command, args []string) error {
	client, _, _, err := setup()
	if err != nil {
		return err
	}
	for _, st := range client.Providers() {
		if st.Available {
			fmt.Fprintf(ioOut, "%-8s available\n", st.Provider)
			continue
		}
		fmt.Fprintf(ioOut, "%-8s unavailable (%s)\n", st.Provider, st.Reason)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(ioOut)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
