package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethanrimes/campaign-management-platform/internal/log"
	internal_storage "github.com/ethanrimes/campaign-management-platform/internal/storage"
	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/service"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

func SetupCLI(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List execution summaries, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			store := storeFromFlags(cmd)
			defer store.Close()
			initiativeID, _ := cmd.Flags().GetString("initiative")
			limit, _ := cmd.Flags().GetInt("limit")
			projector := service.NewProjector(store, log.GetLogger())
			summaries, err := projector.ProjectMany(context.Background(), service.ListFilter{
				InitiativeID: initiativeID,
				Limit:        limit,
			})
			if err != nil {
				log.GetLogger().Errorf("Failed to list executions: %v", err)
				os.Exit(1)
			}
			if len(summaries) == 0 {
				fmt.Println("No executions found.")
				return
			}
			for _, s := range summaries {
				printSummary(s)
			}
		},
	}
	listCmd.Flags().String("initiative", "", "Filter by initiative ID")
	listCmd.Flags().Int("limit", 0, "Maximum number of results")

	traceCmd := &cobra.Command{
		Use:   "trace [execution-id]",
		Short: "Assemble and print the full trace for one execution",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := storeFromFlags(cmd)
			defer store.Close()
			logger := log.GetLogger()
			projector := service.NewProjector(store, logger)
			assembler := service.NewAssembler(store, projector, logger)
			trace, err := assembler.Assemble(context.Background(), args[0])
			if err != nil {
				logger.Errorf("Failed to assemble trace: %v", err)
				os.Exit(1)
			}
			printTrace(trace)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [execution-id]",
		Short: "Follow a running execution until it reaches a terminal state",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := storeFromFlags(cmd)
			defer store.Close()
			logger := log.GetLogger()
			interval, _ := cmd.Flags().GetDuration("interval")
			projector := service.NewProjector(store, logger)
			assembler := service.NewAssembler(store, projector, logger)
			watcher := service.NewWatcher(assembler, logger, service.WithPollInterval(interval))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			sub, err := watcher.Watch(ctx, args[0], func(trace *models.Trace) {
				printSummary(trace.Summary)
			})
			if err != nil {
				logger.Errorf("Failed to watch execution: %v", err)
				os.Exit(1)
			}
			defer sub.Unwatch()

			select {
			case <-sub.Done():
				if err := sub.Err(); err != nil {
					logger.Errorf("Watch ended with error: %v", err)
					os.Exit(1)
				}
			case <-ctx.Done():
			}
		},
	}
	watchCmd.Flags().Duration("interval", service.DefaultPollInterval, "Polling interval")

	rootCmd.AddCommand(listCmd, traceCmd, watchCmd)
}

func storeFromFlags(cmd *cobra.Command) storage.Store {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil || dbConnStr == "" {
		log.GetLogger().Errorf("Missing --db connection string")
		os.Exit(1)
	}
	store, err := internal_storage.NewPostgresStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to connect to store: %v", err)
		os.Exit(1)
	}
	return store
}

func printSummary(s models.ExecutionSummary) {
	fmt.Printf("- %s [%s] %s started=%s duration=%.0fs campaigns=%d ad_sets=%d posts=%d research=%d media=%d\n",
		s.ExecutionID, s.Status, s.WorkflowType,
		s.StartedAt.Format(time.RFC3339), s.DurationSeconds,
		s.CampaignsCreated, s.AdSetsCreated, s.PostsCreated,
		s.ResearchEntries, s.MediaFilesCreated)
}

func printTrace(trace *models.Trace) {
	out, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		log.GetLogger().Errorf("Failed to render trace: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	for _, w := range trace.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s unavailable: %s\n", w.Collection, w.Message)
	}
}
