package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"call-quality-go/internal/actionable"
	"call-quality-go/internal/aggregator"
	"call-quality-go/internal/app"
	"call-quality-go/internal/config"
	"call-quality-go/internal/dataset"
	"call-quality-go/internal/logger"
	"call-quality-go/internal/pipeline"
)

var jsonOutput bool

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "batch",
		Short: "Bulk transcription and quality review of call recordings",
	}
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(listCmd(), runCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions in the blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			store, err := app.BuildBlobStore(cmd.Context(), cfg, logger.New())
			if err != nil {
				return err
			}
			repo := app.NewSessions(store, cfg)
			ids, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(map[string]any{"sessions": ids, "count": len(ids)})
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var (
		opts         pipeline.Options
		sessionsFile string
		reportPath   string
		all          bool
	)
	cmd := &cobra.Command{
		Use:   "run [session-id...]",
		Short: "Transcribe and analyze sessions one at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			services, err := app.Build(ctx, cfg, log, nil)
			if err != nil {
				return err
			}
			defer services.Close()

			ids := args
			if sessionsFile != "" {
				fromFile, err := dataset.LoadSessions(sessionsFile)
				if err != nil {
					return fmt.Errorf("load %s: %w", sessionsFile, err)
				}
				ids = append(ids, fromFile...)
			}
			if all {
				listed, err := services.Sessions.List(ctx)
				if err != nil {
					return err
				}
				ids = append(ids, listed...)
			}
			if len(ids) == 0 {
				return fmt.Errorf("no sessions given; pass ids, --sessions-file or --all")
			}

			if !opts.Transcribe && !opts.Analyze && !opts.Conversation {
				opts.Analyze = true
			}
			if opts.SessionTimeout == 0 {
				opts.SessionTimeout = cfg.BatchSessionTimeout
			}

			rep := pipeline.NewRunner(services.Transcripts, services.Analyzer, opts, log.Entry).Run(ctx, ids)
			ins := aggregator.Aggregate(rep.Analyses())
			card := actionable.Generate(ins)

			if reportPath != "" {
				if err := dataset.WriteReport(reportPath, rep, ins, card); err != nil {
					return err
				}
			}
			if jsonOutput {
				return printJSON(map[string]any{"report": rep, "insight": ins, "action": card})
			}
			for _, res := range rep.Results {
				status := "ok"
				if len(res.Errors) > 0 {
					status = fmt.Sprintf("%d error(s)", len(res.Errors))
				}
				fmt.Printf("%-40s %s\n", res.SessionID, status)
			}
			fmt.Printf("\n%s\n-> %s\n", card.Insight, card.Action)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.Transcribe, "transcribe", false, "Produce transcripts")
	f.BoolVar(&opts.Analyze, "analyze", false, "Run the comprehensive analysis (default when no step is chosen)")
	f.BoolVar(&opts.Conversation, "conversation", false, "Run the conversation review (transcribes first)")
	f.BoolVar(&opts.Force, "force", false, "Ignore cached artifacts")
	f.DurationVar(&opts.SessionTimeout, "session-timeout", 0, "Per-session timeout (default BATCH_SESSION_TIMEOUT)")
	f.StringVar(&sessionsFile, "sessions-file", "", "xlsx file with a session id column")
	f.StringVar(&reportPath, "report", "", "Write an xlsx report to this path")
	f.BoolVar(&all, "all", false, "Process every session in the blob store")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
