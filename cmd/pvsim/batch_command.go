package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sandiegoi-PV/AI-PVSim/pipeline"
)

const progressTemplate = `{{ string . "prefix" }} {{counters . }} {{bar . }} {{percent . }} {{etime . "%s elapsed"}}`

type batchOutcome struct {
	Input      string  `json:"input"`
	OutputDir  string  `json:"output_dir"`
	AnalysisID string  `json:"analysis_id,omitempty"`
	Reference  string  `json:"best_reference,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var workers int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batch <landmarks>...",
		Short: "Analyze many attempts concurrently, one output directory each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			base := flags.outDir
			if base == "" {
				base = cfg.Output.Dir
			}
			limit := cfg.Batch.Workers
			if cmd.Flags().Changed("workers") {
				limit = workers
			}
			if limit < 1 {
				return fmt.Errorf("workers must be at least 1")
			}

			var bar *pb.ProgressBar
			if !jsonOutput && isTerminal(os.Stderr) {
				bar = pb.ProgressBarTemplate(progressTemplate).New(len(args)).SetWriter(os.Stderr)
				bar.Set("prefix", "analyzing")
				bar.Start()
			}

			outcomes := make([]batchOutcome, len(args))
			var mu sync.Mutex
			failed := 0

			var g errgroup.Group
			g.SetLimit(limit)
			outDirs := outputDirsFor(base, args)
			for i, input := range args {
				outDir := outDirs[i]
				g.Go(func() error {
					res, err := pipeline.Run(pipeline.Options{
						LandmarksPath:  input,
						OutDir:         outDir,
						Athlete:        flags.athlete(cmd, cfg),
						MassExplicit:   flags.massExplicit(cmd),
						AthleteFITPath: flags.fitPath(cfg),
						Format:         flags.seriesFormat(cfg),
						Overwrite:      flags.overwriteOutput(cmd, cfg),
						CopySource:     flags.copySourceFile(cmd, cfg),
						Logger:         logger.With("input", input),
					})
					outcome := batchOutcome{Input: input, OutputDir: outDir}
					if err != nil {
						outcome.Error = err.Error()
						logger.Error("analysis failed", "input", input, "error", err)
						mu.Lock()
						failed++
						mu.Unlock()
					} else {
						outcome.AnalysisID = res.AnalysisID
						outcome.Reference = res.Analysis.BestReference
						if best, ok := res.Analysis.Comparisons[outcome.Reference]; ok {
							outcome.Score = best.OverallScore
						}
					}
					outcomes[i] = outcome
					if bar != nil {
						bar.Increment()
					}
					return nil
				})
			}
			_ = g.Wait()
			if bar != nil {
				bar.Finish()
			}

			if jsonOutput {
				if err := writeJSON(cmd, outcomes); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderBatchTable(outcomes))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d analyses failed", failed, len(args))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Concurrent analyses (defaults to batch.workers)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print outcomes as JSON")
	return cmd
}

func renderBatchTable(outcomes []batchOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "ok"
		score := fmt.Sprintf("%.1f", o.Score)
		if o.Error != "" {
			status = o.Error
			score = "-"
		}
		rows = append(rows, []string{o.Input, o.Reference, score, status})
	}
	return renderTable(
		[]string{"Input", "Closest reference", "Score", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}
