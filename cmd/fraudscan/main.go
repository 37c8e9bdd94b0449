package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jim-agent/medicaid-fraud-detector/internal/cloud"
	"github.com/jim-agent/medicaid-fraud-detector/internal/loader"
	"github.com/jim-agent/medicaid-fraud-detector/internal/model"
	"github.com/jim-agent/medicaid-fraud-detector/internal/progress"
	"github.com/jim-agent/medicaid-fraud-detector/internal/report"
	"github.com/jim-agent/medicaid-fraud-detector/internal/resolve"
	fsignal "github.com/jim-agent/medicaid-fraud-detector/internal/signal"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fraudscan",
		Short: "Scan Medicaid claims for provider fraud signals",
	}

	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		claimsFile     string
		exclusionsFile string
		registryFile   string
		outputFile     string
		workers        int
		noProgress     bool
		logProgress    bool
		quiet          bool
		s3Bucket       string
		s3Key          string
		s3Region       string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run all six fraud detectors over the input datasets and write a JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
				With().Timestamp().Logger()
			if quiet {
				logger = logger.Level(zerolog.WarnLevel)
			}

			var mgr progress.Manager
			switch {
			case noProgress || quiet:
				mgr = progress.NoopManager{}
			case logProgress:
				mgr = progress.NewLogManager()
			default:
				mgr = progress.NewMPBManager()
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
				cancel()
			}()

			runID := uuid.NewString()
			start := time.Now()
			logger.Info().Str("run_id", runID).Msg("starting analysis")

			// Loading phase. A missing or unreadable input is fatal
			// before any detector runs.
			const phases = 4 // three loads plus detection
			var stats report.LoadStats

			claims, claimStats, err := loadWithTracker(mgr.NewTracker(0, phases, "claims"), func(onRow func()) ([]model.Claim, loader.Stats, error) {
				return loader.LoadClaims(claimsFile, onRow)
			})
			if err != nil {
				return fmt.Errorf("loading claims: %w", err)
			}
			stats.Claims = claimStats
			logger.Info().Int("rows", claimStats.Rows).Int("skipped", claimStats.Skipped).Msg("claims loaded")

			exclusions, exclStats, err := loadWithTracker(mgr.NewTracker(1, phases, "exclusions"), func(onRow func()) ([]model.ExclusionRecord, loader.Stats, error) {
				return loader.LoadExclusions(exclusionsFile, onRow)
			})
			if err != nil {
				return fmt.Errorf("loading exclusions: %w", err)
			}
			stats.Exclusions = exclStats
			logger.Info().Int("rows", exclStats.Rows).Int("skipped", exclStats.Skipped).Msg("exclusions loaded")

			registry, regStats, err := loadWithTracker(mgr.NewTracker(2, phases, "registry"), func(onRow func()) ([]model.RegistryEntity, loader.Stats, error) {
				return loader.LoadRegistry(registryFile, onRow)
			})
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}
			stats.Registry = regStats
			logger.Info().Int("rows", regStats.Rows).Int("skipped", regStats.Skipped).Msg("registry loaded")

			ds := resolve.Resolve(claims, exclusions, registry)
			logger.Info().Int("providers", len(ds.Providers)).Msg("entities resolved")

			// Detection phase.
			detectTracker := mgr.NewTracker(3, phases, "detectors")
			detectTracker.SetStage("running detectors")
			var detectorsDone atomic.Int64

			engine := &fsignal.Engine{
				Workers: workers,
				OnDetectorDone: func(kind model.Kind, hits int) {
					detectTracker.SetCount(detectorsDone.Add(1))
					logger.Info().Str("signal", string(kind)).Int("hits", hits).Msg("detector finished")
				},
			}
			hitsByKind := engine.Run(ctx, ds)
			detectTracker.Done()
			mgr.Wait()

			if err := ctx.Err(); err != nil {
				return err
			}

			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			rep := report.Compose(ds, hitsByKind, report.Options{
				RunID:       runID,
				GeneratedAt: time.Now(),
				LoadStats:   stats,
				Metrics: report.Metrics{
					RuntimeSeconds:  time.Since(start).Seconds(),
					PeakMemoryBytes: ms.Sys,
				},
			})

			if err := report.Write(outputFile, rep); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			logger.Info().
				Int("scanned", rep.TotalProvidersScanned).
				Int("flagged", rep.TotalProvidersFlagged).
				Float64("runtime_seconds", rep.Metrics.RuntimeSeconds).
				Str("output", outputFile).
				Msg("analysis complete")

			if s3Bucket != "" {
				if outputFile == "-" {
					return fmt.Errorf("--s3-bucket requires a file output, not stdout")
				}
				key := s3Key
				if key == "" {
					key = fmt.Sprintf("fraud-reports/%s.json", runID)
				}
				client, err := cloud.NewS3Client(ctx, s3Bucket, s3Region)
				if err != nil {
					return fmt.Errorf("creating S3 client: %w", err)
				}
				if err := client.UploadReport(ctx, key, outputFile); err != nil {
					return fmt.Errorf("uploading report: %w", err)
				}
				logger.Info().Str("bucket", s3Bucket).Str("key", key).Msg("report uploaded")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&claimsFile, "claims", "", "Claims dataset (.csv, .ndjson, optionally .gz)")
	cmd.Flags().StringVar(&exclusionsFile, "exclusions", "", "Exclusion list CSV (optionally .gz)")
	cmd.Flags().StringVar(&registryFile, "registry", "", "Provider registry CSV (optionally .gz)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "fraud_report.json", "Report output path (use '-' for stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent detectors (default: all)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVar(&logProgress, "log-progress", false, "Line-based progress output for non-TTY environments")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "Upload the report to this S3 bucket")
	cmd.Flags().StringVar(&s3Key, "s3-key", "", "S3 object key for the uploaded report (default: fraud-reports/<run-id>.json)")
	cmd.Flags().StringVar(&s3Region, "s3-region", "", "AWS region for the S3 upload")

	cmd.MarkFlagRequired("claims")
	cmd.MarkFlagRequired("exclusions")
	cmd.MarkFlagRequired("registry")

	return cmd
}

// loadWithTracker runs one loader with row-count progress updates.
func loadWithTracker[T any](t progress.Tracker, load func(onRow func()) ([]T, loader.Stats, error)) ([]T, loader.Stats, error) {
	t.SetStage("loading")
	var n int64
	rows, stats, err := load(func() {
		n++
		if n%10000 == 0 {
			t.SetCount(n)
		}
	})
	t.SetCount(n)
	t.Done()
	return rows, stats, err
}
