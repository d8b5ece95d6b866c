package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/shipment-cli/internal/ingest"
	"github.com/sells-group/shipment-cli/internal/model"
)

var (
	extractInput       string
	extractOutput      string
	extractOffline     bool
	extractConcurrency int
	extractSave        bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract shipment fields from a batch of enquiry emails",
	Long:  "Reads emails from a JSON or XLSX file, extracts candidate fields per email, runs catalog validation and reconciliation, and writes the resulting shipment records as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		emails, err := ingest.ReadEmails(extractInput)
		if err != nil {
			return eris.Wrap(err, "read emails")
		}
		if len(emails) == 0 {
			zap.L().Info("no emails found", zap.String("input", extractInput))
			return nil
		}

		env, err := initPipeline(extractOffline || cfg.Extract.Offline)
		if err != nil {
			return err
		}

		concurrency := extractConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Extract.Concurrency
		}

		records, err := env.Processor.ProcessBatch(ctx, emails, concurrency)
		if err != nil {
			return eris.Wrap(err, "process batch")
		}

		if extractSave {
			if err := saveRun(ctx, env.Processor.ExtractorName(), records); err != nil {
				return err
			}
		}

		return writeRecords(records, extractOutput)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "path to emails file (.json or .xlsx)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "-", "output path for shipment records JSON (- for stdout)")
	extractCmd.Flags().BoolVar(&extractOffline, "offline", false, "use the offline pattern extractor instead of Claude")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "max concurrent extractions (default from config)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "persist the run and records to the configured store")
	extractCmd.MarkFlagRequired("input") //nolint:errcheck
	rootCmd.AddCommand(extractCmd)
}

// saveRun records a completed extraction run and its records in the store.
func saveRun(ctx context.Context, extractorName string, records []model.ShipmentRecord) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := persistRun(ctx, st, extractorName, records)
	if err != nil {
		return err
	}

	zap.L().Info("run saved",
		zap.String("run_id", run.ID),
		zap.Int("records", len(records)),
		zap.Int("flagged", run.Flagged),
	)
	return nil
}

func writeRecords(records []model.ShipmentRecord, path string) error {
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal records")
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
		return eris.Wrap(err, "write records")
	}
	return eris.Wrapf(os.WriteFile(path, out, 0o644), "write %s", path)
}
