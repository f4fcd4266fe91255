package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/scoregest/internal/output"
)

func seasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season <season-dir>",
		Short: "Parse every competition of a season",
		Long: `Parse every PDF of a season directory.

Each sub-directory of <season-dir> is a competition holding infos.json and
its PDFs. The season name is the directory name. Results are written to
<out>/<competition>/<pdf-stem>.json; existing results are kept unless
--overwrite is set.

Example:
  scoregest season data/2021-2022 --out output/json --workers 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			outDir, _ := cmd.Flags().GetString("out")
			workers, _ := cmd.Flags().GetInt("workers")
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			if outDir == "" {
				outDir = cfg.OutputDir
			}
			if outDir == "" {
				outDir = filepath.Join("output", "json")
			}
			if workers <= 0 {
				workers = cfg.WorkerCount
			}

			dir := filepath.Clean(args[0])
			season := filepath.Base(dir)
			jobs, skipped, err := discoverSeason(dir, season, outDir, overwrite, log)
			if err != nil {
				return err
			}
			if err := checkOutputs(jobs); err != nil {
				return err
			}
			log.Info("season discovered", "season", season, "pdfs", len(jobs), "already_parsed", skipped)

			var written, failed, performances int
			for _, r := range parseAll(cmd.Context(), cfg.Template, jobs, workers, cmd.ErrOrStderr(), log) {
				if r.Err != nil {
					failed++
					continue
				}
				if _, err := output.WriteFile(r.Job.OutDir, r.Result); err != nil {
					log.Error("write result failed", "pdf", r.Job.Path, "error", err)
					failed++
					continue
				}
				written++
				performances += len(r.Result.Performances)
			}

			log.Info("season done",
				"season", season,
				"written", written,
				"failed", failed,
				"skipped", skipped,
				"performances", performances,
			)
			return cmd.Context().Err()
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (default: output_dir from config, else output/json)")
	cmd.Flags().IntP("workers", "w", 0, "PDFs parsed in parallel (default: worker_count from config)")
	cmd.Flags().Bool("overwrite", false, "Parse again PDFs that already have a result")

	return cmd
}
