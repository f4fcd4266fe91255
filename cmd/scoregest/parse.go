package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/scoregest/internal/competition"
	"github.com/dgallion1/scoregest/internal/output"
	"github.com/dgallion1/scoregest/internal/sheet"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file.pdf...",
		Short: "Extract score sheets from judges details PDFs",
		Long: `Extract every score sheet from one or more judges details PDFs.

The competition context is read from --info (a directory holding infos.json
or info.json); individual flags override it. Results are written as
<pdf-stem>.json under --out, or to stdout when no output directory is set.

Example:
  scoregest parse --season 2021-2022 --info tf-brest tf-brest/*.pdf
  scoregest parse --competition "TF Brest" --out output/json FS.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			infoDir, _ := cmd.Flags().GetString("info")
			outDir, _ := cmd.Flags().GetString("out")
			workers, _ := cmd.Flags().GetInt("workers")
			if outDir == "" {
				outDir = cfg.OutputDir
			}
			if workers <= 0 {
				workers = cfg.WorkerCount
			}

			var pctx sheet.ParseContext
			if infoDir != "" {
				info, err := competition.LoadInfo(infoDir)
				if err != nil {
					return err
				}
				pctx = info.Context("")
			}
			for flag, field := range map[string]*string{
				"season":      &pctx.Season,
				"competition": &pctx.Competition,
				"city":        &pctx.City,
				"type":        &pctx.Type,
				"start":       &pctx.Start,
				"end":         &pctx.End,
			} {
				if v, _ := cmd.Flags().GetString(flag); v != "" {
					*field = v
				}
			}

			jobs := make([]pdfJob, len(args))
			for i, path := range args {
				jobs[i] = pdfJob{Path: path, Context: pctx, OutDir: outDir}
			}
			if err := checkOutputs(jobs); err != nil {
				return err
			}

			failed := 0
			for _, r := range parseAll(cmd.Context(), cfg.Template, jobs, workers, cmd.ErrOrStderr(), log) {
				if r.Err != nil {
					failed++
					continue
				}
				if r.Job.OutDir == "" {
					if err := output.Write(cmd.OutOrStdout(), r.Result); err != nil {
						return err
					}
					continue
				}
				path, err := output.WriteFile(r.Job.OutDir, r.Result)
				if err != nil {
					return err
				}
				log.Info("wrote result", "path", path, "performances", len(r.Result.Performances))
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if failed == len(args) {
				return fmt.Errorf("no pdf could be parsed (%d failed)", failed)
			}
			return nil
		},
	}

	cmd.Flags().String("info", "", "Competition directory holding infos.json")
	cmd.Flags().String("season", "", "Season, e.g. 2021-2022")
	cmd.Flags().String("competition", "", "Competition name")
	cmd.Flags().String("city", "", "Competition city")
	cmd.Flags().String("type", "", "Competition type (TF, TdF, Challenge, SFC, Criterium, CdF)")
	cmd.Flags().String("start", "", "First day of the competition")
	cmd.Flags().String("end", "", "Last day of the competition")
	cmd.Flags().StringP("out", "o", "", "Output directory (default: stdout, or output_dir from config)")
	cmd.Flags().IntP("workers", "w", 0, "PDFs parsed in parallel (default: worker_count from config)")

	return cmd
}
