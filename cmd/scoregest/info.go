package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/scoregest/internal/competition"
)

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <index-url>",
		Short: "Read competition info from its results index page",
		Long: `Fetch a competition results index page and extract its name, type,
dates, location and rink, plus the links to its score PDFs.

With --dir the info is saved as <dir>/infos.json, ready for "parse --info"
and "season"; otherwise it is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup(cmd)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")

			client := &http.Client{Timeout: 30 * time.Second}
			info, err := competition.FetchIndex(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			log.Info("competition info",
				"competition", info.Competition,
				"type", info.Type,
				"start", info.Start,
				"score_pdfs", len(info.ScoreLinks),
			)

			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if dir == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(dir, competition.InfoFiles[0]), data, 0o644)
		},
	}

	cmd.Flags().StringP("dir", "d", "", "Competition directory to write infos.json into")

	return cmd
}
