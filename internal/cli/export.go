package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quiz-session-service/internal/config"
	"quiz-session-service/internal/export"
	pgstore "quiz-session-service/internal/infra/postgres"
)

// NewExportCmd dumps stored results to CSV.
func NewExportCmd(configPath *string) *cobra.Command {
	var quizID string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, quizID, outPath)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "limit export to one quiz id")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func runExport(ctx context.Context, configPath, quizID, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	records, err := pgstore.NewResultStore(pool).ListResults(ctx, quizID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		out, err = os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	if err := export.WriteCSV(out, records); err != nil {
		return err
	}
	log.Printf("exported %d results", len(records))
	return nil
}
