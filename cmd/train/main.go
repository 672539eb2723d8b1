// Command train fits the days-to-resolution model from a historical 311
// export and writes model.json, zip_code_map.csv and request_type_map.csv.
package main

import (
	"flag"
	"fmt"
	"os"

	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/services"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  envOr("LOG_FORMAT", "console"),
		Service: "fixnow-train",
	})

	if err := run(os.Args[1:], log); err != nil {
		log.Error().Err(err).Msg("training failed")
		os.Exit(1)
	}
}

func run(args []string, log logger.Logger) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	dataPath := fs.String("data", envOr("RAW_DATASET_PATH", "data_311_2023_raw.csv"), "raw service request export (.csv or .xlsx)")
	outDir := fs.String("out", envOr("ARTIFACT_DIR", "."), "directory for the model and mapping files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	res, err := services.NewTrainingService(log).Run(*dataPath, *outDir)
	if err != nil {
		return err
	}

	log.Info().
		Str("out", *outDir).
		Int("rows_read", res.RowsRead).
		Int("rows_used", res.RowsUsed).
		Int("zip_codes", res.ZipCodes.Len()).
		Int("issue_types", res.IssueTypes.Len()).
		Float64("r_squared", res.Model.RSquared).
		Msg("training complete")
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
