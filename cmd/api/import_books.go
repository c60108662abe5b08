package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Afterburn3/StorySpotlight-Backend/core"
)

// NewImportBooksCmd creates the import-books subcommand.
func NewImportBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-books <catalogue.yaml>",
		Short: "Import books from a YAML catalogue",
		Long: `Insert every book of the catalogue whose book_id is not stored yet.
Books already present are skipped, so the command can be re-run safely.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportBooks,
	}
}

func runImportBooks(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return oops.Code("CATALOGUE_READ_FAILED").With("path", args[0]).Wrap(err)
	}
	items, err := core.ParseBookCatalog(data)
	if err != nil {
		return oops.Code("CATALOGUE_INVALID").With("path", args[0]).Wrap(err)
	}

	cfg, err := core.Load()
	if err != nil {
		return err
	}
	logger := core.SetupLogging(cfg, cmd.ErrOrStderr())

	ctx := cmd.Context()
	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer db.Close()

	res, err := core.ImportBooks(ctx, core.NewPgBookRepository(db), items, logger)
	if err != nil {
		return err
	}
	cmd.Printf("Imported %d books, skipped %d already present\n", res.Created, res.Skipped)
	return nil
}
