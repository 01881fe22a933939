package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sahayak-edu/sahayak/internal/cli/formatter"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/export"
	"github.com/sahayak-edu/sahayak/internal/importer"
)

var errImportUnavailable = errors.New("library import is not configured")

// recentLimit caps the dashboard's recent activity list.
const recentLimit = 5

func newLibraryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"history"},
		Short:   "Browse saved stories, worksheets and other content",
	}
	cmd.AddCommand(
		newLibraryListCmd(app),
		newLibraryShowCmd(app),
		newLibraryDeleteCmd(app),
		newLibraryDownloadCmd(app),
		newLibraryImportCmd(app),
		newLibraryExportCmd(app),
	)
	return cmd
}

func newLibraryListCmd(app *App) *cobra.Command {
	var query, itemType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Library.Search(cmd.Context(), app.userID(), query, itemType)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLibraryList(items, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Match titles and content, ignoring case")
	cmd.Flags().StringVar(&itemType, "type", domain.ItemTypeAll, "Filter by type: all, story, worksheet, visual-aid, reading-assessment, conversation")
	return cmd
}

func newLibraryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved item in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := app.Library.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLibraryItem(item, app.now()))
			return nil
		},
	}
}

func newLibraryDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Library.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("Deleted"), args[0])
			return nil
		},
	}
}

func newLibraryDownloadCmd(app *App) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Write a saved item's content to a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := app.Library.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", outDir, err)
			}
			path := filepath.Join(outDir, export.LibraryFilename(item.Title))
			if err := os.WriteFile(path, []byte(item.Content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("Wrote"), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to write the file to")
	return cmd
}

func newLibraryImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import items from a library archive (JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Import == nil {
				return errImportUnavailable
			}
			result, err := app.Import.ImportLibrary(cmd.Context(), args[0], app.userID())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d item(s)\n", formatter.StyleGreen.Render("Imported"), result.Imported)
			for _, t := range domain.ItemTypes {
				if n := result.ByType[t]; n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %d\n", formatter.ItemTypeLabel(t), n)
				}
			}
			return nil
		},
	}
}

func newLibraryExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every saved item to a library archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Import == nil {
				return errImportUnavailable
			}
			archive, err := app.Import.ExportLibrary(cmd.Context(), app.userID())
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				return importer.WriteArchive(cmd.OutOrStdout(), archive)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			if err := importer.WriteArchive(f, archive); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d item(s) to %s\n", formatter.StyleGreen.Render("Exported"), len(archive.Items), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Archive file to write (default stdout)")
	return cmd
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show counts of saved content and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stats, err := app.Library.Stats(ctx, app.userID())
			if err != nil {
				return err
			}
			items, err := app.Library.List(ctx, app.userID())
			if err != nil {
				return err
			}
			if len(items) > recentLimit {
				items = items[:recentLimit]
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDashboard(stats, items, app.now()))
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("the HTTP API is not configured")
			}
			return app.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SAHAYAK_HTTP_ADDR or :8080)")
	return cmd
}
