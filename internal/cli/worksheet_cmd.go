package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sahayak-edu/sahayak/internal/cli/formatter"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/export"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
)

func newWorksheetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worksheet",
		Short: "Generate differentiated worksheets from a textbook page",
	}
	cmd.AddCommand(newWorksheetGenerateCmd(app))
	return cmd
}

func newWorksheetGenerateCmd(app *App) *cobra.Command {
	var (
		imagePath string
		gradesArg string
		subject   string
		outDir    string
		format    string
		save      bool
		saveGrade string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create one worksheet per selected grade from a page photo",
		Example: `  sahayak worksheet generate --image page.jpg --grades 3,8
  sahayak worksheet generate --image page.jpg --grades 5 --subject Science --out ./worksheets --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if format != "text" && format != "html" {
				return fmt.Errorf("invalid --format %q: use text or html", format)
			}
			saveOnly, err := domain.ParseGradeSet(saveGrade)
			if err != nil {
				return fmt.Errorf("invalid --save-grade: %w", err)
			}

			var img *domain.UploadedImage
			if imagePath != "" {
				if img, err = readImage(imagePath); err != nil {
					return err
				}
			}

			grades, err := domain.ParseGradeSet(gradesArg)
			if err != nil {
				return err
			}
			if grades.Len() == 0 && app.interactive() {
				if grades, subject, err = askGradesAndSubject(subject); err != nil {
					return err
				}
			}

			req := pipeline.Request{Image: img, Grades: grades, Subject: subject}

			var run *pipeline.Run
			if app.interactive() {
				run, err = runWithProgressView(ctx, app, req, cmd.ErrOrStderr())
			} else {
				errOut := cmd.ErrOrStderr()
				run, err = app.generate(ctx, req, func(p int) {
					fmt.Fprintln(errOut, formatter.FormatProgressLine(p))
				})
			}
			if run != nil {
				fmt.Fprint(out, formatter.FormatRun(run))
			}
			if err != nil {
				return err
			}

			worksheets := run.Worksheets()
			if !quiet {
				for _, ws := range worksheets {
					fmt.Fprintln(out)
					fmt.Fprint(out, formatter.FormatWorksheet(ws))
				}
			}

			if outDir != "" {
				paths, err := writeWorksheets(outDir, format, worksheets)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				for _, p := range paths {
					fmt.Fprintf(out, "%s %s\n", formatter.StyleGreen.Render("Wrote"), p)
				}
			}

			switch {
			case save:
				ids, err := app.Worksheets.SaveAll(ctx, run, app.userID())
				if err != nil {
					return fmt.Errorf("saving worksheets: %w", err)
				}
				fmt.Fprintf(out, "\n%s\n", formatter.StyleGreen.Render(
					fmt.Sprintf("Saved %d worksheet(s) to the library.", len(ids))))
			case saveOnly.Len() > 0:
				fmt.Fprintln(out)
				for _, g := range saveOnly.Sorted() {
					id, err := app.Worksheets.SaveGrade(ctx, run, g, app.userID())
					if err != nil {
						return fmt.Errorf("saving %s worksheet: %w", g.Label(), err)
					}
					fmt.Fprintf(out, "%s %s: %s\n", formatter.StyleGreen.Render("Saved"), g.Label(), id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Photo of the textbook page (JPG, PNG)")
	cmd.Flags().StringVar(&gradesArg, "grades", "", "Comma separated grades, e.g. 3,5,8")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject used in worksheet titles (default Mathematics)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write one file per grade")
	cmd.Flags().StringVar(&format, "format", "text", "File format for --out: text or html")
	cmd.Flags().BoolVar(&save, "save", false, "Save the worksheets to the library")
	cmd.Flags().StringVar(&saveGrade, "save-grade", "", "Save only these grades to the library, e.g. 3,8")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the run summary")

	return cmd
}

// generate runs the pipeline through the session when one is wired, so a
// later run supersedes this one.
func (a *App) generate(ctx context.Context, req pipeline.Request, onProgress pipeline.ProgressFunc) (*pipeline.Run, error) {
	if a.Session != nil {
		return a.Session.Start(ctx, req, onProgress)
	}
	return a.Worksheets.Generate(ctx, req, onProgress)
}

// readImage loads path and sniffs its media type, falling back to the file
// extension when the content is not recognised.
func readImage(path string) (*domain.UploadedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	mediaType := http.DetectContentType(data)
	if mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
			mediaType = byExt
		}
	}
	img := &domain.UploadedImage{Name: filepath.Base(path), MediaType: mediaType, Data: data}
	if err := domain.ValidateImage(*img); err != nil {
		return nil, err
	}
	return img, nil
}

func writeWorksheets(dir, format string, worksheets []domain.Worksheet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	paths := make([]string, 0, len(worksheets))
	for _, ws := range worksheets {
		path, err := writeWorksheet(dir, format, ws)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeWorksheet(dir, format string, ws domain.Worksheet) (string, error) {
	if format == "html" {
		page, err := export.RenderHTML(ws)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, export.HTMLFilename(ws.Grade, ws.Subject))
		return path, os.WriteFile(path, page, 0o644)
	}

	path := filepath.Join(dir, export.Filename(ws.Grade, ws.Subject))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := export.WriteText(f, ws); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func newGradesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List the selectable grade levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGrades(domain.AllGrades()))
			return nil
		},
	}
}

