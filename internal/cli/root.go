package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
	"github.com/sahayak-edu/sahayak/internal/pipeline"
	"github.com/sahayak-edu/sahayak/internal/service"
)

// App holds references to the services used by CLI commands.
type App struct {
	Worksheets service.WorksheetService
	// Session runs CLI worksheet generation; a new run cancels the one in
	// flight.
	Session    *pipeline.Session
	Library    service.LibraryService
	Import     service.ImportService
	Stories    intelligence.StoryService
	Assistant  intelligence.AssistantService
	VisualAids intelligence.VisualAidService
	Reading    intelligence.ReadingService

	// UserID owns saved items. Empty means domain.DefaultUserID.
	UserID string

	// IsInteractive reports whether stdin is a terminal. Forms and live
	// views are only used when it returns true.
	IsInteractive func() bool

	// Serve runs the HTTP API on addr until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error

	Now func() time.Time
}

func (a *App) userID() string {
	if a.UserID == "" {
		return domain.DefaultUserID
	}
	return a.UserID
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// NewRootCmd creates the top-level "sahayak" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sahayak",
		Short:         "Teaching companion for multigrade classrooms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newWorksheetCmd(app),
		newGradesCmd(app),
		newLibraryCmd(app),
		newDashboardCmd(app),
		newStoryCmd(app),
		newAskCmd(app),
		newVisualAidCmd(app),
		newReadingCmd(app),
		newServeCmd(app),
	)

	return root
}
