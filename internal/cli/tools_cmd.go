package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sahayak-edu/sahayak/internal/cli/formatter"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/intelligence"
)

func newStoryCmd(app *App) *cobra.Command {
	var (
		topic    string
		language string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "story [topic]",
		Short: "Write a short story for the class in a regional language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				topic = args[0]
			}
			if language == "" && app.interactive() {
				if err := languageForm(&language).Run(); err != nil {
					return err
				}
			}
			if language == "" {
				language = "english"
			}
			lang, err := domain.LookupLanguage(language)
			if err != nil {
				return err
			}

			stop := app.spinner(cmd, "Writing story...")
			story, err := app.Stories.Generate(ctx, topic, lang.Value)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatStory(topic, lang.Label, story))
			if save {
				return app.saveItem(cmd, intelligence.StoryItem(topic, lang.Value, story))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "What the story is about")
	cmd.Flags().StringVar(&language, "language", "", "Story language, e.g. hindi, tamil, english")
	cmd.Flags().BoolVar(&save, "save", false, "Save the story to the library")
	return cmd
}

func newAskCmd(app *App) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the teaching assistant; without a question, start a chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.TrimSpace(strings.Join(args, " "))

			if question == "" {
				if !app.interactive() {
					return errors.New("ask needs a question when not running in a terminal")
				}
				_, err := tea.NewProgram(newChatView(ctx, app), tea.WithContext(ctx)).Run()
				return err
			}

			user := domain.ChatMessage{Role: domain.RoleUser, Content: question, Timestamp: app.now()}
			stop := app.spinner(cmd, "Thinking...")
			reply, err := app.Assistant.Ask(ctx, nil, question)
			stop()
			out := cmd.OutOrStdout()
			if reply.Content != "" {
				fmt.Fprint(out, formatter.FormatChat([]domain.ChatMessage{user, reply}))
			}
			if err != nil {
				return err
			}
			if save {
				item, err := intelligence.ConversationItem([]domain.ChatMessage{user, reply}, app.now())
				if err != nil {
					return err
				}
				return app.saveItem(cmd, item)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the exchange to the library")
	return cmd
}

func newVisualAidCmd(app *App) *cobra.Command {
	var (
		topic      string
		visualType string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "visual-aid [topic]",
		Short: "Design a diagram, chart or illustration for a topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				topic = args[0]
			}
			stop := app.spinner(cmd, "Designing visual aid...")
			aid, err := app.VisualAids.Generate(cmd.Context(), topic, visualType)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatVisualAid(aid))
			if save {
				return app.saveItem(cmd, intelligence.VisualAidItem(aid))
			}
			return nil
		},
	}

	types := domain.VisualTypes()
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = t.Value
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Concept to illustrate")
	cmd.Flags().StringVar(&visualType, "type", "diagram", "One of: "+strings.Join(values, ", "))
	cmd.Flags().BoolVar(&save, "save", false, "Save the visual aid to the library")
	return cmd
}

func newReadingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reading",
		Short: "Reading assessment: passages and read-aloud analysis",
	}
	cmd.AddCommand(newReadingPassageCmd(app), newReadingAnalyzeCmd(app))
	return cmd
}

func newReadingPassageCmd(app *App) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "passage",
		Short: "Show the passage a student reads aloud",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := domain.LookupLanguage(language)
			if err != nil {
				return err
			}
			p, err := domain.PassageFor(lang.Value)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPassage(lang, p))
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "english", "Passage language")
	return cmd
}

func newReadingAnalyzeCmd(app *App) *cobra.Command {
	var (
		language   string
		transcript string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a read-aloud transcript against the language passage",
		Long: `Score a read-aloud transcript against the passage for --language.
Without --transcript a sample transcript stands in for the recording.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := domain.NewReadingSession(language)
			if err != nil {
				return err
			}
			now := app.now()
			if err := session.StartRecording(now); err != nil {
				return err
			}
			if err := session.StopRecording(now); err != nil {
				return err
			}
			if strings.TrimSpace(transcript) == "" {
				transcript = intelligence.SimulatedTranscript(language)
			}
			if err := session.BeginAnalysis(transcript); err != nil {
				return err
			}

			stop := app.spinner(cmd, "Analyzing reading...")
			result, err := app.Reading.Analyze(ctx, transcript, language)
			stop()
			if err != nil {
				_ = session.Fail(err)
				return err
			}
			if err := session.Complete(result); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReadingAssessment(result))
			if save {
				item, err := intelligence.ReadingItem(result)
				if err != nil {
					return err
				}
				return app.saveItem(cmd, item)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "english", "Language of the passage that was read")
	cmd.Flags().StringVar(&transcript, "transcript", "", "What the student read, as text")
	cmd.Flags().BoolVar(&save, "save", false, "Save the assessment to the library")
	return cmd
}

// spinner shows a spinner on stderr in interactive sessions. The returned
// function stops it.
func (a *App) spinner(cmd *cobra.Command, message string) func() {
	if !a.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), message)
}

// saveItem stores item for the current user and reports the new id.
func (a *App) saveItem(cmd *cobra.Command, item *domain.LibraryItem) error {
	item.UserID = a.userID()
	id, err := a.Library.Save(cmd.Context(), item)
	if err != nil {
		return fmt.Errorf("saving to library: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", formatter.StyleGreen.Render("Saved to library:"), id)
	return nil
}
