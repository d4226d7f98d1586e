package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
	"github.com/MikeSquared-Agency/alibi/internal/generator"
	"github.com/MikeSquared-Agency/alibi/internal/wizard"
)

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	var popular int
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List scenarios, or the most popular ones with --popular",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client(cmd, "")
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if popular > 0 {
				rows, err := c.PopularScenarios(cmd.Context(), popular)
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "SCENARIO\tGENERATIONS")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%d\n", r.Scenario, r.TotalGenerations)
				}
				return nil
			}

			defs, err := c.Scenarios(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
			for _, d := range defs {
				fmt.Fprintf(tw, "%s\t%s %s\t%s\n", d.ID, d.Emoji, d.Title, d.Description)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&popular, "popular", 0, "Show the N most generated scenarios")
	return cmd
}

type generateFlags struct {
	scenario      string
	relationship  string
	timing        string
	transport     string
	context       string
	believability string
	formal        bool
	format        string
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill in the wizard and generate excuses",
		Long: `Fill in the wizard and generate excuses.

Flags not given are taken from the saved wizard state, so a previous
form can be tweaked one field at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(opts.statePath)
			if err != nil {
				return err
			}
			sess.state = sess.state.SetStep(wizard.StepScenario).Update(f.patch(cmd))

			// Walk the steps the way the wizard gates them.
			for sess.state.Step < wizard.StepResults {
				if !sess.state.CanAdvance() {
					return fmt.Errorf("step %d incomplete: %s", sess.state.Step, stepHint(sess.state))
				}
				if sess.state.Step == wizard.StepStyle {
					break
				}
				sess.state = sess.state.Next()
			}

			return generateAndSave(cmd, opts, sess, f.format, "")
		},
	}

	cmd.Flags().StringVar(&f.scenario, "scenario", "", "Scenario: "+joinEnum(excuse.Scenarios))
	cmd.Flags().StringVar(&f.relationship, "relationship", "", "Who is asking: "+joinEnum(excuse.Relationships))
	cmd.Flags().StringVar(&f.timing, "timing", "", "When it happened: "+joinEnum(excuse.Timings))
	cmd.Flags().StringVar(&f.transport, "transport", "", "How you travel: "+joinEnum(excuse.Transports))
	cmd.Flags().StringVar(&f.context, "context", "", "Personal context, up to 200 characters")
	cmd.Flags().StringVar(&f.believability, "believability", "", "Style: "+joinEnum(excuse.BelievabilityLevels))
	cmd.Flags().BoolVar(&f.formal, "formal", false, "Use formal tone")
	cmd.Flags().StringVar(&f.format, "format", string(excuse.FormatText), "Output format: "+joinEnum(excuse.FormatTypes))
	return cmd
}

func (f *generateFlags) patch(cmd *cobra.Command) wizard.FormPatch {
	var p wizard.FormPatch
	changed := cmd.Flags().Changed
	if changed("scenario") {
		v := excuse.Scenario(f.scenario)
		p.Scenario = &v
	}
	if changed("relationship") {
		v := excuse.Relationship(f.relationship)
		p.Relationship = &v
	}
	if changed("timing") {
		v := excuse.Timing(f.timing)
		p.Timing = &v
	}
	if changed("transport") {
		v := excuse.Transport(f.transport)
		p.Transport = &v
	}
	if changed("context") {
		p.PersonalContext = &f.context
	}
	if changed("believability") {
		v := excuse.BelievabilityLevel(f.believability)
		p.BelievabilityLevel = &v
	}
	if changed("formal") {
		v := excuse.ToneCasual
		if f.formal {
			v = excuse.ToneFormal
		}
		p.Tone = &v
	}
	return p
}

func newRegenerateCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Generate a fresh set of excuses from the saved form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(opts.statePath)
			if err != nil {
				return err
			}
			if sess.generationID == "" {
				return errors.New("nothing to regenerate, run generate first")
			}
			return generateAndSave(cmd, opts, sess, format, sess.generationID)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(excuse.FormatText), "Output format: "+joinEnum(excuse.FormatTypes))
	return cmd
}

func newTrackCmd(opts *rootOptions) *cobra.Command {
	var format, generationID string
	cmd := &cobra.Command{
		Use:       "track <copy|tweak|regenerate>",
		Short:     "Record what you did with the last excuses",
		Args:      cobra.ExactArgs(1),
		ValidArgs: enumStrings(excuse.ActionTypes),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := excuse.ActionType(args[0])
			if !action.Valid() {
				return fmt.Errorf("unknown action %q, want one of %s", args[0], joinEnum(excuse.ActionTypes))
			}
			sess, err := loadSession(opts.statePath)
			if err != nil {
				return err
			}
			if generationID == "" {
				generationID = sess.generationID
			}
			if generationID == "" {
				return errors.New("no generation to track, run generate first or pass --generation")
			}

			c := opts.client(cmd, sess.sessionID)
			c.Track(cmd.Context(), excuse.Interaction{
				GenerationID: generationID,
				ActionType:   action,
				FormatType:   excuse.FormatType(format),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "tracked %s for %s\n", action, generationID)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Format used: "+joinEnum(excuse.FormatTypes))
	cmd.Flags().StringVar(&generationID, "generation", "", "Generation id (defaults to the last one)")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the saved wizard state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := os.Remove(opts.statePath)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wizard reset")
			return nil
		},
	}
}

// generateAndSave runs a generation for sess, prints the variants and
// persists the new state. A non-empty previousID is tracked as a regenerate.
func generateAndSave(cmd *cobra.Command, opts *rootOptions, sess session, format, previousID string) error {
	ft := excuse.FormatType(format)
	if !ft.Valid() {
		return fmt.Errorf("unknown format %q, want one of %s", format, joinEnum(excuse.FormatTypes))
	}
	req, err := sess.state.Payload()
	if err != nil {
		return err
	}

	c := opts.client(cmd, sess.sessionID)
	res, err := c.Generate(cmd.Context(), req)
	if err != nil {
		sess.state = sess.state.WithError(err.Error())
		if saveErr := saveSession(opts.statePath, sess); saveErr != nil {
			return saveErr
		}
		return err
	}

	if previousID != "" {
		c.Track(cmd.Context(), excuse.Interaction{GenerationID: previousID, ActionType: excuse.ActionRegenerate})
	}

	sess.state = sess.state.WithResult(res.Excuses, res.GenerationID)
	sess.generationID = res.GenerationID
	sess.sessionID = c.SessionID()
	if err := saveSession(opts.statePath, sess); err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res, ft)
	return nil
}

func printResult(w io.Writer, res *generator.Result, format excuse.FormatType) {
	for i, v := range res.Excuses {
		fmt.Fprintf(w, "[%d] %s (%d/10)\n", i+1, v.BelievabilityLabel, v.BelievabilityScore)
		fmt.Fprintln(w, v.Render(format))
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "generation: %s\n", res.GenerationID)
}

func stepHint(s wizard.State) string {
	switch s.Step {
	case wizard.StepScenario:
		return "--scenario is required"
	case wizard.StepContext:
		return "--relationship and --timing are required"
	default:
		return "--believability is required"
	}
}

func enumStrings[T ~string](set []T) []string {
	out := make([]string, len(set))
	for i, v := range set {
		out[i] = string(v)
	}
	return out
}

func joinEnum[T ~string](set []T) string {
	return strings.Join(enumStrings(set), ", ")
}
