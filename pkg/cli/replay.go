package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cancelflow/pkg/client"
	"cancelflow/pkg/jsonx"
	"cancelflow/pkg/syncer"
	"cancelflow/pkg/wizard"
)

type ReplayOptions struct {
	*RootOptions
	URL    string
	UserID string
	Events string
}

func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Drive the cancellation wizard against a server from a file of events",
		Long:  replayHelp(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&opts.UserID, "user", "", "user ID (required)")
	cmd.Flags().StringVar(&opts.Events, "events", "", "path to the JSON events file (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("events")
	return cmd
}

func replayHelp() string {
	return fmt.Sprintf(`Mount a wizard session for --user against the server at --url, apply every
event from --events in order and print the final history.

The events file is a JSON array of objects named by "event", e.g.

  [{"event":"answer-found-job","foundJob":false},{"event":"decline-offer"}]

Survey count answers take one of %s; interview counts take one of %s.

Every change is saved to the server as it happens. A failed save rolls the
wizard back to the last saved history and is reported on stderr.`,
		joinRanges(wizard.CountRanges()), joinRanges(wizard.InterviewRanges()))
}

func joinRanges(rs []wizard.Range) string {
	s := make([]string, len(rs))
	for i, r := range rs {
		s[i] = strconv.Quote(string(r))
	}
	return strings.Join(s, ", ")
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	data, err := os.ReadFile(opts.Events)
	if err != nil {
		return err
	}
	events, err := wizard.ParseEvents(data)
	if err != nil {
		return err
	}
	rules, err := wizard.LoadRules(opts.Config.FlowRulesPath)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	notify := client.NotifierFunc(func(u client.Update) {
		if u.Result.Outcome == syncer.Failed {
			fmt.Fprintf(stderr, "save failed, back on %s: %v\n", u.View.Screen.Tag(), u.Result.Err)
		}
	})
	s, err := client.Mount(ctx, client.New(opts.URL), opts.UserID, rules, opts.Config.DownsellDiscountCents, notify)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "variant %s\n", s.Variant())
	for i, ev := range events {
		err := s.Apply(ctx, ev)
		s.Wait()
		if err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.EventName(), err)
		}
		v := s.View()
		if v.Total > 0 {
			fmt.Fprintf(out, "%-26s %s (step %d of %d)\n", ev.EventName(), v.Screen.Tag(), v.Step, v.Total)
		} else {
			fmt.Fprintf(out, "%-26s %s\n", ev.EventName(), v.Screen.Tag())
		}
	}

	final, err := jsonx.MarshalIndent(s.History(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(final))
	return nil
}
