package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/spf13/cobra"
)

var prefCmd = &cobra.Command{
	Use:   "pref",
	Short: "Show or change workspace preferences",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		s := a.eng.Snapshot()
		st := theme.Current().S()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", st.Muted.Render("theme:"), s.Theme)
		fmt.Fprintf(out, "%s %s\n", st.Muted.Render("realtime:"), onOff(s.RealtimeEnabled()))
		return nil
	}),
}

var prefThemeCmd = &cobra.Command{
	Use:       "theme light|dark",
	Short:     "Set the workspace colour theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"light", "dark"},
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if _, err := theme.ByName(args[0]); err != nil {
			return err
		}
		if err := a.eng.Update(ctx, func(s *workspace.State) error {
			s.Theme = args[0]
			return nil
		}); err != nil {
			return err
		}
		return theme.Set(args[0])
	}),
}

var prefRealtimeCmd = &cobra.Command{
	Use:       "realtime on|off",
	Short:     "Turn rendering after every change on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		var on bool
		switch args[0] {
		case "on", "true":
			on = true
		case "off", "false":
		default:
			return fmt.Errorf("invalid value %q (want on or off)", args[0])
		}
		return a.eng.Update(ctx, func(s *workspace.State) error {
			s.SetRealtime(on)
			return nil
		})
	}),
}

func init() {
	prefCmd.AddCommand(prefThemeCmd, prefRealtimeCmd)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
