package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskvoice/internal/bootstrap"
	"taskvoice/internal/chat"
	"taskvoice/internal/config"
	"taskvoice/internal/repl"
	"taskvoice/internal/storage"
	"taskvoice/internal/voice"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		audioPath string
		yes       bool
	)
	cmd := &cobra.Command{
		Use:   "ask [message...]",
		Short: "Send one message and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" && audioPath == "" {
				return fmt.Errorf("ask needs a message or --audio")
			}
			ctx := cmd.Context()
			res, err := bootstrap.Build(ctx, a.cfg, a.log, a.buildOpts)
			if err != nil {
				return err
			}
			defer res.Store.Close()

			var msg chat.Message
			if audioPath != "" {
				clip, err := voice.ReadClip(audioPath)
				if err != nil {
					return err
				}
				msg, err = res.Orch.RunAudio(ctx, clip.Data, clip.MIMEType)
				if err != nil {
					return err
				}
			} else {
				msg, err = res.Orch.RunText(ctx, text)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			th := repl.NewTheme(out)
			fmt.Fprintf(out, "%s %s\n", th.Assistant.Render(res.AssistantName+":"), msg.Content)
			if res.Orch.State().Pending == nil {
				return nil
			}
			if !yes {
				fmt.Fprintln(out, th.Pending.Render(res.I18n.T("cli.pending_skipped")))
				return nil
			}
			ack, err := res.Orch.Confirm(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", th.Assistant.Render(res.AssistantName+":"), ack.Content)
			return res.Orch.State().LastError
		},
	}
	cmd.Flags().StringVar(&audioPath, "audio", "", "Send an audio file instead of text")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm a proposed change without asking")
	return cmd
}

func newTasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			tasks, err := store.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			repl.WriteTasks(cmd.OutOrStdout(), a.i18n(), repl.NewTheme(cmd.OutOrStdout()), tasks)
			return nil
		},
	}
}

func newMissionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "missions",
		Short: "List missions and their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			missions, err := store.ListMissions(cmd.Context())
			if err != nil {
				return err
			}
			repl.WriteMissions(cmd.OutOrStdout(), a.i18n(), repl.NewTheme(cmd.OutOrStdout()), missions, time.Now())
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the personal profile used in prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			p, err := store.LoadProfile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.i18n().T("cli.profile", p.Name, p.Occupation, p.Locale))
			return nil
		},
	}

	var name, occupation, locale string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			p, err := store.LoadProfile(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = name
			}
			if flags.Changed("occupation") {
				p.Occupation = occupation
			}
			if flags.Changed("locale") {
				p.Locale = locale
			}
			if err := store.SaveProfile(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.i18n().T("cli.profile_saved"))
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "Your name")
	set.Flags().StringVar(&occupation, "occupation", "", "Your occupation")
	set.Flags().StringVar(&locale, "locale", "", "Reply language, e.g. en or zh-CN")
	cmd.AddCommand(set)
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import tasks and missions from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			res, err := storage.ImportSeedFile(cmd.Context(), args[0], store)
			if err != nil {
				return err
			}
			a.log.Info().Int("tasks", res.Tasks).Int("missions", res.Missions).Int("skipped", res.Skipped).Msg("seed imported")
			fmt.Fprintln(cmd.OutOrStdout(), a.i18n().T("cli.imported", res.Tasks, res.Missions, res.Skipped))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [dir]",
		Short: "Write a project config scaffold to <dir>/.taskvoice/config.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			} else if wd, err := os.Getwd(); err == nil {
				dir = wd
			}
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.i18n().T("cli.config_written", path))
			return nil
		},
	})
	return cmd
}
