package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formmodal/internal/catalogserver"
	"github.com/goliatone/go-formmodal/pkg/formstate"
	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/renderers/html"
	"github.com/goliatone/go-formmodal/pkg/renderers/tui"
	"github.com/goliatone/go-formmodal/pkg/resolver"
	"github.com/goliatone/go-formmodal/pkg/validation"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known modal names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range a.registry.Names(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var initPath string
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print the resolved configuration and initial form state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, ok := a.registry.Get(ctx, args[0])
			if !ok {
				return fmt.Errorf("formmodal: modal %q not found", args[0])
			}
			initData, err := readDocument(initPath)
			if err != nil {
				return err
			}
			result, err := resolver.Resolve(ctx, cfg, initData, resolver.WithTimeout(a.cfg.HookTimeout))
			if err != nil {
				a.logger.Warn("formmodal: beforeShow failed", "name", args[0], "err", err)
			}
			state := formstate.Init(result.Config.Fields, nil, result.Extra)
			return writeJSON(cmd, map[string]any{
				"config": result.Config,
				"extra":  result.Extra,
				"values": state.Snapshot(),
			})
		},
	}
	cmd.Flags().StringVar(&initPath, "init", "", "JSON or YAML file with initial data")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var dataPath string
	cmd := &cobra.Command{
		Use:   "validate NAME",
		Short: "Validate form values against a modal's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := a.registry.Get(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("formmodal: modal %q not found", args[0])
			}
			values, err := readDocument(dataPath)
			if err != nil {
				return err
			}
			engine := validation.New(validation.WithLogger(a.logger))
			messages := engine.Validate(cfg.Fields, values)
			for _, message := range messages {
				fmt.Fprintln(cmd.OutOrStdout(), message)
			}
			if len(messages) > 0 {
				return fmt.Errorf("formmodal: %d validation error(s)", len(messages))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "JSON or YAML file with form values")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		initPath   string
		outputPath string
		stylesheet string
	)
	cmd := &cobra.Command{
		Use:   "render NAME",
		Short: "Render a modal as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireModal(ctx, args[0]); err != nil {
				return err
			}
			initData, err := readDocument(initPath)
			if err != nil {
				return err
			}
			options, err := a.htmlOptions()
			if err != nil {
				return err
			}
			if stylesheet != "" {
				options = append(options, html.WithStylesheet(stylesheet))
			}
			host, err := html.New(options...)
			if err != nil {
				return err
			}
			m := a.newModal(host)
			m.Show(ctx, args[0], initData)

			var buf bytes.Buffer
			if err := host.Render(ctx, &buf); err != nil {
				return err
			}
			if outputPath == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("formmodal: write %s: %w", outputPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "modal written to %s\n", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&initPath, "init", "", "JSON or YAML file with initial data")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&stylesheet, "stylesheet", "", "stylesheet path or URL to inline")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var (
		initPath string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Fill in a modal interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireModal(ctx, args[0]); err != nil {
				return err
			}
			initData, err := readDocument(initPath)
			if err != nil {
				return err
			}
			host, err := tui.New(
				tui.WithLogger(a.logger),
				tui.WithOutputFormat(tui.OutputFormat(strings.ToLower(format))),
			)
			if err != nil {
				return err
			}
			m := a.newModal(host)
			pending := m.Show(ctx, args[0], initData)
			if err := host.Run(ctx, m); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
				return err
			}
			result, err := pending.Wait(ctx)
			if err != nil {
				return err
			}
			out, err := host.Format(result)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&initPath, "init", "", "JSON or YAML file with initial data")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "result format: json, form or pretty")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configuration directory and HTML previews",
		Long: `Serve the configuration directory over HTTP:

  GET  /healthz
  GET  /modals/list       JSON array of configuration files
  GET  /modals/{file}     one configuration file
  GET  /preview/{name}    rendered modal (query string is the initial data)
  POST /preview/{name}    submit a preview form`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Addr
			}
			if watch {
				go func() {
					if err := a.registry.Watch(ctx, a.cfg.Dir); err != nil {
						a.logger.Warn("formmodal: watcher stopped", "err", err)
					}
				}()
			}
			hostOptions, err := a.htmlOptions()
			if err != nil {
				return err
			}
			a.registry.Start(ctx)
			srv := catalogserver.New(a.cfg.Dir,
				catalogserver.WithLogger(a.logger),
				catalogserver.WithHostOptions(hostOptions...),
				catalogserver.WithRegistry(a.registry),
				catalogserver.WithModalOptions(
					modal.WithWidgets(a.widgets),
					modal.WithHookTimeout(a.cfg.HookTimeout),
				),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from FORMMODAL_ADDR)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload configurations when files change")
	return cmd
}
