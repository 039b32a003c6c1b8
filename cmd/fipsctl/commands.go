package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/fipsctl/internal/certs"
	"github.com/danmuck/fipsctl/internal/config"
	"github.com/danmuck/fipsctl/internal/fips"
	"github.com/danmuck/fipsctl/internal/logging"
	"github.com/danmuck/fipsctl/internal/paths"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const defaultFipsGitPort = "36534"

var errTunnelExited = errors.New("stunnel exited")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fipsctl",
		Short:         "Bootstrap the stunnel FIPS tunnel for git-proxy traffic",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
		},
	}
	root.AddCommand(newStartCmd(), newRenderCmd(), newFetchCertCmd())
	return root
}

func newStartCmd() *cobra.Command {
	var (
		configPath  string
		fipsMode    bool
		fipsGitPort string
		detach      bool
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Activate FIPS mode and supervise the tunnel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = mergeStartOptions(cmd.Flags(), fipsMode, fipsGitPort, cfg)
			if !cfg.FipsEnabled() {
				log.Info().Msg("fips mode not enabled, nothing to start")
				return nil
			}

			activator, err := fips.NewActivator(fips.ActivatorConfig{})
			if err != nil {
				return err
			}
			registry := &fips.ProcessRegistry{}
			if err := activator.Activate(cfg, registry); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"stunnel active: accept=%s config=%s\n", *cfg.FipsGitPort, activator.Layout().ConfigFile)

			if detach {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return supervise(ctx, registry.Handles())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "runtime config file (.toml, .yaml)")
	cmd.Flags().BoolVar(&fipsMode, "fips", false, "request FIPS mode when the config does not set it")
	cmd.Flags().StringVar(&fipsGitPort, "fips-git-port", defaultFipsGitPort, "local port stunnel accepts git traffic on")
	cmd.Flags().BoolVar(&detach, "detach", false, "return after launch instead of supervising the tunnel")
	return cmd
}

// mergeStartOptions folds --fips and --fips-git-port into cfg. Without an explicit
// --fips-git-port a port already present in cfg wins over the flag default.
func mergeStartOptions(flags *pflag.FlagSet, fipsMode bool, fipsGitPort string, cfg config.RuntimeConfig) config.RuntimeConfig {
	if !flags.Changed("fips") && !flags.Changed("fips-git-port") {
		return cfg
	}
	if !flags.Changed("fips-git-port") && cfg.FipsGitPort != nil {
		fipsGitPort = *cfg.FipsGitPort
	}
	return config.MergeFipsOptions(fipsMode, fipsGitPort, cfg)
}

// supervise blocks until a tunnel exits or ctx is cancelled, then stops the rest.
func supervise(ctx context.Context, handles []*exec.Cmd) error {
	if len(handles) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		h := h
		g.Go(func() error {
			if err := h.Wait(); err != nil {
				return fmt.Errorf("%w: %v", errTunnelExited, err)
			}
			return errTunnelExited
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		for _, h := range handles {
			if h.Process != nil {
				_ = h.Process.Kill()
			}
		}
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		log.Info().Msg("fipsctl shutting down tunnel")
		return nil
	}
	return err
}

func newRenderCmd() *cobra.Command {
	var (
		server      string
		fipsGitPort string
		platform    string
		home        string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the stunnel config that start would write",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				return &fips.MissingFieldError{Field: "server"}
			}
			p := paths.ParsePlatform(platform)
			var layout paths.Layout
			if home != "" {
				layout = paths.ResolveWithHome(p, home)
			} else {
				resolved, err := paths.Resolve(p)
				if err != nil {
					return err
				}
				layout = resolved
			}
			_, err := cmd.OutOrStdout().Write(fips.RenderConfig(p, layout, server, fipsGitPort))
			return err
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "automate server hostname")
	cmd.Flags().StringVar(&fipsGitPort, "fips-git-port", defaultFipsGitPort, "local port stunnel accepts git traffic on")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform (windows, linux, darwin); defaults to host")
	cmd.Flags().StringVar(&home, "home", "", "home directory to resolve paths under")
	return cmd
}

func newFetchCertCmd() *cobra.Command {
	var (
		server  string
		apiPort string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fetch-cert",
		Short: "Print the certificate chain the server presents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				return &fips.MissingFieldError{Field: "server"}
			}
			pemText, err := certs.TLSFetcher{Timeout: timeout}.Fetch(server, apiPort)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), pemText)
			return err
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "automate server hostname")
	cmd.Flags().StringVar(&apiPort, "api-port", fips.DefaultAPIPort, "server API port")
	cmd.Flags().DurationVar(&timeout, "timeout", certs.DefaultTimeout, "dial timeout")
	return cmd
}
