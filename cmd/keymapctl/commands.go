package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/victorgalvez56/nvim-voice/internal/config"
	"github.com/victorgalvez56/nvim-voice/internal/geometry"
	"github.com/victorgalvez56/nvim-voice/internal/keyboard"
	"github.com/victorgalvez56/nvim-voice/internal/layout"
	"github.com/victorgalvez56/nvim-voice/internal/logging"
	"github.com/victorgalvez56/nvim-voice/internal/metrics"
	"github.com/victorgalvez56/nvim-voice/internal/sequence"
)

func newLayoutCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the active layout's base layer",
		Long: `Load the most recent Keymapp revision and list every base-layer key that
does something, with its physical position. Falls back to the standard board
when Keymapp has no usable layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := a.service(false)
			st := svc.Reload(cmd.Context())
			keys := svc.Describe()

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), layoutJSON(st, keys))
			}

			out := cmd.OutOrStdout()
			a.printStatus(out, st)
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tHAND\tFINGER\tROW\tLABEL\tTAP\tHOLD\tLAYER")
			for _, k := range keys {
				hand, finger, row := "-", "-", "-"
				if k.HasPosition {
					hand, finger, row = k.Position.Hand.String(), k.Position.Finger.String(), k.Position.Row.String()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					k.Index, hand, finger, row, k.Label, dash(k.Tap), dash(k.Hold), layerString(k.HoldLayer))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newPositionsCmd() *cobra.Command {
	var segments bool

	cmd := &cobra.Command{
		Use:       "positions <geometry>",
		Short:     "Print the position table of a keyboard geometry",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: geometryIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := geometry.Parse(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			split := "no"
			if g.IsSplit() {
				split = "yes"
			}
			fmt.Fprintf(out, "%s: %d keys, split: %s\n\n", g.DisplayName(), g.KeyCount(), split)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if segments {
				fmt.Fprintln(w, "HAND\tROW\tINDICES")
				for _, s := range geometry.Segments(g) {
					fmt.Fprintf(w, "%s\t%s\t%d-%d\n", s.Hand, s.Row, s.Start, s.Start+s.Count-1)
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "INDEX\tHAND\tFINGER\tROW")
			for i, p := range geometry.Positions(g) {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, p.Hand, p.Finger, p.Row)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&segments, "segments", false, "group indices into row runs")
	return cmd
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		diagram bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <sequence>",
		Short: "Resolve a key sequence to physical keys",
		Long: `Tokenize a Neovim-style key sequence such as "<leader>ff" or ":w<CR>" and
show which base-layer keys it presses and at which steps.`,
		Example: `  keymapctl resolve '<leader>ff'
  keymapctl resolve --diagram 'gg=G'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.service(false)
			svc.Reload(cmd.Context())

			// One snapshot for every lookup below.
			l := svc.Layout()
			seq := args[0]
			hm := sequence.Resolve(seq, l)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resolveJSON(seq, l, hm))
			}

			out := cmd.OutOrStdout()
			if len(hm) == 0 {
				fmt.Fprintf(out, "no keys on %q match %q\n", l.Title, seq)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tLABEL\tPOSITION\tSTEPS")
			for _, idx := range hm.Indices() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", idx, labelAt(l, idx), positionAt(l, idx), joinInts(hm.Steps(idx)))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, sequence.Explain(seq, l))

			if diagram {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderDiagram(l, hm))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&diagram, "diagram", false, "draw the base layer with pressed keys highlighted")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the layout current and log every change",
		Long: `Reload the layout whenever the Keymapp database changes or a ZSA keyboard is
plugged in or out. Edits to the config file adjust the log level live.
Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.watchConfig(ctx)

			var opts []keyboard.Option
			if metricsAddr != "" {
				reg := metrics.NewRegistry("nvimvoice")
				opts = append(opts, keyboard.WithMetrics(metrics.NewLayout(reg)))
				if err := a.serveMetrics(ctx, metricsAddr, reg); err != nil {
					return err
				}
			}

			svc := a.service(true, opts...)
			a.logger.Info("watching keyboard layout",
				"database", a.cfg.KeymappDatabasePath(),
				"watch", a.cfg.Keymapp.Watch,
				"device", a.cfg.Device.Enabled,
			)

			err := svc.Run(ctx)
			a.printStatus(cmd.OutOrStdout(), svc.Status())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	return cmd
}

// serveMetrics exposes reg on addr until ctx is done.
func (a *app) serveMetrics(ctx context.Context, addr string, reg *metrics.Registry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.HTTPHandler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

// watchConfig applies log level changes from the config file until ctx is
// done. A missing config file is not watched.
func (a *app) watchConfig(ctx context.Context) {
	if _, err := os.Stat(a.configPath); err != nil {
		return
	}

	loader := config.NewLoader(a.configPath)
	if _, err := loader.Load(); err != nil {
		a.logger.Warn("config reload disabled", "error", err)
		return
	}
	loader.OnChange(func(c *config.Config) {
		level, err := logging.ParseLevel(c.Logging.Level)
		if err != nil {
			return
		}
		if level != a.logger.Level() {
			a.logger.SetLevel(level)
			a.logger.Info("log level changed", "level", logging.LevelString(level))
		}
	})
	if err := loader.Watch(); err != nil {
		a.logger.Warn("config reload disabled", "error", err)
		return
	}

	go func() {
		defer loader.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-loader.Errors():
				a.logger.Warn("config reload failed", "error", err)
			}
		}
	}()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keymapctl %s\n", version)
			fmt.Fprintf(out, "commit: %s\n", commit)
			fmt.Fprintf(out, "built: %s\n", buildDate)
			fmt.Fprintf(out, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// printStatus writes the layout status line, the fallback reason if any, and
// the log files when logging goes to a file.
func (a *app) printStatus(w io.Writer, st keyboard.Status) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(st.Title), mutedStyle.Render(fmt.Sprintf("(%s, %s, v%d)", st.Geometry.DisplayName(), st.Origin, st.Version)))
	if st.Reason != "" {
		fmt.Fprintln(w, warnStyle.Render("fallback: "+st.Reason))
	}

	switch a.cfg.Logging.Output {
	case "file", "both":
	default:
		return
	}
	files, err := a.logger.Files()
	if err != nil {
		a.logger.Debug("list log files", "error", err)
	}
	for _, f := range files {
		fmt.Fprintln(w, mutedStyle.Render("log: "+f))
	}
}

func geometryIDs() []string {
	ids := make([]string, 0, len(geometry.All))
	for _, g := range geometry.All {
		ids = append(ids, g.String())
	}
	return ids
}

func labelAt(l *layout.KeyboardLayout, idx int) string {
	base, ok := l.Base()
	if !ok {
		return "?"
	}
	key, ok := base.Key(idx)
	if !ok {
		return "?"
	}
	return key.DisplayLabel()
}

func positionAt(l *layout.KeyboardLayout, idx int) string {
	p, ok := l.PositionFor(idx)
	if !ok {
		return "-"
	}
	return p.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func layerString(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
