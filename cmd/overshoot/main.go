package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/overshoot/internal/analysis"
	"github.com/san-kum/overshoot/internal/config"
	"github.com/san-kum/overshoot/internal/experiment"
	"github.com/san-kum/overshoot/internal/export"
	"github.com/san-kum/overshoot/internal/looper"
	"github.com/san-kum/overshoot/internal/storage"
	"github.com/san-kum/overshoot/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool
	// Run settings
	configFile  string
	frameMillis float64
	maxFrames   int
	idScheme    string
	noSave      bool
	// Overshoot overrides, applied to every overshoot oscillator
	velocity  float64
	amplitude float64
	frequency float64
	decay     float64
	// Live view
	frameRate int
	theme     string
	// Sweep
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	workers    int
	// Output
	outFile   string
	showPhase bool
	braille   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "overshoot",
		Short: "decaying oscillator lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(os.Stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := viz.Pick()
			if err != nil || name == "" {
				return err
			}
			return runLive(cmd, []string{name})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".overshoot", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run oscillators headless until they settle",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run oscillators with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one overshoot parameter and compare metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "decay", "velocity, amplitude, frequency or decay")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 8, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "parallel runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and decay analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&showPhase, "phase", false, "also draw a phase portrait")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run traces as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render the braille overlay instead of vector paths")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tOSCILLATORS")
			for _, name := range config.ListPresets() {
				var parts []string
				for _, o := range config.Presets[name].Oscillators {
					parts = append(parts, describe(o))
				}
				fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(parts, "; "))
			}
			return w.Flush()
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path] [preset]",
		Short: "write a starter config file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if len(args) == 2 {
				if cfg = config.GetPreset(args[1]); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", args[1], config.ListPresets())
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&frameMillis, "frame-ms", config.DefaultFrameMillis, "frame delta in milliseconds")
	cmd.Flags().IntVar(&maxFrames, "max-frames", config.DefaultMaxFrames, "frame cap")
	cmd.Flags().StringVar(&idScheme, "ids", config.IDSequence, "id scheme (sequence, uuid)")
	cmd.Flags().Float64Var(&velocity, "velocity", config.DefaultVelocity, "overshoot velocity")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "overshoot amplitude")
	cmd.Flags().Float64Var(&frequency, "freq", config.DefaultFrequency, "overshoot frequency (Hz)")
	cmd.Flags().Float64Var(&decay, "decay", config.DefaultDecay, "overshoot decay rate")
}

// loadConfig resolves the run config: a preset argument or config file,
// then any flags set on the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if len(args) > 0 {
		name = args[0]
		if cfg = config.GetPreset(name); cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) == 0 {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("frame-ms") {
		cfg.FrameMillis = frameMillis
	}
	if flags.Changed("max-frames") {
		cfg.MaxFrames = maxFrames
	}
	if flags.Changed("ids") {
		cfg.IDScheme = idScheme
	}
	for i := range cfg.Oscillators {
		o := &cfg.Oscillators[i]
		if o.Kind != config.KindOvershoot {
			continue
		}
		if flags.Changed("velocity") {
			o.Velocity = velocity
		}
		if flags.Changed("amplitude") {
			o.Amplitude = amplitude
		}
		if flags.Changed("freq") {
			o.Frequency = frequency
		}
		if flags.Changed("decay") {
			o.Decay = decay
		}
	}
	return cfg, name, cfg.Validate()
}

func describe(o config.OscillatorSpec) string {
	label := o.Name
	if label == "" {
		label = o.Kind
	}
	if o.Kind == config.KindSpring {
		return fmt.Sprintf("%s spring ω=%.1f ζ=%.2f →%.1f", label, o.AngularFrequency, o.Damping, o.Target)
	}
	return fmt.Sprintf("%s v=%.1f a=%.1f f=%.1fHz d=%.1f", label, o.Velocity, o.Amplitude, o.Frequency, o.Decay)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%d oscillators)...\n", name, len(cfg.Oscillators))
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d (%.2fs simulated)\n", result.Frames, exp.Engine().ElapsedMillis()/1000)
	if !exp.Engine().IsIdle() {
		fmt.Printf("stopped at frame cap with %d oscillators still active\n", exp.Engine().ActiveCount())
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal.
	setupLogging(io.Discard)

	fps := frameRate
	if fps <= 0 {
		fps = cfg.FrameRate
	}
	src := looper.NewTea(fps)
	exp, err := experiment.New(cfg, experiment.WithSource(src))
	if err != nil {
		return err
	}
	viz.CurrentTheme = viz.GetTheme(theme)
	return viz.Run(exp, src)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if sweepSteps < 2 {
		return fmt.Errorf("need at least 2 steps, got %d", sweepSteps)
	}

	values := make([]float64, sweepSteps)
	for i := range values {
		values[i] = sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepSteps-1)
	}

	points, err := experiment.Sweep(context.Background(), cfg, sweepParam, values, workers)
	if err != nil {
		return err
	}

	fmt.Printf("sweep of %s over %s\n\n", sweepParam, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tSETTLE\tCROSSINGS\n", strings.ToUpper(sweepParam))
	settle := make([]float64, len(points))
	for i, p := range points {
		settle[i] = p.Metrics["settle_time"]
		fmt.Fprintf(w, "%.3f\t%.4f\t%.3fs\t%.0f\n", p.Param, p.Metrics["peak"], p.Metrics["settle_time"], p.Metrics["zero_crossings"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(settle, asciigraph.Height(8), asciigraph.Caption("settle time (s)")))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tOSCILLATORS\tPEAK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			len(run.IDs),
			run.Metrics["peak"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	res, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if res.Frames == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", res.Frames)

	const maxPlots = 6
	for i, id := range res.IDs {
		if i == maxPlots {
			fmt.Printf("(%d more oscillators not shown)\n", len(res.IDs)-maxPlots)
			break
		}
		graph := asciigraph.Plot(res.Column(id),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(id),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	res, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if res.Frames < 2 || len(res.IDs) == 0 {
		return fmt.Errorf("no data")
	}

	sampleRate := 1000 / meta.FrameMillis
	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("sample rate: %.1f hz\n\n", sampleRate)

	for _, id := range res.IDs {
		data := res.Column(id)

		ps := analysis.PowerSpectrum(data)
		if len(ps) > 4 {
			graph := asciigraph.Plot(ps[1:max(len(ps)/2, 2)],
				asciigraph.Height(8),
				asciigraph.Width(60),
				asciigraph.Caption("power spectrum "+id),
			)
			fmt.Println(graph)
		}

		freq := analysis.DominantFrequency(data, sampleRate)
		fmt.Printf("%s dominant frequency: %.3f hz", id, freq)
		if freq > 0 {
			fmt.Printf(" (period %.3f s)", 1.0/freq)
		}
		fmt.Println()
		if d, ok := analysis.EstimateDecay(res.Times, data); ok {
			fmt.Printf("%s decay rate: %.3f /s (half-life %.3f s)\n", id, d, math.Ln2/d)
		}

		if showPhase {
			fmt.Println(analysis.NewPhasePortrait(res.Times, data).ASCII(60, 20))
		}
		fmt.Println()
	}
	return nil
}

func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.ExportJSON(w, meta.Name, meta.FrameMillis, res)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.ExportCSV(w, res)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	var svg string
	if braille {
		peak := 0.0
		for _, row := range res.Values {
			for _, v := range row {
				peak = math.Max(peak, math.Abs(v))
			}
		}
		c := viz.NewCanvas(80, 20)
		for _, id := range res.IDs {
			c.PlotSeries(res.Column(id), -peak, peak)
		}
		svg = export.CanvasToSVG(c, 4)
	} else {
		svg = export.ResultToSVG(res, 800, 300)
	}
	if svg == "" {
		return fmt.Errorf("not enough samples to draw")
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.WriteString(w, svg)
	return err
}
