package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orrery/internal/analysis"
	"github.com/san-kum/orrery/internal/automation"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/experiment"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/optim"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/storage"
	"github.com/san-kum/orrery/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	integrator string
	gravity    float64
	timestep   float64
	steps      int
	seed       int64
	every      int
	logFile    string
	theme      string
	frameRate  int
	autostart  bool
	body       int
	output     string
	// sweep and monte carlo
	scaleMin float64
	scaleMax float64
	points   int
	trials   int
	spawns   int
	// tune
	rtols     []float64
	timesteps []float64
	metric    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orrery",
		Short: "n-body gravity simulator",
		RunE:  runLive,
	}
	addSimFlags(rootCmd)
	addLiveFlags(rootCmd)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orrery", "data directory")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write engine logs to file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	addLiveFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 365, "number of timesteps")
	runCmd.Flags().IntVar(&every, "every", 1, "record every nth step")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body's coordinates",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&body, "body", 1, "body index")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&body, "body", 1, "body index")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.svg)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same system",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().IntVar(&steps, "steps", 365, "number of timesteps")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tBODIES\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(p.Bodies), p.Description)
			}
			return w.Flush()
		},
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list available integrators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			registry := experiment.NewRegistry()
			for _, name := range registry.ListIntegrators() {
				kind := "fixed"
				if registry.IsAdaptive(name) {
					kind = "adaptive"
				}
				fmt.Printf("  %-10s %s\n", name, kind)
			}
		},
	}

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a preset across a range of G",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset")
	sweepCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	sweepCmd.Flags().IntVar(&steps, "steps", 365, "timesteps per run")
	sweepCmd.Flags().Float64Var(&scaleMin, "min", 0.5, "smallest G scale")
	sweepCmd.Flags().Float64Var(&scaleMax, "max", 2.0, "largest G scale")
	sweepCmd.Flags().IntVar(&points, "points", 7, "number of G values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "check stability with random extra bodies",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset")
	monteCarloCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	monteCarloCmd.Flags().IntVar(&steps, "steps", 365, "timesteps per trial")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().IntVar(&spawns, "spawns", 3, "random bodies per trial")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "base seed (0 for time based)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search tolerance and timestep",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&steps, "steps", 365, "timesteps per run")
	tuneCmd.Flags().Float64SliceVar(&rtols, "rtols", []float64{1e-4, 1e-6, 1e-8}, "relative tolerances to try")
	tuneCmd.Flags().Float64SliceVar(&timesteps, "timesteps", []float64{physics.Day / 4, physics.Day}, "timesteps to try")
	tuneCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimize")

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, compareCmd, presetsCmd, integratorsCmd, scriptCmd, sweepCmd, monteCarloCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset system")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Float64Var(&gravity, "g", physics.G, "gravitational constant")
	cmd.Flags().Float64Var(&timestep, "timestep", physics.Day, "timestep in seconds")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 for time based)")
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&theme, "theme", "deepspace", "color theme")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().BoolVar(&autostart, "start", false, "start running immediately")
}

// buildConfig loads --config or --preset, then applies the flags the user
// actually set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, err = config.Resolve(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}

	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("g") {
		cfg.G = gravity
	}
	if cmd.Flags().Changed("timestep") {
		cfg.Timestep = timestep
	}
	switch {
	case cmd.Flags().Changed("seed"):
		cfg.Seed = seed
	case cfg.Seed == 0:
		cfg.Seed = time.Now().UnixNano()
	}
	if cmd.Flags().Changed("fps") {
		cfg.FPS = frameRate
	}
	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}

	// the terminal belongs to the program, so logs go to a file or nowhere
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "orrery")
		if err != nil {
			return err
		}
		defer f.Close()
		exp.Engine().SetLogger(log.Default())
	}

	viz.SetTheme(theme)

	m := viz.NewModel(exp.Engine(), cfg.Spawner(), viz.Options{
		Title:     cfg.Preset,
		FPS:       cfg.FPS,
		Zoom:      cfg.Zoom,
		ViewAU:    cfg.ViewAU,
		Autostart: autostart,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}
	engine := exp.Engine()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		engine.SetLogger(log.New(f, "orrery ", log.LstdFlags))
	}

	rec := storage.NewRecorder(every)
	rec.OnStep(engine.State(), engine.Time())
	engine.AddObserver(rec)
	exp.Setup(registry.DefaultMetrics(engine))

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s with %s...\n", cfg.Preset, cfg.Integrator)
	start := time.Now()

	result, err := exp.Run(ctx, steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Preset:     cfg.Preset,
		Seed:       cfg.Seed,
		Timestep:   cfg.Timestep,
		Steps:      result.Steps,
		Integrator: cfg.Integrator,
		Bodies:     result.Bodies,
		Metrics:    result.Metrics,
	}
	for _, s := range engine.Snapshots() {
		meta.Colors = append(meta.Colors, s.Color)
	}

	runID, err := st.Save(meta, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.1f days)\n", result.Steps, result.Time/physics.Day)
	if result.Err != nil {
		fmt.Printf("halted: %v\n", result.Err)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tTIMESTEP\tINTEG\tBODIES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0fs\t%s\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Timestep,
			run.Integrator,
			len(run.Bodies),
		)
	}

	return w.Flush()
}

// relativeOrbit returns body's position relative to the primary in AU, with
// the matching sample times. Samples before the body existed are skipped.
func relativeOrbit(states [][]float64, times []float64, b int) (xs, ys, ts []float64) {
	k := 4 * b
	for i, s := range states {
		if k+1 >= len(s) {
			continue
		}
		xs = append(xs, (s[k]-s[0])/physics.AU)
		ys = append(ys, (s[k+1]-s[1])/physics.AU)
		ts = append(ts, times[i])
	}
	return xs, ys, ts
}

func bodyName(meta *storage.RunMetadata, b int) string {
	if b >= 0 && b < len(meta.Bodies) {
		return meta.Bodies[b]
	}
	return fmt.Sprintf("body %d", b)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	xs, ys, _ := relativeOrbit(states, times, body)
	if len(xs) == 0 {
		return fmt.Errorf("no data to plot for body %d", body)
	}

	name := bodyName(meta, body)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("body: %s\n", name)
	fmt.Printf("samples: %d\n\n", len(xs))

	dist := make([]float64, len(xs))
	for i := range xs {
		dist[i] = math.Hypot(xs[i], ys[i])
	}

	series := []struct {
		data    []float64
		caption string
	}{
		{xs, name + " x (AU)"},
		{ys, name + " y (AU)"},
		{dist, name + " distance from primary (AU)"},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
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

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	xs, _, ts := relativeOrbit(states, times, body)
	if len(xs) < 4 {
		return fmt.Errorf("not enough samples for body %d", body)
	}

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("body: %s\n\n", bodyName(meta, body))

	fmt.Println(analysis.PhasePortraitToASCII(analysis.OrbitPortrait(states, body), 60, 24))

	ps := analysis.PowerSpectrum(xs)
	if len(ps) > 8 {
		graph := asciigraph.Plot(ps[1:len(ps)/4],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	dt := (ts[len(ts)-1] - ts[0]) / float64(len(ts)-1)
	if p := analysis.DominantPeriod(xs, dt); p > 0 {
		fmt.Printf("spectral period: %.2f days\n", p/physics.Day)
	} else {
		fmt.Println("spectral period: run too short")
	}
	if p := analysis.CrossingPeriod(times, states, body); p > 0 {
		fmt.Printf("crossing period: %.2f days\n", p/physics.Day)
	} else {
		fmt.Println("crossing period: fewer than two orbits")
	}

	return nil
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	return storage.WriteCSV(out, rec)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	return storage.ExportJSON(out, *meta, rec)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = runID + ".svg"
	}
	svg := export.TrajectoriesToSVG(export.Paths(states, meta.Bodies, meta.Colors), 800, 800)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("comparing integrators on %s for %d steps\n\n", cfg.Preset, steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tWALL\tENERGY DRIFT\tMOMENTUM DRIFT\tCLOSURE (AU)\tSTATUS")

	for _, name := range names {
		run := *cfg
		run.Integrator = name
		exp, err := experiment.New(&run, registry)
		if err != nil {
			return err
		}
		exp.Setup(registry.DefaultMetrics(exp.Engine()))

		start := time.Now()
		result, err := exp.Run(ctx, steps)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		status := "ok"
		if result.Err != nil {
			status = "halted"
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.3e\t%.3e\t%.4f\t%s\n",
			name,
			result.Steps,
			elapsed.Round(time.Millisecond),
			result.Metrics["energy_drift"],
			result.Metrics["momentum_drift"],
			result.Metrics["orbit_closure_1"]/physics.AU,
			status,
		)
	}

	return w.Flush()
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := scenario.Build(registry)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	outcomes, err := automation.RunScenario(ctx, scenario, exp)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tACTION\tSTEPS\tBODIES\tDAY\tRESULT")
	for _, o := range outcomes {
		res := "ok"
		if o.Err != nil {
			res = o.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.1f\t%s\n", o.Action, o.Kind, o.Steps, o.Bodies, o.Time/physics.Day, res)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	sweep := &automation.ParameterSweep{
		Preset:     preset,
		Integrator: integrator,
		ScaleMin:   scaleMin,
		ScaleMax:   scaleMax,
		NumSteps:   points,
		Steps:      steps,
	}
	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCALE\tG\tENERGY DRIFT\tSTABILITY\tCLOSURE (AU)\tSTATUS")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "halted"
		}
		fmt.Fprintf(w, "%.3f\t%.4e\t%.3e\t%.3f\t%.4f\t%s\n", r.Scale, r.G, r.EnergyDrift, r.Stability, r.Closure/physics.AU, status)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	mc := &automation.MonteCarloConfig{
		Preset:     preset,
		Integrator: integrator,
		Spawns:     spawns,
		NumTrials:  trials,
		Steps:      steps,
		Seed:       seed,
	}
	results, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("stable: %d (%.1f%%)\n", stable, 100*float64(stable)/float64(max(1, len(results))))
	fmt.Printf("unstable: %d\n", unstable)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	g := optim.NewGridSearch([]string{"rtol", "timestep"}, [][]float64{rtols, timesteps}, steps)
	params, best, err := optim.Tune(ctx, cfg, experiment.NewRegistry(), g, metric)
	if err != nil {
		return err
	}
	if params == nil {
		return fmt.Errorf("no run completed")
	}

	fmt.Printf("best %s: %.4g\n", metric, best)
	fmt.Printf("  rtol: %g\n", params["rtol"])
	fmt.Printf("  timestep: %gs\n", params["timestep"])
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
