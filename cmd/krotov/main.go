package main

import (
	"context"
	"errors"
	"fmt"
	"math/cmplx"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/Basilewitsch/krotov/internal/analysis"
	"github.com/Basilewitsch/krotov/internal/automation"
	"github.com/Basilewitsch/krotov/internal/config"
	"github.com/Basilewitsch/krotov/internal/experiment"
	"github.com/Basilewitsch/krotov/internal/export"
	"github.com/Basilewitsch/krotov/internal/krotov"
	"github.com/Basilewitsch/krotov/internal/metrics"
	"github.com/Basilewitsch/krotov/internal/optim"
	"github.com/Basilewitsch/krotov/internal/result"
	"github.com/Basilewitsch/krotov/internal/storage"
	"github.com/Basilewitsch/krotov/internal/viz"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	dataDir        string
	t0             float64
	t1             float64
	points         int
	lambdaA        float64
	shapeName      string
	shapeRise      float64
	functionalName string
	propagatorName string
	iterStop       int
	stopJT         float64
	stopDelta      float64
	workers        int
	storeAll       bool
	verbose        bool
	// Model parameters
	omega float64 // qubit splitting (spinflip)
	amp   float64 // guess pulse amplitude
	delta float64 // intermediate level detuning (stirap)
	// Scan ranges
	scanLambdas []float64
	scanOmegas  []float64
	scanAmps    []float64
	scanDeltas  []float64
	// Config file
	configFile string
	// Preset name
	preset string
	// SVG output path for plot
	svgPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "krotov",
		Short: "quantum optimal control with Krotov's method",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".krotov", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "optimize a model's controls",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimization,
	}
	addProblemFlags(runCmd)
	addParamFlags(runCmd)
	runCmd.Flags().Float64Var(&lambdaA, "lambda-a", config.DefaultLambdaA, "krotov step size parameter")
	runCmd.Flags().IntVar(&iterStop, "iters", config.DefaultIterStop, "maximum iteration")
	runCmd.Flags().Float64Var(&stopJT, "stop-jt", 0.0, "stop when J_T drops below this value")
	runCmd.Flags().Float64Var(&stopDelta, "stop-delta", 0.0, "stop when the J_T improvement drops below this value")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers across objectives")
	runCmd.Flags().BoolVar(&storeAll, "store-all", false, "record the pulses of every iteration")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "print iteration progress")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	simulateCmd := &cobra.Command{
		Use:   "simulate [model]",
		Short: "propagate the guess controls without optimizing",
		Args:  cobra.ExactArgs(1),
		RunE:  simulateGuess,
	}
	addProblemFlags(simulateCmd)
	addParamFlags(simulateCmd)
	simulateCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	simulateCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [model]",
		Short: "grid search over problem parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  scanParams,
	}
	addProblemFlags(scanCmd)
	scanCmd.Flags().IntVar(&iterStop, "iters", config.DefaultIterStop, "maximum iteration")
	scanCmd.Flags().Float64SliceVar(&scanLambdas, "lambda-a", nil, "lambda_a values to scan")
	scanCmd.Flags().Float64SliceVar(&scanOmegas, "omega", nil, "omega values to scan")
	scanCmd.Flags().Float64SliceVar(&scanAmps, "amp", nil, "amp values to scan")
	scanCmd.Flags().Float64SliceVar(&scanDeltas, "delta", nil, "delta values to scan")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the stored controls of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write the plot to this SVG file instead")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "frequency analysis of the optimized controls",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "optimize with a live progress display",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)
	addParamFlags(liveCmd)
	liveCmd.Flags().Float64Var(&lambdaA, "lambda-a", config.DefaultLambdaA, "krotov step size parameter")
	liveCmd.Flags().IntVar(&iterStop, "iters", config.DefaultIterStop, "maximum iteration")
	liveCmd.Flags().Float64Var(&stopJT, "stop-jt", 0.0, "stop when J_T drops below this value")
	liveCmd.Flags().Float64Var(&stopDelta, "stop-delta", 0.0, "stop when the J_T improvement drops below this value")
	liveCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers across objectives")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario of optimizations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, simulateCmd, listCmd, exportCmd, scanCmd, presetsCmd,
		plotCmd, spectrumCmd, liveCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addProblemFlags registers the flags shared by every command that builds an
// optimization problem.
func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t0, "t0", config.DefaultT0, "start of the time grid")
	cmd.Flags().Float64Var(&t1, "t1", config.DefaultT1, "end of the time grid")
	cmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of grid points")
	cmd.Flags().StringVar(&shapeName, "shape", "blackman", "update shape")
	cmd.Flags().Float64Var(&shapeRise, "rise", config.DefaultRise, "rise time of the flattop shape")
	cmd.Flags().StringVar(&functionalName, "functional", "ss", "optimization functional (re, ss, sm)")
	cmd.Flags().StringVar(&propagatorName, "propagator", "expm", "time propagator")
}

// addParamFlags registers the model parameter flags. The scan command binds
// the same names to range-valued flags instead.
func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&omega, "omega", 1.0, "qubit splitting (spinflip)")
	cmd.Flags().Float64Var(&amp, "amp", 1.0, "guess pulse amplitude")
	cmd.Flags().Float64Var(&delta, "delta", 1.0, "intermediate level detuning (stirap)")
}

// resolveConfig builds the effective run configuration: defaults, then
// preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, model string) (config.Config, error) {
	cfg := *config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return cfg, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg.Model = model

	if cmd.Flags().Changed("t0") {
		cfg.T0 = t0
	}
	if cmd.Flags().Changed("t1") {
		cfg.T1 = t1
	}
	if cmd.Flags().Changed("points") {
		cfg.Points = points
	}
	if cmd.Flags().Changed("shape") {
		cfg.Shape = shapeName
	}
	if cmd.Flags().Changed("rise") {
		cfg.ShapeRise = shapeRise
	}
	if cmd.Flags().Changed("functional") {
		cfg.Functional = functionalName
	}
	if cmd.Flags().Changed("propagator") {
		cfg.Propagator = propagatorName
	}
	if cmd.Flags().Changed("lambda-a") {
		cfg.LambdaA = lambdaA
	}
	if cmd.Flags().Changed("iters") {
		cfg.IterStop = iterStop
	}
	if cmd.Flags().Changed("stop-jt") {
		cfg.StopJT = stopJT
	}
	if cmd.Flags().Changed("stop-delta") {
		cfg.StopDelta = stopDelta
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("store-all") {
		cfg.StoreAllPulses = storeAll
	}

	setParam := func(name string, value float64) {
		if cfg.Params == nil {
			cfg.Params = map[string]float64{}
		}
		cfg.Params[name] = value
	}
	if cmd.Flags().Changed("omega") {
		setParam("omega", omega)
	}
	if cmd.Flags().Changed("amp") {
		setParam("amp", amp)
	}
	if cmd.Flags().Changed("delta") {
		setParam("delta", delta)
	}

	return cfg, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	if verbose {
		exp.SetLogger(&krotov.Logger{Level: krotov.LogInfo, Out: os.Stderr})
	}

	fmt.Printf("optimizing %s...\n", cfg.Model)

	res, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	jt := exp.JT(res.LastTau())

	runID, err := st.Save(cfg.Model, cfg.Functional, cfg.Propagator, cfg.LambdaA, jt, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed())
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("iterations: %d\n", res.Iterations())
	fmt.Printf("final J_T: %.6f\n", jt)
	fmt.Println("\nfinal overlaps:")
	for i, tau := range res.LastTau() {
		fmt.Printf("  objective %d: |tau| = %.6f\n", i, cmplx.Abs(tau))
	}

	fmt.Println("\npulse metrics:")
	m := metrics.ForControls(res.Tlist, res.OptimizedControls)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}

	return nil
}

func simulateGuess(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	states, taus, err := exp.Simulate(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("model: %s\n", cfg.Model)
	for i, tau := range taus {
		fmt.Printf("objective %d: |tau| = %.6f, final norm = %.6f\n", i, cmplx.Abs(tau), states[i].Norm())
	}
	fmt.Printf("guess J_T: %.6f\n", exp.JT(taus))

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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tFUNC\tPROP\tLAMBDA\tITERS\tJ_T")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\t%.6f\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Functional,
			run.Propagator,
			run.LambdaA,
			run.Iterations,
			run.FinalJT,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.Export(args[0], os.Stdout)
}

func scanParams(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	params := []string{}
	ranges := [][]float64{}
	for _, dim := range []struct {
		name   string
		values []float64
	}{
		{"lambda_a", scanLambdas},
		{"omega", scanOmegas},
		{"amp", scanAmps},
		{"delta", scanDeltas},
	} {
		if len(dim.values) > 0 {
			params = append(params, dim.name)
			ranges = append(ranges, dim.values)
		}
	}
	if len(params) == 0 {
		return fmt.Errorf("no scan ranges given (use --lambda-a, --omega, --amp or --delta)")
	}

	total := 1
	for _, r := range ranges {
		total *= len(r)
	}
	fmt.Printf("scanning %d combinations for %s...\n", total, cfg.Model)

	reg := experiment.NewRegistry()
	gs := optim.NewGridSearch(params, ranges)

	best, jt, err := gs.Search(context.Background(),
		func(overrides map[string]float64) (*experiment.Experiment, error) {
			c := cfg
			c.Params = map[string]float64{}
			for name, val := range cfg.Params {
				c.Params[name] = val
			}
			for name, val := range overrides {
				if name == "lambda_a" {
					c.LambdaA = val
				} else {
					c.Params[name] = val
				}
			}
			return experiment.New(c, reg)
		})
	if err != nil {
		return err
	}

	if best == nil {
		return fmt.Errorf("all scan combinations failed")
	}

	fmt.Println("best parameters:")
	for _, name := range params {
		fmt.Printf("  %s: %g\n", name, best[name])
	}
	fmt.Printf("best J_T: %.6f\n", jt)

	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, guess, opt, err := st.LoadControls(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if svgPath != "" {
		series := make([]export.Series, 0, len(guess)+len(opt))
		for i, samples := range guess {
			series = append(series, export.Series{Label: fmt.Sprintf("guess_%d", i), Samples: samples})
		}
		for i, samples := range opt {
			series = append(series, export.Series{Label: fmt.Sprintf("opt_%d", i), Samples: samples})
		}
		svg := export.PulsesToSVG(times, series, 800, 400)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(times))

	for i := range opt {
		graph := asciigraph.Plot(guess[i],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("guess_%d", i)),
		)
		fmt.Println(graph)
		fmt.Println()

		graph = asciigraph.Plot(opt[i],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("opt_%d", i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, _, opt, err := st.LoadControls(runID)
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("no data")
	}
	dt := times[1] - times[0]

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	for i, samples := range opt {
		freqs, amps := analysis.Spectrum(samples, dt)
		if len(amps) == 0 {
			continue
		}

		plotData := amps[:len(amps)/4+1]
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("amplitude spectrum (opt_%d)", i)),
		)
		fmt.Println(graph)
		fmt.Println()

		freq := analysis.Dominant(freqs, amps)
		fmt.Printf("dominant frequency: %.4f\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.4f\n\n", 1.0/freq)
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan tea.Msg, 64)
	exp.SetObserver(func(iteration int, jt float64, taus []complex128) {
		abs := make([]float64, len(taus))
		for i, tau := range taus {
			abs[i] = cmplx.Abs(tau)
		}
		select {
		case updates <- viz.IterationMsg{Iteration: iteration, JT: jt, Taus: abs}:
		default:
		}
	})

	type outcome struct {
		res *result.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := exp.Run(ctx)
		done <- outcome{res, err}
		updates <- viz.DoneMsg{Err: err}
	}()

	p := tea.NewProgram(viz.NewModel(cfg.Model, updates, cancel))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	out := <-done
	canceled := false
	if m, ok := finalModel.(viz.Model); ok {
		canceled = m.Canceled()
	}
	if out.err != nil {
		if !canceled || !errors.Is(out.err, context.Canceled) {
			return out.err
		}
		fmt.Println("canceled, saving partial result")
	}

	jt := exp.JT(out.res.LastTau())
	runID, err := st.Save(cfg.Model, cfg.Functional, cfg.Propagator, cfg.LambdaA, jt, out.res)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("iterations: %d\n", out.res.Iterations())
	fmt.Printf("final J_T: %.6f\n", jt)

	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if len(scenario.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	results, runErr := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(), st)

	if len(results) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tRUN\tITERS\tJ_T")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\n", r.Name, r.RunID, r.Iterations, r.JT)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	return runErr
}
