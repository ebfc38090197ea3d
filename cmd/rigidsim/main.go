// Command rigidsim is the thin CLI driver spec.md §1 leaves "out of scope
// beyond a thin driver": it wires internal/engine, internal/options and
// internal/storage together behind a handful of cobra subcommands, the way
// the teacher's cmd/dynsim wires internal/experiment, internal/config and
// internal/storage. The interactive GUI, live view, frequency analysis and
// multi-integrator comparison surfaces the teacher carries have no
// counterpart here — this engine has one integrator (spec.md §4) and no
// visualization layer, so run/list/export/options/plot is the complete set.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/engine"
	"github.com/san-kum/rigidsim/internal/options"
	"github.com/san-kum/rigidsim/internal/storage"
)

var (
	dataDir string

	tEnd        float64
	seed        int64
	mass        float64
	radius      float64
	optionsFile string

	initTheta, initOmega   float64
	initTheta2, initOmega2 float64
	initHeight             float64

	controllerName     string
	kp, ki, kd, target float64

	plotHeight int
	plotWidth  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "rigid-body dynamics simulation core",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "run archive directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate a model and archive the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&tEnd, "t-end", 5.0, "simulation horizon in seconds")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed (stepper.randomSeed)")
	runCmd.Flags().StringVar(&controllerName, "controller", "none", "controller: none, manual, pid, lqr")
	runCmd.Flags().Float64Var(&kp, "kp", 10.0, "pid kp")
	runCmd.Flags().Float64Var(&ki, "ki", 0.1, "pid ki")
	runCmd.Flags().Float64Var(&kd, "kd", 5.0, "pid kd")
	runCmd.Flags().Float64Var(&target, "target", 0.0, "pid target")
	runCmd.Flags().Float64Var(&initTheta, "theta", 0.5, "initial angle (pendulum, double_pendulum)")
	runCmd.Flags().Float64Var(&initOmega, "omega", 0.0, "initial angular velocity (pendulum, double_pendulum)")
	runCmd.Flags().Float64Var(&initTheta2, "theta2", 0.0, "second initial angle (double_pendulum)")
	runCmd.Flags().Float64Var(&initOmega2, "omega2", 0.0, "second initial angular velocity (double_pendulum)")
	runCmd.Flags().Float64Var(&initHeight, "height", 1.0, "initial drop height (free_flyer)")
	runCmd.Flags().Float64Var(&mass, "mass", 1.0, "body mass (free_flyer)")
	runCmd.Flags().Float64Var(&radius, "radius", 0.1, "contact sphere radius (free_flyer)")
	runCmd.Flags().StringVar(&optionsFile, "options", "", "options yaml file (spec.md §6.2); overrides defaults, CLI flags override this")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a run's metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [channel]",
		Short: "render an ascii plot of one telemetry channel",
		Args:  cobra.ExactArgs(2),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height in rows")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width in columns")

	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "print the recognised default options as yaml",
		RunE:  printDefaultOptions,
	}

	rootCmd.AddCommand(runCmd, listCmd, exportCmd, plotCmd, optionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadOptions() (options.Options, error) {
	if optionsFile == "" {
		return options.Default(), nil
	}
	return options.Load(optionsFile)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	modelName := args[0]

	model, x0, err := buildModel(modelName, mass, radius)
	if err != nil {
		return err
	}

	ctrl, err := buildController(controllerName, model.NMotors())
	if err != nil {
		return err
	}

	opts, err := loadOptions()
	if err != nil {
		return fmt.Errorf("failed to load options: %w", err)
	}
	if cmd.Flags().Changed("seed") || optionsFile == "" {
		opts.Stepper.RandomSeed = seed
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	eng := engine.New()
	if err := eng.SetOptions(opts); err != nil {
		return err
	}
	if err := eng.Initialize(model, ctrl, nil); err != nil {
		return err
	}

	if err := eng.Simulate(dynamo.State(x0), tEnd); err != nil {
		return err
	}

	header, matrix := eng.GetLogData()
	sampled := map[string]float64{
		"energy_drift":   columnDrift(header, matrix, "energy"),
		"control_effort": meanAbsCommand(header, matrix),
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(modelName, opts.Stepper.SensorsUpdatePeriod, tEnd, opts.Stepper.RandomSeed, "rk45", controllerName, eng, sampled)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("samples: %d\n", len(matrix))
	for name, v := range sampled {
		fmt.Printf("%s: %g\n", name, v)
	}
	return nil
}

// columnDrift reports the largest relative deviation of column name from
// its first sample, the shape spec.md §8's energy-conservation property
// checks. Returns 0 if the column is absent or its first sample is zero.
func columnDrift(header []string, matrix [][]float64, name string) float64 {
	col := colIndex(header, name)
	if col == -1 || len(matrix) == 0 {
		return 0
	}
	first := matrix[0][col]
	if first == 0 {
		return 0
	}
	var maxDrift float64
	for _, row := range matrix {
		drift := math.Abs(row[col]-first) / math.Abs(first)
		maxDrift = math.Max(maxDrift, drift)
	}
	return maxDrift
}

// meanAbsCommand averages |u_cmd.i| across every logged motor channel and
// sample, standing in for the teacher's ControlEffort metric without
// assuming a fixed row layout (command logging is an options.* gate).
func meanAbsCommand(header []string, matrix [][]float64) float64 {
	var cols []int
	for i, name := range header {
		if strings.HasPrefix(name, "u_cmd.") {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 || len(matrix) == 0 {
		return 0
	}
	var sum float64
	for _, row := range matrix {
		for _, c := range cols {
			sum += math.Abs(row[c])
		}
	}
	return sum / float64(len(matrix)*len(cols))
}

func colIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tSEED\tINTEG\tCTRL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t%s\n",
			run.ID, run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration, run.Seed, run.Integrator, run.Controller,
		)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID, channel := args[0], args[1]

	st := storage.New(dataDir)
	header, matrix, err := st.LoadTelemetry(runID)
	if err != nil {
		return err
	}

	col := colIndex(header, channel)
	if col == -1 {
		return fmt.Errorf("no channel %q in run %s (available: %v)", channel, runID, header)
	}

	data := make([]float64, len(matrix))
	for i, row := range matrix {
		data[i] = row[col]
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("%s vs sample", channel)),
	)
	fmt.Println(graph)
	return nil
}

func printDefaultOptions(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(options.Default())
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
