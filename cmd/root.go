package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// startupParams holds the flag values shared by our commands, plus the
// logger everything reports through.
type startupParams struct {
	verbose bool

	dataFile   string
	familyName string
	omegaMode  string
	iterations int
	burnIn     int
	propPar    float64
	randomSeed int64
	predUnit   int
	cut        int
	startMu    string
	startG2    float64
	varPower   float64
	tScale     float64
	yScale     float64
	traceFile  string

	out *log.Logger
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nlmix",
	Short: "Bayesian nonlinear mixed-effects estimation for repeated trajectories",
	Long: `nlmix fits mixed nonlinear regression models to repeated-trajectory data
(e.g. fatigue crack-growth curves) with a Metropolis-within-Gibbs sampler.
Among other features:

  - Per-unit random effects under Gompertz, Richards, logistic, Weibull,
    Paris, and Paris2 regression models
  - Diagonal (inverse-gamma) or full (inverse-Wishart) random-effects
    covariance
  - Heteroskedastic residual variance via a relative-variance shape
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sp := &startupParams{
		out: log.New(os.Stderr, "", log.LstdFlags),
	}

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Run the Gibbs sampler on a trajectory table and report posterior summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return FitRun(sp)
		},
	}

	fitCmd.Flags().StringVarP(&sp.dataFile, "data", "d", "", "Trajectory table file (first column is the shared grid, one column per unit)")
	fitCmd.Flags().StringVarP(&sp.familyName, "family", "f", "", "Regression model family (gompertz|richards|logistic|weibull|paris|paris2)")
	fitCmd.Flags().StringVarP(&sp.startMu, "start", "s", "", "Comma-separated starting population mean (fixes the parameter dimension)")
	fitCmd.Flags().StringVarP(&sp.omegaMode, "omega", "o", "diag", "Random-effects covariance mode (diag|full)")
	fitCmd.Flags().IntVarP(&sp.iterations, "len", "l", 2000, "Chain length (iterations)")
	fitCmd.Flags().IntVarP(&sp.burnIn, "burnin", "b", 200, "Iterations discarded before posterior summaries")
	fitCmd.Flags().Float64VarP(&sp.propPar, "proppar", "p", 0.02, "Proposal scale multiplier on |starting mean|")
	fitCmd.Flags().Int64VarP(&sp.randomSeed, "seed", "r", 1, "Random seed to use")
	fitCmd.Flags().IntVar(&sp.predUnit, "pred", -1, "Unit index reserved for held-out prediction (-1 for none)")
	fitCmd.Flags().IntVar(&sp.cut, "cut", 0, "Leading points of the held-out unit used for fitting")
	fitCmd.Flags().Float64Var(&sp.startG2, "gamma2", 1.0, "Starting residual-variance scale")
	fitCmd.Flags().Float64Var(&sp.varPower, "varpower", 0.0, "Variance shape exponent: s2(t)=t^p (0 means constant)")
	fitCmd.Flags().Float64Var(&sp.tScale, "tscale", 1.0, "Multiplier applied to the time grid before fitting")
	fitCmd.Flags().Float64Var(&sp.yScale, "yscale", 1.0, "Multiplier applied to observations before fitting")
	fitCmd.Flags().StringVar(&sp.traceFile, "trace", "", "Optional TSV file for the mean/scale trace")
	fitCmd.MarkFlagRequired("data")
	fitCmd.MarkFlagRequired("family")
	fitCmd.MarkFlagRequired("start")

	rootCmd.PersistentFlags().BoolVarP(&sp.verbose, "verbose", "v", false, "Verbose progress logging")
	rootCmd.AddCommand(fitCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
