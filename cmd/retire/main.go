package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planwell/retirement-engine/internal/calculation"
	"github.com/planwell/retirement-engine/internal/config"
	"github.com/planwell/retirement-engine/internal/domain"
	"github.com/planwell/retirement-engine/internal/output"
)

var (
	inputFile  string
	formatName string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "retire",
		Short: "Retirement projection and tax planning engine",
		Long: `retire runs Monte Carlo retirement projections, deterministic
cash-flow ledgers, and claiming/conversion strategy analyses over a
household profile described in a YAML file.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&inputFile, "input", "i", "profile.yaml", "household profile YAML file")
	root.PersistentFlags().StringVarP(&formatName, "format", "f", "console", "output format (console or json)")

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newCashflowCmd())
	root.AddCommand(newSocialSecurityCmd())
	root.AddCommand(newRothCmd())
	root.AddCommand(newRebalanceCmd())
	root.AddCommand(newInitCmd())
	return root
}

// loadModel parses the input file and builds the model plus resolved run
// settings.
func loadModel() (*calculation.RetirementModel, *config.Input, error) {
	parser := config.NewInputParser()
	input, err := parser.LoadFromFile(inputFile)
	if err != nil {
		return nil, nil, err
	}
	model, err := calculation.NewRetirementModel(&input.Profile)
	if err != nil {
		return nil, nil, err
	}
	return model, input, nil
}

func render(report *output.Report) error {
	formatter, err := output.GetFormatter(formatName)
	if err != nil {
		return err
	}
	data, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("formatting failed: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func newSimulateCmd() *cobra.Command {
	var years, simulations int
	var seed int64
	var scenario string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo retirement projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, input, err := loadModel()
			if err != nil {
				return err
			}
			assumptions, err := config.NewInputParser().ResolveAssumptions(input)
			if err != nil {
				return err
			}
			if scenario != "" {
				if assumptions, err = domain.ScenarioAssumptions(scenario); err != nil {
					return err
				}
			}

			params := calculation.MonteCarloParams{
				Years:            input.Simulation.Years,
				Simulations:      input.Simulation.Simulations,
				Assumptions:      assumptions,
				SpendingModel:    calculation.SpendingModel(input.Simulation.SpendingModel),
				MarketPeriods:    input.MarketPeriods,
				EffectiveTaxRate: input.Simulation.EffectiveTaxRate,
				Seed:             input.Simulation.Seed,
			}
			if cmd.Flags().Changed("years") {
				params.Years = years
			}
			if params.Years == 0 && !cmd.Flags().Changed("years") {
				params.Years = model.DefaultHorizonYears()
			}
			if cmd.Flags().Changed("simulations") {
				params.Simulations = simulations
			}
			if cmd.Flags().Changed("seed") {
				params.Seed = seed
			}

			result, err := model.MonteCarloSimulation(params)
			if err != nil {
				return err
			}
			return render(&output.Report{Simulation: result})
		},
	}
	cmd.Flags().IntVar(&years, "years", 0, "projection horizon in years (default: life expectancy)")
	cmd.Flags().IntVar(&simulations, "simulations", 0, "number of simulated paths")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().StringVar(&scenario, "scenario", "", "allocation preset: conservative, moderate, aggressive")
	return cmd
}

func newCashflowCmd() *cobra.Command {
	var years int

	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Produce a deterministic year-by-year cash flow ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, input, err := loadModel()
			if err != nil {
				return err
			}
			assumptions, err := config.NewInputParser().ResolveAssumptions(input)
			if err != nil {
				return err
			}

			horizon := input.Simulation.Years
			if cmd.Flags().Changed("years") {
				horizon = years
			}
			if horizon == 0 {
				horizon = model.DefaultHorizonYears()
			}

			proj, err := model.RunDetailedProjection(calculation.ProjectionParams{
				Years:         horizon,
				Assumptions:   assumptions,
				SpendingModel: calculation.SpendingModel(input.Simulation.SpendingModel),
				MarketPeriods: input.MarketPeriods,
			})
			if err != nil {
				return err
			}
			return render(&output.Report{Projection: proj})
		},
	}
	cmd.Flags().IntVar(&years, "years", 0, "projection horizon in years (default: life expectancy)")
	return cmd
}

func newSocialSecurityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "social-security",
		Short: "Compare Social Security claiming ages",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, input, err := loadModel()
			if err != nil {
				return err
			}
			assumptions, err := config.NewInputParser().ResolveAssumptions(input)
			if err != nil {
				return err
			}
			analyses := model.AnalyzeSocialSecurityStrategies(assumptions)
			return render(&output.Report{SSAnalyses: analyses})
		},
	}
}

func newRothCmd() *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "roth-conversion",
		Short: "Price a Roth conversion this tax year",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, input, err := loadModel()
			if err != nil {
				return err
			}
			assumptions, err := config.NewInputParser().ResolveAssumptions(input)
			if err != nil {
				return err
			}
			analysis, err := model.AnalyzeRothConversion(decimal.NewFromFloat(amount), assumptions)
			if err != nil {
				return err
			}
			return render(&output.Report{Roth: analysis})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "dollar amount to convert")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newRebalanceCmd() *cobra.Command {
	var stock, bond, cash float64

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Suggest trades toward a target allocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := loadModel()
			if err != nil {
				return err
			}
			target := map[string]decimal.Decimal{
				"stocks": decimal.NewFromFloat(stock),
				"bonds":  decimal.NewFromFloat(bond),
				"cash":   decimal.NewFromFloat(cash),
			}
			plan, err := calculation.NewRebalancingService().
				SuggestRebalancing(model.Profile().BalancesByAssetClass(), target)
			if err != nil {
				return err
			}
			return render(&output.Report{Rebalancing: plan})
		},
	}
	cmd.Flags().Float64Var(&stock, "stocks", 0.6, "target stock fraction")
	cmd.Flags().Float64Var(&bond, "bonds", 0.3, "target bond fraction")
	cmd.Flags().Float64Var(&cash, "cash", 0.1, "target cash fraction")
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example profile YAML to the input path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(inputFile); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", inputFile)
			}
			example := config.NewInputParser().CreateExampleInput()
			data, err := yaml.Marshal(example)
			if err != nil {
				return err
			}
			if err := os.WriteFile(inputFile, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote example profile to %s\n", inputFile)
			return nil
		},
	}
}
