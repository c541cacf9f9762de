package output

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders a human-readable summary of the report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	if sim := report.Simulation; sim != nil {
		fmt.Fprintln(&buf, "MONTE CARLO SIMULATION")
		fmt.Fprintln(&buf, "================================")
		fmt.Fprintf(&buf, "Paths: %d  Horizon: %d years  Seed: %d\n", sim.Simulations, sim.Years, sim.Seed)
		fmt.Fprintf(&buf, "Starting Portfolio: %s\n", formatFloatCurrency(sim.StartingPortfolio))
		fmt.Fprintf(&buf, "Success Rate: %.1f%%\n", sim.SuccessRate*100)
		fmt.Fprintf(&buf, "Median Final Balance: %s\n", formatFloatCurrency(sim.MedianFinalBalance))
		keys := make([]string, 0, len(sim.Percentiles))
		for k := range sim.Percentiles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "  %s: %s\n", k, formatFloatCurrency(sim.Percentiles[k]))
		}
		fmt.Fprintln(&buf)
	}

	if proj := report.Projection; proj != nil {
		fmt.Fprintln(&buf, "CASH FLOW PROJECTION")
		fmt.Fprintln(&buf, "================================")
		fmt.Fprintf(&buf, "%-6s %-4s %14s %14s %14s %14s %14s\n",
			"Year", "Age", "Income", "Spending", "Taxes", "Withdrawals", "End Balance")
		for _, y := range proj.Years {
			income := y.EmploymentIncome.Add(y.SocialSecurity).Add(y.Pension).Add(y.OtherIncome)
			taxes := y.FederalTax.Add(y.CapGainsTax).Add(y.EmploymentTax).Add(y.IRMAA)
			withdrawals := y.TaxableWithdrawal.Add(y.DeferredWithdrawal).Add(y.RothWithdrawal)
			fmt.Fprintf(&buf, "%-6d %-4d %14s %14s %14s %14s %14s\n",
				y.Year, y.PrimaryAge,
				FormatCurrency(income), FormatCurrency(y.Spending),
				FormatCurrency(taxes), FormatCurrency(withdrawals),
				FormatCurrency(y.TotalBalance))
		}
		if proj.Depleted {
			fmt.Fprintf(&buf, "\nPortfolio depleted in %d\n", proj.DepletedYear)
		} else {
			fmt.Fprintf(&buf, "\nFinal Balance: %s\n", FormatCurrency(proj.FinalBalance))
		}
		fmt.Fprintln(&buf)
	}

	for _, ssa := range report.SSAnalyses {
		fmt.Fprintf(&buf, "SOCIAL SECURITY STRATEGIES: %s\n", ssa.PersonName)
		fmt.Fprintln(&buf, "================================")
		for _, s := range ssa.Strategies {
			marker := " "
			if s.ClaimingAge == ssa.Recommended {
				marker = "*"
			}
			fmt.Fprintf(&buf, "%s Claim at %d: %s/mo, lifetime PV %s\n",
				marker, s.ClaimingAge, FormatCurrency(s.MonthlyBenefit), FormatCurrency(s.LifetimeBenefit))
		}
		keys := make([]string, 0, len(ssa.BreakEvenAges))
		for k := range ssa.BreakEvenAges {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "  break-even %s: age %s\n", k, ssa.BreakEvenAges[k].String())
		}
		fmt.Fprintln(&buf)
	}

	if roth := report.Roth; roth != nil {
		fmt.Fprintln(&buf, "ROTH CONVERSION ANALYSIS")
		fmt.Fprintln(&buf, "================================")
		fmt.Fprintf(&buf, "Convert: %s\n", FormatCurrency(roth.ConversionAmount))
		fmt.Fprintf(&buf, "Tax Cost Now: %s (effective %s)\n",
			FormatCurrency(roth.TaxCost), FormatPercentage(roth.EffectiveRate.Mul(decimal.NewFromInt(100))))
		fmt.Fprintf(&buf, "After-tax value in %d years: converted %s vs deferred %s\n",
			roth.HorizonYears, FormatCurrency(roth.FutureValueConverted), FormatCurrency(roth.FutureValueDeferred))
		verdict := "not recommended"
		if roth.Recommended {
			verdict = "recommended"
		}
		fmt.Fprintf(&buf, "Net Benefit: %s (%s)\n", FormatCurrency(roth.NetBenefit), verdict)
		fmt.Fprintln(&buf)
	}

	if plan := report.Rebalancing; plan != nil {
		fmt.Fprintln(&buf, "REBALANCING PLAN")
		fmt.Fprintln(&buf, "================================")
		fmt.Fprintf(&buf, "Portfolio Value: %s  Max Drift: %s\n",
			FormatCurrency(plan.TotalValue), FormatPercentage(plan.Drift.Mul(decimal.NewFromInt(100))))
		for _, mv := range plan.Moves {
			action := "buy"
			if mv.Delta.IsNegative() {
				action = "sell"
			}
			fmt.Fprintf(&buf, "  %-12s current %14s target %14s -> %s %s\n",
				mv.AssetClass, FormatCurrency(mv.Current), FormatCurrency(mv.Target),
				action, FormatCurrency(mv.Delta.Abs()))
		}
		if plan.InBalance {
			fmt.Fprintln(&buf, "Portfolio is within tolerance; no trades needed.")
		}
	}

	return buf.Bytes(), nil
}

func formatFloatCurrency(v float64) string {
	return FormatCurrency(decimal.NewFromFloat(v).Round(2))
}
