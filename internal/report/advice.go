package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-insights/internal/insight"
)

const storedLayout = "Jan 2, 2006 15:04"

var savingsReasons = map[insight.SavingsReason]string{
	insight.SavingsHighSpending: "High spending category",
	insight.SavingsRisingFast:   "Rapidly increasing",
}

// FormatRecommendations renders a numbered list of recommendations.
func (f *Formatter) FormatRecommendations(recs []string) string {
	lines := make([]string, 0, len(recs))
	for i, r := range recs {
		lines = append(lines, fmt.Sprintf("%s %s", f.styles.Info.Render(fmt.Sprintf("%d.", i+1)), r))
	}
	if len(lines) == 0 {
		lines = append(lines, f.empty("No recommendations"))
	}
	return f.header("Recommendations", "") + "\n" + f.styles.Box.Render(strings.Join(lines, "\n"))
}

// FormatProjection renders the projected month.
func (f *Formatter) FormatProjection(p insight.Projection) string {
	savings := f.Money(p.MonthlySavings)
	if p.MonthlySavings < 0 {
		savings = f.styles.Error.Render(savings)
	} else {
		savings = f.styles.Success.Render(savings)
	}

	lines := []string{
		fmt.Sprintf("Daily average:  %s spent, %s received", f.Money(p.DailySpending), f.Money(p.DailyIncome)),
		"",
		fmt.Sprintf("%-18s %s", "Monthly spending:", f.Money(p.MonthlySpending)),
		fmt.Sprintf("%-18s %s", "Monthly income:", f.Money(p.MonthlyIncome)),
		fmt.Sprintf("%-18s %s", "Monthly savings:", savings),
	}
	period := fmt.Sprintf("last %d active days since %s", p.Days, p.Since.Format(dateLayout))
	return f.header("30-Day Projection", period) + "\n" + f.styles.Box.Render(strings.Join(lines, "\n"))
}

// FormatSavings renders the savings opportunities and their totals.
func (f *Formatter) FormatSavings(plan insight.SavingsPlan) string {
	sections := []string{f.header("Savings Opportunities", "last 30 days")}
	if len(plan.Opportunities) == 0 {
		return strings.Join(append(sections, f.empty("No savings opportunities found")), "\n")
	}

	rows := make([][]string, 0, len(plan.Opportunities))
	for _, o := range plan.Opportunities {
		rows = append(rows, []string{o.Category, savingsReasons[o.Reason], f.Money(o.Recent), f.Money(o.MonthlySavings)})
	}
	sections = append(sections,
		f.table([]int{categoryCols, 22, 12, 12}, []string{"Category", "Reason", "Spent", "Save/mo"}, rows),
		"",
		fmt.Sprintf("Potential savings: %s per month, %s per year",
			f.styles.Success.Render(f.Money(plan.MonthlyTotal)), f.styles.Success.Render(f.Money(plan.AnnualTotal))),
	)
	return strings.Join(sections, "\n")
}

// FormatSnapshot renders a stored pattern snapshot with bucket confidence.
func (f *Formatter) FormatSnapshot(s insight.Snapshot) string {
	title := fmt.Sprintf("Stored %s Patterns", titleCase(s.PatternType))
	sections := []string{
		f.header(title, ""),
		f.styles.Subtle.Render("Computed " + s.ComputedAt.Format(storedLayout)),
	}
	if len(s.Buckets) == 0 {
		return strings.Join(append(sections, f.empty("No buckets stored")), "\n")
	}

	rows := make([][]string, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		rows = append(rows, []string{
			b.Key,
			f.printer.Sprintf("%d", b.Count),
			f.Money(b.Total),
			f.Money(b.Mean),
			f.Money(b.Median),
			f.styles.ForRatio(b.Confidence).Render(f.pct(b.Confidence * 100)),
		})
	}
	sections = append(sections,
		f.table([]int{12, 7, 12, 10, 10, 8}, []string{"Period", "Count", "Total", "Mean", "Median", "Conf."}, rows))
	return strings.Join(sections, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
