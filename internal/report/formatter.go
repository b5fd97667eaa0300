// Package report renders insight results for the terminal.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
)

const (
	dateLayout   = "Jan 2, 2006"
	barWidth     = 30
	topRows      = 10
	categoryCols = 20
)

// Formatter renders engine results as styled text.
type Formatter struct {
	styles  *Styles
	printer *message.Printer
}

// NewFormatter creates a formatter with default styles and US number
// grouping.
func NewFormatter() *Formatter {
	return &Formatter{
		styles:  NewStyles(),
		printer: message.NewPrinter(language.English),
	}
}

// WithWidth returns a formatter whose boxes fit width columns.
func (f *Formatter) WithWidth(width int) *Formatter {
	return &Formatter{styles: f.styles.WithWidth(width), printer: f.printer}
}

// Money formats an amount as dollars with thousands separators.
func (f *Formatter) Money(amount float64) string {
	if amount < 0 {
		return "-" + f.printer.Sprintf("$%.2f", math.Abs(amount))
	}
	return f.printer.Sprintf("$%.2f", amount)
}

func (f *Formatter) pct(v float64) string {
	return f.printer.Sprintf("%.1f%%", v)
}

func (f *Formatter) header(title, period string) string {
	out := f.styles.Title.Render(cli.ChartIcon + " " + title)
	if period != "" {
		out += "\n" + f.styles.Subtitle.Render("Period: "+period)
	}
	return out
}

// table renders rows under a bold header with fixed column widths. The
// first column is left aligned and the rest right aligned.
func (f *Formatter) table(widths []int, header []string, rows [][]string) string {
	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			w := widths[i]
			if lipgloss.Width(c) > w {
				c = truncate(c, w)
			}
			pad := strings.Repeat(" ", max(0, w-lipgloss.Width(c)))
			if i == 0 {
				parts[i] = c + pad
			} else {
				parts[i] = pad + c
			}
		}
		return strings.Join(parts, "  ")
	}

	head := line(header)
	out := []string{f.styles.Header.Render(head), f.styles.Subtle.Render(strings.Repeat("─", lipgloss.Width(head)))}
	for _, r := range rows {
		out = append(out, line(r))
	}
	return strings.Join(out, "\n")
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w || w < 4 {
		return s
	}
	return string(r[:w-3]) + "..."
}

func (f *Formatter) empty(msg string) string {
	return f.styles.Subtle.Render(msg)
}

func (f *Formatter) bucketRows(buckets []insight.PeriodBucket) [][]string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Key,
			f.printer.Sprintf("%d", b.Count),
			f.Money(b.Total),
			f.Money(b.Mean),
			f.Money(b.Median),
		})
	}
	return rows
}

var bucketHeader = []string{"Period", "Count", "Total", "Mean", "Median"}
var bucketWidths = []int{12, 7, 12, 10, 10}

// FormatDaily renders weekday and hour-of-day patterns.
func (f *Formatter) FormatDaily(d insight.DailyPatterns) string {
	sections := []string{f.header("Daily Spending Patterns", d.AnalysisPeriod)}

	if d.TotalTransactions == 0 {
		return strings.Join(append(sections, f.empty("No spending in this period")), "\n")
	}

	sections = append(sections,
		f.styles.Subtitle.Render("By weekday:"),
		f.table(bucketWidths, bucketHeader, f.bucketRows(d.Weekdays)),
		"",
		f.styles.Subtitle.Render("By hour:"),
		f.table(bucketWidths, bucketHeader, f.bucketRows(d.Hours)),
	)

	if len(d.TopTransactions) > 0 {
		rows := make([][]string, 0, len(d.TopTransactions))
		for _, t := range d.TopTransactions {
			rows = append(rows, []string{t.Description, t.Category, t.Date.Format(dateLayout), f.Money(t.Amount)})
		}
		sections = append(sections, "",
			f.styles.Subtitle.Render("Largest transactions:"),
			f.table([]int{28, 16, 12, 12}, []string{"Description", "Category", "Date", "Amount"}, rows))
	}

	sections = append(sections, f.styles.Subtle.Render(f.printer.Sprintf("%d transactions analyzed", d.TotalTransactions)))
	return strings.Join(sections, "\n")
}

// FormatWeekly renders ISO-week totals and the fitted trend.
func (f *Formatter) FormatWeekly(w insight.WeeklyPatterns) string {
	sections := []string{f.header("Weekly Spending Patterns", w.AnalysisPeriod)}

	if len(w.Weeks) == 0 {
		return strings.Join(append(sections, f.empty("No spending in this period")), "\n")
	}

	rows := make([][]string, 0, len(w.Weeks))
	for _, wk := range w.Weeks {
		rows = append(rows, []string{
			wk.Key,
			wk.FirstDate.Format("Jan 2") + " - " + wk.LastDate.Format("Jan 2"),
			f.printer.Sprintf("%d", wk.Count),
			f.Money(wk.Total),
		})
	}
	sections = append(sections,
		f.table([]int{10, 16, 7, 12}, []string{"Week", "Dates", "Count", "Total"}, rows),
		"",
		"Average weekly spending: "+f.styles.Score.Render(f.Money(w.AverageWeekly)),
		"Trend: "+cli.FormatTrend(w.Trend),
	)
	return strings.Join(sections, "\n")
}

// FormatMonthly renders calendar-month totals with top categories and the
// seasonal averages.
func (f *Formatter) FormatMonthly(m insight.MonthlyPatterns) string {
	sections := []string{f.header("Monthly Spending Patterns", m.AnalysisPeriod)}

	if len(m.Months) == 0 {
		return strings.Join(append(sections, f.empty("No spending in this period")), "\n")
	}

	rows := make([][]string, 0, len(m.Months))
	for _, mo := range m.Months {
		top := "-"
		if len(mo.TopCategories) > 0 {
			names := make([]string, 0, len(mo.TopCategories))
			for _, c := range mo.TopCategories {
				names = append(names, c.Category)
			}
			top = strings.Join(names, ", ")
		}
		rows = append(rows, []string{mo.Key, f.printer.Sprintf("%d", mo.Count), f.Money(mo.Total), f.Money(mo.Mean), top})
	}
	sections = append(sections,
		f.table([]int{8, 7, 12, 10, 36}, []string{"Month", "Count", "Total", "Mean", "Top categories"}, rows))

	if len(m.Seasonal) > 0 {
		srows := make([][]string, 0, len(m.Seasonal))
		for _, s := range m.Seasonal {
			srows = append(srows, []string{s.Month.String(), f.Money(s.AverageSpend), f.printer.Sprintf("%d", s.DataPoints)})
		}
		sections = append(sections, "",
			f.styles.Subtitle.Render("Seasonal averages:"),
			f.table([]int{10, 12, 7}, []string{"Month", "Average", "Years"}, srows))
	}
	return strings.Join(sections, "\n")
}

// FormatRecurring renders detected recurring payments.
func (f *Formatter) FormatRecurring(series []insight.RecurringSeries) string {
	sections := []string{f.header("Recurring Payments", "")}
	if len(series) == 0 {
		return strings.Join(append(sections, f.empty("No recurring payments detected")), "\n")
	}

	rows := make([][]string, 0, len(series))
	var monthly float64
	for _, s := range series {
		next := "-"
		if s.NextExpected != nil {
			next = s.NextExpected.Format(dateLayout)
		}
		rows = append(rows, []string{
			s.MerchantKey,
			string(s.Frequency),
			f.Money(s.AverageAmount),
			f.printer.Sprintf("%d", s.OccurrenceCount),
			f.styles.ForRatio(s.Confidence).Render(f.pct(s.Confidence * 100)),
			next,
		})
		monthly += insight.MonthlyEquivalent(s)
	}

	sections = append(sections,
		f.table([]int{categoryCols + 4, 10, 10, 5, 8, 12}, []string{"Merchant", "Frequency", "Amount", "Seen", "Conf.", "Next"}, rows),
		"",
		"Estimated monthly total: "+f.styles.Score.Render(f.Money(monthly)),
	)
	return strings.Join(sections, "\n")
}

// FormatAnomalies renders anomalous spending days against the baseline.
func (f *Formatter) FormatAnomalies(r insight.AnomalyReport) string {
	period := ""
	if !r.Period.Start.IsZero() {
		period = r.Period.String()
	}
	sections := []string{f.header("Spending Anomalies", period)}

	sections = append(sections, f.styles.Subtle.Render(fmt.Sprintf("Baseline over %d days: mean %s, std dev %s, threshold %s",
		r.Days, f.Money(r.Mean), f.Money(r.StdDev), f.Money(r.Threshold))))

	if len(r.Anomalies) == 0 {
		return strings.Join(append(sections, f.styles.Success.Render(cli.SuccessIcon+" No unusual spending days")), "\n")
	}

	rows := make([][]string, 0, len(r.Anomalies))
	for _, a := range r.Anomalies {
		rows = append(rows, []string{
			a.Date.Format(dateLayout),
			cli.SeverityStyle(a.Severity).Render(string(a.Severity)),
			f.Money(a.Amount),
			"+" + f.Money(a.DeviationFromMean),
			f.printer.Sprintf("%d", a.TransactionCount),
		})
	}
	sections = append(sections,
		f.table([]int{12, 8, 12, 12, 5}, []string{"Date", "Severity", "Spent", "Above mean", "Txns"}, rows))
	return strings.Join(sections, "\n")
}

// FormatBudgets renders current-month budget usage.
func (f *Formatter) FormatBudgets(statuses []insight.BudgetStatus) string {
	sections := []string{f.header("Budget Status", "current month")}
	if len(statuses) == 0 {
		return strings.Join(append(sections, f.empty("No budgets configured")), "\n")
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		style := cli.BudgetStyle(s.State)
		rows = append(rows, []string{
			s.Category,
			f.Money(s.Spent),
			f.Money(s.Limit),
			style.Render(f.pct(s.UsagePct)),
			f.Money(s.Remaining),
			style.Render(string(s.State)),
		})
	}
	sections = append(sections,
		f.table([]int{categoryCols, 12, 12, 8, 12, 9}, []string{"Category", "Spent", "Limit", "Used", "Remaining", "Status"}, rows))
	return strings.Join(sections, "\n")
}

// FormatHealth renders the health score, its components and recommendations.
func (f *Formatter) FormatHealth(h insight.HealthScore) string {
	grade := cli.GradeStyle(h.Grade).Render(string(h.Grade))
	score := f.styles.Score.Render(fmt.Sprintf("%.1f / 100", h.Total))

	components := []struct {
		name  string
		value float64
		max   float64
	}{
		{"Budget adherence", h.Components.BudgetAdherence, insight.MaxBudgetAdherence},
		{"Spending consistency", h.Components.SpendingConsistency, insight.MaxSpendingConsistency},
		{"Savings rate", h.Components.SavingsRate, insight.MaxSavingsRate},
		{"Transaction regularity", h.Components.TransactionRegularity, insight.MaxTransactionRegularity},
	}

	lines := []string{fmt.Sprintf("Grade %s   %s", grade, score), ""}
	for _, c := range components {
		lines = append(lines, fmt.Sprintf("%-24s %s %5.1f / %.0f",
			c.name, f.styles.RenderProgressBar(c.value/c.max, barWidth), c.value, c.max))
	}

	if len(h.Recommendations) > 0 {
		lines = append(lines, "", f.styles.Subtitle.UnsetMargins().Render("Recommendations:"))
		for _, r := range h.Recommendations {
			lines = append(lines, f.styles.Info.Render("•")+" "+r)
		}
	}

	return cli.FormatTitle("Financial Health") + "\n" + f.styles.Box.Render(strings.Join(lines, "\n"))
}

// FormatCategories renders the recent-versus-previous category comparison.
func (f *Formatter) FormatCategories(insights []insight.CategoryInsight) string {
	sections := []string{f.header("Category Trends", "last 30 days vs previous 30 days")}
	if len(insights) == 0 {
		return strings.Join(append(sections, f.empty("No categorized spending in the last 30 days")), "\n")
	}

	limit := min(len(insights), topRows)
	rows := make([][]string, 0, limit)
	for _, c := range insights[:limit] {
		change := f.pct(c.ChangePct)
		if c.ChangePct > 0 {
			change = "+" + change
		}
		rows = append(rows, []string{c.Category, f.Money(c.Recent), f.Money(c.Previous), change, cli.FormatTrend(c.Trend)})
	}
	sections = append(sections,
		f.table([]int{categoryCols, 12, 12, 9, 16}, []string{"Category", "Recent", "Previous", "Change", "Trend"}, rows))
	if len(insights) > limit {
		sections = append(sections, f.styles.Subtle.Render(fmt.Sprintf("... and %d more categories", len(insights)-limit)))
	}
	return strings.Join(sections, "\n")
}

// FormatInsights renders the combined pattern insights.
func (f *Formatter) FormatInsights(p insight.PatternInsights) string {
	lines := []string{}

	if p.HighestDay != nil && p.LowestDay != nil {
		lines = append(lines,
			fmt.Sprintf("Highest spending day: %s (avg %s)", f.styles.Warning.Render(p.HighestDay.Key), f.Money(p.HighestDay.Mean)),
			fmt.Sprintf("Lowest spending day:  %s (avg %s)", f.styles.Success.Render(p.LowestDay.Key), f.Money(p.LowestDay.Mean)),
		)
	}
	lines = append(lines, fmt.Sprintf("You are a %s spender", f.styles.Info.Render(string(p.Spender))))

	trend := "Weekly trend: " + cli.FormatTrend(p.WeeklyTrend)
	if p.TrendMessage != "" {
		trend += " " + f.styles.Subtle.Render("("+p.TrendMessage+")")
	}
	lines = append(lines, trend, "",
		fmt.Sprintf("Recurring payments: %d (%d high confidence), about %s per month",
			p.RecurringCount, p.HighConfidenceCount, f.Money(p.RecurringMonthlyTotal)))

	if len(p.Upcoming) > 0 {
		lines = append(lines, f.styles.Subtitle.UnsetMargins().Render("Due in the next week:"))
		for _, s := range p.Upcoming {
			due := ""
			if s.NextExpected != nil {
				due = s.NextExpected.Format(dateLayout)
			}
			lines = append(lines, fmt.Sprintf("  %s %s on %s", s.MerchantKey, f.Money(s.AverageAmount), due))
		}
	}

	if len(p.Recommendations) > 0 {
		lines = append(lines, "", f.styles.Subtitle.UnsetMargins().Render("💡 Recommendations:"))
		for _, r := range p.Recommendations {
			lines = append(lines, f.styles.Info.Render("•")+" "+r)
		}
	}

	return f.header("Spending Insights", "") + "\n" + f.styles.Box.Render(strings.Join(lines, "\n"))
}

// FormatAlerts renders stored alerts, newest first as given.
func (f *Formatter) FormatAlerts(alerts []model.Alert) string {
	sections := []string{f.header("Alerts", "")}
	if len(alerts) == 0 {
		return strings.Join(append(sections, f.empty("No alerts")), "\n")
	}

	for _, a := range alerts {
		marker := f.styles.Warning.Render("●")
		if a.Read {
			marker = f.styles.Subtle.Render("○")
		}
		line := fmt.Sprintf("%s %s  %s", marker, f.styles.Subtle.Render(a.CreatedAt.Format("2006-01-02 15:04")), a.Message)
		if a.ID != "" {
			line += " " + f.styles.Subtle.Render("["+a.ID+"]")
		}
		sections = append(sections, line)
	}
	return strings.Join(sections, "\n")
}

// FormatAccounts renders known accounts.
func (f *Formatter) FormatAccounts(accounts []model.Account) string {
	sections := []string{f.header("Accounts", "")}
	if len(accounts) == 0 {
		return strings.Join(append(sections, f.empty("No accounts yet. Import an OFX file or sync Plaid to add one.")), "\n")
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.ID, a.Name, a.Institution, a.CreatedAt.Format("2006-01-02")})
	}
	sections = append(sections,
		f.table([]int{24, 24, 16, 10}, []string{"ID", "Name", "Institution", "Added"}, rows))
	return strings.Join(sections, "\n")
}

// FormatTransactions renders transactions in the order given.
func (f *Formatter) FormatTransactions(txns []model.Transaction) string {
	sections := []string{f.header("Transactions", "")}
	if len(txns) == 0 {
		return strings.Join(append(sections, f.empty("No transactions in this range.")), "\n")
	}

	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		amount := t.AmountIn
		if t.IsOutflow() {
			amount = -t.AmountOut
		}
		rows = append(rows, []string{
			t.Date.Format("2006-01-02"),
			truncate(t.Description, 32),
			t.CategoryName(),
			f.Money(amount),
			t.ID,
		})
	}
	sections = append(sections,
		f.table([]int{10, 32, 18, 12, 24}, []string{"Date", "Description", "Category", "Amount", "ID"}, rows))
	return strings.Join(sections, "\n")
}
