// Package chart turns a month of transactions into chart descriptions the
// dashboard draws with Chart.js.
package chart

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"budgetr/internal/core"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Line       Kind = "line"
	Bar        Kind = "bar"
	StackedBar Kind = "stacked_bar"
)

// DaysInAxis is the fixed x range of the daily charts.
const DaysInAxis = 31

const amountAxis = "Amount Spent ($)"

// ParseKind maps a request value to a kind; anything unknown is a line chart.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case Bar:
		return Bar
	case StackedBar:
		return StackedBar
	default:
		return Line
	}
}

// Kinds lists the selectable chart kinds in display order.
func Kinds() []Kind {
	return []Kind{Line, Bar, StackedBar}
}

func (k Kind) Label() string {
	switch k {
	case Bar:
		return "Bar Chart"
	case StackedBar:
		return "Stacked Bar Chart"
	default:
		return "Line Chart"
	}
}

type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

type Chart struct {
	Kind    Kind     `json:"kind"`
	Title   string   `json:"title"`
	XLabel  string   `json:"x_label"`
	YLabel  string   `json:"y_label"`
	Labels  []string `json:"labels"`
	Series  []Series `json:"series"`
	Stacked bool     `json:"stacked"`
}

// Build filters txs to the given month and builds the chart of that kind.
func Build(kind Kind, txs []core.Transaction, year, month int) Chart {
	var inMonth []core.Transaction
	for _, tx := range txs {
		if tx.Date.SameMonth(year, month) {
			inMonth = append(inMonth, tx)
		}
	}
	switch ParseKind(string(kind)) {
	case Bar:
		return ByCategory(inMonth, month)
	case StackedBar:
		return DailyByCategory(inMonth, month)
	default:
		return DailyTrend(inMonth, month)
	}
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

func dayLabels() []string {
	out := make([]string, DaysInAxis)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func floats(in []decimal.Decimal) []float64 {
	out := make([]float64, len(in))
	for i, d := range in {
		out[i] = d.InexactFloat64()
	}
	return out
}

// DailyTrend sums spending per day of the month; days without spending are 0.
func DailyTrend(txs []core.Transaction, month int) Chart {
	days := make([]decimal.Decimal, DaysInAxis)
	for _, tx := range txs {
		days[tx.Date.Day()-1] = days[tx.Date.Day()-1].Add(tx.Amount)
	}
	return Chart{
		Kind:   Line,
		Title:  fmt.Sprintf("Spending Trend for %s", monthName(month)),
		XLabel: "Day of the Month",
		YLabel: amountAxis,
		Labels: dayLabels(),
		Series: []Series{{Name: "Total Spent", Data: floats(days)}},
	}
}

func categories(txs []core.Transaction) []string {
	seen := map[string]bool{}
	var out []string
	for _, tx := range txs {
		if !seen[tx.Category] {
			seen[tx.Category] = true
			out = append(out, tx.Category)
		}
	}
	sort.Strings(out)
	return out
}

// ByCategory sums spending per category, categories in name order.
func ByCategory(txs []core.Transaction, month int) Chart {
	names := categories(txs)
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	sums := make([]decimal.Decimal, len(names))
	for _, tx := range txs {
		sums[index[tx.Category]] = sums[index[tx.Category]].Add(tx.Amount)
	}
	return Chart{
		Kind:   Bar,
		Title:  fmt.Sprintf("Spending by Category for %s", monthName(month)),
		XLabel: "Category",
		YLabel: amountAxis,
		Labels: names,
		Series: []Series{{Name: "Total Spent", Data: floats(sums)}},
	}
}

// DailyByCategory sums spending per day and category: one series per
// category, stacked on the day axis.
func DailyByCategory(txs []core.Transaction, month int) Chart {
	names := categories(txs)
	byCategory := make(map[string][]decimal.Decimal, len(names))
	for _, n := range names {
		byCategory[n] = make([]decimal.Decimal, DaysInAxis)
	}
	for _, tx := range txs {
		days := byCategory[tx.Category]
		days[tx.Date.Day()-1] = days[tx.Date.Day()-1].Add(tx.Amount)
	}
	series := make([]Series, 0, len(names))
	for _, n := range names {
		series = append(series, Series{Name: n, Data: floats(byCategory[n])})
	}
	return Chart{
		Kind:    StackedBar,
		Title:   fmt.Sprintf("Spending by Category for %s", monthName(month)),
		XLabel:  "Day of the Month",
		YLabel:  amountAxis,
		Labels:  dayLabels(),
		Series:  series,
		Stacked: true,
	}
}
