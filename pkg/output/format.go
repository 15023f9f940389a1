// Package output provides utilities for formatting and displaying worksheet results.
package output

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/rehash-tool/internal/worksheet"
	"github.com/iwvelando/rehash-tool/pkg/format"
)

type metricKind int

const (
	kindCurrency metricKind = iota
	kindPercent
	kindNumber
	kindText
)

type metric struct {
	label  string
	kind   metricKind
	number func(worksheet.Worksheet) float64
	text   func(worksheet.Worksheet) string
}

var metrics = []metric{
	{label: "Variant", kind: kindText, text: func(ws worksheet.Worksheet) string { return string(ws.Outputs.Variant) }},
	{label: "Loan amount", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.LoanAmount }},
	{label: "Sales tax", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.SalesTax }},
	{label: "Monthly payment", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.NewPayment }},
	{label: "Existing auto payments", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.ExistingTotal }},
	{label: "Total auto payments", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.TotalAutoPayments }},
	{label: "Total monthly debt", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.TotalMonthlyDebt }},
	{label: "PTI", kind: kindPercent, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.PTI }},
	{label: "DTI", kind: kindPercent, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.DTI }},
	{label: "Price difference", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.PriceDifference }},
	{label: "Equity", kind: kindPercent, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.EquityPercent }},
	{label: "Score", kind: kindNumber, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.Score }},
	{label: "Grade", kind: kindText, text: func(ws worksheet.Worksheet) string { return orDash(ws.Outputs.Grade) }},
	{label: "PTI band", kind: kindText, text: func(ws worksheet.Worksheet) string { return ws.Outputs.PTIBand }},
	{label: "Price band", kind: kindText, text: func(ws worksheet.Worksheet) string { return ws.Outputs.PriceBand }},
	{label: "Score band", kind: kindText, text: func(ws worksheet.Worksheet) string { return ws.Outputs.ScoreBand }},
	{label: "Target payment", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.TargetPayment }},
	{label: "Needed loan amount", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.NeededLoanAmount }},
	{label: "Suggested down", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Outputs.SuggestedDown }},
	{label: "Total interest", kind: kindCurrency, number: func(ws worksheet.Worksheet) float64 { return ws.Summary.TotalInterest }},
}

// errWriter stops writing after the first error and remembers it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(b []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(b)
	ew.err = err
	return n, err
}

// PrettyFormat writes a human-readable rather than machine-readable table.
// It returns the first write error.
func PrettyFormat(w io.Writer, results []worksheet.Worksheet) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}
	for i, result := range results {
		fmt.Fprintf(ew, "--- Worksheet for scenario %s ---\n", result.Name)
		fmt.Fprintf(ew, "%-22s | %s\n", "Metric", "Value")
		fmt.Fprintf(ew, "%-22s | %s\n", "______", "_____")
		for _, m := range metrics {
			fmt.Fprintf(ew, "%-22s | %s\n", m.label, m.pretty(p, result))
		}

		if len(result.Terms) > 0 {
			fmt.Fprintf(ew, "\nTerm    | Payment     | Total interest\n")
			fmt.Fprintf(ew, "____    | ___________ | ______________\n")
			for _, option := range result.Terms {
				p.Fprintf(ew, "%-7s | %-11s | %s\n",
					fmt.Sprintf("%dmo", option.Term), money(p, option.Payment), money(p, option.TotalInterest))
			}
		}

		for _, summary := range result.Optimizations {
			p.Fprintf(ew, "\nOptimized %s: %s -> %s (PTI %.2f%% -> %.2f%%, target %.2f%%)\n",
				summary.Field, summary.OriginalDisplay, summary.ValueDisplay,
				summary.OriginalPTI, summary.ResultPTI, summary.TargetPTI)
			for _, note := range summary.Notes {
				fmt.Fprintf(ew, "  note: %s\n", note)
			}
		}

		if i < len(results)-1 {
			fmt.Fprintf(ew, "\n")
		}
		if ew.err != nil {
			return ew.err
		}
	}
	return ew.err
}

// CsvFormat writes one row per metric and one column per worksheet.
func CsvFormat(w io.Writer, results []worksheet.Worksheet) error {
	_, err := io.WriteString(w, CsvString(results))
	return err
}

// CsvString renders the worksheets in comma-separated value format.
func CsvString(results []worksheet.Worksheet) string {
	var b strings.Builder
	b.WriteString(`"metric"`)
	for _, result := range results {
		fmt.Fprintf(&b, `,"%s"`, escapeCSV(result.Name))
	}
	b.WriteString("\n")

	for _, m := range metrics {
		fmt.Fprintf(&b, `"%s"`, m.label)
		for _, result := range results {
			fmt.Fprintf(&b, `,"%s"`, escapeCSV(m.plain(result)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m metric) pretty(p *message.Printer, ws worksheet.Worksheet) string {
	switch m.kind {
	case kindCurrency:
		return money(p, m.number(ws))
	case kindPercent:
		return p.Sprintf("%.2f%%", m.number(ws))
	case kindNumber:
		return p.Sprintf("%.2f", m.number(ws))
	default:
		return m.text(ws)
	}
}

func (m metric) plain(ws worksheet.Worksheet) string {
	if m.kind == kindText {
		return m.text(ws)
	}
	return format.Plain(m.number(ws))
}

func money(p *message.Printer, amount float64) string {
	if amount <= -0.005 {
		return p.Sprintf("-$%.2f", -amount)
	}
	return p.Sprintf("$%.2f", amount)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func escapeCSV(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
