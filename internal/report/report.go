// Package report renders the triage result as a fixed-layout plain-text
// brief. Rendering is pure formatting: no new numbers are derived here,
// so the report for identical inputs is byte-identical.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/triage-cli/internal/model"
)

const ruleWidth = 64

// Render produces the full brief for one lead. A nil summary or a zero
// decision yields the short "not applicable" form.
func Render(s *model.CanonicalSummary, d *model.DecisionLayer) string {
	var b strings.Builder
	p := message.NewPrinter(language.AmericanEnglish)

	if s == nil || d == nil || d.IsZero() {
		name := "Unknown lead"
		if s != nil && s.LeadName != "" {
			name = s.LeadName
		}
		header(&b, name)
		b.WriteString("Not a triageable practice profile. No decision rendered.\n")
		return b.String()
	}

	header(&b, s.LeadName)

	fmt.Fprintf(&b, "Verdict:          %s\n", s.WorthPursuing)
	fmt.Fprintf(&b, "Reason:           %s\n", s.PursuitReason)
	fmt.Fprintf(&b, "Priority score:   %d / 100\n", s.PriorityScore)
	fmt.Fprintf(&b, "Confidence:       %s\n", s.ConfidenceLevel)
	b.WriteString("\n")

	section(&b, "Root Constraint")
	fmt.Fprintf(&b, "%s\n", titleCase(string(s.Bottleneck)))
	if s.WhyRootCause != "" {
		fmt.Fprintf(&b, "%s\n", s.WhyRootCause)
	}
	if d.RootCause.WhatWouldChange != "" {
		fmt.Fprintf(&b, "What would change the classification: %s\n", d.RootCause.WhatWouldChange)
	}
	b.WriteString("\n")

	section(&b, "Right Lever")
	fmt.Fprintf(&b, "%s\n", s.RightLever)
	if d.Lever.Reasoning != "" {
		fmt.Fprintf(&b, "%s\n", d.Lever.Reasoning)
	}
	b.WriteString("\n")

	section(&b, "Market Position")
	fmt.Fprintf(&b, "%s\n", s.MarketPosition)
	fmt.Fprintf(&b, "%s\n", d.Comparative.Sentence)
	b.WriteString("\n")

	if s.RevenueBand != nil {
		section(&b, "Revenue Band (annual, indicative)")
		rb := s.RevenueBand
		fmt.Fprintf(&b, "%s to %s\n", dollars(p, rb.Lower), dollars(p, rb.Upper))
		if rb.OrganicGapUpper > 0 {
			fmt.Fprintf(&b, "Organic gap:      %s to %s\n",
				dollars(p, rb.OrganicGapLower), dollars(p, rb.OrganicGapUpper))
		}
		if rb.IndicativeOnly {
			b.WriteString("Indicative only (limited data).\n")
		}
		b.WriteString("\n")
	}

	if len(d.Plan) > 0 {
		section(&b, "Intervention Plan")
		for _, step := range d.Plan {
			fmt.Fprintf(&b, "%d. %s [%s, ~%d days to signal]\n",
				step.Priority, step.Action, step.Category, step.TimeToSignalDays)
			if step.WhyNotSecondYet != "" {
				fmt.Fprintf(&b, "   Why first: %s\n", step.WhyNotSecondYet)
			}
		}
		b.WriteString("\n")
	}

	evidence(&b, "Reputation", s.Evidence.Reputation)
	evidence(&b, "Market", s.Evidence.Market)
	evidence(&b, "Digital", s.Evidence.Digital)
	evidence(&b, "Revenue", s.Evidence.Revenue)

	if len(d.Questions) > 0 {
		section(&b, "De-risking Questions")
		for _, q := range d.Questions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	if len(s.ConfidenceNotes) > 0 {
		section(&b, "Confidence Notes")
		for _, n := range s.ConfidenceNotes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	for _, dis := range s.Disclaimers {
		fmt.Fprintf(&b, "Note: %s\n", dis)
	}

	return b.String()
}

func header(b *strings.Builder, name string) {
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	fmt.Fprintf(b, "TRIAGE BRIEF: %s\n", name)
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func evidence(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	section(b, label+" Signals")
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func dollars(p *message.Printer, v int64) string {
	return p.Sprintf("$%d", v)
}

// titleCase turns a snake_case bottleneck into its display label.
func titleCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
