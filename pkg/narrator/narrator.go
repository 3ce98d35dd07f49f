// Package narrator turns a canonical triage summary into a short outreach
// paragraph. When an Anthropic API key is configured the paragraph is
// model-generated; otherwise a deterministic template is used. The narrative
// is presentation only and never feeds back into triage decisions.
package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/pkg/anthropic"
)

const (
	maxNarrativeTokens = 512

	systemPrompt = `You write short outreach openers for a dental practice growth agency.
Given a triage brief, write one paragraph (3-4 sentences) a salesperson could
open a call with. Reference the practice's specific constraint and the
recommended fix. Plain prose, no greeting, no sign-off, no bullet points,
no invented facts beyond the brief.`
)

// Narrator produces outreach narratives from canonical summaries.
type Narrator struct {
	client anthropic.Client
	model  string
}

// New returns a Narrator backed by the Anthropic API when apiKey is non-empty,
// and a template-only Narrator otherwise.
func New(apiKey, modelID string) *Narrator {
	n := &Narrator{model: modelID}
	if apiKey != "" {
		n.client = anthropic.NewClient(apiKey)
	}
	return n
}

// NewWithClient returns a Narrator using the given client. A nil client
// selects the template fallback.
func NewWithClient(client anthropic.Client, modelID string) *Narrator {
	return &Narrator{client: client, model: modelID}
}

// Generated reports whether narratives will be model-generated.
func (n *Narrator) Generated() bool {
	return n.client != nil
}

// Narrate returns an outreach paragraph for the summary. API failures fall
// back to the template so a triage run never fails on narrative generation.
func (n *Narrator) Narrate(ctx context.Context, s *model.CanonicalSummary) string {
	if s == nil {
		return ""
	}
	if n.client == nil {
		return Template(s)
	}

	resp, err := n.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     n.model,
		MaxTokens: maxNarrativeTokens,
		System:    []anthropic.SystemBlock{{Text: systemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: briefPrompt(s)},
		},
	})
	if err != nil {
		zap.L().Warn("narrator: falling back to template",
			zap.String("lead", s.LeadName),
			zap.Error(err),
		)
		return Template(s)
	}
	resp.Usage.LogCost(n.model, "narrative")

	text := responseText(resp)
	if text == "" {
		return Template(s)
	}
	return text
}

// NarrateBatch generates narratives for many summaries in one Anthropic batch,
// keyed by the caller's IDs. A primer request warms the shared system prompt
// cache before the batch is submitted. Summaries whose batch items fail fall
// back to the template, so every input key appears in the result.
func (n *Narrator) NarrateBatch(ctx context.Context, summaries map[string]*model.CanonicalSummary) (map[string]string, error) {
	out := make(map[string]string, len(summaries))
	if len(summaries) == 0 {
		return out, nil
	}
	if n.client == nil {
		for id, s := range summaries {
			out[id] = Template(s)
		}
		return out, nil
	}

	system := anthropic.BuildCachedSystemBlocks(systemPrompt)

	var primer *model.CanonicalSummary
	for _, s := range summaries {
		primer = s
		break
	}
	if _, err := anthropic.PrimerRequest(ctx, n.client, anthropic.MessageRequest{
		Model:     n.model,
		MaxTokens: maxNarrativeTokens,
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: briefPrompt(primer)}},
	}); err != nil {
		zap.L().Warn("narrator: primer request failed", zap.Error(err))
	}

	reqs := make([]anthropic.BatchRequestItem, 0, len(summaries))
	for id, s := range summaries {
		reqs = append(reqs, anthropic.BatchRequestItem{
			CustomID: id,
			Params: anthropic.MessageRequest{
				Model:     n.model,
				MaxTokens: maxNarrativeTokens,
				System:    system,
				Messages:  []anthropic.Message{{Role: "user", Content: briefPrompt(s)}},
			},
		})
	}

	batch, err := n.client.CreateBatch(ctx, anthropic.BatchRequest{Requests: reqs})
	if err != nil {
		return nil, eris.Wrap(err, "narrator: create batch")
	}

	if _, err := anthropic.PollBatch(ctx, n.client, batch.ID); err != nil {
		return nil, eris.Wrap(err, "narrator: poll batch")
	}

	iter, err := n.client.GetBatchResults(ctx, batch.ID)
	if err != nil {
		return nil, eris.Wrap(err, "narrator: batch results")
	}
	results, err := anthropic.CollectBatchResults(iter)
	if err != nil {
		return nil, eris.Wrap(err, "narrator: collect batch results")
	}

	for id, s := range summaries {
		resp, ok := results[id]
		if !ok {
			out[id] = Template(s)
			continue
		}
		resp.Usage.LogCost(n.model, "narrative_batch")
		text := responseText(resp)
		if text == "" {
			text = Template(s)
		}
		out[id] = text
	}
	return out, nil
}

// Template renders the deterministic fallback narrative.
func Template(s *model.CanonicalSummary) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is currently constrained by %s.", s.LeadName, bottleneckPhrase(s.Bottleneck))
	if s.WhyRootCause != "" {
		fmt.Fprintf(&b, " %s", ensureSentence(s.WhyRootCause))
	}
	if s.RightLever != "" {
		fmt.Fprintf(&b, " %s", ensureSentence(s.RightLever))
	}
	if s.WorthPursuing == model.VerdictYes {
		b.WriteString(" This looks like a strong fit worth a conversation this week.")
	}
	return b.String()
}

func briefPrompt(s *model.CanonicalSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Practice: %s\n", s.LeadName)
	fmt.Fprintf(&b, "Root constraint: %s\n", s.Bottleneck)
	fmt.Fprintf(&b, "Why: %s\n", s.WhyRootCause)
	fmt.Fprintf(&b, "Recommended lever: %s\n", s.RightLever)
	fmt.Fprintf(&b, "Market position: %s\n", s.MarketPosition)
	fmt.Fprintf(&b, "Priority score: %d\n", s.PriorityScore)
	fmt.Fprintf(&b, "Worth pursuing: %s\n", s.WorthPursuing)
	return b.String()
}

func responseText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func bottleneckPhrase(b model.Bottleneck) string {
	switch b {
	case model.TrustLimited:
		return "a thin review base that limits patient trust"
	case model.VisibilityLimited:
		return "weak visibility where patients search"
	case model.ConversionLimited:
		return "losing interested patients before they book"
	case model.DemandLimited:
		return "thin patient demand in its market"
	case model.SaturationLimited:
		return "a crowded market of strong competitors"
	case model.DifferentiationLimited:
		return "blending in with competitors despite solid fundamentals"
	default:
		return "an unclassified constraint"
	}
}

func ensureSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
