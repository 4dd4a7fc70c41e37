package runtime

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/flags"
)

// DisplayText is the heading and description shown on a result page.
type DisplayText struct {
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

// Response is one answered decision and whether it explains the result.
type Response struct {
	Question   *domain.Node   `json:"question"`
	Selections []*domain.Node `json:"selections"`
	Hidden     bool           `json:"hidden"`
}

// Result is the outcome for one flag category.
type Result struct {
	Flag        flags.Flag  `json:"flag"`
	DisplayText DisplayText `json:"displayText"`
	Responses   []Response  `json:"responses"`
}

// RequestedFiles lists the files a flow asks the applicant to upload.
type RequestedFiles struct {
	Required    []string `json:"required"`
	Recommended []string `json:"recommended"`
	Optional    []string `json:"optional"`
}

// ResultData returns the highest priority flag collected in category (the
// default category when empty) and the decisions that led to it. Responses
// that did not select the flag are hidden, unless all of them would be.
func (e *Engine) ResultData(category string, overrides map[string]DisplayText) map[string]Result {
	if category == "" {
		category = flags.DefaultCategory
	}
	live := e.ledger.Breadcrumbs()

	flag := e.flags.NoResult(category)
	if collected := e.resolver.CollectedFlags(live, category); len(collected) > 0 {
		flag, _ = e.flags.Lookup(collected[0])
	}

	var responses []Response
	allHidden := true
	for id, b := range live.All() {
		question, ok := e.graph.Node(id)
		if !ok || !question.Type.IsDecision() {
			continue
		}
		r := Response{Question: question, Selections: []*domain.Node{}, Hidden: true}
		for _, ansID := range b.Answers {
			ans, ok := e.graph.Node(ansID)
			if !ok {
				continue
			}
			r.Selections = append(r.Selections, ans)
			for _, f := range ans.Flags() {
				if f == flag.Value {
					r.Hidden = false
				}
			}
		}
		allHidden = allHidden && r.Hidden
		responses = append(responses, r)
	}
	if allHidden {
		for i := range responses {
			responses[i].Hidden = false
		}
	}

	text := DisplayText{Heading: flag.Text, Description: category}
	if o, ok := overrides[flag.Value]; ok && flag.Value != "" {
		if o.Heading != "" {
			text.Heading = o.Heading
		}
		if o.Description != "" {
			text.Description = o.Description
		}
	}

	return map[string]Result{
		category: {Flag: flag, DisplayText: text, Responses: responses},
	}
}

// CollectedFlags returns, per category, the flags carried by selected
// answers from highest to lowest priority. Empty categories are omitted.
func (e *Engine) CollectedFlags() map[string][]flags.Flag {
	out := make(map[string][]flags.Flag)
	live := e.ledger.Breadcrumbs()
	for _, category := range e.flags.Categories() {
		for _, v := range e.resolver.CollectedFlags(live, category) {
			f, _ := e.flags.Lookup(v)
			out[category] = append(out[category], f)
		}
	}
	return out
}

// RequestedFiles returns the file requests held in the passport.
func (e *Engine) RequestedFiles() RequestedFiles {
	out := RequestedFiles{Required: []string{}, Recommended: []string{}, Optional: []string{}}
	raw, ok := e.ComputePassport().Data[domain.RequestedFilesKey].(map[string]any)
	if !ok {
		return out
	}
	if v := domain.StringsOf(raw["required"]); v != nil {
		out.Required = v
	}
	if v := domain.StringsOf(raw["recommended"]); v != nil {
		out.Recommended = v
	}
	if v := domain.StringsOf(raw["optional"]); v != nil {
		out.Optional = v
	}
	return out
}

// OverrideAnswer lets the user replace a passport value that was inferred.
// The breadcrumb that wrote fn keeps a receipt under _overrides, and the
// first node reading fn is re-opened with ChangeAnswer.
func (e *Engine) OverrideAnswer(ctx context.Context, fn string) error {
	live := e.ledger.Breadcrumbs()

	var source, target string
	for _, id := range e.graph.Sequence(live.IDs()) {
		b, _ := live.Get(id)
		if _, ok := b.Data[fn]; ok && source == "" {
			source = id
		}
		if node, ok := e.graph.Node(id); ok && target == "" && (node.Fn() == fn || node.Val() == fn) {
			target = id
		}
	}

	if source != "" {
		b, _ := live.Get(source)
		data := maps.Clone(b.Data)
		delete(data, fn)
		data["_overrides"] = map[string]any{fn: b.Data[fn]}
		ud := domain.UserData{Answers: b.Answers, Data: data, Auto: b.Auto}
		if err := e.Record(ctx, source, &ud); err != nil {
			return err
		}
	}

	if target == "" {
		return fmt.Errorf("%w: %s", domain.ErrOverrideTargetNotFound, fn)
	}
	return e.ChangeAnswer(ctx, target)
}
