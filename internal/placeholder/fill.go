// Package placeholder implements one left-to-right substitution pass
// over a template (spec §4.4). A single pass either fully resolves
// every `{{...}}` span it finds or reports which dataset names (or
// permanently broken placeholder bodies) blocked it; internal/resolver
// drives the repeated passes as datasets get resolved in between.
package placeholder

import (
	"strings"

	"github.com/mibar/jtq/internal/evalengine"
	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/internal/scope"
)

// Filler fills placeholders using engine against whatever registry it
// is given. XML enables tag-carving: a placeholder that is the sole
// content of a `<name>...</name>` element drops the whole element when
// its value is absent or empty, instead of leaving an empty element.
type Filler struct {
	Engine *evalengine.Engine
	XML    bool
}

// Outcome is the result of one FillOnce pass.
type Outcome struct {
	Output        string
	NeedsDatasets []string // names blocking at least one placeholder this pass
	Unresolvable  []string // placeholder bodies that failed permanently (not a dataset-resolution problem)
	Complete      bool     // true iff NeedsDatasets and Unresolvable are both empty
}

// FillOnce runs a single substitution pass. Placeholders blocked on an
// unresolved dataset are left verbatim in Output so a subsequent pass
// (after the resolver has supplied that dataset) can re-scan and
// resolve them; the empty-output fast path below means a template with
// no placeholders at all never touches the evaluator (spec §9).
func (f *Filler) FillOnce(template string, reg *node.Registry) Outcome {
	if _, found := lang.FindPlaceholder(template, 0); !found {
		return Outcome{Output: template, Complete: true}
	}

	var out strings.Builder
	var outcome Outcome
	seenDataset := map[string]bool{}
	pos := 0
	complete := true

	for {
		ph, found := lang.FindPlaceholder(template, pos)
		if !found {
			out.WriteString(template[pos:])
			break
		}

		val, evalErr := f.evaluate(template, ph, reg)

		if ude, isUnres := jtqerrors.IsUnresolvedDataset(evalErr); isUnres {
			complete = false
			if !seenDataset[ude.Name] {
				seenDataset[ude.Name] = true
				outcome.NeedsDatasets = append(outcome.NeedsDatasets, ude.Name)
			}
			out.WriteString(template[pos:ph.CloseEnd])
			pos = ph.CloseEnd
			continue
		}

		if evalErr != nil {
			complete = false
			outcome.Unresolvable = append(outcome.Unresolvable, ph.Body(template))
			out.WriteString(template[pos:ph.CloseEnd])
			pos = ph.CloseEnd
			continue
		}

		empty := !val.Present || isEmptyValue(val.Value)
		if empty && f.XML {
			if tag, ok := lang.CarveXMLTag(template, ph.OpenStart, ph.CloseEnd); ok {
				out.WriteString(template[pos:tag.Start])
				pos = tag.End
				continue
			}
		}

		out.WriteString(template[pos:ph.OpenStart])
		if !empty {
			out.WriteString(render(val.Value))
		}
		pos = ph.CloseEnd
	}

	outcome.Output = out.String()
	outcome.Complete = complete
	return outcome
}

func (f *Filler) evaluate(template string, ph lang.Placeholder, reg *node.Registry) (node.Maybe, error) {
	query, err := lang.ParseQuery(ph.Body(template))
	if err != nil {
		return node.Maybe{}, err
	}
	return f.Engine.EvaluateQuery(scope.Root(reg), query)
}

func isEmptyValue(n node.Node) bool {
	if n == nil {
		return true
	}
	if s, ok := n.(string); ok {
		return s == ""
	}
	return false
}

// render renders a resolved value node as placeholder text (spec §4.4
// step 3): value nodes render as their text form, container nodes
// serialize to JSON.
func render(n node.Node) string {
	switch n.(type) {
	case *node.Object, []node.Node:
		b, err := node.Encode(n)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return node.Text(n)
	}
}
