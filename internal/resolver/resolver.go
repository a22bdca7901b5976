// Package resolver drives the multi-round fixpoint loop that
// alternates between filling placeholders (or evaluating a standalone
// query) and resolving whatever dataset names blocked the last attempt
// (spec §4.5/§4.6). A round makes no progress exactly when every
// dataset it tried to resolve came back unresolvable; the driver ends
// the merge at that point rather than looping forever.
package resolver

import (
	"github.com/sirupsen/logrus"

	"github.com/mibar/jtq/internal/evalengine"
	"github.com/mibar/jtq/internal/join"
	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/internal/placeholder"
	"github.com/mibar/jtq/internal/queue"
	"github.com/mibar/jtq/internal/scope"
	"github.com/mibar/jtq/internal/set"
	"github.com/mibar/jtq/internal/tree"
)

// DictionaryFinder looks up the query text a dataset name stands for
// (spec §6: "dictionaryFinder : name → queryString | null"). found=false
// means "I have no definition for this name"; the engine poisons the
// name rather than retrying it.
type DictionaryFinder func(name string) (query string, found bool)

// DataFinder is invoked once a dictionary's query text has resolved to
// the DB-query shape (spec §6: "collectionName { one-or-many-symbol }
// payload"). found=false means "checked, nothing there" (poisons the
// name); a non-nil error aborts the whole merge.
type DataFinder func(collectionName, payload string) (value node.Node, found bool, err error)

// Engine wires the pure evaluator and the two caller-supplied
// callbacks into the fixpoint driver.
type Engine struct {
	Eval     *evalengine.Engine
	DictFind DictionaryFinder
	DataFind DataFinder
	Log      *logrus.Logger
	Progress *Progress
	// MaxRounds bounds the driver even when the repeating-suffix
	// detector somehow misses a cycle; 0 means "use the default".
	MaxRounds int
}

const defaultMaxRounds = 64

// Merge runs the fill/resolve loop over template until every
// placeholder is settled, a round makes no progress, or MaxRounds is
// reached, returning the best-effort output alongside any error. A
// detected cycle does not end the loop by itself: it marks the name
// unresolvable within its round.
func (e *Engine) Merge(template string, reg *node.Registry, xml bool) (string, error) {
	filler := &placeholder.Filler{Engine: e.Eval, XML: xml}
	progress := e.progress()
	deps := newDepGraph()
	var history []string

	round := 0
	for {
		round++
		outcome := filler.FillOnce(template, reg)
		progress.Log(round, LevelSummary, "fill pass: complete=%v needs=%v unresolvable=%v",
			outcome.Complete, outcome.NeedsDatasets, outcome.Unresolvable)

		if outcome.Complete {
			progress.End()
			return outcome.Output, nil
		}
		if len(outcome.NeedsDatasets) == 0 {
			progress.End()
			return outcome.Output, &jtqerrors.NoValuePresent{
				UnresolvablePlaceholders: outcome.Unresolvable,
				PartialMergedText:        outcome.Output,
			}
		}

		progressed, unresolvedNow, err := e.resolveRound(outcome.NeedsDatasets, reg, deps, &history, round, progress)
		if err != nil {
			progress.End()
			return outcome.Output, err
		}
		if !progressed {
			progress.End()
			return outcome.Output, &jtqerrors.NoValuePresent{
				UnresolvedDatasets:       unresolvedNow,
				UnresolvablePlaceholders: outcome.Unresolvable,
				PartialMergedText:        outcome.Output,
			}
		}
		if round >= e.maxRounds() {
			progress.End()
			return outcome.Output, jtqerrors.IllegalArgument("exceeded %d resolution rounds", e.maxRounds())
		}
	}
}

// EvaluateQuery runs the same fixpoint loop for a single standalone
// query string (spec §6: EvaluateQuery / EvaluateQueryWithResolver),
// returning the resolved Node or a *jtqerrors.NoValuePresent when it
// can never settle. The join planner does not call it: join operands
// are dataset names that join.Resolve looks up in the registry
// directly, and a missing operand comes back to resolveRound as a
// dependency to resolve first.
func (e *Engine) EvaluateQuery(queryText string, reg *node.Registry) (node.Maybe, error) {
	q, err := lang.ParseQuery(queryText)
	if err != nil {
		return node.Maybe{}, err
	}
	progress := e.progress()
	deps := newDepGraph()
	var history []string

	round := 0
	for {
		round++
		val, evalErr := e.Eval.EvaluateQuery(scope.Root(reg), q)
		if evalErr == nil {
			progress.End()
			return val, nil
		}
		ude, isUnres := jtqerrors.IsUnresolvedDataset(evalErr)
		if !isUnres {
			progress.End()
			return node.Maybe{}, evalErr
		}
		progressed, unresolvedNow, err := e.resolveRound([]string{ude.Name}, reg, deps, &history, round, progress)
		if err != nil {
			progress.End()
			return node.Maybe{}, err
		}
		if !progressed {
			progress.End()
			return node.Maybe{}, &jtqerrors.NoValuePresent{UnresolvedDatasets: unresolvedNow}
		}
		if round >= e.maxRounds() {
			progress.End()
			return node.Maybe{}, jtqerrors.IllegalArgument("exceeded %d resolution rounds", e.maxRounds())
		}
	}
}

// resolveRound drains a queue of needed dataset names (expanding it
// with join-operand and dictionary-placeholder dependencies as they
// surface), returning whether at least one name newly resolved to a
// value this round.
func (e *Engine) resolveRound(needed []string, reg *node.Registry, deps *depGraph, history *[]string, round int, progress *Progress) (progressed bool, unresolvedNow []string, err error) {
	q := queue.New[string]()
	queued := set.New[string]()
	for _, n := range needed {
		q.Enqueue(n)
		queued.Add(n)
	}

	for !q.IsEmpty() {
		name, _ := q.Dequeue()
		*history = append(*history, name)

		if p, cyclic := detectRepeatingSuffix(*history); cyclic {
			// spec §7 kind 4: a detected cycle marks the offending name
			// unresolvable, it does not abort the whole merge (spec §8
			// S6 expects a terminal NoValuePresent, not a thrown Cycle).
			progress.Log(round, LevelSummary, "%s (period %d)", jtqerrors.ErrCycle.New(name), p)
			deps.crossCheck(progress, round)
			reg.PutNone(name)
			unresolvedNow = append(unresolvedNow, name)
			continue
		}

		dep, resolved, poisoned, rerr := e.resolveOne(name, reg)
		if rerr != nil {
			return false, nil, rerr
		}
		if dep != "" {
			deps.edge(name, dep)
			if !queued.Has(dep) {
				queued.Add(dep)
				q.Enqueue(dep)
			}
			q.Enqueue(name) // retry name once dep settles
			continue
		}
		if resolved {
			progress.Log(round, LevelVerbose, "resolved dataset %q", name)
			progressed = true
			continue
		}
		if poisoned {
			progress.Log(round, LevelVerbose, "dataset %q is unresolvable", name)
			unresolvedNow = append(unresolvedNow, name)
		}
	}
	deps.crossCheck(progress, round)
	return progressed, unresolvedNow, nil
}

// resolveOne resolves a single dataset name through the §4.5 step-3
// pipeline: dictionary lookup, recursive placeholder substitution
// inside the returned query text, then classification of that text as
// a DB-query, a join expression, or a plain named query. dep is set
// (and resolved/poisoned both false) when something embedded in the
// query — a join operand, or a placeholder inside the dictionary text
// itself — needs to resolve before name can proceed; this is also how
// a self-referential dictionary chain (spec §8 S6) surfaces as a
// dependency edge the cycle detector can see.
func (e *Engine) resolveOne(name string, reg *node.Registry) (dep string, resolved, poisoned bool, err error) {
	if opt, ok := reg.Get(name); ok {
		return "", opt.Known, !opt.Known, nil
	}

	if e.DictFind == nil {
		reg.PutNone(name)
		return "", false, true, nil
	}
	query, found := e.DictFind(name)
	if !found {
		reg.PutNone(name)
		return "", false, true, nil
	}

	filler := &placeholder.Filler{Engine: e.Eval}
	outcome := filler.FillOnce(query, reg)
	if !outcome.Complete {
		if len(outcome.NeedsDatasets) > 0 {
			return outcome.NeedsDatasets[0], false, false, nil
		}
		reg.PutNone(name)
		return "", false, true, nil
	}
	query = outcome.Output

	if collection, payload, ok := parseDBQuery(query, name); ok {
		if e.DataFind == nil {
			reg.PutNone(name)
			return "", false, true, nil
		}
		val, dfound, derr := e.DataFind(collection, payload)
		if derr != nil {
			return "", false, false, derr
		}
		if !dfound {
			reg.PutNone(name)
			return "", false, true, nil
		}
		reg.Put(name, val)
		return "", true, false, nil
	}

	if spec, perr := join.Parse(query); perr == nil {
		val, jerr := join.Resolve(spec, reg)
		if depName, isUnres := jtqerrors.IsUnresolvedDataset(jerr); isUnres {
			if depName.AlreadyPoisoned {
				reg.PutNone(name)
				return "", false, true, nil
			}
			return depName.Name, false, false, nil
		}
		if jerr != nil {
			return "", false, false, jerr
		}
		if !val.Present {
			reg.PutNone(name)
			return "", false, true, nil
		}
		reg.Put(name, val.Value)
		return "", true, false, nil
	}

	return e.evaluateNamedQuery(name, query, reg)
}

// evaluateNamedQuery evaluates query as a plain Statement (spec §4.5
// step 4's "named-queries batch", collapsed into an immediate per-name
// evaluation: resolution is single-threaded and strictly sequential,
// so batching changes only progress-log grouping, not the result).
func (e *Engine) evaluateNamedQuery(name, query string, reg *node.Registry) (dep string, resolved, poisoned bool, err error) {
	q, perr := lang.ParseQuery(query)
	if perr != nil {
		return "", false, false, perr
	}
	val, everr := e.Eval.EvaluateQuery(scope.Root(reg), q)
	if everr != nil {
		if ude, isUnres := jtqerrors.IsUnresolvedDataset(everr); isUnres {
			if ude.AlreadyPoisoned {
				reg.PutNone(name)
				return "", false, true, nil
			}
			return ude.Name, false, false, nil
		}
		return "", false, false, everr
	}
	if !val.Present {
		reg.PutNone(name)
		return "", false, true, nil
	}
	reg.Put(name, val.Value)
	return "", true, false, nil
}

func (e *Engine) progress() *Progress {
	if e.Progress != nil {
		return e.Progress
	}
	return NewProgress(LevelSilent)
}

func (e *Engine) maxRounds() int {
	if e.MaxRounds > 0 {
		return e.MaxRounds
	}
	return defaultMaxRounds
}

// depGraph is a secondary, purely diagnostic dependency tracker built
// from a tree.Tree[string] (spec §9: the repeating-suffix scan over
// flat history is the sole authority for declaring a cycle; this tree
// is logged as a cross-check and never itself blocks resolution).
type depGraph struct {
	t     tree.Tree[string]
	nodes map[string]tree.Node[string]
}

func newDepGraph() *depGraph {
	root := tree.NewNode("__root__", "__root__")
	return &depGraph{t: tree.New(root), nodes: map[string]tree.Node[string]{"__root__": root}}
}

func (d *depGraph) edge(from, to string) {
	fromNode, ok := d.nodes[from]
	if !ok {
		fromNode = tree.NewNode(from, from)
		d.nodes[from] = fromNode
		d.t.Attach(fromNode)
	}
	toNode, ok := d.nodes[to]
	if !ok {
		toNode = tree.NewNode(to, to)
		d.nodes[to] = toNode
	}
	d.t.Attach(toNode, fromNode)
}

func (d *depGraph) crossCheck(progress *Progress, round int) {
	if d.t.IsCyclic() {
		progress.Log(round, LevelVerbose, "dependency-graph cross-check also flags a cycle")
	}
}
