// Package merge is the public API of the query and template-merge
// engine (spec §6): build an Engine from one or more seed datasets,
// then either fill `{{...}}` placeholders in a template or evaluate a
// single query string, resolving additional datasets on demand.
package merge

import (
	"github.com/sirupsen/logrus"

	"github.com/mibar/jtq/internal/evalengine"
	"github.com/mibar/jtq/internal/functions"
	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/internal/resolver"
)

// Re-exported so callers never need to import the internal packages
// directly.
type (
	Node             = node.Node
	NoValuePresent   = jtqerrors.NoValuePresent
	DictionaryFinder = resolver.DictionaryFinder
	DataFinder       = resolver.DataFinder
	DebugLevel       = resolver.DebugLevel
	Progress         = resolver.Progress
)

const (
	LevelSilent  = resolver.LevelSilent
	LevelSummary = resolver.LevelSummary
	LevelVerbose = resolver.LevelVerbose
)

// Engine holds a dataset registry and the evaluator/resolver stack
// that operates on it. The zero value is not usable; construct one
// with New, FromObject, FromStringMap, or FromIntMap.
type Engine struct {
	registry  *node.Registry
	functions *functions.Registry
	eval      *evalengine.Engine
	dictFind  DictionaryFinder
	dataFind  DataFinder
	log       *logrus.Logger
	minLevel  DebugLevel
}

// New returns an Engine with an empty dataset registry; datasets are
// added with PutDataset before filling or evaluating.
func New() *Engine {
	fns := functions.NewRegistry()
	return &Engine{
		registry:  node.NewRegistry(),
		functions: fns,
		eval:      evalengine.New(fns),
		log:       logrus.StandardLogger(),
	}
}

// FromObject seeds the registry with one dataset per top-level field
// of obj, so `{{customer.name}}` resolves against a field named
// "customer" in the supplied object.
func FromObject(obj *node.Object) *Engine {
	e := New()
	if obj == nil {
		return e
	}
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		e.registry.Put(pair.Key, pair.Value)
	}
	return e
}

// FromStringMap seeds one text-valued dataset per map entry.
func FromStringMap(m map[string]string) *Engine {
	e := New()
	for k, v := range m {
		e.registry.Put(k, node.FromGo(v))
	}
	return e
}

// FromIntMap seeds one number-valued dataset per map entry.
func FromIntMap(m map[string]int) *Engine {
	e := New()
	for k, v := range m {
		e.registry.Put(k, node.FromGo(v))
	}
	return e
}

// PutDataset registers (or overwrites) a single named dataset.
func (e *Engine) PutDataset(name string, n node.Node) {
	e.registry.Put(name, n)
}

// Functions exposes the function registry so callers can add their own
// entries (spec §6/§9: Register is the documented extension point).
func (e *Engine) Functions() *functions.Registry {
	return e.functions
}

// SetDictionaryFinder installs the callback used by FillInPlaceholder /
// EvaluateQuery to look up the query text behind a dataset name that
// isn't already registered (spec §6: "dictionaryFinder : name →
// queryString | null").
func (e *Engine) SetDictionaryFinder(fn DictionaryFinder) {
	e.dictFind = fn
}

// SetDataFinder installs the callback invoked when a dictionary's
// query text resolves to the DB-query shape (spec §6: "dataFinder :
// (collectionName, payload) → Dataset | null").
func (e *Engine) SetDataFinder(fn DataFinder) {
	e.dataFind = fn
}

// SetLogLevel controls the resolution driver's progress log verbosity.
func (e *Engine) SetLogLevel(level DebugLevel) {
	e.minLevel = level
}

// FillInPlaceholder fills every `{{...}}` placeholder in template
// using the engine's installed dictionary/data finders.
func (e *Engine) FillInPlaceholder(template string) (string, error) {
	return e.FillInPlaceholderWithResolver(template, e.dictFind, e.dataFind)
}

// FillInXmlPlaceholder is FillInPlaceholder with XML tag-carving
// enabled (spec §4.4 XML mode).
func (e *Engine) FillInXmlPlaceholder(template string) (string, error) {
	return e.FillInXmlPlaceholderWithResolver(template, e.dictFind, e.dataFind)
}

// FillInPlaceholderWithResolver fills template against a one-off pair
// of finders instead of the engine's installed ones, without
// disturbing state set up via SetDictionaryFinder/SetDataFinder.
func (e *Engine) FillInPlaceholderWithResolver(template string, dictFind DictionaryFinder, dataFind DataFinder) (string, error) {
	return e.run(template, dictFind, dataFind, false)
}

// FillInXmlPlaceholderWithResolver is the XML-mode counterpart of
// FillInPlaceholderWithResolver.
func (e *Engine) FillInXmlPlaceholderWithResolver(template string, dictFind DictionaryFinder, dataFind DataFinder) (string, error) {
	return e.run(template, dictFind, dataFind, true)
}

func (e *Engine) run(template string, dictFind DictionaryFinder, dataFind DataFinder, xml bool) (string, error) {
	eng := &resolver.Engine{
		Eval:     e.eval,
		DictFind: noopDictFindIfNil(dictFind),
		DataFind: dataFind,
		Log:      e.log,
		Progress: resolver.NewProgress(e.minLevel),
	}
	return eng.Merge(template, e.registry, xml)
}

// EvaluateQuery evaluates a single `cond ? then : else`-or-plain
// statement against the engine's installed finders, returning the
// resolved value and whether one was present at all.
func (e *Engine) EvaluateQuery(query string) (node.Node, bool, error) {
	return e.EvaluateQueryWithResolver(query, e.dictFind, e.dataFind)
}

// EvaluateQueryWithResolver is EvaluateQuery with a one-off pair of
// finders.
func (e *Engine) EvaluateQueryWithResolver(query string, dictFind DictionaryFinder, dataFind DataFinder) (node.Node, bool, error) {
	eng := &resolver.Engine{
		Eval:     e.eval,
		DictFind: noopDictFindIfNil(dictFind),
		DataFind: dataFind,
		Log:      e.log,
		Progress: resolver.NewProgress(e.minLevel),
	}
	m, err := eng.EvaluateQuery(query, e.registry)
	if err != nil {
		return nil, false, err
	}
	return m.Value, m.Present, nil
}

func noopDictFindIfNil(fn DictionaryFinder) DictionaryFinder {
	if fn != nil {
		return fn
	}
	return func(name string) (string, bool) { return "", false }
}
