package merge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/internal/shape"
)

// Dictionary maps a dataset name to the JSON file it should be loaded
// from, the CLI's way of describing datasets ahead of time (spec §5:
// dataset construction) without wiring a programmatic resolver.
//
// It plays both of spec §6's external-interface roles: as a
// DictionaryFinder it answers every name it knows about with a
// DB-query pointing back at itself (`name{?}`); as the matching
// DataFinder it actually reads and decodes the file (spec §6: "When
// the collectionName is empty, the dataset name is reused as the
// collection name" — here collectionName always equals the original
// dataset name, so the round trip is transparent to callers).
type Dictionary map[string]string

// LoadYAMLDictionary reads a YAML file of `name: path/to/file.json`
// entries.
func LoadYAMLDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("merge: reading dictionary %s: %w", path, err)
	}
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("merge: parsing dictionary %s: %w", path, err)
	}
	return dict, nil
}

// DictionaryFinder answers a name with the DB-query `name{?}` for
// every name the dictionary has a file for, nothing otherwise.
func (d Dictionary) DictionaryFinder() DictionaryFinder {
	return func(name string) (string, bool) {
		if _, ok := d[name]; !ok {
			return "", false
		}
		return name + "{?}", true
	}
}

// DataFinder lazily reads and decodes the JSON file registered for
// collectionName, ignoring payload (find-one by name, no query body).
func (d Dictionary) DataFinder() DataFinder {
	return func(collectionName, payload string) (node.Node, bool, error) {
		path, ok := d[collectionName]
		if !ok {
			return nil, false, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("merge: reading dataset %q from %s: %w", collectionName, path, err)
		}
		n, err := node.Decode(data)
		if err != nil {
			return nil, false, fmt.Errorf("merge: decoding dataset %q from %s: %w", collectionName, path, err)
		}
		return n, true, nil
	}
}

// ProjectDataset narrows an already-registered dataset down to the
// given JSONPath fields in place (spec §1's opt-in, non-core sugar
// layer built on internal/shape).
func (e *Engine) ProjectDataset(name string, mode shape.Mode, paths ...string) error {
	opt, ok := e.registry.Get(name)
	if !ok || !opt.Known {
		return fmt.Errorf("merge: dataset %q is not registered", name)
	}
	projected, err := shape.Project(opt.Value, mode, paths...)
	if err != nil {
		return err
	}
	e.registry.Put(name, projected)
	return nil
}
