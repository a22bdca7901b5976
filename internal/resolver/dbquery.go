package resolver

import "strings"

// parseDBQuery recognizes the DB-query shape (spec §6): `collectionName
// { one-or-many-symbol } payload`, where the symbol is literally `?`
// (find-one) or `[]` (find-many) and the payload is opaque text handed
// to DataFinder untouched. An empty collectionName reuses datasetName.
func parseDBQuery(query, datasetName string) (collection, payload string, ok bool) {
	open := strings.IndexByte(query, '{')
	if open < 0 {
		return "", "", false
	}
	close := strings.IndexByte(query[open:], '}')
	if close < 0 {
		return "", "", false
	}
	close += open
	symbol := query[open+1 : close]
	if symbol != "?" && symbol != "[]" {
		return "", "", false
	}
	collection = strings.TrimSpace(query[:open])
	if collection == "" {
		collection = datasetName
	}
	return collection, query[close+1:], true
}
