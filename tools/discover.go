package tools

import (
	"path"
	"strings"

	"github.com/richinex/inquest/index"
)

// DiscoveredBates returns every display identifier a tool result surfaced,
// from returned document names and from the result text itself, in
// first-seen order.
func DiscoveredBates(result index.Result) []string {
	discovered := batesFromDocuments(result)
	discovered = append(discovered, index.BatesNumbersIn(result.Text)...)
	return index.UniqueOrdered(discovered)
}

// BatchReadBates returns the identifiers of documents actually returned by
// a batch read, ignoring text mentions. Used for sweep accounting.
func BatchReadBates(result index.Result) []string {
	return index.UniqueOrdered(batesFromDocuments(result))
}

func batesFromDocuments(result index.Result) []string {
	var out []string
	for _, doc := range result.Documents {
		base := path.Base(doc.Name)
		stem := strings.ToUpper(strings.TrimSuffix(base, path.Ext(base)))
		if index.IsBatesNumber(stem) {
			out = append(out, stem)
		}
	}
	return out
}
