package tools

import (
	"reflect"
	"testing"

	"github.com/richinex/inquest/index"
	"github.com/richinex/inquest/model"
)

func TestDiscoveredBates(t *testing.T) {
	result := index.Result{
		Text: "See also EFTA00000003 and EFTA00000001.",
		Documents: []model.DocumentSummary{
			{Name: "EFTA00000001.pdf"},
			{Name: "efta00000002.pdf"},
			{Name: "not-a-bates.txt"},
		},
	}

	got := DiscoveredBates(result)
	want := []string{"EFTA00000001", "EFTA00000002", "EFTA00000003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoveredBates = %v, want %v", got, want)
	}
}

func TestBatchReadBatesIgnoresTextMentions(t *testing.T) {
	result := index.Result{
		Text: "--- DOCUMENT EFTA00000009: NOT FOUND ---",
		Documents: []model.DocumentSummary{
			{Name: "EFTA00000001.pdf"},
			{Name: "EFTA00000001.pdf"},
		},
	}

	got := BatchReadBates(result)
	want := []string{"EFTA00000001"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BatchReadBates = %v, want %v", got, want)
	}
}
