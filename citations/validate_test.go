package citations

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func citedAnswer(source, quote string) string {
	return `Answer text {"source_doc_id": "` + source + `", "page_number": "1", "exact_quote_snippet": "` + quote + `"} end.`
}

func TestQuoteMatchesExact(t *testing.T) {
	source := "The board approved the wire transfer on March 3, 1999."
	if !QuoteMatches("approved the wire transfer", source) {
		t.Error("exact substring should match")
	}
}

func TestQuoteMatchesTolerantWhitespace(t *testing.T) {
	source := "The board approved\n    the wire\ttransfer on March 3."
	if !QuoteMatches("approved the wire transfer", source) {
		t.Error("whitespace differences should be absorbed")
	}
	if !QuoteMatches("APPROVED THE WIRE TRANSFER", source) {
		t.Error("case differences should be absorbed")
	}
}

func TestQuoteMatchesRejectsAlteredWords(t *testing.T) {
	source := "The board approved the wire transfer on March 3."
	if QuoteMatches("approved the wire payment", source) {
		t.Error("altered word must not match")
	}
	if QuoteMatches("approved the transfer", source) {
		t.Error("dropped word must not match")
	}
}

func TestQuoteMatchesEmptyInputs(t *testing.T) {
	if QuoteMatches("", "some source") {
		t.Error("empty quote must not match")
	}
	if QuoteMatches("quote", "") {
		t.Error("empty source must not match")
	}
}

func TestValidatePassesVerbatimQuote(t *testing.T) {
	v := NewValidator(func(ctx context.Context, source string) (string, error) {
		return "The board approved the wire transfer on March 3.", nil
	})

	ok, failures, err := v.Validate(context.Background(), citedAnswer("EFTA00000001", "approved the wire transfer"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok || len(failures) != 0 {
		t.Errorf("expected pass, got failures %v", failures)
	}
}

func TestValidateFailsFabricatedQuote(t *testing.T) {
	v := NewValidator(func(ctx context.Context, source string) (string, error) {
		return "The board approved the wire transfer on March 3.", nil
	})

	ok, failures, err := v.Validate(context.Background(), citedAnswer("EFTA00000001", "rejected the wire transfer"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatal("expected failure for fabricated quote")
	}
	if len(failures) != 1 || !strings.Contains(failures[0], "EFTA00000001") {
		t.Errorf("failures = %v", failures)
	}
}

func TestValidateUnknownSourceFails(t *testing.T) {
	v := NewValidator(func(ctx context.Context, source string) (string, error) {
		return "", nil
	})

	ok, failures, err := v.Validate(context.Background(), citedAnswer("EFTA09999999", "any quote"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok || len(failures) != 1 {
		t.Errorf("unknown source should fail the quote check: ok=%v failures=%v", ok, failures)
	}
}

func TestValidateCachesSourceFetches(t *testing.T) {
	fetches := 0
	v := NewValidator(func(ctx context.Context, source string) (string, error) {
		fetches++
		return "the quoted words appear here", nil
	})

	answer := citedAnswer("EFTA00000001", "quoted words") + "\n" + citedAnswer("EFTA00000001", "appear here")
	if ok, _, err := v.Validate(context.Background(), answer); err != nil || !ok {
		t.Fatalf("first Validate: ok=%v err=%v", ok, err)
	}
	// Re-validating the unchanged draft must not refetch.
	if ok, _, err := v.Validate(context.Background(), answer); err != nil || !ok {
		t.Fatalf("second Validate: ok=%v err=%v", ok, err)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}
}

func TestValidateFetchErrorAborts(t *testing.T) {
	wantErr := errors.New("index down")
	v := NewValidator(func(ctx context.Context, source string) (string, error) {
		return "", wantErr
	})

	_, _, err := v.Validate(context.Background(), citedAnswer("EFTA00000001", "any quote"))
	if !errors.Is(err, wantErr) {
		t.Errorf("expected fetch error, got %v", err)
	}
}
