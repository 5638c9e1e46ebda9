// Package index provides read-only access to the Elasticsearch-backed
// document archive used by the investigation tools.
//
// Each document carries a name (the Bates-style display identifier, usually
// with a .pdf suffix), a page count, a byte size, and the full OCR'd text in
// the content field. All operations return an in-band Result; a Go error
// means the index itself was unreachable or misbehaving.
package index

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/richinex/inquest/model"
)

// Clamps and defaults applied to operation arguments before any request is
// sent to the index.
const (
	DefaultLimit        = 100
	SearchLimitMin      = 1
	SearchLimitMax      = 500
	DefaultFragmentSize = 300
	FragmentSizeMin     = 50
	FragmentSizeMax     = 2000
	DefaultFragments    = 3
	FragmentsMin        = 1
	FragmentsMax        = 10
	ReadMaxCharsMin     = 200
	ReadMaxCharsMax     = 200_000
	BatchCharsDefault   = 2_000_000
	ListPageSize        = 1000

	// Search output grows a partial-view directive when the total exceeds
	// this threshold but the caller retrieved a thin slice with a small limit.
	PartialViewThreshold = 10
	PartialViewLimitMin  = 100
)

// Options configures a Client. Zero values get safe defaults.
type Options struct {
	BaseURL    string        // index base URL, default http://localhost:9200
	Index      string        // index name, default "archive"
	DocBaseURL string        // viewer base for document links, default ""
	Timeout    time.Duration // per-request timeout, default 10s
	Logger     *zap.Logger
}

// Client is a read-only Elasticsearch adapter. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	index      string
	docBaseURL string
	logger     *zap.Logger
}

// NewClient creates an archive client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:9200"
	}
	if opts.Index == "" {
		opts.Index = "archive"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		index:      strings.Trim(opts.Index, "/"),
		docBaseURL: strings.TrimRight(opts.DocBaseURL, "/"),
		logger:     opts.Logger,
	}
}

// SearchRequest holds the search operation arguments after coercion.
type SearchRequest struct {
	Terms        []string
	Limit        int // 0 means DefaultLimit
	Fuzzy        bool
	Cooccur      bool
	Exclude      []string
	MinPages     *int
	MaxPages     *int
	FragmentSize int // 0 means DefaultFragmentSize
	Fragments    int // 0 means DefaultFragments
}

type esSource struct {
	Name    string `json:"name"`
	Pages   *int   `json:"pages"`
	Size    int64  `json:"size"`
	Content string `json:"content"`
}

type esHit struct {
	ID        string              `json:"_id"`
	Source    esSource            `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
	Sort      []any               `json:"sort"`
}

type esSearchResponse struct {
	Hits struct {
		Total *model.Total `json:"total"`
		Hits  []esHit      `json:"hits"`
	} `json:"hits"`
}

type esCountResponse struct {
	Count int `json:"count"`
}

// Search runs a ranked content query with highlighted fragments.
func (c *Client) Search(ctx context.Context, req SearchRequest) (Result, error) {
	terms := coerceTerms(req.Terms)
	if len(terms) == 0 {
		return Errorf("terms cannot be empty."), nil
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	limit = clamp(limit, SearchLimitMin, SearchLimitMax)
	fragmentSize := req.FragmentSize
	if fragmentSize == 0 {
		fragmentSize = DefaultFragmentSize
	}
	fragmentSize = clamp(fragmentSize, FragmentSizeMin, FragmentSizeMax)
	fragments := req.Fragments
	if fragments == 0 {
		fragments = DefaultFragments
	}
	fragments = clamp(fragments, FragmentsMin, FragmentsMax)

	var must []map[string]any
	if req.Cooccur {
		for _, term := range terms {
			must = append(must, contentQuery([]string{term}, req.Fuzzy))
		}
	} else {
		must = append(must, contentQuery(terms, req.Fuzzy))
	}

	var filters []map[string]any
	if req.MinPages != nil {
		filters = append(filters, map[string]any{"range": map[string]any{"pages": map[string]any{"gte": *req.MinPages}}})
	}
	if req.MaxPages != nil {
		filters = append(filters, map[string]any{"range": map[string]any{"pages": map[string]any{"lte": *req.MaxPages}}})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":     must,
				"must_not": excludeFilters(coerceTerms(req.Exclude)),
				"filter":   filters,
			},
		},
		"size":    limit,
		"_source": []string{"name", "pages", "content", "size"},
		"highlight": map[string]any{
			"fields": map[string]any{
				"content": map[string]any{
					"fragment_size":       fragmentSize,
					"number_of_fragments": fragments,
				},
			},
		},
	}

	var resp esSearchResponse
	if err := c.search(ctx, body, &resp); err != nil {
		return Result{}, err
	}

	hits := resp.Hits.Hits
	total := resp.Hits.Total
	if total == nil {
		total = &model.Total{Value: len(hits), Relation: "eq"}
	}
	c.logger.Debug("archive search",
		zap.Strings("terms", terms),
		zap.Int("limit", limit),
		zap.Int("hits", len(hits)),
		zap.Int("total", total.Value))

	return Result{
		Text:      c.formatSearchResults(hits, total, limit),
		Documents: c.summarizeHits(hits),
		Total:     total,
	}, nil
}

// Count returns how many documents match the terms.
func (c *Client) Count(ctx context.Context, terms []string, fuzzy, cooccur bool) (Result, error) {
	terms = coerceTerms(terms)
	if len(terms) == 0 {
		r := Errorf("terms cannot be empty.")
		r.Count = intPtr(0)
		return r, nil
	}

	var query map[string]any
	if len(terms) > 1 && cooccur {
		var must []map[string]any
		for _, term := range terms {
			must = append(must, contentQuery([]string{term}, fuzzy))
		}
		query = map[string]any{"bool": map[string]any{"must": must}}
	} else {
		query = contentQuery(terms, fuzzy)
	}

	var resp esCountResponse
	if err := c.requestJSON(ctx, http.MethodPost, c.endpoint("/_count"), map[string]any{"query": query}, &resp); err != nil {
		return Result{}, err
	}

	sep := " "
	if cooccur {
		sep = " + "
	}
	return Result{
		Text:  fmt.Sprintf("%d documents matching: %s", resp.Count, strings.Join(terms, sep)),
		Count: intPtr(resp.Count),
	}, nil
}

// Read fetches the full text of exactly one document by display identifier.
// Matching is exact after normalization; near-identifier hits are rejected.
// maxChars <= 0 means unlimited; otherwise it is clamped to a safe range.
func (c *Client) Read(ctx context.Context, identifier string, maxChars int) (Result, error) {
	target := NormalizeBates(identifier)
	if !IsBatesNumber(target) {
		return Errorf("invalid Bates number '%s'.", SanitizeText(identifier)), nil
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []map[string]any{
					{"term": map[string]any{"name.keyword": target}},
					{"match_phrase": map[string]any{"name": target}},
				},
				"minimum_should_match": 1,
			},
		},
		"size":    10,
		"_source": []string{"name", "pages", "content", "size"},
	}

	var resp esSearchResponse
	if err := c.search(ctx, body, &resp); err != nil {
		return Result{}, err
	}
	if len(resp.Hits.Hits) == 0 {
		return Result{Text: "No document found with Bates number: " + target}, nil
	}

	var hit *esHit
	for i := range resp.Hits.Hits {
		if NormalizeBates(resp.Hits.Hits[i].Source.Name) == target {
			hit = &resp.Hits.Hits[i]
			break
		}
	}
	if hit == nil {
		return Result{Text: "No exact document found with Bates number: " + target}, nil
	}

	content := SanitizeText(hit.Source.Content)
	lines := []string{
		fmt.Sprintf("%s (%s pages, %s bytes) %s",
			SanitizeText(hit.Source.Name), pagesDisplay(hit.Source.Pages),
			groupDigits(hit.Source.Size), c.docLink(hit.ID)),
		strings.Repeat("=", 80),
	}
	if maxChars > 0 {
		maxChars = clamp(maxChars, ReadMaxCharsMin, ReadMaxCharsMax)
		if len(content) > maxChars {
			lines = append(lines, content[:maxChars],
				fmt.Sprintf("\n[... truncated at %d chars, full doc is %d chars ...]", maxChars, len(content)))
		} else {
			lines = append(lines, content)
		}
	} else {
		lines = append(lines, content)
	}

	return Result{
		Text:      strings.Join(lines, "\n"),
		Documents: []model.DocumentSummary{c.summarizeHit(*hit)},
		Bates:     target,
	}, nil
}

// batchSpec is one deduplicated entry of a read_batch request, addressed
// either by opaque doc id or by normalized display name.
type batchSpec struct {
	kind    string // "doc_id" or "name"
	key     string
	display string
}

// ReadBatch fetches multiple documents in one query, concatenating their
// full texts until maxCharsTotal is exhausted. Unresolvable identifiers are
// reported inline as NOT FOUND rather than dropped.
func (c *Client) ReadBatch(ctx context.Context, identifiers []string, maxCharsTotal int) (Result, error) {
	specs := batchSpecs(identifiers)
	if len(specs) == 0 {
		return Result{Text: "No valid document identifiers provided."}, nil
	}
	if maxCharsTotal <= 0 {
		maxCharsTotal = BatchCharsDefault
	}

	var should []map[string]any
	var docIDs []string
	var nameTerms []string
	for _, spec := range specs {
		if spec.kind == "doc_id" {
			docIDs = append(docIDs, spec.key)
			continue
		}
		nameTerms = append(nameTerms,
			spec.key, spec.key+".pdf",
			strings.ToLower(spec.key), strings.ToLower(spec.key)+".pdf")
	}
	if len(docIDs) > 0 {
		should = append(should, map[string]any{"ids": map[string]any{"values": docIDs}})
	}
	for _, term := range UniqueOrdered(nameTerms) {
		should = append(should,
			map[string]any{"term": map[string]any{"name.keyword": term}},
			map[string]any{"match_phrase": map[string]any{"name": term}})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"size":    clamp(len(specs)*3, 100, 5000),
		"_source": []string{"name", "pages", "content", "size"},
	}

	var resp esSearchResponse
	if err := c.search(ctx, body, &resp); err != nil {
		return Result{}, err
	}
	hits := resp.Hits.Hits

	idHits := make(map[string]*esHit)
	nameHits := make(map[string]*esHit)
	for i := range hits {
		hit := &hits[i]
		id := strings.ToLower(SanitizeText(hit.ID))
		if id != "" && idHits[id] == nil {
			idHits[id] = hit
		}
		base := path.Base(SanitizeText(hit.Source.Name))
		stem := strings.TrimSuffix(base, path.Ext(base))
		for _, key := range UniqueOrdered([]string{
			NormalizeBates(base), base, strings.ToUpper(base), strings.ToLower(base),
			stem, strings.ToUpper(stem), strings.ToLower(stem),
		}) {
			if key != "" && nameHits[key] == nil {
				nameHits[key] = hit
			}
		}
	}

	var outputLines []string
	var documents []model.DocumentSummary
	emitted := make(map[string]bool)
	totalChars := 0

	for _, spec := range specs {
		var hit *esHit
		if spec.kind == "doc_id" {
			hit = idHits[strings.ToLower(spec.key)]
		} else {
			for _, lookup := range UniqueOrdered([]string{
				spec.key, strings.ToUpper(spec.key), strings.ToLower(spec.key),
				spec.key + ".pdf", strings.ToUpper(spec.key) + ".pdf", strings.ToLower(spec.key) + ".pdf",
			}) {
				if h := nameHits[lookup]; h != nil {
					hit = h
					break
				}
			}
		}
		if hit == nil {
			outputLines = append(outputLines, fmt.Sprintf("--- DOCUMENT %s: NOT FOUND ---", spec.display))
			continue
		}

		docID := SanitizeText(hit.ID)
		if docID != "" && emitted[docID] {
			continue
		}

		displayName := NormalizeBates(path.Base(SanitizeText(hit.Source.Name)))
		if displayName == "" {
			displayName = spec.display
		}
		content := SanitizeText(hit.Source.Content)

		remaining := maxCharsTotal - totalChars
		if remaining <= 0 {
			outputLines = append(outputLines, fmt.Sprintf("[STOP: Batch limit of %d chars reached.]", maxCharsTotal))
			break
		}

		chunk := content
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
		}
		truncated := len(chunk) < len(content)

		outputLines = append(outputLines,
			fmt.Sprintf("--- START DOCUMENT %s (%s pages) ---", displayName, pagesDisplay(hit.Source.Pages)),
			chunk,
			fmt.Sprintf("--- END DOCUMENT %s ---\n", displayName))

		totalChars += len(chunk)
		documents = append(documents, c.summarizeHit(*hit))
		if docID != "" {
			emitted[docID] = true
		}

		if truncated || totalChars >= maxCharsTotal {
			outputLines = append(outputLines, fmt.Sprintf("[STOP: Batch limit of %d chars reached.]", maxCharsTotal))
			break
		}
	}

	c.logger.Debug("archive read_batch",
		zap.Int("requested", len(specs)),
		zap.Int("returned", len(documents)),
		zap.Int("chars", totalChars))

	return Result{
		Text:      strings.Join(outputLines, "\n"),
		Documents: documents,
		Count:     intPtr(len(documents)),
		Requested: intPtr(len(specs)),
	}, nil
}

// ListDocuments returns every document name matching a simple boolean query
// (AND/OR/NOT, quoted phrases), paginating internally until exhausted.
// Results are deduplicated by name and by content hash.
func (c *Client) ListDocuments(ctx context.Context, query string, fuzzy bool) (Result, error) {
	rawQuery := strings.TrimSpace(query)
	if rawQuery == "" {
		return Errorf("query cannot be empty."), nil
	}

	queryBody := map[string]any{
		"simple_query_string": map[string]any{
			"query":            listQueryText(rawQuery, fuzzy),
			"fields":           []string{"content"},
			"default_operator": "and",
		},
	}

	var names []string
	seenNames := make(map[string]bool)
	seenHashes := make(map[string]bool)
	var documents []model.DocumentSummary
	var searchAfter []any

	for {
		body := map[string]any{
			"query":            queryBody,
			"size":             ListPageSize,
			"_source":          []string{"name", "content", "pages", "size"},
			"sort":             []map[string]any{{"name": map[string]any{"order": "asc", "missing": "_last"}}},
			"track_total_hits": true,
		}
		if searchAfter != nil {
			body["search_after"] = searchAfter
		}

		var resp esSearchResponse
		if err := c.search(ctx, body, &resp); err != nil {
			return Result{}, err
		}
		hits := resp.Hits.Hits
		if len(hits) == 0 {
			break
		}

		for i := range hits {
			hit := &hits[i]
			name := SanitizeText(path.Base(hit.Source.Name))
			if name == "" || name == "." {
				continue
			}
			if hit.Source.Content != "" {
				digest := contentHash(hit.Source.Content)
				if seenHashes[digest] {
					continue
				}
				seenHashes[digest] = true
			}
			if seenNames[name] {
				continue
			}
			seenNames[name] = true
			names = append(names, name)
			documents = append(documents, c.summarizeHit(*hit))
		}

		searchAfter = hits[len(hits)-1].Sort
		if len(searchAfter) == 0 {
			break
		}
	}

	text := "No results found."
	if len(names) > 0 {
		text = strings.Join(names, "\n")
	}
	return Result{Text: text, Documents: documents}, nil
}

// DocumentContent fetches the raw full text for a cited source, addressed
// by display identifier or opaque doc id. Unknown formats and misses return
// empty text without error.
func (c *Client) DocumentContent(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(SanitizeText(source))
	if source == "" {
		return "", nil
	}

	if upper := strings.ToUpper(source); IsBatesNumber(upper) {
		body := map[string]any{
			"query": map[string]any{
				"bool": map[string]any{
					"should": []map[string]any{
						{"term": map[string]any{"name.keyword": upper}},
						{"match_phrase": map[string]any{"name": upper}},
					},
					"minimum_should_match": 1,
				},
			},
			"size":    10,
			"_source": []string{"name", "content"},
		}
		var resp esSearchResponse
		if err := c.search(ctx, body, &resp); err != nil {
			return "", err
		}
		for i := range resp.Hits.Hits {
			if NormalizeBates(resp.Hits.Hits[i].Source.Name) == upper {
				return SanitizeText(resp.Hits.Hits[i].Source.Content), nil
			}
		}
		return "", nil
	}

	if lower := strings.ToLower(source); IsDocID(lower) {
		body := map[string]any{
			"query":   map[string]any{"ids": map[string]any{"values": []string{lower}}},
			"size":    1,
			"_source": []string{"content"},
		}
		var resp esSearchResponse
		if err := c.search(ctx, body, &resp); err != nil {
			return "", err
		}
		if len(resp.Hits.Hits) == 0 {
			return "", nil
		}
		return SanitizeText(resp.Hits.Hits[0].Source.Content), nil
	}

	return "", nil
}

// Healthcheck probes the index root endpoint. Never returns an error; the
// second value describes the outcome either way.
func (c *Client) Healthcheck(ctx context.Context) (bool, string) {
	var root struct {
		ClusterName string `json:"cluster_name"`
	}
	if err := c.requestJSON(ctx, http.MethodGet, c.baseURL, nil, &root); err != nil {
		return false, fmt.Sprintf("index unavailable: %v", err)
	}
	cluster := root.ClusterName
	if cluster == "" {
		cluster = "unknown-cluster"
	}
	return true, fmt.Sprintf("index reachable: %s (%s) / index %s", c.baseURL, SanitizeText(cluster), c.index)
}

func (c *Client) endpoint(suffix string) string {
	return c.baseURL + "/" + c.index + suffix
}

func (c *Client) search(ctx context.Context, body map[string]any, out *esSearchResponse) error {
	return c.requestJSON(ctx, http.MethodPost, c.endpoint("/_search"), body, out)
}

func (c *Client) requestJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to index at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading index response: %w", err)
	}
	if resp.StatusCode >= 400 {
		detail := string(data)
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return fmt.Errorf("index HTTP %d: %s", resp.StatusCode, detail)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding index response: %w", err)
		}
	}
	return nil
}

func (c *Client) docLink(id string) string {
	if id == "" || c.docBaseURL == "" {
		return ""
	}
	return c.docBaseURL + "/f/" + id
}

func (c *Client) summarizeHit(hit esHit) model.DocumentSummary {
	docID := SanitizeText(hit.ID)
	name := SanitizeText(hit.Source.Name)
	if name == "" {
		name = "unknown"
	}
	return model.DocumentSummary{
		DocID: docID,
		Name:  name,
		Pages: pagesDisplay(hit.Source.Pages),
		Size:  hit.Source.Size,
		Link:  c.docLink(docID),
	}
}

func (c *Client) summarizeHits(hits []esHit) []model.DocumentSummary {
	out := make([]model.DocumentSummary, 0, len(hits))
	for _, hit := range hits {
		out = append(out, c.summarizeHit(hit))
	}
	return out
}

// formatSearchResults builds the model-facing search output: a parseable
// result-count header, an optional partial-view directive, then one block
// per hit with highlight fragments and near-duplicate marks.
func (c *Client) formatSearchResults(hits []esHit, total *model.Total, limit int) string {
	if len(hits) == 0 {
		return "No results found."
	}

	prefix := ""
	if total.Relation == "gte" {
		prefix = ">"
	}

	seenHashes := make(map[string]string)
	dupes := make(map[string]bool)
	for _, hit := range hits {
		if hit.Source.Content == "" {
			continue
		}
		digest := contentHash(hit.Source.Content)
		if first, ok := seenHashes[digest]; ok {
			dupes[hit.ID] = true
			dupes[first] = true
		} else {
			seenHashes[digest] = hit.ID
		}
	}

	lines := []string{fmt.Sprintf("[%d of %s%d results]", len(hits), prefix, total.Value)}
	if total.Value > PartialViewThreshold && len(hits) < total.Value && limit < PartialViewLimitMin {
		lines = append(lines,
			"[PARTIAL VIEW: high-volume result set. Re-run search with limit=100 or limit=200, "+
				"collect Bates IDs, then call read_batch.]")
	}
	lines = append(lines, "")
	for i, hit := range hits {
		marker := ""
		if dupes[hit.ID] {
			marker = " [NEAR-DUPLICATE]"
		}
		line := fmt.Sprintf("%s (%s pages) %s%s",
			SanitizeText(hit.Source.Name), pagesDisplay(hit.Source.Pages), c.docLink(hit.ID), marker)
		lines = append(lines, strings.TrimRight(line, " "))

		for _, fragment := range hit.Highlight["content"] {
			clean := strings.NewReplacer("<em>", "**", "</em>", "**").Replace(SanitizeText(fragment))
			lines = append(lines, "  > "+clean)
		}

		if i < len(hits)-1 {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func contentQuery(terms []string, fuzzy bool) map[string]any {
	queryText := strings.Join(terms, " ")
	if fuzzy {
		return map[string]any{"match": map[string]any{"content": map[string]any{"query": queryText, "fuzziness": "AUTO"}}}
	}
	return map[string]any{"match": map[string]any{"content": queryText}}
}

// excludeFilters drops documents matching given identifiers or phrases,
// against both the name field and the content field.
func excludeFilters(exclude []string) []map[string]any {
	filters := []map[string]any{}
	for _, raw := range exclude {
		term := strings.TrimSpace(SanitizeText(raw))
		if term == "" {
			continue
		}
		if normalized := NormalizeBates(term); IsBatesNumber(normalized) {
			filters = append(filters, map[string]any{"term": map[string]any{"name.keyword": normalized}})
		}
		filters = append(filters,
			map[string]any{"match_phrase": map[string]any{"name": term}},
			map[string]any{"match_phrase": map[string]any{"content": term}})
	}
	return filters
}

var listTokenRE = regexp.MustCompile(`"[^"]+"|\S+`)

// listQueryText optionally rewrites bare tokens with an edit-distance
// suffix, leaving quoted phrases and boolean operators alone.
func listQueryText(rawQuery string, fuzzy bool) string {
	queryText := strings.TrimSpace(rawQuery)
	if !fuzzy {
		return queryText
	}
	tokens := listTokenRE.FindAllString(queryText, -1)
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) {
			out = append(out, token)
			continue
		}
		switch strings.ToUpper(token) {
		case "AND", "OR", "NOT":
			out = append(out, token)
			continue
		}
		out = append(out, token+"~1")
	}
	return strings.Join(out, " ")
}

func batchSpecs(identifiers []string) []batchSpec {
	var specs []batchSpec
	seen := make(map[[2]string]bool)
	for _, raw := range identifiers {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		base := path.Base(raw)

		var spec batchSpec
		switch {
		case IsDocID(strings.ToLower(raw)):
			spec = batchSpec{kind: "doc_id", key: strings.ToLower(raw), display: raw}
		case IsDocID(strings.ToLower(base)):
			spec = batchSpec{kind: "doc_id", key: strings.ToLower(base), display: base}
		default:
			key := NormalizeBates(base)
			if key == "" {
				key = base
			}
			spec = batchSpec{kind: "name", key: key, display: key}
		}

		dedup := [2]string{spec.kind, spec.key}
		if seen[dedup] {
			continue
		}
		seen[dedup] = true
		specs = append(specs, spec)
	}
	return specs
}

// contentHash fingerprints the first 500 characters of content with
// whitespace stripped and case folded, for near-duplicate detection.
func contentHash(text string) string {
	if len(text) > 500 {
		text = text[:500]
	}
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), "")
	return fmt.Sprintf("%x", md5.Sum([]byte(normalized)))[:12]
}

func pagesDisplay(pages *int) string {
	if pages == nil {
		return "?"
	}
	return strconv.Itoa(*pages)
}

// groupDigits renders n with thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func coerceTerms(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
