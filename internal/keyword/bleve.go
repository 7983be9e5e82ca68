package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	keywordanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/jurisearch/internal/models"
)

const (
	fieldContent      = "content"
	fieldSource       = "source"
	fieldCategory     = "category"
	fieldLegalArea    = "legalArea"
	fieldDocumentType = "documentType"

	batchSize = 500
)

// BleveIndex implements KeywordIndex with an in-memory Bleve index. One BleveIndex is built
// per index snapshot and never mutated after IndexPassages.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory Bleve index.
func NewBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(passageMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func passageMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "indemnity" only matches
	// the word itself.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(fieldContent, textFieldMapping)
	docMapping.AddFieldMappingsAt(fieldSource, textFieldMapping)

	exactFieldMapping := bleve.NewTextFieldMapping()
	exactFieldMapping.Analyzer = keywordanalyzer.Name
	docMapping.AddFieldMappingsAt(fieldCategory, exactFieldMapping)
	docMapping.AddFieldMappingsAt(fieldLegalArea, exactFieldMapping)
	docMapping.AddFieldMappingsAt(fieldDocumentType, exactFieldMapping)

	im.AddDocumentMapping("passage", docMapping)
	im.DefaultType = "passage"
	im.DefaultMapping = docMapping
	return im
}

// IndexPassages adds passages in batches, keyed by passage id.
func (b *BleveIndex) IndexPassages(ctx context.Context, passages []models.CorpusPassage) error {
	batch := b.index.NewBatch()
	for i := range passages {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := &passages[i]
		doc := map[string]interface{}{
			fieldContent:      p.Content,
			fieldSource:       sourceWords(p.SourceDocument),
			fieldCategory:     string(p.Category),
			fieldLegalArea:    p.LegalArea,
			fieldDocumentType: p.DocumentType,
		}
		if err := batch.Index(p.ID, doc); err != nil {
			return fmt.Errorf("failed to index passage %s: %w", p.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := b.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = b.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index batch: %w", err)
		}
	}
	return nil
}

// Search runs a match query over content and source names. Hits are ordered by score
// descending, ties by id. An empty or whitespace-only text returns no hits.
func (b *BleveIndex) Search(ctx context.Context, text string, opts *SearchOptions) ([]*KeywordResult, error) {
	terms := tokenizeQuery(text)
	if len(terms) == 0 {
		return nil, nil
	}
	limit := DefaultLimit
	fuzziness := 0
	var category models.Category
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		if opts.Fuzziness > 0 {
			fuzziness = min(opts.Fuzziness, 2)
		}
		category = opts.Category
	}

	var q blevequery.Query = b.matchQuery(text, fuzziness)
	if category != "" {
		cq := bleve.NewTermQuery(string(category))
		cq.SetField(fieldCategory)
		q = bleve.NewConjunctionQuery(q, cq)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// matchQuery ORs a content match and a source-name match.
func (b *BleveIndex) matchQuery(text string, fuzziness int) blevequery.Query {
	content := bleve.NewMatchQuery(text)
	content.SetField(fieldContent)
	source := bleve.NewMatchQuery(text)
	source.SetField(fieldSource)
	if fuzziness > 0 {
		content.SetFuzziness(fuzziness)
		source.SetFuzziness(fuzziness)
	}
	return bleve.NewDisjunctionQuery(content, source)
}

// sourceWords turns a file name like "employment_agreement.txt" into separate words, since
// the standard tokenizer keeps underscores and dots inside a single token.
func sourceWords(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, name)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// DocCount returns the total number of passages in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// GetAllTerms returns all unique content terms from the index dictionary.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	freqs, err := b.termFrequencies()
	if err != nil {
		return nil, err
	}
	terms := make([]string, 0, len(freqs))
	for t := range freqs {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms, nil
}

// GetTermFrequency returns the number of passages whose content contains term.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	q := bleve.NewTermQuery(strings.ToLower(term))
	q.SetField(fieldContent)
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	results, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(results.Total), nil
}

func (b *BleveIndex) termFrequencies() (map[string]int, error) {
	dict, err := b.index.FieldDict(fieldContent)
	if err != nil {
		return nil, fmt.Errorf("failed to read term dictionary: %w", err)
	}
	defer func() {
		_ = dict.Close()
	}()

	freqs := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read term dictionary: %w", err)
		}
		if entry == nil {
			break
		}
		freqs[entry.Term] = int(entry.Count)
	}
	return freqs, nil
}
