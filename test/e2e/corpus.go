// Package e2e provides end-to-end tests over a generated legal corpus written to disk.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/jurisearch/internal/models"
)

// LegalDocument is one generated corpus file.
type LegalDocument struct {
	Category models.Category
	// FileName is the base name written under the category directory.
	FileName string
	Content  string
	// Signature is a made-up token that only this document contains.
	Signature string
}

// QueryTestCase defines a query and the source document that must appear in its results.
type QueryTestCase struct {
	Query          string
	Category       string
	ExpectedSource string
	// MatchTopic accepts any document generated from the same topic as ExpectedSource.
	MatchTopic     bool
	Description    string
}

// Corpus holds documents and query test cases for E2E tests.
type Corpus struct {
	Documents    []LegalDocument
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

type topic struct {
	category models.Category
	stem     string
	title    string
	body     string
}

var topics = []topic{
	{models.CategoryContracts, "employment_contract", "Employment Agreement",
		"The employee receives a monthly salary and serves a probation period before permanent employment."},
	{models.CategoryContracts, "service_agreement", "Master Service Agreement",
		"The supplier meets agreed service levels and submits invoices monthly for the services rendered."},
	{models.CategoryContracts, "nda_template", "Mutual Nondisclosure Agreement",
		"Each party keeps confidential information secret and limits disclosure to its advisers."},
	{models.CategoryClauses, "indemnification_clause", "Indemnity",
		"The supplier shall indemnify and hold harmless the customer against all losses and claims."},
	{models.CategoryClauses, "termination_clause", "Termination",
		"Either party may terminate this agreement upon written notice after a material breach."},
	{models.CategoryClauses, "force_majeure_clause", "Force Majeure",
		"Neither party is liable for delay caused by force majeure events beyond its reasonable control."},
	{models.CategoryPrecedents, "smith_v_jones_negligence", "Smith v Jones",
		"The court held that the defendant breached a duty of care and awarded damages for negligence."},
	{models.CategoryPrecedents, "acme_v_beta_copyright", "Acme v Beta",
		"The court found copyright infringement because the copying was not fair dealing."},
	{models.CategoryStatutes, "data_protection_act", "Data Protection Act",
		"A controller may process personal data only on a lawful basis and must keep records of processing."},
	{models.CategoryStatutes, "consumer_rights_act", "Consumer Rights Act",
		"Goods supplied to a consumer must be of satisfactory quality and fit for purpose."},
}

// fileExtensions rotates the written formats so every loader path is exercised.
var fileExtensions = []string{".txt", ".md", ".docx", ".rst"}

// BuildCorpus returns perTopic documents for every topic, each carrying a unique signature
// token twice so queries can assert the right document is returned.
func BuildCorpus(perTopic int) *Corpus {
	var docs []LegalDocument
	n := 0
	for _, tp := range topics {
		for i := 0; i < perTopic; i++ {
			sig := signature(n)
			ext := fileExtensions[n%len(fileExtensions)]
			docs = append(docs, LegalDocument{
				Category:  tp.category,
				FileName:  fmt.Sprintf("%s_%d%s", tp.stem, i+1, ext),
				Signature: sig,
				Content: fmt.Sprintf("%s (version %s). %s Reference %s applies to this document only.",
					tp.title, sig, tp.body, sig),
			})
			n++
		}
	}
	cases := buildQueryTestCases(docs)
	return &Corpus{
		Documents:    docs,
		TestCases:    cases,
		TotalDocs:    len(docs),
		TotalQueries: len(cases),
	}
}

func buildQueryTestCases(docs []LegalDocument) []QueryTestCase {
	cases := make([]QueryTestCase, 0, len(docs)+len(topics))
	for _, d := range docs {
		cases = append(cases, QueryTestCase{
			Query:          d.Signature + " reference",
			ExpectedSource: d.FileName,
			Description:    "signature lookup for " + d.FileName,
		})
	}
	// One topical query per topic, restricted to its category.
	for i, tp := range topics {
		words := strings.Fields(strings.ToLower(strings.TrimSuffix(tp.body, ".")))
		cases = append(cases, QueryTestCase{
			Query:          strings.Join(words[len(words)-4:], " "),
			Category:       string(tp.category),
			ExpectedSource: firstDocOfTopic(docs, i),
			MatchTopic:     true,
			Description:    "topical query for " + tp.stem,
		})
	}
	return cases
}

// firstDocOfTopic returns the file name of the first document generated for topic t.
func firstDocOfTopic(docs []LegalDocument, t int) string {
	perTopic := len(docs) / len(topics)
	return docs[t*perTopic].FileName
}

// signature encodes n as a letters-only token so it survives tokenization.
func signature(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "zq" + string(letters[(n/26)%26]) + string(letters[n%26]) + "x"
}

// WriteTo writes every document under root/<category>/.
func (c *Corpus) WriteTo(root string) error {
	for _, d := range c.Documents {
		dir := filepath.Join(root, string(d.Category))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		content, err := WriteMinimalFile(filepath.Ext(d.FileName), d.Content)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, d.FileName), content, 0644); err != nil {
			return err
		}
	}
	return nil
}

// TopicStem returns the topic stem a generated file name belongs to.
func TopicStem(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if i := strings.LastIndex(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}
