package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/folio-sh/folio/internal/portfolio"
)

// ErrDuplicateID is returned by Build when two records share an id.
var ErrDuplicateID = errors.New("search: duplicate record id")

// Index is the immutable, ordered list of records. It is built once and
// shared read-only; nothing mutates it after Build returns.
type Index struct {
	records []Record
	byID    map[string]int
	terms   keywordSource // distinct keywords in index order, for Suggest
}

// Len returns the number of records.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// At returns the i-th record in index order.
func (ix *Index) At(i int) Record {
	return ix.records[i]
}

// Records returns a copy of all records in index order.
func (ix *Index) Records() []Record {
	if ix == nil {
		return nil
	}
	out := make([]Record, len(ix.records))
	copy(out, ix.records)
	return out
}

// Lookup finds a record by id.
func (ix *Index) Lookup(id string) (Record, bool) {
	if ix == nil {
		return Record{}, false
	}
	i, ok := ix.byID[id]
	if !ok {
		return Record{}, false
	}
	return ix.records[i], true
}

// Build assembles the index from the dataset: one page record per visible page (with
// curated keyword groups merged in), one section record per experience,
// education, leadership entry and skill category, and one project record per
// project. The dataset is validated first; any problem aborts the build.
func Build(d *portfolio.Data) (*Index, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil dataset", portfolio.ErrInvalidData)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := &builder{byID: make(map[string]int), termSeen: make(map[string]bool)}

	extra := make(map[string][]string)
	for _, g := range d.Keywords {
		extra[g.Page] = append(extra[g.Page], g.Terms...)
	}

	for _, p := range d.Pages {
		if p.Hidden {
			continue
		}
		b.add(Record{
			ID:          p.ID,
			Kind:        KindPage,
			Title:       p.Title,
			Description: p.Description,
			TargetRoute: p.Route,
			Keywords:    append(append([]string{}, p.Keywords...), extra[p.ID]...),
		})
	}

	anchors := AnchorsFor(d)

	experienceRoute := routeOf(d, "experience", "/experience")
	for i, e := range d.Experience {
		anchor := anchors.Experience[i]
		b.add(Record{
			ID:          "experience-" + anchor,
			Kind:        KindSection,
			Title:       e.Title + " at " + e.Company,
			Description: firstOr(e.Description, e.StartDate+" - "+e.EndDate),
			TargetRoute: experienceRoute + "#" + anchor,
			Keywords:    append([]string{strings.ToLower(e.Company)}, techNames(e.Technologies)...),
		})
	}

	aboutRoute := routeOf(d, "about", "/about")
	for i, ed := range d.Education {
		anchor := anchors.Education[i]
		b.add(Record{
			ID:          "education-" + anchor,
			Kind:        KindSection,
			Title:       ed.Degree,
			Description: ed.Institution,
			TargetRoute: aboutRoute + "#" + anchor,
			Keywords:    []string{"education", strings.ToLower(ed.Institution)},
		})
	}
	for i, l := range d.Leadership {
		anchor := anchors.Leadership[i]
		b.add(Record{
			ID:          "leadership-" + anchor,
			Kind:        KindSection,
			Title:       l.Title,
			Description: l.Organization,
			TargetRoute: aboutRoute + "#" + anchor,
			Keywords:    []string{"leadership", strings.ToLower(l.Organization)},
		})
	}

	homeRoute := routeOf(d, "home", "/")
	for i, cat := range d.SkillCategories() {
		anchor := anchors.Skills[i]
		var names []string
		for _, s := range d.Skills {
			c := s.Category
			if c == "" {
				c = "Other"
			}
			if c == cat {
				names = append(names, s.Name)
			}
		}
		b.add(Record{
			ID:          anchor,
			Kind:        KindSection,
			Title:       cat + " skills",
			Description: strings.Join(names, ", "),
			TargetRoute: homeRoute + "#" + anchor,
			Keywords:    append([]string{"skills"}, lowerAll(names)...),
		})
	}

	projectsRoute := routeOf(d, "projects", "/projects")
	for i, p := range d.Projects {
		anchor := anchors.Projects[i]
		b.add(Record{
			ID:          "project-" + anchor,
			Kind:        KindProject,
			Title:       p.Title,
			Description: p.Description,
			TargetRoute: projectsRoute + "#" + anchor,
			Keywords:    techNames(p.Technologies),
		})
	}

	if b.err != nil {
		return nil, b.err
	}
	return &Index{records: b.records, byID: b.byID, terms: b.terms}, nil
}

type builder struct {
	records []Record
	byID    map[string]int
	err     error

	termSeen map[string]bool
	terms    keywordSource
}

// add normalises keywords (lowercase, trimmed, deduplicated, title first) and
// appends the record. Derived ids are unique by construction (see AnchorsFor),
// so a duplicate means two pages share an id; the first one is kept as the
// build error.
func (b *builder) add(r Record) {
	if b.err != nil {
		return
	}
	if _, dup := b.byID[r.ID]; dup {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateID, r.ID)
		return
	}

	seen := make(map[string]bool, len(r.Keywords)+1)
	kws := make([]string, 0, len(r.Keywords)+1)
	for _, k := range append([]string{r.Title}, r.Keywords...) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		kws = append(kws, k)
		if !b.termSeen[k] {
			b.termSeen[k] = true
			b.terms.terms = append(b.terms.terms, k)
		}
	}
	r.Keywords = kws
	r.prepare()

	b.byID[r.ID] = len(b.records)
	b.records = append(b.records, r)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses runs of non-alphanumerics into "-".
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func routeOf(d *portfolio.Data, pageID, fallback string) string {
	if p, ok := d.Page(pageID); ok {
		return p.Route
	}
	return fallback
}

func techNames(ts []portfolio.Technology) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, strings.ToLower(t.Name))
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func firstOr(lines []string, fallback string) string {
	if len(lines) > 0 {
		return lines[0]
	}
	return fallback
}
