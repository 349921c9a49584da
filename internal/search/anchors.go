package search

import (
	"fmt"
	"strconv"

	"github.com/folio-sh/folio/internal/portfolio"
)

// Anchors holds the in-page anchor of every derived entry, parallel to the
// dataset slices. Anchors are unique within the page they live on, so two
// degrees from the same institution, or titles with no ASCII letters, still
// get distinct targets. Record ids are the kind prefix plus the anchor.
type Anchors struct {
	Experience []string
	Education  []string
	Leadership []string
	Skills     []string // parallel to Data.SkillCategories()
	Projects   []string
}

// AnchorsFor derives the anchors for d. The result depends only on d.
func AnchorsFor(d *portfolio.Data) Anchors {
	var a Anchors

	exp := newSlugger()
	for i, e := range d.Experience {
		a.Experience = append(a.Experience, exp.next(Slug(e.Company+" "+e.Title), i))
	}

	// education and leadership share the about page
	about := newSlugger()
	for i, ed := range d.Education {
		a.Education = append(a.Education, about.next(Slug(ed.Institution), i))
	}
	for i, l := range d.Leadership {
		a.Leadership = append(a.Leadership, about.next(Slug(l.Organization+" "+l.Title), i))
	}

	home := newSlugger()
	for i, cat := range d.SkillCategories() {
		slug := Slug(cat)
		if slug == "" {
			slug = strconv.Itoa(i + 1)
		}
		a.Skills = append(a.Skills, home.next("skills-"+slug, i))
	}

	projects := newSlugger()
	for i, p := range d.Projects {
		a.Projects = append(a.Projects, projects.next(Slug(p.Title), i))
	}
	return a
}

// slugger hands out unique anchors for one page.
type slugger struct {
	taken map[string]bool
}

func newSlugger() *slugger {
	return &slugger{taken: make(map[string]bool)}
}

// next returns slug, or the 1-based position when slug is empty, with a
// "-2", "-3"... suffix until it is unused on this page.
func (s *slugger) next(slug string, pos int) string {
	if slug == "" {
		slug = strconv.Itoa(pos + 1)
	}
	out := slug
	for n := 2; s.taken[out]; n++ {
		out = fmt.Sprintf("%s-%d", slug, n)
	}
	s.taken[out] = true
	return out
}
