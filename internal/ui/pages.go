package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/search"
)

// renderedPage is a page body plus the line offset of each #anchor in it.
type renderedPage struct {
	Title    string
	Body     string
	Anchors  map[string]int
	NotFound bool
}

// pageWriter accumulates blocks and remembers where anchors start.
type pageWriter struct {
	blocks  []string
	lines   int
	anchors map[string]int
}

func (w *pageWriter) anchor(name string) {
	if w.anchors == nil {
		w.anchors = make(map[string]int)
	}
	w.anchors[name] = w.lines
}

func (w *pageWriter) add(block string) {
	w.blocks = append(w.blocks, block)
	w.lines += lipgloss.Height(block)
}

func (w *pageWriter) gap() { w.add("") }

func (w *pageWriter) String() string { return strings.Join(w.blocks, "\n") }

// pageStyles are derived from a palette per render.
type pageStyles struct {
	pal      Palette
	heading  lipgloss.Style
	sub      lipgloss.Style
	text     lipgloss.Style
	dim      lipgloss.Style
	card     lipgloss.Style
	tag      lipgloss.Style
	bar      lipgloss.Style
	barEmpty lipgloss.Style
	link     lipgloss.Style
}

func newPageStyles(p Palette) pageStyles {
	return pageStyles{
		pal:      p,
		heading:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		sub:      lipgloss.NewStyle().Foreground(p.Purple).Bold(true),
		text:     lipgloss.NewStyle().Foreground(p.Text),
		dim:      lipgloss.NewStyle().Foreground(p.Comment),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		tag:      lipgloss.NewStyle().Foreground(p.Bg).Background(p.Cyan).Padding(0, 1),
		bar:      lipgloss.NewStyle().Foreground(p.Green),
		barEmpty: lipgloss.NewStyle().Foreground(p.Border),
		link:     lipgloss.NewStyle().Foreground(p.Cyan).Underline(true),
	}
}

// renderPage draws the body for path. It only reads d and p, so it is safe
// to call from a prefetch command.
func renderPage(d *portfolio.Data, path string, width int, p Palette) renderedPage {
	if width < 20 {
		width = 20
	}
	st := newPageStyles(p)
	rt := newRouteTable(d)
	page, ok := rt.lookup(path)
	if !ok {
		return renderNotFound(path, st)
	}

	w := &pageWriter{}
	an := search.AnchorsFor(d)
	switch page.ID {
	case "home":
		renderHome(w, d, an, width, st)
	case "about":
		renderAbout(w, d, an, width, st)
	case "experience":
		renderExperience(w, d, an, width, st)
	case "projects":
		renderProjects(w, d, an, width, st)
	case "contact":
		renderContactInfo(w, d, st)
	case "privacy":
		renderPrivacy(w, width, st)
	default:
		w.add(st.heading.Render(page.Title))
		w.gap()
		w.add(st.text.Width(width).Render(page.Description))
	}
	return renderedPage{Title: page.Title, Body: w.String(), Anchors: w.anchors}
}

func renderNotFound(path string, st pageStyles) renderedPage {
	body := lipgloss.JoinVertical(lipgloss.Left,
		st.heading.Render("404"),
		"",
		st.text.Render(fmt.Sprintf("Nothing lives at %s.", path)),
		st.dim.Render("Press 1 to go home or / to search."),
	)
	return renderedPage{Title: "Not found", Body: body, NotFound: true}
}

func renderHome(w *pageWriter, d *portfolio.Data, an search.Anchors, width int, st pageStyles) {
	w.add(st.heading.Render(d.Personal.Name))
	w.add(st.sub.Render(d.Personal.Title))
	w.gap()
	if d.Personal.Summary != "" {
		w.add(renderMarkdown(d.Personal.Summary, width, st.pal.Theme))
		w.gap()
	}

	if featured := d.FeaturedProjects(); len(featured) > 0 {
		w.add(st.heading.Render("Featured projects"))
		for _, pr := range featured {
			w.add(projectCard(pr, width, st))
		}
		w.gap()
	}

	w.add(st.heading.Render("Skills"))
	for i, cat := range d.SkillCategories() {
		w.anchor(an.Skills[i])
		w.add(st.sub.Render(cat))
		for _, s := range d.Skills {
			c := s.Category
			if c == "" {
				c = "Other"
			}
			if c == cat {
				w.add(skillBar(s, width, st))
			}
		}
	}
}

func skillBar(s portfolio.Skill, width int, st pageStyles) string {
	const nameCol = 24
	barWidth := min(30, max(10, width-nameCol-6))
	filled := s.Level * barWidth / 100
	name := runewidth.FillRight(runewidth.Truncate(s.Name, nameCol-1, "…"), nameCol)
	return "  " + st.text.Render(name) +
		st.bar.Render(strings.Repeat("█", filled)) +
		st.barEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		st.dim.Render(fmt.Sprintf(" %3d%%", s.Level))
}

func renderAbout(w *pageWriter, d *portfolio.Data, an search.Anchors, width int, st pageStyles) {
	w.add(st.heading.Render("About"))
	w.gap()
	if d.Personal.Summary != "" {
		w.add(renderMarkdown(d.Personal.Summary, width, st.pal.Theme))
		w.gap()
	}

	if len(d.Education) > 0 {
		w.add(st.heading.Render("Education"))
		for i, ed := range d.Education {
			w.anchor(an.Education[i])
			w.add(st.sub.Render(ed.Degree))
			w.add(st.text.Render(ed.Institution + optional(", ", ed.Location)))
			w.add(st.dim.Render(dateRange(ed.StartDate, ed.EndDate) + optional("  GPA ", ed.GPA)))
			if ed.Description != "" {
				w.add(st.text.Width(width).Render(ed.Description))
			}
			w.gap()
		}
	}

	if len(d.Leadership) > 0 {
		w.add(st.heading.Render("Leadership"))
		for i, l := range d.Leadership {
			w.anchor(an.Leadership[i])
			w.add(st.sub.Render(l.Title) + st.dim.Render(" · "+l.Organization))
			if l.Date != "" {
				w.add(st.dim.Render(l.Date))
			}
			if l.Description != "" {
				w.add(st.text.Width(width).Render(l.Description))
			}
			w.gap()
		}
	}

	if len(d.Technologies) > 0 {
		w.add(st.heading.Render("Technologies"))
		w.add(tagRow(d.Technologies, width, st))
	}
}

func renderExperience(w *pageWriter, d *portfolio.Data, an search.Anchors, width int, st pageStyles) {
	w.add(st.heading.Render("Experience"))
	w.gap()
	if len(d.Experience) == 0 {
		w.add(st.dim.Render("No positions listed yet."))
		return
	}
	for i, e := range d.Experience {
		w.anchor(an.Experience[i])
		w.add(st.sub.Render(e.Title) + st.dim.Render(" · "+e.Company+optional(", ", e.Location)))
		w.add(st.dim.Render(dateRange(e.StartDate, e.EndDate)))
		for _, line := range e.Description {
			w.add(st.text.Width(width).Render("• " + line))
		}
		if len(e.Technologies) > 0 {
			w.add(tagRow(e.Technologies, width, st))
		}
		w.gap()
	}
}

func renderProjects(w *pageWriter, d *portfolio.Data, an search.Anchors, width int, st pageStyles) {
	w.add(st.heading.Render("Projects"))
	w.gap()
	for i, pr := range d.Projects {
		w.anchor(an.Projects[i])
		w.add(projectCard(pr, width, st))
	}
}

func projectCard(pr portfolio.Project, width int, st pageStyles) string {
	inner := max(16, width-4)
	parts := []string{st.sub.Render(pr.Title)}
	parts = append(parts, renderMarkdown(pr.Description, inner, st.pal.Theme))
	parts = append(parts, tagRow(pr.Technologies, inner, st))
	if link := projectLink(pr); link != "" {
		parts = append(parts, st.link.Render(link))
	}
	return st.card.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// projectLink prefers the live demo, then GitHub, then Kaggle.
func projectLink(pr portfolio.Project) string {
	switch {
	case pr.Link != "":
		return pr.Link
	case pr.GitHub != "":
		return pr.GitHub
	default:
		return pr.Kaggle
	}
}

func renderContactInfo(w *pageWriter, d *portfolio.Data, st pageStyles) {
	w.add(st.heading.Render("Get in touch"))
	w.gap()
	c := d.Personal.Contact
	if c.Email != "" {
		w.add(st.dim.Render("email    ") + st.link.Render(c.Email))
	}
	if c.Phone != "" {
		w.add(st.dim.Render("phone    ") + st.text.Render(c.Phone))
	}
	if c.Address != "" {
		w.add(st.dim.Render("location ") + st.text.Render(c.Address))
	}
	for _, s := range c.Socials {
		w.add(st.dim.Render(runewidth.FillRight(strings.ToLower(s.Platform), 9)) + st.link.Render(s.URL))
	}
}

const privacyText = `folio keeps a small local record of how it is used.

* **Analytics**: page views, search selections, copied links and contact form outcomes are stored in ` + "`~/.folio/state.db`" + `. Nothing leaves your machine. Each kind can be switched off under ` + "`[analytics]`" + ` in the config.
* **Contact form**: messages are sent to the configured form relay and a copy of every attempt is kept in the local outbox.
* **Logs**: debug logs are written only when ` + "`FOLIO_DEBUG`" + ` is set.`

func renderPrivacy(w *pageWriter, width int, st pageStyles) {
	w.add(st.heading.Render("Privacy Policy"))
	w.gap()
	w.add(renderMarkdown(privacyText, width, st.pal.Theme))
}

func tagRow(ts []portfolio.Technology, width int, st pageStyles) string {
	var rows []string
	var line []string
	used := 0
	for _, t := range ts {
		tag := st.tag.Render(t.Name)
		tw := lipgloss.Width(tag) + 1
		if used > 0 && used+tw > width {
			rows = append(rows, strings.Join(line, " "))
			line, used = nil, 0
		}
		line = append(line, tag)
		used += tw
	}
	if len(line) > 0 {
		rows = append(rows, strings.Join(line, " "))
	}
	return strings.Join(rows, "\n")
}

// renderMarkdown renders md with glamour. Failures fall back to the plain
// text so a page never goes blank.
func renderMarkdown(md string, width int, theme Theme) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(string(theme)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		uiLog.Warn("markdown_renderer_failed", slog.String("error", err.Error()))
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		uiLog.Warn("markdown_render_failed", slog.String("error", err.Error()))
		return md
	}
	return strings.Trim(out, "\n")
}

func dateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return end
	}
	return start + " - " + end
}

func optional(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}
