// Package portfolio holds the static dataset the site is rendered from: the
// person, their pages, projects, skills, work history and education.
package portfolio

// Data is the complete dataset. It is trusted configuration, loaded once at
// startup and never mutated afterwards.
type Data struct {
	Personal     Personal       `toml:"personal" yaml:"personal" json:"personal"`
	Pages        []Page         `toml:"pages" yaml:"pages" json:"pages" validate:"required,min=1,dive"`
	Skills       []Skill        `toml:"skills" yaml:"skills" json:"skills" validate:"dive"`
	Technologies []Technology   `toml:"technologies" yaml:"technologies" json:"technologies" validate:"dive"`
	Experience   []Experience   `toml:"experience" yaml:"experience" json:"experience" validate:"dive"`
	Projects     []Project      `toml:"projects" yaml:"projects" json:"projects" validate:"dive"`
	Education    []Education    `toml:"education" yaml:"education" json:"education" validate:"dive"`
	Leadership   []Leadership   `toml:"leadership" yaml:"leadership" json:"leadership" validate:"dive"`
	Keywords     []KeywordGroup `toml:"keywords" yaml:"keywords" json:"keywords" validate:"dive"`
}

// Personal is the hero / about block.
type Personal struct {
	Name    string  `toml:"name" yaml:"name" json:"name" validate:"required"`
	Title   string  `toml:"title" yaml:"title" json:"title" validate:"required,notblank"`
	Summary string  `toml:"summary" yaml:"summary" json:"summary"`
	Contact Contact `toml:"contact" yaml:"contact" json:"contact"`
}

// Contact lists the ways to reach the portfolio owner.
type Contact struct {
	Address string       `toml:"address" yaml:"address" json:"address,omitempty"`
	Phone   string       `toml:"phone" yaml:"phone" json:"phone,omitempty"`
	Email   string       `toml:"email" yaml:"email" json:"email" validate:"omitempty,email"`
	Socials []SocialLink `toml:"socials" yaml:"socials" json:"socials" validate:"dive"`
}

// SocialLink is one profile link.
type SocialLink struct {
	Platform string `toml:"platform" yaml:"platform" json:"platform" validate:"required"`
	URL      string `toml:"url" yaml:"url" json:"url" validate:"required,url"`
	Icon     string `toml:"icon" yaml:"icon" json:"icon,omitempty"`
}

// Page is a top-level route of the site.
type Page struct {
	ID          string   `toml:"id" yaml:"id" json:"id" validate:"required,notblank"`
	Title       string   `toml:"title" yaml:"title" json:"title" validate:"required,notblank"`
	Description string   `toml:"description" yaml:"description" json:"description"`
	Route       string   `toml:"route" yaml:"route" json:"route" validate:"required,startswith=/"`
	Keywords    []string `toml:"keywords" yaml:"keywords" json:"keywords,omitempty"`
	// Hidden pages are routable but left out of the navigation bar.
	Hidden bool `toml:"hidden" yaml:"hidden" json:"hidden,omitempty"`
}

// Skill is a rated competency.
type Skill struct {
	Name     string `toml:"name" yaml:"name" json:"name" validate:"required"`
	Level    int    `toml:"level" yaml:"level" json:"level" validate:"gte=0,lte=100"`
	Icon     string `toml:"icon" yaml:"icon" json:"icon,omitempty"`
	Category string `toml:"category" yaml:"category" json:"category,omitempty"`
}

// Technology is a named tool or library.
type Technology struct {
	Name string `toml:"name" yaml:"name" json:"name" validate:"required"`
	Icon string `toml:"icon" yaml:"icon" json:"icon,omitempty"`
}

// Experience is one position in the work history.
type Experience struct {
	Title        string       `toml:"title" yaml:"title" json:"title" validate:"required,notblank"`
	Company      string       `toml:"company" yaml:"company" json:"company" validate:"required,notblank"`
	Location     string       `toml:"location" yaml:"location" json:"location,omitempty"`
	StartDate    string       `toml:"start_date" yaml:"start_date" json:"startDate" validate:"required"`
	EndDate      string       `toml:"end_date" yaml:"end_date" json:"endDate" validate:"required"`
	Description  []string     `toml:"description" yaml:"description" json:"description"`
	Technologies []Technology `toml:"technologies" yaml:"technologies" json:"technologies,omitempty" validate:"dive"`
}

// Project is a showcased piece of work.
type Project struct {
	Title        string       `toml:"title" yaml:"title" json:"title" validate:"required,notblank"`
	Description  string       `toml:"description" yaml:"description" json:"description" validate:"required"`
	Technologies []Technology `toml:"technologies" yaml:"technologies" json:"technologies" validate:"required,min=1,dive"`
	Link         string       `toml:"link" yaml:"link" json:"link,omitempty" validate:"omitempty,url"`
	GitHub       string       `toml:"github" yaml:"github" json:"github,omitempty" validate:"omitempty,url"`
	Kaggle       string       `toml:"kaggle" yaml:"kaggle" json:"kaggle,omitempty" validate:"omitempty,url"`
	Featured     bool         `toml:"featured" yaml:"featured" json:"featured,omitempty"`
}

// Education is one degree.
type Education struct {
	Degree      string `toml:"degree" yaml:"degree" json:"degree" validate:"required,notblank"`
	Institution string `toml:"institution" yaml:"institution" json:"institution" validate:"required,notblank"`
	Location    string `toml:"location" yaml:"location" json:"location,omitempty"`
	StartDate   string `toml:"start_date" yaml:"start_date" json:"startDate"`
	EndDate     string `toml:"end_date" yaml:"end_date" json:"endDate"`
	GPA         string `toml:"gpa" yaml:"gpa" json:"gpa,omitempty"`
	Description string `toml:"description" yaml:"description" json:"description,omitempty"`
}

// Leadership is a role outside of employment.
type Leadership struct {
	Title        string `toml:"title" yaml:"title" json:"title" validate:"required,notblank"`
	Organization string `toml:"organization" yaml:"organization" json:"organization" validate:"required,notblank"`
	Date         string `toml:"date" yaml:"date" json:"date"`
	Description  string `toml:"description" yaml:"description" json:"description"`
}

// KeywordGroup adds curated search terms to a page.
type KeywordGroup struct {
	Page  string   `toml:"page" yaml:"page" json:"page" validate:"required"`
	Terms []string `toml:"terms" yaml:"terms" json:"terms" validate:"required,min=1"`
}

// Page returns the page with the given id.
func (d *Data) Page(id string) (Page, bool) {
	for _, p := range d.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// PageByRoute returns the page whose route equals route.
func (d *Data) PageByRoute(route string) (Page, bool) {
	for _, p := range d.Pages {
		if p.Route == route {
			return p, true
		}
	}
	return Page{}, false
}

// FeaturedProjects returns projects flagged as featured, in dataset order.
func (d *Data) FeaturedProjects() []Project {
	var out []Project
	for _, p := range d.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// SkillCategories returns the distinct skill categories in first-seen order.
// Skills without a category are grouped under "Other".
func (d *Data) SkillCategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range d.Skills {
		c := s.Category
		if c == "" {
			c = "Other"
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
