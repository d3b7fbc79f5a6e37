package models

import (
	"regexp"
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusCompleted  ProjectStatus = "Completed"
	ProjectStatusInProgress ProjectStatus = "In Progress"
)

type ProjectVisibility string

const (
	VisibilityPublic ProjectVisibility = "Public"
	VisibilityHidden ProjectVisibility = "Hidden"
	VisibilityDraft  ProjectVisibility = "Draft"
)

// Project is a portfolio entry. Only Public projects are served to anonymous visitors.
type Project struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	ShortDescription string            `json:"short_description"`
	FullDescription  string            `json:"full_description"`
	TechStack        []string          `json:"tech_stack"`
	GitHubURL        *string           `json:"github_url"`
	LiveDemoURL      *string           `json:"live_demo_url"`
	ImageURL         *string           `json:"image_url"`
	Status           ProjectStatus     `json:"status"`
	Visibility       ProjectVisibility `json:"visibility"`
	Featured         bool              `json:"featured"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// IsPublic reports whether anonymous visitors may see the project.
func (p *Project) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// ProjectList is one page of the admin listing.
type ProjectList struct {
	Projects []*Project `json:"projects"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

// BulkAction names an operation applied to several projects at once.
type BulkAction string

const (
	BulkActionDelete    BulkAction = "delete"
	BulkActionShow      BulkAction = "show"
	BulkActionHide      BulkAction = "hide"
	BulkActionFeature   BulkAction = "feature"
	BulkActionUnfeature BulkAction = "unfeature"
)

// TechStackOptions is the catalogue offered by the admin form.
var TechStackOptions = []string{
	"React", "Next.js", "TypeScript", "JavaScript", "Node.js", "Python",
	"Go", "Rust", "Java", "PostgreSQL", "MongoDB", "Redis", "Docker",
	"Kubernetes", "AWS", "Tailwind CSS", "GraphQL", "Supabase",
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// GenerateSlug lower-cases title, drops anything that is not a word
// character, space or hyphen, and joins the remaining runs with single hyphens.
// Applying it to its own output returns the same value.
func GenerateSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ProjectCounts backs the admin dashboard tiles.
type ProjectCounts struct {
	Total    int64 `json:"total"`
	Public   int64 `json:"public"`
	Hidden   int64 `json:"hidden"`
	Draft    int64 `json:"draft"`
	Featured int64 `json:"featured"`
}

// ProjectInput is the editable part of a project, as submitted by the admin form.
type ProjectInput struct {
	Title            string            `json:"title" validate:"required,max=200"`
	ShortDescription string            `json:"short_description" validate:"required,max=500"`
	FullDescription  string            `json:"full_description" validate:"max=20000"`
	TechStack        []string          `json:"tech_stack" validate:"min=1,max=30,dive,required,max=50"`
	GitHubURL        *string           `json:"github_url" validate:"omitempty,url"`
	LiveDemoURL      *string           `json:"live_demo_url" validate:"omitempty,url"`
	ImageURL         *string           `json:"image_url" validate:"omitempty,url"`
	Status           ProjectStatus     `json:"status" validate:"required,oneof=Completed 'In Progress'"`
	Visibility       ProjectVisibility `json:"visibility" validate:"required,oneof=Public Hidden Draft"`
	Featured         bool              `json:"featured"`
}

// BulkResult reports how many projects a bulk action touched.
type BulkResult struct {
	Action   BulkAction `json:"action"`
	Affected int        `json:"affected"`
}
