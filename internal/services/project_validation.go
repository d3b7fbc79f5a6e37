package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/go-playground/validator/v10"
)

const tagLiveDemoRequired = "live_demo_required"

var projectValidate = newProjectValidator()

func newProjectValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(models.ProjectInput)
		if in.Status == models.ProjectStatusCompleted &&
			in.Visibility == models.VisibilityPublic &&
			in.LiveDemoURL == nil {
			sl.ReportError(in.LiveDemoURL, "live_demo_url", "LiveDemoURL", tagLiveDemoRequired, "")
		}
	}, models.ProjectInput{})
	return v
}

// NormalizeProjectInput trims text fields, drops blank tech entries and
// turns blank URLs into nil.
func NormalizeProjectInput(in *models.ProjectInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.ShortDescription = strings.TrimSpace(in.ShortDescription)
	in.FullDescription = strings.TrimSpace(in.FullDescription)
	in.GitHubURL = blankToNil(in.GitHubURL)
	in.LiveDemoURL = blankToNil(in.LiveDemoURL)
	in.ImageURL = blankToNil(in.ImageURL)

	tech := make([]string, 0, len(in.TechStack))
	seen := make(map[string]bool, len(in.TechStack))
	for _, t := range in.TechStack {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		tech = append(tech, t)
	}
	in.TechStack = tech
}

// ValidateProjectInput normalizes in and reports the first rule it breaks.
func ValidateProjectInput(in *models.ProjectInput) error {
	NormalizeProjectInput(in)

	err := projectValidate.Struct(*in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("", "Invalid project")
	}

	fe := fieldErrs[0]
	field := fe.Field()
	if i := strings.Index(field, "["); i >= 0 {
		field = field[:i]
	}
	return models.NewValidationError(field, projectFieldMessage(field, fe.Tag()))
}

func projectFieldMessage(field, tag string) string {
	label := projectFieldLabels[field]
	if label == "" {
		label = field
	}

	switch tag {
	case "required":
		return label + " is required"
	case "max":
		return label + " is too long"
	case "min":
		return "Select at least one technology"
	case "url":
		return label + " must be a valid URL"
	case "oneof":
		return label + " has an unsupported value"
	case tagLiveDemoRequired:
		return "Completed public projects need a live demo URL"
	default:
		return label + " is invalid"
	}
}

var projectFieldLabels = map[string]string{
	"title":             "Title",
	"short_description": "Short description",
	"full_description":  "Full description",
	"tech_stack":        "Tech stack",
	"github_url":        "GitHub URL",
	"live_demo_url":     "Live demo URL",
	"image_url":         "Image URL",
	"status":            "Status",
	"visibility":        "Visibility",
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
