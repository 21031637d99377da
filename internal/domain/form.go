package domain

import (
	"fmt"
	"strings"
)

// Field types the generator is allowed to emit, mirroring the GOV.UK Design
// System components the renderer understands.
const (
	FieldText       = "text"
	FieldTextarea   = "textarea"
	FieldRadios     = "radios"
	FieldCheckboxes = "checkboxes"
	FieldSelect     = "select"
	FieldDate       = "date"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldNumber     = "number"
	FieldFile       = "file"
)

var validFieldTypes = map[string]bool{
	FieldText:       true,
	FieldTextarea:   true,
	FieldRadios:     true,
	FieldCheckboxes: true,
	FieldSelect:     true,
	FieldDate:       true,
	FieldEmail:      true,
	FieldPhone:      true,
	FieldNumber:     true,
	FieldFile:       true,
}

// FormDefinition is the generated form, one question page per entry.
type FormDefinition struct {
	Title string     `json:"title" bson:"title"`
	Pages []FormPage `json:"pages" bson:"pages"`
}

// FormPage is a single question page
type FormPage struct {
	Title  string      `json:"title" bson:"title"`
	Fields []FormField `json:"fields" bson:"fields"`
}

// FormField is one input on a page
type FormField struct {
	Name     string   `json:"name" bson:"name"`
	Type     string   `json:"type" bson:"type"`
	Label    string   `json:"label" bson:"label"`
	Hint     string   `json:"hint,omitempty" bson:"hint,omitempty"`
	Options  []string `json:"options,omitempty" bson:"options,omitempty"`
	Required bool     `json:"required" bson:"required"`
}

// Validate checks a generated definition before it is stored. Option-backed
// field types must carry options, everything else must not.
func (f *FormDefinition) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("form title is required")
	}
	if len(f.Pages) == 0 {
		return fmt.Errorf("form must have at least one page")
	}

	seen := make(map[string]bool)
	for i, page := range f.Pages {
		if strings.TrimSpace(page.Title) == "" {
			return fmt.Errorf("page %d: title is required", i+1)
		}
		if len(page.Fields) == 0 {
			return fmt.Errorf("page %d: at least one field is required", i+1)
		}
		for j, field := range page.Fields {
			if strings.TrimSpace(field.Name) == "" {
				return fmt.Errorf("page %d field %d: name is required", i+1, j+1)
			}
			if seen[field.Name] {
				return fmt.Errorf("duplicate field name: %s", field.Name)
			}
			seen[field.Name] = true

			if !validFieldTypes[field.Type] {
				return fmt.Errorf("field %s: unknown type %q", field.Name, field.Type)
			}
			if strings.TrimSpace(field.Label) == "" {
				return fmt.Errorf("field %s: label is required", field.Name)
			}

			needsOptions := field.Type == FieldRadios || field.Type == FieldCheckboxes || field.Type == FieldSelect
			if needsOptions && len(field.Options) < 2 {
				return fmt.Errorf("field %s: type %s needs at least two options", field.Name, field.Type)
			}
			if !needsOptions && len(field.Options) > 0 {
				return fmt.Errorf("field %s: type %s does not take options", field.Name, field.Type)
			}
		}
	}

	return nil
}
