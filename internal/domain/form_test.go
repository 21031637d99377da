package domain_test

import (
	"testing"

	"github.com/formlab/formgen/internal/domain"
	"github.com/stretchr/testify/assert"
)

func validForm() domain.FormDefinition {
	return domain.FormDefinition{
		Title: "Apply for a permit",
		Pages: []domain.FormPage{
			{
				Title: "Your details",
				Fields: []domain.FormField{
					{Name: "full-name", Type: domain.FieldText, Label: "What is your full name?", Required: true},
					{Name: "contact", Type: domain.FieldRadios, Label: "How should we contact you?", Options: []string{"Email", "Phone"}},
				},
			},
		},
	}
}

func TestFormDefinition_Validate(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		form := validForm()
		assert.NoError(t, form.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		form := validForm()
		form.Title = "  "
		assert.Error(t, form.Validate())
	})

	t.Run("no pages", func(t *testing.T) {
		form := validForm()
		form.Pages = nil
		assert.Error(t, form.Validate())
	})

	t.Run("page without fields", func(t *testing.T) {
		form := validForm()
		form.Pages[0].Fields = nil
		assert.Error(t, form.Validate())
	})

	t.Run("duplicate field names across pages", func(t *testing.T) {
		form := validForm()
		form.Pages = append(form.Pages, domain.FormPage{
			Title: "More details",
			Fields: []domain.FormField{
				{Name: "full-name", Type: domain.FieldText, Label: "Name again?"},
			},
		})
		assert.Error(t, form.Validate())
	})

	t.Run("unknown field type", func(t *testing.T) {
		form := validForm()
		form.Pages[0].Fields[0].Type = "signature"
		assert.Error(t, form.Validate())
	})

	t.Run("radios with one option", func(t *testing.T) {
		form := validForm()
		form.Pages[0].Fields[1].Options = []string{"Email"}
		assert.Error(t, form.Validate())
	})

	t.Run("text field with options", func(t *testing.T) {
		form := validForm()
		form.Pages[0].Fields[0].Options = []string{"A", "B"}
		assert.Error(t, form.Validate())
	})

	t.Run("missing label", func(t *testing.T) {
		form := validForm()
		form.Pages[0].Fields[0].Label = ""
		assert.Error(t, form.Validate())
	})
}
