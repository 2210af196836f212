package wizard

import (
	"strconv"
	"strings"

	"eventdesk/pkg/types"
)

// Builder is the working copy of one registration form. Saved forms are never
// edited through a builder directly; ViewForm copies them in and SaveForm
// copies them back out.
type Builder struct {
	FormName string                  `json:"formName"`
	Price    string                  `json:"price"`
	Selected []string                `json:"selected"`
	Custom   []types.FieldDescriptor `json:"custom"`
	// Fields is the last generated preview.
	Fields []types.FieldDescriptor `json:"fields"`
	// EditingID is the saved form being re-edited, zero for a new form.
	EditingID int `json:"editingId,omitempty"`
	// SavedID locks a tab once its form has been saved.
	SavedID int `json:"savedId,omitempty"`
}

func (b *Builder) Locked() bool {
	return b.SavedID != 0
}

func (b *Builder) IsSelected(label string) bool {
	for _, s := range b.Selected {
		if s == label {
			return true
		}
	}
	return false
}

// ToggleField adds or removes one of the predefined fields.
func (b *Builder) ToggleField(label string) error {
	if _, ok := predefinedField(label); !ok {
		return ErrUnknownField
	}
	for i, s := range b.Selected {
		if s == label {
			b.Selected = append(b.Selected[:i], b.Selected[i+1:]...)
			return nil
		}
	}
	b.Selected = append(b.Selected, label)
	return nil
}

// AddCustomField appends an empty text field. It is refused while the last
// custom field has no label.
func (b *Builder) AddCustomField() error {
	if n := len(b.Custom); n > 0 && strings.TrimSpace(b.Custom[n-1].Label) == "" {
		return ErrEmptyFieldLabel
	}
	b.Custom = append(b.Custom, types.FieldDescriptor{Type: types.FieldTypeText})
	return nil
}

func (b *Builder) UpdateCustomField(i int, label string, fieldType types.FieldType, required bool) error {
	if i < 0 || i >= len(b.Custom) {
		return ErrFieldIndex
	}
	if !fieldType.Valid() {
		fieldType = types.FieldTypeText
	}
	b.Custom[i] = types.FieldDescriptor{Label: label, Type: fieldType, Required: required}
	return nil
}

func (b *Builder) RemoveCustomField(i int) error {
	if i < 0 || i >= len(b.Custom) {
		return ErrFieldIndex
	}
	b.Custom = append(b.Custom[:i], b.Custom[i+1:]...)
	return nil
}

// Generate builds the field list: selected predefined fields in the order they
// were picked, then every custom field with a non-empty label.
func (b *Builder) Generate() []types.FieldDescriptor {
	fields := make([]types.FieldDescriptor, 0, len(b.Selected)+len(b.Custom))
	for _, label := range b.Selected {
		if f, ok := predefinedField(label); ok {
			fields = append(fields, f)
		}
	}
	for _, f := range b.Custom {
		label := strings.TrimSpace(f.Label)
		if label == "" {
			continue
		}
		f.Label = label
		fields = append(fields, f)
	}
	b.Fields = fields
	return fields
}

// validate checks the builder against FormRules plus the custom field labels.
func (b *Builder) validate(eventType string) map[string]string {
	errs := FormRules.Validate(Subject{Values: Values{
		FieldFormName:  b.FormName,
		FieldPrice:     b.Price,
		FieldEventType: eventType,
	}})
	for i, f := range b.Custom {
		if strings.TrimSpace(f.Label) == "" {
			errs["customFields."+strconv.Itoa(i)] = "Field name is required"
		}
	}
	return errs
}

// form materializes the builder as a SavedForm with the given id. The price is
// only kept for paid events.
func (b *Builder) form(id int, eventType string) types.SavedForm {
	form := types.SavedForm{
		ID:     id,
		Name:   strings.TrimSpace(b.FormName),
		Fields: b.Generate(),
	}
	if eventType == string(types.EventTypePaid) {
		if price, err := strconv.ParseFloat(strings.TrimSpace(b.Price), 64); err == nil {
			form.Price = &price
		}
	}
	return form
}

// load copies form into the builder. The builder never aliases the form's
// slices.
func (b *Builder) load(form types.SavedForm) {
	b.FormName = form.Name
	b.Price = ""
	if form.Price != nil {
		b.Price = strconv.FormatFloat(*form.Price, 'f', -1, 64)
	}
	b.Selected = nil
	b.Custom = nil
	for _, f := range form.Fields {
		if _, ok := predefinedField(f.Label); ok && !b.IsSelected(f.Label) {
			b.Selected = append(b.Selected, f.Label)
			continue
		}
		b.Custom = append(b.Custom, f)
	}
	b.Fields = append([]types.FieldDescriptor(nil), form.Fields...)
	b.EditingID = form.ID
}

func (b *Builder) reset() {
	*b = Builder{}
}

func (b *Builder) clone() *Builder {
	out := *b
	out.Selected = append([]string(nil), b.Selected...)
	out.Custom = append([]types.FieldDescriptor(nil), b.Custom...)
	out.Fields = append([]types.FieldDescriptor(nil), b.Fields...)
	return &out
}
