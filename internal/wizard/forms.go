package wizard

import (
	"eventdesk/pkg/types"
)

// Form builder and tab operations. In the rich variant each tab holds one
// builder and a saved tab is locked; the basic variant uses a single builder
// that is cleared after every save.

func (c *Controller) ToggleField(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.state.editableBuilder()
	if err != nil {
		return err
	}
	return b.ToggleField(label)
}

func (c *Controller) AddCustomField() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.state.editableBuilder()
	if err != nil {
		return err
	}
	return b.AddCustomField()
}

func (c *Controller) UpdateCustomField(i int, label string, fieldType types.FieldType, required bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.state.editableBuilder()
	if err != nil {
		return err
	}
	return b.UpdateCustomField(i, label, fieldType, required)
}

func (c *Controller) RemoveCustomField(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.state.editableBuilder()
	if err != nil {
		return err
	}
	return b.RemoveCustomField(i)
}

// GenerateForm refreshes the preview of the active builder.
func (c *Controller) GenerateForm() []types.FieldDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	fields := c.state.Builder().Generate()
	return append([]types.FieldDescriptor(nil), fields...)
}

func (c *Controller) SetFormMeta(name, price string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.setFormMeta(name, price)
}

// SaveForm commits the active builder. A builder opened through ViewForm
// replaces its saved form in place; otherwise a new form gets the next id.
func (c *Controller) SaveForm() (types.SavedForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.saveForm(c.variant == VariantRich)
}

// ViewForm loads a saved form into the builder and marks it viewed. The saved
// form itself is not modified.
func (c *Controller) ViewForm(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.viewForm(id)
}

func (c *Controller) SwitchTab(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.switchTab(i)
}

// SavedForms returns copies of the committed forms.
func (c *Controller) SavedForms() []types.SavedForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.SavedForm, len(c.state.Forms))
	for i, f := range c.state.Forms {
		out[i] = cloneForm(f)
	}
	return out
}
