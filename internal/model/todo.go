package model

// Todo is a single todo item. JSON field names follow the DummyJSON wire
// format so remote and locally stored records share one shape.
type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"todo"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"userId"`
}

// NewTodo is the payload sent to the remote service when creating a todo.
type NewTodo struct {
	Text      string `json:"todo"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"userId"`
}

// TodoPatch is a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Text      *string `json:"todo,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// SetText returns a copy of the patch that replaces the text.
func (p TodoPatch) SetText(text string) TodoPatch {
	p.Text = &text
	return p
}

// SetCompleted returns a copy of the patch that sets the completed flag.
func (p TodoPatch) SetCompleted(completed bool) TodoPatch {
	p.Completed = &completed
	return p
}

// IsEmpty returns true if the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply returns t with the patch fields merged in.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
