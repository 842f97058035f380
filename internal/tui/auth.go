package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/manav03panchal/tidytodo/internal/model"
)

// authMode selects between the login and register forms.
type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

const (
	fieldUsername = iota
	fieldPassword
	fieldEmail
	fieldFirstName
	fieldLastName
	fieldCount
)

// AuthForm collects credentials for login or registration.
type AuthForm struct {
	mode   authMode
	inputs []textinput.Model
	focus  int
}

// NewAuthForm creates an empty login form.
func NewAuthForm() *AuthForm {
	f := &AuthForm{inputs: make([]textinput.Model, fieldCount)}

	placeholders := map[int]string{
		fieldUsername:  "Username",
		fieldPassword:  "Password",
		fieldEmail:     "Email (optional)",
		fieldFirstName: "First name (optional)",
		fieldLastName:  "Last name (optional)",
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 64
		in.Width = 32
		f.inputs[i] = in
	}
	f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.inputs[fieldPassword].EchoCharacter = '•'
	f.inputs[fieldEmail].CharLimit = 254

	f.setFocus(fieldUsername)
	return f
}

// visible returns the field indexes shown in the current mode.
func (f *AuthForm) visible() []int {
	if f.mode == modeRegister {
		return []int{fieldUsername, fieldPassword, fieldEmail, fieldFirstName, fieldLastName}
	}
	return []int{fieldUsername, fieldPassword}
}

func (f *AuthForm) setFocus(field int) {
	f.focus = field
	for i := range f.inputs {
		if i == field {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// move shifts focus by delta, wrapping around the visible fields.
func (f *AuthForm) move(delta int) {
	fields := f.visible()
	pos := 0
	for i, idx := range fields {
		if idx == f.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	f.setFocus(fields[pos])
}

// Toggle switches between login and register.
func (f *AuthForm) Toggle() {
	if f.mode == modeLogin {
		f.mode = modeRegister
	} else {
		f.mode = modeLogin
	}
	f.setFocus(fieldUsername)
}

// Registering reports whether the form is in register mode.
func (f *AuthForm) Registering() bool {
	return f.mode == modeRegister
}

// Reset clears the password and refocuses the username.
func (f *AuthForm) Reset() {
	f.inputs[fieldPassword].SetValue("")
	f.setFocus(fieldUsername)
}

// Credentials returns the trimmed username and the password.
func (f *AuthForm) Credentials() (string, string) {
	return strings.TrimSpace(f.inputs[fieldUsername].Value()), f.inputs[fieldPassword].Value()
}

// RegisterData returns the register form contents.
func (f *AuthForm) RegisterData() model.RegisterData {
	username, password := f.Credentials()
	return model.RegisterData{
		Username:  username,
		Password:  password,
		Email:     strings.TrimSpace(f.inputs[fieldEmail].Value()),
		FirstName: strings.TrimSpace(f.inputs[fieldFirstName].Value()),
		LastName:  strings.TrimSpace(f.inputs[fieldLastName].Value()),
	}
}

// Update routes a key to the focused input.
func (f *AuthForm) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return nil
	case "shift+tab", "up":
		f.move(-1)
		return nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// View renders the form.
func (f *AuthForm) View() string {
	var b strings.Builder

	title := "Log in"
	if f.Registering() {
		title = "Create a local account"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	for i, idx := range f.visible() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.inputs[idx].View())
	}

	return StyleFormBox.Render(b.String())
}
