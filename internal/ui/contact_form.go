package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/folio-sh/folio/internal/contact"
	"github.com/folio-sh/folio/internal/keys"
)

// ContactSubmitter delivers a contact message (contact.Service in production).
type ContactSubmitter interface {
	Submit(ctx context.Context, m contact.Message) (*contact.Receipt, error)
}

const (
	fieldName = iota
	fieldEmail
	fieldSubject
	fieldMessage
	fieldSend
	fieldCount
)

var fieldKeys = [...]string{"name", "email", "subject", "message"}

// contactSubmittedMsg carries a submission outcome back to the UI loop.
type contactSubmittedMsg struct {
	receipt *contact.Receipt
	err     error
}

// bannerExpiredMsg hides the success banner it was scheduled for.
type bannerExpiredMsg struct{ seq int }

// ContactForm is the message form on the contact page. It starts blurred so
// the global shortcuts work until the visitor tabs into it.
type ContactForm struct {
	inputs  [fieldMessage]textinput.Model
	message textarea.Model
	focus   int // -1 when blurred

	submitter ContactSubmitter
	timeout   time.Duration
	keys      keys.KeyMap

	sending   bool
	errText   string
	fieldErrs map[string]string
	banner    string
	bannerSeq int
}

// NewContactForm builds the form. submitter may be nil, in which case
// sending reports that the form is not configured.
func NewContactForm(submitter ContactSubmitter, km keys.KeyMap, timeout time.Duration) *ContactForm {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	f := &ContactForm{focus: -1, submitter: submitter, timeout: timeout, keys: km}

	placeholders := [...]string{"Your name", "you@example.com", "What is this about?"}
	limits := [...]int{200, 254, 300}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Prompt = ""
		f.inputs[i] = ti
	}

	ta := textarea.New()
	ta.Placeholder = "Your message..."
	ta.CharLimit = contact.MaxMessageLen
	ta.ShowLineNumbers = false
	ta.SetHeight(5)
	f.message = ta
	return f
}

// Focused reports whether a text field has keyboard focus.
func (f *ContactForm) Focused() bool { return f.focus >= 0 && f.focus < fieldSend }

// Active reports whether the form (a field or the send button) has focus.
func (f *ContactForm) Active() bool { return f.focus >= 0 }

// Sending reports an in-flight submission.
func (f *ContactForm) Sending() bool { return f.sending }

// Banner returns the success banner text, if showing.
func (f *ContactForm) Banner() string { return f.banner }

// Error returns the last submission error shown to the visitor.
func (f *ContactForm) Error() string { return f.errText }

// FieldError returns the validation message for a field key.
func (f *ContactForm) FieldError(field string) string { return f.fieldErrs[field] }

// Focus moves focus to the first field.
func (f *ContactForm) Focus() tea.Cmd { return f.setFocus(fieldName) }

// Blur releases focus so global shortcuts apply again.
func (f *ContactForm) Blur() { f.setFocus(-1) }

func (f *ContactForm) setFocus(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	if i == fieldMessage {
		cmd = f.message.Focus()
	} else {
		f.message.Blur()
	}
	return cmd
}

// SetValues fills the form (tests and CLI prefill).
func (f *ContactForm) SetValues(m contact.Message) {
	f.inputs[fieldName].SetValue(m.Name)
	f.inputs[fieldEmail].SetValue(m.Email)
	f.inputs[fieldSubject].SetValue(m.Subject)
	f.message.SetValue(m.Message)
}

// Values returns the current field contents.
func (f *ContactForm) Values() contact.Message {
	return contact.Message{
		Name:    f.inputs[fieldName].Value(),
		Email:   f.inputs[fieldEmail].Value(),
		Subject: f.inputs[fieldSubject].Value(),
		Message: f.message.Value(),
	}
}

func (f *ContactForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.message.Reset()
	f.fieldErrs = nil
	f.errText = ""
}

func (f *ContactForm) SetWidth(w int) {
	w = max(20, min(w, 72))
	for i := range f.inputs {
		f.inputs[i].Width = w - 2
	}
	f.message.SetWidth(w)
}

// Update handles a key while the form is active.
func (f *ContactForm) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok || !f.Active() {
		return nil
	}
	switch {
	case key.Matches(k, f.keys.Leave):
		f.Blur()
		return nil
	case key.Matches(k, f.keys.NextField):
		return f.setFocus((f.focus + 1) % fieldCount)
	case key.Matches(k, f.keys.PrevField):
		return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
	case key.Matches(k, f.keys.Submit):
		return f.Submit()
	}

	switch f.focus {
	case fieldSend:
		if k.Type == tea.KeyEnter {
			return f.Submit()
		}
		return nil
	case fieldMessage:
		var cmd tea.Cmd
		f.message, cmd = f.message.Update(k)
		return cmd
	default:
		if k.Type == tea.KeyEnter {
			return f.setFocus(f.focus + 1)
		}
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(k)
		return cmd
	}
}

// Submit sends the current values. Repeated submits while one is in flight
// are ignored.
func (f *ContactForm) Submit() tea.Cmd {
	if f.sending {
		return nil
	}
	if f.submitter == nil {
		f.errText = "The contact form is not configured."
		return nil
	}
	f.sending = true
	f.errText = ""
	msg := f.Values()
	submitter, timeout := f.submitter, f.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		receipt, err := submitter.Submit(ctx, msg)
		return contactSubmittedMsg{receipt: receipt, err: err}
	}
}

// handleSubmitted applies an outcome. Success clears the form and shows the
// banner for contact.SuccessBannerDuration.
func (f *ContactForm) handleSubmitted(msg contactSubmittedMsg) tea.Cmd {
	f.sending = false
	if msg.err != nil {
		f.errText = contact.UserMessage(msg.err)
		f.fieldErrs = nil
		var verr *contact.ValidationError
		if errors.As(msg.err, &verr) {
			f.fieldErrs = make(map[string]string, len(verr.Fields))
			for _, fe := range verr.Fields {
				f.fieldErrs[fe.Field] = fe.Message
			}
		}
		return nil
	}

	f.reset()
	f.setFocus(fieldName)
	f.banner = "Thank you for your message! I'll get back to you soon."
	f.bannerSeq++
	seq := f.bannerSeq
	return tea.Tick(contact.SuccessBannerDuration, func(time.Time) tea.Msg {
		return bannerExpiredMsg{seq: seq}
	})
}

func (f *ContactForm) handleBannerExpired(msg bannerExpiredMsg) {
	if msg.seq == f.bannerSeq {
		f.banner = ""
	}
}

// View renders the form.
func (f *ContactForm) View() string {
	labels := [...]string{"Name", "Email", "Subject", "Message"}
	var rows []string
	for i := 0; i < fieldSend; i++ {
		label := FieldLabelStyle.Render(labels[i])
		if f.focus == i {
			label = FieldActiveLabel.Render(labels[i])
		}
		rows = append(rows, label)
		if i == fieldMessage {
			rows = append(rows, f.message.View())
		} else {
			rows = append(rows, SearchBoxStyle.Render(f.inputs[i].View()))
		}
		if e := f.fieldErrs[fieldKeys[i]]; e != "" {
			rows = append(rows, ErrorStyle.Render("  "+labels[i]+" "+e))
		}
	}

	button := ButtonStyle.Render("Send")
	if f.focus == fieldSend {
		button = ButtonActive.Render("Send")
	}
	if f.sending {
		button = ButtonStyle.Render("Sending...")
	}
	rows = append(rows, "", button)

	if f.banner != "" {
		rows = append(rows, "", SuccessStyle.Render(f.banner))
	}
	if f.errText != "" {
		rows = append(rows, "", ErrorStyle.Render(f.errText))
	}
	if !f.Active() {
		rows = append(rows, "", DimStyle.Render("Press tab to start writing."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

