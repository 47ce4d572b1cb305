// internal/assemble/letter.go
//
// Business-letter rendering, same dispatch-table shape as card.go.
package assemble

import (
	"bytes"
	"fmt"
	"html/template"
)

// LetterStyle selects one of the letterhead layouts.
type LetterStyle string

const (
	LetterModern     LetterStyle = "modern"
	LetterClassic    LetterStyle = "classic"
	LetterMinimalist LetterStyle = "minimalist"
)

// LetterData is one business letter.  Sender name, company, and email are
// required at the API boundary.
type LetterData struct {
	SenderName    string `json:"senderName" validate:"required"`
	SenderTitle   string `json:"senderTitle,omitempty"`
	SenderCompany string `json:"senderCompany" validate:"required"`
	SenderEmail   string `json:"senderEmail" validate:"required,email"`
	SenderPhone   string `json:"senderPhone,omitempty"`
	SenderAddress string `json:"senderAddress,omitempty"`

	RecipientName    string `json:"recipientName,omitempty"`
	RecipientCompany string `json:"recipientCompany,omitempty"`

	Subject string      `json:"subject,omitempty"`
	Body    string      `json:"body,omitempty"`
	Color   string      `json:"color"`
	Style   LetterStyle `json:"style"`
}

var letterRenderers = map[LetterStyle]*template.Template{
	LetterModern:     letterTmpl("modern", modernLetterHTML),
	LetterClassic:    letterTmpl("classic", classicLetterHTML),
	LetterMinimalist: letterTmpl("minimalist", minimalistLetterHTML),
}

// ValidLetterStyle reports whether style names a known layout.  The empty
// style is valid and defaults to modern.
func ValidLetterStyle(style LetterStyle) bool {
	if style == "" {
		return true
	}
	_, ok := letterRenderers[style]
	return ok
}

// RenderLetter renders the letterhead for its style.  Unknown styles were
// already rejected at the boundary; hitting one here is a programming error.
func RenderLetter(data LetterData) (string, error) {
	if data.Style == "" {
		data.Style = LetterModern
	}
	if data.Color == "" {
		data.Color = "#4F46E5"
	}

	tmpl, ok := letterRenderers[data.Style]
	if !ok {
		return "", fmt.Errorf("unknown letter style %q", data.Style)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, letterPage{
		LetterData: data,
		Date:       timeNow().Format("January 2, 2006"),
	}); err != nil {
		return "", fmt.Errorf("render letter: %w", err)
	}
	return buf.String(), nil
}

type letterPage struct {
	LetterData
	Date string
}

func letterTmpl(name, body string) *template.Template {
	return template.Must(template.New("letter-" + name).Parse(body))
}

const modernLetterHTML = `<div class="letter letter-modern">
  <header style="border-bottom: 4px solid {{.Color}}">
    <h2 style="color: {{.Color}}">{{.SenderCompany}}</h2>
    <p>{{.SenderName}}{{with .SenderTitle}}, {{.}}{{end}}</p>
    <p class="contact">{{.SenderEmail}}{{with .SenderPhone}} &middot; {{.}}{{end}}</p>
    {{- with .SenderAddress}}<p class="contact">{{.}}</p>{{end}}
  </header>
  <p class="date">{{.Date}}</p>
  {{- if .RecipientName}}
  <p class="recipient">{{.RecipientName}}{{with .RecipientCompany}}<br>{{.}}{{end}}</p>
  {{- end}}
  {{- with .Subject}}<p class="subject"><strong>Re: {{.}}</strong></p>{{end}}
  <div class="body">{{.Body}}</div>
  <p class="signoff">Sincerely,<br><strong>{{.SenderName}}</strong></p>
</div>`

const classicLetterHTML = `<div class="letter letter-classic">
  <header style="text-align: center">
    <h2>{{.SenderCompany}}</h2>
    <hr style="border-color: {{.Color}}">
    <p class="contact">{{.SenderName}} &middot; {{.SenderEmail}}{{with .SenderPhone}} &middot; {{.}}{{end}}</p>
  </header>
  <p class="date">{{.Date}}</p>
  {{- if .RecipientName}}
  <p class="recipient">Dear {{.RecipientName}},</p>
  {{- end}}
  {{- with .Subject}}<p class="subject"><em>{{.}}</em></p>{{end}}
  <div class="body">{{.Body}}</div>
  <p class="signoff">Yours faithfully,<br>{{.SenderName}}{{with .SenderTitle}}<br>{{.}}{{end}}</p>
</div>`

const minimalistLetterHTML = `<div class="letter letter-minimalist">
  <p class="sender">{{.SenderName}} &middot; {{.SenderCompany}} &middot; {{.SenderEmail}}</p>
  <p class="date">{{.Date}}</p>
  {{- with .Subject}}<p class="subject">{{.}}</p>{{end}}
  <div class="body">{{.Body}}</div>
  <p class="signoff">&mdash; {{.SenderName}}</p>
  <div class="rule" style="background-color: {{.Color}}"></div>
</div>`
