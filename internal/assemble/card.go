// internal/assemble/card.go
//
// Business-card rendering.  Each style is one render function in a dispatch
// table keyed by the style enum, so an unknown style is a validation error
// at the boundary rather than a silent default deep in a template.
package assemble

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/sitewright/sitewright/internal/fault"
)

// CardStyle selects one of the card layouts.
type CardStyle string

const (
	CardModern     CardStyle = "modern"
	CardClassic    CardStyle = "classic"
	CardMinimalist CardStyle = "minimalist"
	CardBold       CardStyle = "bold"
)

// CardData is one business card.  Name, Title, and Company are required;
// the rest render only when present.
type CardData struct {
	Name    string    `json:"name" validate:"required"`
	Title   string    `json:"title" validate:"required"`
	Company string    `json:"company" validate:"required"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Website string    `json:"website,omitempty"`
	Address string    `json:"address,omitempty"`
	Color   string    `json:"color"`
	Style   CardStyle `json:"style"`
}

// cardRenderers maps each valid style to its layout.  Adding a style means
// adding an entry here; RenderCard rejects everything else.
var cardRenderers = map[CardStyle]*template.Template{
	CardModern:     cardTmpl("modern", modernCardHTML),
	CardClassic:    cardTmpl("classic", classicCardHTML),
	CardMinimalist: cardTmpl("minimalist", minimalistCardHTML),
	CardBold:       cardTmpl("bold", boldCardHTML),
}

// RenderCard renders the card for its style.  An empty style defaults to
// modern; an unknown style is fault.ErrValidation.
func RenderCard(data CardData) (string, error) {
	if data.Style == "" {
		data.Style = CardModern
	}
	if data.Color == "" {
		data.Color = "#4F46E5"
	}

	tmpl, ok := cardRenderers[data.Style]
	if !ok {
		return "", fmt.Errorf("%w: invalid card style %q", fault.ErrValidation, data.Style)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cardPage{
		CardData: data,
		Text:     contrastColor(data.Color),
	}); err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	return buf.String(), nil
}

type cardPage struct {
	CardData
	Text string // contrast color for text placed on the accent color
}

func cardTmpl(name, body string) *template.Template {
	return template.Must(template.New("card-" + name).Parse(body))
}

// contrastColor picks dark or light text for a hex background using its
// relative luminance.  Unparseable input gets the dark default.
func contrastColor(hexColor string) string {
	const dark, light = "#333333", "#ffffff"
	if hexColor == "" || hexColor == "#ffffff" || hexColor == "white" {
		return dark
	}

	var r, g, b int64
	switch len(hexColor) {
	case 4: // #abc
		r = hexDigit(hexColor[1])
		g = hexDigit(hexColor[2])
		b = hexDigit(hexColor[3])
	case 7: // #aabbcc
		r = hexPair(hexColor[1:3])
		g = hexPair(hexColor[3:5])
		b = hexPair(hexColor[5:7])
	default:
		return dark
	}

	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return dark
	}
	return light
}

func hexDigit(c byte) int64 {
	v, err := strconv.ParseInt(string([]byte{c, c}), 16, 0)
	if err != nil {
		return 0
	}
	return v
}

func hexPair(s string) int64 {
	v, err := strconv.ParseInt(s, 16, 0)
	if err != nil {
		return 0
	}
	return v
}

const modernCardHTML = `<div class="card card-modern">
  <div class="accent-bar" style="background-color: {{.Color}}"></div>
  <div class="body">
    <h2 style="color: {{.Color}}">{{.Name}}</h2>
    <p class="role">{{.Title}}</p>
    <p class="company">{{.Company}}</p>
    <ul class="contact">
      {{- with .Email}}<li>{{.}}</li>{{end}}
      {{- with .Phone}}<li>{{.}}</li>{{end}}
      {{- with .Website}}<li>{{.}}</li>{{end}}
      {{- with .Address}}<li>{{.}}</li>{{end}}
    </ul>
  </div>
</div>`

const classicCardHTML = `<div class="card card-classic" style="border-top: 8px solid {{.Color}}">
  <h2>{{.Name}}</h2>
  <p class="role">{{.Title}}</p>
  <p class="company" style="color: {{.Color}}">{{.Company}}</p>
  <hr>
  <ul class="contact">
    {{- with .Email}}<li>{{.}}</li>{{end}}
    {{- with .Phone}}<li>{{.}}</li>{{end}}
    {{- with .Website}}<li>{{.}}</li>{{end}}
    {{- with .Address}}<li>{{.}}</li>{{end}}
  </ul>
</div>`

const minimalistCardHTML = `<div class="card card-minimalist">
  <h2>{{.Name}}</h2>
  <p class="role">{{.Title}} &middot; {{.Company}}</p>
  <ul class="contact">
    {{- with .Email}}<li>{{.}}</li>{{end}}
    {{- with .Phone}}<li>{{.}}</li>{{end}}
    {{- with .Website}}<li>{{.}}</li>{{end}}
  </ul>
  <div class="dot" style="background-color: {{.Color}}"></div>
</div>`

const boldCardHTML = `<div class="card card-bold" style="background-color: {{.Color}}; color: {{.Text}}">
  <h2>{{.Name}}</h2>
  <p class="role">{{.Title}}</p>
  <p class="company">{{.Company}}</p>
  <ul class="contact">
    {{- with .Email}}<li>{{.}}</li>{{end}}
    {{- with .Phone}}<li>{{.}}</li>{{end}}
    {{- with .Website}}<li>{{.}}</li>{{end}}
    {{- with .Address}}<li>{{.}}</li>{{end}}
  </ul>
</div>`
