// internal/assemble/site.go
//
// Site Assembler: pure render of a content document into a static site.
//
// Context
// -------
// Render is a function of its inputs only: structured content plus the
// bucket name in, a complete HTML document and stylesheet out.  No network
// calls, no storage.  The single non-deterministic element is the
// cache-busting timestamp appended to asset URLs, which exists so a
// re-generated image shows up immediately without a CDN purge.  Callers
// must treat those query strings as non-reproducible.
//
// The live document links styles.css from the same bucket; a preview embeds
// the stylesheet inline so the document renders standalone.
package assemble

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"
)

// Document is one rendered site: the page and its stylesheet, both uploaded
// to the site's bucket as index.html and styles.css.
type Document struct {
	HTML string
	CSS  string
}

// timeNow is swapped in tests to pin the cache-bust timestamp.
var timeNow = time.Now

type banner struct {
	Title      string
	Content    string
	Background string
}

type sitePage struct {
	Content    SiteContent
	Palette    Colors
	Banners    []banner
	Bucket     string
	Preview    bool
	InlineCSS  template.CSS
	Stylesheet string

	// Busted copies of the content image URLs.
	FeatureImage     string
	AboutImage       string
	TestimonialImage string
}

// Render produces the static document for one site.  It never fails on
// missing optional sections; empty fields simply collapse their markup.
func Render(content SiteContent, bucketName string, preview bool) (Document, error) {
	ts := timeNow().UnixMilli()
	pal := content.Colors.palette()
	css := stylesheet(pal)

	// First slide is always the hero; About Us rides along as a second
	// slide when present so the carousel has something to rotate.
	banners := []banner{
		{Title: content.HeroTitle, Content: content.HeroContent, Background: pal.MainBackgroundColor},
	}
	if content.AboutUsTitle != "" && content.AboutUsContent != "" {
		banners = append(banners, banner{
			Title:      content.AboutUsTitle,
			Content:    content.AboutUsContent,
			Background: pal.SecondaryBackgroundColor,
		})
	} else {
		banners = append(banners, banner{
			Title:      "Experience Excellence",
			Content:    "Our expertise drives innovation and quality!",
			Background: pal.SecondaryBackgroundColor,
		})
	}

	page := sitePage{
		Content:          content,
		Palette:          pal,
		Banners:          banners,
		Bucket:           bucketName,
		Preview:          preview,
		InlineCSS:        template.CSS(css),
		Stylesheet:       bust("styles.css", ts),
		FeatureImage:     bust(content.FeatureImageURL, ts),
		AboutImage:       bust(content.AboutUsImageURL, ts),
		TestimonialImage: bust(content.TestimonialImageURL, ts),
	}

	var buf bytes.Buffer
	if err := siteTmpl.Execute(&buf, page); err != nil {
		return Document{}, fmt.Errorf("render site %q: %w", bucketName, err)
	}
	return Document{HTML: buf.String(), CSS: css}, nil
}

// bust appends the cache-busting query parameter.  Empty URLs stay empty so
// the template can collapse the surrounding markup.
func bust(u string, ts int64) string {
	if u == "" {
		return ""
	}
	return u + "?" + strconv.FormatInt(ts, 10)
}

func stylesheet(p Colors) string {
	return fmt.Sprintf(`:root {
  --main-text: %s;
  --secondary-text: %s;
  --main-bg: %s;
  --secondary-bg: %s;
  --gradient-from: %s;
  --gradient-to: %s;
}
* { box-sizing: border-box; margin: 0; }
body { font-family: ui-sans-serif, system-ui, sans-serif; color: var(--main-text); }
.hero { position: relative; overflow: hidden; }
.hero .slide { display: none; padding: 6rem 2rem; text-align: center; color: #fff; }
.hero .slide.active { display: block; }
.hero h1 { font-size: 2.5rem; font-weight: 700; }
.hero p { margin-top: 1rem; font-size: 1.25rem; }
.hero .control { position: absolute; top: 50%%; transform: translateY(-50%%); padding: .5rem .75rem;
  background: rgba(255,255,255,.7); border: 0; border-radius: .375rem; cursor: pointer; }
.hero .prev { left: .5rem; }
.hero .next { right: .5rem; }
section { padding: 4rem 1.5rem; max-width: 72rem; margin: 0 auto; }
.tagline { color: var(--secondary-text); font-weight: 600; text-transform: uppercase;
  letter-spacing: .05em; font-size: .875rem; }
h2 { font-size: 1.875rem; font-weight: 700; margin-top: .5rem; }
.features { display: grid; grid-template-columns: repeat(auto-fit, minmax(16rem, 1fr));
  gap: 2rem; margin-top: 2.5rem; }
.feature h3 { font-weight: 600; }
.feature p { margin-top: .5rem; color: var(--secondary-text); }
.split { display: flex; gap: 3rem; align-items: center; flex-wrap: wrap; }
.split img { max-width: 24rem; width: 100%%; border-radius: .5rem; }
.testimonial { text-align: center; background:
  linear-gradient(to right, var(--gradient-from), var(--gradient-to)); color: #fff;
  border-radius: .75rem; }
.testimonial img { width: 5rem; height: 5rem; border-radius: 9999px; object-fit: cover; }
.testimonial blockquote { margin-top: 1rem; font-size: 1.125rem; }
form { display: grid; gap: 1.5rem; max-width: 36rem; margin: 2.5rem auto 0; }
input, textarea { padding: .75rem; border: 1px solid #d1d5db; border-radius: .5rem; width: 100%%; }
button[type=submit] { padding: .75rem 1.5rem; border: 0; border-radius: .5rem; color: #fff;
  font-weight: 600; cursor: pointer; background: var(--main-bg); }
footer { padding: 2rem; text-align: center; color: var(--secondary-text);
  background: var(--secondary-bg); }
`,
		p.MainTextColor, p.SecondaryTextColor, p.MainBackgroundColor,
		p.SecondaryBackgroundColor, p.GradientFromColor, p.GradientToColor)
}

var siteTmpl = template.Must(template.New("site").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Content.Title}}</title>
{{- if .Preview}}
<style>{{.InlineCSS}}</style>
{{- else}}
<link rel="stylesheet" href="{{.Stylesheet}}">
{{- end}}
</head>
<body>
<div class="hero">
{{- range $i, $b := .Banners}}
  <div class="slide{{if eq $i 0}} active{{end}}" style="background-color: {{$b.Background}}">
    <h1>{{$b.Title}}</h1>
    <p>{{$b.Content}}</p>
  </div>
{{- end}}
  <button class="control prev" type="button">Prev</button>
  <button class="control next" type="button">Next</button>
</div>

<section id="features">
  <div style="text-align:center">
    {{- with .Content.FeatureSectionTagline}}<p class="tagline">{{.}}</p>{{end}}
    <h2>{{.Content.FeatureSectionTitle}}</h2>
    {{- with .Content.FeatureSectionContent}}<p>{{.}}</p>{{end}}
  </div>
  <div class="split" style="margin-top:2.5rem">
    {{- with .FeatureImage}}<img src="{{.}}" alt="">{{end}}
    <div class="features" style="flex:1">
    {{- range .Content.Features}}
      <div class="feature">
        <h3>{{.Title}}</h3>
        <p>{{.Content}}</p>
      </div>
    {{- end}}
    </div>
  </div>
</section>

{{- if .Content.AboutUsContent}}
<section id="about">
  <div class="split">
    {{- with .AboutImage}}<img src="{{.}}" alt="">{{end}}
    <div style="flex:1">
      <h2>{{.Content.AboutUsTitle}}</h2>
      <p style="margin-top:1rem">{{.Content.AboutUsContent}}</p>
    </div>
  </div>
</section>
{{- end}}

{{- if .Content.Testimonial.Content}}
<section>
  <div class="testimonial" style="padding:3rem">
    {{- with .TestimonialImage}}<img src="{{.}}" alt="">{{end}}
    <blockquote>&ldquo;{{.Content.Testimonial.Content}}&rdquo;</blockquote>
    <p style="margin-top:1rem;font-weight:600">{{.Content.Testimonial.Name}}</p>
  </div>
</section>
{{- end}}

<section id="contact">
  <div style="text-align:center">
    <h2>{{.Content.ContactUsTitle}}</h2>
    {{- with .Content.ContactUsContent}}<p style="margin-top:1rem">{{.}}</p>{{end}}
  </div>
  <form onsubmit="sendContact(event)">
    <input type="text" id="name" placeholder="Enter your name">
    <input type="email" id="email" placeholder="Enter your email">
    <textarea id="message" rows="4" placeholder="Write your message here"></textarea>
    <button type="submit">Send Message</button>
  </form>
</section>

<footer>{{.Content.Copywrite}}</footer>

<script>
(function () {
  var slides = document.querySelectorAll('.hero .slide');
  var active = 0;
  function show(i) {
    slides.forEach(function (s, j) { s.classList.toggle('active', j === i); });
  }
  document.querySelector('.hero .next').addEventListener('click', function () {
    active = (active + 1) % slides.length; show(active);
  });
  document.querySelector('.hero .prev').addEventListener('click', function () {
    active = (active - 1 + slides.length) % slides.length; show(active);
  });
  setInterval(function () { active = (active + 1) % slides.length; show(active); }, 5000);
})();

async function sendContact(event) {
  event.preventDefault();
  var id = window.location.hostname.split('.')[0].split('-').pop();
  var body = {
    id: id,
    name: document.getElementById('name').value,
    email: document.getElementById('email').value,
    message: document.getElementById('message').value
  };
  try {
    var res = await fetch('/api/contact', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(body)
    });
    alert(res.ok ? 'Message sent successfully!' : 'Failed to send message');
  } catch (err) {
    alert('An error occurred');
  }
}
</script>
</body>
</html>
`))
