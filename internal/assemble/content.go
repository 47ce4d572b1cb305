// internal/assemble/content.go
//
// The structured content model behind every provisioned site.
//
// Field names mirror the JSON document stored on the site record, so the
// struct round-trips through the registry's JSON column and through the
// public API unchanged.  Prompts (featureImagePrompt and friends) travel
// with the content so a site can be re-generated later with the same
// inputs.
package assemble

// Colors holds the palette chosen for a site.  Values are CSS colors.
// Zero values fall back to the neutral defaults in palette().
type Colors struct {
	MainTextColor            string `json:"mainTextColor"`
	SecondaryTextColor       string `json:"secondaryTextColor"`
	MainBackgroundColor      string `json:"mainBackgroundColor"`
	SecondaryBackgroundColor string `json:"secondaryBackgroundColor"`
	GradientFromColor        string `json:"gradientFromColor,omitempty"`
	GradientToColor          string `json:"gradientToColor,omitempty"`
}

// Feature is one entry in the features grid.
type Feature struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Testimonial is the single customer quote rendered on the page.
type Testimonial struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SiteContent is the full content document for one site.  The *Prompt
// fields feed the image generator; the *URL fields are filled in by the
// orchestrator once the images land in the bucket.
type SiteContent struct {
	Title  string `json:"title" validate:"required"`
	Colors Colors `json:"colors"`

	HeroTitle   string `json:"heroTitle" validate:"required"`
	HeroContent string `json:"heroContent" validate:"required"`

	FeatureImagePrompt    string    `json:"featureImagePrompt" validate:"required"`
	FeatureSectionTagline string    `json:"featureSectionTagline"`
	FeatureSectionTitle   string    `json:"featureSectionTitle"`
	FeatureSectionContent string    `json:"featureSectionContent"`
	Features              []Feature `json:"features" validate:"min=1,dive"`

	AboutUsImagePrompt string `json:"aboutUsImagePrompt" validate:"required"`
	AboutUsTitle       string `json:"aboutUsTitle"`
	AboutUsContent     string `json:"aboutUsContent"`

	TestimonialImagePrompt string      `json:"testimonialImagePrompt" validate:"required"`
	Testimonial            Testimonial `json:"testimonial"`

	ContactUsTitle   string `json:"contactUsTitle"`
	ContactUsContent string `json:"contactUsContent"`

	Copywrite string `json:"copywrite"`

	FeatureImageURL     string `json:"featureImageURL,omitempty"`
	AboutUsImageURL     string `json:"aboutUsImageURL,omitempty"`
	TestimonialImageURL string `json:"testimonialImageURL,omitempty"`
}

// palette returns the site colors with neutral defaults applied.
func (c Colors) palette() Colors {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return Colors{
		MainTextColor:            def(c.MainTextColor, "#111827"),
		SecondaryTextColor:       def(c.SecondaryTextColor, "#4b5563"),
		MainBackgroundColor:      def(c.MainBackgroundColor, "#1f2937"),
		SecondaryBackgroundColor: def(c.SecondaryBackgroundColor, "#374151"),
		GradientFromColor:        def(c.GradientFromColor, def(c.MainBackgroundColor, "#1f2937")),
		GradientToColor:          def(c.GradientToColor, def(c.SecondaryBackgroundColor, "#374151")),
	}
}
