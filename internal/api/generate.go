// internal/api/generate.go
//
// Single-artifact generation endpoints: logo, written content, business
// cards, letters, brand names, and the generic passthrough.
//
// Credit policy here differs from site creation: the gate is checked up
// front, and the single commit happens immediately after the generation
// succeeds.  Failed generations never spend a credit.
package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/generator"
	"github.com/sitewright/sitewright/internal/user"
)

// claimRequest resolves the idempotency key for a paid request.  A
// well-formed X-Request-ID is normalised and checked against past commits,
// so a replayed id is rejected up front instead of producing fresh,
// uncharged work.  An absent or malformed header falls back to a minted
// UUID, which always fits the commit record and has nothing to replay.
func (s *Server) claimRequest(r *http.Request, u *user.User) (string, error) {
	uid, err := uuid.Parse(r.Header.Get("X-Request-ID"))
	if err != nil {
		return uuid.NewString(), nil
	}
	id := uid.String()

	done, err := s.ledger.Committed(r.Context(), u.ID, id)
	if err != nil {
		return "", err
	}
	if done {
		return "", fmt.Errorf("%w: request %s was already charged", fault.ErrDuplicateRequest, id)
	}
	return id, nil
}

// commit spends one credit and returns the new balance, or -1 when the
// commit failed after the artifact was already produced.
func (s *Server) commit(r *http.Request, u *user.User, requestID string) int {
	remaining, err := s.ledger.Commit(r.Context(), u.ID, requestID)
	if err != nil {
		zap.S().Warnw("credit commit failed after generation", "user", u.ID, "err", err)
		return -1
	}
	return remaining
}

func dataURI(img []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}

/*──────────────────────────── verify-credits ────────────────────────────*/

// verifyCredits is a gate-only check used by the UI before opening a paid
// flow.  No credit is spent.
func (s *Server) verifyCredits(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.Eligible(r.Context(), currentUser(r).ID, 0); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"verified": true})
}

/*──────────────────────────── logo ────────────────────────────*/

type logoRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Seed   *int64 `json:"seed"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Steps  int    `json:"steps"`
}

func (s *Server) generateLogo(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req logoRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ledger.Eligible(r.Context(), u.ID, 0); err != nil {
		s.fail(w, r, err)
		return
	}

	seed := int64(-1)
	if req.Seed != nil {
		seed = *req.Seed
	}
	img, usedSeed, err := s.gen.Image(r.Context(), req.Prompt, generator.ImageOptions{
		Width:  req.Width,
		Height: req.Height,
		Steps:  req.Steps,
		Seed:   seed,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"image":            dataURI(img),
		"seed":             usedSeed,
		"creditsRemaining": s.commit(r, u, reqID),
	})
}

/*──────────────────────────── written content ────────────────────────────*/

type contentRequest struct {
	Title       string `json:"title" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Per-type generation profiles.  The system prompt embeds the title; the
// token and temperature budgets reflect how long and how creative each
// format wants to be.
type contentProfile struct {
	system      string
	maxTokens   int
	temperature float64
	imageStyle  string
}

var contentProfiles = map[string]contentProfile{
	"blog": {
		system: `You are a professional blogger. Create a comprehensive blog post about %q with:
1. Engaging introduction with a hook
2. 3-5 main sections with subheadings (H2)
3. Bullet points or numbered lists where appropriate
4. Conversational yet informative tone
5. 800-1200 words total
6. Conclusion with key takeaways
7. Include 1-2 relevant examples or case studies`,
		maxTokens:   2000,
		temperature: 0.7,
		imageStyle:  "professional digital illustration, detailed, informative style",
	},
	"social-post": {
		system: `You are a social media expert. Create an engaging post about %q with:
1. One attention-grabbing headline
2. Caption of 4-8 lines maximum
3. Include 2-4 relevant emojis
4. Add 1-2 relevant hashtags
5. Conversational, upbeat tone
6. Possible CTA (like, share, comment)
7. Character limit: 2200 (for LinkedIn/Twitter)`,
		maxTokens:   300,
		temperature: 0.8,
		imageStyle:  "vibrant colors, trendy social media graphic, Instagram aesthetic",
	},
	"script": {
		system: `You are a professional scriptwriter. Create a video/audio script about %q with:
1. Clear scene/setting description
2. Natural dialogue format
3. Speaker labels (Host:, Narrator:, etc.)
4. Visual/sound cues in brackets
5. Duration: 3-5 minutes
6. Engaging hook in first 10 seconds
7. Call-to-action at the end`,
		maxTokens:   1500,
		temperature: 0.6,
		imageStyle:  "cinematic still, movie scene composition, dramatic lighting",
	},
	"article": {
		system: `You are a journalist writing a professional article about %q with:
1. News-style lead paragraph (who, what, when, where, why)
2. 500-800 words total
3. Quotes or expert opinions if relevant
4. Formal but accessible tone
5. 3-5 paragraphs with clear structure
6. Fact-based with verifiable information
7. Conclusion summarizing key points`,
		maxTokens:   1200,
		temperature: 0.5,
		imageStyle:  "photojournalism style, realistic, DSLR photo quality",
	},
	"email": {
		system: `You are a copywriter creating a marketing email about %q with:
1. Attention-grabbing subject line
2. Personalized greeting
3. Clear value proposition in opening
4. 2-3 short paragraphs max
5. Bullet points for key benefits
6. Strong CTA button text
7. Professional but friendly tone
8. Mobile-optimized length (50-125 words)`,
		maxTokens:   500,
		temperature: 0.65,
		imageStyle:  "clean marketing graphic, minimalist design, product-focused",
	},
}

func (s *Server) generateContent(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req contentRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	profile, ok := contentProfiles[req.ContentType]
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: unknown content type %q", fault.ErrValidation, req.ContentType))
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ledger.Eligible(r.Context(), u.ID, 0); err != nil {
		s.fail(w, r, err)
		return
	}

	content, err := s.gen.Text(r.Context(),
		fmt.Sprintf(profile.system, req.Title), req.Description,
		generator.TextOptions{MaxTokens: profile.maxTokens, Temperature: profile.temperature})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Derive an illustration prompt from the generated content; a failure
	// here degrades to a generic prompt instead of aborting.
	imagePrompt, err := s.gen.Text(r.Context(),
		fmt.Sprintf(`Create an image prompt for %s about %q:
1. Describe main visual elements (3-5 key items)
2. Specify style: %s
3. Mood/atmosphere matching the content
4. Keep under 80 words`, req.ContentType, req.Title, profile.imageStyle),
		"Title: "+req.Title+"\nContent: "+clip(content, 1000),
		generator.TextOptions{MaxTokens: 200, Temperature: 0.5})
	if err != nil || strings.TrimSpace(imagePrompt) == "" {
		imagePrompt = fmt.Sprintf("professional %s image about %s", req.ContentType, req.Title)
	}

	img, _, err := s.gen.Image(r.Context(),
		strings.TrimSpace(imagePrompt)+", high resolution, 8k, trending on artstation",
		generator.ImageOptions{Width: 1024, Height: 1024, Seed: -1})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"content":          content,
		"imageUrl":         dataURI(img),
		"creditsRemaining": s.commit(r, u, reqID),
	})
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

/*──────────────────────────── card and letter ────────────────────────────*/

func (s *Server) generateCard(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var data assemble.CardData
	if err := s.decode(r, &data); err != nil {
		s.fail(w, r, err)
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ledger.Eligible(r.Context(), u.ID, 0); err != nil {
		s.fail(w, r, err)
		return
	}

	html, err := assemble.RenderCard(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"result": struct {
			assemble.CardData
			HTML string `json:"html"`
		}{data, html},
		"creditsRemaining": s.commit(r, u, reqID),
	})
}

func (s *Server) generateLetter(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var data assemble.LetterData
	if err := s.decode(r, &data); err != nil {
		s.fail(w, r, err)
		return
	}
	if !assemble.ValidLetterStyle(data.Style) {
		s.fail(w, r, fmt.Errorf("%w: invalid letter style %q", fault.ErrValidation, data.Style))
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ledger.Eligible(r.Context(), u.ID, 0); err != nil {
		s.fail(w, r, err)
		return
	}

	html, err := assemble.RenderLetter(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"result": struct {
			assemble.LetterData
			HTML string `json:"html"`
		}{data, html},
		"creditsRemaining": s.commit(r, u, reqID),
	})
}

/*──────────────────────────── generic passthrough ────────────────────────────*/

type genericRequest struct {
	Type   string `json:"type" validate:"required,oneof=text image"`
	Prompt string `json:"prompt" validate:"required"`
}

// generateGeneric is the promotional playground endpoint: a raw text or
// image passthrough gated on a much higher balance than the paid flows.
func (s *Server) generateGeneric(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req genericRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ledger.Eligible(r.Context(), u.ID, s.cfg.Credits.PromoThreshold); err != nil {
		s.fail(w, r, err)
		return
	}

	var result string
	switch req.Type {
	case "text":
		text, err := s.gen.Text(r.Context(), "", req.Prompt,
			generator.TextOptions{MaxTokens: 500, Temperature: 0.7})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		result = text
	case "image":
		img, _, err := s.gen.Image(r.Context(), req.Prompt,
			generator.ImageOptions{Width: 1024, Height: 1024, Seed: -1})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		result = dataURI(img)
	}

	s.respond(w, http.StatusOK, map[string]any{
		"result":           result,
		"creditsRemaining": s.commit(r, u, reqID),
	})
}

/*──────────────────────────── brand names ────────────────────────────*/

type brandnamesRequest struct {
	Industry       string `json:"industry" validate:"required"`
	Keywords       string `json:"keywords"`
	Description    string `json:"description"`
	TargetAudience string `json:"targetAudience"`
	NameLength     string `json:"nameLength"`
	NameStyle      string `json:"nameStyle"`
	AvoidWords     string `json:"avoidWords"`
	MustInclude    string `json:"mustInclude"`
}

func (s *Server) generateBrandnames(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req brandnamesRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ledger.Eligible(r.Context(), u.ID, 0); err != nil {
		s.fail(w, r, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate 10 creative brand name ideas for a %s business.\n", req.Industry)
	if req.Keywords != "" {
		fmt.Fprintf(&b, "Keywords: %s.\n", req.Keywords)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Business description: %s.\n", req.Description)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s.\n", req.TargetAudience)
	}
	if req.NameLength != "" {
		fmt.Fprintf(&b, "Name length: %s.\n", req.NameLength)
	}
	if req.NameStyle != "" {
		fmt.Fprintf(&b, "Style: %s.\n", req.NameStyle)
	}
	if req.AvoidWords != "" {
		fmt.Fprintf(&b, "Avoid: %s.\n", req.AvoidWords)
	}
	if req.MustInclude != "" {
		fmt.Fprintf(&b, "Must include: %s.\n", req.MustInclude)
	}
	b.WriteString("Provide the names in a numbered list.")

	names, err := s.gen.Text(r.Context(), "", b.String(),
		generator.TextOptions{MaxTokens: 500, Temperature: 0.8})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"result":           names,
		"creditsRemaining": s.commit(r, u, reqID),
	})
}
