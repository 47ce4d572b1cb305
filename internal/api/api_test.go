// internal/api/api_test.go
//
// Handler tests drive the real router through httptest with in-memory
// collaborators, so status mapping, credit policy, and response shapes are
// all checked at the HTTP boundary.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/config"
	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/generator"
	"github.com/sitewright/sitewright/internal/provision"
	"github.com/sitewright/sitewright/internal/registry"
	"github.com/sitewright/sitewright/internal/session"
	"github.com/sitewright/sitewright/internal/user"
)

/*──────────────────────────── fakes ────────────────────────────*/

type fakeUsers struct {
	byEmail map[string]*user.User
	byID    map[string]*user.User
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeUsers) ByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, email, name string) (string, error) {
	u := &user.User{ID: "new-" + email, Email: email, Name: name, Credits: 3}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u.ID, nil
}

type fakeLedger struct {
	balance    int
	commits    int
	refunds    int
	committed  map[string]bool // "<user>:<request>"
	requestIDs []string
}

func (f *fakeLedger) Eligible(_ context.Context, _ string, threshold int) (int, error) {
	if f.balance <= threshold {
		return 0, fault.ErrInsufficientCredits
	}
	return f.balance, nil
}

func (f *fakeLedger) Committed(_ context.Context, userID, requestID string) (bool, error) {
	return f.committed[userID+":"+requestID], nil
}

func (f *fakeLedger) Commit(_ context.Context, userID, requestID string) (int, error) {
	if f.committed[userID+":"+requestID] {
		return f.balance, nil
	}
	if f.balance <= 0 {
		return 0, fault.ErrInsufficientCredits
	}
	if f.committed == nil {
		f.committed = map[string]bool{}
	}
	f.committed[userID+":"+requestID] = true
	f.requestIDs = append(f.requestIDs, requestID)
	f.commits++
	f.balance--
	return f.balance, nil
}

func (f *fakeLedger) Refund(_ context.Context, _ string) error {
	f.refunds++
	f.balance++
	return nil
}

type fakeGen struct {
	imagePrompts []string
	imageOpts    []generator.ImageOptions
	textPrompts  []string
	textErr      error
	imageErr     error
	textReply    string
}

func (f *fakeGen) Image(_ context.Context, prompt string, opts generator.ImageOptions) ([]byte, int64, error) {
	if f.imageErr != nil {
		return nil, 0, f.imageErr
	}
	f.imagePrompts = append(f.imagePrompts, prompt)
	f.imageOpts = append(f.imageOpts, opts)
	seed := opts.Seed
	if seed < 0 {
		seed = 777
	}
	return []byte("PNG"), seed, nil
}

func (f *fakeGen) Text(_ context.Context, _, userPrompt string, _ generator.TextOptions) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	f.textPrompts = append(f.textPrompts, userPrompt)
	if f.textReply != "" {
		return f.textReply, nil
	}
	return "generated text", nil
}

type fakeProv struct {
	err    error
	result *provision.Result
	calls  int
}

func (f *fakeProv) CreateSite(_ context.Context, _ *user.User, _ string, _ assemble.SiteContent) (*provision.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSites struct {
	sites    map[string]*registry.Site
	updates  []string // "<id>:<field>=<value>"
	ownerErr error
}

func (f *fakeSites) ByOwner(_ context.Context, ownerID string) ([]registry.Site, error) {
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	var out []registry.Site
	for _, s := range f.sites {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSites) ByID(_ context.Context, id, ownerID string) (*registry.Site, error) {
	if s, ok := f.sites[id]; ok && s.OwnerID == ownerID {
		return s, nil
	}
	return nil, registry.ErrNotFound
}

func (f *fakeSites) UpdateContentField(_ context.Context, id, _, field, value string) error {
	f.updates = append(f.updates, fmt.Sprintf("%s:%s=%s", id, field, value))
	return nil
}

type fakeUploader struct {
	objects map[string][]byte
}

func (f *fakeUploader) UploadObjects(_ context.Context, bucket string, objects map[string][]byte) (map[string]string, error) {
	urls := map[string]string{}
	for key, data := range objects {
		if f.objects == nil {
			f.objects = map[string][]byte{}
		}
		f.objects[key] = data
		urls[key] = "https://" + bucket + ".sites.example.com/" + key
	}
	return urls, nil
}

type fakeMailer struct {
	to, subject, text string
	sent              int
}

func (f *fakeMailer) Send(to, subject, text string) error {
	f.sent++
	f.to, f.subject, f.text = to, subject, text
	return nil
}

/*──────────────────────────── harness ────────────────────────────*/

type harness struct {
	router   chi.Router
	sessions *session.Manager
	users    *fakeUsers
	ledger   *fakeLedger
	gen      *fakeGen
	prov     *fakeProv
	sites    *fakeSites
	store    *fakeUploader
	mail     *fakeMailer
}

func newHarness(credits int) *harness {
	owner := &user.User{ID: "u1", Email: "owner@acme.example", Name: "Owner", Credits: credits}
	h := &harness{
		sessions: session.NewManager("test-secret"),
		users: &fakeUsers{
			byEmail: map[string]*user.User{owner.Email: owner},
			byID:    map[string]*user.User{owner.ID: owner},
		},
		ledger: &fakeLedger{balance: credits},
		gen:    &fakeGen{},
		prov:   &fakeProv{},
		sites:  &fakeSites{sites: map[string]*registry.Site{}},
		store:  &fakeUploader{},
		mail:   &fakeMailer{},
	}

	cfg := &config.Config{}
	cfg.HTTP.DevLogin = true
	cfg.Credits.PromoThreshold = 120
	cfg.Credits.ChargeListing = true

	h.router = New(Deps{
		Config:   cfg,
		Sessions: h.sessions,
		Users:    h.users,
		Ledger:   h.ledger,
		Gen:      h.gen,
		Prov:     h.prov,
		Sites:    h.sites,
		Store:    h.store,
		Mail:     h.mail,
	}).Router()
	return h
}

// sessionCookie produces a signed cookie for the standard test owner.
func (h *harness) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.sessions.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), "owner@acme.example")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (h *harness) doJSON(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(h.sessionCookie(t))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// doPinned is doJSON with an X-Request-ID header, always authenticated.
func (h *harness) doPinned(t *testing.T, method, path, requestID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.AddCookie(h.sessionCookie(t))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

/*──────────────────────────── auth ────────────────────────────*/

func TestRequireUser_NoSession(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/verify-credits", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_DevLoginIssuesCookie(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/login",
		map[string]string{"email": "new@acme.example", "name": "New"}, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
	// First sign-in created the account.
	_, err := h.users.ByEmail(context.Background(), "new@acme.example")
	assert.NoError(t, err)
}

/*──────────────────────────── credit gates ────────────────────────────*/

func TestVerifyCredits(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/verify-credits", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["verified"])
	assert.Zero(t, h.ledger.commits, "verification must not spend a credit")
}

func TestGenerateLogo_GateBlocksAtZero(t *testing.T) {
	h := newHarness(0)
	rec := h.doJSON(t, http.MethodPost, "/api/generate-logo",
		map[string]any{"prompt": "a fox"}, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, h.gen.imagePrompts, "no generation spend behind a failed gate")
	assert.Zero(t, h.ledger.commits)
}

func TestGenerateGeneric_PromoThreshold(t *testing.T) {
	// 120 credits is exactly the threshold: not enough.
	h := newHarness(120)
	rec := h.doJSON(t, http.MethodPost, "/api/generate",
		map[string]any{"type": "text", "prompt": "names"}, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	h = newHarness(121)
	rec = h.doJSON(t, http.MethodPost, "/api/generate",
		map[string]any{"type": "text", "prompt": "names"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "generated text", body["result"])
	assert.EqualValues(t, 120, body["creditsRemaining"])
}

/*──────────────────────────── logo ────────────────────────────*/

func TestGenerateLogo_SeedEchoAndCharge(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate-logo",
		map[string]any{"prompt": "a fox logo", "seed": 12345}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 12345, body["seed"])
	assert.True(t, strings.HasPrefix(body["image"].(string), "data:image/png;base64,"))
	assert.EqualValues(t, 4, body["creditsRemaining"])
	assert.Equal(t, 1, h.ledger.commits)
}

func TestGenerateLogo_RandomSeedWithoutInput(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate-logo",
		map[string]any{"prompt": "a fox logo"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.gen.imageOpts, 1)
	assert.EqualValues(t, -1, h.gen.imageOpts[0].Seed, "absent seed asks the generator to draw one")
}

func TestGenerateLogo_GenerationFailureSpendsNothing(t *testing.T) {
	h := newHarness(5)
	h.gen.imageErr = fault.ErrGenerationFailed

	rec := h.doJSON(t, http.MethodPost, "/api/generate-logo",
		map[string]any{"prompt": "a fox logo"}, true)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, h.ledger.commits, "failed generations are free")
}

func TestGenerateLogo_ReplayedRequestIDRejected(t *testing.T) {
	h := newHarness(5)
	const id = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

	rec := h.doPinned(t, http.MethodPost, "/api/generate-logo", id,
		map[string]any{"prompt": "a fox logo"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, h.ledger.commits)
	require.Len(t, h.gen.imagePrompts, 1)

	// Replaying the same id must not produce another artifact, charged or
	// not.
	rec = h.doPinned(t, http.MethodPost, "/api/generate-logo", id,
		map[string]any{"prompt": "a fox logo"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate request", decodeBody(t, rec)["error"])
	assert.Equal(t, 1, h.ledger.commits)
	assert.Len(t, h.gen.imagePrompts, 1, "replayed work must not re-run generation")
}

func TestGenerateLogo_MalformedRequestIDGetsFreshKey(t *testing.T) {
	h := newHarness(5)

	rec := h.doPinned(t, http.MethodPost, "/api/generate-logo",
		"definitely-not-a-uuid-and-far-longer-than-thirty-six-characters",
		map[string]any{"prompt": "a fox logo"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.ledger.requestIDs, 1)
	// The commit key is a minted UUID, never the raw header.
	assert.Len(t, h.ledger.requestIDs[0], 36)
	assert.NotContains(t, h.ledger.requestIDs[0], "definitely")
}

/*──────────────────────────── content ────────────────────────────*/

func TestGenerateContent_UnknownType(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate-content",
		map[string]any{"title": "T", "contentType": "sonnet", "description": "d"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateContent_ChargesOnceForTextAndImage(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate-content",
		map[string]any{"title": "Spring Sale", "contentType": "email", "description": "20 percent off"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "generated text", body["content"])
	assert.True(t, strings.HasPrefix(body["imageUrl"].(string), "data:image/png;base64,"))
	assert.Equal(t, 1, h.ledger.commits, "one credit covers the whole content bundle")
	// Two chat calls (content, then derived image prompt) and one image.
	assert.Len(t, h.gen.textPrompts, 2)
	require.Len(t, h.gen.imagePrompts, 1)
	assert.Contains(t, h.gen.imagePrompts[0], "high resolution, 8k")
}

/*──────────────────────────── card and letter ────────────────────────────*/

func TestGenerateCard_InvalidStyle(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate/card",
		map[string]any{"name": "J", "title": "F", "company": "A", "style": "brutalist"}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, h.ledger.commits)
}

func TestGenerateCard_RendersAndCharges(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate/card",
		map[string]any{"name": "Jordan Vale", "title": "Founder", "company": "Acme Co", "style": "bold"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	result := body["result"].(map[string]any)
	assert.Contains(t, result["html"], "Jordan Vale")
	assert.EqualValues(t, 4, body["creditsRemaining"])
}

func TestGenerateLetter_MissingSenderFields(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/generate/letter",
		map[string]any{"senderName": "Jordan Vale"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

/*──────────────────────────── create-website ────────────────────────────*/

func TestCreateWebsite_Success(t *testing.T) {
	h := newHarness(5)
	h.prov.result = &provision.Result{
		URL:              "https://acmeco-u1.sites.example.com/index.html",
		CreditsRemaining: 4,
	}

	rec := h.doJSON(t, http.MethodPost, "/api/create-website", map[string]any{
		"title":                  "Acme Co",
		"heroTitle":              "Build something great",
		"heroContent":            "Acme helps small teams ship faster.",
		"featureImagePrompt":     "f",
		"aboutUsImagePrompt":     "a",
		"testimonialImagePrompt": "t",
		"features":               []map[string]string{{"title": "Fast", "content": "Ships."}},
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "https://acmeco-u1.sites.example.com/index.html", body["url"])
	assert.EqualValues(t, 4, body["creditsRemaining"])
	assert.Equal(t, 1, h.prov.calls)
}

func TestCreateWebsite_Duplicate(t *testing.T) {
	h := newHarness(5)
	h.prov.err = fault.ErrSiteExists

	rec := h.doJSON(t, http.MethodPost, "/api/create-website", map[string]any{
		"title":                  "Acme Co",
		"heroTitle":              "x",
		"heroContent":            "y",
		"featureImagePrompt":     "f",
		"aboutUsImagePrompt":     "a",
		"testimonialImagePrompt": "t",
		"features":               []map[string]string{{"title": "Fast", "content": "Ships."}},
	}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "site already exists", decodeBody(t, rec)["error"])
}

func TestCreateWebsite_ReplayedRequestIDRejected(t *testing.T) {
	h := newHarness(5)
	const id = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	h.ledger.committed = map[string]bool{"u1:" + id: true}

	rec := h.doPinned(t, http.MethodPost, "/api/create-website", id, map[string]any{
		"title":                  "Acme Co",
		"heroTitle":              "x",
		"heroContent":            "y",
		"featureImagePrompt":     "f",
		"aboutUsImagePrompt":     "a",
		"testimonialImagePrompt": "t",
		"features":               []map[string]string{{"title": "Fast", "content": "Ships."}},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, h.prov.calls, "a charged request id must not rerun the pipeline")
}

/*──────────────────────────── sites listing ────────────────────────────*/

func TestListSites_ChargesWhenFlagOn(t *testing.T) {
	h := newHarness(5)
	h.sites.sites["s1"] = &registry.Site{ID: "s1", BucketName: "acmeco-u1", OwnerID: "u1"}

	rec := h.doJSON(t, http.MethodGet, "/api/sites", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["sites"], 1)
	assert.Equal(t, 1, h.ledger.commits, "legacy listing charge is on by default")
}

func TestListSites_RefundsWhenReadFails(t *testing.T) {
	h := newHarness(5)
	h.sites.ownerErr = errors.New("registry offline")

	rec := h.doJSON(t, http.MethodGet, "/api/sites", nil, true)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, h.ledger.commits)
	assert.Equal(t, 1, h.ledger.refunds, "failed listing returns the charged credit")
	assert.Equal(t, 5, h.ledger.balance)
}

/*──────────────────────────── upload-image ────────────────────────────*/

func multipartBody(t *testing.T, field, siteID string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "swap.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("PNGDATA"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("field", field))
	require.NoError(t, mw.WriteField("siteId", siteID))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadImage_UpdatesContentField(t *testing.T) {
	h := newHarness(5)
	h.sites.sites["s1"] = &registry.Site{ID: "s1", BucketName: "acmeco-u1", OwnerID: "u1"}

	body, contentType := multipartBody(t, "featureImage", "s1")
	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(h.sessionCookie(t))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	image := decodeBody(t, rec)["image"].(map[string]any)
	assert.Equal(t, "featureImageURL", image["key"])
	assert.Contains(t, image["value"], "acmeco-u1.sites.example.com/uploads/")
	assert.Contains(t, image["value"], "?", "image URL carries a cache-bust parameter")
	require.Len(t, h.sites.updates, 1)
	assert.Contains(t, h.sites.updates[0], "s1:featureImageURL=")
}

func TestUploadImage_RejectsUnknownField(t *testing.T) {
	h := newHarness(5)
	h.sites.sites["s1"] = &registry.Site{ID: "s1", BucketName: "acmeco-u1", OwnerID: "u1"}

	body, contentType := multipartBody(t, "heroBanner", "s1")
	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(h.sessionCookie(t))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.sites.updates)
}

/*──────────────────────────── contact and review ────────────────────────────*/

func TestContact_RelaysToOwner(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/contact",
		map[string]string{"id": "u1", "name": "Visitor", "message": "hello there"}, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner@acme.example", h.mail.to)
	assert.Equal(t, "Contact Form Message from Visitor", h.mail.subject)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestContact_UnknownOwner(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/contact",
		map[string]string{"id": "ghost", "name": "Visitor", "message": "hello"}, false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, h.mail.sent)
}

func TestContact_Preflight(t *testing.T) {
	h := newHarness(5)
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReview_RelaysToOwner(t *testing.T) {
	h := newHarness(5)
	rec := h.doJSON(t, http.MethodPost, "/api/review",
		map[string]string{"id": "u1", "reviewer": "Visitor", "review": "great site"}, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner@acme.example", h.mail.to)
	assert.Equal(t, "Review received from Visitor", h.mail.subject)
	assert.Equal(t, "great site", h.mail.text)
}
