// internal/provision/provision_test.go
//
// Orchestrator tests run against in-memory fakes so every failure step can
// be injected and the compensation rule checked without real collaborators.

package provision

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/generator"
	"github.com/sitewright/sitewright/internal/registry"
	"github.com/sitewright/sitewright/internal/user"
)

/*──────────────────────────── fakes ────────────────────────────*/

type fakeLedger struct {
	balance     int
	eligibleErr error
	commitErr   error
	commits     int
}

func (f *fakeLedger) Eligible(_ context.Context, _ string, threshold int) (int, error) {
	if f.eligibleErr != nil {
		return 0, f.eligibleErr
	}
	if f.balance <= threshold {
		return 0, fault.ErrInsufficientCredits
	}
	return f.balance, nil
}

func (f *fakeLedger) Commit(_ context.Context, _, _ string) (int, error) {
	f.commits++
	if f.commitErr != nil {
		return 0, f.commitErr
	}
	f.balance--
	return f.balance, nil
}

type fakeStore struct {
	buckets        map[string]bool
	objects        map[string]map[string][]byte
	createErr      error
	policyErr      error
	uploadErrOnKey string
	deleted        []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		buckets: map[string]bool{},
		objects: map[string]map[string][]byte{},
	}
}

func (f *fakeStore) CreateBucket(_ context.Context, name string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.buckets[name] = true
	f.objects[name] = map[string][]byte{}
	return nil
}

func (f *fakeStore) SetPublicReadPolicy(_ context.Context, name string) error {
	return f.policyErr
}

func (f *fakeStore) UploadObjects(_ context.Context, bucket string, objects map[string][]byte) (map[string]string, error) {
	if _, fail := objects[f.uploadErrOnKey]; fail && f.uploadErrOnKey != "" {
		return nil, fault.ErrUpload
	}
	urls := make(map[string]string, len(objects))
	for key, data := range objects {
		f.objects[bucket][key] = data
		urls[key] = f.PublicURL(bucket, key)
	}
	return urls, nil
}

func (f *fakeStore) DeleteBucket(_ context.Context, name string) bool {
	delete(f.buckets, name)
	delete(f.objects, name)
	f.deleted = append(f.deleted, name)
	return true
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return "https://" + bucket + ".sites.example.com/" + key
}

type fakeImages struct {
	mu      sync.Mutex
	err     error
	prompts []string
}

func (f *fakeImages) Image(_ context.Context, prompt string, _ generator.ImageOptions) ([]byte, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	f.prompts = append(f.prompts, prompt)
	return []byte("img:" + prompt), 42, nil
}

type fakeRegistry struct {
	sites     map[string]*registry.Site
	insertErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{sites: map[string]*registry.Site{}}
}

func (f *fakeRegistry) Insert(_ context.Context, site *registry.Site) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.sites[site.BucketName] = site
	return nil
}

func (f *fakeRegistry) ByBucketAndOwner(_ context.Context, bucketName, _ string) (*registry.Site, error) {
	if s, ok := f.sites[bucketName]; ok {
		return s, nil
	}
	return nil, registry.ErrNotFound
}

/*──────────────────────────── fixtures ────────────────────────────*/

type fixture struct {
	svc    *Service
	ledger *fakeLedger
	store  *fakeStore
	images *fakeImages
	sites  *fakeRegistry
}

func newFixture(credits int) *fixture {
	f := &fixture{
		ledger: &fakeLedger{balance: credits},
		store:  newFakeStore(),
		images: &fakeImages{},
		sites:  newFakeRegistry(),
	}
	f.svc = New(f.ledger, f.store, f.images, f.sites)
	return f
}

func acmeOwner() *user.User { return &user.User{ID: "u1", Email: "owner@acme.example"} }

func acmeContent() assemble.SiteContent {
	return assemble.SiteContent{
		Title:                  "Acme Co",
		HeroTitle:              "Build something great",
		HeroContent:            "Acme helps small teams ship faster.",
		FeatureImagePrompt:     "feature prompt",
		AboutUsImagePrompt:     "about prompt",
		TestimonialImagePrompt: "testimonial prompt",
		Features:               []assemble.Feature{{Title: "Fast", Content: "Ships in minutes."}},
	}
}

/*──────────────────────────── tests ────────────────────────────*/

func TestCreateSite_GateBlocksWithoutSideEffects(t *testing.T) {
	f := newFixture(0)

	_, err := f.svc.CreateSite(context.Background(), acmeOwner(), "req-1", acmeContent())

	require.ErrorIs(t, err, fault.ErrInsufficientCredits)
	assert.Empty(t, f.store.buckets, "no bucket may exist after a gate failure")
	assert.Empty(t, f.images.prompts, "no generation spend after a gate failure")
	assert.Zero(t, f.ledger.commits)
	assert.Empty(t, f.sites.sites)
}

func TestCreateSite_DuplicateRejected(t *testing.T) {
	f := newFixture(5)
	f.sites.sites["acmeco-u1"] = &registry.Site{BucketName: "acmeco-u1", OwnerID: "u1"}

	_, err := f.svc.CreateSite(context.Background(), acmeOwner(), "req-1", acmeContent())

	require.ErrorIs(t, err, fault.ErrSiteExists)
	assert.Empty(t, f.store.buckets, "duplicate must not create a new bucket")
	assert.Zero(t, f.ledger.commits)
}

func TestCreateSite_BucketCreateFailureHasNothingToCompensate(t *testing.T) {
	f := newFixture(5)
	f.store.createErr = fault.ErrBucketCreation

	_, err := f.svc.CreateSite(context.Background(), acmeOwner(), "req-1", acmeContent())

	require.ErrorIs(t, err, fault.ErrBucketCreation)
	assert.Empty(t, f.store.deleted)
	assert.Zero(t, f.ledger.commits)
}

func TestCreateSite_CompensatesAtEveryStep(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name   string
		inject func(f *fixture)
	}{
		{"policy", func(f *fixture) { f.store.policyErr = fault.ErrPolicy }},
		{"image generation", func(f *fixture) { f.images.err = fault.ErrGenerationFailed }},
		{"image upload", func(f *fixture) { f.store.uploadErrOnKey = "featureImage-0" }},
		{"render", func(f *fixture) {
			f.svc.render = func(assemble.SiteContent, string, bool) (assemble.Document, error) {
				return assemble.Document{}, boom
			}
		}},
		{"document upload", func(f *fixture) { f.store.uploadErrOnKey = "index.html" }},
		{"persist", func(f *fixture) { f.sites.insertErr = fault.ErrPersistence }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(5)
			tc.inject(f)

			_, err := f.svc.CreateSite(context.Background(), acmeOwner(), "req-1", acmeContent())

			require.Error(t, err)
			assert.False(t, f.store.buckets["acmeco-u1"], "bucket must not survive the failure")
			assert.Contains(t, f.store.deleted, "acmeco-u1", "compensating delete must run")
			assert.Empty(t, f.sites.sites, "no registry record without a fully provisioned bucket")
			assert.Zero(t, f.ledger.commits, "no credit spent on a failed pipeline")
		})
	}
}

func TestCreateSite_EndToEnd(t *testing.T) {
	f := newFixture(5)

	res, err := f.svc.CreateSite(context.Background(), acmeOwner(), "req-1", acmeContent())
	require.NoError(t, err)

	// Bucket name derives from title and owner.
	assert.True(t, f.store.buckets["acmeco-u1"])

	// Three images plus the document pair landed in the bucket.
	uploaded := f.store.objects["acmeco-u1"]
	for _, key := range []string{"featureImage-0", "aboutUsImage-0", "testimonialImage-0", "index.html", "styles.css"} {
		assert.Contains(t, uploaded, key)
	}
	assert.Len(t, f.images.prompts, 3)

	// One registry record, pointing at the uploaded document.
	require.Len(t, f.sites.sites, 1)
	site := f.sites.sites["acmeco-u1"]
	assert.Equal(t, "https://acmeco-u1.sites.example.com/index.html", site.Href)
	assert.Equal(t, site.Href, res.URL)
	assert.Equal(t, "https://acmeco-u1.sites.example.com/featureImage-0", site.Content.FeatureImageURL)

	// Exactly one credit committed.
	assert.Equal(t, 1, f.ledger.commits)
	assert.Equal(t, 4, res.CreditsRemaining)
}

func TestCreateSite_CommitFailureKeepsSite(t *testing.T) {
	f := newFixture(5)
	f.ledger.commitErr = errors.New("ledger unavailable")

	res, err := f.svc.CreateSite(context.Background(), acmeOwner(), "req-1", acmeContent())

	// The site is live; the failed commit is logged, not surfaced.
	require.NoError(t, err)
	assert.Equal(t, -1, res.CreditsRemaining)
	assert.True(t, f.store.buckets["acmeco-u1"])
	assert.Len(t, f.sites.sites, 1)
}
