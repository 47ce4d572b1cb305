// internal/provision/provision.go
//
// Provisioning Orchestrator: the linear state machine behind site creation.
//
// Context
// -------
// One call walks the whole pipeline: duplicate guard, credit gate, bucket
// creation, public-read policy, image generation, asset upload, document
// render, document upload, registry insert, and finally the credit commit.
// Compensation rule: once the bucket exists, every later failure deletes it
// before the error is returned, so a site record exists if and only if its
// bucket was fully provisioned.
//
// Credit policy is uniform: eligibility is checked up front with no
// decrement, and the single commit happens only after the registry insert
// succeeds.  A commit failure at that point is logged, not surfaced; the
// site is live and the user keeps the result.
//
// There are no retries.  Any step failure is terminal for the request, and
// compensation is best-effort (a failed delete is logged and the original
// error still wins).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package provision

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/bucketname"
	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/generator"
	"github.com/sitewright/sitewright/internal/metrics"
	"github.com/sitewright/sitewright/internal/registry"
	"github.com/sitewright/sitewright/internal/user"
)

// Pipeline step names, used in logs, wrapped errors, and failure metrics.
const (
	stepDuplicateCheck = "duplicate_check"
	stepCreditCheck    = "credit_check"
	stepBucketCreate   = "bucket_create"
	stepPolicySet      = "policy_set"
	stepImageGenerate  = "image_generate"
	stepImageUpload    = "image_upload"
	stepRender         = "render"
	stepDocumentUpload = "document_upload"
	stepPersist        = "persist"
)

// Ledger is the credit gate and commit surface.
type Ledger interface {
	Eligible(ctx context.Context, userID string, threshold int) (int, error)
	Commit(ctx context.Context, userID, requestID string) (int, error)
}

// ObjectStore is the bucket lifecycle surface.
type ObjectStore interface {
	CreateBucket(ctx context.Context, name string) error
	SetPublicReadPolicy(ctx context.Context, name string) error
	UploadObjects(ctx context.Context, bucket string, objects map[string][]byte) (map[string]string, error)
	DeleteBucket(ctx context.Context, name string) bool
	PublicURL(bucket, key string) string
}

// ImageGenerator produces one image per prompt.
type ImageGenerator interface {
	Image(ctx context.Context, prompt string, opts generator.ImageOptions) ([]byte, int64, error)
}

// Registry is the site system of record.
type Registry interface {
	Insert(ctx context.Context, site *registry.Site) error
	ByBucketAndOwner(ctx context.Context, bucketName, ownerID string) (*registry.Site, error)
}

// Service orchestrates site provisioning.
type Service struct {
	ledger Ledger
	store  ObjectStore
	images ImageGenerator
	sites  Registry

	// render is swappable in tests to inject a failure at that step.
	render func(content assemble.SiteContent, bucketName string, preview bool) (assemble.Document, error)
}

func New(ledger Ledger, store ObjectStore, images ImageGenerator, sites Registry) *Service {
	return &Service{
		ledger: ledger,
		store:  store,
		images: images,
		sites:  sites,
		render: assemble.Render,
	}
}

// Result is a successful provisioning run.  CreditsRemaining is -1 when the
// commit failed after the site went live (balance unknown, site kept).
type Result struct {
	Site             *registry.Site
	URL              string
	CreditsRemaining int
}

// The three site images, each rendered at the dimensions its page section
// expects.
var siteImages = []struct {
	key    string
	width  int
	height int
	prompt func(c *assemble.SiteContent) string
	url    func(c *assemble.SiteContent) *string
}{
	{"featureImage-0", 512, 512,
		func(c *assemble.SiteContent) string { return c.FeatureImagePrompt },
		func(c *assemble.SiteContent) *string { return &c.FeatureImageURL }},
	{"aboutUsImage-0", 1024, 576,
		func(c *assemble.SiteContent) string { return c.AboutUsImagePrompt },
		func(c *assemble.SiteContent) *string { return &c.AboutUsImageURL }},
	{"testimonialImage-0", 720, 720,
		func(c *assemble.SiteContent) string { return c.TestimonialImagePrompt },
		func(c *assemble.SiteContent) *string { return &c.TestimonialImageURL }},
}

// CreateSite runs the full pipeline for one site.  requestID keys the
// credit commit, so a retried request can never charge twice.
func (s *Service) CreateSite(ctx context.Context, owner *user.User, requestID string, content assemble.SiteContent) (*Result, error) {
	bucket := bucketname.Derive(content.Title, owner.ID)
	log := zap.S().With("bucket", bucket, "user", owner.ID)
	metrics.ProvisionTotal.Inc()

	// Duplicate guard.  The store's own uniqueness check on create is the
	// real safety net; this read just fails fast with a clearer error.
	switch _, err := s.sites.ByBucketAndOwner(ctx, bucket, owner.ID); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", fault.ErrSiteExists, bucket)
	case !errors.Is(err, registry.ErrNotFound):
		return nil, fault.AtStep(stepDuplicateCheck, err)
	}

	// Eligibility only; nothing has been spent or allocated yet.
	if _, err := s.ledger.Eligible(ctx, owner.ID, 0); err != nil {
		metrics.ProvisionFailuresTotal.WithLabelValues(stepCreditCheck).Inc()
		return nil, fault.AtStep(stepCreditCheck, err)
	}

	log.Infow("creating bucket")
	if err := s.store.CreateBucket(ctx, bucket); err != nil {
		metrics.ProvisionFailuresTotal.WithLabelValues(stepBucketCreate).Inc()
		return nil, fault.AtStep(stepBucketCreate, err)
	}

	// The bucket exists from here on: every failure path below must run
	// the compensating delete.
	if err := s.store.SetPublicReadPolicy(ctx, bucket); err != nil {
		return nil, s.fail(ctx, log, stepPolicySet, bucket, err)
	}

	log.Infow("generating site images")
	imageData := make([][]byte, len(siteImages))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range siteImages {
		g.Go(func() error {
			data, _, err := s.images.Image(gctx, img.prompt(&content), generator.ImageOptions{
				Width:  img.width,
				Height: img.height,
				Seed:   -1,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", img.key, err)
			}
			imageData[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, log, stepImageGenerate, bucket, err)
	}

	objects := make(map[string][]byte, len(siteImages))
	for i, img := range siteImages {
		objects[img.key] = imageData[i]
	}
	log.Infow("uploading site images", "count", len(objects))
	if _, err := s.store.UploadObjects(ctx, bucket, objects); err != nil {
		return nil, s.fail(ctx, log, stepImageUpload, bucket, err)
	}
	for _, img := range siteImages {
		*img.url(&content) = s.store.PublicURL(bucket, img.key)
	}

	doc, err := s.render(content, bucket, false)
	if err != nil {
		return nil, s.fail(ctx, log, stepRender, bucket, fmt.Errorf("%w: %v", fault.ErrGenerationFailed, err))
	}

	log.Infow("uploading document")
	urls, err := s.store.UploadObjects(ctx, bucket, map[string][]byte{
		"index.html": []byte(doc.HTML),
		"styles.css": []byte(doc.CSS),
	})
	if err != nil {
		return nil, s.fail(ctx, log, stepDocumentUpload, bucket, err)
	}
	href := urls["index.html"]

	site := &registry.Site{
		BucketName: bucket,
		OwnerID:    owner.ID,
		Content:    content,
		Href:       href,
	}
	if err := s.sites.Insert(ctx, site); err != nil {
		return nil, s.fail(ctx, log, stepPersist, bucket, err)
	}

	// The site is live.  A commit failure here is logged and swallowed;
	// -1 tells the caller the balance is unknown.
	remaining, err := s.ledger.Commit(ctx, owner.ID, requestID)
	if err != nil {
		log.Warnw("credit commit failed after site went live", "err", err)
		remaining = -1
	}

	log.Infow("site provisioned", "href", href, "credits_remaining", remaining)
	return &Result{Site: site, URL: href, CreditsRemaining: remaining}, nil
}

// fail records the step failure, runs the compensating bucket delete, and
// wraps the cause with its step.  The delete's own outcome never replaces
// the original error.
func (s *Service) fail(ctx context.Context, log *zap.SugaredLogger, step, bucket string, err error) error {
	metrics.ProvisionFailuresTotal.WithLabelValues(step).Inc()
	log.Errorw("provisioning step failed, deleting bucket", "step", step, "err", err)

	metrics.CompensationsTotal.Inc()
	if !s.store.DeleteBucket(ctx, bucket) {
		log.Errorw("compensating bucket delete failed", "step", step)
	}
	return fault.AtStep(step, err)
}
