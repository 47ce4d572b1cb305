// internal/api/sites.go
//
// Site lifecycle endpoints: creation, listing, editor image swaps, and the
// asset download proxy.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/registry"
)

// createWebsite runs the full provisioning pipeline.  The body is the
// structured content document; the bucket name derives from title + owner.
func (s *Server) createWebsite(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var content assemble.SiteContent
	if err := s.decode(r, &content); err != nil {
		s.fail(w, r, err)
		return
	}
	reqID, err := s.claimRequest(r, u)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.prov.CreateSite(r.Context(), u, reqID, content)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"message":          "Website created successfully!",
		"url":              res.URL,
		"creditsRemaining": res.CreditsRemaining,
	})
}

// listSites returns the caller's sites.  When charge_listing is on, the
// legacy behavior applies: the listing itself costs one credit, charged up
// front and refunded if the read fails.
func (s *Server) listSites(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	charged := false
	if s.cfg.Credits.ChargeListing {
		reqID, err := s.claimRequest(r, u)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if _, err := s.ledger.Commit(r.Context(), u.ID, reqID); err != nil {
			s.fail(w, r, err)
			return
		}
		charged = true
	}

	sites, err := s.sites.ByOwner(r.Context(), u.ID)
	if err != nil {
		if charged {
			if rerr := s.ledger.Refund(r.Context(), u.ID); rerr != nil {
				zap.S().Warnw("listing refund failed", "user", u.ID, "err", rerr)
			}
		}
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{"sites": sites})
}

// Content fields the editor may replace through upload-image.
var uploadableFields = map[string]bool{
	"featureImage":     true,
	"aboutUsImage":     true,
	"testimonialImage": true,
}

const maxUploadBytes = 10 << 20

// uploadImage accepts a multipart {file, field, siteId}, puts the file into
// the site's bucket under uploads/, and repoints content.<field>URL at it.
func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, fmt.Errorf("%w: malformed multipart body", fault.ErrValidation))
		return
	}

	field := r.FormValue("field")
	siteID := r.FormValue("siteId")
	file, header, err := r.FormFile("file")
	if err != nil || field == "" || siteID == "" {
		s.fail(w, r, fmt.Errorf("%w: file, field, and siteId are required", fault.ErrValidation))
		return
	}
	defer file.Close()

	if !uploadableFields[field] {
		s.fail(w, r, fmt.Errorf("%w: unknown content field %q", fault.ErrValidation, field))
		return
	}

	site, err := s.sites.ByID(r.Context(), siteID, u.ID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			s.fail(w, r, fmt.Errorf("%w: site does not exist", fault.ErrValidation))
			return
		}
		s.fail(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ts := time.Now().UnixMilli()
	key := fmt.Sprintf("uploads/%d-%s", ts, path.Base(header.Filename))

	urls, err := s.store.UploadObjects(r.Context(), site.BucketName, map[string][]byte{key: data})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	finalURL := urls[key] + "?" + strconv.FormatInt(ts, 10)

	if err := s.sites.UpdateContentField(r.Context(), siteID, u.ID, field+"URL", finalURL); err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"message": "Image upload successful.",
		"image": map[string]string{
			"key":   field + "URL",
			"value": finalURL,
		},
	})
}

var downloadClient = &http.Client{Timeout: 30 * time.Second}

// download proxies a generated asset back with attachment headers, so the
// browser saves it instead of rendering it.
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("imageUrl")
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		s.fail(w, r, fmt.Errorf("%w: invalid image URL", fault.ErrValidation))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, raw, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := downloadClient.Do(req)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", fault.ErrDownstream, err))
		return
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		s.fail(w, r, fmt.Errorf("%w: upstream status %d", fault.ErrDownstream, res.StatusCode))
		return
	}

	name := path.Base(parsed.Path)
	if name == "/" || name == "." {
		name = "download.png"
	}
	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename=`+strconv.Quote(name))
	if _, err := io.Copy(w, res.Body); err != nil {
		zap.S().Warnw("download stream interrupted", "url", raw, "err", err)
	}
}
