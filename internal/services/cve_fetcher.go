// Package services provides the CVE catalog client and the assessment orchestrator.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/util"
)

var logger = util.InitLogger()

// DefaultOSVURL is the public OSV API.
const DefaultOSVURL = "https://api.osv.dev"

// ErrCatalogUnavailable reports an OSV failure other than an unknown id.
var ErrCatalogUnavailable = errors.New("vulnerability catalog unavailable")

// errTransient marks responses worth retrying.
var errTransient = errors.New("transient OSV error")

// CVEFetcher retrieves vulnerability records from the OSV API.
type CVEFetcher struct {
	baseURL         string
	client          *http.Client
	initialInterval time.Duration
	maxElapsed      time.Duration
}

// NewCVEFetcher creates a fetcher for the given OSV base URL.
func NewCVEFetcher(baseURL string) *CVEFetcher {
	if baseURL == "" {
		baseURL = DefaultOSVURL
	}
	return &CVEFetcher{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          &http.Client{Timeout: 30 * time.Second},
		initialInterval: 500 * time.Millisecond,
		maxElapsed:      30 * time.Second,
	}
}

// FetchVulnerability looks up a CVE by id, retrying transient failures with
// exponential backoff. Unknown ids return model.ErrNotFound.
func (f *CVEFetcher) FetchVulnerability(ctx context.Context, cveID string) (*model.Vulnerability, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.initialInterval
	bo.MaxElapsedTime = f.maxElapsed

	var osv models.Vulnerability
	err := backoff.RetryNotify(func() error {
		rec, err := f.fetchOnce(ctx, cveID)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		osv = rec
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Sugar().Warnf("Retrying OSV lookup for %s in %s: %v", cveID, wait, err)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	vuln := model.NewVulnerability(osv)
	logger.Sugar().Infof("Fetched %s from OSV (cvss=%.1f, rating=%s)", cveID, vuln.CVSSBase, vuln.SeverityRating)
	return vuln, nil
}

func (f *CVEFetcher) fetchOnce(ctx context.Context, cveID string) (models.Vulnerability, error) {
	var osv models.Vulnerability

	endpoint := f.baseURL + "/v1/vulns/" + url.PathEscape(cveID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return osv, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return osv, fmt.Errorf("%w: OSV API request failed: %v", errTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return osv, backoff.Permanent(fmt.Errorf("vulnerability %s: %w", cveID, model.ErrNotFound))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return osv, fmt.Errorf("%w: OSV API returned %d", errTransient, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return osv, backoff.Permanent(fmt.Errorf("OSV API returned %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&osv); err != nil {
		return osv, backoff.Permanent(fmt.Errorf("failed to parse OSV response: %w", err))
	}
	return osv, nil
}
