// Package inventory holds the list of ad creatives. The networked backing
// store is the source of truth; when it is unreachable the store falls back
// to the last-known local mirror and keeps serving (and mutating) that copy
// for the current session.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mirrorKey = "ftj_ads_mirror"

var (
	ErrAdNotFound = errors.New("ad not found")
)

// Applied tags a mutation result so callers can distinguish "durably saved
// in the backing store" from "visible this session only".
type Applied int

const (
	AppliedRemote Applied = iota
	AppliedLocalOnly
)

func (a Applied) String() string {
	if a == AppliedRemote {
		return "remote"
	}
	return "local"
}

// Config holds inventory store configuration.
type Config struct {
	BaseURL   string        // backing store base URL, e.g. https://cms.futuretechjournal.com
	AuthToken string        // bearer token attached to mutating requests, optional
	Timeout   time.Duration // per-request timeout
}

// NewAd is the input for creating a creative.
type NewAd struct {
	Title        string           `json:"title"`
	SmartlinkURL string           `json:"smartlinkUrl"`
	ImageURL     string           `json:"imageUrl,omitempty"`
	Placement    domain.Placement `json:"placement"`
	Priority     int              `json:"priority,omitempty"`
}

// Patch carries the mutable fields of an update; nil means "leave as is".
type Patch struct {
	Title        *string           `json:"title,omitempty"`
	SmartlinkURL *string           `json:"smartlinkUrl,omitempty"`
	ImageURL     *string           `json:"imageUrl,omitempty"`
	Placement    *domain.Placement `json:"placement,omitempty"`
	Status       *domain.AdStatus  `json:"status,omitempty"`
	Priority     *int              `json:"priority,omitempty"`
}

// Store is the in-memory ad list shared by every rendering unit in the
// process. Every mutation produces a new list value (copy-on-write) so
// consumers observing the list by reference see consistent snapshots.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	client    *http.Client
	kv        platform.KeyValueStore
	clock     platform.Clock
	log       *zap.Logger
	ads       []*domain.Ad
	connected bool
	loading   bool
}

func NewStore(cfg Config, kv platform.KeyValueStore, clock platform.Clock, log *zap.Logger) *Store {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		kv:     kv,
		clock:  clock,
		log:    log,
	}
}

// Sync fetches the full ad list from the backing store. On success the
// result becomes the in-memory list and is mirrored locally; on failure the
// last mirrored list is loaded instead and the store is marked not
// connected. Sync never fails the caller: a disconnected store still works.
func (s *Store) Sync(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	ads, err := s.fetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.connected = false
		s.ads = s.loadMirrorLocked()
		s.log.Warn("ad inventory fetch failed, using local mirror",
			zap.Int("mirrored_ads", len(s.ads)),
			zap.Error(err))
		return
	}

	s.connected = true
	s.ads = ads
	s.mirrorLocked()
	s.log.Info("ad inventory synced", zap.Int("ads", len(ads)))
}

// Connected reports whether the last sync or mutation reached the backing
// store.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Loading reports whether a sync is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// List returns a snapshot of the full inventory in insertion order.
func (s *Store) List() []*domain.Ad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Ad, len(s.ads))
	copy(out, s.ads)
	return out
}

// Get returns one ad by client identifier.
func (s *Store) Get(id string) (*domain.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ad := range s.ads {
		if ad.ID == id {
			return ad, nil
		}
	}
	return nil, ErrAdNotFound
}

// ByPlacement returns every ad tagged with the placement, insertion order.
func (s *Store) ByPlacement(p domain.Placement) []*domain.Ad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Ad
	for _, ad := range s.ads {
		if ad.Placement == p {
			out = append(out, ad)
		}
	}
	return out
}

// ActiveByPlacement filters by placement equality AND active status,
// preserving insertion order. Consumers wanting priority order use
// SortByPriority on the result.
func (s *Store) ActiveByPlacement(p domain.Placement) []*domain.Ad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Ad
	for _, ad := range s.ads {
		if ad.Placement == p && ad.IsActive() {
			out = append(out, ad)
		}
	}
	return out
}

// SortByPriority orders ads by descending priority, stable within equal
// priorities.
func SortByPriority(ads []*domain.Ad) {
	sort.SliceStable(ads, func(i, j int) bool {
		return ads[i].Priority > ads[j].Priority
	})
}

// validate rejects malformed input before any apply path runs, so the
// local fallback holds the same boundary rules as the backing store.
func (in NewAd) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.ErrAdMissingTitle
	}
	if strings.TrimSpace(in.SmartlinkURL) == "" {
		return domain.ErrAdMissingSmartlink
	}
	if !in.Placement.Valid() {
		return domain.ErrAdUnknownPlacement
	}
	return nil
}

// validate rejects patches that would blank out a required field.
func (p Patch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return domain.ErrAdMissingTitle
	}
	if p.SmartlinkURL != nil && strings.TrimSpace(*p.SmartlinkURL) == "" {
		return domain.ErrAdMissingSmartlink
	}
	if p.Placement != nil && !p.Placement.Valid() {
		return domain.ErrAdUnknownPlacement
	}
	return nil
}

// Add creates a creative: network first, local fallback.
func (s *Store) Add(ctx context.Context, in NewAd) (*domain.Ad, Applied, error) {
	if err := in.validate(); err != nil {
		return nil, AppliedLocalOnly, err
	}

	created, err := s.postAd(ctx, in)
	if err == nil {
		s.appendAd(created, true)
		return created, AppliedRemote, nil
	}
	s.log.Warn("failed to create ad remotely, applying locally", zap.Error(err))

	now := s.clock.Now()
	local := &domain.Ad{
		ID:           "local-" + uuid.NewString(),
		Title:        in.Title,
		SmartlinkURL: in.SmartlinkURL,
		ImageURL:     in.ImageURL,
		Placement:    in.Placement,
		Status:       domain.AdStatusActive,
		Priority:     in.Priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.appendAd(local, false)
	return local, AppliedLocalOnly, nil
}

// Update patches a creative: network first, local fallback.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*domain.Ad, Applied, error) {
	if err := patch.validate(); err != nil {
		return nil, AppliedLocalOnly, err
	}

	current, err := s.Get(id)
	if err != nil {
		return nil, AppliedLocalOnly, err
	}

	if updated, err := s.putAd(ctx, current, patch); err == nil {
		s.replaceAd(id, updated, true)
		return updated, AppliedRemote, nil
	} else {
		s.log.Warn("failed to update ad remotely, applying locally",
			zap.String("ad_id", id), zap.Error(err))
	}

	updated := applyPatch(current, patch, s.clock.Now())
	s.replaceAd(id, updated, false)
	return updated, AppliedLocalOnly, nil
}

// ToggleStatus flips a creative between active and inactive.
func (s *Store) ToggleStatus(ctx context.Context, id string) (*domain.Ad, Applied, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, AppliedLocalOnly, err
	}

	next := domain.AdStatusActive
	if current.IsActive() {
		next = domain.AdStatusInactive
	}
	return s.Update(ctx, id, Patch{Status: &next})
}

// Remove deletes a creative from the active inventory list: network first,
// local fallback. Analytics history is untouched.
func (s *Store) Remove(ctx context.Context, id string) (Applied, error) {
	current, err := s.Get(id)
	if err != nil {
		return AppliedLocalOnly, err
	}

	applied := AppliedRemote
	if err := s.deleteAd(ctx, current); err != nil {
		s.log.Warn("failed to delete ad remotely, applying locally",
			zap.String("ad_id", id), zap.Error(err))
		applied = AppliedLocalOnly
	}

	s.mu.Lock()
	next := make([]*domain.Ad, 0, len(s.ads))
	for _, ad := range s.ads {
		if ad.ID != id {
			next = append(next, ad)
		}
	}
	s.ads = next
	if applied == AppliedRemote {
		s.connected = true
	}
	s.mirrorLocked()
	s.mu.Unlock()

	return applied, nil
}

// RecordImpression bumps the impression counter: always applied
// optimistically in memory, fire-and-forget against the network.
func (s *Store) RecordImpression(ctx context.Context, id string) {
	s.bumpCounter(ctx, id, "impression")
}

// RecordClick bumps the click counter the same way.
func (s *Store) RecordClick(ctx context.Context, id string) {
	s.bumpCounter(ctx, id, "click")
}

func (s *Store) bumpCounter(ctx context.Context, id, kind string) {
	s.mu.Lock()
	var target *domain.Ad
	next := make([]*domain.Ad, len(s.ads))
	for i, ad := range s.ads {
		if ad.ID == id {
			clone := *ad
			if kind == "impression" {
				clone.Impressions++
			} else {
				clone.Clicks++
			}
			target = &clone
			next[i] = &clone
		} else {
			next[i] = ad
		}
	}
	if target == nil {
		s.mu.Unlock()
		return
	}
	s.ads = next
	s.mirrorLocked()
	s.mu.Unlock()

	// Counter increments that cannot reach the backing store are dropped;
	// a local-only ad keeps its local identifier in the URL, so server-side
	// reconciliation of the two id schemes stays visible in the logs.
	url := fmt.Sprintf("%s/api/ads/%s/%s", s.cfg.BaseURL, remoteID(target), kind)
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
		defer cancel()
		if err := s.doJSON(ctx, http.MethodPost, url, nil, nil); err != nil {
			s.log.Debug("counter increment not delivered",
				zap.String("ad_id", id), zap.String("kind", kind), zap.Error(err))
		}
	}()
}

// --- list bookkeeping ---

func (s *Store) appendAd(ad *domain.Ad, remote bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]*domain.Ad, len(s.ads), len(s.ads)+1)
	copy(next, s.ads)
	s.ads = append(next, ad)
	if remote {
		s.connected = true
	}
	s.mirrorLocked()
}

func (s *Store) replaceAd(id string, ad *domain.Ad, remote bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]*domain.Ad, len(s.ads))
	for i, existing := range s.ads {
		if existing.ID == id {
			next[i] = ad
		} else {
			next[i] = existing
		}
	}
	s.ads = next
	if remote {
		s.connected = true
	}
	s.mirrorLocked()
}

// mirrorLocked re-mirrors the current list into local storage. Caller must
// hold the lock. Mirror failures are logged and absorbed: the mirror is
// best-effort by contract.
func (s *Store) mirrorLocked() {
	raw, err := json.Marshal(s.ads)
	if err == nil {
		err = s.kv.Set(mirrorKey, string(raw))
	}
	if err != nil {
		s.log.Warn("failed to mirror ad inventory", zap.Error(err))
	}
}

func (s *Store) loadMirrorLocked() []*domain.Ad {
	raw, ok := s.kv.Get(mirrorKey)
	if !ok {
		return nil
	}
	var ads []*domain.Ad
	if err := json.Unmarshal([]byte(raw), &ads); err != nil {
		s.log.Warn("corrupt ad inventory mirror", zap.Error(err))
		return nil
	}
	return ads
}

// --- network path ---

type adListResponse struct {
	Ads []domain.WireAd `json:"ads"`
}

func (s *Store) fetchAll(ctx context.Context) ([]*domain.Ad, error) {
	var resp adListResponse
	if err := s.doJSON(ctx, http.MethodGet, s.cfg.BaseURL+"/api/ads", nil, &resp); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ads := make([]*domain.Ad, 0, len(resp.Ads))
	for _, w := range resp.Ads {
		ad, err := domain.NormalizeWireAd(w, now)
		if err != nil {
			s.log.Warn("dropping malformed ad record",
				zap.String("title", w.Title), zap.Error(err))
			continue
		}
		ads = append(ads, ad)
	}
	return ads, nil
}

func (s *Store) postAd(ctx context.Context, in NewAd) (*domain.Ad, error) {
	var w domain.WireAd
	if err := s.doJSON(ctx, http.MethodPost, s.cfg.BaseURL+"/api/ads", in, &w); err != nil {
		return nil, err
	}
	return domain.NormalizeWireAd(w, s.clock.Now())
}

func (s *Store) putAd(ctx context.Context, current *domain.Ad, patch Patch) (*domain.Ad, error) {
	var w domain.WireAd
	url := s.cfg.BaseURL + "/api/ads/" + remoteID(current)
	if err := s.doJSON(ctx, http.MethodPut, url, patch, &w); err != nil {
		return nil, err
	}
	ad, err := domain.NormalizeWireAd(w, s.clock.Now())
	if err != nil {
		return nil, err
	}
	// The server representation wins, but the client id stays stable
	ad.ID = current.ID
	return ad, nil
}

func (s *Store) deleteAd(ctx context.Context, current *domain.Ad) error {
	return s.doJSON(ctx, http.MethodDelete, s.cfg.BaseURL+"/api/ads/"+remoteID(current), nil, nil)
}

// doJSON performs one request with the optional bearer token, encoding body
// and decoding the response when out is non-nil. Non-2xx is an error.
func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AuthToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("backing store returned status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// remoteID prefers the backing-store identifier for server paths and falls
// back to the client id for locally created ads.
func remoteID(ad *domain.Ad) string {
	if ad.RemoteID != "" {
		return ad.RemoteID
	}
	return ad.ID
}

func applyPatch(current *domain.Ad, patch Patch, now time.Time) *domain.Ad {
	next := *current
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.SmartlinkURL != nil {
		next.SmartlinkURL = *patch.SmartlinkURL
	}
	if patch.ImageURL != nil {
		next.ImageURL = *patch.ImageURL
	}
	if patch.Placement != nil {
		next.Placement = *patch.Placement
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	next.UpdatedAt = now
	return &next
}
