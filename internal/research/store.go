package research

import (
	"context"
	"fmt"
	"time"

	"confpilot/internal/cache"
)

// TTLs for each cache entry kind. The prep TTL is the unit of
// at-most-one-fresh-compute-per-window; there is no locking, so concurrent
// misses may each trigger a compute (accepted, last write wins).
const (
	ConferenceTTL     = 24 * time.Hour
	SessionPrepTTL    = 15 * time.Minute
	SpeakerProfileTTL = 12 * time.Hour
)

// ConferenceKey returns the cache key for raw conference material.
func ConferenceKey(conferenceID string) string {
	return fmt.Sprintf("conference:%s:raw", conferenceID)
}

// SessionPrepKey returns the cache key for a session's prep result.
func SessionPrepKey(sessionID string) string {
	return fmt.Sprintf("session:%s:prep", sessionID)
}

// SpeakerProfileKey returns the cache key for an enriched speaker profile.
func SpeakerProfileKey(identifier string) string {
	return fmt.Sprintf("speaker:%s:profile", identifier)
}

// Store provides typed reads and writes over the key-value cache.
type Store struct {
	cache cache.Store
}

// NewStore wraps the provided cache.
func NewStore(c cache.Store) *Store {
	return &Store{cache: c}
}

// StoreConferenceMaterial caches raw conference text for 24 hours.
func (s *Store) StoreConferenceMaterial(ctx context.Context, material RawConferenceMaterial) error {
	return s.cache.SetJSON(ctx, ConferenceKey(material.ConferenceID), material, ConferenceTTL)
}

// LoadConferenceMaterial returns the cached material, or nil on a miss.
func (s *Store) LoadConferenceMaterial(ctx context.Context, conferenceID string) (*RawConferenceMaterial, error) {
	var material RawConferenceMaterial
	found, err := s.cache.GetJSON(ctx, ConferenceKey(conferenceID), &material)
	if err != nil || !found {
		return nil, err
	}
	return &material, nil
}

// StoreSessionPrep caches a full prep computation for 15 minutes.
func (s *Store) StoreSessionPrep(ctx context.Context, payload SessionPrepCache) error {
	return s.cache.SetJSON(ctx, SessionPrepKey(payload.SessionID), payload, SessionPrepTTL)
}

// LoadSessionPrep returns the cached prep, or nil on a miss.
func (s *Store) LoadSessionPrep(ctx context.Context, sessionID string) (*SessionPrepCache, error) {
	var payload SessionPrepCache
	found, err := s.cache.GetJSON(ctx, SessionPrepKey(sessionID), &payload)
	if err != nil || !found {
		return nil, err
	}
	return &payload, nil
}

// StoreSpeakerProfile caches an enriched speaker snippet for 12 hours.
func (s *Store) StoreSpeakerProfile(ctx context.Context, payload SpeakerProfileCache) error {
	return s.cache.SetJSON(ctx, SpeakerProfileKey(payload.Identifier), payload, SpeakerProfileTTL)
}

// LoadSpeakerProfile returns the cached profile, or nil on a miss.
func (s *Store) LoadSpeakerProfile(ctx context.Context, identifier string) (*SpeakerProfileCache, error) {
	var payload SpeakerProfileCache
	found, err := s.cache.GetJSON(ctx, SpeakerProfileKey(identifier), &payload)
	if err != nil || !found {
		return nil, err
	}
	return &payload, nil
}
