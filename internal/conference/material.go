package conference

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"confpilot/internal/logging"
	"confpilot/internal/research"
)

//go:embed example_conference.md
var exampleConference string

// MaterialSource resolves raw conference listing text, preferring the cache
// and falling back to a configured file, then to the bundled example.
type MaterialSource struct {
	store        *research.Store
	materialPath string
	logger       *slog.Logger
	now          func() time.Time
}

// NewMaterialSource builds a material source. materialPath may be empty, in
// which case only the cache and the bundled example are consulted.
func NewMaterialSource(store *research.Store, materialPath string, logger *slog.Logger) *MaterialSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MaterialSource{
		store:        store,
		materialPath: materialPath,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source, used by tests.
func (m *MaterialSource) SetClock(now func() time.Time) {
	m.now = now
}

// Ensure returns the raw material for a conference, loading and caching it
// on a miss. The refreshed flag reports whether the cache had to be filled.
func (m *MaterialSource) Ensure(ctx context.Context, conferenceID string) (*research.RawConferenceMaterial, bool, error) {
	cached, err := m.store.LoadConferenceMaterial(ctx, conferenceID)
	if err != nil {
		return nil, false, fmt.Errorf("load cached material: %w", err)
	}
	if cached != nil {
		return cached, false, nil
	}

	content, err := m.readMaterial()
	if err != nil {
		return nil, false, err
	}

	material := research.RawConferenceMaterial{
		ConferenceID: conferenceID,
		Content:      content,
		Source:       "file",
		CapturedAt:   m.now().UTC().Format(time.RFC3339),
	}
	if err := m.store.StoreConferenceMaterial(ctx, material); err != nil {
		return nil, false, fmt.Errorf("cache material: %w", err)
	}
	m.logger.Info("conference material cached",
		logging.String("conference_id", conferenceID),
		logging.Int("bytes", len(content)))
	return &material, true, nil
}

func (m *MaterialSource) readMaterial() (string, error) {
	if m.materialPath != "" {
		data, err := os.ReadFile(m.materialPath)
		if err != nil {
			return "", fmt.Errorf("read conference material %s: %w", m.materialPath, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("conference material %s is empty", m.materialPath)
		}
		return string(data), nil
	}
	return exampleConference, nil
}
