package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source produces catalog snapshots.
type Source interface {
	// Name identifies the source in logs, e.g. "embedded" or "file".
	Name() string

	// Load fetches and decodes a full snapshot.
	Load(ctx context.Context) (Snapshot, DecodeReport, error)
}

// EmbeddedSource loads the catalog bundled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(_ context.Context) (Snapshot, DecodeReport, error) {
	return DecodeYAML(bytes.NewReader(catalogRawData))
}

// FileSource loads a JSON or YAML catalog document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file" }

func (s FileSource) Load(_ context.Context) (Snapshot, DecodeReport, error) {
	return DecodeFile(s.Path)
}

// Endpoints are the collection paths of a remote catalog, relative to the
// base URL.
type Endpoints struct {
	Lenses           string
	Cameras          string
	RecordingFormats string
	Rentals          string
	Inventory        string
}

// DefaultEndpoints returns the conventional collection paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Lenses:           "/lenses.json",
		Cameras:          "/cameras.json",
		RecordingFormats: "/recording_formats.json",
		Rentals:          "/rentals.json",
		Inventory:        "/inventory.json",
	}
}

// maxPayloadBytes caps a single endpoint response.
const maxPayloadBytes = 32 << 20

// RemoteSource fetches each catalog collection from its own HTTPS endpoint.
// A failure on any endpoint fails the whole load.
type RemoteSource struct {
	BaseURL   string
	Endpoints Endpoints
	Client    *http.Client
	UserAgent string
}

// NewRemoteSource creates a RemoteSource with default endpoints and the given
// per-request timeout.
func NewRemoteSource(baseURL string, timeout time.Duration) *RemoteSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RemoteSource{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Endpoints: DefaultEndpoints(),
		Client:    &http.Client{Timeout: timeout},
	}
}

func (s *RemoteSource) Name() string { return "remote" }

// Load fetches all collections concurrently.
func (s *RemoteSource) Load(ctx context.Context) (Snapshot, DecodeReport, error) {
	var doc rawDocument

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.fetch(gctx, s.Endpoints.Lenses, "lenses", &doc.Lenses) })
	g.Go(func() error { return s.fetch(gctx, s.Endpoints.Cameras, "cameras", &doc.Cameras) })
	g.Go(func() error {
		return s.fetch(gctx, s.Endpoints.RecordingFormats, "recording_formats", &doc.RecordingFormats)
	})
	g.Go(func() error { return s.fetch(gctx, s.Endpoints.Rentals, "rentals", &doc.Rentals) })
	g.Go(func() error { return s.fetch(gctx, s.Endpoints.Inventory, "inventory", &doc.Inventory) })

	if err := g.Wait(); err != nil {
		return Snapshot{}, DecodeReport{}, err
	}

	snap, rep := doc.build()
	return snap, rep, nil
}

func (s *RemoteSource) fetch(ctx context.Context, path, key string, out any) error {
	if path == "" {
		return nil
	}

	url := s.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("catalog: build request %s: %w", key, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: fetch %s: unexpected status %d", key, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", key, err)
	}
	if err := decodeCollection(body, key, out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", key, err)
	}
	return nil
}
