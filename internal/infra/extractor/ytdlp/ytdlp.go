package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vietddude/clipwatch/internal/core/domain"
	"github.com/vietddude/clipwatch/internal/infra/extractor"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Config holds settings for the yt-dlp subprocess adapter.
type Config struct {
	Binary           string        `yaml:"binary"`
	OutputDir        string        `yaml:"output_dir"`
	Quality          string        `yaml:"quality"`
	GeoBypass        bool          `yaml:"geo_bypass"`
	GeoBypassCountry string        `yaml:"geo_bypass_country"`
	ProfileURL       string        `yaml:"profile_url"` // %s expanded with the source id
	Timeout          time.Duration `yaml:"timeout"`
}

// Adapter extracts item listings and payloads by shelling out to yt-dlp.
// Stderr is folded into returned errors so the retry classifier sees the
// upstream message text.
type Adapter struct {
	cfg Config
}

func NewAdapter(cfg Config) *Adapter {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.Quality == "" {
		cfg.Quality = "best"
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = "https://www.tiktok.com/@%s"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Adapter{cfg: cfg}
}

// dump mirrors the subset of yt-dlp's JSON output the adapter consumes.
type dump struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Timestamp  int64   `json:"timestamp"`
	WebpageURL string  `json:"webpage_url"`
	LikeCount  int64   `json:"like_count"`
	ViewCount  int64   `json:"view_count"`
	Entries    []dump  `json:"entries"`
	Downloads  []dlOut `json:"requested_downloads"`
}

type dlOut struct {
	Filepath string `json:"filepath"`
}

// ListRecent extracts up to limit recent entries from a source's profile
// page without downloading payloads. Entries are returned newest first.
func (a *Adapter) ListRecent(ctx context.Context, sourceID string, limit int) ([]domain.Entry, error) {
	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--playlist-end", fmt.Sprintf("%d", limit),
		"--user-agent", userAgent,
	}
	args = a.appendGeoArgs(args)
	args = append(args, fmt.Sprintf(a.cfg.ProfileURL, sourceID))

	out, err := a.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var d dump
	if err := json.Unmarshal(out, &d); err != nil {
		return nil, fmt.Errorf("unable to extract listing for %s: %w", sourceID, err)
	}
	return entriesFromDump(d), nil
}

// entriesFromDump flattens a playlist dump into entries sorted newest first.
func entriesFromDump(d dump) []domain.Entry {
	entries := make([]domain.Entry, 0, len(d.Entries))
	for _, e := range d.Entries {
		if e.ID == "" {
			continue
		}
		entries = append(entries, domain.Entry{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Title:     e.Title,
			URL:       e.WebpageURL,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries
}

// FetchItem downloads a single item and reports where the payload landed.
func (a *Adapter) FetchItem(ctx context.Context, url string) (*extractor.ItemInfo, error) {
	template := filepath.Join(a.cfg.OutputDir, "%(uploader)s_%(upload_date)s_%(id)s.%(ext)s")

	args := []string{
		"--dump-single-json",
		"--no-simulate",
		"--format", a.cfg.Quality,
		"--output", template,
		"--user-agent", userAgent,
	}
	args = a.appendGeoArgs(args)
	args = append(args, url)

	out, err := a.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var d dump
	if err := json.Unmarshal(out, &d); err != nil {
		return nil, fmt.Errorf("unable to extract item metadata: %w", err)
	}

	info := &extractor.ItemInfo{
		ID:        d.ID,
		Timestamp: d.Timestamp,
		Title:     d.Title,
		Uploader:  d.Uploader,
		URL:       d.WebpageURL,
		Likes:     d.LikeCount,
		Views:     d.ViewCount,
	}
	if info.URL == "" {
		info.URL = url
	}
	if len(d.Downloads) > 0 {
		info.FilePath = d.Downloads[0].Filepath
	}
	return info, nil
}

func (a *Adapter) appendGeoArgs(args []string) []string {
	if !a.cfg.GeoBypass {
		return args
	}
	args = append(args, "--xff", "default")
	if a.cfg.GeoBypassCountry != "" {
		args = append(args, "--xff", a.cfg.GeoBypassCountry)
	}
	return args
}

func (a *Adapter) run(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.cfg.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out: %w", a.cfg.Binary, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s: %s", a.cfg.Binary, msg)
	}
	return stdout.Bytes(), nil
}
