// Package ytdlp drives the yt-dlp binary to resolve and download audio tracks.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"playlist-downloader/pkg/models"
)

const (
	// probeTimeout bounds metadata-only invocations of the tool
	probeTimeout = 30 * time.Second

	// progressInterval throttles progress reporting for smooth streaming
	progressInterval = 500 * time.Millisecond

	// progressDeltaPct reports immediately when progress jumps this much
	progressDeltaPct = 5.0

	// errorTailLines of tool stderr are preserved in error messages
	errorTailLines = 5
)

// fallbackSites is returned when the tool cannot enumerate its extractors
var fallbackSites = []string{"youtube", "soundcloud", "bandcamp", "vimeo", "dailymotion", "mixcloud"}

// TrackInfo describes the media a target resolves to
type TrackInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	WebpageURL string  `json:"webpage_url"`
	Duration   float64 `json:"duration"`
}

// Request describes a single audio download
type Request struct {
	// Target is a direct URL or a free-text search phrase
	Target string

	// Filename is the desired output name without extension, already cleaned
	Filename string
}

// Result reports where a finished download landed
type Result struct {
	FilePath string
	FileSize int64
}

// Client runs the yt-dlp binary for media resolution and audio downloads
type Client struct {
	binPath     string
	downloadDir string
	logger      *slog.Logger

	sitesOnce sync.Once
	sites     []string
}

// NewClient creates a client that downloads into downloadDir using the
// binary at binPath.
func NewClient(binPath, downloadDir string) *Client {
	return &Client{
		binPath:     binPath,
		downloadDir: downloadDir,
		logger:      slog.Default(),
	}
}

// resolveTarget turns a search phrase into a single-result search target.
// Direct URLs pass through unchanged.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "ytsearch1:" + target
}

// Probe resolves a target to track metadata without downloading. It returns
// models.NoResultsFoundError when the target resolves to nothing.
func (c *Client) Probe(ctx context.Context, target string) (*TrackInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binPath, "-j", "--no-playlist", "--no-warnings", resolveTarget(target))

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, &models.ExternalToolError{Message: "metadata probe timed out", Err: ctx.Err()}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &models.ExternalToolError{
				Message:  stderrTail(string(exitErr.Stderr)),
				ExitCode: exitErr.ExitCode(),
				Err:      err,
			}
		}
		return nil, &models.ExternalToolError{Message: err.Error(), Err: err}
	}

	// With search targets the tool exits zero and prints nothing when there
	// are no matches
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var info TrackInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			continue
		}
		return &info, nil
	}

	return nil, &models.NoResultsFoundError{Query: target}
}

// Download fetches the target as mp3 into the download directory, reporting
// throttled progress through onProgress. Existing files with the same name
// are overwritten.
func (c *Client) Download(ctx context.Context, req Request, onProgress func(Progress)) (*Result, error) {
	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return nil, &models.FilesystemError{Path: c.downloadDir, Err: err}
	}

	outputTemplate := filepath.Join(c.downloadDir, req.Filename+".%(ext)s")
	args := []string{
		"--newline",
		"--no-playlist",
		"--no-warnings",
		"--force-overwrites",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"-o", outputTemplate,
		resolveTarget(req.Target),
	}

	cmd := exec.CommandContext(ctx, c.binPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &models.ExternalToolError{Message: "failed to create stdout pipe", Err: err}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &models.ExternalToolError{Message: "failed to create stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &models.ExternalToolError{Message: "failed to start " + c.binPath, Err: err}
	}

	var (
		extractDest  string
		downloadDest string
		stderrLines  []string
	)

	lastPercent := -1.0
	var lastReport time.Time

	report := func(p Progress) {
		if onProgress == nil {
			return
		}
		if p.Percent < lastPercent {
			// The tool restarts its counter between fragments
			return
		}

		now := time.Now()
		if lastPercent >= 0 && p.Percent < 100 &&
			now.Sub(lastReport) < progressInterval && p.Percent-lastPercent < progressDeltaPct {
			return
		}

		lastPercent = p.Percent
		lastReport = now
		onProgress(p)
	}

	var g errgroup.Group

	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()

			if path, extracted, ok := parseDestination(line); ok {
				if extracted {
					extractDest = path
				} else {
					downloadDest = path
				}
				continue
			}

			if p, ok := parseProgressLine(line); ok {
				report(p)
			}
		}
		return nil
	})

	g.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			stderrLines = append(stderrLines, line)
			if len(stderrLines) > errorTailLines {
				stderrLines = stderrLines[1:]
			}
		}
		return nil
	})

	// Pipes must be drained before Wait
	_ = g.Wait()

	if err := cmd.Wait(); err != nil {
		c.cleanupTempFiles(req.Filename)

		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &models.ExternalToolError{Message: "download timed out", Err: ctx.Err()}
			}
			return nil, &models.ExternalToolError{Message: "download canceled", Err: ctx.Err()}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &models.ExternalToolError{
				Message:  strings.Join(stderrLines, "\n"),
				ExitCode: exitErr.ExitCode(),
				Err:      err,
			}
		}
		return nil, &models.ExternalToolError{Message: err.Error(), Err: err}
	}

	finalPath, err := c.locateOutput(extractDest, downloadDest, req.Filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, &models.FilesystemError{Path: finalPath, Err: err}
	}

	return &Result{FilePath: finalPath, FileSize: info.Size()}, nil
}

// locateOutput finds the finished file. Destinations announced by the tool
// win; otherwise the expected mp3 path is tried, then the newest mp3 in the
// download directory.
func (c *Client) locateOutput(extractDest, downloadDest, filename string) (string, error) {
	expected := filepath.Join(c.downloadDir, filename+".mp3")

	for _, candidate := range []string{extractDest, expected, downloadDest} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	newest, err := c.newestMP3()
	if err != nil {
		return "", &models.FilesystemError{Path: expected, Err: err}
	}

	return newest, nil
}

// newestMP3 returns the most recently modified mp3 file in the download
// directory.
func (c *Client) newestMP3() (string, error) {
	entries, err := os.ReadDir(c.downloadDir)
	if err != nil {
		return "", err
	}

	var (
		newest  string
		modTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp3") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if newest == "" || info.ModTime().After(modTime) {
			newest = filepath.Join(c.downloadDir, entry.Name())
			modTime = info.ModTime()
		}
	}

	if newest == "" {
		return "", os.ErrNotExist
	}

	return newest, nil
}

// cleanupTempFiles removes partial artifacts left behind by a failed run
func (c *Client) cleanupTempFiles(filename string) {
	entries, err := os.ReadDir(c.downloadDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, filename) {
			continue
		}

		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.HasSuffix(name, ".tmp") {
			path := filepath.Join(c.downloadDir, name)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				c.logger.Debug("Failed to remove temp file", "path", path, "error", err)
			}
		}
	}
}

// SupportedSites reports which well-known sites the installed tool can fetch
// from. The result is cached after the first call; when the tool cannot be
// queried a static list is returned.
func (c *Client) SupportedSites(ctx context.Context) []string {
	c.sitesOnce.Do(func() {
		c.sites = c.listSites(ctx)
	})
	return c.sites
}

func (c *Client) listSites(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, c.binPath, "--list-extractors").Output()
	if err != nil {
		c.logger.Debug("Falling back to static supported site list", "error", err)
		return fallbackSites
	}

	known := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		name := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[:i]
		}
		if name != "" {
			known[name] = true
		}
	}

	var sites []string
	for _, site := range fallbackSites {
		if known[site] {
			sites = append(sites, site)
		}
	}

	if len(sites) == 0 {
		return fallbackSites
	}

	return sites
}

// stderrTail keeps the last few lines of tool output for error messages
func stderrTail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > errorTailLines {
		lines = lines[len(lines)-errorTailLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
