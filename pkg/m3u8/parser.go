// Package m3u8 provides streaming M3U8 playlist parsing with bounded memory.
// Items are classified into categories as they complete and handed to the
// caller in fixed-size batches, so arbitrarily large playlists never need to
// be held in memory at once.
package m3u8

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/playsync/playsync/internal/models"
)

// Default parser settings.
const (
	// DefaultBatchSize is the number of completed items per batch.
	DefaultBatchSize = 2000

	// DefaultProgressPeriod throttles progress callbacks.
	DefaultProgressPeriod = 100 * time.Millisecond

	// maxLineSize bounds a single playlist line (some URLs are very long).
	maxLineSize = 1024 * 1024
)

// Line markers.
const (
	headerMarker   = "#EXTM3U"
	metadataMarker = "#EXTINF:"
	commentMarker  = "#"
)

// BatchFunc receives each completed item batch. The parser waits for it to
// return before reading further input; this is the backpressure contract
// that bounds memory to O(batch size) regardless of source size.
type BatchFunc func(ctx context.Context, items []models.PlaylistItem) error

// ProgressFunc receives running stats, throttled to the progress period,
// plus exactly one final call at end of stream.
type ProgressFunc func(stats models.Stats)

// Parser decodes M3U8 text into classified item batches plus running stats.
// It is pure: its only side effects are the callbacks it is given.
type Parser struct {
	// OnBatch is called for each full batch and once for the final
	// partial batch. Required.
	OnBatch BatchFunc

	// OnProgress is called with running stats, throttled. Optional.
	OnProgress ProgressFunc

	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int

	// ProgressPeriod overrides DefaultProgressPeriod when positive.
	ProgressPeriod time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// Matches key="value" attribute pairs on a metadata line.
var attrRegex = regexp.MustCompile(`([a-zA-Z0-9_-]+)="([^"]*)"`)

// parseState carries the per-pass state shared by both entry points.
type parseState struct {
	ctx          context.Context
	pending      *models.PlaylistItem
	hasTitle     bool
	batch        []models.PlaylistItem
	stats        models.Stats
	lastProgress time.Time
}

// Parse decodes a byte stream incrementally, splitting on newlines and
// preserving a partial trailing line across reads.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (models.Stats, error) {
	if p.OnBatch == nil {
		return models.Stats{}, fmt.Errorf("OnBatch callback is required")
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	state := p.newState(ctx)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return state.stats, err
		}
		if err := p.handleLine(state, scanner.Text()); err != nil {
			return state.stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return state.stats, fmt.Errorf("scanning playlist: %w", err)
	}

	return p.finish(state)
}

// ParseText decodes an already materialized playlist. It routes every line
// through the same logic as Parse, so both entry points agree on any input.
func (p *Parser) ParseText(ctx context.Context, text string) (models.Stats, error) {
	if p.OnBatch == nil {
		return models.Stats{}, fmt.Errorf("OnBatch callback is required")
	}

	state := p.newState(ctx)
	for _, line := range strings.Split(text, "\n") {
		if err := ctx.Err(); err != nil {
			return state.stats, err
		}
		if err := p.handleLine(state, line); err != nil {
			return state.stats, err
		}
	}

	return p.finish(state)
}

// ParseCompressed parses a potentially compressed playlist stream,
// auto-detecting gzip, bzip2, and xz by magic bytes.
func (p *Parser) ParseCompressed(ctx context.Context, r io.Reader) (models.Stats, error) {
	br := bufio.NewReader(r)

	header, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return models.Stats{}, fmt.Errorf("peeking header: %w", err)
	}

	var reader io.Reader = br
	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return models.Stats{}, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr

	case len(header) >= 3 && header[0] == 'B' && header[1] == 'Z' && header[2] == 'h':
		reader = bzip2.NewReader(br)

	case len(header) >= 6 && header[0] == 0xfd && header[1] == '7' && header[2] == 'z' && header[3] == 'X' && header[4] == 'Z' && header[5] == 0x00:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return models.Stats{}, fmt.Errorf("creating xz reader: %w", err)
		}
		reader = xzr
	}

	return p.Parse(ctx, reader)
}

func (p *Parser) newState(ctx context.Context) *parseState {
	return &parseState{
		ctx:   ctx,
		batch: make([]models.PlaylistItem, 0, p.batchSize()),
	}
}

func (p *Parser) batchSize() int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return DefaultBatchSize
}

func (p *Parser) progressPeriod() time.Duration {
	if p.ProgressPeriod > 0 {
		return p.ProgressPeriod
	}
	return DefaultProgressPeriod
}

func (p *Parser) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// handleLine advances the per-line state machine.
func (p *Parser) handleLine(state *parseState, raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, metadataMarker) {
		p.mergeMetadata(state, line)
		return nil
	}

	// Header and every other directive are ignored.
	if strings.HasPrefix(line, commentMarker) {
		return nil
	}

	// A URL completes the pending item, but only when a title was
	// extracted; anything else is silently dropped.
	if state.pending != nil && state.hasTitle {
		item := *state.pending
		item.URL = line
		item.Category = models.Categorize(line)
		if item.Group == "" {
			item.Group = models.DefaultGroup
		}

		state.stats.Add(item.Category)
		state.batch = append(state.batch, item)

		if err := p.reportProgress(state, false); err != nil {
			return err
		}
		if len(state.batch) >= p.batchSize() {
			if err := p.flush(state); err != nil {
				return err
			}
		}
	}

	state.pending = nil
	state.hasTitle = false
	return nil
}

// mergeMetadata extracts attributes from a metadata line into the pending
// item. Repeated metadata lines merge; later non-empty values win.
func (p *Parser) mergeMetadata(state *parseState, line string) {
	if state.pending == nil {
		state.pending = &models.PlaylistItem{}
	}

	rest := strings.TrimPrefix(line, metadataMarker)

	if title, ok := extractTitle(rest); ok {
		state.pending.Title = title
		state.hasTitle = true
	}

	for _, match := range attrRegex.FindAllStringSubmatch(rest, -1) {
		key := strings.ToLower(match[1])
		value := match[2]
		switch {
		case strings.Contains(key, "logo"):
			state.pending.Logo = value
		case strings.Contains(key, "group") && strings.Contains(key, "title"):
			state.pending.Group = value
		case strings.Contains(key, "id"):
			state.pending.ExtID = value
		}
	}
}

// extractTitle returns the trimmed text after the last comma outside quotes.
func extractTitle(s string) (string, bool) {
	inQuotes := false
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '"' {
			inQuotes = !inQuotes
		}
		if s[i] == ',' && !inQuotes {
			return strings.TrimSpace(s[i+1:]), true
		}
	}
	return "", false
}

// flush hands the current batch to the sink and waits for it to complete
// before parsing resumes.
func (p *Parser) flush(state *parseState) error {
	if len(state.batch) == 0 {
		return nil
	}

	batch := state.batch
	state.batch = make([]models.PlaylistItem, 0, p.batchSize())

	if err := p.OnBatch(state.ctx, batch); err != nil {
		return fmt.Errorf("batch sink: %w", err)
	}
	return state.ctx.Err()
}

// reportProgress fires the progress callback, throttled unless final.
func (p *Parser) reportProgress(state *parseState, final bool) error {
	if p.OnProgress == nil {
		return nil
	}
	now := p.clock()
	if !final && now.Sub(state.lastProgress) < p.progressPeriod() {
		return nil
	}
	state.lastProgress = now
	p.OnProgress(state.stats)
	return nil
}

// finish flushes the trailing batch and fires the final progress report.
func (p *Parser) finish(state *parseState) (models.Stats, error) {
	if err := p.flush(state); err != nil {
		return state.stats, err
	}
	if err := p.reportProgress(state, true); err != nil {
		return state.stats, err
	}
	return state.stats, nil
}
