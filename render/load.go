package render

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hesusruiz/paperview/bibtex"
	"github.com/hesusruiz/paperview/citation"
	"github.com/hesusruiz/paperview/normalize"
	"github.com/hesusruiz/paperview/page"
	"github.com/hesusruiz/paperview/source"
)

// LoadOptions describes where the paper and its bibliography come from.
type LoadOptions struct {
	Source       source.Fetcher
	Paper        string
	Bibliography string
	Mode         Mode

	// Timeout bounds the fetches. Zero means no limit.
	Timeout time.Duration
}

// Load fetches the paper and its bibliography concurrently and renders the
// paper into p. A bibliography that cannot be loaded is treated as empty.
// When the paper cannot be fetched or rendered, p is put in the error state
// and the error is returned.
func (s *Selector) Load(ctx context.Context, p *page.Page, opts LoadOptions) (*Result, error) {
	p.SetStatus(StatusLoading)

	raw, entries, err := s.fetch(ctx, opts)
	if err != nil {
		s.Metrics.failure()
		p.ShowError(err)
		return nil, err
	}

	res, err := s.Render(ctx, p, Request{
		Body:    normalize.ExtractBody(raw),
		Entries: entries,
		Mode:    opts.Mode,
	})
	if err != nil {
		s.log().Errorw("failed to render paper", "name", opts.Paper, "error", err)
		p.ShowError(err)
		return nil, err
	}

	return res, nil
}

// LoadReferences fetches the paper and its bibliography and resolves the
// references the page of the paper lists, without rendering it.
func (s *Selector) LoadReferences(ctx context.Context, opts LoadOptions) ([]citation.Resolved, error) {
	raw, entries, err := s.fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return References(entries, citation.Collect(normalize.ExtractBody(raw))), nil
}

// fetch reads the paper and the bibliography concurrently. Only the paper is
// required.
func (s *Selector) fetch(ctx context.Context, opts LoadOptions) (raw string, entries []bibtex.Entry, err error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if len(opts.Bibliography) == 0 {
			return nil
		}
		bib, err := opts.Source.Fetch(gctx, opts.Bibliography)
		if err != nil {
			if errors.Is(err, source.ErrNotFound) {
				s.log().Infow("no bibliography", "name", opts.Bibliography, "error", err)
			} else {
				s.log().Warnw("failed to load bibliography", "name", opts.Bibliography, "error", err)
			}
			return nil
		}
		entries = bibtex.Parse(bib)
		return nil
	})

	g.Go(func() error {
		var err error
		raw, err = opts.Source.Fetch(gctx, opts.Paper)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log().Errorw("failed to load paper", "name", opts.Paper, "error", err)
		return "", nil, err
	}
	return raw, entries, nil
}
