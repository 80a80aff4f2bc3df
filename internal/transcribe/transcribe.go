// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcribe sends annotated pages to the vision backend on a
// bounded worker pool and collects one Outcome per page in page order.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/pdfvision/internal/logging"
	"github.com/pdiddy/pdfvision/internal/vision"
)

// Page is one annotated page image ready for transcription.
type Page struct {
	Index    int // 0-based
	Image    []byte
	MIMEType string
	Labels   []string // crop names drawn on the page
}

// Orchestrator fans pages out to a vision.Backend.
type Orchestrator struct {
	Backend vision.Backend
	Prompts vision.Prompts
	Workers int
	Logger  logging.Logger
}

type task struct {
	ctx     context.Context
	idx     int
	page    Page
	o       *Orchestrator
	results []Outcome
	wg      *sync.WaitGroup
}

// Run transcribes every page exactly once. At most Workers calls are in
// flight. The result has one Outcome per input, in input order; per-page
// failures are recorded in the Outcome and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, pages []Page) ([]Outcome, error) {
	if o.Backend == nil {
		return nil, errors.New("transcribe: no vision backend")
	}
	workers := o.Workers
	if workers <= 0 {
		workers = 1
	}
	results := make([]Outcome, len(pages))
	if len(pages) == 0 {
		return results, nil
	}

	pool, err := ants.NewPoolWithFunc(workers, func(arg any) {
		t, ok := arg.(*task)
		if !ok {
			panic("transcribe pool args type error")
		}
		defer t.wg.Done()
		t.results[t.idx] = t.o.transcribe(t.ctx, t.page)
	})
	if err != nil {
		return nil, fmt.Errorf("create transcription pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for idx, page := range pages {
		wg.Add(1)
		t := &task{ctx: ctx, idx: idx, page: page, o: o, results: results, wg: &wg}
		if err := pool.Invoke(t); err != nil {
			wg.Done()
			results[idx] = failed(page.Index, CallFailed, fmt.Errorf("submit page %d: %w", page.Index, err))
		}
	}
	wg.Wait()
	return results, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, page Page) Outcome {
	log := logging.OrDefault(o.Logger)

	prompt, err := vision.BuildUserPrompt(o.Prompts, page.Labels)
	if err != nil {
		return failed(page.Index, CallFailed, err)
	}
	mime := page.MIMEType
	if mime == "" {
		mime = "image/png"
	}

	log.Debugf("transcribing page %d (%d regions)", page.Index, len(page.Labels))
	content, err := o.Backend.Transcribe(ctx, vision.Request{
		Image:        page.Image,
		MIMEType:     mime,
		SystemPrompt: o.Prompts.Role,
		UserPrompt:   prompt,
	})
	switch {
	case errors.Is(err, vision.ErrEmptyResponse):
		log.Warnf("page %d: empty response from model", page.Index)
		return failed(page.Index, EmptyResponse, err)
	case err != nil:
		log.Warnf("page %d: %v", page.Index, err)
		return failed(page.Index, CallFailed, err)
	}
	return Outcome{Page: page.Index, Content: StripFences(content)}
}

func failed(page int, kind FailureKind, err error) Outcome {
	return Outcome{Page: page, Failure: &Failure{Kind: kind, Reason: err.Error()}}
}
