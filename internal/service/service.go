// Package service runs uploads through the analysis engine, holds the
// result as a draft until the user picks words, then stores the final report.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/internal/llm"
	"github.com/cognicore/chatreport/pkg/chatreport"
	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
	"github.com/cognicore/chatreport/pkg/chatreport/report"
	"github.com/cognicore/chatreport/pkg/chatreport/store"
)

// Defaults for Options.
const (
	DefaultCandidateWords = 100
	DefaultAutoSelect     = 10
	DefaultDraftTTL       = time.Hour
)

// Options configures a Service.
type Options struct {
	Engine    *chatreport.Engine
	Store     store.Store
	Commenter llm.Commenter

	// CandidateWords is how many top words a draft offers for selection.
	CandidateWords int
	// AutoSelect is how many top words an auto-selected upload keeps.
	AutoSelect int
	// DraftTTL bounds how long an unfinalized draft is kept.
	DraftTTL time.Duration
}

// Service is safe for concurrent use.
type Service struct {
	engine    *chatreport.Engine
	store     store.Store
	commenter llm.Commenter
	ids       *report.IDSource

	candidates int
	autoSelect int
	ttl        time.Duration
	now        func() time.Time

	mu     sync.Mutex
	drafts map[string]draft
}

type draft struct {
	report  report.Report
	created time.Time
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		engine:     opts.Engine,
		store:      opts.Store,
		commenter:  opts.Commenter,
		ids:        report.NewIDSource(),
		candidates: opts.CandidateWords,
		autoSelect: opts.AutoSelect,
		ttl:        opts.DraftTTL,
		now:        time.Now,
		drafts:     make(map[string]draft),
	}
	if s.candidates <= 0 {
		s.candidates = DefaultCandidateWords
	}
	if s.autoSelect <= 0 {
		s.autoSelect = DefaultAutoSelect
	}
	if s.ttl <= 0 {
		s.ttl = DefaultDraftTTL
	}
	return s
}

// Upload is the outcome of analysing one export.
type Upload struct {
	ReportID       string        `json:"report_id"`
	ChatName       string        `json:"chat_name"`
	MessageCount   int           `json:"message_count"`
	AvailableWords []report.Word `json:"available_words,omitempty"`
	// Finalized is set when the upload was auto-selected and stored.
	Finalized bool `json:"finalized"`
}

// Analyze decodes an export from r and analyses it. Without autoSelect the
// report is kept as a draft for Finalize; with it the top words are chosen
// and the report is stored immediately.
func (s *Service) Analyze(ctx context.Context, r io.Reader, autoSelect bool) (Upload, error) {
	chat, err := corpus.Decode(r)
	if err != nil {
		return Upload{}, err
	}
	res, err := s.engine.Analyze(ctx, chat)
	if err != nil {
		return Upload{}, err
	}

	id := s.ids.New()
	rep := res.Report
	up := Upload{ReportID: id, ChatName: rep.ChatName, MessageCount: rep.MessageCount}

	if autoSelect {
		words := make([]string, 0, s.autoSelect)
		for _, w := range head(rep.TopWords, s.autoSelect) {
			words = append(words, w.Word)
		}
		if _, err := s.finalize(ctx, id, rep, words); err != nil {
			return Upload{}, err
		}
		up.Finalized = true
		return up, nil
	}

	s.mu.Lock()
	s.pruneLocked()
	s.drafts[id] = draft{report: rep, created: s.now()}
	s.mu.Unlock()

	up.AvailableWords = head(rep.TopWords, s.candidates)
	log.Info().Str("report", id).Str("chat", rep.ChatName).Msg("draft ready")
	return up, nil
}

// Finalize turns draft id into a stored report keeping the selected words.
func (s *Service) Finalize(ctx context.Context, id string, words []string) (store.Record, error) {
	if id == "" || len(words) == 0 {
		return store.Record{}, fmt.Errorf("%w: report id and selected words are required", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	s.pruneLocked()
	d, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok {
		return store.Record{}, fmt.Errorf("draft %s: %w", id, internalerr.ErrNotFound)
	}

	rec, err := s.finalize(ctx, id, d.report, words)
	if err != nil {
		return store.Record{}, err
	}

	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
	return rec, nil
}

// Save stores rep directly, keeping its top n words. It backs the CLI.
func (s *Service) Save(ctx context.Context, rep report.Report, n int) (store.Record, error) {
	words := make([]string, 0, n)
	for _, w := range head(rep.TopWords, n) {
		words = append(words, w.Word)
	}
	return s.finalize(ctx, s.ids.New(), rep, words)
}

func (s *Service) finalize(ctx context.Context, id string, rep report.Report, selected []string) (store.Record, error) {
	byWord := make(map[string]report.Word, len(rep.TopWords))
	for _, w := range rep.TopWords {
		byWord[w.Word] = w
	}

	words := make([]report.Word, 0, len(selected))
	for _, name := range selected {
		w, ok := byWord[name]
		if !ok {
			w = report.Word{Word: name, Contributors: []report.Contributor{}, Samples: []string{}}
		}
		words = append(words, w)
	}

	comments := s.commenter.Comments(ctx, words)
	for i := range words {
		words[i].Comment = comments[words[i].Word]
	}

	rec := store.Record{
		ID:               id,
		ChatName:         rep.ChatName,
		MessageCount:     rep.MessageCount,
		Words:            words,
		Rankings:         rep.Rankings,
		HourDistribution: rep.HourDistribution,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.SaveReport(ctx, rec); err != nil {
		return store.Record{}, fmt.Errorf("save report %s: %w", id, err)
	}
	log.Info().Str("report", id).Int("words", len(words)).Msg("report finalized")
	return rec, nil
}

// List returns one page of stored reports.
func (s *Service) List(ctx context.Context, opts store.ListOptions) (store.Page, error) {
	return s.store.ListReports(ctx, opts)
}

// Get returns a stored report.
func (s *Service) Get(ctx context.Context, id string) (store.Record, error) {
	return s.store.GetReport(ctx, id)
}

// Delete removes a stored report.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteReport(ctx, id)
}

// Drafts returns how many drafts are pending.
func (s *Service) Drafts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *Service) pruneLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, d := range s.drafts {
		if d.created.Before(cutoff) {
			delete(s.drafts, id)
			log.Debug().Str("report", id).Msg("draft expired")
		}
	}
}

func head(words []report.Word, n int) []report.Word {
	if len(words) > n {
		return words[:n]
	}
	return words
}
