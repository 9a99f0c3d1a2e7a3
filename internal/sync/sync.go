package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yljiang/blogsync/internal/article"
	"github.com/yljiang/blogsync/internal/debuglog"
	"github.com/yljiang/blogsync/internal/images"
	"github.com/yljiang/blogsync/internal/markdown"
	"github.com/yljiang/blogsync/internal/notion"
	"github.com/yljiang/blogsync/internal/syncstate"
)

// ErrEmptyBody marks a page whose block tree converted to nothing; such
// pages are skipped, never written as empty files.
var ErrEmptyBody = errors.New("page converted to empty body")

// Source is the remote search capability the synchronizer consumes.
// Satisfied by *notion.Client.
type Source interface {
	SearchPages(ctx context.Context) ([]notion.Page, error)
}

// Result tallies one sync run.
type Result struct {
	New     int
	Updated int
	Skipped int
	Deleted int
	Total   int
}

// Changed reports whether the run touched any local file.
func (r *Result) Changed() bool {
	return r.New+r.Updated+r.Deleted > 0
}

// Synchronizer reconciles the remote database with the local article
// directory. Runs are strictly sequential; concurrent invocations are not
// safe and must be serialized by the caller.
type Synchronizer struct {
	source     Source
	converter  *markdown.Converter
	localizer  *images.Localizer
	articles   *article.Repository
	states     *syncstate.Store
	databaseID string
	now        func() time.Time
}

func New(source Source, converter *markdown.Converter, localizer *images.Localizer, articles *article.Repository, states *syncstate.Store, databaseID string) *Synchronizer {
	return &Synchronizer{
		source:     source,
		converter:  converter,
		localizer:  localizer,
		articles:   articles,
		states:     states,
		databaseID: notion.NormalizeDatabaseID(databaseID),
		now:        time.Now,
	}
}

// Run performs one sync pass. With force set, every document is processed
// regardless of the last sync cutoff, but existing article ids are still
// reused so permalinks survive.
//
// Only the state load and the top-level search may abort the run; every
// per-document failure is logged, counted as skipped, and isolated.
func (s *Synchronizer) Run(ctx context.Context, force bool) (*Result, error) {
	state, err := s.states.Load()
	if err != nil {
		return nil, err
	}

	pages, err := s.source.SearchPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching remote pages: %w", err)
	}

	docs := s.filterToDatabase(pages)
	debuglog.Infof("sync run: %d pages found, %d in database %s, last sync %s",
		len(pages), len(docs), s.databaseID, state.LastSyncTime.Format(time.RFC3339))

	cutoff := state.LastSyncTime
	if force {
		cutoff = time.Unix(0, 0).UTC()
	}

	res := &Result{Total: len(docs)}
	seen := make(map[string]bool, len(docs))

	for i := range docs {
		page := &docs[i]
		seen[page.ID] = true

		log := debuglog.WithFields(map[string]interface{}{
			"page":  page.ID,
			"title": page.Title(),
		})

		existingID := state.Article(page.ID)
		if existingID != "" && !page.LastEditedTime.After(cutoff) {
			log.Debugf("unchanged, skipping")
			res.Skipped++
			continue
		}

		articleID, err := s.processPage(ctx, page, existingID)
		if err != nil {
			log.Errorf("processing failed: %v", err)
			res.Skipped++
			continue
		}

		state.SyncedPages[page.ID] = articleID
		if existingID == "" {
			log.Infof("created %s", articleID)
			res.New++
		} else {
			log.Infof("updated %s", articleID)
			res.Updated++
		}
	}

	s.reconcileDeletions(state, seen, len(docs), res)

	// An all-skip run keeps the previous cutoff exactly, so an aborted or
	// empty run can be retried from the same point.
	if res.Changed() {
		state.LastSyncTime = s.now().UTC()
		if err := s.states.Save(state); err != nil {
			return res, fmt.Errorf("saving sync state: %w", err)
		}
	}

	debuglog.Infof("sync run done: new=%d updated=%d skipped=%d deleted=%d total=%d",
		res.New, res.Updated, res.Skipped, res.Deleted, res.Total)
	return res, nil
}

// processPage converts, localizes and writes one document, returning the
// article id it was stored under.
func (s *Synchronizer) processPage(ctx context.Context, page *notion.Page, existingID string) (string, error) {
	body, err := s.converter.PageToMarkdown(ctx, page.ID)
	if err != nil {
		return "", fmt.Errorf("converting page: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}

	articleID := existingID
	if articleID == "" {
		articleID = article.NewID()
	}

	body = s.localizer.LocalizeAll(ctx, body, articleID)

	a := &article.Article{
		ID:       articleID,
		Title:    page.Title(),
		Date:     article.FormatDate(page.PublishedAt()),
		ReadTime: article.ReadTime(body),
		Category: page.Category(),
		Tags:     page.Tags(),
		Body:     body,
	}
	if err := s.articles.Save(a); err != nil {
		return "", err
	}
	return articleID, nil
}

// reconcileDeletions removes local articles whose remote page vanished.
// An empty remote result is treated as a possible transient or auth
// failure and never triggers deletion of anything.
func (s *Synchronizer) reconcileDeletions(state *syncstate.State, seen map[string]bool, remoteCount int, res *Result) {
	if remoteCount == 0 {
		if len(state.SyncedPages) > 0 {
			debuglog.Warnf("remote returned no pages; keeping all %d local articles", len(state.SyncedPages))
		}
		return
	}

	for pageID, articleID := range state.SyncedPages {
		if seen[pageID] {
			continue
		}
		if err := s.articles.Delete(articleID); err != nil {
			debuglog.Errorf("deleting article %s for removed page %s: %v", articleID, pageID, err)
			continue
		}
		delete(state.SyncedPages, pageID)
		res.Deleted++
		debuglog.Infof("deleted %s (remote page %s gone)", articleID, pageID)
	}
}

// filterToDatabase keeps pages belonging to the configured collection,
// dropping archived ones.
func (s *Synchronizer) filterToDatabase(pages []notion.Page) []notion.Page {
	var docs []notion.Page
	for _, p := range pages {
		if p.Archived {
			continue
		}
		if p.InDatabase(s.databaseID) {
			docs = append(docs, p)
		}
	}
	return docs
}
