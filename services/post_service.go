package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"blogread/dto"
	"blogread/eventbus"
	"blogread/events"
	"blogread/logger"
	"blogread/models"
	"blogread/repositories"
)

// ErrNotFound is returned when the requested post, slug or id does not exist.
var ErrNotFound = errors.New("post not found")

// ErrSourceUnavailable is returned when the post record store cannot be
// reached. It is always surfaced, never swallowed.
var ErrSourceUnavailable = errors.New("post record store unavailable")

// maxCascadeConcurrency bounds the refresh fan-out of one update cascade.
const maxCascadeConcurrency = 8

// CascadeWarning reports one refresh step of an update cascade that failed.
// Warnings never fail the update itself; the caches they cover stay stale
// until the next refresh.
type CascadeWarning struct {
	Kind string // "projection", "category", "tag", "author"
	ID   int64
	Err  error
}

// UpdateResult is the caller-visible outcome of ApplyUpdate: the re-hydrated
// post plus any cascade warnings.
type UpdateResult struct {
	Post     *dto.PostDTO     `json:"post"`
	Warnings []CascadeWarning `json:"-"`
}

// PostService composes full post views out of the independent entity stores
// and propagates post writes into cascading cache refreshes. It holds no
// state of its own: every hydrated view is built per request and discarded,
// and any staleness lives in the stores' caches, not here.
type PostService struct {
	posts      PostStore
	metas      PostMetaStore
	categories CategoryStore
	tags       TagStore
	authors    AuthorStore
	bus        eventbus.EventBus

	// SearchCorpusGuard logs a warning when a search scan loads more posts
	// than this. The linear scan is only acceptable at small corpus scale.
	// Zero disables the guard.
	SearchCorpusGuard int
}

func NewPostService(posts PostStore, metas PostMetaStore, categories CategoryStore, tags TagStore, authors AuthorStore, bus eventbus.EventBus) *PostService {
	if bus == nil {
		bus = eventbus.NoopBus{}
	}
	return &PostService{
		posts:      posts,
		metas:      metas,
		categories: categories,
		tags:       tags,
		authors:    authors,
		bus:        bus,
	}
}

// GetByID hydrates a single post: the record plus the resolved category, tag
// and author views. A relation id that no longer resolves is omitted from the
// hydrated lists with a warning; a partially hydrated post is more useful
// than a failed read.
func (s *PostService) GetByID(ctx context.Context, id int64) (*dto.PostDTO, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: load post %d: %v", ErrSourceUnavailable, id, err)
	}

	d := dto.NewPostDTO(*p)

	d.Categories = make([]dto.CategoryDTO, 0, len(p.CategoryIDs))
	for _, cid := range p.CategoryIDs {
		cat, err := s.categories.GetByID(ctx, cid)
		if err != nil {
			logger.WarnWithFields("dangling category reference", logger.Fields{
				"post_id": id, "category_id": cid, "error": err.Error(),
			})
			continue
		}
		d.Categories = append(d.Categories, dto.NewCategoryDTO(*cat))
	}

	d.Tags = make([]dto.TagDTO, 0, len(p.TagIDs))
	for _, tid := range p.TagIDs {
		tag, err := s.tags.GetByID(ctx, tid)
		if err != nil {
			logger.WarnWithFields("dangling tag reference", logger.Fields{
				"post_id": id, "tag_id": tid, "error": err.Error(),
			})
			continue
		}
		d.Tags = append(d.Tags, dto.NewTagDTO(*tag))
	}

	if p.AuthorID != 0 {
		a, err := s.authors.GetByID(ctx, p.AuthorID)
		if err != nil {
			logger.WarnWithFields("dangling author reference", logger.Fields{
				"post_id": id, "author_id": p.AuthorID, "error": err.Error(),
			})
		} else {
			av := dto.NewAuthorDTO(*a)
			d.Author = &av
		}
	}

	return &d, nil
}

// GetBySlug resolves the slug through the projection store and hydrates.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*dto.PostDTO, error) {
	id, err := s.metas.IDBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("slug %q: %w", slug, ErrNotFound)
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ListIDs enumerates all post ids without hydrating anything.
func (s *PostService) ListIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.posts.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list ids: %v", ErrSourceUnavailable, err)
	}
	return ids, nil
}

// ListAll hydrates every post including its body. Only callers that
// genuinely need full content (the search scan) should use it; listings go
// through Page.
func (s *PostService) ListAll(ctx context.Context) ([]dto.PostDTO, error) {
	metas, err := s.metas.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostDTO, 0, len(metas))
	for _, m := range metas {
		d, err := s.GetByID(ctx, m.ID)
		if err != nil {
			// A projection can outlive its record briefly; skip rather than
			// fail the whole listing.
			if errors.Is(err, ErrNotFound) {
				logger.WarnWithFields("projection without record", logger.Fields{"post_id": m.ID})
				continue
			}
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// Page returns one page of post summaries in projection order. Only the
// requested page is hydrated; bodies are stripped.
func (s *PostService) Page(ctx context.Context, page, pageSize int) (dto.Pagination[dto.PostDTO], error) {
	metas, err := s.metas.All(ctx)
	if err != nil {
		return dto.Pagination[dto.PostDTO]{}, err
	}
	metaPage := dto.PageOf(page, pageSize, metas)

	return s.hydratePage(ctx, metaPage)
}

// PageByCategory pages the posts whose relation-id set contains categoryID.
// Filtering happens on raw projection ids before anything is hydrated.
func (s *PostService) PageByCategory(ctx context.Context, categoryID int64, page, pageSize int) (dto.Pagination[dto.PostDTO], error) {
	return s.pageFiltered(ctx, page, pageSize, func(m models.PostMeta) bool { return m.HasCategory(categoryID) })
}

// PageByTag pages the posts whose relation-id set contains tagID.
func (s *PostService) PageByTag(ctx context.Context, tagID int64, page, pageSize int) (dto.Pagination[dto.PostDTO], error) {
	return s.pageFiltered(ctx, page, pageSize, func(m models.PostMeta) bool { return m.HasTag(tagID) })
}

// Search pages the posts whose plain-text body contains term,
// case-insensitively. An empty term matches every post. This is a linear
// scan over every body: O(posts × body length) per call, acceptable only at
// small corpus scale.
func (s *PostService) Search(ctx context.Context, term string, page, pageSize int) (dto.Pagination[dto.PostDTO], error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return dto.Pagination[dto.PostDTO]{}, err
	}
	if s.SearchCorpusGuard > 0 && len(all) > s.SearchCorpusGuard {
		logger.WarnWithFields("search corpus exceeds linear-scan guard", logger.Fields{
			"corpus_size": len(all), "guard": s.SearchCorpusGuard,
		})
	}

	needle := strings.ToLower(term)
	matched := make([]dto.PostDTO, 0, len(all))
	for _, d := range all {
		if needle == "" || strings.Contains(strings.ToLower(d.Body), needle) {
			matched = append(matched, d.ClearContent())
		}
	}
	return dto.PageOf(page, pageSize, matched), nil
}

// ApplyUpdate propagates an already-applied upstream write: re-reads the
// record, refreshes the projection and every referenced entity's cached
// view, then returns the re-hydrated post.
//
// Steps are best-effort and independent: one failing refresh becomes a
// CascadeWarning and blocks nothing else. Only a record store failure is
// fatal. Re-running with no intervening write converges to the same cache
// state, since every refresh is a pull-and-overwrite.
func (s *PostService) ApplyUpdate(ctx context.Context, id int64) (*UpdateResult, error) {
	p, err := s.posts.ApplyPendingUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: apply update %d: %v", ErrSourceUnavailable, id, err)
	}

	var mu sync.Mutex
	var warnings []CascadeWarning
	warn := func(kind string, wid int64, err error) {
		mu.Lock()
		warnings = append(warnings, CascadeWarning{Kind: kind, ID: wid, Err: err})
		mu.Unlock()
		logger.WarnWithFields("cascade step failed", logger.Fields{
			"post_id": id, "kind": kind, "id": wid, "error": err.Error(),
		})
	}

	// Stale listings are degraded, not fatal.
	if err := s.metas.Refresh(ctx, p); err != nil {
		warn("projection", id, err)
	}

	// Entity refreshes are independent of each other; no ordering guarantee.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCascadeConcurrency)
	for _, cid := range p.CategoryIDs {
		cid := cid
		g.Go(func() error {
			if err := s.categories.Refresh(gctx, cid); err != nil {
				warn("category", cid, err)
			}
			return nil
		})
	}
	for _, tid := range p.TagIDs {
		tid := tid
		g.Go(func() error {
			if err := s.tags.Refresh(gctx, tid); err != nil {
				warn("tag", tid, err)
			}
			return nil
		})
	}
	if p.AuthorID != 0 {
		g.Go(func() error {
			if err := s.authors.Refresh(gctx, p.AuthorID); err != nil {
				warn("author", p.AuthorID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, p.ID, p.Slug, p.CategoryIDs, p.TagIDs, p.AuthorID, warnings)

	return &UpdateResult{Post: d, Warnings: warnings}, nil
}

// Remove deletes the post record. Entity stores are not cascaded into; their
// denormalized views self-correct on their next refresh. The projection is
// dropped best-effort so listings stop advertising the dead id.
func (s *PostService) Remove(ctx context.Context, id int64) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: delete post %d: %v", ErrSourceUnavailable, id, err)
	}
	if err := s.metas.Remove(ctx, id); err != nil {
		logger.WarnWithFields("projection remove failed", logger.Fields{
			"post_id": id, "error": err.Error(),
		})
	}

	s.publishDeleted(ctx, id)
	return nil
}

// hydratePage hydrates the content of an already-sliced projection page.
func (s *PostService) hydratePage(ctx context.Context, metaPage dto.Pagination[models.PostMeta]) (dto.Pagination[dto.PostDTO], error) {
	out := dto.Pagination[dto.PostDTO]{
		Page:       metaPage.Page,
		PageSize:   metaPage.PageSize,
		TotalPages: metaPage.TotalPages,
		Total:      metaPage.Total,
		Data:       make([]dto.PostDTO, 0, len(metaPage.Data)),
	}
	for _, m := range metaPage.Data {
		d, err := s.GetByID(ctx, m.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				logger.WarnWithFields("projection without record", logger.Fields{"post_id": m.ID})
				continue
			}
			return dto.Pagination[dto.PostDTO]{}, err
		}
		out.Data = append(out.Data, d.ClearContent())
	}
	return out, nil
}

// pageFiltered filters projections on raw relation ids, then hydrates only
// the matching set. The filter runs before hydration on purpose: hydrating
// is the expensive step.
func (s *PostService) pageFiltered(ctx context.Context, page, pageSize int, keep func(models.PostMeta) bool) (dto.Pagination[dto.PostDTO], error) {
	metas, err := s.metas.All(ctx)
	if err != nil {
		return dto.Pagination[dto.PostDTO]{}, err
	}

	filtered := make([]models.PostMeta, 0, len(metas))
	for _, m := range metas {
		if keep(m) {
			filtered = append(filtered, m)
		}
	}
	return s.hydratePage(ctx, dto.PageOf(page, pageSize, filtered))
}

func (s *PostService) publishUpdated(ctx context.Context, id int64, slug string, categoryIDs, tagIDs []int64, authorID int64, warnings []CascadeWarning) {
	infos := make([]events.CascadeWarningInfo, 0, len(warnings))
	for _, w := range warnings {
		infos = append(infos, events.CascadeWarningInfo{Kind: w.Kind, ID: w.ID, Error: w.Err.Error()})
	}
	ev := events.PostUpdatedEvent{
		BaseEvent:   newBaseEvent(events.PostUpdated),
		PostID:      id,
		Slug:        slug,
		CategoryIDs: categoryIDs,
		TagIDs:      tagIDs,
		AuthorID:    authorID,
		Warnings:    infos,
	}
	s.publish(ctx, eventbus.TopicPostUpdated, ev)
}

func (s *PostService) publishDeleted(ctx context.Context, id int64) {
	ev := events.PostDeletedEvent{
		BaseEvent: newBaseEvent(events.PostDeleted),
		PostID:    id,
	}
	s.publish(ctx, eventbus.TopicPostDeleted, ev)
}

// publish is best-effort: a bus failure is logged and never surfaced, same
// policy as a cascade step failure.
func (s *PostService) publish(ctx context.Context, topic string, event interface{}) {
	data, eventType, err := events.SerializeEvent(event)
	if err != nil {
		logger.Log.Errorf("serialize %s event: %v", topic, err)
		return
	}
	busEvent := eventbus.Event{ID: uuid.NewString(), Type: string(eventType), Payload: data}
	if err := s.bus.Publish(ctx, topic, busEvent); err != nil {
		logger.WarnWithFields("event publish failed", logger.Fields{
			"topic": topic, "error": err.Error(),
		})
	}
}

func newBaseEvent(t events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    "blogread",
		Version:   "1",
	}
}
