package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogread/eventbus"
	"blogread/models"
	"blogread/repositories"
	"blogread/services"
)

// fakePosts is an in-memory post record store. ApplyPendingUpdate returns
// whatever the test has staged in records, mimicking a re-read after an
// upstream write.
type fakePosts struct {
	mu          sync.Mutex
	records     map[int64]models.Post
	applied     []int64
	unavailable bool
}

func (f *fakePosts) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, errors.New("connection refused")
	}
	p, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (f *fakePosts) ListIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, errors.New("connection refused")
	}
	ids := make([]int64, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakePosts) ApplyPendingUpdate(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, errors.New("connection refused")
	}
	p, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	f.applied = append(f.applied, id)
	return &p, nil
}

func (f *fakePosts) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

// fakeMetas is an in-memory projection store.
type fakeMetas struct {
	mu          sync.Mutex
	metas       []models.PostMeta
	refreshed   []int64
	removed     []int64
	failRefresh bool
}

func (f *fakeMetas) All(ctx context.Context) ([]models.PostMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PostMeta, len(f.metas))
	copy(out, f.metas)
	return out, nil
}

func (f *fakeMetas) IDBySlug(ctx context.Context, slug string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.metas {
		if m.Slug == slug {
			return m.ID, nil
		}
	}
	return 0, repositories.ErrNotFound
}

func (f *fakeMetas) Refresh(ctx context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRefresh {
		return errors.New("projection store down")
	}
	f.refreshed = append(f.refreshed, p.ID)
	meta := models.NewPostMeta(*p)
	for i, m := range f.metas {
		if m.ID == meta.ID {
			f.metas[i] = meta
			return nil
		}
	}
	f.metas = append(f.metas, meta)
	return nil
}

func (f *fakeMetas) Remove(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	for i, m := range f.metas {
		if m.ID == id {
			f.metas = append(f.metas[:i], f.metas[i+1:]...)
			break
		}
	}
	return nil
}

// fakeEntity is an in-memory entity store: source is the durable truth,
// cached is the denormalized view reads are served from. Refresh pulls from
// source and overwrites cached, exactly like the real stores.
type fakeEntity[T any] struct {
	mu           sync.Mutex
	source       map[int64]T
	cached       map[int64]T
	refreshCalls []int64
	failIDs      map[int64]error
}

func newFakeEntity[T any]() *fakeEntity[T] {
	return &fakeEntity[T]{
		source:  map[int64]T{},
		cached:  map[int64]T{},
		failIDs: map[int64]error{},
	}
}

func (f *fakeEntity[T]) put(id int64, v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source[id] = v
	f.cached[id] = v
}

func (f *fakeEntity[T]) drop(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.source, id)
	delete(f.cached, id)
}

func (f *fakeEntity[T]) cachedState() map[int64]T {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]T, len(f.cached))
	for k, v := range f.cached {
		out[k] = v
	}
	return out
}

func (f *fakeEntity[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.cached[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (f *fakeEntity[T]) Refresh(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls = append(f.refreshCalls, id)
	if err := f.failIDs[id]; err != nil {
		return err
	}
	v, ok := f.source[id]
	if !ok {
		delete(f.cached, id)
		return repositories.ErrNotFound
	}
	f.cached[id] = v
	return nil
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
	topics []string
}

func (b *recordingBus) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	b.topics = append(b.topics, topic)
	return nil
}

func (b *recordingBus) Close() {}

type fixture struct {
	posts   *fakePosts
	metas   *fakeMetas
	cats    *fakeEntity[models.Category]
	tags    *fakeEntity[models.Tag]
	authors *fakeEntity[models.Author]
	bus     *recordingBus
	svc     *services.PostService
}

func newFixture() *fixture {
	f := &fixture{
		posts:   &fakePosts{records: map[int64]models.Post{}},
		metas:   &fakeMetas{},
		cats:    newFakeEntity[models.Category](),
		tags:    newFakeEntity[models.Tag](),
		authors: newFakeEntity[models.Author](),
		bus:     &recordingBus{},
	}
	f.svc = services.NewPostService(f.posts, f.metas, f.cats, f.tags, f.authors, f.bus)
	return f
}

func (f *fixture) addPost(p models.Post) {
	f.posts.records[p.ID] = p
	f.metas.metas = append(f.metas.metas, models.NewPostMeta(p))
}

func (f *fixture) seedDefaults() {
	f.cats.put(10, models.Category{ID: 10, Slug: "go", Name: "Go"})
	f.cats.put(20, models.Category{ID: 20, Slug: "infra", Name: "Infra"})
	f.tags.put(5, models.Tag{ID: 5, Slug: "testing", Name: "Testing"})
	f.authors.put(7, models.Author{ID: 7, Username: "jin", DisplayName: "Jin"})
	f.addPost(models.Post{
		ID:          1,
		Slug:        "hello-world",
		Title:       "Hello World",
		Body:        "A long body about Go testing.",
		CategoryIDs: []int64{10, 20},
		TagIDs:      []int64{5},
		AuthorID:    7,
		UpdatedAt:   time.Now(),
	})
}

func TestGetByIDHydratesRelations(t *testing.T) {
	f := newFixture()
	f.seedDefaults()

	d, err := f.svc.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.ID)
	require.Len(t, d.Categories, 2)
	assert.Equal(t, int64(10), d.Categories[0].ID)
	assert.Equal(t, int64(20), d.Categories[1].ID)
	require.Len(t, d.Tags, 1)
	assert.Equal(t, "testing", d.Tags[0].Slug)
	require.NotNil(t, d.Author)
	assert.Equal(t, "jin", d.Author.Username)
	assert.Equal(t, "A long body about Go testing.", d.Body)
}

func TestGetByIDToleratesDanglingCategory(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.cats.drop(20)

	d, err := f.svc.GetByID(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, d.Categories, 1)
	assert.Equal(t, int64(10), d.Categories[0].ID)
	// other relations are unaffected
	assert.Len(t, d.Tags, 1)
	assert.NotNil(t, d.Author)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestGetByIDSourceUnavailable(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.posts.unavailable = true

	_, err := f.svc.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, services.ErrSourceUnavailable)
}

func TestGetBySlug(t *testing.T) {
	f := newFixture()
	f.seedDefaults()

	d, err := f.svc.GetBySlug(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)

	_, err = f.svc.GetBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListIDs(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.addPost(models.Post{ID: 2, Slug: "second", Body: "x"})

	ids, err := f.svc.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func seedMany(f *fixture, n int) {
	f.cats.put(10, models.Category{ID: 10, Slug: "go", Name: "Go"})
	for i := 1; i <= n; i++ {
		p := models.Post{
			ID:   int64(i),
			Slug: fmt.Sprintf("post-%d", i),
			Body: fmt.Sprintf("body of post %d", i),
		}
		if i%2 == 0 {
			p.CategoryIDs = []int64{10}
		}
		f.addPost(p)
	}
}

func TestPageMath(t *testing.T) {
	f := newFixture()
	seedMany(f, 12)

	page, err := f.svc.Page(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	// beyond the last page: empty content, total unchanged
	empty, err := f.svc.Page(context.Background(), 9, 5)
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.Equal(t, int64(12), empty.Total)
}

func TestPageStripsBody(t *testing.T) {
	f := newFixture()
	f.seedDefaults()

	page, err := f.svc.Page(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Empty(t, page.Data[0].Body)
	assert.Equal(t, "Hello World", page.Data[0].Title)
}

func TestPageByCategory(t *testing.T) {
	f := newFixture()
	seedMany(f, 12)

	page, err := f.svc.PageByCategory(context.Background(), 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	for _, d := range page.Data {
		assert.Contains(t, d.CategoryIDs, int64(10))
		assert.Empty(t, d.Body)
	}
}

func TestPageByTag(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.addPost(models.Post{ID: 2, Slug: "untagged", Body: "x"})

	page, err := f.svc.PageByTag(context.Background(), 5, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Data[0].ID)
}

func TestSearch(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.addPost(models.Post{ID: 2, Slug: "other", Body: "Nothing relevant here."})

	page, err := f.svc.Search(context.Background(), "GO TESTING", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Data[0].ID)
	assert.Empty(t, page.Data[0].Body)
}

func TestSearchEmptyTermMatchesAll(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.addPost(models.Post{ID: 2, Slug: "other", Body: "Nothing relevant here."})

	page, err := f.svc.Search(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
}

func TestApplyUpdateCascades(t *testing.T) {
	f := newFixture()
	f.seedDefaults()

	res, err := f.svc.ApplyUpdate(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, res.Post)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, []int64{1}, f.posts.applied)
	assert.Equal(t, []int64{1}, f.metas.refreshed)
	assert.ElementsMatch(t, []int64{10, 20}, f.cats.refreshCalls)
	assert.ElementsMatch(t, []int64{5}, f.tags.refreshCalls)
	assert.ElementsMatch(t, []int64{7}, f.authors.refreshCalls)

	// lifecycle event published
	require.Len(t, f.bus.topics, 1)
	assert.Equal(t, eventbus.TopicPostUpdated, f.bus.topics[0])
}

func TestApplyUpdateIdempotent(t *testing.T) {
	f := newFixture()
	f.seedDefaults()

	_, err := f.svc.ApplyUpdate(context.Background(), 1)
	require.NoError(t, err)
	catState := f.cats.cachedState()
	tagState := f.tags.cachedState()

	_, err = f.svc.ApplyUpdate(context.Background(), 1)
	require.NoError(t, err)

	// refresh is pull-and-overwrite: the second run converges to the same state
	assert.Equal(t, catState, f.cats.cachedState())
	assert.Equal(t, tagState, f.tags.cachedState())
}

func TestApplyUpdatePartialCascadeFailure(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.cats.failIDs[20] = errors.New("category cache down")

	res, err := f.svc.ApplyUpdate(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, res.Post)
	assert.Equal(t, int64(1), res.Post.ID)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "category", res.Warnings[0].Kind)
	assert.Equal(t, int64(20), res.Warnings[0].ID)

	// the sibling refresh still ran
	assert.ElementsMatch(t, []int64{10, 20}, f.cats.refreshCalls)
	assert.ElementsMatch(t, []int64{5}, f.tags.refreshCalls)
}

func TestApplyUpdateProjectionFailureDegrades(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.metas.failRefresh = true

	res, err := f.svc.ApplyUpdate(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "projection", res.Warnings[0].Kind)
	// entity cascades were not aborted
	assert.ElementsMatch(t, []int64{10, 20}, f.cats.refreshCalls)
}

func TestApplyUpdateNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ApplyUpdate(context.Background(), 42)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestApplyUpdateSourceUnavailable(t *testing.T) {
	f := newFixture()
	f.seedDefaults()
	f.posts.unavailable = true

	_, err := f.svc.ApplyUpdate(context.Background(), 1)
	assert.ErrorIs(t, err, services.ErrSourceUnavailable)
	// no cascade without a valid record
	assert.Empty(t, f.cats.refreshCalls)
}

func TestRemove(t *testing.T) {
	f := newFixture()
	f.seedDefaults()

	require.NoError(t, f.svc.Remove(context.Background(), 1))
	assert.Equal(t, []int64{1}, f.metas.removed)
	// no entity cascade on delete
	assert.Empty(t, f.cats.refreshCalls)
	require.Len(t, f.bus.topics, 1)
	assert.Equal(t, eventbus.TopicPostDeleted, f.bus.topics[0])

	err := f.svc.Remove(context.Background(), 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
