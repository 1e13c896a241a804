package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jianyuhu/TinyLink/internal/app/cache"
	"github.com/jianyuhu/TinyLink/internal/app/generator"
	"github.com/jianyuhu/TinyLink/internal/app/kv"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/jianyuhu/TinyLink/internal/app/repository"
	"github.com/jianyuhu/TinyLink/internal/app/sequence"
	"github.com/jianyuhu/TinyLink/internal/app/validate"
)

// fakeLinkRepository keeps links in a map and enforces the short_code
// unique constraint the way the durable store would.
type fakeLinkRepository struct {
	byCode map[string]*model.Link
	nextID int64
	gets   int
}

func newFakeLinkRepository() *fakeLinkRepository {
	return &fakeLinkRepository{byCode: make(map[string]*model.Link)}
}

func (f *fakeLinkRepository) Insert(ctx context.Context, link *model.Link) error {
	if _, taken := f.byCode[link.ShortCode]; taken {
		return repository.ErrShortCodeTaken
	}
	f.nextID++
	link.ID = f.nextID
	stored := *link
	f.byCode[link.ShortCode] = &stored
	return nil
}

func (f *fakeLinkRepository) GetByShortCode(ctx context.Context, code string) (*model.Link, error) {
	f.gets++
	link, ok := f.byCode[code]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func newTestService(t *testing.T, repo repository.LinkRepository) LinkService {
	t.Helper()

	store := kv.NewMemory()
	alloc := sequence.NewAllocator(store)
	if err := alloc.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	gen := generator.New(alloc, repo, nil)
	resolver := cache.NewResolver(store, repo, nil)
	return NewLinkService(gen, resolver, nil, nil)
}

func TestLinkService_CreateThenResolve(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLinkRepository()
	svc := newTestService(t, repo)

	link, err := svc.CreateShortenedFor(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("CreateShortenedFor returned error: %v", err)
	}
	if len(link.ShortCode) != 6 {
		t.Fatalf("expected a 6-character code, got %q", link.ShortCode)
	}

	resolved, err := svc.Resolve(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.OriginalURL != "https://example.com" {
		t.Fatalf("resolved wrong URL: %s", resolved.OriginalURL)
	}
}

func TestLinkService_SecondResolveServedFromCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLinkRepository()
	svc := newTestService(t, repo)

	link, err := svc.CreateShortenedFor(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Resolve(ctx, link.ShortCode); err != nil {
		t.Fatal(err)
	}
	storeGets := repo.gets

	if _, err := svc.Resolve(ctx, link.ShortCode); err != nil {
		t.Fatal(err)
	}
	if repo.gets != storeGets {
		t.Fatalf("second resolve hit the store: %d -> %d gets", storeGets, repo.gets)
	}
}

func TestLinkService_ResolveUnknownCode(t *testing.T) {
	svc := newTestService(t, newFakeLinkRepository())

	_, err := svc.Resolve(context.Background(), "zzzzzz")
	if !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestLinkService_ResolveMalformedCode(t *testing.T) {
	repo := newFakeLinkRepository()
	svc := newTestService(t, repo)

	for _, code := range []string{"", "abc-def", "with space", "waytoolongforacode"} {
		_, err := svc.Resolve(context.Background(), code)
		if !errors.Is(err, validate.ErrMalformedCode) {
			t.Fatalf("Resolve(%q): expected ErrMalformedCode, got %v", code, err)
		}
	}
	if repo.gets != 0 {
		t.Fatalf("malformed codes must not reach the store, saw %d gets", repo.gets)
	}
}

func TestLinkService_CreateResolvableOnSiblingInstance(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLinkRepository()
	shared := kv.NewMemory()

	alloc := sequence.NewAllocator(shared)
	if err := alloc.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	creator := NewLinkService(
		generator.New(alloc, repo, nil),
		cache.NewResolver(shared, repo, nil),
		nil, nil)

	// The sibling shares the cache tier but runs its own bloom guard,
	// which has not seen any event for the new code yet.
	sibling := NewLinkService(
		generator.New(alloc, repo, nil),
		cache.NewResolver(shared, repo, nil, cache.WithBloom(1000, 0.01)),
		nil, nil)

	link, err := creator.CreateShortenedFor(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := sibling.Resolve(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("sibling failed to resolve a freshly created code: %v", err)
	}
	if resolved.OriginalURL != "https://example.com" {
		t.Fatalf("resolved wrong URL: %s", resolved.OriginalURL)
	}
	if repo.gets != 0 {
		t.Fatalf("create should have warmed the shared cache, saw %d store gets", repo.gets)
	}
}

func TestLinkService_SameURLTwiceGetsTwoCodes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeLinkRepository())

	first, err := svc.CreateShortenedFor(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateShortenedFor(ctx, "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if first.ShortCode == second.ShortCode {
		t.Fatalf("both creates produced %q", first.ShortCode)
	}
}
