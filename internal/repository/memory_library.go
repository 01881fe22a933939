package repository

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/sahayak-edu/sahayak/internal/db"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// MemoryLibraryRepo keeps library items in process memory. Contents are lost
// on exit.
type MemoryLibraryRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.LibraryItem
}

func NewMemoryLibraryRepo() *MemoryLibraryRepo {
	return &MemoryLibraryRepo{items: make(map[string]*domain.LibraryItem)}
}

// Repos returns a factory for use with MemoryUnitOfWork. Inside WithinTx
// the factory yields a repo whose writes are staged until the callback
// succeeds; outside a transaction it yields r itself.
func (r *MemoryLibraryRepo) Repos() LibraryRepoFactory {
	return func(conn db.DBTX) LibraryRepo {
		if tx, ok := conn.(*memoryTx); ok {
			return &stagedLibraryRepo{base: r, w: tx.writesFor(r)}
		}
		return r
	}
}

func (r *MemoryLibraryRepo) Create(_ context.Context, item *domain.LibraryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; ok {
		return duplicate(item.ID)
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *MemoryLibraryRepo) GetByID(_ context.Context, id string) (*domain.LibraryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneItem(item), nil
}

func (r *MemoryLibraryRepo) ListByUser(_ context.Context, userID string) ([]*domain.LibraryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.LibraryItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, cloneItem(item))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(items []*domain.LibraryItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func (r *MemoryLibraryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound(id)
	}
	delete(r.items, id)
	return nil
}

// MemoryUnitOfWork gives memory repos all-or-nothing writes. Repos built by
// MemoryLibraryRepo.Repos inside the callback stage their writes, and the
// staged writes are applied only when the callback returns nil.
type MemoryUnitOfWork struct{}

func (MemoryUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx := &memoryTx{}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

var errNoSQL = errors.New("memory store does not run SQL")

// memoryTx collects staged writes per repo. It satisfies db.DBTX only so it
// can travel through the UnitOfWork callback; its SQL methods always fail.
type memoryTx struct {
	mu     sync.Mutex
	staged []*stagedWrites
}

func (*memoryTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (*memoryTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

// QueryRowContext cannot report an error without a driver, so it returns nil.
func (*memoryTx) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

type stagedWrites struct {
	repo    *MemoryLibraryRepo
	creates map[string]*domain.LibraryItem
	order   []string
	deletes map[string]bool
}

func (tx *memoryTx) writesFor(repo *MemoryLibraryRepo) *stagedWrites {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for _, w := range tx.staged {
		if w.repo == repo {
			return w
		}
	}
	w := &stagedWrites{repo: repo, creates: map[string]*domain.LibraryItem{}, deletes: map[string]bool{}}
	tx.staged = append(tx.staged, w)
	return w
}

// commit re-checks every staged write under the repo lock before applying
// any of them, so a conflicting concurrent write fails the whole batch.
func (tx *memoryTx) commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for _, w := range tx.staged {
		if err := w.apply(); err != nil {
			return err
		}
	}
	return nil
}

func (w *stagedWrites) apply() error {
	r := w.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range w.deletes {
		if _, ok := r.items[id]; !ok {
			return notFound(id)
		}
	}
	for _, id := range w.order {
		if _, ok := r.items[id]; ok && !w.deletes[id] {
			return duplicate(id)
		}
	}
	for id := range w.deletes {
		delete(r.items, id)
	}
	for _, id := range w.order {
		r.items[id] = w.creates[id]
	}
	return nil
}

// stagedLibraryRepo reads through to base and records writes in w.
type stagedLibraryRepo struct {
	base *MemoryLibraryRepo
	w    *stagedWrites
}

func (s *stagedLibraryRepo) Create(ctx context.Context, item *domain.LibraryItem) error {
	if _, ok := s.w.creates[item.ID]; ok {
		return duplicate(item.ID)
	}
	if _, err := s.base.GetByID(ctx, item.ID); err == nil && !s.w.deletes[item.ID] {
		return duplicate(item.ID)
	}
	s.w.creates[item.ID] = cloneItem(item)
	s.w.order = append(s.w.order, item.ID)
	return nil
}

func (s *stagedLibraryRepo) GetByID(ctx context.Context, id string) (*domain.LibraryItem, error) {
	if item, ok := s.w.creates[id]; ok {
		return cloneItem(item), nil
	}
	if s.w.deletes[id] {
		return nil, notFound(id)
	}
	return s.base.GetByID(ctx, id)
}

func (s *stagedLibraryRepo) ListByUser(ctx context.Context, userID string) ([]*domain.LibraryItem, error) {
	stored, err := s.base.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.LibraryItem, 0, len(stored)+len(s.w.order))
	for _, item := range stored {
		if _, replaced := s.w.creates[item.ID]; !s.w.deletes[item.ID] && !replaced {
			out = append(out, item)
		}
	}
	for _, id := range s.w.order {
		if item := s.w.creates[id]; item.UserID == userID {
			out = append(out, cloneItem(item))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *stagedLibraryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.w.creates[id]; ok {
		delete(s.w.creates, id)
		s.w.order = slices.DeleteFunc(s.w.order, func(o string) bool { return o == id })
		return nil
	}
	if s.w.deletes[id] {
		return notFound(id)
	}
	if _, err := s.base.GetByID(ctx, id); err != nil {
		return err
	}
	s.w.deletes[id] = true
	return nil
}
