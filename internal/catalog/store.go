// Package catalog holds the products and categories fetched from the backend.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/storage"
	"go.uber.org/zap"
)

type Backend interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (Product, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id int, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]Category, error)
}

type Store struct {
	backend Backend
	local   storage.Storage
	log     *zap.Logger

	mu         sync.RWMutex
	products   []Product
	categories []Category
}

// Open builds a store whose category list starts from the local cache.
// Products are empty until Refresh.
func Open(ctx context.Context, backend Backend, local storage.Storage, log *zap.Logger) (*Store, error) {
	s := &Store{backend: backend, local: local, log: log}
	var cached []Category
	if _, err := storage.Load(ctx, local, storage.KeyCategories, &cached); err != nil {
		return nil, err
	}
	s.categories = cached
	return s, nil
}

// Refresh replaces the product list. A result that arrives after ctx was
// abandoned is dropped.
func (s *Store) Refresh(ctx context.Context) error {
	ps, err := s.backend.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.products = ps
	s.mu.Unlock()
	s.log.Debug("catalog refreshed", zap.Int("products", len(ps)))
	return nil
}

func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product(nil), s.products...)
}

// Product looks id up in the last fetched list.
func (s *Store) Product(id int) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Fetch reads one product from the backend and folds it into the local list.
func (s *Store) Fetch(ctx context.Context, id int) (Product, error) {
	p, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	s.upsert(p)
	return p, nil
}

func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category(nil), s.categories...)
}

// RefreshCategories fetches the category list and rewrites the cache.
func (s *Store) RefreshCategories(ctx context.Context) error {
	cs, err := s.backend.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.Save(ctx, s.local, storage.KeyCategories, cs); err != nil {
		return err
	}
	s.mu.Lock()
	s.categories = cs
	s.mu.Unlock()
	return nil
}

func (s *Store) Add(ctx context.Context, p Product) (Product, error) {
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	created, err := s.backend.CreateProduct(ctx, p)
	if err != nil {
		return Product{}, fmt.Errorf("add product: %w", err)
	}
	s.upsert(created)
	s.log.Info("product added", zap.Int("product_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *Store) Update(ctx context.Context, id int, patch ProductPatch) (Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w %d: negative price", ErrInvalidProduct, id)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return Product{}, fmt.Errorf("%w %d: negative stock", ErrInvalidProduct, id)
	}
	updated, err := s.backend.UpdateProduct(ctx, id, patch)
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	s.upsert(updated)
	s.log.Info("product updated", zap.Int("product_id", id))
	return updated, nil
}

func (s *Store) Remove(ctx context.Context, id int) error {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("remove product %d: %w", id, err)
	}
	s.mu.Lock()
	out := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	s.products = out
	s.mu.Unlock()
	s.log.Info("product removed", zap.Int("product_id", id))
	return nil
}

func (s *Store) upsert(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}
