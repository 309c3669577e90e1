package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*models.Product
	getAll   int
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]*models.Product{}}
}

func (f *fakeProductRepo) Create(_ context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrValidation)
	}
	f.nextID++
	p := &models.Product{ID: f.nextID, Name: req.Name, CategoryIDs: req.CategoryIDs, Prices: []models.PriceTier{}, Images: []string{}}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) AddPriceTiers(_ context.Context, id int64, tiers []models.PriceTierRequest) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	for _, t := range tiers {
		p.Prices = append(p.Prices, models.PriceTier{Price: *t.Price, Quantity: models.DefaultTierQuantity})
	}
	return p, nil
}

func (f *fakeProductRepo) GetAll(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getAll++
	out := make([]models.Product, 0, len(f.products))
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.products[id]
	return ok, nil
}

type fakeCache struct {
	mu          sync.Mutex
	products    []models.Product
	cached      bool
	readErr     error
	invalidated int
	gen         int64
	rejected    int
}

func (f *fakeCache) GetAll(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if !f.cached {
		return nil, cache.ErrMiss
	}
	return f.products, nil
}

func (f *fakeCache) Generation(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen, nil
}

func (f *fakeCache) SetAll(_ context.Context, gen int64, products []models.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		f.rejected++
		return false, nil
	}
	f.products = products
	f.cached = true
	return true, nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.gen++
	f.cached = false
	return nil
}

type fakeImageRepo struct {
	images []models.ImageRef
	err    error
}

func (f *fakeImageRepo) Create(_ context.Context, productID int64, path string) (*models.ImageRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := models.ImageRef{ID: int64(len(f.images) + 1), ProductID: productID, ImagePath: path}
	f.images = append(f.images, img)
	return &img, nil
}

func (f *fakeImageRepo) GetAll(context.Context) ([]models.ImageRef, error) {
	return f.images, nil
}

type fakeStore struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string][]byte{}}
}

func (f *fakeStore) Save(_ context.Context, data []byte, _ string, ext string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := fmt.Sprintf("mem/%d%s", len(f.saved)+1, ext)
	f.saved[path] = data
	return path, nil
}

func (f *fakeStore) Delete(_ context.Context, path string) error {
	if _, ok := f.saved[path]; !ok {
		return errors.New("no such object")
	}
	delete(f.saved, path)
	f.deleted = append(f.deleted, path)
	return nil
}
