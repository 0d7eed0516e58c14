package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"checkout-backend/internal/cache"
	"checkout-backend/internal/domain"
	cartrepo "checkout-backend/internal/repository/cart"
	productrepo "checkout-backend/internal/repository/product"
)

type Service struct {
	repo     cartRepo
	products productRepo
	cache    cache.ProductCache
	logger   *log.Logger
}

type cartRepo interface {
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int) error
	SetItemQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	RemoveItem(ctx context.Context, sessionID, productID string) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// New builds the cart service. productCache may be nil, in which case every
// lookup goes straight to the repository.
func New(repo cartrepo.Repository, products productrepo.Repository, productCache cache.ProductCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, cache: productCache, logger: logger}
}

// AddItem resolves the product against the catalog, denormalizes its
// name/price/image onto the cart line and returns the full cart. A quantity
// of zero or less defaults to one.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("sessionId required")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, errors.New("productId required")
	}
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddItem(ctx, sessionID, *product, quantity); err != nil {
		return nil, err
	}
	return s.fetch(ctx, sessionID)
}

// Get returns the cart for the session, or an empty-cart view when the
// session never added anything. It never reports not-found.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.fetch(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.EmptyCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the line quantity exactly; zero or less removes the line.
func (s *Service) UpdateItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errors.New("productId required")
	}
	if err := s.repo.SetItemQuantity(ctx, sessionID, productID, quantity); err != nil {
		return nil, err
	}
	return s.fetch(ctx, sessionID)
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if err := s.repo.RemoveItem(ctx, sessionID, productID); err != nil {
		return nil, err
	}
	return s.fetch(ctx, sessionID)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.DeleteBySession(ctx, sessionID)
}

func (s *Service) fetch(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *Service) lookupProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if s.cache != nil {
		product, err := s.cache.Get(ctx, productID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("cart service: product cache get id=%s error=%v", productID, err)
		}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Printf("cart service: product cache set id=%s error=%v", productID, err)
		}
	}
	return product, nil
}
