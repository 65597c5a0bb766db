package services

import (
	"context"
	"errors"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"
)

var (
	ErrProductNotOwned = errors.New("product does not belong to this merchant")
)

type ProductService interface {
	CreateProduct(ctx context.Context, userID uint, req models.CreateProductRequest) (*models.ProductResponse, error)
	GetProduct(ctx context.Context, id uint) (*models.ProductResponse, error)
	ListProducts(ctx context.Context) ([]models.ProductResponse, error)
	ListMerchantProducts(ctx context.Context, userID uint) ([]models.ProductResponse, error)
	UpdateProduct(ctx context.Context, userID, id uint, req models.UpdateProductRequest) (*models.ProductResponse, error)
	DeleteProduct(ctx context.Context, userID, id uint) error
}

type productService struct {
	products postgres.ProductRepository
}

func NewProductService(products postgres.ProductRepository) ProductService {
	return &productService{products: products}
}

func (s *productService) CreateProduct(ctx context.Context, userID uint, req models.CreateProductRequest) (*models.ProductResponse, error) {
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		UserID:      userID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	resp := product.ToResponse()
	return &resp, nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*models.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	resp := product.ToResponse()
	return &resp, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]models.ProductResponse, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *productService) ListMerchantProducts(ctx context.Context, userID uint) ([]models.ProductResponse, error) {
	products, err := s.products.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *productService) UpdateProduct(ctx context.Context, userID, id uint, req models.UpdateProductRequest) (*models.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if product.UserID != userID {
		return nil, ErrProductNotOwned
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := product.ToResponse()
	return &resp, nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID, id uint) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return ErrProductNotFound
	}
	if product.UserID != userID {
		return ErrProductNotOwned
	}
	return s.products.Delete(ctx, id)
}

func toProductResponses(products []models.Product) []models.ProductResponse {
	responses := make([]models.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, products[i].ToResponse())
	}
	return responses
}
