package transport

import (
	"fmt"
	"net/http"
	"strings"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the new product payload
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"required,min=1,max=250"`
	Category    string   `json:"category" validate:"required,min=1,max=250"`
	Price       *float64 `json:"price" validate:"required,gte=0,lte=10000"`
}

func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
}

// UpdateProductRequest represents a partial product update. ID and MongoID
// are only decoded so that attempts to reassign the identity can be refused.
type UpdateProductRequest struct {
	ID          *string  `json:"id"`
	MongoID     *string  `json:"_id"`
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=1,max=250"`
	Category    *string  `json:"category" validate:"omitempty,min=1,max=250"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lte=10000"`
}

func (r *UpdateProductRequest) Normalize() {
	trim(r.Name)
	trim(r.Description)
	trim(r.Category)
}

// CreateProductResponse echoes the insert outcome and the stored product
type CreateProductResponse struct {
	Result       *domain.InsertResult `json:"result"`
	AddedProduct *domain.Product      `json:"addedProduct"`
}

// MessageResponse is the confirmation body of mutating routes
type MessageResponse struct {
	Message string `json:"message"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/product", func(r chi.Router) {
		r.Get("/list", h.List)
		r.Get("/id/{id}", h.GetByID)
		r.Get("/name/{name}", h.GetByName)
		r.Post("/new", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles listing all products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetByID handles fetching a product by id
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetByName handles fetching a product by its unique name
func (h *ProductHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByName(r.Context(), strings.TrimSpace(chi.URLParam(r, "name")))
	if err != nil {
		respondServiceError(w, h.logger, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles adding a product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	result, product, err := h.productService.Create(r.Context(), service.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       *req.Price,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "add product")
		return
	}

	h.logger.Info("Product added", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, CreateProductResponse{
		Result:       result,
		AddedProduct: product,
	})
}

// Update handles a partial product update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := middleware.DecodeOptional(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	patch := service.ProductPatch{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	}
	if patch.ID == nil {
		patch.ID = req.MongoID
	}

	if err := h.productService.Update(r.Context(), id, patch); err != nil {
		respondServiceError(w, h.logger, err, "update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Product %s updated!", id),
	})
}

// Delete handles removing a product from the catalog
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Product %s deleted from inventory.", id),
	})
}
