package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/core/service"
)

type ProductHandler struct {
	catalog *service.CatalogService
	logger  zerolog.Logger
}

func NewProductHandler(catalog *service.CatalogService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

type variantResponse struct {
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type imageResponse struct {
	URL           string `json:"url"`
	Color         string `json:"color,omitempty"`
	IsVariantMain bool   `json:"is_variant_main,omitempty"`
}

type specResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type productResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Images          []imageResponse   `json:"images,omitempty"`
	Brand           string            `json:"brand"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	Features        []string          `json:"features,omitempty"`
	Specifications  []specResponse    `json:"specifications,omitempty"`
	BasePrice       decimal.Decimal   `json:"base_price"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	Rating          float64           `json:"rating"`
	NumReviews      int               `json:"num_reviews"`
	CountInStock    int               `json:"count_in_stock"`
	TotalStock      int               `json:"total_stock"`
	Variants        []variantResponse `json:"variants,omitempty"`
	AvailableSizes  []string          `json:"available_sizes,omitempty"`
	AvailableColors []string          `json:"available_colors,omitempty"`
	Reviews         []reviewResponse  `json:"reviews,omitempty"`
}

func toProductResponse(p *domain.Product) productResponse {
	out := productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Image:           p.Image,
		Brand:           p.Brand,
		Category:        p.Category,
		Description:     p.Description,
		Features:        p.Features,
		BasePrice:       p.BasePrice,
		DiscountPercent: p.DiscountPercent,
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		CountInStock:    p.CountInStock,
		TotalStock:      p.TotalStock,
		AvailableSizes:  p.AvailableSizes,
		AvailableColors: p.AvailableColors,
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, imageResponse{
			URL: img.URL, Color: img.Color, IsVariantMain: img.IsVariantMain,
		})
	}
	for _, spec := range p.Specifications {
		out.Specifications = append(out.Specifications, specResponse{Label: spec.Label, Value: spec.Value})
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, variantResponse{
			Size: v.Size, Color: v.Color, Price: v.Price, Stock: v.Stock,
		})
	}
	for _, r := range p.Reviews {
		out.Reviews = append(out.Reviews, reviewResponse{
			ID: r.ID, UserID: r.UserID, UserName: r.UserName,
			Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt,
		})
	}
	return out
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.catalog.ListProducts(r.Context(), domain.ProductQuery{
		Keyword:  r.URL.Query().Get("keyword"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	products := make([]productResponse, len(result.Products))
	for i := range result.Products {
		products[i] = toProductResponse(&result.Products[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"page":     result.Page,
		"pages":    result.Pages,
		"total":    result.Total,
	})
}

func (h *ProductHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.catalog.TopProducts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.CreateSampleProduct(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

type updateProductRequest struct {
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Images          []imageResponse   `json:"images"`
	Brand           string            `json:"brand"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	Features        []string          `json:"features"`
	Specifications  []specResponse    `json:"specifications"`
	BasePrice       decimal.Decimal   `json:"base_price"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	CountInStock    int               `json:"count_in_stock"`
	Variants        []variantResponse `json:"variants"`
	AvailableSizes  []string          `json:"available_sizes"`
	AvailableColors []string          `json:"available_colors"`
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := service.UpdateProductInput{
		Name:            req.Name,
		Image:           req.Image,
		Brand:           req.Brand,
		Category:        req.Category,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		DiscountPercent: req.DiscountPercent,
		CountInStock:    req.CountInStock,
		AvailableSizes:  req.AvailableSizes,
		AvailableColors: req.AvailableColors,
	}
	for _, f := range req.Features {
		if f != "" {
			in.Features = append(in.Features, f)
		}
	}
	for _, spec := range req.Specifications {
		if spec.Label != "" || spec.Value != "" {
			in.Specifications = append(in.Specifications, domain.Specification{
				Label: spec.Label, Value: spec.Value,
			})
		}
	}
	for _, img := range req.Images {
		in.Images = append(in.Images, domain.ProductImage{
			URL: img.URL, Color: img.Color, IsVariantMain: img.IsVariantMain,
		})
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, domain.Variant{
			Size: v.Size, Color: v.Color, Price: v.Price, Stock: v.Stock,
		})
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "product removed"})
}

func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.catalog.AddReview(r.Context(), chi.URLParam(r, "id"),
		userFrom(r.Context()), req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "review added"})
}
