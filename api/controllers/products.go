package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

// ProductsList is the public catalog listing. Inactive listings never
// appear here regardless of filters.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromProducts(list), NextCursor: next})
	}
}

func buildProductFilters(r *http.Request) (products.ListFilters, error) {
	filters := products.ListFilters{
		Search:   validators.SanitizeString(r.URL.Query().Get("search"), 200),
		Category: validators.SanitizeString(r.URL.Query().Get("category"), 100),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("seller_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return products.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller_id")
		}
		filters.SellerID = &id
	}
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("flash_sale"))) {
	case "":
	case "true":
		on := true
		filters.FlashSale = &on
	case "false":
		on := false
		filters.FlashSale = &on
	default:
		return products.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "flash_sale filter must be true or false")
	}
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("platform")), "true") {
		filters.PlatformOnly = true
	}
	return filters, nil
}

func ProductsGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromProduct(product))
	}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    string  `json:"category" validate:"required,max=100"`
	Price       int64   `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=2048"`
}

func (p createProductRequest) toInput() products.CreateInput {
	return products.CreateInput{
		Name:        validators.SanitizeString(p.Name, 200),
		Description: p.Description,
		Category:    validators.SanitizeString(p.Category, 100),
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}

// SellerProductCreate adds a listing to the caller's storefront. Listing
// caps per store level are enforced by the service.
func SellerProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.CreateSellerProduct(r.Context(), sellerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromProduct(product))
	}
}

type updateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=2048"`
	IsActive    *bool   `json:"is_active"`
}

func SellerProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UpdateSellerProduct(r.Context(), sellerID, productID, products.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			Price:       payload.Price,
			Stock:       payload.Stock,
			ImageURL:    payload.ImageURL,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromProduct(product))
	}
}

func SellerProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSellerProduct(r.Context(), sellerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminProductCreate adds a platform-owned listing (nil seller).
func AdminProductCreate(svc products.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := users.Actor{UserID: actorUserID, Name: actorName}
		product, err := svc.CreatePlatformProduct(r.Context(), actor, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromProduct(product))
	}
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func AdminProductSetFlashSale(svc products.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return adminProductToggle(usersSvc, logg, svc.SetFlashSale)
}

func AdminProductSetBoosted(svc products.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return adminProductToggle(usersSvc, logg, svc.SetBoosted)
}

func adminProductToggle(
	usersSvc users.Service,
	logg *logger.Logger,
	toggle func(ctx context.Context, actor users.Actor, productID uuid.UUID, on bool) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload toggleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := users.Actor{UserID: actorUserID, Name: actorName}
		if err := toggle(r.Context(), actor, productID, *payload.Enabled); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"enabled": *payload.Enabled})
	}
}
