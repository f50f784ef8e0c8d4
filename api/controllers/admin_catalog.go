package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maldonadorepuestos/backend/api/responses"
	"github.com/maldonadorepuestos/backend/api/validators"
	catalogsvc "github.com/maldonadorepuestos/backend/internal/catalog"
	"github.com/maldonadorepuestos/backend/pkg/logger"
)

type createProductRequest struct {
	CategoryID    uuid.UUID        `json:"category_id" validate:"required"`
	Name          string           `json:"name" validate:"required,min=2,max=200"`
	Code          string           `json:"code" validate:"required,min=2,max=60"`
	Brand         string           `json:"brand" validate:"required,max=120"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock" validate:"min=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive      *bool            `json:"is_active,omitempty"`
	IsFeatured    *bool            `json:"is_featured,omitempty"`
	IsNew         *bool            `json:"is_new,omitempty"`
}

type updateProductRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Code          *string          `json:"code,omitempty" validate:"omitempty,min=2,max=60"`
	Brand         *string          `json:"brand,omitempty" validate:"omitempty,max=120"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive      *bool            `json:"is_active,omitempty"`
	IsFeatured    *bool            `json:"is_featured,omitempty"`
	IsNew         *bool            `json:"is_new,omitempty"`
}

type categoryRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Slug         string  `json:"slug" validate:"required,min=2,max=120"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Icon         *string `json:"icon,omitempty" validate:"omitempty,max=60"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	DisplayOrder int     `json:"display_order" validate:"min=0"`
}

type updateCategoryRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Slug         *string `json:"slug,omitempty" validate:"omitempty,min=2,max=120"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Icon         *string `json:"icon,omitempty" validate:"omitempty,max=60"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive     *bool   `json:"is_active,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty" validate:"omitempty,min=0"`
}

type bannerRequest struct {
	Title        string  `json:"title" validate:"required,min=2,max=200"`
	Subtitle     *string `json:"subtitle,omitempty" validate:"omitempty,max=300"`
	ImageURL     string  `json:"image_url" validate:"required,url"`
	LinkURL      *string `json:"link_url,omitempty" validate:"omitempty,max=500"`
	DisplayOrder int     `json:"display_order" validate:"min=0"`
}

type updateBannerRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Subtitle     *string `json:"subtitle,omitempty" validate:"omitempty,max=300"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	LinkURL      *string `json:"link_url,omitempty" validate:"omitempty,max=500"`
	IsActive     *bool   `json:"is_active,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty" validate:"omitempty,min=0"`
}

// AdminProductList returns all products including inactive ones.
func AdminProductList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, filters, err := productQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.AdminListProducts(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminProductCreate adds a product to the catalog.
func AdminProductCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalogsvc.ProductInput{
			CategoryID:    payload.CategoryID,
			Name:          payload.Name,
			Code:          payload.Code,
			Brand:         payload.Brand,
			Description:   payload.Description,
			Price:         payload.Price,
			OriginalPrice: payload.OriginalPrice,
			Stock:         payload.Stock,
			ImageURL:      payload.ImageURL,
			IsActive:      payload.IsActive,
			IsFeatured:    payload.IsFeatured,
			IsNew:         payload.IsNew,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate applies a partial product update.
func AdminProductUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, catalogsvc.ProductUpdate{
			CategoryID:    payload.CategoryID,
			Name:          payload.Name,
			Code:          payload.Code,
			Brand:         payload.Brand,
			Description:   payload.Description,
			Price:         payload.Price,
			OriginalPrice: payload.OriginalPrice,
			Stock:         payload.Stock,
			ImageURL:      payload.ImageURL,
			IsActive:      payload.IsActive,
			IsFeatured:    payload.IsFeatured,
			IsNew:         payload.IsNew,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete removes a product while keeping order history readable.
func AdminProductDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := urlParamUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminCategoryCreate adds a category.
func AdminCategoryCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), catalogsvc.CategoryInput{
			Name:         payload.Name,
			Slug:         payload.Slug,
			Description:  payload.Description,
			Icon:         payload.Icon,
			ImageURL:     payload.ImageURL,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminCategoryUpdate applies a partial category update.
func AdminCategoryUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := urlParamUUID(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), categoryID, catalogsvc.CategoryUpdate{
			Name:         payload.Name,
			Slug:         payload.Slug,
			Description:  payload.Description,
			Icon:         payload.Icon,
			ImageURL:     payload.ImageURL,
			IsActive:     payload.IsActive,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// AdminCategoryList returns every category including hidden ones.
func AdminCategoryList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListAllCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// AdminCategoryDelete removes an empty category; categories with products are refused.
func AdminCategoryDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := urlParamUUID(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminBannerList returns every banner including hidden ones.
func AdminBannerList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banners, err := svc.ListAllBanners(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banners)
	}
}

// AdminBannerCreate adds a storefront banner.
func AdminBannerCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.CreateBanner(r.Context(), catalogsvc.BannerInput{
			Title:        payload.Title,
			Subtitle:     payload.Subtitle,
			ImageURL:     payload.ImageURL,
			LinkURL:      payload.LinkURL,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, banner)
	}
}

// AdminBannerUpdate applies a partial banner update.
func AdminBannerUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := urlParamUUID(r, "bannerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.UpdateBanner(r.Context(), bannerID, catalogsvc.BannerUpdate{
			Title:        payload.Title,
			Subtitle:     payload.Subtitle,
			ImageURL:     payload.ImageURL,
			LinkURL:      payload.LinkURL,
			IsActive:     payload.IsActive,
			DisplayOrder: payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

// AdminBannerDelete removes a banner.
func AdminBannerDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := urlParamUUID(r, "bannerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBanner(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
