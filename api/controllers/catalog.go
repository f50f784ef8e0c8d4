package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maldonadorepuestos/backend/api/responses"
	"github.com/maldonadorepuestos/backend/api/validators"
	catalogsvc "github.com/maldonadorepuestos/backend/internal/catalog"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// CategoriesList returns the active categories with product counts.
func CategoriesList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ProductsList serves the storefront product listing with filters and sorting.
func ProductsList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, filters, err := productQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProducts(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductGet returns one product with category and gallery.
func ProductGet(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductGetByCode looks a product up by its catalog code.
func ProductGetByCode(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProductByCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CategoryGetBySlug returns one active category by its slug.
func CategoryGetBySlug(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := svc.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// BannersList returns the active storefront banners.
func BannersList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banners, err := svc.ListBanners(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banners)
	}
}

func productQuery(r *http.Request) (pagination.Params, catalogsvc.ProductFilters, error) {
	params, err := paginationParams(r)
	if err != nil {
		return params, catalogsvc.ProductFilters{}, err
	}

	categoryID, err := validators.ParseQueryUUID(r, "category_id")
	if err != nil {
		return params, catalogsvc.ProductFilters{}, err
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return params, catalogsvc.ProductFilters{}, err
	}
	isNew, err := validators.ParseQueryBool(r, "new")
	if err != nil {
		return params, catalogsvc.ProductFilters{}, err
	}
	inStock, err := validators.ParseQueryBool(r, "in_stock")
	if err != nil {
		return params, catalogsvc.ProductFilters{}, err
	}
	sort, err := validators.ParseQueryEnum(r, "sort", catalogsvc.SortNewest, catalogsvc.SortKeys...)
	if err != nil {
		return params, catalogsvc.ProductFilters{}, err
	}

	filters := catalogsvc.ProductFilters{
		CategoryID:   categoryID,
		CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
		Query:        validators.SanitizeString(r.URL.Query().Get("q"), 120),
		Featured:     featured,
		New:          isNew,
		InStock:      inStock,
		Sort:         sort,
	}
	return params, filters, nil
}
