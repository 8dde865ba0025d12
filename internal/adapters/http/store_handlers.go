package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

type storeRequest struct {
	Name             string   `json:"name" validate:"required,min=1,max=120"`
	TakeOutInStore   bool     `json:"take_out_in_store"`
	ShippingTimeDays int      `json:"shipping_time_days" validate:"gte=0"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address          string   `json:"address" validate:"max=255"`
	District         string   `json:"district" validate:"max=120"`
	City             string   `json:"city" validate:"max=120"`
	State            string   `json:"state" validate:"max=60"`
	Country          string   `json:"country" validate:"max=60"`
	PostalCode       string   `json:"postal_code" validate:"omitempty,min=8,max=9"`
	Telephone        string   `json:"telephone" validate:"max=20"`
	Email            string   `json:"email" validate:"omitempty,email"`
}

// storeUpdateRequest relaxes required fields; absent fields keep their
// current values.
type storeUpdateRequest struct {
	Name             string   `json:"name" validate:"omitempty,min=1,max=120"`
	TakeOutInStore   bool     `json:"take_out_in_store"`
	ShippingTimeDays int      `json:"shipping_time_days" validate:"gte=0"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address          string   `json:"address" validate:"max=255"`
	District         string   `json:"district" validate:"max=120"`
	City             string   `json:"city" validate:"max=120"`
	State            string   `json:"state" validate:"max=60"`
	Country          string   `json:"country" validate:"max=60"`
	PostalCode       string   `json:"postal_code" validate:"omitempty,min=8,max=9"`
	Telephone        string   `json:"telephone" validate:"max=20"`
	Email            string   `json:"email" validate:"omitempty,email"`
}

func (r storeRequest) toDomain() *domain.Store {
	return &domain.Store{
		Name:             r.Name,
		TakeOutInStore:   r.TakeOutInStore,
		ShippingTimeDays: r.ShippingTimeDays,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Address:          r.Address,
		District:         r.District,
		City:             r.City,
		State:            r.State,
		Country:          r.Country,
		PostalCode:       domain.NormalizePostalCode(r.PostalCode),
		Telephone:        r.Telephone,
		Email:            r.Email,
	}
}

func (r storeUpdateRequest) toDomain() *domain.Store {
	return storeRequest(r).toDomain()
}

// CreateStoreHandler handles POST /v1/stores.
func CreateStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req storeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		store, err := deps.Stores.Create(c.UserContext(), req.toDomain())
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(store)
	}
}

// UpdateStoreHandler handles PUT /v1/stores/:id.
func UpdateStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req storeUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		store, err := deps.Stores.Update(c.UserContext(), c.Params("id"), req.toDomain())
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(store)
	}
}

// DeleteStoreHandler handles DELETE /v1/stores/:id.
func DeleteStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Stores.Delete(c.UserContext(), c.Params("id")); err != nil {
			return domainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetStoreHandler handles GET /v1/stores/:id.
func GetStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, err := deps.Stores.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(store)
	}
}

// ListStoresHandler handles GET /v1/stores.
func ListStoresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)

		stores, total, err := deps.Stores.List(c.UserContext(), limit, offset)
		if err != nil {
			return domainError(c, err)
		}

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: stores, Pagination: p})
	}
}

// StoresByStateHandler handles GET /v1/stores/state/:uf.
func StoresByStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)

		stores, total, state, err := deps.Stores.ListByState(c.UserContext(), c.Params("uf"), limit, offset)
		if err != nil {
			return domainError(c, err)
		}

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		return c.JSON(fiber.Map{
			"state":      state,
			"data":       stores,
			"pagination": p,
		})
	}
}

// StoresGroupedByStateHandler handles GET /v1/stores/states.
func StoresGroupedByStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		grouped, err := deps.Stores.GroupedByState(c.UserContext())
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(grouped)
	}
}

// NearbyStoresHandler handles GET /v1/stores/nearby, the coordinate-based
// radius query.
func NearbyStoresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil || lat < -90 || lat > 90 {
			return errBadRequest(c, "lat must be a number between -90 and 90")
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil || lng < -180 || lng > 180 {
			return errBadRequest(c, "lng must be a number between -180 and 180")
		}

		radiusKm := c.QueryFloat("radius_km", 50)
		limit := c.QueryInt("limit", 10)

		stores, err := deps.Stores.Nearby(c.UserContext(), lat, lng, radiusKm, limit)
		if err != nil {
			return domainError(c, err)
		}
		if stores == nil {
			stores = []domain.Store{}
		}
		return c.JSON(fiber.Map{"data": stores, "count": len(stores)})
	}
}

// StoresByCEPHandler handles GET /v1/stores/cep/:cep, the proximity search.
func StoresByCEPHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)

		result, err := deps.Stores.SearchByPostalCode(c.UserContext(), c.Params("cep"), limit, offset)
		if err != nil {
			return domainError(c, err)
		}

		p := Pagination{Offset: result.Offset, Limit: result.Limit, Total: result.Total}
		SetLinkHeaders(c, p)
		return c.JSON(result)
	}
}

func pageParams(c *fiber.Ctx) (limit, offset int) {
	return c.QueryInt("limit", 10), c.QueryInt("offset", 0)
}
