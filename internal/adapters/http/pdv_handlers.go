package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

type pdvRequest struct {
	StoreID    string   `json:"store_id" validate:"required,uuid4"`
	Name       string   `json:"name" validate:"required,min=1,max=120"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address    string   `json:"address" validate:"max=255"`
	District   string   `json:"district" validate:"max=120"`
	City       string   `json:"city" validate:"max=120"`
	State      string   `json:"state" validate:"max=60"`
	Country    string   `json:"country" validate:"max=60"`
	PostalCode string   `json:"postal_code" validate:"omitempty,min=8,max=9"`
}

type pdvUpdateRequest struct {
	StoreID    string   `json:"store_id" validate:"omitempty,uuid4"`
	Name       string   `json:"name" validate:"omitempty,min=1,max=120"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address    string   `json:"address" validate:"max=255"`
	District   string   `json:"district" validate:"max=120"`
	City       string   `json:"city" validate:"max=120"`
	State      string   `json:"state" validate:"max=60"`
	Country    string   `json:"country" validate:"max=60"`
	PostalCode string   `json:"postal_code" validate:"omitempty,min=8,max=9"`
}

func (r pdvRequest) toDomain() *domain.PDV {
	return &domain.PDV{
		StoreID:    r.StoreID,
		Name:       r.Name,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Address:    r.Address,
		District:   r.District,
		City:       r.City,
		State:      r.State,
		Country:    r.Country,
		PostalCode: domain.NormalizePostalCode(r.PostalCode),
	}
}

func (r pdvUpdateRequest) toDomain() *domain.PDV {
	return pdvRequest(r).toDomain()
}

// CreatePDVHandler handles POST /v1/pdvs.
func CreatePDVHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pdvRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		pdv, err := deps.PDVs.Create(c.UserContext(), req.toDomain())
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pdv)
	}
}

// UpdatePDVHandler handles PUT /v1/pdvs/:id.
func UpdatePDVHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pdvUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		pdv, err := deps.PDVs.Update(c.UserContext(), c.Params("id"), req.toDomain())
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(pdv)
	}
}

// DeletePDVHandler handles DELETE /v1/pdvs/:id.
func DeletePDVHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.PDVs.Delete(c.UserContext(), c.Params("id")); err != nil {
			return domainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetPDVHandler handles GET /v1/pdvs/:id.
func GetPDVHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pdv, err := deps.PDVs.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(pdv)
	}
}

// ListPDVsHandler handles GET /v1/pdvs.
func ListPDVsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)

		pdvs, total, err := deps.PDVs.List(c.UserContext(), limit, offset)
		if err != nil {
			return domainError(c, err)
		}

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: pdvs, Pagination: p})
	}
}

// PDVsByStateHandler handles GET /v1/pdvs/state/:uf.
func PDVsByStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)

		pdvs, total, state, err := deps.PDVs.ListByState(c.UserContext(), c.Params("uf"), limit, offset)
		if err != nil {
			return domainError(c, err)
		}

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		return c.JSON(fiber.Map{
			"state":      state,
			"data":       pdvs,
			"pagination": p,
		})
	}
}

// PDVsByCEPHandler handles GET /v1/pdvs/cep/:cep, the proximity search.
func PDVsByCEPHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageParams(c)

		result, err := deps.PDVs.SearchByPostalCode(c.UserContext(), c.Params("cep"), limit, offset)
		if err != nil {
			return domainError(c, err)
		}

		p := Pagination{Offset: result.Offset, Limit: result.Limit, Total: result.Total}
		SetLinkHeaders(c, p)
		return c.JSON(result)
	}
}
