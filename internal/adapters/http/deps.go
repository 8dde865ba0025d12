package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"

	"github.com/pedrofarias/storefinder/internal/adapters/postgres"
	"github.com/pedrofarias/storefinder/internal/adapters/valkey"
	"github.com/pedrofarias/storefinder/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Stores   *usecases.StoreService
	PDVs     *usecases.PDVService
	Validate *validator.Validate
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}

// NewDependencies wires handler dependencies with a shared validator.
func NewDependencies(stores *usecases.StoreService, pdvs *usecases.PDVService) *Dependencies {
	return &Dependencies{
		Stores:   stores,
		PDVs:     pdvs,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}
