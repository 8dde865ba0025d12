package domain

import (
	"time"
)

// Store represents a physical retail store (type LOJA).
type Store struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	TakeOutInStore   bool      `json:"take_out_in_store"`
	ShippingTimeDays int       `json:"shipping_time_days"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Address          string    `json:"address,omitempty"`
	District         string    `json:"district,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	Country          string    `json:"country,omitempty"`
	PostalCode       string    `json:"postal_code,omitempty"`
	Telephone        string    `json:"telephone,omitempty"`
	Email            string    `json:"email,omitempty"`
	PDVs             []PDV     `json:"pdvs,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// PDV is a pickup point affiliated with a parent store.
type PDV struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"store_id"`
	Name       string    `json:"name"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Address    string    `json:"address,omitempty"`
	District   string    `json:"district,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Country    string    `json:"country,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Location returns the store's coordinates, or nil when it has none.
func (s *Store) Location() *Coordinates {
	if s.Latitude == nil || s.Longitude == nil {
		return nil
	}
	return &Coordinates{Lat: *s.Latitude, Lng: *s.Longitude}
}

// Location returns the PDV's coordinates, or nil when it has none.
func (p *PDV) Location() *Coordinates {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	return &Coordinates{Lat: *p.Latitude, Lng: *p.Longitude}
}

// Candidate converts a store into a proximity-search candidate.
func (s *Store) Candidate() CandidateLocation {
	return CandidateLocation{
		ID:          s.ID,
		Kind:        KindStore,
		Name:        s.Name,
		Coordinates: s.Location(),
		PostalCode:  s.PostalCode,
		City:        s.City,
	}
}

// Candidate converts a PDV into a proximity-search candidate.
func (p *PDV) Candidate() CandidateLocation {
	return CandidateLocation{
		ID:          p.ID,
		Kind:        KindPDV,
		Name:        p.Name,
		Coordinates: p.Location(),
		PostalCode:  p.PostalCode,
		City:        p.City,
		StoreID:     p.StoreID,
	}
}
