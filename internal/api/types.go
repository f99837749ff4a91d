package api

import "github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"

// SlotRecord is the wire form of one bookable slot.
type SlotRecord struct {
	SlotDate         string `json:"slot_date"`
	SlotTime         string `json:"slot_time"`
	DatetimeCombined string `json:"datetime_combined"`
}

type SlotsResponse struct {
	Success bool         `json:"success"`
	Slots   []SlotRecord `json:"slots"`
	Count   int          `json:"count"`
}

type AvailabilityResponse struct {
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type ServicesResponse struct {
	Success bool              `json:"success"`
	Data    []catalog.Package `json:"data"`
	Count   int               `json:"count"`
	Message string            `json:"message,omitempty"`
}

type ServiceResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    *catalog.Package `json:"data"`
}

type CreateServiceRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       Number   `json:"price"`
	Currency    *string  `json:"currency"`
	Duration    *int     `json:"duration"`
	Features    []string `json:"features"`
	Icon        *string  `json:"icon"`
	Popular     *bool    `json:"popular"`
}

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    any    `json:"data,omitempty"`
}
