// Package api provides request and response models of the HTTP API.
package api

// CustomerCreateRequest creates a customer.
type CustomerCreateRequest struct {
	Name    string `json:"name" validate:"notblank,max=255"`
	Town    string `json:"town" validate:"max=255"`
	Country string `json:"country" validate:"max=255"`
}

// CustomerUpdateRequest changes only the fields that are present.
type CustomerUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank,max=255"`
	Town    *string `json:"town" validate:"omitempty,max=255"`
	Country *string `json:"country" validate:"omitempty,max=255"`
}

// CanDeleteResponse answers the can-delete checks.
type CanDeleteResponse struct {
	CanDelete  bool   `json:"can_delete"`
	PlantCount *int64 `json:"plant_count,omitempty"`
	TankCount  *int64 `json:"tank_count,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
