package api

import "github.com/yi-nology/stl_backend/biz/dal/model"

// TankGroupCreateRequest creates a tank group on a line.
type TankGroupCreateRequest struct {
	Name    string `json:"name" validate:"notblank,max=255"`
	Number  *int   `json:"number" validate:"omitempty,gt=0"`
	PlantID uint   `json:"plant_id" validate:"gt=0"`
	LineID  uint   `json:"line_id" validate:"gt=0"`
}

// TankGroupUpdateRequest changes only the fields that are present.
type TankGroupUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank,max=255"`
	Number  *int    `json:"number" validate:"omitempty,gt=0"`
	PlantID *uint   `json:"plant_id" validate:"omitempty,gt=0"`
	LineID  *uint   `json:"line_id" validate:"omitempty,gt=0"`
}

// TankGroupWithTanks is a tank group with its tanks.
type TankGroupWithTanks struct {
	model.TankGroup
	Tanks []model.Tank `json:"tanks"`
}

// TankCreateRequest creates a tank inside a tank group.
type TankCreateRequest struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Number      *int   `json:"number" validate:"omitempty,gt=0"`
	TankGroupID uint   `json:"tank_group_id" validate:"gt=0"`
	PlantID     uint   `json:"plant_id" validate:"gt=0"`
	Width       *int   `json:"width" validate:"omitempty,gt=0"`
	Length      *int   `json:"length" validate:"omitempty,gt=0"`
	Depth       *int   `json:"depth" validate:"omitempty,gt=0"`
	Space       *int   `json:"space" validate:"omitempty,gt=0"`
	XPosition   int    `json:"x_position"`
	YPosition   int    `json:"y_position"`
	ZPosition   int    `json:"z_position"`
}

// TankUpdateRequest changes only the fields that are present.
type TankUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Number      *int    `json:"number" validate:"omitempty,gt=0"`
	TankGroupID *uint   `json:"tank_group_id" validate:"omitempty,gt=0"`
	PlantID     *uint   `json:"plant_id" validate:"omitempty,gt=0"`
	Width       *int    `json:"width" validate:"omitempty,gt=0"`
	Length      *int    `json:"length" validate:"omitempty,gt=0"`
	Depth       *int    `json:"depth" validate:"omitempty,gt=0"`
	Space       *int    `json:"space" validate:"omitempty,gt=0"`
	XPosition   *int    `json:"x_position"`
	YPosition   *int    `json:"y_position"`
	ZPosition   *int    `json:"z_position"`
}
