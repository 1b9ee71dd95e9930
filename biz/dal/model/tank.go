package model

import "time"

// TankGroup groups tanks on a line.
type TankGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Number    *int      `gorm:"column:number" json:"number"`
	PlantID   uint      `gorm:"column:plant_id;not null;index:idx_tank_group_plant" json:"plant_id"`
	LineID    uint      `gorm:"column:line_id;not null;index:idx_tank_group_line" json:"line_id"`
}

// TableName overrides gorm to use tank_group table.
func (TankGroup) TableName() string {
	return "tank_group"
}

// Tank is a leaf node. TankGroupID is nil for tanks generated with a line.
type Tank struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Number      *int      `gorm:"column:number" json:"number"`
	TankGroupID *uint     `gorm:"column:tank_group_id;index:idx_tank_group" json:"tank_group_id"`
	PlantID     uint      `gorm:"column:plant_id;not null;index:idx_tank_plant" json:"plant_id"`
	Width       *int      `gorm:"column:width" json:"width"`
	Length      *int      `gorm:"column:length" json:"length"`
	Depth       *int      `gorm:"column:depth" json:"depth"`
	XPosition   int       `gorm:"column:x_position;not null" json:"x_position"`
	YPosition   int       `gorm:"column:y_position;not null" json:"y_position"`
	ZPosition   int       `gorm:"column:z_position;not null" json:"z_position"`
	Space       *int      `gorm:"column:space" json:"space"`
}

// TableName overrides gorm to use tank table.
func (Tank) TableName() string {
	return "tank"
}
