package model

import "time"

// Line is a production line inside a plant revision. Number is a positive multiple of 100.
type Line struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PlantID   uint      `gorm:"column:plant_id;not null;uniqueIndex:uk_line_plant_number,priority:1" json:"plant_id"`
	Number    int       `gorm:"column:number;not null;uniqueIndex:uk_line_plant_number,priority:2" json:"number"`
	MinX      *int      `gorm:"column:min_x" json:"min_x"`
	MaxX      *int      `gorm:"column:max_x" json:"max_x"`
	MinY      *int      `gorm:"column:min_y" json:"min_y"`
	MaxY      *int      `gorm:"column:max_y" json:"max_y"`
}

// TableName overrides gorm to use line table.
func (Line) TableName() string {
	return "line"
}
