package api

// LineCreateRequest creates a line and optionally a row of ungrouped tanks laid
// out along X with a pitch of width+gap.
type LineCreateRequest struct {
	PlantID uint `json:"plant_id" validate:"gt=0"`
	Number  int  `json:"number" validate:"linenumber"`
	MinX    *int `json:"min_x"`
	MaxX    *int `json:"max_x"`
	MinY    *int `json:"min_y"`
	MaxY    *int `json:"max_y"`

	Count     int `json:"count" validate:"gte=0,lte=1000"`
	Width     int `json:"width" validate:"gte=0"`
	Length    int `json:"length" validate:"gte=0"`
	Depth     int `json:"depth" validate:"gte=0"`
	XPosition int `json:"x_position"`
	YPosition int `json:"y_position"`
	ZPosition int `json:"z_position"`
	Gap       int `json:"gap" validate:"gte=0"`
}

// LineUpdateRequest replaces the number and bounds of a line.
type LineUpdateRequest struct {
	Number int  `json:"number" validate:"linenumber"`
	MinX   *int `json:"min_x"`
	MaxX   *int `json:"max_x"`
	MinY   *int `json:"min_y"`
	MaxY   *int `json:"max_y"`
}

// NextLineNumberResponse holds the first free line number of a plant.
type NextLineNumberResponse struct {
	NextNumber int `json:"next_number"`
}
