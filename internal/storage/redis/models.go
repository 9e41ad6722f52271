package redis

type UserState struct {
	Step     string    `json:"step"`
	Userdata *UserData `json:"user_data,omitempty"`
	Paint    *Paint    `json:"paint,omitempty"`
	Floor    *Floor    `json:"floor,omitempty"`
}

type UserData struct {
	Username       string `json:"username,omitempty"`
	ConsentGranted bool   `json:"consent_granted"`
}

// Paint is the wall-painting calculation being filled in step by step.
type Paint struct {
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Walls        *int     `json:"walls,omitempty"`
	OpeningsArea *float64 `json:"openings_area,omitempty"`
	Coats        *int     `json:"coats,omitempty"`
}

// Floor is the flooring calculation being filled in. BoxCoverage is m² per box.
type Floor struct {
	FloorType   *string  `json:"floor_type,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Length      *float64 `json:"length,omitempty"`
	BoxCoverage *float64 `json:"box_coverage,omitempty"`
}
