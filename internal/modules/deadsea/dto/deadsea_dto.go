package dto

type CreateUpdateRequest struct {
	Text      string  `form:"text" json:"text" binding:"required,max=10000"`
	Activity  string  `form:"activity" json:"activity" binding:"max=50"`
	Duration  string  `form:"duration" json:"duration" binding:"max=50"`
	Longitude float64 `form:"longitude" json:"longitude" binding:"min=-180,max=180"`
	Latitude  float64 `form:"latitude" json:"latitude" binding:"min=-90,max=90"`
}
