package dto

type SponsorRequest struct {
	BrandName    string `form:"brand_name" json:"brand_name" binding:"required,max=100"`
	BrandProfile string `form:"brand_profile" json:"brand_profile" binding:"max=10000"`
}

type DealRequest struct {
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"max=5000"`
	Code        string `form:"code" json:"code" binding:"max=100"`
	URL         string `form:"url" json:"url" binding:"omitempty,url"`
}
