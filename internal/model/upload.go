package model

import "time"

// UploadImageResponse describes a stored source image
type UploadImageResponse struct {
	ID        string    `json:"id"`
	FileURL   string    `json:"fileUrl"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
