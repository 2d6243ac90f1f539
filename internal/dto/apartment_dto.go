package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateApartmentRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

type CreateApartmentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ApartmentResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
