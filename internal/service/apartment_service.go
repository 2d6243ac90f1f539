package service

import (
	"context"
	"fmt"
	"time"

	"condo-assistant-be/internal/dto"
	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IApartmentService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateApartmentRequest) (*dto.CreateApartmentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ApartmentResponse, error)
	GetById(ctx context.Context, userId uuid.UUID, apartmentId uuid.UUID) (*dto.ApartmentResponse, error)
}

type apartmentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewApartmentService(uowFactory unitofwork.RepositoryFactory) IApartmentService {
	return &apartmentService{uowFactory: uowFactory}
}

func (s *apartmentService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateApartmentRequest) (*dto.CreateApartmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	apartment := entity.Apartment{
		Id:        uuid.New(),
		Name:      request.Name,
		Address:   request.Address,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.ApartmentRepository().Create(ctx, &apartment); err != nil {
		return nil, err
	}

	return &dto.CreateApartmentResponse{Id: apartment.Id}, nil
}

func (s *apartmentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ApartmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	apartments, err := uow.ApartmentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ApartmentResponse, 0, len(apartments))
	for _, a := range apartments {
		response = append(response, &dto.ApartmentResponse{
			Id:        a.Id,
			Name:      a.Name,
			Address:   a.Address,
			CreatedAt: a.CreatedAt,
		})
	}

	return response, nil
}

func (s *apartmentService) GetById(ctx context.Context, userId uuid.UUID, apartmentId uuid.UUID) (*dto.ApartmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	apartment, err := uow.ApartmentRepository().FindOne(ctx,
		specification.ByID{ID: apartmentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if apartment == nil {
		return nil, fmt.Errorf("apartment not found or access denied")
	}

	return &dto.ApartmentResponse{
		Id:        apartment.Id,
		Name:      apartment.Name,
		Address:   apartment.Address,
		CreatedAt: apartment.CreatedAt,
	}, nil
}
