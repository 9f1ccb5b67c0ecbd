package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"

	"travelbook/entity"
)

type Repository interface {
	Store(ctx context.Context, booking entity.Booking) error
	Get(ctx context.Context, bookingID string) (entity.Booking, error)
	GetByCode(ctx context.Context, bookingCode string) (entity.Booking, error)
	Update(ctx context.Context, bookingID string, updateFn func(booking *entity.Booking) error) error
	FindByUser(ctx context.Context, userID string) ([]entity.Booking, error)
}

type TaxConfigsRepository interface {
	GetActive(ctx context.Context) (*entity.TaxConfig, error)
}

// Service owns the booking lifecycle: creation, status transitions and guide
// assignment. Money movements are the payment orchestrator's job.
type Service struct {
	bookings   Repository
	taxConfigs TaxConfigsRepository
}

func NewService(bookings Repository, taxConfigs TaxConfigsRepository) *Service {
	if bookings == nil {
		panic("missing bookings repository")
	}
	if taxConfigs == nil {
		panic("missing tax configs repository")
	}
	return &Service{
		bookings:   bookings,
		taxConfigs: taxConfigs,
	}
}

type CreateBookingRequest struct {
	UserID        string
	BookingType   entity.BookingType
	BaseFare      float64
	Currency      string
	GuideID       string
	PackageID     string
	DestinationID string
	TravelDetails entity.TravelDetails
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (entity.Booking, error) {
	if req.BaseFare <= 0 {
		return entity.Booking{}, entity.ErrInvalidAmount
	}

	taxConfig, err := s.taxConfigs.GetActive(ctx)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not load tax config: %w", err)
	}

	now := time.Now().UTC()

	b := entity.Booking{
		BookingID:     uuid.NewString(),
		BookingCode:   NewBookingCode(),
		UserID:        req.UserID,
		GuideID:       nullString(req.GuideID),
		PackageID:     nullString(req.PackageID),
		DestinationID: nullString(req.DestinationID),
		BookingType:   req.BookingType,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatePending,
		FareBreakdown: entity.CalculateFareBreakdown(req.BaseFare, 0, 0, req.Currency, taxConfig),
		TravelDetails: req.TravelDetails,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.AppendTimeline(string(entity.BookingStatusPending), "Booking created", req.UserID)

	if err := s.bookings.Store(ctx, b); err != nil {
		return entity.Booking{}, fmt.Errorf("could not store booking: %w", err)
	}

	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID string) (entity.Booking, error) {
	return s.bookings.Get(ctx, bookingID)
}

func (s *Service) ListBookings(ctx context.Context, userID string) ([]entity.Booking, error) {
	return s.bookings.FindByUser(ctx, userID)
}

// UpdateStatus moves a booking through the state machine, rejecting anything
// the transition table does not allow.
func (s *Service) UpdateStatus(ctx context.Context, bookingID string, to entity.BookingStatus, note, actor string) (entity.Booking, error) {
	var updated entity.Booking
	err := s.bookings.Update(ctx, bookingID, func(booking *entity.Booking) error {
		if err := booking.Transition(to, note, actor); err != nil {
			return err
		}
		updated = *booking
		return nil
	})
	if err != nil {
		return entity.Booking{}, err
	}
	return updated, nil
}

func (s *Service) AssignGuide(ctx context.Context, bookingID, guideID, actor string) (entity.Booking, error) {
	var updated entity.Booking
	err := s.bookings.Update(ctx, bookingID, func(booking *entity.Booking) error {
		booking.GuideID = nullString(guideID)
		booking.AppendTimeline("guide_assigned", fmt.Sprintf("Guide %s assigned", guideID), actor)
		updated = *booking
		return nil
	})
	if err != nil {
		return entity.Booking{}, err
	}
	return updated, nil
}

// NewBookingCode returns a short human-shareable code like BK-LH8M2K.
func NewBookingCode() string {
	id := strings.ToUpper(shortuuid.New())
	if len(id) > 8 {
		id = id[:8]
	}
	return "BK-" + id
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
