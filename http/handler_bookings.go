package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"travelbook/booking"
	"travelbook/entity"
)

type postBookingRequest struct {
	BookingType   string    `json:"booking_type" validate:"required,oneof=package custom guide"`
	BaseFare      float64   `json:"base_fare" validate:"required,gt=0"`
	Currency      string    `json:"currency" validate:"omitempty,len=3"`
	GuideID       string    `json:"guide_id"`
	PackageID     string    `json:"package_id"`
	DestinationID string    `json:"destination_id"`
	TravelFrom    string    `json:"travel_from" validate:"required"`
	TravelTo      string    `json:"travel_to" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Passengers    int       `json:"passengers" validate:"required,gte=1"`
}

func (s *Server) PostBooking(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var request postBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	b, err := s.bookings.CreateBooking(c.Request().Context(), booking.CreateBookingRequest{
		UserID:        uid,
		BookingType:   entity.BookingType(request.BookingType),
		BaseFare:      request.BaseFare,
		Currency:      request.Currency,
		GuideID:       request.GuideID,
		PackageID:     request.PackageID,
		DestinationID: request.DestinationID,
		TravelDetails: entity.TravelDetails{
			From:       request.TravelFrom,
			To:         request.TravelTo,
			StartDate:  request.StartDate,
			EndDate:    request.EndDate,
			Passengers: request.Passengers,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (s *Server) GetBooking(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	b, err := s.bookings.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if b.UserID != uid && s.requireAdmin(c) != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	return c.JSON(http.StatusOK, toBookingResponse(b))
}

func (s *Server) GetBookings(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	bookings, err := s.bookings.ListBookings(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lo.Map(bookings, func(b entity.Booking, _ int) bookingResponse {
		return toBookingResponse(b)
	}))
}

type patchBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed refunded"`
	Note   string `json:"note"`
}

func (s *Server) PatchBookingStatus(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var request patchBookingStatusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	b, err := s.bookings.UpdateStatus(c.Request().Context(), c.Param("id"), entity.BookingStatus(request.Status), request.Note, uid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookingResponse(b))
}

type postAssignGuideRequest struct {
	GuideID string `json:"guide_id" validate:"required"`
}

func (s *Server) PostAssignGuide(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var request postAssignGuideRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	b, err := s.bookings.AssignGuide(c.Request().Context(), c.Param("id"), request.GuideID, uid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookingResponse(b))
}
