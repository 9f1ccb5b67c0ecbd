package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"travelbook/entity"
)

type walletResponse struct {
	Balance      float64                     `json:"balance"`
	Currency     string                      `json:"currency"`
	Transactions []walletTransactionResponse `json:"transactions"`
}

func (s *Server) GetWallet(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	balance, currency, err := s.wallet.Balance(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	txns, err := s.wallet.RecentTransactions(c.Request().Context(), uid, 10)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, walletResponse{
		Balance:  balance,
		Currency: currency,
		Transactions: lo.Map(txns, func(t entity.WalletTransaction, _ int) walletTransactionResponse {
			return toWalletTransactionResponse(t)
		}),
	})
}

type postWalletAdjustRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Type      string  `json:"type" validate:"required,oneof=credit debit"`
	Reason    string  `json:"reason" validate:"required"`
	Reference string  `json:"reference"`
}

func (s *Server) PostWalletAdjust(c echo.Context) error {
	if err := s.requireAdmin(c); err != nil {
		return err
	}
	actor := c.Request().Header.Get("X-User-ID")

	var request postWalletAdjustRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	txn, err := s.wallet.Adjust(c.Request().Context(), entity.WalletAdjustment{
		UserID:    request.UserID,
		Amount:    request.Amount,
		Type:      entity.WalletTransactionType(request.Type),
		Reason:    request.Reason,
		ActorID:   actor,
		Reference: request.Reference,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toWalletTransactionResponse(txn))
}
