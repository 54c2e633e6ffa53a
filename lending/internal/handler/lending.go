package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (h *Handler) ListLoans(c echo.Context) error {
	page, size, err := paging(c)
	if err != nil {
		return err
	}
	loans, err := h.lendingSvc.ListLoans(c.Request().Context(), page, size)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ListFineEligibleLoans(c echo.Context) error {
	loans, err := h.lendingSvc.ListFineEligibleLoans(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	loan, err := h.lendingSvc.GetLoan(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) AddLoan(c echo.Context) error {
	var req model.LoanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.lendingSvc.AddLoan(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) UpdateLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.LoanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.lendingSvc.UpdateLoan(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.ReturnLoanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.lendingSvc.ReturnLoan(c.Request().Context(), id, req.ReturnDate); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.lendingSvc.DeleteLoan(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListFines(c echo.Context) error {
	fines, err := h.lendingSvc.ListFines(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, fines)
}

func (h *Handler) AddFine(c echo.Context) error {
	var req model.FineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.lendingSvc.AddFine(c.Request().Context(), req.LoanID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) DeleteFine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.lendingSvc.DeleteFine(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPayments(c echo.Context) error {
	payments, err := h.lendingSvc.ListPayments(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) AddPayment(c echo.Context) error {
	var req model.PaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.lendingSvc.AddPayment(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) DeletePayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.lendingSvc.DeletePayment(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) LoanFineDetails(c echo.Context) error {
	details, err := h.lendingSvc.LoanFineDetails(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *Handler) MemberBalances(c echo.Context) error {
	balances, err := h.lendingSvc.MemberBalances(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, balances)
}
