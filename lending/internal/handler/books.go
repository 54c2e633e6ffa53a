package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (h *Handler) ListBooks(c echo.Context) error {
	page, size, err := paging(c)
	if err != nil {
		return err
	}
	status := model.RentalStatus(c.QueryParam("status"))
	books, err := h.lendingSvc.ListBooks(c.Request().Context(), status, page, size)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.lendingSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) AddBook(c echo.Context) error {
	var req model.BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.lendingSvc.AddBook(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.lendingSvc.UpdateBook(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.lendingSvc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
