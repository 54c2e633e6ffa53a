package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (h *Handler) ListMembers(c echo.Context) error {
	members, err := h.lendingSvc.ListMembers(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) AddMember(c echo.Context) error {
	var req model.MemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.lendingSvc.AddMember(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.MemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.lendingSvc.UpdateMember(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.lendingSvc.DeleteMember(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListStaff(c echo.Context) error {
	staff, err := h.lendingSvc.ListStaff(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *Handler) AddStaff(c echo.Context) error {
	var req model.StaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := h.lendingSvc.AddStaff(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: id})
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.StaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.lendingSvc.UpdateStaff(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.lendingSvc.DeleteStaff(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
