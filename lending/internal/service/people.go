package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (s *Service) normalizeMember(req model.MemberRequest) (model.MemberRequest, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = trimPtr(req.Email)
	req.Phone = trimPtr(req.Phone)
	req.Street = strings.TrimSpace(req.Street)
	req.City = strings.TrimSpace(req.City)
	req.Province = strings.TrimSpace(req.Province)
	if err := s.validate(req); err != nil {
		return req, err
	}
	if req.JoinDate.IsZero() {
		return req, errs.Validationf("join date is required")
	}
	return req, nil
}

func (s *Service) AddMember(ctx context.Context, req model.MemberRequest) (int64, error) {
	req, err := s.normalizeMember(req)
	if err != nil {
		return 0, err
	}
	return s.repo.AddMember(ctx, req)
}

func (s *Service) UpdateMember(ctx context.Context, id int64, req model.MemberRequest) error {
	if err := checkID("member id", id); err != nil {
		return err
	}
	req, err := s.normalizeMember(req)
	if err != nil {
		return err
	}
	return s.repo.UpdateMember(ctx, id, req)
}

func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	if err := checkID("member id", id); err != nil {
		return err
	}
	return s.repo.DeleteMember(ctx, id)
}

func (s *Service) ListMembers(ctx context.Context) ([]model.Member, error) {
	return s.repo.ListMembers(ctx)
}

func (s *Service) normalizeStaff(req model.StaffRequest) (model.StaffRequest, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = trimPtr(req.Email)
	req.Phone = trimPtr(req.Phone)
	req.Roles = trimAll(req.Roles)
	return req, s.validate(req)
}

func (s *Service) AddStaff(ctx context.Context, req model.StaffRequest) (int64, error) {
	req, err := s.normalizeStaff(req)
	if err != nil {
		return 0, err
	}
	return s.repo.AddStaff(ctx, req)
}

func (s *Service) UpdateStaff(ctx context.Context, id int64, req model.StaffRequest) error {
	if err := checkID("staff id", id); err != nil {
		return err
	}
	req, err := s.normalizeStaff(req)
	if err != nil {
		return err
	}
	return s.repo.UpdateStaff(ctx, id, req)
}

func (s *Service) DeleteStaff(ctx context.Context, id int64) error {
	if err := checkID("staff id", id); err != nil {
		return err
	}
	return s.repo.DeleteStaff(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context) ([]model.Staff, error) {
	return s.repo.ListStaff(ctx)
}
