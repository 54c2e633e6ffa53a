package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (s *Service) normalizeBook(req model.BookRequest) (model.BookRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Language = strings.TrimSpace(req.Language)
	req.Genres = trimAll(req.Genres)
	if err := s.validate(req); err != nil {
		return req, err
	}
	if maxYear := s.clock.Now().Year() + 1; req.PublishingYear > maxYear {
		return req, errs.Validationf("publishing year must be between 1000 and %d", maxYear)
	}
	return req, nil
}

func (s *Service) AddBook(ctx context.Context, req model.BookRequest) (int64, error) {
	req, err := s.normalizeBook(req)
	if err != nil {
		return 0, err
	}
	return s.repo.AddBook(ctx, req)
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req model.BookRequest) error {
	if err := checkID("book id", id); err != nil {
		return err
	}
	req, err := s.normalizeBook(req)
	if err != nil {
		return err
	}
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := checkID("book id", id); err != nil {
		return err
	}
	return s.repo.DeleteBook(ctx, id)
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	if err := checkID("book id", id); err != nil {
		return model.Book{}, err
	}
	return s.repo.GetBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, status model.RentalStatus, page, size int) (model.ListBooks, error) {
	switch status {
	case "", model.StatusAvailable, model.StatusRented:
	default:
		return model.ListBooks{}, errs.Validationf("unknown rental status %q", status)
	}
	if err := checkPaging(page, size); err != nil {
		return model.ListBooks{}, err
	}
	return s.repo.ListBooks(ctx, status, page, size)
}
