package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

var bookColumns = []string{"id", "title", "author", "publishing_year", "book_language", "rental_status"}

func (r *repository) AddBook(ctx context.Context, req model.BookRequest) (int64, error) {
	var bookID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		id, err := r.insertID(ctx, tx, r.qb.Insert(booksTableName).
			Columns("title", "author", "publishing_year", "book_language", "rental_status").
			Values(req.Title, req.Author, req.PublishingYear, req.Language, model.StatusAvailable))
		if err != nil {
			return translate(err, nil, "insert book")
		}
		if err := r.linkGenres(ctx, tx, id, req.Genres); err != nil {
			return err
		}
		bookID = id
		return nil
	})
	return bookID, err
}

func (r *repository) UpdateBook(ctx context.Context, id int64, req model.BookRequest) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		n, err := r.exec(ctx, tx, r.qb.Update(booksTableName).
			Set("title", req.Title).
			Set("author", req.Author).
			Set("publishing_year", req.PublishingYear).
			Set("book_language", req.Language).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, nil, "update book")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		if _, err := r.exec(ctx, tx, r.qb.Delete(bookGenreTableName).Where(sq.Eq{"book_id": id})); err != nil {
			return errors.Wrap(err, "unlink genres")
		}
		return r.linkGenres(ctx, tx, id, req.Genres)
	})
}

func (r *repository) linkGenres(ctx context.Context, tx DBTX, bookID int64, genres []string) error {
	for _, genre := range normalizeNames(genres) {
		genreID, err := r.findOrCreate(ctx, tx, genresTableName, sq.Eq{"genre": genre})
		if err != nil {
			return err
		}
		if _, err := r.exec(ctx, tx, r.qb.Insert(bookGenreTableName).
			Columns("book_id", "genre_id").
			Values(bookID, genreID)); err != nil {
			return translate(err, nil, "link genre")
		}
	}
	return nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		status, err := r.lockBookStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if status == model.StatusRented {
			return errs.ErrBookRented
		}
		if _, err := r.exec(ctx, tx, r.qb.Delete(bookGenreTableName).Where(sq.Eq{"book_id": id})); err != nil {
			return errors.Wrap(err, "unlink genres")
		}
		n, err := r.exec(ctx, tx, r.qb.Delete(booksTableName).Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, errs.ErrHasDependentLoans, "delete book")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

// lockBookStatus reads the rental status of a book, locking its row for
// the rest of the transaction.
func (r *repository) lockBookStatus(ctx context.Context, tx DBTX, id int64) (model.RentalStatus, error) {
	var status model.RentalStatus
	err := r.get(ctx, tx, &status, r.forUpdate(
		r.qb.Select("rental_status").From(booksTableName).Where(sq.Eq{"id": id})))
	if err != nil {
		return "", err
	}
	return status, nil
}

func (r *repository) setBookStatus(ctx context.Context, tx DBTX, id int64, status model.RentalStatus) error {
	n, err := r.exec(ctx, tx, r.qb.Update(booksTableName).
		Set("rental_status", status).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrapf(err, "set book %d %s", id, status)
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	var book model.Book
	if err := r.get(ctx, r.db, &book, r.qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id})); err != nil {
		return model.Book{}, err
	}
	books := []model.Book{book}
	if err := r.attachGenres(ctx, books); err != nil {
		return model.Book{}, err
	}
	return books[0], nil
}

func (r *repository) ListBooks(ctx context.Context, status model.RentalStatus, page, size int) (model.ListBooks, error) {
	q := r.qb.Select(bookColumns...).From(booksTableName).OrderBy("id")
	if status != "" {
		q = q.Where(sq.Eq{"rental_status": status})
	}
	q = paginate(q, page, size)

	var books []model.Book
	if err := r.selectAll(ctx, r.db, &books, q); err != nil {
		return model.ListBooks{}, err
	}
	if err := r.attachGenres(ctx, books); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) attachGenres(ctx context.Context, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	type row struct {
		BookID int64  `db:"book_id"`
		Genre  string `db:"genre"`
	}
	var rows []row
	if err := r.selectAll(ctx, r.db, &rows, r.qb.Select("bg.book_id", "g.genre").
		From(bookGenreTableName+" bg").
		Join(genresTableName+" g on g.id = bg.genre_id").
		Where(sq.Eq{"bg.book_id": ids}).
		OrderBy("g.genre")); err != nil {
		r.log.Error("attachGenres", zap.Error(err))
		return err
	}

	byBook := make(map[int64][]string, len(books))
	for _, rw := range rows {
		byBook[rw.BookID] = append(byBook[rw.BookID], rw.Genre)
	}
	for i := range books {
		books[i].Genres = byBook[books[i].ID]
		if books[i].Genres == nil {
			books[i].Genres = []string{}
		}
	}
	return nil
}
