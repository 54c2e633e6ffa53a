package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (r *repository) AddMember(ctx context.Context, req model.MemberRequest) (int64, error) {
	var memberID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		addressID, err := r.resolveAddress(ctx, tx, req.Street, req.City, req.Province)
		if err != nil {
			return err
		}
		id, err := r.insertID(ctx, tx, r.qb.Insert(membersTableName).
			Columns("first_name", "last_name", "join_date", "email", "phone_number", "address_id").
			Values(req.FirstName, req.LastName, req.JoinDate, req.Email, req.Phone, addressID))
		if err != nil {
			return translate(err, nil, "insert member")
		}
		memberID = id
		return nil
	})
	return memberID, err
}

func (r *repository) UpdateMember(ctx context.Context, id int64, req model.MemberRequest) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		addressID, err := r.resolveAddress(ctx, tx, req.Street, req.City, req.Province)
		if err != nil {
			return err
		}
		n, err := r.exec(ctx, tx, r.qb.Update(membersTableName).
			Set("first_name", req.FirstName).
			Set("last_name", req.LastName).
			Set("join_date", req.JoinDate).
			Set("email", req.Email).
			Set("phone_number", req.Phone).
			Set("address_id", addressID).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, nil, "update member")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

// resolveAddress walks the province -> city -> address chain, creating
// the missing links.
func (r *repository) resolveAddress(ctx context.Context, tx DBTX, street, city, province string) (int64, error) {
	provinceID, err := r.findOrCreate(ctx, tx, provincesTableName, sq.Eq{"province": province})
	if err != nil {
		return 0, err
	}
	cityID, err := r.findOrCreate(ctx, tx, citiesTableName, sq.Eq{"city": city, "province_id": provinceID})
	if err != nil {
		return 0, err
	}
	return r.findOrCreate(ctx, tx, addressesTableName, sq.Eq{"street": street, "city_id": cityID})
}

func (r *repository) DeleteMember(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		active, err := r.count(ctx, tx, loansTableName, sq.And{
			sq.Eq{"member_id": id},
			sq.Eq{"return_date": nil},
		})
		if err != nil {
			return err
		}
		if active > 0 {
			return errs.ErrMemberHasActiveLoans
		}
		n, err := r.exec(ctx, tx, r.qb.Delete(membersTableName).Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, errs.ErrHasDependentLoans, "delete member")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

func (r *repository) ListMembers(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.selectAll(ctx, r.db, &members, r.qb.Select(
		"m.id", "m.first_name", "m.last_name", "m.join_date", "m.email", "m.phone_number",
		"m.address_id", "a.street", "c.city", "p.province").
		From(membersTableName+" m").
		Join(addressesTableName+" a on a.id = m.address_id").
		Join(citiesTableName+" c on c.id = a.city_id").
		Join(provincesTableName+" p on p.id = c.province_id").
		OrderBy("m.id"))
	return members, err
}
