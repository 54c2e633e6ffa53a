package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	"github.com/Astemirdum/bookbuster/lending/internal/model"
)

func (r *repository) AddStaff(ctx context.Context, req model.StaffRequest) (int64, error) {
	var staffID int64
	err := r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		id, err := r.insertID(ctx, tx, r.qb.Insert(staffTableName).
			Columns("first_name", "last_name", "email", "phone_number").
			Values(req.FirstName, req.LastName, req.Email, req.Phone))
		if err != nil {
			return translate(err, nil, "insert staff")
		}
		if err := r.linkRoles(ctx, tx, id, req.Roles); err != nil {
			return err
		}
		staffID = id
		return nil
	})
	return staffID, err
}

func (r *repository) UpdateStaff(ctx context.Context, id int64, req model.StaffRequest) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		n, err := r.exec(ctx, tx, r.qb.Update(staffTableName).
			Set("first_name", req.FirstName).
			Set("last_name", req.LastName).
			Set("email", req.Email).
			Set("phone_number", req.Phone).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, nil, "update staff")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		if _, err := r.exec(ctx, tx, r.qb.Delete(staffRoleTableName).Where(sq.Eq{"staff_id": id})); err != nil {
			return errors.Wrap(err, "unlink roles")
		}
		return r.linkRoles(ctx, tx, id, req.Roles)
	})
}

func (r *repository) linkRoles(ctx context.Context, tx DBTX, staffID int64, roles []string) error {
	for _, role := range normalizeNames(roles) {
		roleID, err := r.findOrCreate(ctx, tx, rolesTableName, sq.Eq{"role_name": role})
		if err != nil {
			return err
		}
		if _, err := r.exec(ctx, tx, r.qb.Insert(staffRoleTableName).
			Columns("staff_id", "role_id").
			Values(staffID, roleID)); err != nil {
			return translate(err, nil, "link role")
		}
	}
	return nil
}

func (r *repository) DeleteStaff(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		processed, err := r.count(ctx, tx, loansTableName, sq.Eq{"staff_id": id})
		if err != nil {
			return err
		}
		if processed > 0 {
			return errs.ErrStaffHasLoans
		}
		if _, err := r.exec(ctx, tx, r.qb.Delete(staffRoleTableName).Where(sq.Eq{"staff_id": id})); err != nil {
			return errors.Wrap(err, "unlink roles")
		}
		n, err := r.exec(ctx, tx, r.qb.Delete(staffTableName).Where(sq.Eq{"id": id}))
		if err != nil {
			return translate(err, errs.ErrHasDependentLoans, "delete staff")
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

func (r *repository) ListStaff(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	if err := r.selectAll(ctx, r.db, &staff, r.qb.Select("id", "first_name", "last_name", "email", "phone_number").
		From(staffTableName).
		OrderBy("id")); err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return staff, nil
	}

	type row struct {
		StaffID  int64  `db:"staff_id"`
		RoleName string `db:"role_name"`
	}
	var rows []row
	if err := r.selectAll(ctx, r.db, &rows, r.qb.Select("sr.staff_id", "ro.role_name").
		From(staffRoleTableName+" sr").
		Join(rolesTableName+" ro on ro.id = sr.role_id").
		OrderBy("ro.role_name")); err != nil {
		return nil, err
	}
	byStaff := make(map[int64][]string, len(staff))
	for _, rw := range rows {
		byStaff[rw.StaffID] = append(byStaff[rw.StaffID], rw.RoleName)
	}
	for i := range staff {
		staff[i].Roles = byStaff[staff[i].ID]
		if staff[i].Roles == nil {
			staff[i].Roles = []string{}
		}
	}
	return staff, nil
}
