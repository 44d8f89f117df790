package store

import (
	"context"
	"database/sql"
)

// QuotaRepo enforces the daily free-tier scan limit. The consume path is one
// conditional UPDATE so two concurrent requests for the same user cannot
// both pass when only one scan remains.
type QuotaRepo struct{ DB *sql.DB }

func NewQuotaRepo(db *sql.DB) *QuotaRepo { return &QuotaRepo{DB: db} }

// Consume tries to spend one scan for userID. dailyLimit is the allotment a
// stale row is reset to before decrementing. Premium rows always pass and
// are never mutated.
func (r *QuotaRepo) Consume(ctx context.Context, userID string, dailyLimit int) (bool, error) {
	// Row is created lazily with the full allotment.
	const ins = `
insert into scan_quotas (user_id, remaining, last_reset)
values ($1, $2, current_date)
on conflict (user_id) do nothing`
	if _, err := r.DB.ExecContext(ctx, ins, userID, dailyLimit); err != nil {
		return false, err
	}

	// Reset-if-stale and decrement-if-positive in one statement. No row
	// returned means the user is out of scans for today.
	const upd = `
update scan_quotas
set remaining = case
        when premium then remaining
        when last_reset < current_date then $2 - 1
        else remaining - 1
    end,
    last_reset = case when premium then last_reset else current_date end
where user_id = $1
  and (premium or last_reset < current_date or remaining > 0)
returning remaining`
	var remaining int
	err := r.DB.QueryRowContext(ctx, upd, userID, dailyLimit).Scan(&remaining)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetPremium flips the unlimited flag for a user.
func (r *QuotaRepo) SetPremium(ctx context.Context, userID string, premium bool) error {
	const q = `
insert into scan_quotas (user_id, remaining, last_reset, premium)
values ($1, 0, current_date, $2)
on conflict (user_id) do update set premium = excluded.premium`
	_, err := r.DB.ExecContext(ctx, q, userID, premium)
	return err
}
