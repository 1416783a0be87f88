package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteDSN enables foreign keys and a busy timeout on every connection.
func SQLiteDSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := SQLiteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Users

const userColumns = `id, email, password_hash, username, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Username, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.CreatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, username, created_at) VALUES (?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Username, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrConflict
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, err
}

func (r *SQLiteRepository) UpdateUsername(ctx context.Context, id int64, username string) (core.User, error) {
	if err := r.execOne(ctx, `UPDATE users SET username = ? WHERE id = ?`, username, id); err != nil {
		return core.User{}, fmt.Errorf("update username: %w", err)
	}
	return r.UserByID(ctx, id)
}

func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	if err := r.execOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM expenses WHERE user_id = ?`,
		`DELETE FROM budgets WHERE user_id = ?`,
		`DELETE FROM goals WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// execOne runs a statement that must touch exactly one row.
func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Expenses

const expenseColumns = `id, user_id, title, amount_cents, currency, category, date, payment_method,
	note, tags, merchant, is_recurring, frequency, is_split, splits, last_occurrence, created_at`

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                       core.Expense
		category, payment, freq string
		date, last, created     string
		tags, splits            string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Text, &e.Amount.Cents, &e.Currency, &category, &date, &payment,
		&e.Note, &tags, &e.Merchant, &e.IsRecurring, &freq, &e.IsSplit, &splits, &last, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, err
	}
	e.Category = core.Category(category)
	e.PaymentMethod = core.PaymentMethod(payment)
	e.Frequency = core.Frequency(freq)
	e.CreatedAt = parseTime(created)
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, err
	}
	if e.LastOccurrence, err = parseOptionalDate(last); err != nil {
		return core.Expense{}, err
	}
	if e.Tags, err = decodeTags([]byte(tags)); err != nil {
		return core.Expense{}, err
	}
	if e.Splits, err = decodeSplits([]byte(splits)); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	splits, err := encodeSplits(e.Splits)
	if err != nil {
		return core.Expense{}, err
	}
	e.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, title, amount_cents, currency, category, date, payment_method,
			note, tags, merchant, is_recurring, frequency, is_split, splits, last_occurrence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Text, e.Amount.Cents, e.Currency, string(e.Category), e.Date.String(), string(e.PaymentMethod),
		e.Note, tags, e.Merchant, e.IsRecurring, string(e.Frequency), e.IsSplit, splits, e.LastOccurrence.String(),
		formatTime(e.CreatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, err
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out, err := scanExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("scan expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}
	splits, err := encodeSplits(e.Splits)
	if err != nil {
		return core.Expense{}, err
	}
	err = r.execOne(ctx, `
		UPDATE expenses SET title = ?, amount_cents = ?, currency = ?, category = ?, date = ?,
			payment_method = ?, note = ?, tags = ?, merchant = ?, is_recurring = ?, frequency = ?,
			is_split = ?, splits = ?
		WHERE id = ? AND user_id = ?`,
		e.Text, e.Amount.Cents, e.Currency, string(e.Category), e.Date.String(), string(e.PaymentMethod),
		e.Note, tags, e.Merchant, e.IsRecurring, string(e.Frequency), e.IsSplit, splits, e.ID, e.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return r.GetExpense(ctx, e.UserID, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	err := r.execOne(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete expense: %w", err)
	}
	return err
}

func (r *SQLiteRepository) DeleteExpenses(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)
	rows, err := r.db.QueryContext(ctx,
		`DELETE FROM expenses WHERE id IN (`+placeholders+`) AND user_id = ? RETURNING id`, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk delete expenses: %w", err)
	}
	defer rows.Close()

	var removed []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted id: %w", err)
		}
		removed = append(removed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bulk delete expenses: %w", err)
	}
	return removed, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE is_recurring = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	out, err := scanExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("scan recurring expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkOccurred(ctx context.Context, id int64, on core.Date) error {
	err := r.execOne(ctx, `UPDATE expenses SET last_occurrence = ? WHERE id = ?`, on.String(), id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("mark occurred: %w", err)
	}
	return err
}

// Budgets

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var category, month string
	if err := row.Scan(&b.ID, &b.UserID, &category, &b.Amount.Cents, &month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, ErrNotFound
		}
		return core.Budget{}, err
	}
	b.Category = core.Category(category)
	key, err := core.ParseMonthKey(month)
	if err != nil {
		return core.Budget{}, err
	}
	b.Month = key
	return b, nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("begin upsert budget: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanBudget(tx.QueryRowContext(ctx,
		`SELECT id, user_id, category, amount_cents, month FROM budgets WHERE user_id = ? AND category = ? AND month = ?`,
		b.UserID, string(b.Category), b.Month.String()))
	created := false
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `UPDATE budgets SET amount_cents = ? WHERE id = ?`, b.Amount.Cents, existing.ID); err != nil {
			return core.Budget{}, false, fmt.Errorf("update budget: %w", err)
		}
		b.ID = existing.ID
	case errors.Is(err, ErrNotFound):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category, amount_cents, month) VALUES (?, ?, ?, ?)`,
			b.UserID, string(b.Category), b.Amount.Cents, b.Month.String())
		if err != nil {
			return core.Budget{}, false, fmt.Errorf("insert budget: %w", err)
		}
		if b.ID, err = res.LastInsertId(); err != nil {
			return core.Budget{}, false, fmt.Errorf("budget id: %w", err)
		}
		created = true
	default:
		return core.Budget{}, false, fmt.Errorf("find budget: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Budget{}, false, fmt.Errorf("commit budget: %w", err)
	}
	return b, created, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, amount_cents, month FROM budgets WHERE user_id = ? ORDER BY month, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()
	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	err := r.execOne(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete budget: %w", err)
	}
	return err
}

// Goals

const goalColumns = `id, user_id, name, target_cents, saved_cents, deadline, created_at`

func scanGoal(row rowScanner) (core.Goal, error) {
	var g core.Goal
	var deadline, created string
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.SavedAmount.Cents, &deadline, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, ErrNotFound
		}
		return core.Goal{}, err
	}
	var err error
	if g.Deadline, err = parseOptionalDate(deadline); err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = parseTime(created)
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.CreatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, name, target_cents, saved_cents, deadline, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount.Cents, g.SavedAmount.Cents, g.Deadline.String(), formatTime(g.CreatedAt))
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return core.Goal{}, fmt.Errorf("goal id: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, err
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	err := r.execOne(ctx,
		`UPDATE goals SET name = ?, target_cents = ?, saved_cents = ?, deadline = ? WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Cents, g.SavedAmount.Cents, g.Deadline.String(), g.ID, g.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.Goal{}, err
		}
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return r.GetGoal(ctx, g.UserID, g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	err := r.execOne(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete goal: %w", err)
	}
	return err
}
