package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/stridehq/stride/internal/model"
)

var (
	ErrCheckInNotFound  = errors.New("check-in not found")
	ErrDuplicateCheckIn = errors.New("check-in already exists for this date")
)

type CheckInRepository interface {
	Create(checkIn *model.CheckIn) error
	ByID(userID, checkInID string) (*model.CheckIn, error)
	ByDate(userID, date string) (*model.CheckIn, error)
	CheckIns(userID string, limit int) ([]*model.CheckIn, error)
	Delete(userID, checkInID string) error
	Count() (int, error)
}

type checkInRepository struct {
	db *sqlx.DB
}

func NewCheckInRepository(db *sqlx.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Create(checkIn *model.CheckIn) error {
	query := `INSERT INTO check_ins (id, user_id, goal_id, date, rating, reflection, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		checkIn.ID,
		checkIn.UserID,
		checkIn.GoalID,
		checkIn.Date,
		checkIn.Rating,
		checkIn.Reflection,
		checkIn.CreatedAt,
	)
	if err != nil {
		// Unique index on (user_id, date): one check-in per calendar day
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateCheckIn
		}
		return err
	}

	return nil
}

func (r *checkInRepository) ByID(userID, checkInID string) (*model.CheckIn, error) {
	checkIn := &model.CheckIn{}
	query := `SELECT * FROM check_ins WHERE id = $1 AND user_id = $2`

	err := r.db.Get(checkIn, query, checkInID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrCheckInNotFound
	}

	return checkIn, err
}

func (r *checkInRepository) ByDate(userID, date string) (*model.CheckIn, error) {
	checkIn := &model.CheckIn{}
	query := `SELECT * FROM check_ins WHERE user_id = $1 AND date = $2`

	err := r.db.Get(checkIn, query, userID, date)
	if err == sql.ErrNoRows {
		return nil, ErrCheckInNotFound
	}

	return checkIn, err
}

// CheckIns lists a user's check-ins, most recent date first. A limit of 0
// returns all of them.
func (r *checkInRepository) CheckIns(userID string, limit int) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn

	query := `SELECT * FROM check_ins WHERE user_id = $1 ORDER BY date DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	err := r.db.Select(&checkIns, query, args...)
	if err != nil {
		return nil, err
	}

	return checkIns, nil
}

func (r *checkInRepository) Delete(userID, checkInID string) error {
	query := `DELETE FROM check_ins WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, checkInID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrCheckInNotFound
	}

	return nil
}

func (r *checkInRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM check_ins`).Scan(&count)
	return count, err
}
