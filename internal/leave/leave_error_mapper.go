package leave

import (
	"errors"

	leaveerrors "go-leave/internal/leave/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// serialization_failure, deadlock_detected
		case "40001", "40P01":
			return leaveerrors.ErrConcurrentModification
		// foreign_key_violation
		case "23503":
			return leaveerrors.ErrInvalidPersonID
		}
	}

	return err
}
