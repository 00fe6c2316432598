package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrTokenNotUpdated is returned by UpdateUserToken when the UPDATE
	// touched zero rows (the row vanished between lookup and write).
	ErrTokenNotUpdated = errors.New("user token not updated")
)
