package domain

import "errors"

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrInvalidListingData = errors.New("invalid listing data")
	ErrForbidden          = errors.New("user not authorized to perform this action")
	ErrListingExpired     = errors.New("listing has expired")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTooManyAttachments = errors.New("a listing can have at most 3 attachments")
	ErrInvalidSortOption  = errors.New("invalid sort option")
	ErrUserNotFound       = errors.New("user not found")
)
