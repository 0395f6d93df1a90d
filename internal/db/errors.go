package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrDuplicateKeyword = errors.New("keyword already exists for this category")

	ErrCategoryNotFound = errors.New("ticket category not found")
)
