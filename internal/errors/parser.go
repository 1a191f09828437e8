package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Classify converts a raw store error into an AppError.
// context names the operation (e.g. "delete tag") and ends up in the message.
func Classify(err error, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError(notFoundCode(context), context+": record not found", "")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(errStrLower)
	}

	// 2. PostgreSQL / SQLite 제약 조건 에러

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		if strings.Contains(errStrLower, "still referenced") {
			return Conflict(ResourceConflict, context+": resource is still referenced", "")
		}
		return NotFoundError(ResourceNotFound, context+": referenced resource does not exist", "")
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return Validation(ValidationRequired, context+": required column missing", nil)
	}

	// 3. 그 외는 모두 저장소 오류 (연결 끊김, 타임아웃, 트랜잭션 중단 등)
	return Storage(context, err)
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errLower string) *AppError {
	switch {
	case strings.Contains(errLower, "tools.slug") || strings.Contains(errLower, "idx_tools_slug"):
		return Conflict(ToolSlugExists, "a tool with this slug already exists", "slug")
	case strings.Contains(errLower, "tags.slug") || strings.Contains(errLower, "idx_tags_slug"):
		return Conflict(TagSlugExists, "a tag with this slug already exists", "slug")
	case strings.Contains(errLower, "email"):
		return Conflict(ResourceAlreadyExists, "email already registered", "email")
	default:
		return Conflict(ResourceAlreadyExists, "resource already exists", "")
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "tool"):
		return ToolNotFound
	case strings.Contains(contextLower, "tag"):
		return TagNotFound
	case strings.Contains(contextLower, "alert"):
		return AlertNotFound
	case strings.Contains(contextLower, "error log"):
		return ErrorLogNotFound
	default:
		return ResourceNotFound
	}
}
