package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/middleware"
)

// parseIDList reads a comma separated id list ("1,2,3"); empty means no filter
func parseIDList(raw, field string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, apperrors.Validation(apperrors.ValidationInvalidID,
				field+" must be a comma separated list of positive ids", map[string]string{field: "invalid"})
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(apperrors.ValidationInvalidID, name+" must be a positive integer",
			map[string]string{name: "invalid"})
	}
	return uint(id), nil
}

// parseTimeQuery accepts RFC3339 or a bare date (UTC midnight)
func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, apperrors.Validation(apperrors.ValidationInvalidFormat,
		name+" must be RFC3339 or YYYY-MM-DD", map[string]string{name: "invalid"})
}

func parseBoolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation(apperrors.ValidationInvalidFormat,
			name+" must be true or false", map[string]string{name: "invalid"})
	}
	return &v, nil
}

func parseIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.Validation(apperrors.ValidationInvalidFormat,
			name+" must be a non-negative integer", map[string]string{name: "invalid"})
	}
	return v, nil
}

// parseAnalyticsFilter reads start, end, period, tool_ids, tag_ids, include_inactive
func parseAnalyticsFilter(c *gin.Context) (service.AnalyticsFilter, error) {
	var filter service.AnalyticsFilter
	var err error

	if filter.Start, err = parseTimeQuery(c, "start"); err != nil {
		return filter, err
	}
	if filter.End, err = parseTimeQuery(c, "end"); err != nil {
		return filter, err
	}
	if filter.Period, err = service.ParsePeriod(c.Query("period")); err != nil {
		return filter, err
	}
	if filter.ToolIDs, err = parseIDList(c.Query("tool_ids"), "tool_ids"); err != nil {
		return filter, err
	}
	if filter.TagIDs, err = parseIDList(c.Query("tag_ids"), "tag_ids"); err != nil {
		return filter, err
	}
	inactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		return filter, err
	}
	filter.IncludeInactive = inactive != nil && *inactive
	return filter, nil
}

// respondError logs with the request logger and writes the mapped ErrorResponse
func respondError(c *gin.Context, msg string, err error, fields map[string]interface{}) {
	log := middleware.GetLoggerFromContext(c)
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindConflict:
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["error"] = err.Error()
		log.Warn(msg, fields)
	default:
		log.Error(msg, err, fields)
	}
	apperrors.Respond(c, err)
}

func bindError(err error) error {
	return apperrors.Validation(apperrors.ValidationInvalidInput, "invalid request body: "+err.Error(), nil)
}

func bindErrorf(msg string) error {
	return apperrors.Validation(apperrors.ValidationInvalidInput, msg, nil)
}
