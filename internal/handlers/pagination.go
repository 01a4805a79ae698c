package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// limit=0 means no limit.
	defaultPageLimit = 0
	maxPageLimit     = 100

	dateLayout = "2006-01-02"
)

var errInvalidNumber = errors.New("invalid number")

type pageParams struct {
	Limit  int
	Offset int
}

func parsePageParams(c *fiber.Ctx) (pageParams, error) {
	limit, err := parseNonNegativeInt(strings.TrimSpace(c.Query("limit")), defaultPageLimit)
	if err != nil {
		return pageParams{}, err
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset, err := parseNonNegativeInt(strings.TrimSpace(c.Query("offset")), 0)
	if err != nil {
		return pageParams{}, err
	}

	return pageParams{Limit: limit, Offset: offset}, nil
}

func parseNonNegativeInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidNumber
	}
	return id, nil
}

func parseOptionalID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errInvalidNumber
	}
	return &id, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// parseDate accepts a calendar date or an RFC3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if value, err := time.Parse(dateLayout, raw); err == nil {
		return value, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
