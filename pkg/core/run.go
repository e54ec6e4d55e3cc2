package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

var (
	ErrUnknownStrategy = errors.New("unknown lock strategy")
	ErrInvalidLimit    = errors.New("limit out of range")
	ErrInvalidPage     = errors.New("page out of range")
)

const (
	MaxLimit = 1000
	MaxPage  = 1000000
)

type Strategy string

const (
	StrategySpin    Strategy = "spin"
	StrategyBackOff Strategy = "backoff"
	StrategyMutex   Strategy = "mutex"
)

func ParseStrategy(s string) (Strategy, error) {
	switch strategy := Strategy(strings.ToLower(s)); strategy {
	case StrategySpin, StrategyBackOff, StrategyMutex:
		return strategy, nil
	case "":
		return StrategySpin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

type Run struct {
	Id         uuid.UUID   `db:"id" json:"id"`
	Strategy   Strategy    `db:"strategy" json:"strategy"`
	Workers    int         `db:"workers" json:"workers"`
	Increments int         `db:"increments" json:"increments"`
	Expected   int64       `db:"expected" json:"expected"`
	Counter    int64       `db:"counter" json:"counter"`
	Contended  int64       `db:"contended" json:"contended"`
	Violations int64       `db:"violations" json:"violations"`
	DurationNs int64       `db:"duration_ns" json:"duration_ns"`
	CreatedAt  string      `db:"created_at" json:"created_at"`
	Failure    null.String `db:"failure" json:"failure"`
}

// Passed reports whether the run lost no update and never saw two holders.
func (r Run) Passed() bool {
	return r.Counter == r.Expected && r.Violations == 0
}

type Runs []Run

type FilterRun struct {
	Id            []uuid.UUID
	Strategy      []Strategy
	Failed        bool
	SortBy        string
	SortDirection string
	Offset        int
	Limit         int
}

func (f FilterRun) Filter(operator string) (string, map[string]interface{}) {
	var (
		clause []string
		args   = make(map[string]interface{})
	)

	if len(f.Id) > 0 {
		args["id"] = f.Id
		clause = append(clause, "id IN(:id)")
	}

	if len(f.Strategy) > 0 {
		args["strategy"] = f.Strategy
		clause = append(clause, "strategy IN(:strategy)")
	}

	if f.Failed {
		clause = append(clause, "failure IS NOT NULL")
	}

	return strings.Join(clause, " "+operator+" "), args
}

func (f FilterRun) Sort() string {
	sortBy := "created_at"
	switch f.SortBy {
	case "duration_ns", "workers", "increments", "contended":
		sortBy = f.SortBy
	}

	sortDirection := "desc"
	if strings.EqualFold(f.SortDirection, "asc") {
		sortDirection = "asc"
	}

	return fmt.Sprintf("ORDER BY %s %s", sortBy, sortDirection)
}

func (f FilterRun) Validate() error {
	if f.Limit < 0 || f.Limit > MaxLimit {
		return fmt.Errorf("%w: %d, max %d", ErrInvalidLimit, f.Limit, MaxLimit)
	}

	if f.Offset < 0 || f.Offset > MaxPage {
		return fmt.Errorf("%w: %d, max %d", ErrInvalidPage, f.Offset, MaxPage)
	}

	return nil
}

// PageLimit returns Limit clamped to [0, MaxLimit].
func (f FilterRun) PageLimit() int {
	switch {
	case f.Limit < 0:
		return 0
	case f.Limit > MaxLimit:
		return MaxLimit
	}

	return f.Limit
}

// Page returns the LIMIT/OFFSET clause. Limit and Offset are clamped, so the
// offset never exceeds MaxLimit*MaxPage.
func (f FilterRun) Page() string {
	limit := f.PageLimit()
	if limit == 0 {
		return ""
	}

	page := f.Offset
	if page > MaxPage {
		page = MaxPage
	}

	offset := 0
	if page > 0 {
		offset = (page - 1) * limit
	}

	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}
