package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/tradebinder/internal/apperr"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends the non-nil field errors.
func (e *Errs) Add(fs ...*ErrField) {
	for _, f := range fs {
		if f != nil {
			*e = append(*e, *f)
		}
	}
}

// Err returns nil when empty, otherwise a BadRequest carrying the fields as details.
func (e Errs) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Invalid("validation failed: "+e.Error(), e)
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

func MaxInt(field string, v, max int64) *ErrField {
	if v > max {
		return &ErrField{Field: field, Msg: "must be <= " + strconv.FormatInt(max, 10)}
	}
	return nil
}

func MinLen(field, value string, min int) *ErrField {
	if utf8.RuneCountInString(value) < min {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	return nil
}

func MaxLen(field, value string, max int) *ErrField {
	if utf8.RuneCountInString(value) > max {
		return &ErrField{Field: field, Msg: "must be at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

func UUID(field, value string) *ErrField {
	if _, err := uuid.Parse(value); err != nil {
		return &ErrField{Field: field, Msg: "must be a valid id"}
	}
	return nil
}

func DecimalRange(field string, v, min, max decimal.Decimal) *ErrField {
	if v.LessThan(min) || v.GreaterThan(max) {
		return &ErrField{Field: field, Msg: "must be between " + min.StringFixed(2) + " and " + max.StringFixed(2)}
	}
	if !v.Equal(v.Round(2)) {
		return &ErrField{Field: field, Msg: "must have at most 2 decimal places"}
	}
	return nil
}

func Email(field, value string) *ErrField {
	at := strings.Index(value, "@")
	if at < 1 || at == len(value)-1 || !strings.Contains(value[at:], ".") || strings.ContainsAny(value, " \t") {
		return &ErrField{Field: field, Msg: "must be a valid email"}
	}
	return nil
}
