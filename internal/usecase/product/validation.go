package product

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgInputNull       = "Product must be not null"
	msgIDNull          = "Product uuid must be not null"
	msgNameNull        = "Product name must be not null"
	msgNameFormat      = "Product name must contain from 5 to 10 russian symbols or spaces"
	msgDescFormat      = "Product description must contain from 10 to 30 russian symbols or spaces"
	msgPriceNull       = "Product price must be not null"
	msgPricePositive   = "Product price must be positive"
	msgPriceNonNeg     = "Product price must be positive or zero"
	msgPriceOutOfRange = "Product price must be less than 1000000"

	nameRule        = "min=5,max=10,ru_text"
	descriptionRule = "min=10,max=30,ru_text"
)

// Prices are stored as NUMERIC(9,3); maxPrice is the first value that no longer fits.
const priceScale = 3

var maxPrice = decimal.New(1, 6)

type Violation struct {
	Field   string
	Message string
}

type Violations []Violation

func (vs Violations) Valid() bool {
	return len(vs) == 0
}

func (vs Violations) Error() string {
	msgs := make([]string, 0, len(vs))
	for _, v := range vs {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	if err := v.RegisterValidation("ru_text", isRussianText); err != nil {
		panic(err)
	}
	return &Validator{validate: v, logger: logger}
}

func (v *Validator) ValidateInput(in *Input) Violations {
	if in == nil {
		return Violations{{Message: msgInputNull}}
	}

	var vs Violations
	if in.Name == nil {
		vs = append(vs, Violation{Field: "name", Message: msgNameNull})
	} else if v.validate.Var(*in.Name, nameRule) != nil {
		vs = append(vs, Violation{Field: "name", Message: msgNameFormat})
	}

	if in.Description != nil && v.validate.Var(*in.Description, descriptionRule) != nil {
		vs = append(vs, Violation{Field: "description", Message: msgDescFormat})
	}

	if in.Price == nil {
		return append(vs, Violation{Field: "price", Message: msgPriceNull})
	}
	// checked as stored, after rounding to the column scale
	switch price := in.Price.Round(priceScale); {
	case !price.IsPositive():
		vs = append(vs, Violation{Field: "price", Message: msgPricePositive})
	case price.GreaterThanOrEqual(maxPrice):
		vs = append(vs, Violation{Field: "price", Message: msgPriceOutOfRange})
	}
	return vs
}

func (v *Validator) ValidateView(view *View) Violations {
	if view == nil {
		return Violations{{Message: msgInputNull}}
	}

	var vs Violations
	if view.ID == uuid.Nil {
		vs = append(vs, Violation{Field: "uuid", Message: msgIDNull})
	}
	if v.validate.Var(view.Name, nameRule) != nil {
		vs = append(vs, Violation{Field: "name", Message: msgNameFormat})
	}
	if view.Price.IsNegative() {
		vs = append(vs, Violation{Field: "price", Message: msgPriceNonNeg})
	}
	return vs
}

func (v *Validator) Check(ctx context.Context, vs Violations) bool {
	for _, violation := range vs {
		v.logger.ErrorContext(ctx, violation.Message,
			slog.String("field", violation.Field),
		)
	}
	return vs.Valid()
}

func isRussianText(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r >= 'А' && r <= 'я' {
			continue
		}
		if strings.ContainsRune(" \t\n\v\f\r", r) {
			continue
		}
		return false
	}
	return true
}
