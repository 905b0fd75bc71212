package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bebel/pendencias/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the domain tags registered:
//
//	pendencia_status  SINALIZADA, RESOLVIDA or IGNORADA
//	kanban_column     A_FAZER, FAZENDO or FEITO
func New() *CustomValidator {
	v := validator.New()

	// report json names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("pendencia_status", func(fl validator.FieldLevel) bool {
		return entities.PendenciaStatus(fl.Field().String()).IsValid()
	}))
	must(v.RegisterValidation("kanban_column", func(fl validator.FieldLevel) bool {
		return entities.KanbanColumn(fl.Field().String()).IsValid()
	}))

	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("validator: register tag: %v", err))
	}
}
