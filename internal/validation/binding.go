package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/housing-backend/internal/models"
)

// RegisterBindings подключает собственные правила к валидатору gin:
// phone, report_reason, listing_status. Имена полей в ошибках берутся из json тегов.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validation: движок gin не является validator/v10")
	}
	return Register(v)
}

// Register добавляет правила в переданный валидатор.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("report_reason", func(fl validator.FieldLevel) bool {
		return models.IsValidReportReason(models.ReportReason(fl.Field().String()))
	}); err != nil {
		return err
	}
	return v.RegisterValidation("listing_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ValidListingStatuses[models.ListingStatus(fl.Field().String())]
		return ok
	})
}

// FromBindingError переводит ошибки validator/v10 в ошибки полей.
func FromBindingError(err error) (FieldErrors, bool) {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil, false
	}

	fields := FieldErrors{}
	for _, fe := range vErrs {
		fields.Add(fe.Field(), ruleFromTag(fe.Tag()))
	}
	return fields, true
}

func ruleFromTag(tag string) string {
	switch tag {
	case "required":
		return RuleRequired
	case "max":
		return RuleMax
	case "min", "gte", "lte", "gt", "lt":
		return RuleRange
	default:
		return RuleInvalid
	}
}
