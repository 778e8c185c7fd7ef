package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/nqhuy/edusystem/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"
)

func InitValidators() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, roleTag, roleText)
}

// roleValidation checks that the provided role is one of AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	return ValidRole(fl.Field().String())
}
