package post

import (
	"github.com/go-playground/validator/v10"

	"github.com/nqhuy/edusystem/core"
)

var (
	subjectTag  = "subject"
	subjectText = "invalid subject"

	reactionTag  = "reaction"
	reactionText = "invalid reaction"

	// Subjects taught on the platform (math, physics, chemistry, biology,
	// literature, english — the backend keeps the Vietnamese slugs).
	Subjects = []string{"toan", "ly", "hoa", "sinh", "van", "anh"}
)

func InitValidators() {
	_ = core.Validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, subjectTag, subjectText)

	_ = core.Validate.RegisterValidation(reactionTag, reactionValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, reactionTag, reactionText)
}

func ValidSubject(s string) bool {
	for _, subj := range Subjects {
		if s == subj {
			return true
		}
	}
	return false
}

func ValidReaction(r Reaction) bool {
	for _, known := range Reactions {
		if r == known {
			return true
		}
	}
	return false
}

func subjectValidation(fl validator.FieldLevel) bool {
	return ValidSubject(fl.Field().String())
}

func reactionValidation(fl validator.FieldLevel) bool {
	return ValidReaction(Reaction(fl.Field().String()))
}
