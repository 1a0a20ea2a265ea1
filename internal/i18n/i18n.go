// Package i18n holds the English and Arabic copy the server emits itself:
// login feedback and the prefilled WhatsApp messages.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Lang string

const (
	EN Lang = "en"
	AR Lang = "ar"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Parse maps any tag to a supported language, ok=false when nothing matched.
func Parse(s string) (Lang, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return EN, true
	case "ar":
		return AR, true
	}
	return "", false
}

// Negotiate picks the language from an explicit choice (query or cookie),
// then the Accept-Language header, then fallback.
func Negotiate(explicit, acceptLanguage string, fallback Lang) Lang {
	if l, ok := Parse(explicit); ok {
		return l
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				if idx == 1 {
					return AR
				}
				return EN
			}
		}
	}
	if fallback == AR {
		return AR
	}
	return EN
}

// Dir is the text direction for the html dir attribute.
func (l Lang) Dir() string {
	if l == AR {
		return "rtl"
	}
	return "ltr"
}

type Key string

const (
	ErrorIncorrect    Key = "errorIncorrect"
	AttemptsRemaining Key = "attemptsRemaining"
	ErrorLocked       Key = "errorLocked"
	LockedTitle       Key = "lockedTitle"
	LockedMessage     Key = "lockedMessage"
	SessionExpired    Key = "sessionExpired"
	InvalidBooklet    Key = "invalidBooklet"
	BookletNotFound   Key = "bookletNotFound"
	NotAuthenticated  Key = "notAuthenticated"
	BadRequest        Key = "badRequest"
	ServerError       Key = "serverError"
	Deleted           Key = "deleted"
)

var messages = map[Lang]map[Key]string{
	EN: {
		ErrorIncorrect:    "Incorrect password.",
		AttemptsRemaining: "attempts remaining",
		ErrorLocked:       "Too many failed attempts. Account locked for 15 minutes.",
		LockedTitle:       "Account Temporarily Locked",
		LockedMessage:     "Too many failed login attempts. Please try again in 15 minutes.",
		SessionExpired:    "Session expired. Please login again.",
		InvalidBooklet:    "Please fill in every field; pages must be a positive number.",
		BookletNotFound:   "Booklet not found.",
		NotAuthenticated:  "Please login to continue.",
		BadRequest:        "Invalid request.",
		ServerError:       "Something went wrong, please try again.",
		Deleted:           "Deleted.",
	},
	AR: {
		ErrorIncorrect:    "كلمة مرور غير صحيحة.",
		AttemptsRemaining: "محاولات متبقية",
		ErrorLocked:       "عدد محاولات كثيرة جداً. تم قفل الحساب لمدة 15 دقيقة.",
		LockedTitle:       "الحساب مقفل مؤقتاً",
		LockedMessage:     "عدد محاولات فاشلة كثيرة. يرجى المحاولة مرة أخرى خلال 15 دقيقة.",
		SessionExpired:    "انتهت جلسة العمل. يرجى تسجيل الدخول مرة أخرى.",
		InvalidBooklet:    "يرجى ملء جميع الحقول؛ يجب أن يكون عدد الصفحات رقماً موجباً.",
		BookletNotFound:   "الكتيب غير موجود.",
		NotAuthenticated:  "يرجى تسجيل الدخول للمتابعة.",
		BadRequest:        "طلب غير صالح.",
		ServerError:       "حدث خطأ، يرجى المحاولة مرة أخرى.",
		Deleted:           "تم الحذف.",
	},
}

// T returns the message for key, falling back to English.
func (l Lang) T(key Key) string {
	if m, ok := messages[l][key]; ok {
		return m
	}
	return messages[EN][key]
}

// IncorrectPassword is the inline login error with the remaining attempt count.
func (l Lang) IncorrectPassword(remaining int) string {
	return fmt.Sprintf("%s %d %s", l.T(ErrorIncorrect), remaining, l.T(AttemptsRemaining))
}
