package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/gateway"
	applog "mywallet/internal/log"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// errorStatus maps a service error onto the response status: validation
// failures are 422, unknown records 404, and every other gateway failure
// 502 since the fault lies with the upstream service.
func errorStatus(err error) int {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity
	}
	var ge *gateway.Error
	if errors.As(err, &ge) {
		switch {
		case errors.Is(err, gateway.ErrNotFound), ge.Kind == gateway.KindStatus && ge.StatusCode == http.StatusNotFound:
			return http.StatusNotFound
		case ge.Kind == gateway.KindRejected:
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorMessage is the single line shown to the user.
func errorMessage(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return gateway.Message(err)
}

// errorField names the form field a validation error belongs to, if any.
func errorField(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

func errorType(err error) string {
	switch errorStatus(err) {
	case http.StatusUnprocessableEntity:
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return applog.ErrorTypeValidation
		}
		return applog.ErrorTypeGateway
	case http.StatusNotFound:
		return applog.ErrorTypeNotFound
	case http.StatusBadGateway:
		return applog.ErrorTypeGateway
	}
	return applog.ErrorTypeInternal
}

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
	"money":  core.FormatMoney,
	"decimal": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"id": formatID,
	"selected": func(a, b int64) bool {
		return a != 0 && a == b
	},
	"inc": func(i int) int { return i + 1 },
	"itoa": strconv.Itoa,
}
