// Package fields derives the values drawn on the form from the applicant's
// raw input: the apply date, carrier-dependent fields and the mutually
// exclusive card / bank auto-pay blocks.
package fields

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Record is one applicant's input: field key to scalar value (string, bool,
// number or nil).
type Record map[string]any

// Clone returns a shallow copy; values are scalars so this is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of key as display text. Missing and nil values
// are empty.
func (r Record) String(key string) string {
	return toText(r[key])
}

var (
	cardFields = []string{"card_company", "card_number", "card_exp_year", "card_exp_month", "card_name"}
	bankFields = []string{"bank_name", "bank_account"}
)

// Resolve fills derived fields of rec in place and returns it. now supplies
// the apply date when the input has none.
func Resolve(rec Record, now time.Time) Record {
	for k, v := range rec {
		if s, ok := v.(string); ok {
			rec[k] = norm.NFC.String(s)
		}
	}

	if isBlank(rec["apply_date"]) {
		rec["apply_date"] = FormatApplyDate(now)
	}
	if !strings.EqualFold(rec.String("prev_carrier"), "MVNO") {
		rec["mvno_name"] = ""
	}
	resolveAutopay(rec)
	return rec
}

// FormatApplyDate renders the localized apply date line printed on the form.
func FormatApplyDate(t time.Time) string {
	return fmt.Sprintf("신청일자 %d년 %d월 %02d일", t.Year(), int(t.Month()), t.Day())
}

func resolveAutopay(rec Record) {
	method := strings.ToLower(strings.TrimSpace(rec.String("autopay_method")))
	switch method {
	case "card":
		yy := lastN(rec.String("card_exp_year"), 2)
		mm := rec.String("card_exp_month")
		if yy != "" && mm != "" {
			rec["autopay_exp"] = yy + "/" + leftPad(mm, 2, '0')
		}
		blankOut(rec, bankFields)
	case "bank":
		blankOut(rec, cardFields)
		rec["autopay_exp"] = rec.String("autopay_exp")
	default:
		if strings.TrimSpace(rec.String("autopay_exp")) != "" {
			blankOut(rec, bankFields)
		} else {
			blankOut(rec, cardFields)
		}
	}

	card := method == "card"
	if isBlank(rec["autopay_org"]) {
		if card {
			rec["autopay_org"] = rec.String("card_company")
		} else {
			rec["autopay_org"] = firstText(rec, "bank_name", "card_company")
		}
	}
	if isBlank(rec["autopay_number"]) {
		if card {
			rec["autopay_number"] = rec.String("card_number")
		} else {
			rec["autopay_number"] = firstText(rec, "bank_account", "card_number")
		}
	}
	if isBlank(rec["autopay_holder"]) {
		rec["autopay_holder"] = firstText(rec, "card_name", "holder", "autopay_holder")
	}
}

func blankOut(rec Record, keys []string) {
	for _, k := range keys {
		rec[k] = ""
	}
}

func firstText(rec Record, keys ...string) string {
	for _, k := range keys {
		if s := rec.String(k); s != "" {
			return s
		}
	}
	return ""
}

func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func leftPad(s string, n int, pad rune) string {
	if l := len([]rune(s)); l < n {
		return strings.Repeat(string(pad), n-l) + s
	}
	return s
}
