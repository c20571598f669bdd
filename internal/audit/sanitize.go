package audit

import (
	"encoding/json"
	"strings"

	"storefront/internal/model"
)

// MaskEmail keeps the first two characters of the local part and replaces
// every other local character with '*'. The domain is kept. A value with no
// '@' is masked entirely.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return strings.Repeat("*", len([]rune(email)))
	}

	local := []rune(email[:at])
	keep := min(2, len(local))
	return string(local[:keep]) + strings.Repeat("*", len(local)-keep) + email[at:]
}

// MaskPhone keeps the first three and last three digits. Numbers of four
// characters or fewer are returned as-is; five or six characters keep only
// the first three.
func MaskPhone(phone string) string {
	r := []rune(phone)
	switch n := len(r); {
	case n <= 4:
		return phone
	case n <= 6:
		return string(r[:3]) + strings.Repeat("*", n-3)
	default:
		return string(r[:3]) + strings.Repeat("*", n-6) + string(r[n-3:])
	}
}

// SanitizeDraft returns a copy of the draft with guest contact details masked.
func SanitizeDraft(draft model.OrderDraft) model.OrderDraft {
	out := draft
	out.Items = append([]model.DraftItem(nil), draft.Items...)

	if draft.Guest != nil {
		guest := *draft.Guest
		guest.Customer.Email = MaskEmail(guest.Customer.Email)
		guest.Customer.Phone = MaskPhone(guest.Customer.Phone)
		out.Guest = &guest
	}
	if draft.Account != nil {
		account := *draft.Account
		out.Account = &account
	}
	if draft.DiscountCode != nil {
		code := *draft.DiscountCode
		out.DiscountCode = &code
	}

	return out
}

func snapshot(draft model.OrderDraft) (json.RawMessage, error) {
	return json.Marshal(SanitizeDraft(draft))
}
