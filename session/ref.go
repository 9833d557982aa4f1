// Package session holds the pure domain core of table-session tracking:
// label normalization, the resolved-vs-placeholder table identity, session
// epoch comparison and the per-device scan registry. Nothing here touches
// the database or the network, so every rule is testable in isolation.
package session

import (
	"fmt"
	"strings"
)

// TakeawayLabel is the neutral identity a device falls back to when it has
// no dine-in session (no table parameter, or the session was reset).
const TakeawayLabel = "À emporter"

// TableRef is the canonical table identity: either resolved to a durable id
// or a placeholder carrying only the scanned label. Consumers must branch on
// Resolved() instead of sniffing id prefixes.
type TableRef struct {
	id    uint
	label string
}

// Resolved builds a ref backed by a durable table id.
func Resolved(id uint, label string) TableRef {
	return TableRef{id: id, label: label}
}

// Placeholder builds a degraded ref for a label that could not be resolved;
// ordering proceeds against it in offline mode.
func Placeholder(label string) TableRef {
	return TableRef{label: label}
}

// Takeaway is the ref used when no table is involved at all.
func Takeaway() TableRef {
	return TableRef{label: TakeawayLabel}
}

func (r TableRef) Resolved() bool { return r.id != 0 }
func (r TableRef) ID() uint       { return r.id }
func (r TableRef) Label() string  { return r.label }

func (r TableRef) Takeaway() bool { return r.id == 0 && r.label == TakeawayLabel }

// WireID renders the identity for clients: the durable id when resolved,
// otherwise the temp_<label> placeholder form.
func (r TableRef) WireID() string {
	if r.Resolved() {
		return fmt.Sprintf("%d", r.id)
	}
	if r.Takeaway() {
		return "takeaway"
	}
	return "temp_" + r.label
}

// NormalizeLabel reduces a scanned label to its bare form: "Table 5",
// "table 5" and " 5 " all normalize to "5". The prefix is only stripped
// when followed by a separator, so labels like "Tablette" stay intact.
func NormalizeLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(s), "table ") {
		s = strings.TrimSpace(s[len("table "):])
	}
	return s
}

// IdentityKey is the per-device scan dedup key combining label and resolved
// id, so the same label re-resolved to a different table still counts as a
// fresh scan.
func (r TableRef) IdentityKey() string {
	return fmt.Sprintf("%s|%d", r.label, r.id)
}
