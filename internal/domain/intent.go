package domain

// PriorityGroup orders intent groups from most to least critical. Lower
// values pre-empt higher ones during classification.
type PriorityGroup int

const (
	GroupSecurity PriorityGroup = iota + 1
	GroupPrivacy
	GroupComplaints
	GroupTransactions
	GroupPresales
	GroupSupport
	GroupNavigation
)

// String returns the group label used in events and logs.
func (g PriorityGroup) String() string {
	switch g {
	case GroupSecurity:
		return "security"
	case GroupPrivacy:
		return "privacy"
	case GroupComplaints:
		return "complaints"
	case GroupTransactions:
		return "transactions"
	case GroupPresales:
		return "presales"
	case GroupSupport:
		return "support"
	case GroupNavigation:
		return "navigation"
	default:
		return "unknown"
	}
}

// PriorityGroups lists all groups in descending priority order.
func PriorityGroups() []PriorityGroup {
	return []PriorityGroup{
		GroupSecurity,
		GroupPrivacy,
		GroupComplaints,
		GroupTransactions,
		GroupPresales,
		GroupSupport,
		GroupNavigation,
	}
}

// FallbackIntentName identifies the no-match intent.
const FallbackIntentName = "general"

// Intent is the single classification result for an utterance.
type Intent struct {
	Name           string        `json:"name"`
	Group          PriorityGroup `json:"group"`
	Confidence     float64       `json:"confidence"`
	MatchedPattern string        `json:"matched_pattern,omitempty"`
}

// IsFallback reports whether this is the no-match intent.
func (i Intent) IsFallback() bool {
	return i.Name == FallbackIntentName && i.Group == GroupNavigation
}

// FallbackIntent returns the intent used when no pattern qualifies.
func FallbackIntent() Intent {
	return Intent{Name: FallbackIntentName, Group: GroupNavigation, Confidence: 0}
}
