package txstatus

// Tier is the display category of a classified status.
type Tier string

// Display tiers.
const (
	TierNeutral Tier = "neutral"
	TierSuccess Tier = "success"
	TierError   Tier = "error"
	TierInfo    Tier = "info"
)

// Icon names used by Classify.
const (
	IconKey         = "key"
	IconWifi        = "wifi"
	IconSpinner     = "spinner"
	IconCheck       = "check"
	IconExclamation = "exclamation"
	IconQuestion    = "question"
)

// Display is the rendering metadata for a status.
type Display struct {
	Label    string
	Icon     string
	Tier     Tier
	Animated bool
}

// Classify maps a status onto display metadata. The first matching facet
// wins, in this order: signing, sending, broadcast/ready, finalized, failed.
func Classify(s Status) Display {
	switch {
	case s.Signing:
		return Display{Label: "signing", Icon: IconKey, Tier: TierNeutral}
	case s.Sending:
		return Display{Label: "sending", Icon: IconWifi, Tier: TierNeutral}
	case s.Broadcast || s.Literal == "ready":
		return Display{Label: "finalising", Icon: IconSpinner, Tier: TierNeutral, Animated: true}
	case s.Finalized:
		return Display{Label: "finalized", Icon: IconCheck, Tier: TierSuccess}
	case s.Failed:
		return Display{Label: "failed", Icon: IconExclamation, Tier: TierError}
	default:
		return Display{Label: s.String(), Icon: IconQuestion, Tier: TierInfo}
	}
}
