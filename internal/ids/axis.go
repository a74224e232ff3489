package ids

// AxisValue is a single arbitrary domain axis carried by a Context, e.g.
// (axisId: "subscription_tier", value: "enterprise"). axisId is unique per
// axis within a context.
type AxisValue struct {
	AxisId string
	Value  any
}

// Capability names the pieces of a Context that targeting may require.
// Evaluation only reads capabilities that active targeting actually needs.
type Capability string

const (
	CapabilityLocale     Capability = "locale"
	CapabilityPlatform   Capability = "platform"
	CapabilityAppVersion Capability = "appVersion"
	CapabilityStableId   Capability = "stableId"
	CapabilityAxisValues Capability = "axisValues"
)
