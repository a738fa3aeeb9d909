package protocol

// Ptr returns a pointer to v. It is the usual way to set an optional field:
//
//	intent := &BotIntent{TurnRate: Ptr(5.0), Rescan: Ptr(true)}
func Ptr[T any](v T) *T {
	return &v
}
