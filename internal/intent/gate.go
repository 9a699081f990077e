package intent

// confirmationThreshold is the confidence below which a destructive intent
// must be confirmed by the user before execution.
const confirmationThreshold = 0.7

// destructiveIntents are the intents that change playback state.
var destructiveIntents = map[string]bool{
	PlaySpecificSong:  true,
	QueueSpecificSong: true,
	QueueMultipleSong: true,
	PlayPlaylist:      true,
	QueuePlaylist:     true,
}

// IsDestructive reports whether the named intent plays or queues something,
// as opposed to querying state or conversing.
func IsDestructive(name string) bool {
	return destructiveIntents[name]
}

// NeedsConfirmation decides whether a validated intent must be confirmed
// before execution. Non-destructive intents never require confirmation,
// regardless of confidence.
func NeedsConfirmation(i Intent) bool {
	return IsDestructive(i.Name()) && i.ConfidenceOf() < confirmationThreshold
}
