// Package feed defines the console's data feeds: wire payload shapes,
// descriptors for each standing feed, and a generic typed decode adapter
// over realtime channels. The channel core stays shape-agnostic; each
// feed's decode step lives here and maps failures to "drop frame".
package feed
