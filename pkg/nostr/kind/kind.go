package kind

// T is the event type in the nostr protocol. The numeric space is open
// ended; only a handful of kinds get interpreted specially by this client,
// everything else is stored and passed through.
type T uint16

func (ki T) ToInt() int       { return int(ki) }
func (ki T) ToUint16() uint16 { return uint16(ki) }

const (
	// ProfileMetadata is an event type that stores user profile data, pet
	// names, bio, lightning address, etc, as JSON in the content field.
	ProfileMetadata T = 0
	// SetMetadata is a synonym for ProfileMetadata.
	SetMetadata T = 0
	// TextNote is a standard short text note of plain text a la twitter
	TextNote T = 1
	// RecommendRelay suggests a relay to followers.
	RecommendRelay T = 2
	// ContactList is an authoritative, total snapshot of the pubkeys a user
	// follows, carried in p tags.
	ContactList T = 3
	FollowList  T = 3
	// EncryptedDirectMessage carries NIP-04 ciphertext addressed by p tag.
	EncryptedDirectMessage T = 4
	// Deletion requests removal of prior events.
	Deletion T = 5
	// Repost rebroadcasts another event (a boost).
	Repost T = 6
	// Reaction is a like/emoji response to another event.
	Reaction T = 7
)

// IsFeed returns true for kinds that get an entry in the chronological feed
// index.
func (ki T) IsFeed() bool { return ki == TextNote }

// IsContent returns true for kinds a following subscription wants: profile
// updates and the content kinds shown in a timeline.
func (ki T) IsContent() bool {
	switch ki {
	case SetMetadata, TextNote, Repost, Reaction:
		return true
	}
	return false
}
