package interaction

import (
	"fmt"

	"github.com/kailas-cloud/newsrec/internal/domain"
)

// Kind is the type of user action on a document.
type Kind string

const (
	// KindComment is a comment left on a document.
	KindComment Kind = "comment"
	// KindView is a document read.
	KindView Kind = "view"
	// KindLike is an explicit like.
	KindLike Kind = "like"
)

// Interaction records that a user acted on a document.
type Interaction struct {
	userID     string
	documentID string
	kind       Kind
}

// New validates and creates an Interaction. Empty kind defaults to comment.
func New(userID, documentID string, kind Kind) (Interaction, error) {
	if userID == "" {
		return Interaction{}, fmt.Errorf("%w: user ID is required", domain.ErrInvalidInteraction)
	}
	if documentID == "" {
		return Interaction{}, fmt.Errorf("%w: document ID is required", domain.ErrInvalidInteraction)
	}
	switch kind {
	case "":
		kind = KindComment
	case KindComment, KindView, KindLike:
	default:
		return Interaction{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInteraction, kind)
	}
	return Interaction{userID: userID, documentID: documentID, kind: kind}, nil
}

// UserID returns the acting user.
func (i *Interaction) UserID() string { return i.userID }

// DocumentID returns the document acted on.
func (i *Interaction) DocumentID() string { return i.documentID }

// Kind returns the action type.
func (i *Interaction) Kind() Kind { return i.kind }

// Activity lists the kinds of action a user took on one document.
type Activity struct {
	DocumentID string
	Kinds      []Kind
}
