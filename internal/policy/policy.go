// Package policy decides whether a requesting identity may perform an
// operation on a note. Reads via a public path are open to everyone; every
// other operation is restricted to the note's owner. Non-owner access is
// reported as 401, matching the service's established behavior, rather than
// the conventional 403.
package policy

import "github.com/notesfs/notes-service/internal/models"

// Op is a note operation subject to access control.
type Op int

const (
	OpRead Op = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (op Op) verb() string {
	switch op {
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "access"
	}
}

// Denial is the reason an operation was refused.
type Denial struct {
	Op Op
}

func (d *Denial) Error() string {
	return "Not authorized to " + d.Op.verb() + " this note"
}

// CanAccess applies the access rules for op against note. userID is empty for
// unauthenticated requests; isPublic marks requests arriving via a public
// route, which skip ownership checks for reads. A nil return means Allow.
func CanAccess(note *models.Note, userID string, op Op, isPublic bool) error {
	switch op {
	case OpRead:
		if isPublic {
			return nil
		}
	case OpCreate:
		// Any authenticated user may create; ownership is assigned at
		// creation from the requesting identity.
		return nil
	}
	if userID != "" && note.UserID == userID {
		return nil
	}
	return &Denial{Op: op}
}
