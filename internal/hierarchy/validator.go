// Package hierarchy decides whether a (kind, parent) pair is a legal edge of
// the Epic > Story > Task tree. It performs no I/O itself; the parent lookup
// is injected so the same rules serve creation and parent reassignment.
package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/backlog-studio/engine/internal/models"
)

// Reason identifies the exact rule a placement violates.
type Reason string

const (
	ReasonEpicHasParent          Reason = "EpicHasParent"
	ReasonStoryMissingEpicParent Reason = "StoryMissingEpicParent"
	ReasonStoryParentWrongKind   Reason = "StoryParentWrongKind"
	ReasonTaskMissingStoryParent Reason = "TaskMissingStoryParent"
	ReasonTaskParentWrongKind    Reason = "TaskParentWrongKind"
)

// ErrParentNotFound is returned by a Resolver when the candidate parent does
// not exist in the project.
var ErrParentNotFound = errors.New("parent work item not found")

// Resolver looks up the kind of a candidate parent within a single project.
type Resolver interface {
	Resolve(ctx context.Context, parentID uuid.UUID) (models.Kind, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, parentID uuid.UUID) (models.Kind, error)

func (f ResolverFunc) Resolve(ctx context.Context, parentID uuid.UUID) (models.Kind, error) {
	return f(ctx, parentID)
}

// Violation is a rejected placement. It carries a machine-distinguishable
// reason per violated rule.
type Violation struct {
	Kind   models.Kind
	Reason Reason
}

func (v *Violation) Error() string {
	return fmt.Sprintf("invalid %s placement: %s", v.Kind, v.Reason)
}

// Validate accepts or rejects placing an item of the given kind under the
// given parent. A missing-but-referenced parent propagates the resolver's
// ErrParentNotFound unchanged so callers can distinguish it from a rule
// violation.
func Validate(ctx context.Context, kind models.Kind, parentID *uuid.UUID, resolver Resolver) error {
	if kind == models.KindEpic {
		if parentID != nil {
			return &Violation{Kind: kind, Reason: ReasonEpicHasParent}
		}
		return nil
	}

	wantParent, _ := kind.ParentKind()
	if parentID == nil {
		return &Violation{Kind: kind, Reason: missingReason(kind)}
	}

	parentKind, err := resolver.Resolve(ctx, *parentID)
	if err != nil {
		return err
	}
	if parentKind != wantParent {
		return &Violation{Kind: kind, Reason: wrongKindReason(kind)}
	}
	return nil
}

func missingReason(kind models.Kind) Reason {
	if kind == models.KindStory {
		return ReasonStoryMissingEpicParent
	}
	return ReasonTaskMissingStoryParent
}

func wrongKindReason(kind models.Kind) Reason {
	if kind == models.KindStory {
		return ReasonStoryParentWrongKind
	}
	return ReasonTaskParentWrongKind
}
