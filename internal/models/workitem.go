package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkItem is one node of the Epic > Story > Task hierarchy. The hierarchy is
// expressed as a nullable self-referential foreign key; both the parent link
// and the project link cascade on delete so removing a node removes its whole
// subtree in the store.
type WorkItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;index:idx_work_items_project_parent;not null" json:"project_id"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index:idx_work_items_project_parent" json:"parent_id"`
	Kind           Kind       `gorm:"type:varchar(16);not null" json:"kind"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         Status     `gorm:"type:varchar(16);not null" json:"status"`
	AssignedUserID *uuid.UUID `gorm:"type:uuid" json:"assigned_user_id"`
	VersionStamp   uuid.UUID  `gorm:"type:uuid;not null" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Project *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Parent  *WorkItem `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (w *WorkItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.VersionStamp == uuid.Nil {
		w.VersionStamp = uuid.New()
	}
	if w.Status == "" {
		w.Status = StatusNew
	}
	return nil
}

// Edit updates title, description and parent. Kind is never touched here;
// hierarchy checks for a parent change are the service's responsibility.
func (w *WorkItem) Edit(title, description string, parentID *uuid.UUID) {
	w.Title = title
	w.Description = description
	w.ParentID = parentID
	w.touch()
}

// SetStatus transitions the item to any status unconditionally.
func (w *WorkItem) SetStatus(s Status) {
	w.Status = s
	w.touch()
}

// Assign sets or clears the assigned user.
func (w *WorkItem) Assign(userID *uuid.UUID) {
	w.AssignedUserID = userID
	w.touch()
}

// touch advances updated_at and rotates the version stamp. Mutations always go
// through an aggregate method so the two move together.
func (w *WorkItem) touch() {
	w.UpdatedAt = time.Now()
	w.VersionStamp = uuid.New()
}
