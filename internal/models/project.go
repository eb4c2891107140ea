package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a work-item container owned by exactly one user. Deleting a
// project removes every work item in it via the store's cascade.
type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID      uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id" validate:"required"`
	Name         string    `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Description  string    `gorm:"type:text" json:"description" validate:"max=2000"`
	VersionStamp uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns the identifier and initial version stamp so the model
// behaves identically on every gorm dialect.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.VersionStamp == uuid.Nil {
		p.VersionStamp = uuid.New()
	}
	return nil
}

// Rename applies an update to the mutable fields, advancing updated_at
// together with the version stamp.
func (p *Project) Rename(name, description string) {
	p.Name = name
	p.Description = description
	p.touch()
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now()
	p.VersionStamp = uuid.New()
}
