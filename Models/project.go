package Models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Project struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	CreatedBy   uint            `json:"createdBy" gorm:"not null;index"`
	Members     []ProjectMember `json:"members" gorm:"foreignKey:ProjectID"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// ProjectMember is one entry of a project's ordered membership list.
// Insertion order (ID) is the list order.
type ProjectMember struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	ProjectID uint      `json:"-" gorm:"not null;uniqueIndex:idx_project_member"`
	UserID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_project_member;index"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:member"`
	User      User      `json:"user" gorm:"foreignKey:UserID;references:ID"`
	JoinedAt  time.Time `json:"joinedAt" gorm:"autoCreateTime"`
}

// Member returns the membership entry of userID, if any.
func (p *Project) Member(userID uint) (ProjectMember, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return ProjectMember{}, false
}

// MembersInOrder is the preload scope that keeps the membership list ordered.
func MembersInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("project_members.id ASC")
}
