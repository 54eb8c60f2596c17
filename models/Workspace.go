package models

import "time"

type Workspace struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:80;not null"`
	Description string `json:"description" gorm:"size:512"`
	IsPrivate   bool   `json:"isPrivate" gorm:"default:false;index"`

	CreatedByID uint `json:"createdByID" gorm:"not null;index"`
	CreatedBy   User `json:"createdBy" gorm:"foreignKey:CreatedByID"`

	Members []WorkspaceMember `json:"members" gorm:"foreignKey:WorkspaceID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkspaceMember is one user's membership row inside a workspace.
type WorkspaceMember struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	WorkspaceID uint      `json:"workspaceID" gorm:"not null;index:idx_workspace_user,unique"`
	UserID      uint      `json:"userID" gorm:"not null;index:idx_workspace_user,unique"`
	User        User      `json:"user" gorm:"foreignKey:UserID"`
	CreatedAt   time.Time `json:"createdAt"`
}
