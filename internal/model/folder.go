package model

import "time"

// Folder groups snippets for one user. A snippet references at most one
// folder; deleting a folder never deletes the snippets inside it — they
// become unfoldered (folder_id nulled by the schema's ON DELETE SET NULL).
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
