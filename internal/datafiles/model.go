package datafiles

import "time"

type DataFile struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	ProjectID  string    `json:"projectId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
