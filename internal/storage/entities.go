package storage

import "time"

type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Item struct {
	ID         string
	CategoryID string
	Name       string
	Completed  bool
	CreatedAt  time.Time
}
