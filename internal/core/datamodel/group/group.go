package group

import "time"

// Rows are mapped with sqlx db tags.
type Group struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	OwnerID    int64     `db:"owner_id"`
	ClosingDay int       `db:"closing_day"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type Member struct {
	GroupID  int64     `db:"group_id"`
	UserID   int64     `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}
