package web

import (
	"time"

	"github.com/contactshub/server/internal/activity"
	"github.com/contactshub/server/internal/auth/user"
	"github.com/contactshub/server/internal/contact"
)

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type authView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type contactView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Categories []string `json:"categories"`
	Status     string   `json:"status"`
	Favorite   bool     `json:"favorite"`
	CreatedAt  string   `json:"created_at"`
}

type activityView struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	ActionType  string `json:"action_type,omitempty"`
	ContactName string `json:"contact_name"`
	Timestamp   string `json:"timestamp"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserView(u user.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toContactView(c contact.Contact) contactView {
	categories := c.Categories
	if categories == nil {
		categories = []string{}
	}
	return contactView{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Categories: categories,
		Status:     string(c.Status),
		Favorite:   c.Favorite,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

func toContactViews(contacts []contact.Contact) []contactView {
	views := make([]contactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, toContactView(c))
	}
	return views
}

func toActivityViews(entries []activity.Entry) []activityView {
	views := make([]activityView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, activityView{
			ID:          entry.ID,
			Action:      string(entry.Action),
			ActionType:  entry.ActionType,
			ContactName: entry.ContactName,
			Timestamp:   formatTime(entry.Timestamp),
		})
	}
	return views
}
