package domain

import (
	"github.com/techsupport-hub/portal/internal/app/models"
)

const dateLayout = "Mon 2 Jan 2006, 15:04"

func BlogItems(blogs []models.Blog) []models.ListItem {
	items := make([]models.ListItem, 0, len(blogs))
	for _, b := range blogs {
		sub := b.Summary
		if b.Author != "" {
			sub = joinNonEmpty(" · ", "by "+b.Author, b.Summary)
		}
		items = append(items, models.ListItem{ID: b.ID, Title: b.Title, Subtitle: sub})
	}
	return items
}

func GuideItems(guides []models.Guide) []models.ListItem {
	items := make([]models.ListItem, 0, len(guides))
	for _, g := range guides {
		items = append(items, models.ListItem{ID: g.ID, Title: g.Title, Subtitle: g.Category})
	}
	return items
}

func EventItems(events []models.Event) []models.ListItem {
	items := make([]models.ListItem, 0, len(events))
	for _, e := range events {
		when := ""
		if !e.StartsAt.IsZero() {
			when = e.StartsAt.Format(dateLayout)
		}
		items = append(items, models.ListItem{ID: e.ID, Title: e.Title, Subtitle: joinNonEmpty(" · ", when, e.Location)})
	}
	return items
}

func ServiceItems(services []models.Service) []models.ListItem {
	items := make([]models.ListItem, 0, len(services))
	for _, s := range services {
		items = append(items, models.ListItem{ID: s.ID, Title: s.Name, Subtitle: s.Description})
	}
	return items
}

func UserItems(users []models.User) []models.ListItem {
	items := make([]models.ListItem, 0, len(users))
	for _, u := range users {
		items = append(items, models.ListItem{ID: u.ID, Title: u.Name, Subtitle: joinNonEmpty(" · ", u.Department, u.StudentID)})
	}
	return items
}

func TaskItems(tasks []models.Task) []models.ListItem {
	items := make([]models.ListItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, models.ListItem{ID: t.ID, Title: t.Title, Subtitle: t.Status})
	}
	return items
}

func NotificationItems(notes []models.Notification) []models.ListItem {
	items := make([]models.ListItem, 0, len(notes))
	for _, n := range notes {
		sub := ""
		if !n.CreatedAt.IsZero() {
			sub = n.CreatedAt.Format(dateLayout)
		}
		items = append(items, models.ListItem{ID: n.ID, Title: n.Message, Subtitle: sub})
	}
	return items
}

func ShiftItems(shifts []models.Shift) []models.ListItem {
	items := make([]models.ListItem, 0, len(shifts))
	for _, s := range shifts {
		title := s.StartsAt.Format(dateLayout)
		if !s.EndsAt.IsZero() {
			title += " - " + s.EndsAt.Format("15:04")
		}
		items = append(items, models.ListItem{ID: s.ID, Title: title, Subtitle: s.MemberID})
	}
	return items
}

func MessageItems(messages []models.Message) []models.ListItem {
	items := make([]models.ListItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, models.ListItem{ID: m.ID, Title: m.Subject, Subtitle: "from " + m.From})
	}
	return items
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
