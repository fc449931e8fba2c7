package pages

import (
	"context"
	"net/url"

	"github.com/a-h/templ"

	"github.com/techsupport-hub/portal/internal/app/models"
)

// Section is a titled list, the shape nearly every portal page takes.
type Section struct {
	ID     string
	Title  string
	Items  []models.ListItem
	Empty  string
	Notice *Notice
}

func SectionPage(s Section) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section`)
		attr(h, "id", s.ID)
		h.raw(`><h1>`)
		h.text(s.Title)
		h.raw(`</h1>`)
		h.child(ctx, Banner(s.Notice))
		h.child(ctx, itemList(s.Items, s.Empty))
		h.raw(`</section>`)
	})
}

func itemList(items []models.ListItem, empty string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if len(items) == 0 {
			if empty == "" {
				empty = "Nothing here yet."
			}
			h.raw(`<p class="empty">`)
			h.text(empty)
			h.raw(`</p>`)
			return
		}
		h.raw(`<ul class="items">`)
		for _, it := range items {
			h.raw(`<li`)
			attr(h, "data-id", it.ID)
			h.raw(`><strong>`)
			h.text(it.Title)
			h.raw(`</strong>`)
			if it.Subtitle != "" {
				h.raw(`<span class="subtitle">`)
				h.text(it.Subtitle)
				h.raw(`</span>`)
			}
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	})
}

func Heading(title string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(title)
		h.raw(`</h1>`)
	})
}

// Stack renders components one after another.
func Stack(parts ...templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		for _, p := range parts {
			h.child(ctx, p)
		}
	})
}

func HomePage(user *models.User, services, events []models.ListItem, notice *Notice) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section id="hero"><h1>Campus Tech Support</h1>`)
		if user != nil {
			h.raw(`<p>Welcome back, `)
			h.text(user.Name)
			h.raw(`. `)
			link(h, user.LandingPath(), "Go to your dashboard")
			h.raw(`</p>`)
		} else {
			h.raw(`<p>Help with devices, accounts and software for every student and staff member. `)
			link(h, "/signup", "Join the team")
			h.raw(`</p>`)
		}
		h.raw(`</section>`)
		h.child(ctx, Banner(notice))
		h.child(ctx, SectionPage(Section{ID: "services", Title: "What we do", Items: services}))
		h.child(ctx, SectionPage(Section{ID: "events", Title: "Upcoming events", Items: events, Empty: "No events scheduled."}))
	})
}

func BlogForm(notice *Notice) templ.Component {
	return form("blog-form", "/blogs", "Publish", notice, []field{
		{Label: "Title", Name: "title", Type: "text", Required: true},
		{Label: "Summary", Name: "summary", Type: "text"},
		{Label: "Body", Name: "body", Type: "textarea", Required: true},
	}, nil)
}

func DashboardPage(user *models.User, tasks, notifications []models.ListItem, notice *Notice) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Dashboard</h1>`)
		if user != nil {
			h.raw(`<p class="greeting">Signed in as `)
			h.text(user.Name)
			h.raw(`</p>`)
		}
		h.child(ctx, Banner(notice))
		h.child(ctx, SectionPage(Section{ID: "tasks", Title: "My requests", Items: tasks, Empty: "You have no open requests."}))
		h.child(ctx, SectionPage(Section{ID: "notifications", Title: "Notifications", Items: notifications, Empty: "You're all caught up."}))
	})
}

func ProfileForm(user *models.User, notice *Notice) templ.Component {
	if user == nil {
		user = &models.User{}
	}
	return form("profile-form", "/settings/profile", "Save", notice, []field{
		{Label: "Name", Name: "name", Type: "text", Value: user.Name},
		{Label: "Phone", Name: "phone", Type: "tel", Value: user.Phone},
		{Label: "Department", Name: "department", Type: "text", Value: user.Department},
		{Label: "Bio", Name: "bio", Type: "textarea", Value: user.Bio},
	}, nil)
}

func AccountPage(user *models.User, notice *Notice) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section id="account"><h1>Account</h1>`)
		h.child(ctx, Banner(notice))
		if user != nil {
			h.raw(`<dl><dt>Name</dt><dd>`)
			h.text(user.Name)
			h.raw(`</dd><dt>Email</dt><dd>`)
			h.text(user.Email)
			h.raw(`</dd><dt>Role</dt><dd>`)
			h.text(string(user.Role))
			h.raw(`</dd></dl>`)
		}
		h.raw(`<p>`)
		link(h, "/settings", "Edit profile")
		h.raw(`</p></section>`)
	})
}

func ApplicationForm(notice *Notice) templ.Component {
	return form("apply-form", "/apply", "Submit application", notice, []field{
		{Label: "Why do you want to join?", Name: "motivation", Type: "textarea", Required: true},
		{Label: "Skills", Name: "skills", Type: "text"},
	}, nil)
}

// TaskBoard lists tasks with an assignment form for each.
func TaskBoard(tasks []models.Task, notice *Notice) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section id="task-board"><h1>Tasks</h1>`)
		h.child(ctx, Banner(notice))
		if len(tasks) == 0 {
			h.raw(`<p class="empty">No tasks.</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>Title</th><th>Status</th><th>Assignee</th></tr></thead><tbody>`)
		for _, t := range tasks {
			h.raw(`<tr`)
			attr(h, "id", "task-"+t.ID)
			h.raw(`><td>`)
			h.text(t.Title)
			h.raw(`</td><td>`)
			h.text(t.Status)
			h.raw(`</td><td>`)
			h.child(ctx, AssignForm(t, nil))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

func AssignForm(t models.Task, notice *Notice) templ.Component {
	action := "/admin/tasks/" + url.PathEscape(t.ID) + "/assign"
	return form("assign-"+t.ID, action, "Assign", notice, []field{
		{Label: "Member ID", Name: "assignee_id", Type: "text", Value: t.AssigneeID, Required: true},
	}, nil)
}
