package sections

import (
	"context"
	"net/url"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
)

// Area is one role-gated part of the portal, /admin for instance, made of
// named list sections.
type Area struct {
	Name     string
	Base     string
	Overview string
	Sections map[string]Section
}

// Section loads one list from the API.
type Section struct {
	Title string
	Empty string
	Group apiclient.Group
	Load  func(ctx context.Context, client *apiclient.Client) ([]models.ListItem, error)
}

func listOf[T any](title, empty string, group apiclient.Group, query url.Values, items func([]T) []models.ListItem) Section {
	return Section{
		Title: title,
		Empty: empty,
		Group: group,
		Load: func(ctx context.Context, client *apiclient.Client) ([]models.ListItem, error) {
			list, err := apiclient.NewResource[T](client).List(ctx, query)
			if err != nil {
				return nil, err
			}
			return items(list), nil
		},
	}
}

var mine = url.Values{"mine": {"true"}}

var AdminArea = Area{
	Name:     "Admin",
	Base:     "/admin",
	Overview: "tasks",
	Sections: map[string]Section{
		"tasks":    listOf("Tasks", "No tasks.", apiclient.GroupTasks, nil, domain.TaskItems),
		"members":  listOf("Members", "No members yet.", apiclient.GroupMembers, nil, domain.UserItems),
		"students": listOf("Students", "No students yet.", apiclient.GroupStudents, nil, domain.UserItems),
		"shifts":   listOf("Shifts", "No shifts scheduled.", apiclient.GroupShifts, nil, domain.ShiftItems),
		"blogs":    listOf("Blog posts", "No posts yet.", apiclient.GroupBlogs, nil, domain.BlogItems),
		"messages": listOf("Messages", "No messages.", apiclient.GroupMessages, nil, domain.MessageItems),
	},
}

var MemberArea = Area{
	Name:     "Members",
	Base:     "/members",
	Overview: "tasks",
	Sections: map[string]Section{
		"tasks":    listOf("Assigned tasks", "Nothing assigned to you.", apiclient.GroupTasks, url.Values{"assignee": {"me"}}, domain.TaskItems),
		"shifts":   listOf("My shifts", "No upcoming shifts.", apiclient.GroupShifts, mine, domain.ShiftItems),
		"messages": listOf("Messages", "No messages.", apiclient.GroupMessages, nil, domain.MessageItems),
	},
}

var StudentArea = Area{
	Name:     "Student",
	Base:     "/student",
	Overview: "tasks",
	Sections: map[string]Section{
		"tasks":         listOf("My requests", "You have no open requests.", apiclient.GroupTasks, mine, domain.TaskItems),
		"notifications": listOf("Notifications", "You're all caught up.", apiclient.GroupNotifications, nil, domain.NotificationItems),
	},
}
