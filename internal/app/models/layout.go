package models

import "github.com/a-h/templ"

type NavItem struct {
	Name string
	URL  string
}

type Navigation struct {
	Items []NavItem
}

type LayoutTempl struct {
	Title     string
	User      *User
	Nav       Navigation
	ActiveNav string
	Content   templ.Component
}

var PublicNav = Navigation{
	Items: []NavItem{
		{Name: "Home", URL: "/"},
		{Name: "Services", URL: "/services"},
		{Name: "Blogs", URL: "/blogs"},
		{Name: "Guides", URL: "/guides"},
		{Name: "Events", URL: "/events"},
		{Name: "Members", URL: "/members/memberList"},
	},
}

var AdminNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/admin"},
		{Name: "Tasks", URL: "/admin/tasks"},
		{Name: "Members", URL: "/admin/members"},
		{Name: "Students", URL: "/admin/students"},
		{Name: "Shifts", URL: "/admin/shifts"},
		{Name: "Blogs", URL: "/admin/blogs"},
		{Name: "Messages", URL: "/admin/messages"},
	},
}

var MemberNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/members"},
		{Name: "Tasks", URL: "/members/tasks"},
		{Name: "Shifts", URL: "/members/shifts"},
		{Name: "Messages", URL: "/members/messages"},
	},
}

var StudentNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/student"},
		{Name: "My Requests", URL: "/student/tasks"},
		{Name: "Notifications", URL: "/student/notifications"},
	},
}
