package pages

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/pkg/access"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc
}

func TestLoginForm(t *testing.T) {
	t.Run("it renders the sign-in form", func(t *testing.T) {
		doc := render(t, LoginForm("", nil))

		form := doc.Find("form#login-form")
		require.Equal(t, 1, form.Length())
		hxPost, _ := form.Attr("hx-post")
		assert.Equal(t, "/login", hxPost)
		assert.Equal(t, 1, form.Find("input[name='email']").Length())
		assert.Equal(t, 1, form.Find("input[name='password'][type='password']").Length())
		assert.Equal(t, 1, form.Find("button[type='submit']").Length())
		assert.Equal(t, 1, doc.Find("a[href='/signup']").Length())
		assert.Equal(t, 0, doc.Find(".banner").Length())
	})

	t.Run("it keeps the email and shows the error", func(t *testing.T) {
		doc := render(t, LoginForm("ada@campus.edu", ErrorNotice("Invalid email or password")))

		value, _ := doc.Find("input[name='email']").Attr("value")
		assert.Equal(t, "ada@campus.edu", value)
		assert.Equal(t, "Invalid email or password", doc.Find(".banner-error").Text())
	})
}

func TestPasswordsAreNeverEchoed(t *testing.T) {
	doc := render(t, form("f", "/x", "Go", nil, []field{{Name: "password", Type: "password", Value: "hunter2"}}, nil))
	_, has := doc.Find("input[name='password']").Attr("value")
	assert.False(t, has)
}

func TestResetPasswordForm_CarriesToken(t *testing.T) {
	doc := render(t, ResetPasswordForm("tok-123", nil))
	value, _ := doc.Find("input[type='hidden'][name='token']").Attr("value")
	assert.Equal(t, "tok-123", value)
	assert.Equal(t, 1, doc.Find("input[name='confirm_password']").Length())
}

func TestSectionPage_EscapesContent(t *testing.T) {
	var sb strings.Builder
	err := SectionPage(Section{
		ID:    "blogs",
		Title: "Blogs",
		Items: []models.ListItem{{ID: "b1", Title: `<script>alert("x")</script>`, Subtitle: "by Ada"}},
	}).Render(context.Background(), &sb)
	require.NoError(t, err)

	assert.NotContains(t, sb.String(), "<script>")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, `<script>alert("x")</script>`, doc.Find("li[data-id='b1'] strong").Text())
	assert.Equal(t, "by Ada", doc.Find("li .subtitle").Text())
}

func TestSectionPage_Empty(t *testing.T) {
	doc := render(t, SectionPage(Section{ID: "events", Title: "Events", Empty: "No events scheduled."}))
	assert.Equal(t, "No events scheduled.", doc.Find("p.empty").Text())
	assert.Equal(t, 0, doc.Find("ul.items").Length())
}

func TestLayoutPage(t *testing.T) {
	t.Run("guest sees sign-in link", func(t *testing.T) {
		doc := render(t, LayoutPage(models.LayoutTempl{
			Title:     "Guides",
			Nav:       models.PublicNav,
			ActiveNav: "Guides",
			Content:   SectionPage(Section{ID: "guides", Title: "Guides"}),
		}))

		assert.Equal(t, "Guides", doc.Find("title").Text())
		assert.Equal(t, "/guides", doc.Find("nav a.active").AttrOr("href", ""))
		assert.Equal(t, 1, doc.Find(".user-menu a[href='/login']").Length())
		assert.Equal(t, 1, doc.Find("main#content section#guides").Length())
	})

	t.Run("signed-in user sees name and sign-out", func(t *testing.T) {
		doc := render(t, LayoutPage(models.LayoutTempl{
			Title: "Dashboard",
			User:  &models.User{ID: "u1", Name: "Ada", Role: access.RoleMember},
			Nav:   models.MemberNav,
		}))

		assert.Equal(t, "Ada", doc.Find(".user-name").Text())
		assert.Equal(t, 1, doc.Find("form[action='/logout']").Length())
	})
}

func TestTaskBoard_AssignFormPerTask(t *testing.T) {
	doc := render(t, TaskBoard([]models.Task{
		{ID: "t1", Title: "Projector in B12", Status: "open"},
		{ID: "t 2", Title: "Printer jam", Status: "open", AssigneeID: "m7"},
	}, nil))

	assert.Equal(t, 2, doc.Find("tbody tr").Length())
	assert.Equal(t, "/admin/tasks/t1/assign", doc.Find("#task-t1 form").AttrOr("hx-post", ""))
	assert.Equal(t, "/admin/tasks/t%202/assign", doc.Find("form[id='assign-t 2']").AttrOr("action", ""))
	assert.Equal(t, "m7", doc.Find("form[id='assign-t 2'] input[name='assignee_id']").AttrOr("value", ""))
}

func TestHomePage(t *testing.T) {
	doc := render(t, HomePage(&models.User{Name: "Grace", Role: access.RoleAdmin}, []models.ListItem{{ID: "s1", Title: "Laptop repair"}}, nil, nil))

	assert.Contains(t, doc.Find("#hero").Text(), "Welcome back, Grace")
	assert.Equal(t, 1, doc.Find("#hero a[href='/admin']").Length())
	assert.Equal(t, "Laptop repair", doc.Find("#services li strong").Text())
	assert.Equal(t, "No events scheduled.", doc.Find("#events p.empty").Text())
}
