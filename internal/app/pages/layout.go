package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/techsupport-hub/portal/internal/app/models"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// LayoutPage wraps content in the full document.
func LayoutPage(l models.LayoutTempl) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(l.Title)
		h.raw(`</title><script`)
		attr(h, "src", htmxSrc)
		h.raw(`></script></head><body hx-boost="true">`)

		h.raw(`<header><nav id="main-nav"><a href="/" class="brand">Tech Support</a><ul>`)
		for _, item := range l.Nav.Items {
			h.raw(`<li><a`)
			attr(h, "href", item.URL)
			if item.Name == l.ActiveNav {
				h.raw(` class="active" aria-current="page"`)
			}
			h.raw(`>`)
			h.text(item.Name)
			h.raw(`</a></li>`)
		}
		h.raw(`</ul>`)
		h.child(ctx, userMenu(l.User))
		h.raw(`</nav></header>`)

		h.raw(`<main id="content">`)
		h.child(ctx, l.Content)
		h.raw(`</main></body></html>`)
	})
}

func userMenu(user *models.User) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if user == nil {
			h.raw(`<div class="user-menu"><a href="/login">Sign in</a></div>`)
			return
		}
		h.raw(`<div class="user-menu"><a href="/settings" class="user-name">`)
		name := user.Name
		if name == "" {
			name = user.Email
		}
		h.text(name)
		h.raw(`</a><form method="post" action="/logout" hx-post="/logout"><button type="submit">Sign out</button></form></div>`)
	})
}
