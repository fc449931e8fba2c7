package pages

import (
	"context"

	"github.com/a-h/templ"
)

type field struct {
	Label, Name, Type, Value string
	Required                 bool
}

// form renders an htmx form that swaps itself on submit, so errors render in
// place while redirects replace the whole page.
func form(id, action, submit string, notice *Notice, fields []field, footer func(h *htmlWriter)) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form`)
		attr(h, "id", id)
		attr(h, "method", "post")
		attr(h, "action", action)
		attr(h, "hx-post", action)
		attr(h, "hx-target", "#"+id)
		h.raw(` hx-swap="outerHTML">`)
		h.child(ctx, Banner(notice))
		for _, f := range fields {
			if f.Type == "hidden" {
				h.raw(`<input type="hidden"`)
				attr(h, "name", f.Name)
				attr(h, "value", f.Value)
				h.raw(`>`)
				continue
			}
			h.raw(`<label>`)
			h.text(f.Label)
			if f.Type == "textarea" {
				h.raw(`<textarea`)
				attr(h, "name", f.Name)
				if f.Required {
					h.raw(` required`)
				}
				h.raw(`>`)
				h.text(f.Value)
				h.raw(`</textarea></label>`)
				continue
			}
			h.raw(`<input`)
			attr(h, "type", f.Type)
			attr(h, "name", f.Name)
			if f.Value != "" && f.Type != "password" {
				attr(h, "value", f.Value)
			}
			if f.Required {
				h.raw(` required`)
			}
			h.raw(`></label>`)
		}
		h.raw(`<button type="submit">`)
		h.text(submit)
		h.raw(`</button>`)
		if footer != nil {
			footer(h)
		}
		h.raw(`</form>`)
	})
}

func link(h *htmlWriter, href, label string) {
	h.raw(`<a`)
	attr(h, "href", href)
	h.raw(`>`)
	h.text(label)
	h.raw(`</a>`)
}

func LoginForm(email string, notice *Notice) templ.Component {
	return form("login-form", "/login", "Sign in", notice, []field{
		{Label: "Email", Name: "email", Type: "email", Value: email, Required: true},
		{Label: "Password", Name: "password", Type: "password", Required: true},
	}, func(h *htmlWriter) {
		h.raw(`<p>`)
		link(h, "/forgot-password", "Forgot your password?")
		h.raw(` `)
		link(h, "/signup", "Create an account")
		h.raw(`</p>`)
	})
}

func SignupForm(name, email string, notice *Notice) templ.Component {
	return form("signup-form", "/signup", "Create account", notice, []field{
		{Label: "Full name", Name: "name", Type: "text", Value: name, Required: true},
		{Label: "Email", Name: "email", Type: "email", Value: email, Required: true},
		{Label: "Student ID", Name: "student_id", Type: "text"},
		{Label: "Password", Name: "password", Type: "password", Required: true},
		{Label: "Confirm password", Name: "confirm_password", Type: "password", Required: true},
	}, func(h *htmlWriter) {
		h.raw(`<p>Already registered? `)
		link(h, "/login", "Sign in")
		h.raw(`</p>`)
	})
}

func ForgotPasswordForm(notice *Notice) templ.Component {
	return form("forgot-form", "/forgot-password", "Send reset link", notice, []field{
		{Label: "Email", Name: "email", Type: "email", Required: true},
	}, func(h *htmlWriter) {
		h.raw(`<p>`)
		link(h, "/login", "Back to sign in")
		h.raw(`</p>`)
	})
}

func ResetPasswordForm(token string, notice *Notice) templ.Component {
	return form("reset-form", "/reset-password", "Set new password", notice, []field{
		{Name: "token", Type: "hidden", Value: token},
		{Label: "New password", Name: "password", Type: "password", Required: true},
		{Label: "Confirm password", Name: "confirm_password", Type: "password", Required: true},
	}, nil)
}
