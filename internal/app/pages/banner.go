package pages

import (
	"context"

	"github.com/a-h/templ"
)

type BannerKind string

const (
	BannerError   BannerKind = "error"
	BannerSuccess BannerKind = "success"
	BannerInfo    BannerKind = "info"
)

// Notice is a message shown above a page or form.
type Notice struct {
	Kind    BannerKind
	Message string
}

func ErrorNotice(msg string) *Notice   { return &Notice{Kind: BannerError, Message: msg} }
func SuccessNotice(msg string) *Notice { return &Notice{Kind: BannerSuccess, Message: msg} }

func Banner(n *Notice) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if n == nil || n.Message == "" {
			return
		}
		h.raw(`<div`)
		attr(h, "class", "banner banner-"+string(n.Kind))
		h.raw(` role="alert">`)
		h.text(n.Message)
		h.raw(`</div>`)
	})
}
